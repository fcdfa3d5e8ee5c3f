package redisstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/AlessandroCarella/treescope/explanation"
)

/*
SessionEncodeDecoder is an interface for objects that allow encoding
sessions into slices of bytes and decoding them back to sessions.
*/
type SessionEncodeDecoder interface {

	// Encode receives a *explanation.Session
	// and returns a slice of bytes with the session
	// encoded or an error if the encoding could not
	// be performed for some reason.
	Encode(*explanation.Session) ([]byte, error)

	// Decode receives a slice of bytes
	// and returns a *explanation.Session decoded from the
	// slice of bytes or an error if the decoding
	// could not be performed for some reason.
	Decode([]byte) (*explanation.Session, error)
}

type redisStore struct {
	rc      *redis.Client
	prefix  string
	sencdec SessionEncodeDecoder
}

// New builds an explanation.SessionStore backed by a redis DB
func New(rc *redis.Client, prefix string, sencdec SessionEncodeDecoder) explanation.SessionStore {
	return &redisStore{rc, prefix, sencdec}
}

func (rs *redisStore) Create(ctx context.Context, s *explanation.Session) error {
	var ok bool
	for !ok {
		if s.ID == "" {
			s.ID = uuid.NewString()
		}
		data, err := rs.sencdec.Encode(s)
		if err != nil {
			return fmt.Errorf("creating session: encoding session: %v", err)
		}
		ok, err = rs.rc.SetNX(ctx, rs.keyFor(s.ID), data, 0).Result()
		if err != nil {
			return fmt.Errorf("creating session in redis: %v", err)
		}
		if !ok {
			s.ID = ""
		}
		if ctx.Err() != nil {
			return ctx.Err()
		}
	}
	return nil
}

func (rs *redisStore) Get(ctx context.Context, id string) (*explanation.Session, error) {
	data, err := rs.rc.Get(ctx, rs.keyFor(id)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("retrieving session %q: %v", id, err)
	}
	s, err := rs.sencdec.Decode([]byte(data))
	if err != nil {
		return nil, fmt.Errorf("retrieving session %q: decoding: %v", id, err)
	}
	return s, nil
}

func (rs *redisStore) Store(ctx context.Context, s *explanation.Session) error {
	redisID := rs.keyFor(s.ID)
	data, err := rs.sencdec.Encode(s)
	if err != nil {
		return fmt.Errorf("storing session %q: encoding session: %v", redisID, err)
	}
	_, err = rs.rc.Set(ctx, redisID, data, 0).Result()
	if err != nil {
		return fmt.Errorf("storing session %q in redis: %v", redisID, err)
	}
	return nil
}

func (rs *redisStore) Delete(ctx context.Context, s *explanation.Session) error {
	redisID := rs.keyFor(s.ID)
	_, err := rs.rc.Del(ctx, redisID).Result()
	if err != nil {
		return fmt.Errorf("deleting session %q from redis: %v", redisID, err)
	}
	return nil
}

func (rs *redisStore) Close(ctx context.Context) error {
	return rs.rc.Close()
}

func (rs *redisStore) keyFor(id string) string {
	return fmt.Sprintf("%s:%s", rs.prefix, id)
}

package explanation

import (
	"context"
	"sync"

	"github.com/google/uuid"
)

/*
SessionStore is an interface to manage a store where explanation
sessions can be created, retrieved, updated and deleted.

All its methods take a context that may allow cancelling the
operation (thus forcing the return of an error) if the implementation
allows it.
*/
type SessionStore interface {
	// Create takes a session and stores it for the first time in the
	// store, assigning it a fresh id when it has none. It returns an
	// error if the session cannot be stored.
	Create(ctx context.Context, s *Session) error
	// Get takes an id and returns the session in the store with that
	// id (or nil if it cannot be found) or an error if the store
	// cannot be queried.
	Get(ctx context.Context, id string) (*Session, error)
	// Store takes a session already existing in the store and updates
	// it on the store. It expects the session to have an ID which it
	// will not alter. It returns an error if the update cannot be
	// performed.
	Store(ctx context.Context, s *Session) error
	// Delete takes a session already existing in the store and
	// deletes it on the store. It returns an error if the session
	// exists but the deletion cannot be performed.
	Delete(ctx context.Context, s *Session) error
	// Close closes the store, implementations should free any
	// resources in use as well as ensure any pending changes are
	// applied before returning (unless the context expires). It
	// returns an error if the Close cannot be completed.
	Close(ctx context.Context) error
}

type memorySessionStore struct {
	sessions map[string]*Session
	lock     *sync.RWMutex
}

// NewMemorySessionStore returns an implementation of SessionStore
// with the process memory space as underlying backend
func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		sessions: make(map[string]*Session),
		lock:     &sync.RWMutex{},
	}
}

func (mss *memorySessionStore) Create(ctx context.Context, s *Session) error {
	return mss.withLock(ctx, func(ctx context.Context) error {
		taken := true
		for taken {
			if err := ctx.Err(); err != nil {
				return err
			}
			if s.ID == "" {
				s.ID = uuid.NewString()
			}
			_, taken = mss.sessions[s.ID]
			if taken {
				s.ID = ""
			}
		}
		mss.sessions[s.ID] = s
		return nil
	})
}

func (mss *memorySessionStore) Store(ctx context.Context, s *Session) error {
	return mss.withLock(ctx, func(ctx context.Context) error {
		mss.sessions[s.ID] = s
		return nil
	})
}

func (mss *memorySessionStore) Get(ctx context.Context, id string) (*Session, error) {
	var s *Session
	err := mss.withRLock(ctx, func(ctx context.Context) error {
		s = mss.sessions[id]
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s, nil
}

func (mss *memorySessionStore) Delete(ctx context.Context, s *Session) error {
	return mss.withLock(ctx, func(ctx context.Context) error {
		delete(mss.sessions, s.ID)
		return nil
	})
}

func (mss *memorySessionStore) Close(ctx context.Context) error {
	return nil
}

func (mss *memorySessionStore) withLock(ctx context.Context, f func(ctx context.Context) error) error {
	gotLock := make(chan struct{})
	go func() {
		mss.lock.Lock()
		select {
		case <-ctx.Done():
			mss.lock.Unlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer mss.lock.Unlock()
	}
	return f(ctx)
}

func (mss *memorySessionStore) withRLock(ctx context.Context, f func(ctx context.Context) error) error {
	gotLock := make(chan struct{})
	go func() {
		mss.lock.RLock()
		select {
		case <-ctx.Done():
			mss.lock.RUnlock()
		case gotLock <- struct{}{}:
		}
	}()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-gotLock:
		defer mss.lock.RUnlock()
	}
	return f(ctx)
}

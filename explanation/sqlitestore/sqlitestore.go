package sqlitestore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

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

type sqliteStore struct {
	db      *sql.DB
	sencdec SessionEncodeDecoder
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL,
	payload BLOB NOT NULL
);`

/*
Open takes a path to an SQLite database file and a
SessionEncodeDecoder and returns an explanation.SessionStore backed
by that file, creating the sessions table if needed. It returns an
error if the database cannot be opened or initialized.
*/
func Open(path string, sencdec SessionEncodeDecoder) (explanation.SessionStore, error) {
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening session database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing session database: %w", err)
	}
	return &sqliteStore{db: db, sencdec: sencdec}, nil
}

func (ss *sqliteStore) Create(ctx context.Context, s *explanation.Session) error {
	if s.ID == "" {
		s.ID = uuid.NewString()
	}
	data, err := ss.sencdec.Encode(s)
	if err != nil {
		return fmt.Errorf("creating session: encoding session: %v", err)
	}
	_, err = ss.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, payload) VALUES (?, ?, ?)`,
		s.ID, s.CreatedAt, data)
	if err != nil {
		return fmt.Errorf("creating session %q in sqlite: %v", s.ID, err)
	}
	return nil
}

func (ss *sqliteStore) Get(ctx context.Context, id string) (*explanation.Session, error) {
	var data []byte
	err := ss.db.QueryRowContext(ctx,
		`SELECT payload FROM sessions WHERE id = ?`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("retrieving session %q: %v", id, err)
	}
	s, err := ss.sencdec.Decode(data)
	if err != nil {
		return nil, fmt.Errorf("retrieving session %q: decoding: %v", id, err)
	}
	return s, nil
}

func (ss *sqliteStore) Store(ctx context.Context, s *explanation.Session) error {
	data, err := ss.sencdec.Encode(s)
	if err != nil {
		return fmt.Errorf("storing session %q: encoding session: %v", s.ID, err)
	}
	_, err = ss.db.ExecContext(ctx,
		`INSERT INTO sessions (id, created_at, payload) VALUES (?, ?, ?)
		 ON CONFLICT(id) DO UPDATE SET payload = excluded.payload`,
		s.ID, s.CreatedAt, data)
	if err != nil {
		return fmt.Errorf("storing session %q in sqlite: %v", s.ID, err)
	}
	return nil
}

func (ss *sqliteStore) Delete(ctx context.Context, s *explanation.Session) error {
	_, err := ss.db.ExecContext(ctx, `DELETE FROM sessions WHERE id = ?`, s.ID)
	if err != nil {
		return fmt.Errorf("deleting session %q from sqlite: %v", s.ID, err)
	}
	return nil
}

func (ss *sqliteStore) Close(ctx context.Context) error {
	return ss.db.Close()
}

// Package sessionstore persists wallet-provider session tokens. This is the
// only local state the client keeps, and it belongs to the providers: the
// rest of the pipeline never reads it.
package sessionstore

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Session is one provider's persisted sign-in state.
type Session struct {
	Provider  string
	Address   string
	Token     string
	UpdatedAt time.Time
}

// Store implements session persistence on SQLite.
type Store struct {
	db *sql.DB
}

const schema = `
CREATE TABLE IF NOT EXISTS sessions (
	provider   TEXT PRIMARY KEY,
	address    TEXT NOT NULL,
	token      TEXT NOT NULL,
	updated_at TIMESTAMP NOT NULL
)`

// NewStore opens (or creates) the session database at the given path,
// verifies the connection, and ensures the schema exists. The caller should
// call Close when the store is no longer needed.
func NewStore(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// GetSession retrieves the persisted session for a provider. A missing row
// yields a zero Session, not an error.
func (s *Store) GetSession(ctx context.Context, provider string) (Session, error) {
	var sess Session
	err := s.db.QueryRowContext(ctx,
		`SELECT provider, address, token, updated_at FROM sessions WHERE provider = ?`, provider,
	).Scan(&sess.Provider, &sess.Address, &sess.Token, &sess.UpdatedAt)
	if err == sql.ErrNoRows {
		return Session{}, nil
	}
	if err != nil {
		return Session{}, fmt.Errorf("query session: %w", err)
	}
	return sess, nil
}

// PutSession upserts a provider's session.
func (s *Store) PutSession(ctx context.Context, sess Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO sessions (provider, address, token, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT (provider) DO UPDATE SET address = ?, token = ?, updated_at = ?`,
		sess.Provider, sess.Address, sess.Token, time.Now().UTC(),
		sess.Address, sess.Token, time.Now().UTC(),
	)
	if err != nil {
		return fmt.Errorf("upsert session: %w", err)
	}
	return nil
}

// DeleteSession removes a provider's session.
func (s *Store) DeleteSession(ctx context.Context, provider string) error {
	if _, err := s.db.ExecContext(ctx, `DELETE FROM sessions WHERE provider = ?`, provider); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	return nil
}

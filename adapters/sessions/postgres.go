// Package sessions contains session store implementations for the
// opaque-token authentication path.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib" // PostgreSQL driver

	"github.com/layer-3/cerberus/core"
	"github.com/layer-3/cerberus/ports"
)

const sessionsSchema = `CREATE TABLE IF NOT EXISTS session_tokens (
	token      TEXT PRIMARY KEY,
	email      TEXT NOT NULL,
	created_at TIMESTAMPTZ NOT NULL,
	expires_at TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS session_tokens_expires_at_idx ON session_tokens (expires_at)`

// PostgresStore implements the SessionStore interface on PostgreSQL. Lookup
// by token and bulk delete by expiry are the only access patterns.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a session store on an existing connection pool
// and ensures the session_tokens table exists.
func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, sessionsSchema); err != nil {
		return nil, fmt.Errorf("create session_tokens table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Create persists a new session record
func (s *PostgresStore) Create(ctx context.Context, record *core.SessionRecord) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	const q = `INSERT INTO session_tokens (token, email, created_at, expires_at) VALUES ($1, $2, $3, $4)`
	if _, err := s.db.ExecContext(ctx, q, record.Token, record.Email, record.CreatedAt, record.ExpiresAt); err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// FindByToken looks up a record by token. Expired records are returned as-is.
func (s *PostgresStore) FindByToken(ctx context.Context, token string) (*core.SessionRecord, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	const q = `SELECT token, email, created_at, expires_at FROM session_tokens WHERE token = $1`
	var record core.SessionRecord
	err := s.db.QueryRowContext(ctx, q, token).Scan(&record.Token, &record.Email, &record.CreatedAt, &record.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrSessionNotFound
		}
		return nil, fmt.Errorf("query session: %w", err)
	}
	return &record, nil
}

// Delete removes a record by token
func (s *PostgresStore) Delete(ctx context.Context, token string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	const q = `DELETE FROM session_tokens WHERE token = $1`
	res, err := s.db.ExecContext(ctx, q, token)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if n == 0 {
		return core.ErrSessionNotFound
	}
	return nil
}

// DeleteExpiredBefore bulk-deletes records past their expiry. Runs in its own
// implicit transaction, decoupled from request-time validation.
func (s *PostgresStore) DeleteExpiredBefore(ctx context.Context, t time.Time) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	const q = `DELETE FROM session_tokens WHERE expires_at < $1`
	res, err := s.db.ExecContext(ctx, q, t)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return n, nil
}

var _ ports.SessionStore = (*PostgresStore)(nil)

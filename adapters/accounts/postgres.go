// Package accounts contains account store implementations. The PostgreSQL
// variant is the durable backend; the in-memory variant serves tests and
// local development.
package accounts

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

const accountsSchema = `CREATE TABLE IF NOT EXISTS accounts (
	email         TEXT PRIMARY KEY,
	password_hash TEXT NOT NULL,
	public_key    BYTEA,
	role          TEXT NOT NULL
)`

// PostgresStore implements the AccountStore interface on PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates an account store on an existing connection pool
// and ensures the accounts table exists.
func NewPostgresStore(ctx context.Context, db *sql.DB) (*PostgresStore, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := db.ExecContext(ctx, accountsSchema); err != nil {
		return nil, fmt.Errorf("create accounts table: %w", err)
	}
	return &PostgresStore{db: db}, nil
}

// Create persists a new account, failing on a duplicate email
func (s *PostgresStore) Create(ctx context.Context, account *core.Account) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	const q = `INSERT INTO accounts (email, password_hash, public_key, role)
		VALUES ($1, $2, $3, $4) ON CONFLICT (email) DO NOTHING`
	res, err := s.db.ExecContext(ctx, q, account.Email, account.PasswordHash, account.PublicKey, string(account.Role))
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	if n == 0 {
		return core.ErrAlreadyExists
	}
	return nil
}

// FindByEmail looks up an account by its identity key
func (s *PostgresStore) FindByEmail(ctx context.Context, email string) (*core.Account, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	const q = `SELECT email, password_hash, public_key, role FROM accounts WHERE email = $1`
	var account core.Account
	var role string
	err := s.db.QueryRowContext(ctx, q, email).Scan(&account.Email, &account.PasswordHash, &account.PublicKey, &role)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, core.ErrAccountNotFound
		}
		return nil, fmt.Errorf("query account: %w", err)
	}
	account.Role = core.Role(role)
	return &account, nil
}

// Exists reports whether an account with the email is registered
func (s *PostgresStore) Exists(ctx context.Context, email string) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	const q = `SELECT EXISTS (SELECT 1 FROM accounts WHERE email = $1)`
	var exists bool
	if err := s.db.QueryRowContext(ctx, q, email).Scan(&exists); err != nil {
		return false, fmt.Errorf("query account existence: %w", err)
	}
	return exists, nil
}

var _ ports.AccountStore = (*PostgresStore)(nil)

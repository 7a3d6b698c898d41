package ports

import (
	"context"
	"time"

	"github.com/layer-3/cerberus/core"
)

// SessionStore persists opaque-token session records.
type SessionStore interface {
	// Create persists a new session record.
	Create(ctx context.Context, record *core.SessionRecord) error

	// FindByToken looks up a record by its token. Returns
	// core.ErrSessionNotFound if absent. Expired records are still returned;
	// expiry is the caller's check (lazy expiry).
	FindByToken(ctx context.Context, token string) (*core.SessionRecord, error)

	// Delete removes a record by token. Returns core.ErrSessionNotFound if
	// no record matches.
	Delete(ctx context.Context, token string) error

	// DeleteExpiredBefore bulk-deletes all records with expiry before the
	// given time and returns how many were removed. Zero matches is not an
	// error.
	DeleteExpiredBefore(ctx context.Context, t time.Time) (int64, error)
}

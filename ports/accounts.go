package ports

import (
	"context"

	"github.com/layer-3/cerberus/core"
)

// AccountStore holds registered accounts. Accounts are read-only to the
// protocol engine except at registration.
type AccountStore interface {
	// Create persists a new account. Returns core.ErrAlreadyExists if the
	// email is taken.
	Create(ctx context.Context, account *core.Account) error

	// FindByEmail looks up an account by its identity key. Returns
	// core.ErrAccountNotFound if absent.
	FindByEmail(ctx context.Context, email string) (*core.Account, error)

	// Exists reports whether an account with the email is registered.
	Exists(ctx context.Context, email string) (bool, error)
}

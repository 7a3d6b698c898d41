package accounts

import (
	"context"
	"sync"

	"github.com/layer-3/cerberus/core"
	"github.com/layer-3/cerberus/ports"
)

// MemoryStore is an in-memory implementation of the AccountStore interface,
// intended for tests.
type MemoryStore struct {
	mu       sync.RWMutex
	accounts map[string]core.Account
}

// NewMemoryStore creates a new in-memory account store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{accounts: make(map[string]core.Account)}
}

// Create persists a new account, failing on a duplicate email
func (s *MemoryStore) Create(ctx context.Context, account *core.Account) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.accounts[account.Email]; ok {
		return core.ErrAlreadyExists
	}
	s.accounts[account.Email] = *account
	return nil
}

// FindByEmail looks up an account by its identity key
func (s *MemoryStore) FindByEmail(ctx context.Context, email string) (*core.Account, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	account, ok := s.accounts[email]
	if !ok {
		return nil, core.ErrAccountNotFound
	}
	return &account, nil
}

// Exists reports whether an account with the email is registered
func (s *MemoryStore) Exists(ctx context.Context, email string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	_, ok := s.accounts[email]
	return ok, nil
}

// Delete removes an account, for tests exercising concurrent-deletion paths.
func (s *MemoryStore) Delete(email string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.accounts, email)
}

var _ ports.AccountStore = (*MemoryStore)(nil)

package store

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/cerberus/core"
	"github.com/layer-3/cerberus/ports"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// MemoryStore is an in-memory implementation of the KVStore interface,
// intended for tests and single-process deployments. Expired entries become
// invisible on read and are evicted lazily.
type MemoryStore struct {
	mu      sync.Mutex
	entries map[string]entry
	now     func() time.Time
}

// NewMemoryStore creates a new in-memory store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// SetClock overrides the store's time source, for tests.
func (s *MemoryStore) SetClock(now func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = now
}

// Set stores a value, overwriting any existing entry and resetting its expiry
func (s *MemoryStore) Set(ctx context.Context, key core.StoreKey, value string, ttl time.Duration) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.entries[key.String()] = entry{
		value:     value,
		expiresAt: s.now().Add(ttl),
	}
	return nil
}

// Get retrieves a value without consuming it
func (s *MemoryStore) Get(ctx context.Context, key core.StoreKey) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key.String()]
	if !ok {
		return "", core.ErrKeyNotFound
	}
	if e.expiresAt.Before(s.now()) {
		delete(s.entries, key.String())
		return "", core.ErrKeyNotFound
	}
	return e.value, nil
}

// TakeAndDelete atomically reads and deletes a value under the store lock
func (s *MemoryStore) TakeAndDelete(ctx context.Context, key core.StoreKey) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.entries[key.String()]
	if !ok {
		return "", core.ErrKeyNotFound
	}
	delete(s.entries, key.String())
	if e.expiresAt.Before(s.now()) {
		return "", core.ErrKeyNotFound
	}
	return e.value, nil
}

var _ ports.KVStore = (*MemoryStore)(nil)

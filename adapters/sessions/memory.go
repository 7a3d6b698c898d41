package sessions

import (
	"context"
	"sync"
	"time"

	"github.com/layer-3/cerberus/core"
	"github.com/layer-3/cerberus/ports"
)

// MemoryStore is an in-memory implementation of the SessionStore interface,
// intended for tests.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]core.SessionRecord
}

// NewMemoryStore creates a new in-memory session store
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]core.SessionRecord)}
}

// Create persists a new session record
func (s *MemoryStore) Create(ctx context.Context, record *core.SessionRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.records[record.Token] = *record
	return nil
}

// FindByToken looks up a record by token. Expired records are returned as-is.
func (s *MemoryStore) FindByToken(ctx context.Context, token string) (*core.SessionRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.records[token]
	if !ok {
		return nil, core.ErrSessionNotFound
	}
	return &record, nil
}

// Delete removes a record by token
func (s *MemoryStore) Delete(ctx context.Context, token string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[token]; !ok {
		return core.ErrSessionNotFound
	}
	delete(s.records, token)
	return nil
}

// DeleteExpiredBefore bulk-deletes records past their expiry
func (s *MemoryStore) DeleteExpiredBefore(ctx context.Context, t time.Time) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for token, record := range s.records {
		if record.ExpiresAt.Before(t) {
			delete(s.records, token)
			n++
		}
	}
	return n, nil
}

// Len reports how many records are held, for tests.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}

var _ ports.SessionStore = (*MemoryStore)(nil)

package ports

import (
	"context"
	"time"

	"github.com/layer-3/cerberus/core"
)

// KVStore is an expiring key/value store backing the temporary-token and
// challenge mechanisms. Expiry is enforced by the store: entries past their
// TTL are invisible to Get and TakeAndDelete even before physical eviction.
type KVStore interface {
	// Set stores a value under a key, overwriting any existing entry and
	// resetting its expiry.
	Set(ctx context.Context, key core.StoreKey, value string, ttl time.Duration) error

	// Get retrieves a value without affecting its expiry or presence.
	// Returns core.ErrKeyNotFound if the key is absent or expired.
	Get(ctx context.Context, key core.StoreKey) (string, error)

	// TakeAndDelete atomically reads and deletes a value, giving single-use
	// semantics. Exactly one of several concurrent callers succeeds.
	// Returns core.ErrKeyNotFound if the key is absent or expired.
	TakeAndDelete(ctx context.Context, key core.StoreKey) (string, error)
}

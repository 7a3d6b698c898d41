package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/layer-3/cerberus/core"
	"github.com/layer-3/cerberus/ports"
)

// RedisStore is a Redis implementation of the KVStore interface. Expiry and
// the atomicity of TakeAndDelete are Redis's responsibility (SET with TTL,
// GETDEL).
type RedisStore struct {
	client *redis.Client
	prefix string
}

// NewRedisStore creates a new Redis store
func NewRedisStore(client *redis.Client) ports.KVStore {
	return &RedisStore{
		client: client,
		prefix: "cerberus:",
	}
}

// Set stores a value with an expiration, overwriting any existing entry
func (s *RedisStore) Set(ctx context.Context, key core.StoreKey, value string, ttl time.Duration) error {
	if err := s.client.Set(ctx, s.prefix+key.String(), value, ttl).Err(); err != nil {
		return fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}
	return nil
}

// Get retrieves a value without consuming it
func (s *RedisStore) Get(ctx context.Context, key core.StoreKey) (string, error) {
	value, err := s.client.Get(ctx, s.prefix+key.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrKeyNotFound
		}
		return "", fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}
	return value, nil
}

// TakeAndDelete atomically reads and deletes a value using GETDEL, so exactly
// one of several concurrent callers observes the entry.
func (s *RedisStore) TakeAndDelete(ctx context.Context, key core.StoreKey) (string, error) {
	value, err := s.client.GetDel(ctx, s.prefix+key.String()).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", core.ErrKeyNotFound
		}
		return "", fmt.Errorf("%w: %v", core.ErrStoreOperationFailed, err)
	}
	return value, nil
}

// Package cache memoizes successful upstream signal fetches, keyed by
// coordinates rounded to five decimals. Fallback values never reach the
// cache, so a transient outage is retried on the next request.
package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru"
	"github.com/redis/go-redis/v9"
)

// Store is a byte-oriented key/value cache. Implementations are safe for
// concurrent use; writing the same key twice simply overwrites it.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, bool, error)
	Set(ctx context.Context, key string, value []byte) error
}

// LRUStore is an in-process Store capped at a fixed number of entries.
type LRUStore struct {
	cache *lru.Cache
}

// NewLRUStore creates an LRU store holding at most size entries.
func NewLRUStore(size int) (*LRUStore, error) {
	c, err := lru.New(size)
	if err != nil {
		return nil, fmt.Errorf("create lru cache: %w", err)
	}
	return &LRUStore{cache: c}, nil
}

func (s *LRUStore) Get(_ context.Context, key string) ([]byte, bool, error) {
	v, ok := s.cache.Get(key)
	if !ok {
		return nil, false, nil
	}
	return v.([]byte), true, nil
}

func (s *LRUStore) Set(_ context.Context, key string, value []byte) error {
	s.cache.Add(key, value)
	return nil
}

// Len reports the number of cached entries.
func (s *LRUStore) Len() int { return s.cache.Len() }

// RedisStore is a Store shared between replicas. Entries expire after ttl.
type RedisStore struct {
	client redis.Cmdable
	ttl    time.Duration
	prefix string
}

// NewRedisStore wraps a Redis client. Keys are namespaced with prefix.
func NewRedisStore(client redis.Cmdable, ttl time.Duration, prefix string) *RedisStore {
	return &RedisStore{client: client, ttl: ttl, prefix: prefix}
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	data, err := s.client.Get(ctx, s.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("redis get %s: %w", key, err)
	}
	return data, true, nil
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.prefix+key, value, s.ttl).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

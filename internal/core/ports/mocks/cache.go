package mocks

import (
	"context"
	"sync"
	"time"

	apperrors "github.com/lueurxax/theme-scout/internal/core/errors"
)

type cacheEntry struct {
	value     []byte
	expiresAt time.Time
}

// CacheStore is a thread-safe in-memory implementation of ports.CacheStore.
type CacheStore struct {
	mu       sync.RWMutex
	entries  map[string]cacheEntry
	getCalls int
	setCalls int

	// Now allows tests to control expiry evaluation.
	Now func() time.Time

	// GetFn allows overriding Get behavior.
	GetFn func(ctx context.Context, key string) ([]byte, error)

	// SetFn allows overriding Set behavior.
	SetFn func(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// NewCacheStore creates a new mock cache store.
func NewCacheStore() *CacheStore {
	return &CacheStore{entries: make(map[string]cacheEntry), Now: time.Now}
}

// Get returns the cached value or ErrCacheNotFound.
func (c *CacheStore) Get(ctx context.Context, key string) ([]byte, error) {
	if c.GetFn != nil {
		return c.GetFn(ctx, key)
	}

	c.mu.Lock()
	c.getCalls++
	c.mu.Unlock()

	c.mu.RLock()
	defer c.mu.RUnlock()

	entry, ok := c.entries[key]
	if !ok || c.Now().After(entry.expiresAt) {
		return nil, apperrors.ErrCacheNotFound
	}

	return entry.value, nil
}

// Set stores the value with the given TTL.
func (c *CacheStore) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	if c.SetFn != nil {
		return c.SetFn(ctx, key, value, ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.setCalls++
	c.entries[key] = cacheEntry{value: value, expiresAt: c.Now().Add(ttl)}

	return nil
}

// GetCalls returns how many times Get was invoked.
func (c *CacheStore) GetCalls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.getCalls
}

// SetCalls returns how many times Set was invoked.
func (c *CacheStore) SetCalls() int {
	c.mu.RLock()
	defer c.mu.RUnlock()

	return c.setCalls
}

// Keys returns the currently stored keys.
func (c *CacheStore) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}

	return keys
}

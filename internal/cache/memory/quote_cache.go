// Package memory provides an in-process quote cache with the same TTL
// semantics as the Redis backend. It is used when cache.backend is "memory"
// and in tests.
package memory

import (
	"context"
	"sync"
	"time"

	"github.com/quantasea/coinsentry/internal/domain"
)

type entry struct {
	value    float64
	storedAt time.Time
	ttl      time.Duration
}

// QuoteCache is a map-backed quote cache. An entry whose age has reached its
// TTL is treated as absent, matching the Redis backend's expiry behavior.
type QuoteCache struct {
	mu      sync.RWMutex
	entries map[string]entry
	now     func() time.Time
}

var _ domain.QuoteCache = (*QuoteCache)(nil)

// NewQuoteCache creates an empty in-memory quote cache.
func NewQuoteCache() *QuoteCache {
	return &QuoteCache{
		entries: make(map[string]entry),
		now:     time.Now,
	}
}

// Get retrieves a cached quote, returning domain.ErrNotFound for missing or
// expired entries.
func (c *QuoteCache) Get(_ context.Context, kind domain.QuoteKind, symbol string) (float64, error) {
	key := domain.CacheKey(kind, symbol)

	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		return 0, domain.ErrNotFound
	}
	if c.now().Sub(e.storedAt) >= e.ttl {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		return 0, domain.ErrNotFound
	}

	return e.value, nil
}

// Set stores a quote with the given TTL, replacing any previous entry.
func (c *QuoteCache) Set(_ context.Context, kind domain.QuoteKind, symbol string, value float64, ttl time.Duration) error {
	key := domain.CacheKey(kind, symbol)

	c.mu.Lock()
	c.entries[key] = entry{value: value, storedAt: c.now(), ttl: ttl}
	c.mu.Unlock()

	return nil
}

// Flush drops every entry.
func (c *QuoteCache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]entry)
	c.mu.Unlock()
}

// Len reports the number of live entries, counting expired but not yet
// evicted ones.
func (c *QuoteCache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

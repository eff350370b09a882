package redis

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/quantasea/coinsentry/internal/domain"
)

// QuoteCache stores price and sentiment quotes in Redis with per-entry TTLs.
// A missing or expired key is reported as domain.ErrNotFound; any other
// failure is a backend error and must not be treated as a miss.
type QuoteCache struct {
	client *Client
}

var _ domain.QuoteCache = (*QuoteCache)(nil)

// NewQuoteCache creates a quote cache backed by the given Redis client.
func NewQuoteCache(client *Client) *QuoteCache {
	return &QuoteCache{client: client}
}

// Get retrieves a cached quote. It returns domain.ErrNotFound when the key
// does not exist or has expired.
func (c *QuoteCache) Get(ctx context.Context, kind domain.QuoteKind, symbol string) (float64, error) {
	key := domain.CacheKey(kind, symbol)

	raw, err := c.client.rdb.Get(ctx, key).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, domain.ErrNotFound
		}
		return 0, fmt.Errorf("redis: get %s: %w", key, err)
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, fmt.Errorf("redis: parse %s value %q: %w", key, raw, err)
	}

	return value, nil
}

// Set stores a quote under the kind-prefixed key with the given TTL.
func (c *QuoteCache) Set(ctx context.Context, kind domain.QuoteKind, symbol string, value float64, ttl time.Duration) error {
	key := domain.CacheKey(kind, symbol)

	raw := strconv.FormatFloat(value, 'f', -1, 64)
	if err := c.client.rdb.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis: set %s: %w", key, err)
	}

	return nil
}

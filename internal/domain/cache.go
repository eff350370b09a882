package domain

import (
	"context"
	"time"
)

// QuoteCache is the cache-aside store fronting the price and sentiment
// providers. Entries are idempotent point-in-time readings keyed by
// (kind, symbol); writes are last-write-wins with a fresh TTL window, and
// there is no eviction beyond expiry.
//
// Get returns ErrNotFound for a missing or expired entry. Any other error is
// a backend failure and must be treated as transient for that symbol, never
// as a miss.
type QuoteCache interface {
	Get(ctx context.Context, kind QuoteKind, symbol string) (float64, error)
	Set(ctx context.Context, kind QuoteKind, symbol string, value float64, ttl time.Duration) error
}

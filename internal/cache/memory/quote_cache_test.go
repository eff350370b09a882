package memory

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantasea/coinsentry/internal/domain"
)

func TestQuoteCacheSetGet(t *testing.T) {
	ctx := context.Background()
	cache := NewQuoteCache()

	err := cache.Set(ctx, domain.KindPrice, "BTC", 51234.5, time.Minute)
	require.NoError(t, err)

	got, err := cache.Get(ctx, domain.KindPrice, "BTC")
	require.NoError(t, err)
	assert.Equal(t, 51234.5, got)
}

func TestQuoteCacheMiss(t *testing.T) {
	ctx := context.Background()
	cache := NewQuoteCache()

	_, err := cache.Get(ctx, domain.KindPrice, "BTC")
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestQuoteCacheKindsDoNotCollide(t *testing.T) {
	ctx := context.Background()
	cache := NewQuoteCache()

	require.NoError(t, cache.Set(ctx, domain.KindPrice, "ETH", 3000, time.Minute))
	require.NoError(t, cache.Set(ctx, domain.KindSentiment, "ETH", 0.72, time.Minute))

	price, err := cache.Get(ctx, domain.KindPrice, "ETH")
	require.NoError(t, err)
	assert.Equal(t, 3000.0, price)

	sentiment, err := cache.Get(ctx, domain.KindSentiment, "ETH")
	require.NoError(t, err)
	assert.Equal(t, 0.72, sentiment)
}

func TestQuoteCacheExpiry(t *testing.T) {
	ctx := context.Background()
	cache := NewQuoteCache()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, domain.KindSentiment, "SOL", 0.4, 10*time.Minute))

	now = now.Add(9 * time.Minute)
	got, err := cache.Get(ctx, domain.KindSentiment, "SOL")
	require.NoError(t, err)
	assert.Equal(t, 0.4, got)

	// A read at exactly the TTL boundary is a miss.
	now = now.Add(time.Minute)
	_, err = cache.Get(ctx, domain.KindSentiment, "SOL")
	assert.ErrorIs(t, err, domain.ErrNotFound)
	assert.Equal(t, 0, cache.Len())
}

func TestQuoteCacheOverwriteResetsTTL(t *testing.T) {
	ctx := context.Background()
	cache := NewQuoteCache()

	now := time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC)
	cache.now = func() time.Time { return now }

	require.NoError(t, cache.Set(ctx, domain.KindPrice, "BTC", 50000, 5*time.Minute))

	now = now.Add(4 * time.Minute)
	require.NoError(t, cache.Set(ctx, domain.KindPrice, "BTC", 50500, 5*time.Minute))

	now = now.Add(4 * time.Minute)
	got, err := cache.Get(ctx, domain.KindPrice, "BTC")
	require.NoError(t, err)
	assert.Equal(t, 50500.0, got)
}

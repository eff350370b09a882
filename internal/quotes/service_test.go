package quotes

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantasea/coinsentry/internal/cache/memory"
	"github.com/quantasea/coinsentry/internal/domain"
	"github.com/quantasea/coinsentry/internal/gateway/static"
)

// countingGateway wraps the static gateway and counts fetches.
type countingGateway struct {
	*static.Gateway
	priceCalls     int
	sentimentCalls int
}

func (g *countingGateway) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	g.priceCalls++
	return g.Gateway.FetchPrice(ctx, symbol)
}

func (g *countingGateway) FetchSentiment(ctx context.Context, symbol string) (float64, error) {
	g.sentimentCalls++
	return g.Gateway.FetchSentiment(ctx, symbol)
}

// brokenCache fails every operation, standing in for an unreachable backend.
type brokenCache struct{ err error }

func (c *brokenCache) Get(context.Context, domain.QuoteKind, string) (float64, error) {
	return 0, c.err
}

func (c *brokenCache) Set(context.Context, domain.QuoteKind, string, float64, time.Duration) error {
	return c.err
}

// setFailCache serves reads from the wrapped cache but refuses writes.
type setFailCache struct {
	domain.QuoteCache
	err error
}

func (c *setFailCache) Set(context.Context, domain.QuoteKind, string, float64, time.Duration) error {
	return c.err
}

func newTestService(cache domain.QuoteCache, gw *countingGateway) *Service {
	return NewService(cache, gw, gw, 10*time.Minute, slog.New(slog.DiscardHandler))
}

func TestPriceCacheAside(t *testing.T) {
	ctx := context.Background()
	gw := &countingGateway{Gateway: static.New()}
	gw.SetPrice("BTC", 50000)

	svc := newTestService(memory.NewQuoteCache(), gw)

	price, err := svc.Price(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, price)
	assert.Equal(t, 1, gw.priceCalls)

	// Second read is served from cache.
	price, err = svc.Price(ctx, "BTC")
	require.NoError(t, err)
	assert.Equal(t, 50000.0, price)
	assert.Equal(t, 1, gw.priceCalls)
}

func TestPriceCacheBackendErrorIsNotAMiss(t *testing.T) {
	ctx := context.Background()
	gw := &countingGateway{Gateway: static.New()}
	gw.SetPrice("BTC", 50000)

	backendErr := errors.New("connection refused")
	svc := newTestService(&brokenCache{err: backendErr}, gw)

	_, err := svc.Price(ctx, "BTC")
	require.Error(t, err)
	assert.ErrorIs(t, err, backendErr)
	assert.Equal(t, 0, gw.priceCalls, "gateway must not be consulted on a backend failure")
}

func TestPriceSetFailureFailsLookup(t *testing.T) {
	ctx := context.Background()
	gw := &countingGateway{Gateway: static.New()}
	gw.SetPrice("ETH", 3000)

	writeErr := errors.New("write refused")
	svc := newTestService(&setFailCache{QuoteCache: memory.NewQuoteCache(), err: writeErr}, gw)

	_, err := svc.Price(ctx, "ETH")
	require.Error(t, err)
	assert.ErrorIs(t, err, writeErr)
}

func TestSentimentUsesConfiguredTTL(t *testing.T) {
	ctx := context.Background()
	gw := &countingGateway{Gateway: static.New()}
	gw.SetSentiment("SOL", 0.8)

	cache := memory.NewQuoteCache()
	svc := newTestService(cache, gw)

	score, err := svc.Sentiment(ctx, "SOL")
	require.NoError(t, err)
	assert.Equal(t, 0.8, score)

	cached, err := cache.Get(ctx, domain.KindSentiment, "SOL")
	require.NoError(t, err)
	assert.Equal(t, 0.8, cached)
}

func TestSnapshotPartialFailure(t *testing.T) {
	ctx := context.Background()
	gw := &countingGateway{Gateway: static.New()}
	gw.SetPrice("BTC", 50000)
	gw.SetSentiment("BTC", 0.7)
	gw.SetSentiment("DOGE", 0.4)
	// DOGE has no price fixture, so its price lookup fails.

	svc := newTestService(memory.NewQuoteCache(), gw)

	snap := svc.Snapshot(ctx, []string{"BTC", "DOGE"})

	assert.Equal(t, 50000.0, snap.Prices["BTC"])
	assert.Equal(t, 0.7, snap.Sentiments["BTC"])
	assert.Equal(t, 0.4, snap.Sentiments["DOGE"])

	assert.NotContains(t, snap.Prices, "DOGE")
	require.Contains(t, snap.PriceErrs, "DOGE")
	assert.ErrorIs(t, snap.PriceErrs["DOGE"], domain.ErrUnsupportedSymbol)
	assert.Empty(t, snap.SentimentErrs)
}

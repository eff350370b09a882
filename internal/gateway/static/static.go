// Package static provides fixture-backed gateways for local runs and tests,
// selected with exchange.name = "static" or sentiment.provider = "static".
package static

import (
	"context"
	"fmt"
	"sync"

	"github.com/quantasea/coinsentry/internal/domain"
)

// Gateway serves prices, sentiments, and market rows from in-memory maps.
// All methods are safe for concurrent use.
type Gateway struct {
	mu         sync.RWMutex
	prices     map[string]float64
	sentiments map[string]float64
	markets    []domain.MarketData
}

var (
	_ domain.PriceGateway     = (*Gateway)(nil)
	_ domain.SentimentGateway = (*Gateway)(nil)
	_ domain.MarketProvider   = (*Gateway)(nil)
)

// New creates an empty static gateway.
func New() *Gateway {
	return &Gateway{
		prices:     make(map[string]float64),
		sentiments: make(map[string]float64),
	}
}

// SetPrice sets the fixture price for a symbol.
func (g *Gateway) SetPrice(symbol string, price float64) {
	g.mu.Lock()
	g.prices[symbol] = price
	g.mu.Unlock()
}

// RemovePrice drops the fixture price for a symbol, making future fetches
// fail as unsupported.
func (g *Gateway) RemovePrice(symbol string) {
	g.mu.Lock()
	delete(g.prices, symbol)
	g.mu.Unlock()
}

// SetSentiment sets the fixture sentiment for a symbol.
func (g *Gateway) SetSentiment(symbol string, score float64) {
	g.mu.Lock()
	g.sentiments[symbol] = score
	g.mu.Unlock()
}

// SetMarkets replaces the fixture market rows.
func (g *Gateway) SetMarkets(markets []domain.MarketData) {
	g.mu.Lock()
	g.markets = append([]domain.MarketData(nil), markets...)
	g.mu.Unlock()
}

// FetchPrice returns the fixture price, or domain.ErrUnsupportedSymbol when
// none was set.
func (g *Gateway) FetchPrice(_ context.Context, symbol string) (float64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	price, ok := g.prices[symbol]
	if !ok {
		return 0, fmt.Errorf("static: %w: %s", domain.ErrUnsupportedSymbol, symbol)
	}
	return price, nil
}

// FetchSentiment returns the fixture sentiment, falling back to neutral for
// symbols without one.
func (g *Gateway) FetchSentiment(_ context.Context, symbol string) (float64, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	score, ok := g.sentiments[symbol]
	if !ok {
		return domain.NeutralSentiment, nil
	}
	return score, nil
}

// FetchMarkets returns the fixture market rows, filtered to symbols when the
// filter is non-empty.
func (g *Gateway) FetchMarkets(_ context.Context, symbols []string) ([]domain.MarketData, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	if len(symbols) == 0 {
		return append([]domain.MarketData(nil), g.markets...), nil
	}

	want := make(map[string]bool, len(symbols))
	for _, s := range symbols {
		want[s] = true
	}

	var out []domain.MarketData
	for _, m := range g.markets {
		if want[m.Symbol] {
			out = append(out, m)
		}
	}
	return out, nil
}

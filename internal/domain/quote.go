// Package domain defines the core entities of the portfolio monitor and the
// capability interfaces its components depend on. Concrete implementations
// live in their own packages (cache/redis, cache/memory, gateway/*,
// store/postgres) and are selected once at startup by the app wiring.
package domain

import "time"

// QuoteKind distinguishes the two observation types held in the quote cache.
type QuoteKind string

const (
	KindPrice     QuoteKind = "price"
	KindSentiment QuoteKind = "sentiment"
)

// PriceTTL is the fixed cache lifetime for spot prices. Sentiment TTL is
// configurable because the upstream dashboard refreshes far less often.
const PriceTTL = 300 * time.Second

// NeutralSentiment is the defined score when a provider has no data for a
// symbol: neither bullish nor bearish, and never a reason to liquidate.
const NeutralSentiment = 0.5

// CacheKey builds the backing-store key for a (kind, symbol) observation.
func CacheKey(kind QuoteKind, symbol string) string {
	return string(kind) + ":" + symbol
}

// MarketData is one row of the market overview screen.
type MarketData struct {
	Symbol    string
	Price     float64
	MarketCap float64
	Change24h float64
}

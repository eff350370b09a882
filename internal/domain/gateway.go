package domain

import "context"

// PriceGateway fetches the current spot price for an app symbol from
// whichever exchange is configured. Errors carry the symbol and cause and
// are scoped to that symbol for the current cycle.
type PriceGateway interface {
	FetchPrice(ctx context.Context, symbol string) (float64, error)
}

// SentimentGateway fetches the current sentiment score for a symbol,
// normalized to [0,1] (0 most bearish, 1 most bullish). A provider with no
// data for the symbol returns NeutralSentiment rather than an error.
type SentimentGateway interface {
	FetchSentiment(ctx context.Context, symbol string) (float64, error)
}

// MarketProvider supplies the market overview screen.
type MarketProvider interface {
	FetchMarkets(ctx context.Context, symbols []string) ([]MarketData, error)
}

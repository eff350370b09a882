// Package quotes implements the cache-aside read path for prices and
// sentiment scores. All consumers go through this service; nothing reads the
// gateways directly, so every value used in a cycle has passed through the
// cache.
package quotes

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quantasea/coinsentry/internal/domain"
)

// snapshotConcurrency bounds parallel gateway fetches during a snapshot.
const snapshotConcurrency = 4

// Service resolves quotes cache-first. On a miss it fetches from the gateway
// and writes the value back before returning it; a failed write-back fails
// the lookup, so a value is never used without having been cached.
type Service struct {
	cache        domain.QuoteCache
	prices       domain.PriceGateway
	sentiments   domain.SentimentGateway
	sentimentTTL time.Duration
	logger       *slog.Logger
}

// NewService creates a quote service. sentimentTTL governs sentiment entries;
// price entries always use domain.PriceTTL.
func NewService(cache domain.QuoteCache, prices domain.PriceGateway, sentiments domain.SentimentGateway, sentimentTTL time.Duration, logger *slog.Logger) *Service {
	return &Service{
		cache:        cache,
		prices:       prices,
		sentiments:   sentiments,
		sentimentTTL: sentimentTTL,
		logger:       logger.With(slog.String("component", "quotes")),
	}
}

// Price returns the current price for the symbol, cache-first.
func (s *Service) Price(ctx context.Context, symbol string) (float64, error) {
	return s.lookup(ctx, domain.KindPrice, symbol)
}

// Sentiment returns the current sentiment score for the symbol, cache-first.
func (s *Service) Sentiment(ctx context.Context, symbol string) (float64, error) {
	return s.lookup(ctx, domain.KindSentiment, symbol)
}

func (s *Service) lookup(ctx context.Context, kind domain.QuoteKind, symbol string) (float64, error) {
	value, err := s.cache.Get(ctx, kind, symbol)
	if err == nil {
		return value, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		// A backend failure is not a miss; surfacing it avoids hammering
		// the gateways while the cache is down.
		return 0, fmt.Errorf("quotes: cache get %s/%s: %w", kind, symbol, err)
	}

	value, err = s.fetch(ctx, kind, symbol)
	if err != nil {
		return 0, err
	}

	if err := s.cache.Set(ctx, kind, symbol, value, s.ttl(kind)); err != nil {
		return 0, fmt.Errorf("quotes: cache set %s/%s: %w", kind, symbol, err)
	}

	s.logger.DebugContext(ctx, "quote fetched",
		slog.String("kind", string(kind)),
		slog.String("symbol", symbol),
		slog.Float64("value", value))

	return value, nil
}

func (s *Service) fetch(ctx context.Context, kind domain.QuoteKind, symbol string) (float64, error) {
	switch kind {
	case domain.KindPrice:
		return s.prices.FetchPrice(ctx, symbol)
	case domain.KindSentiment:
		return s.sentiments.FetchSentiment(ctx, symbol)
	default:
		return 0, fmt.Errorf("quotes: unknown kind %q", kind)
	}
}

func (s *Service) ttl(kind domain.QuoteKind) time.Duration {
	if kind == domain.KindSentiment {
		return s.sentimentTTL
	}
	return domain.PriceTTL
}

// Snapshot holds the per-symbol quote results for one monitoring cycle.
// Symbols absent from Prices or Sentiments failed, with the cause recorded
// in the matching error map.
type Snapshot struct {
	Prices        map[string]float64
	Sentiments    map[string]float64
	PriceErrs     map[string]error
	SentimentErrs map[string]error
}

// Snapshot resolves prices and sentiments for all symbols concurrently. A
// failed symbol never fails the snapshot; callers decide what to do with the
// gaps.
func (s *Service) Snapshot(ctx context.Context, symbols []string) Snapshot {
	snap := Snapshot{
		Prices:        make(map[string]float64, len(symbols)),
		Sentiments:    make(map[string]float64, len(symbols)),
		PriceErrs:     make(map[string]error),
		SentimentErrs: make(map[string]error),
	}

	var mu sync.Mutex
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(snapshotConcurrency)

	for _, symbol := range symbols {
		g.Go(func() error {
			price, err := s.Price(gctx, symbol)
			mu.Lock()
			if err != nil {
				snap.PriceErrs[symbol] = err
			} else {
				snap.Prices[symbol] = price
			}
			mu.Unlock()
			return nil
		})
		g.Go(func() error {
			score, err := s.Sentiment(gctx, symbol)
			mu.Lock()
			if err != nil {
				snap.SentimentErrs[symbol] = err
			} else {
				snap.Sentiments[symbol] = score
			}
			mu.Unlock()
			return nil
		})
	}

	_ = g.Wait()

	for symbol, err := range snap.PriceErrs {
		s.logger.WarnContext(ctx, "price unavailable",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()))
	}
	for symbol, err := range snap.SentimentErrs {
		s.logger.WarnContext(ctx, "sentiment unavailable",
			slog.String("symbol", symbol),
			slog.String("error", err.Error()))
	}

	return snap
}

package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/quantasea/coinsentry/internal/domain"
	"github.com/quantasea/coinsentry/internal/market"
	"github.com/quantasea/coinsentry/internal/monitor"
)

const archiveInterval = 24 * time.Hour

// PortfolioMode runs the risk-monitoring loop: price/sentiment collection,
// stop-loss and rebalancing evaluation, trade recording, and change alerts.
func (a *App) PortfolioMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting portfolio mode",
		slog.Int("holdings", len(deps.Portfolio.Holdings)),
		slog.Duration("interval", a.cfg.Portfolio.CheckInterval()),
	)

	g, ctx := errgroup.WithContext(ctx)

	mon := monitor.New(monitor.Config{
		Portfolio: deps.Portfolio,
		Quotes:    deps.Quotes,
		Evaluator: deps.Evaluator,
		Detector:  deps.Detector,
		Notifier:  deps.Notifier,
		Ledger:    deps.Ledger,
		Interval:  a.cfg.Portfolio.CheckInterval(),
		OnCycle:   a.renderCycle(ctx, deps),
	}, a.logger)
	g.Go(func() error {
		return mon.Run(ctx)
	})

	if deps.StreamFeed != nil {
		feed := deps.StreamFeed
		g.Go(func() error {
			defer feed.Close()
			return feed.Run(ctx)
		})
	}

	if deps.Archiver != nil {
		g.Go(func() error {
			return a.archiveLoop(ctx, deps)
		})
	}

	return g.Wait()
}

// SentimentMode periodically renders the sentiment screen for the configured
// holdings. No trades are evaluated or executed.
func (a *App) SentimentMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting sentiment mode")
	return a.sentimentLoop(ctx, deps)
}

// MarketMode periodically renders the market overview screen.
func (a *App) MarketMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting market mode")
	return a.marketLoop(ctx, deps)
}

// FullMode runs the portfolio monitor plus the sentiment and market screens.
func (a *App) FullMode(ctx context.Context, deps *Dependencies) error {
	a.logger.InfoContext(ctx, "starting full mode")

	g, ctx := errgroup.WithContext(ctx)

	mon := monitor.New(monitor.Config{
		Portfolio: deps.Portfolio,
		Quotes:    deps.Quotes,
		Evaluator: deps.Evaluator,
		Detector:  deps.Detector,
		Notifier:  deps.Notifier,
		Ledger:    deps.Ledger,
		Interval:  a.cfg.Portfolio.CheckInterval(),
		OnCycle:   a.renderCycle(ctx, deps),
	}, a.logger)
	g.Go(func() error {
		return mon.Run(ctx)
	})

	if deps.StreamFeed != nil {
		feed := deps.StreamFeed
		g.Go(func() error {
			defer feed.Close()
			return feed.Run(ctx)
		})
	}
	if deps.Archiver != nil {
		g.Go(func() error {
			return a.archiveLoop(ctx, deps)
		})
	}

	g.Go(func() error {
		return a.sentimentLoop(ctx, deps)
	})
	g.Go(func() error {
		return a.marketLoop(ctx, deps)
	})

	return g.Wait()
}

// renderCycle returns the per-cycle hook that prints the portfolio screen and
// the most recent ledger entries after each monitoring cycle.
func (a *App) renderCycle(ctx context.Context, deps *Dependencies) monitor.CycleHook {
	return func(p *domain.Portfolio, snap *domain.CycleSnapshot) {
		fmt.Fprintln(os.Stdout, deps.Renderer.Portfolio(p, snap.Prices, snap.Sentiments, snap.TotalValue))

		if deps.Ledger == nil {
			return
		}
		records, err := deps.Ledger.ListRecent(ctx, 10)
		if err != nil {
			a.logger.WarnContext(ctx, "failed to list recent trades",
				slog.String("error", err.Error()),
			)
			return
		}
		if len(records) > 0 {
			fmt.Fprintln(os.Stdout, deps.Renderer.RecentTrades(records))
		}
	}
}

// sentimentLoop refreshes sentiment scores for the held symbols on a fixed
// interval and renders the sentiment screen.
func (a *App) sentimentLoop(ctx context.Context, deps *Dependencies) error {
	interval := time.Duration(a.cfg.Display.SentimentRefreshSecs) * time.Second
	cacheTTL := a.cfg.Sentiment.CacheTTL()
	symbols := deps.Portfolio.Symbols()

	// fetchedAt approximates when each symbol's score last entered the
	// cache, so the screen can show the remaining lifetime.
	fetchedAt := make(map[string]time.Time, len(symbols))

	refresh := func() {
		now := time.Now()
		sentiments := make(map[string]float64, len(symbols))
		ttls := make(map[string]time.Duration, len(symbols))
		for _, sym := range symbols {
			score, err := deps.Quotes.Sentiment(ctx, sym)
			if err != nil {
				a.logger.WarnContext(ctx, "sentiment refresh failed",
					slog.String("symbol", sym),
					slog.String("error", err.Error()),
				)
				continue
			}
			last, ok := fetchedAt[sym]
			if !ok || now.Sub(last) >= cacheTTL {
				fetchedAt[sym] = now
				last = now
			}
			sentiments[sym] = score
			ttls[sym] = cacheTTL - now.Sub(last)
		}
		fmt.Fprintln(os.Stdout, deps.Renderer.Sentiment(symbols, sentiments, ttls))
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			refresh()
		}
	}
}

// marketLoop refreshes the market overview on a fixed interval.
func (a *App) marketLoop(ctx context.Context, deps *Dependencies) error {
	interval := time.Duration(a.cfg.Market.RefreshSecs) * time.Second

	refresh := func() {
		rows, err := deps.Markets.FetchMarkets(ctx, nil)
		if err != nil {
			a.logger.WarnContext(ctx, "market refresh failed",
				slog.String("error", err.Error()),
			)
			return
		}
		rows = market.Arrange(rows, a.cfg.Market.PinnedSymbols, a.cfg.Market.SortBy)
		fmt.Fprintln(os.Stdout, deps.Renderer.Markets(rows))
	}

	refresh()
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			refresh()
		}
	}
}

// archiveLoop exports the ledger rows older than the current UTC day to
// object storage once per day.
func (a *App) archiveLoop(ctx context.Context, deps *Dependencies) error {
	run := func() {
		cutoff := time.Now().UTC().Truncate(archiveInterval)
		n, err := deps.Archiver.ArchiveBefore(ctx, cutoff)
		if err != nil {
			a.logger.ErrorContext(ctx, "ledger archival failed",
				slog.Time("cutoff", cutoff),
				slog.String("error", err.Error()),
			)
			return
		}
		if n > 0 {
			a.logger.InfoContext(ctx, "ledger archived",
				slog.Time("cutoff", cutoff),
				slog.Int64("records", n),
			)
		}
	}

	run()
	ticker := time.NewTicker(archiveInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			run()
		}
	}
}

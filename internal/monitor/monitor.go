// Package monitor runs the fixed-interval evaluation loop: snapshot quotes,
// apply the risk rules, persist trades, diff against the previous cycle, and
// deliver alerts.
package monitor

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/quantasea/coinsentry/internal/alert"
	"github.com/quantasea/coinsentry/internal/domain"
	"github.com/quantasea/coinsentry/internal/notify"
	"github.com/quantasea/coinsentry/internal/quotes"
	"github.com/quantasea/coinsentry/internal/risk"
)

// CycleHook is called at the end of every cycle with the portfolio as it now
// stands and the snapshot just taken. Used by the app to render screens.
type CycleHook func(p *domain.Portfolio, snap *domain.CycleSnapshot)

// Monitor owns the portfolio for the lifetime of the process and advances it
// one cycle at a time. It is not safe for concurrent use; Run is the only
// intended caller of RunCycle.
type Monitor struct {
	portfolio *domain.Portfolio
	quotes    *quotes.Service
	evaluator *risk.Evaluator
	detector  *alert.Detector
	notifier  *notify.Notifier
	ledger    domain.TradeLedger
	interval  time.Duration
	onCycle   CycleHook
	logger    *slog.Logger

	now func() time.Time
}

// Config collects the monitor's dependencies.
type Config struct {
	Portfolio *domain.Portfolio
	Quotes    *quotes.Service
	Evaluator *risk.Evaluator
	Detector  *alert.Detector
	Notifier  *notify.Notifier
	Ledger    domain.TradeLedger
	Interval  time.Duration
	OnCycle   CycleHook
}

// New creates a monitor.
func New(cfg Config, logger *slog.Logger) *Monitor {
	return &Monitor{
		portfolio: cfg.Portfolio,
		quotes:    cfg.Quotes,
		evaluator: cfg.Evaluator,
		detector:  cfg.Detector,
		notifier:  cfg.Notifier,
		ledger:    cfg.Ledger,
		interval:  cfg.Interval,
		onCycle:   cfg.OnCycle,
		logger:    logger.With(slog.String("component", "monitor")),
		now:       time.Now,
	}
}

// Run executes cycles at the configured interval until ctx is cancelled. The
// first cycle runs immediately. A failed cycle is logged and the loop keeps
// going; only cancellation stops it.
func (m *Monitor) Run(ctx context.Context) error {
	ticker := time.NewTicker(m.interval)
	defer ticker.Stop()

	var prev *domain.CycleSnapshot
	for {
		curr := m.RunCycle(ctx, prev)
		if curr != nil {
			prev = curr
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

// RunCycle advances the portfolio by one cycle and returns the snapshot to
// diff the next cycle against. A nil return (cancelled context) means the
// cycle did not complete and prev should be reused.
func (m *Monitor) RunCycle(ctx context.Context, prev *domain.CycleSnapshot) *domain.CycleSnapshot {
	if ctx.Err() != nil {
		return nil
	}

	start := m.now()
	logger := m.logger.With(slog.String("cycle_id", uuid.NewString()))
	logger.InfoContext(ctx, "cycle started",
		slog.Int("holdings", len(m.portfolio.Holdings)))

	snap := m.quotes.Snapshot(ctx, m.portfolio.Symbols())
	if ctx.Err() != nil {
		return nil
	}

	actions := m.evaluator.Evaluate(m.portfolio, snap.Prices, snap.Sentiments)
	executed := 0
	for _, act := range actions {
		if m.execute(ctx, logger, act) {
			executed++
		}
	}

	curr := m.buildSnapshot(prev, snap)

	alerts := m.detector.Compare(prev, curr)
	for _, a := range alerts {
		if err := m.notifier.Notify(ctx, a.Subject, a.Body); err != nil {
			logger.WarnContext(ctx, "alert delivery incomplete",
				slog.String("kind", string(a.Kind)),
				slog.String("error", err.Error()))
		}
	}

	if m.onCycle != nil {
		m.onCycle(m.portfolio, curr)
	}

	logger.InfoContext(ctx, "cycle finished",
		slog.Int("actions", executed),
		slog.Int("alerts", len(alerts)),
		slog.Float64("total_value", curr.TotalValue),
		slog.Duration("duration", m.now().Sub(start)))

	return curr
}

// execute persists and applies one sell action. The ledger write happens
// first: if it fails the portfolio is left untouched and the same condition
// triggers again next cycle. Notification failure never rolls anything back.
func (m *Monitor) execute(ctx context.Context, logger *slog.Logger, act risk.Action) bool {
	rec := domain.TradeRecord{
		Symbol:    act.Symbol,
		Quantity:  act.Quantity,
		Price:     act.Price,
		Action:    domain.ActionSell,
		Timestamp: m.now().UTC(),
	}
	if err := m.ledger.Append(ctx, rec); err != nil {
		logger.ErrorContext(ctx, "trade not recorded, holding kept",
			slog.String("symbol", act.Symbol),
			slog.String("cause", string(act.Cause)),
			slog.String("error", err.Error()))
		return false
	}

	risk.Apply(m.portfolio, act)

	logger.InfoContext(ctx, "action executed",
		slog.String("symbol", act.Symbol),
		slog.String("type", string(act.Type)),
		slog.String("cause", string(act.Cause)),
		slog.Float64("quantity", act.Quantity),
		slog.Float64("proceeds", act.Proceeds()))

	if err := m.notifier.Notify(ctx, "Portfolio Action", act.Description()); err != nil {
		logger.WarnContext(ctx, "action notification incomplete",
			slog.String("symbol", act.Symbol),
			slog.String("error", err.Error()))
	}

	return true
}

// buildSnapshot values the portfolio as it stands after this cycle's
// actions. A held symbol whose quote failed this cycle carries its previous
// reading forward so the total stays comparable; carried values never feed
// decisions, only valuation and diffing.
func (m *Monitor) buildSnapshot(prev *domain.CycleSnapshot, snap quotes.Snapshot) *domain.CycleSnapshot {
	prices := make(map[string]float64, len(snap.Prices))
	for k, v := range snap.Prices {
		prices[k] = v
	}
	sentiments := make(map[string]float64, len(snap.Sentiments))
	for k, v := range snap.Sentiments {
		sentiments[k] = v
	}

	if prev != nil {
		for _, sym := range m.portfolio.Symbols() {
			if _, ok := prices[sym]; !ok {
				if v, ok := prev.Prices[sym]; ok {
					prices[sym] = v
				}
			}
			if _, ok := sentiments[sym]; !ok {
				if v, ok := prev.Sentiments[sym]; ok {
					sentiments[sym] = v
				}
			}
		}
	}

	total, complete := m.portfolio.Value(prices)
	if !complete {
		m.logger.Warn("portfolio value is a lower bound, unpriced holdings",
			slog.Float64("total_value", total))
	}

	return &domain.CycleSnapshot{
		Prices:     prices,
		Sentiments: sentiments,
		TotalValue: total,
		Taken:      m.now(),
	}
}

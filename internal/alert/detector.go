// Package alert diffs consecutive cycle snapshots and produces the alerts
// whose change exceeds the configured thresholds.
package alert

import (
	"fmt"
	"log/slog"
	"math"
	"sort"

	"github.com/quantasea/coinsentry/internal/domain"
)

// Thresholds gate alert emission. All comparisons are strict: a change equal
// to its threshold stays quiet.
type Thresholds struct {
	// PortfolioValuePct is the portfolio value change, in percent.
	PortfolioValuePct float64
	// HoldingPricePct is the per-holding price change, in percent.
	HoldingPricePct float64
	// SentimentDelta is the per-symbol sentiment change, as an absolute
	// score difference.
	SentimentDelta float64
}

// Detector compares the current cycle snapshot against the previous one.
type Detector struct {
	thresholds Thresholds
	logger     *slog.Logger
}

// NewDetector creates a detector with the given thresholds.
func NewDetector(thresholds Thresholds, logger *slog.Logger) *Detector {
	return &Detector{
		thresholds: thresholds,
		logger:     logger.With(slog.String("component", "alert")),
	}
}

// Compare returns the alerts for the change from prev to curr, in
// deterministic order: portfolio value first, then holding prices by symbol,
// then sentiments by symbol. A nil prev (the first cycle) produces nothing,
// and only symbols observed in both snapshots are compared. The three checks
// are independent: a symbol whose price and sentiment both moved past their
// thresholds raises both alerts in the same cycle.
func (d *Detector) Compare(prev, curr *domain.CycleSnapshot) []domain.Alert {
	if prev == nil {
		return nil
	}

	var alerts []domain.Alert

	if prev.TotalValue != 0 {
		pct := (curr.TotalValue - prev.TotalValue) / math.Abs(prev.TotalValue) * 100
		if math.Abs(pct) > d.thresholds.PortfolioValuePct {
			alerts = append(alerts, domain.Alert{
				Kind:    domain.AlertPortfolioValue,
				Subject: "Portfolio Value Change Alert",
				Body: fmt.Sprintf("Portfolio value changed by %.2f%%: Previous $%.2f, Current $%.2f",
					pct, prev.TotalValue, curr.TotalValue),
			})
		}
	}

	for _, symbol := range sortedCommonKeys(prev.Prices, curr.Prices) {
		prevPrice := prev.Prices[symbol]
		if prevPrice == 0 {
			continue
		}
		currPrice := curr.Prices[symbol]
		pct := (currPrice - prevPrice) / math.Abs(prevPrice) * 100
		if math.Abs(pct) > d.thresholds.HoldingPricePct {
			alerts = append(alerts, domain.Alert{
				Kind:    domain.AlertHoldingPrice,
				Symbol:  symbol,
				Subject: "Holding Price Change Alert",
				Body: fmt.Sprintf("%s price changed by %.2f%%: Previous $%.2f, Current $%.2f",
					symbol, pct, prevPrice, currPrice),
			})
		}
	}

	for _, symbol := range sortedCommonKeys(prev.Sentiments, curr.Sentiments) {
		prevScore := prev.Sentiments[symbol]
		currScore := curr.Sentiments[symbol]
		delta := currScore - prevScore
		if math.Abs(delta) > d.thresholds.SentimentDelta {
			alerts = append(alerts, domain.Alert{
				Kind:    domain.AlertSentiment,
				Symbol:  symbol,
				Subject: "Sentiment Change Alert",
				Body: fmt.Sprintf("%s sentiment changed by %.2f: Previous %.2f, Current %.2f",
					symbol, delta, prevScore, currScore),
			})
		}
	}

	d.logger.Debug("snapshots compared", slog.Int("alerts", len(alerts)))
	return alerts
}

// sortedCommonKeys returns the keys present in both maps, sorted.
func sortedCommonKeys(a, b map[string]float64) []string {
	keys := make([]string, 0, len(a))
	for k := range a {
		if _, ok := b[k]; ok {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

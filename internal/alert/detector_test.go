package alert

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantasea/coinsentry/internal/domain"
)

func newTestDetector() *Detector {
	return NewDetector(Thresholds{
		PortfolioValuePct: 5,
		HoldingPricePct:   10,
		SentimentDelta:    0.2,
	}, slog.New(slog.DiscardHandler))
}

func snap(total float64, prices, sentiments map[string]float64) *domain.CycleSnapshot {
	return &domain.CycleSnapshot{
		Prices:     prices,
		Sentiments: sentiments,
		TotalValue: total,
		Taken:      time.Date(2026, 2, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestCompareFirstCycleIsQuiet(t *testing.T) {
	curr := snap(10000, map[string]float64{"BTC": 50000}, map[string]float64{"BTC": 0.7})
	assert.Nil(t, newTestDetector().Compare(nil, curr))
}

func TestComparePortfolioValueChange(t *testing.T) {
	prev := snap(10000, nil, nil)
	curr := snap(10600, nil, nil)

	alerts := newTestDetector().Compare(prev, curr)

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertPortfolioValue, alerts[0].Kind)
	assert.Equal(t, "Portfolio Value Change Alert", alerts[0].Subject)
	assert.Equal(t, "Portfolio value changed by 6.00%: Previous $10000.00, Current $10600.00", alerts[0].Body)
}

func TestCompareThresholdIsStrict(t *testing.T) {
	prev := snap(10000, nil, nil)
	curr := snap(10500, nil, nil) // exactly 5%

	assert.Empty(t, newTestDetector().Compare(prev, curr))
}

func TestCompareHoldingPriceDrop(t *testing.T) {
	prev := snap(10000, map[string]float64{"ETH": 3000}, nil)
	curr := snap(10000, map[string]float64{"ETH": 2500}, nil)

	alerts := newTestDetector().Compare(prev, curr)

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertHoldingPrice, alerts[0].Kind)
	assert.Equal(t, "ETH", alerts[0].Symbol)
	assert.Equal(t, "ETH price changed by -16.67%: Previous $3000.00, Current $2500.00", alerts[0].Body)
}

func TestCompareSymbolMissingFromOneSnapshot(t *testing.T) {
	prev := snap(10000, map[string]float64{"BTC": 50000}, nil)
	curr := snap(10000, map[string]float64{"ETH": 3000}, nil)

	assert.Empty(t, newTestDetector().Compare(prev, curr))
}

func TestCompareSentimentChange(t *testing.T) {
	prev := snap(10000, nil, map[string]float64{"SOL": 0.8})
	curr := snap(10000, nil, map[string]float64{"SOL": 0.5})

	alerts := newTestDetector().Compare(prev, curr)

	require.Len(t, alerts, 1)
	assert.Equal(t, domain.AlertSentiment, alerts[0].Kind)
	assert.Equal(t, "SOL sentiment changed by -0.30: Previous 0.80, Current 0.50", alerts[0].Body)
}

func TestComparePriceAndSentimentChecksAreIndependent(t *testing.T) {
	prev := snap(10000,
		map[string]float64{"BTC": 50000},
		map[string]float64{"BTC": 0.8})
	curr := snap(10000,
		map[string]float64{"BTC": 40000},
		map[string]float64{"BTC": 0.4})

	alerts := newTestDetector().Compare(prev, curr)

	require.Len(t, alerts, 2)
	assert.Equal(t, domain.AlertHoldingPrice, alerts[0].Kind)
	assert.Equal(t, "BTC", alerts[0].Symbol)
	assert.Equal(t, domain.AlertSentiment, alerts[1].Kind)
	assert.Equal(t, "BTC", alerts[1].Symbol)
}

func TestCompareSentimentDeltaBoundary(t *testing.T) {
	tests := []struct {
		name  string
		curr  float64
		fires bool
	}{
		{"well past threshold", 0.55, true},
		{"within threshold", 0.65, false},
		{"exactly at threshold", 0.60, false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			prev := snap(10000, nil, map[string]float64{"SOL": 0.8})
			curr := snap(10000, nil, map[string]float64{"SOL": tc.curr})

			alerts := newTestDetector().Compare(prev, curr)
			if tc.fires {
				require.Len(t, alerts, 1)
				assert.Equal(t, domain.AlertSentiment, alerts[0].Kind)
			} else {
				assert.Empty(t, alerts)
			}
		})
	}
}

func TestCompareDeterministicOrder(t *testing.T) {
	prev := snap(10000,
		map[string]float64{"ETH": 3000, "BTC": 50000},
		map[string]float64{"ZEC": 0.2})
	curr := snap(12000,
		map[string]float64{"ETH": 4000, "BTC": 60000},
		map[string]float64{"ZEC": 0.9})

	alerts := newTestDetector().Compare(prev, curr)

	require.Len(t, alerts, 4)
	assert.Equal(t, domain.AlertPortfolioValue, alerts[0].Kind)
	assert.Equal(t, "BTC", alerts[1].Symbol)
	assert.Equal(t, "ETH", alerts[2].Symbol)
	assert.Equal(t, "ZEC", alerts[3].Symbol)
}

func TestCompareZeroPreviousValueIsSkipped(t *testing.T) {
	prev := snap(0, nil, nil)
	curr := snap(10000, nil, nil)

	assert.Empty(t, newTestDetector().Compare(prev, curr))
}

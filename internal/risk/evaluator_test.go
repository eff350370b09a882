package risk

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantasea/coinsentry/internal/domain"
)

func newTestEvaluator() *Evaluator {
	return NewEvaluator(0.5, 0.7, 0.3, slog.New(slog.DiscardHandler))
}

func TestEvaluateStopLoss(t *testing.T) {
	p := &domain.Portfolio{
		Holdings: []domain.Holding{
			{Symbol: "BTC", Quantity: 1, StopLoss: 45000},
		},
	}
	prices := map[string]float64{"BTC": 45000}
	sentiments := map[string]float64{"BTC": 0.8}

	actions := newTestEvaluator().Evaluate(p, prices, sentiments)

	require.Len(t, actions, 1)
	assert.Equal(t, ActionLiquidate, actions[0].Type)
	assert.Equal(t, CauseStopLoss, actions[0].Cause)
	assert.Equal(t, 1.0, actions[0].Quantity)
}

func TestEvaluateSentimentFloor(t *testing.T) {
	p := &domain.Portfolio{
		Holdings: []domain.Holding{
			{Symbol: "ETH", Quantity: 10, StopLoss: 1000},
		},
	}
	prices := map[string]float64{"ETH": 3000}
	sentiments := map[string]float64{"ETH": 0.25}

	actions := newTestEvaluator().Evaluate(p, prices, sentiments)

	require.Len(t, actions, 1)
	assert.Equal(t, CauseSentimentFloor, actions[0].Cause)
}

func TestEvaluateStopLossWinsOverSentiment(t *testing.T) {
	p := &domain.Portfolio{
		Holdings: []domain.Holding{
			{Symbol: "SOL", Quantity: 5, StopLoss: 100},
		},
	}
	prices := map[string]float64{"SOL": 90}
	sentiments := map[string]float64{"SOL": 0.1}

	actions := newTestEvaluator().Evaluate(p, prices, sentiments)

	require.Len(t, actions, 1)
	assert.Equal(t, CauseStopLoss, actions[0].Cause)
}

func TestEvaluateSkipsHoldingWithMissingQuote(t *testing.T) {
	p := &domain.Portfolio{
		Holdings: []domain.Holding{
			{Symbol: "BTC", Quantity: 1, StopLoss: 45000},
			{Symbol: "ETH", Quantity: 10, StopLoss: 1000},
		},
	}
	// BTC would trip its stop-loss but has no sentiment, so it is skipped.
	prices := map[string]float64{"BTC": 40000, "ETH": 3000}
	sentiments := map[string]float64{"ETH": 0.8}

	actions := newTestEvaluator().Evaluate(p, prices, sentiments)
	assert.Empty(t, actions)
}

func TestEvaluateTrimOverAllocation(t *testing.T) {
	p := &domain.Portfolio{
		Cash: 1000,
		Holdings: []domain.Holding{
			{Symbol: "BTC", Quantity: 0.2, StopLoss: 10000},
			{Symbol: "ETH", Quantity: 1, StopLoss: 500},
		},
	}
	// Total = 1000 + 0.2*50000 + 1*1000 = 12000. BTC is 10000/12000 = 83%.
	prices := map[string]float64{"BTC": 50000, "ETH": 1000}
	sentiments := map[string]float64{"BTC": 0.5, "ETH": 0.6}

	actions := newTestEvaluator().Evaluate(p, prices, sentiments)

	require.Len(t, actions, 1)
	act := actions[0]
	assert.Equal(t, ActionTrim, act.Type)
	assert.Equal(t, CauseOverAllocation, act.Cause)
	assert.Equal(t, "BTC", act.Symbol)
	// Excess = 10000 - 0.5*12000 = 4000, so 0.08 BTC.
	assert.InDelta(t, 0.08, act.Quantity, 1e-9)
}

func TestEvaluateTrimsBothOverweightHoldingsToCap(t *testing.T) {
	// Cap below one-half so two equal holdings can both sit over it.
	ev := NewEvaluator(5.0/12.0, 0.7, 0.3, slog.New(slog.DiscardHandler))
	p := &domain.Portfolio{
		Holdings: []domain.Holding{
			{Symbol: "SOL", Quantity: 100, StopLoss: 1},
			{Symbol: "ADA", Quantity: 1000, StopLoss: 0.1},
		},
	}
	// Each holding is worth 600 of the 1200 total; the cap allows 500.
	prices := map[string]float64{"SOL": 6, "ADA": 0.6}
	sentiments := map[string]float64{"SOL": 0.5, "ADA": 0.5}

	actions := ev.Evaluate(p, prices, sentiments)

	require.Len(t, actions, 2)
	for _, act := range actions {
		assert.Equal(t, ActionTrim, act.Type)
		// Both trims are computed against the same pre-trim total, so each
		// sells exactly 100 worth.
		assert.InDelta(t, 100, act.Proceeds(), 1e-9)
	}

	for _, act := range actions {
		Apply(p, act)
	}
	assert.InDelta(t, 200, p.Cash, 1e-9)
	require.Len(t, p.Holdings, 2)
	for _, h := range p.Holdings {
		// Each holding lands at 500, exactly the cap share of the total.
		assert.InDelta(t, 500, h.Quantity*prices[h.Symbol], 1e-9)
	}
}

func TestEvaluateStrongSentimentBlocksTrim(t *testing.T) {
	p := &domain.Portfolio{
		Cash: 1000,
		Holdings: []domain.Holding{
			{Symbol: "BTC", Quantity: 0.2, StopLoss: 10000},
		},
	}
	prices := map[string]float64{"BTC": 50000}
	sentiments := map[string]float64{"BTC": 0.9}

	actions := newTestEvaluator().Evaluate(p, prices, sentiments)
	assert.Empty(t, actions)
}

func TestEvaluateExactCapIsNotTrimmed(t *testing.T) {
	p := &domain.Portfolio{
		Cash: 5000,
		Holdings: []domain.Holding{
			{Symbol: "BTC", Quantity: 0.1, StopLoss: 10000},
		},
	}
	// Total = 5000 + 5000 = 10000; BTC allocation exactly 50%.
	prices := map[string]float64{"BTC": 50000}
	sentiments := map[string]float64{"BTC": 0.4}

	actions := newTestEvaluator().Evaluate(p, prices, sentiments)
	assert.Empty(t, actions)
}

func TestEvaluateRebalanceSkippedWhenSurvivorUnpriced(t *testing.T) {
	p := &domain.Portfolio{
		Cash: 1000,
		Holdings: []domain.Holding{
			{Symbol: "BTC", Quantity: 0.2, StopLoss: 10000},
			{Symbol: "ADA", Quantity: 100, StopLoss: 0.1},
		},
	}
	// ADA has no price, so the total is unknowable and no trims happen, even
	// though BTC would otherwise be over-allocated.
	prices := map[string]float64{"BTC": 50000}
	sentiments := map[string]float64{"BTC": 0.4, "ADA": 0.5}

	actions := newTestEvaluator().Evaluate(p, prices, sentiments)
	assert.Empty(t, actions)
}

func TestEvaluateTrimAccountsForLiquidationProceeds(t *testing.T) {
	p := &domain.Portfolio{
		Holdings: []domain.Holding{
			{Symbol: "DOGE", Quantity: 1000, StopLoss: 0.5},
			{Symbol: "BTC", Quantity: 0.2, StopLoss: 10000},
		},
	}
	// DOGE trips its stop-loss; its 400 in proceeds stays in the total, so
	// BTC's allocation is 10000/10400.
	prices := map[string]float64{"DOGE": 0.4, "BTC": 50000}
	sentiments := map[string]float64{"DOGE": 0.6, "BTC": 0.4}

	actions := newTestEvaluator().Evaluate(p, prices, sentiments)

	require.Len(t, actions, 2)
	assert.Equal(t, CauseStopLoss, actions[0].Cause)
	assert.Equal(t, "DOGE", actions[0].Symbol)

	assert.Equal(t, ActionTrim, actions[1].Type)
	assert.Equal(t, "BTC", actions[1].Symbol)
	// Excess = 10000 - 0.5*10400 = 4800.
	assert.InDelta(t, 4800.0/50000, actions[1].Quantity, 1e-9)
}

func TestApply(t *testing.T) {
	p := &domain.Portfolio{
		Cash: 100,
		Holdings: []domain.Holding{
			{Symbol: "BTC", Quantity: 0.5, StopLoss: 10000},
		},
	}

	Apply(p, Action{Type: ActionTrim, Symbol: "BTC", Quantity: 0.2, Price: 50000})

	require.NotNil(t, p.Find("BTC"))
	assert.InDelta(t, 0.3, p.Find("BTC").Quantity, 1e-9)
	assert.InDelta(t, 10100, p.Cash, 1e-9)
}

func TestApplyLiquidationRemovesHolding(t *testing.T) {
	p := &domain.Portfolio{
		Holdings: []domain.Holding{
			{Symbol: "ETH", Quantity: 2, StopLoss: 1000},
		},
	}

	Apply(p, Action{Type: ActionLiquidate, Symbol: "ETH", Quantity: 2, Price: 1500})

	assert.Nil(t, p.Find("ETH"))
	assert.InDelta(t, 3000, p.Cash, 1e-9)
}

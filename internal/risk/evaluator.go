// Package risk turns a portfolio plus a cycle's quotes into sell actions.
// Evaluation is pure; applying an action to the portfolio is a separate step
// so the ledger write can happen between the two.
package risk

import (
	"fmt"
	"log/slog"

	"github.com/quantasea/coinsentry/internal/domain"
)

// ActionType distinguishes full liquidations from partial trims.
type ActionType string

const (
	ActionLiquidate ActionType = "liquidate"
	ActionTrim      ActionType = "trim"
)

// Cause is the rule that produced an action.
type Cause string

const (
	CauseStopLoss       Cause = "stop_loss"
	CauseSentimentFloor Cause = "sentiment_floor"
	CauseOverAllocation Cause = "over_allocation"
)

// Action is a sell decision for one holding. Quantity is the amount to sell
// at Price; for a liquidation it equals the held quantity.
type Action struct {
	Type      ActionType
	Cause     Cause
	Symbol    string
	Quantity  float64
	Price     float64
	Sentiment float64
}

// Proceeds is the cash realized by executing the action.
func (a Action) Proceeds() float64 {
	return a.Quantity * a.Price
}

// Description renders the action for logs and notifications.
func (a Action) Description() string {
	switch a.Cause {
	case CauseStopLoss:
		return fmt.Sprintf("%s: Stop-loss triggered at $%.2f, sold %g tokens for $%.2f.",
			a.Symbol, a.Price, a.Quantity, a.Proceeds())
	case CauseSentimentFloor:
		return fmt.Sprintf("%s: Negative sentiment triggered at $%.2f (sentiment: %.2f), sold %g tokens for $%.2f.",
			a.Symbol, a.Price, a.Sentiment, a.Quantity, a.Proceeds())
	case CauseOverAllocation:
		return fmt.Sprintf("%s: Allocation above cap at $%.2f, sold %g tokens for $%.2f.",
			a.Symbol, a.Price, a.Quantity, a.Proceeds())
	default:
		return fmt.Sprintf("%s: Sold %g tokens at $%.2f for $%.2f.",
			a.Symbol, a.Quantity, a.Price, a.Proceeds())
	}
}

// Evaluator holds the risk rules: the stop-loss and sentiment floor that
// force liquidation, and the allocation cap that triggers sentiment-gated
// trims.
type Evaluator struct {
	maxAllocation     float64
	positiveThreshold float64
	negativeThreshold float64
	logger            *slog.Logger
}

// NewEvaluator creates an evaluator with the given rules.
func NewEvaluator(maxAllocation, positiveThreshold, negativeThreshold float64, logger *slog.Logger) *Evaluator {
	return &Evaluator{
		maxAllocation:     maxAllocation,
		positiveThreshold: positiveThreshold,
		negativeThreshold: negativeThreshold,
		logger:            logger.With(slog.String("component", "risk")),
	}
}

// Evaluate returns the sell actions for this cycle without mutating the
// portfolio. Liquidations come first in portfolio order, then trims.
//
// A holding missing either quote is skipped by the liquidation pass. The
// rebalance pass needs a consistent total and is skipped entirely when any
// surviving holding lacks a price; a survivor missing only sentiment keeps
// its position (a trim requires weak sentiment to be known).
func (e *Evaluator) Evaluate(p *domain.Portfolio, prices, sentiments map[string]float64) []Action {
	var actions []Action

	liquidated := make(map[string]bool)
	for _, h := range p.Holdings {
		price, pok := prices[h.Symbol]
		sentiment, sok := sentiments[h.Symbol]
		if !pok || !sok {
			e.logger.Warn("holding skipped, incomplete quotes",
				slog.String("symbol", h.Symbol),
				slog.Bool("has_price", pok),
				slog.Bool("has_sentiment", sok))
			continue
		}

		if price <= h.StopLoss {
			actions = append(actions, Action{
				Type:      ActionLiquidate,
				Cause:     CauseStopLoss,
				Symbol:    h.Symbol,
				Quantity:  h.Quantity,
				Price:     price,
				Sentiment: sentiment,
			})
			liquidated[h.Symbol] = true
			continue
		}
		if sentiment < e.negativeThreshold {
			actions = append(actions, Action{
				Type:      ActionLiquidate,
				Cause:     CauseSentimentFloor,
				Symbol:    h.Symbol,
				Quantity:  h.Quantity,
				Price:     price,
				Sentiment: sentiment,
			})
			liquidated[h.Symbol] = true
		}
	}

	actions = append(actions, e.trims(p, prices, sentiments, liquidated)...)
	return actions
}

// trims computes over-allocation sells against the portfolio as it will
// stand after the liquidations execute. Selling at the snapshot price moves
// value into cash without changing the total, so a single pass against the
// starting total is exact.
func (e *Evaluator) trims(p *domain.Portfolio, prices, sentiments map[string]float64, liquidated map[string]bool) []Action {
	total := p.Cash
	for _, h := range p.Holdings {
		price, ok := prices[h.Symbol]
		if !ok {
			if liquidated[h.Symbol] {
				continue
			}
			e.logger.Warn("rebalance skipped, unpriced holding",
				slog.String("symbol", h.Symbol))
			return nil
		}
		total += h.Quantity * price
	}
	if total <= 0 {
		return nil
	}

	var actions []Action
	for _, h := range p.Holdings {
		if liquidated[h.Symbol] {
			continue
		}
		price := prices[h.Symbol]
		sentiment, sok := sentiments[h.Symbol]
		if !sok {
			continue
		}

		value := h.Quantity * price
		if value/total <= e.maxAllocation {
			continue
		}
		if sentiment >= e.positiveThreshold {
			// Strong sentiment earns the position its overweight.
			e.logger.Info("over-allocation kept on strong sentiment",
				slog.String("symbol", h.Symbol),
				slog.Float64("allocation", value/total),
				slog.Float64("sentiment", sentiment))
			continue
		}

		excess := value - e.maxAllocation*total
		quantity := excess / price
		if quantity > h.Quantity {
			quantity = h.Quantity
		}

		actions = append(actions, Action{
			Type:      ActionTrim,
			Cause:     CauseOverAllocation,
			Symbol:    h.Symbol,
			Quantity:  quantity,
			Price:     price,
			Sentiment: sentiment,
		})
	}

	return actions
}

// Apply executes a sell action on the portfolio: quantity drops, cash grows
// by the proceeds, and a holding sold to zero is removed. Callers persist the
// trade before applying so a failed write leaves the holding untouched.
func Apply(p *domain.Portfolio, a Action) {
	h := p.Find(a.Symbol)
	if h == nil {
		return
	}

	quantity := a.Quantity
	if quantity > h.Quantity {
		quantity = h.Quantity
	}

	h.Quantity -= quantity
	p.Cash += quantity * a.Price

	if h.Quantity <= 0 {
		p.Remove(a.Symbol)
	}
}

package domain

import "time"

// Holding is a single asset position. StopLoss is an absolute price floor;
// at or below it the position is liquidated in full. PurchasePrice is the
// cost basis and is informational only.
type Holding struct {
	Symbol        string
	Quantity      float64
	PurchasePrice float64
	StopLoss      float64
}

// Portfolio is an ordered set of holdings (symbols unique) plus realized
// cash. Only the risk evaluator mutates it: quantities decrease, cash grows
// by sale proceeds, and a holding whose quantity reaches zero is removed.
type Portfolio struct {
	Holdings []Holding
	Cash     float64
}

// Symbols returns the held symbols in portfolio order.
func (p *Portfolio) Symbols() []string {
	out := make([]string, len(p.Holdings))
	for i, h := range p.Holdings {
		out[i] = h.Symbol
	}
	return out
}

// Find returns a pointer to the holding for symbol, or nil.
func (p *Portfolio) Find(symbol string) *Holding {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			return &p.Holdings[i]
		}
	}
	return nil
}

// Remove deletes the holding for symbol, preserving order of the rest.
func (p *Portfolio) Remove(symbol string) {
	for i := range p.Holdings {
		if p.Holdings[i].Symbol == symbol {
			p.Holdings = append(p.Holdings[:i], p.Holdings[i+1:]...)
			return
		}
	}
}

// Value computes cash plus the mark-to-market value of every holding with a
// price in prices. The second return reports whether all holdings were
// priced; when false the total is a lower bound and must not be used for
// allocation decisions.
func (p *Portfolio) Value(prices map[string]float64) (float64, bool) {
	total := p.Cash
	complete := true
	for _, h := range p.Holdings {
		price, ok := prices[h.Symbol]
		if !ok {
			complete = false
			continue
		}
		total += h.Quantity * price
	}
	return total, complete
}

// CycleSnapshot memoizes one monitoring cycle's observations so the next
// cycle can be diffed against it. It lives only as long as the process; it is
// created each cycle and replaced at cycle end.
type CycleSnapshot struct {
	Prices     map[string]float64
	Sentiments map[string]float64
	TotalValue float64
	Taken      time.Time
}

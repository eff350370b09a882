package domain

import "time"

// TradeAction is the direction of a ledger entry.
type TradeAction string

const (
	ActionBuy  TradeAction = "buy"
	ActionSell TradeAction = "sell"
)

// TradeRecord is one executed (simulated) liquidation or trim. Records are
// append-only audit data; nothing in the decision path ever reads them back.
type TradeRecord struct {
	ID        int64
	Symbol    string
	Quantity  float64
	Price     float64
	Action    TradeAction
	Timestamp time.Time
}

// Proceeds is the cash credited by this record.
func (t TradeRecord) Proceeds() float64 {
	return t.Quantity * t.Price
}

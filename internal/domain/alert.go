package domain

// AlertKind classifies what a change-detection alert is about.
type AlertKind string

const (
	AlertPortfolioValue AlertKind = "portfolio_value"
	AlertHoldingPrice   AlertKind = "holding_price"
	AlertSentiment      AlertKind = "sentiment"
	AlertAction         AlertKind = "action"
)

// Alert is one threshold-gated notification. Subject and Body are already
// composed; delivery is the notifier's concern.
type Alert struct {
	Kind    AlertKind
	Symbol  string // empty for portfolio-level alerts
	Subject string
	Body    string
}

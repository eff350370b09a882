// Package display renders the portfolio, sentiment, and market screens as
// styled terminal tables.
package display

import (
	"fmt"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/quantasea/coinsentry/internal/domain"
)

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("15"))

	headerStyle = lipgloss.NewStyle().
			Bold(true)

	symbolStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("14"))

	cashStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))

	bullishStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("10"))

	bearishStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("9"))

	watchStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("11"))
)

// Renderer renders screens; with colors disabled every cell is plain text.
type Renderer struct {
	useColors         bool
	positiveThreshold float64
	negativeThreshold float64
}

// NewRenderer creates a renderer. The thresholds pick the sentiment cell
// color and the recommendation column.
func NewRenderer(useColors bool, positiveThreshold, negativeThreshold float64) *Renderer {
	return &Renderer{
		useColors:         useColors,
		positiveThreshold: positiveThreshold,
		negativeThreshold: negativeThreshold,
	}
}

func (r *Renderer) style(s lipgloss.Style, text string) string {
	if !r.useColors {
		return text
	}
	return s.Render(text)
}

func (r *Renderer) sentimentCell(score float64) string {
	text := fmt.Sprintf("%.2f", score)
	switch {
	case score >= r.positiveThreshold:
		return r.style(bullishStyle, text)
	case score <= r.negativeThreshold:
		return r.style(bearishStyle, text)
	default:
		return r.style(watchStyle, text)
	}
}

func (r *Renderer) newTable(headers ...string) *table.Table {
	return table.New().
		Border(lipgloss.NormalBorder()).
		StyleFunc(func(row, _ int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			return lipgloss.NewStyle()
		}).
		Headers(headers...)
}

// Portfolio renders the holdings screen: one row per holding plus cash and
// total rows. Holdings without a price show their value as n/a.
func (r *Renderer) Portfolio(p *domain.Portfolio, prices, sentiments map[string]float64, total float64) string {
	t := r.newTable("Symbol", "Quantity", "Purchase Price", "Stop-Loss", "Current Value", "Sentiment")

	for _, h := range p.Holdings {
		value := "n/a"
		if price, ok := prices[h.Symbol]; ok {
			value = r.style(valueStyle, fmt.Sprintf("$%.2f", h.Quantity*price))
		}
		sentiment := "n/a"
		if score, ok := sentiments[h.Symbol]; ok {
			sentiment = r.sentimentCell(score)
		}
		t.Row(
			r.style(symbolStyle, h.Symbol),
			fmt.Sprintf("%.2f", h.Quantity),
			fmt.Sprintf("$%.2f", h.PurchasePrice),
			fmt.Sprintf("$%.2f", h.StopLoss),
			value,
			sentiment,
		)
	}

	t.Row(r.style(cashStyle, "Cash"), fmt.Sprintf("$%.2f", p.Cash), "", "", "", "")
	t.Row(r.style(titleStyle, "Total"), "", "", "", r.style(titleStyle, fmt.Sprintf("$%.2f", total)), "")

	return r.style(titleStyle, "=== Portfolio ===") + "\n" + t.Render()
}

// Sentiment renders the sentiment dashboard for the held symbols. ttls maps
// a symbol to the remaining cache lifetime of its sentiment entry; symbols
// without an entry show N/A.
func (r *Renderer) Sentiment(symbols []string, sentiments map[string]float64, ttls map[string]time.Duration) string {
	t := r.newTable("Symbol", "Sentiment Score", "Cache TTL", "Recommendation")

	for _, sym := range symbols {
		score, ok := sentiments[sym]
		if !ok {
			score = domain.NeutralSentiment
		}

		ttl := "N/A"
		if d, ok := ttls[sym]; ok {
			ttl = fmt.Sprintf("%ds", int(d.Seconds()))
		}

		var recommendation string
		switch {
		case score >= r.positiveThreshold:
			recommendation = r.style(bullishStyle, "Hold/Buy")
		case score <= r.negativeThreshold:
			recommendation = r.style(bearishStyle, "Sell")
		default:
			recommendation = r.style(watchStyle, "Monitor")
		}

		t.Row(r.style(symbolStyle, sym), r.sentimentCell(score), ttl, recommendation)
	}

	header := r.style(titleStyle, "=== Sentiment Analysis Dashboard ===") +
		"\nTimestamp: " + time.Now().UTC().Format(time.RFC3339)
	return header + "\n" + t.Render()
}

// Markets renders the market overview rows in the order given.
func (r *Renderer) Markets(rows []domain.MarketData) string {
	t := r.newTable("Symbol", "Price", "Market Cap", "24h Change")

	for _, row := range rows {
		change := fmt.Sprintf("%+.2f%%", row.Change24h)
		if row.Change24h >= 0 {
			change = r.style(bullishStyle, change)
		} else {
			change = r.style(bearishStyle, change)
		}
		t.Row(
			r.style(symbolStyle, row.Symbol),
			fmt.Sprintf("$%.2f", row.Price),
			fmt.Sprintf("$%.0f", row.MarketCap),
			change,
		)
	}

	return r.style(titleStyle, "=== Market Overview ===") + "\n" + t.Render()
}

// RecentTrades renders the latest ledger entries, newest first.
func (r *Renderer) RecentTrades(records []domain.TradeRecord) string {
	t := r.newTable("Time", "Symbol", "Action", "Quantity", "Price", "Proceeds")

	for _, rec := range records {
		t.Row(
			rec.Timestamp.UTC().Format("2006-01-02 15:04:05"),
			r.style(symbolStyle, rec.Symbol),
			string(rec.Action),
			fmt.Sprintf("%.4f", rec.Quantity),
			fmt.Sprintf("$%.2f", rec.Price),
			r.style(valueStyle, fmt.Sprintf("$%.2f", rec.Proceeds())),
		)
	}

	return r.style(titleStyle, "=== Recent Trades ===") + "\n" + t.Render()
}

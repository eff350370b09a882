// Package market supplies the market overview screen from a CoinGecko-style
// markets endpoint and arranges the rows for display.
package market

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/quantasea/coinsentry/internal/domain"
)

// perPage caps the number of rows fetched for the overview.
const perPage = 50

// Provider is the REST client for the coins/markets endpoint. Symbols here
// are provider coin IDs ("bitcoin", "phala-network"), not exchange pairs.
type Provider struct {
	baseURL    string
	httpClient *http.Client
}

var _ domain.MarketProvider = (*Provider)(nil)

// NewProvider creates a market provider against the given API root, e.g.
// "https://api.coingecko.com".
func NewProvider(baseURL string) *Provider {
	return &Provider{
		baseURL: baseURL,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type apiMarket struct {
	ID             string  `json:"id"`
	CurrentPrice   float64 `json:"current_price"`
	MarketCap      float64 `json:"market_cap"`
	PriceChange24h float64 `json:"price_change_percentage_24h"`
}

// FetchMarkets returns market rows priced in USD. When symbols is non-empty
// the query is restricted to those coin IDs; otherwise the top rows by
// market cap are returned.
func (p *Provider) FetchMarkets(ctx context.Context, symbols []string) ([]domain.MarketData, error) {
	params := url.Values{}
	params.Set("vs_currency", "usd")
	params.Set("per_page", fmt.Sprintf("%d", perPage))
	if len(symbols) > 0 {
		params.Set("ids", strings.Join(symbols, ","))
	}

	endpoint := p.baseURL + "/api/v3/coins/markets?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("market: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("market: fetch markets: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("market: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("market: fetch markets: HTTP %d: %s", resp.StatusCode, string(body))
	}

	var rows []apiMarket
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("market: decode markets: %w", err)
	}

	out := make([]domain.MarketData, 0, len(rows))
	for _, row := range rows {
		out = append(out, domain.MarketData{
			Symbol:    row.ID,
			Price:     row.CurrentPrice,
			MarketCap: row.MarketCap,
			Change24h: row.PriceChange24h,
		})
	}
	return out, nil
}

// Arrange orders rows for the overview screen: pinned symbols first, in
// their configured order, then the rest sorted descending by the sortBy
// criterion ("market_cap" or "price_change_24h"; anything else falls back
// to market cap).
func Arrange(rows []domain.MarketData, pinned []string, sortBy string) []domain.MarketData {
	pinnedIdx := make(map[string]int, len(pinned))
	for i, sym := range pinned {
		pinnedIdx[sym] = i
	}

	var head, tail []domain.MarketData
	for _, row := range rows {
		if _, ok := pinnedIdx[row.Symbol]; ok {
			head = append(head, row)
		} else {
			tail = append(tail, row)
		}
	}

	sort.SliceStable(head, func(i, j int) bool {
		return pinnedIdx[head[i].Symbol] < pinnedIdx[head[j].Symbol]
	})

	switch sortBy {
	case "price_change_24h":
		sort.SliceStable(tail, func(i, j int) bool {
			return tail[i].Change24h > tail[j].Change24h
		})
	default:
		sort.SliceStable(tail, func(i, j int) bool {
			return tail[i].MarketCap > tail[j].MarketCap
		})
	}

	return append(head, tail...)
}

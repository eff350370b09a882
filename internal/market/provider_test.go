package market

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quantasea/coinsentry/internal/domain"
)

func TestFetchMarkets(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/v3/coins/markets", r.URL.Path)
		assert.Equal(t, "usd", r.URL.Query().Get("vs_currency"))
		assert.Equal(t, "bitcoin,sui", r.URL.Query().Get("ids"))
		w.Write([]byte(`[
			{"id":"bitcoin","current_price":118050.85,"market_cap":2300000000000,"price_change_percentage_24h":2.5},
			{"id":"sui","current_price":3.1,"market_cap":250000000,"price_change_percentage_24h":3.33}
		]`))
	}))
	defer srv.Close()

	provider := NewProvider(srv.URL)

	rows, err := provider.FetchMarkets(context.Background(), []string{"bitcoin", "sui"})
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "bitcoin", rows[0].Symbol)
	assert.Equal(t, 118050.85, rows[0].Price)
	assert.Equal(t, 2.5, rows[0].Change24h)
}

func arrangeFixture() []domain.MarketData {
	return []domain.MarketData{
		{Symbol: "bitcoin", MarketCap: 2_300_000_000_000, Change24h: 2.5},
		{Symbol: "phala-network", MarketCap: 150_000_000, Change24h: 10},
		{Symbol: "ethereum", MarketCap: 420_000_000_000, Change24h: -1.2},
		{Symbol: "sui", MarketCap: 250_000_000, Change24h: 3.33},
		{Symbol: "solana", MarketCap: 80_000_000_000, Change24h: 5},
	}
}

func symbols(rows []domain.MarketData) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Symbol
	}
	return out
}

func TestArrangePinnedFirstThenMarketCap(t *testing.T) {
	got := Arrange(arrangeFixture(), []string{"phala-network", "sui"}, "market_cap")
	assert.Equal(t,
		[]string{"phala-network", "sui", "bitcoin", "ethereum", "solana"},
		symbols(got))
}

func TestArrangeByPriceChange(t *testing.T) {
	got := Arrange(arrangeFixture(), nil, "price_change_24h")
	assert.Equal(t,
		[]string{"phala-network", "solana", "sui", "bitcoin", "ethereum"},
		symbols(got))
}

func TestArrangeUnknownSortFallsBackToMarketCap(t *testing.T) {
	got := Arrange(arrangeFixture(), nil, "volume")
	assert.Equal(t, "bitcoin", got[0].Symbol)
}

// Package binance implements the price gateway against the Binance spot
// REST API and its public market stream.
package binance

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/quantasea/coinsentry/internal/domain"
)

// Client is the REST client for the Binance spot API. Portfolio symbols are
// translated to exchange pairs through the configured symbol map, so the rest
// of the system only ever sees asset symbols like "BTC".
type Client struct {
	baseURL    string
	apiKey     string
	symbolMap  map[string]string
	httpClient *http.Client
}

var _ domain.PriceGateway = (*Client)(nil)

// NewClient creates a new Binance client.
//
// baseURL is the API root, e.g. "https://api.binance.com". symbolMap maps
// portfolio symbols to exchange pairs ("BTC" -> "BTCUSDT"); a symbol without
// a mapping cannot be priced.
func NewClient(baseURL, apiKey string, symbolMap map[string]string) *Client {
	return &Client{
		baseURL:   baseURL,
		apiKey:    apiKey,
		symbolMap: symbolMap,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

type tickerPrice struct {
	Symbol string `json:"symbol"`
	Price  string `json:"price"`
}

// FetchPrice returns the current price for the given portfolio symbol. It
// returns domain.ErrUnsupportedSymbol when the symbol has no exchange pair
// mapping.
func (c *Client) FetchPrice(ctx context.Context, symbol string) (float64, error) {
	pair, ok := c.symbolMap[symbol]
	if !ok {
		return 0, fmt.Errorf("binance: %w: %s", domain.ErrUnsupportedSymbol, symbol)
	}

	params := url.Values{}
	params.Set("symbol", pair)

	body, err := c.doGet(ctx, "/api/v3/ticker/price?"+params.Encode())
	if err != nil {
		return 0, fmt.Errorf("binance: fetch price %s: %w", symbol, err)
	}

	var ticker tickerPrice
	if err := json.Unmarshal(body, &ticker); err != nil {
		return 0, fmt.Errorf("binance: decode ticker: %w", err)
	}

	price, err := strconv.ParseFloat(ticker.Price, 64)
	if err != nil {
		return 0, fmt.Errorf("binance: parse price %q for %s: %w", ticker.Price, symbol, err)
	}

	return price, nil
}

func (c *Client) doGet(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("X-MBX-APIKEY", c.apiKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if err := checkHTTPStatus(resp.StatusCode, body); err != nil {
		return nil, err
	}

	return body, nil
}

// checkHTTPStatus maps non-2xx status codes to appropriate domain errors.
func checkHTTPStatus(statusCode int, body []byte) error {
	if statusCode >= 200 && statusCode < 300 {
		return nil
	}

	bodyStr := string(body)
	switch statusCode {
	case http.StatusNotFound:
		return fmt.Errorf("%w: %s", domain.ErrNotFound, bodyStr)
	case http.StatusUnauthorized, http.StatusForbidden:
		return fmt.Errorf("%w: %s", domain.ErrUnauthorized, bodyStr)
	case http.StatusTooManyRequests:
		return fmt.Errorf("%w: %s", domain.ErrRateLimited, bodyStr)
	default:
		return fmt.Errorf("HTTP %d: %s", statusCode, bodyStr)
	}
}

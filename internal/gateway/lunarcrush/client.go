// Package lunarcrush implements the sentiment gateway against the LunarCrush
// topic sentiment endpoint. The endpoint serves an HTML page whose body is a
// markdown-style report; the client extracts the body text with goquery and
// hands it to the line parser.
package lunarcrush

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"

	"github.com/quantasea/coinsentry/internal/domain"
)

// Client is the REST client for the LunarCrush sentiment pages.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

var _ domain.SentimentGateway = (*Client)(nil)

// NewClient creates a new LunarCrush client.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: baseURL,
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// FetchSentiment returns the current sentiment score for the symbol, in
// [0, 1]. When the report carries no current value the symbol is treated as
// neutral rather than failing the cycle.
func (c *Client) FetchSentiment(ctx context.Context, symbol string) (float64, error) {
	report, err := c.FetchDetailedSentiment(ctx, symbol)
	if err != nil {
		if errors.Is(err, domain.ErrNoData) {
			return domain.NeutralSentiment, nil
		}
		return 0, err
	}
	return report.CurrentValue, nil
}

// FetchDetailedSentiment fetches and parses the full sentiment report for the
// symbol. It returns domain.ErrNoData when the page carries no current value.
func (c *Client) FetchDetailedSentiment(ctx context.Context, symbol string) (DetailedSentiment, error) {
	params := url.Values{}
	params.Set("key", c.apiKey)

	endpoint := fmt.Sprintf("%s/topic/%s/sentiment?%s",
		c.baseURL, url.PathEscape(strings.ToLower(symbol)), params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return DetailedSentiment{}, fmt.Errorf("lunarcrush: create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return DetailedSentiment{}, fmt.Errorf("lunarcrush: fetch sentiment %s: %w", symbol, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return DetailedSentiment{}, fmt.Errorf("lunarcrush: read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return DetailedSentiment{}, fmt.Errorf("lunarcrush: fetch sentiment %s: HTTP %d: %s",
			symbol, resp.StatusCode, string(body))
	}

	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return DetailedSentiment{}, fmt.Errorf("lunarcrush: parse HTML for %s: %w", symbol, err)
	}

	text := doc.Find("body").Text()

	report, ok := parseReport(text)
	if !ok {
		return DetailedSentiment{}, fmt.Errorf("lunarcrush: sentiment %s: %w", symbol, domain.ErrNoData)
	}

	return report, nil
}

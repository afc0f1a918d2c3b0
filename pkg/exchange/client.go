// Package exchange provides a foreign-exchange rate lookup for ledger
// conversions. Uses raw HTTP calls against a frankfurter-compatible provider
// (no SDK); each conversion is a fresh lookup with no caching and no retries.
// Conversions are rare admin-triggered events, not hot-path traffic.
package exchange

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/shopspring/decimal"
)

// ErrUnavailable is returned when the rate provider is unreachable or its
// response lacks the requested currency pair. Callers must treat it as a hard
// failure of the triggering operation; never fall back to a 1:1 rate.
var ErrUnavailable = errors.New("exchange rate unavailable")

// Converter converts an amount between currencies.
type Converter interface {
	// Convert は amount を from 通貨から to 通貨へ換算する。
	// from == to の場合はネットワークを触らず amount をそのまま返す。
	Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error)
}

// ratesResponse is the provider's payload: {"rates": {"EUR": 23.5}}.
type ratesResponse struct {
	Rates map[string]decimal.Decimal `json:"rates"`
}

// Client is a raw HTTP Converter implementation.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// DefaultBaseURL is the public frankfurter endpoint.
const DefaultBaseURL = "https://api.frankfurter.app"

// NewClient creates a Client. baseURL may be empty to use DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    baseURL,
		httpClient: &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *Client) Convert(ctx context.Context, amount decimal.Decimal, from, to string) (decimal.Decimal, error) {
	if from == to {
		return amount, nil
	}

	q := url.Values{}
	q.Set("amount", amount.String())
	q.Set("from", from)
	q.Set("to", to)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/latest?"+q.Encode(), nil)
	if err != nil {
		return decimal.Zero, err
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("%w: provider returned %d", ErrUnavailable, resp.StatusCode)
	}

	var body ratesResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return decimal.Zero, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	// プロバイダの値をそのまま返す（独自の丸めはしない）
	converted, ok := body.Rates[to]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: no rate for %s/%s", ErrUnavailable, from, to)
	}
	return converted, nil
}

// Package pricefeed reads current spot prices from the CoinGecko simple price
// API. There is no cache and no retry: Snapshot turns any failure into a zero
// price so valuation can always proceed.
package pricefeed

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/PaesslerAG/jsonpath"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"dcatracker/internal/domain"
)

// DefaultBaseURL is the public CoinGecko v3 API.
const DefaultBaseURL = "https://api.coingecko.com/api/v3"

// Client fetches spot prices denominated in a single fiat currency.
type Client struct {
	baseURL    string
	currency   string
	httpClient *http.Client
	logger     zerolog.Logger
}

// NewClient creates a client quoting in currency (a CoinGecko vs_currency
// such as "brl" or "usd").
func NewClient(baseURL, currency string, timeout time.Duration, logger zerolog.Logger) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		currency:   strings.ToLower(currency),
		httpClient: &http.Client{Timeout: timeout},
		logger:     logger,
	}
}

// Currency returns the lower-case fiat code prices are quoted in.
func (c *Client) Currency() string {
	return c.currency
}

// Price returns the current unit price of coin.
func (c *Client) Price(ctx context.Context, coin domain.Coin) (decimal.Decimal, error) {
	prices, err := c.Prices(ctx, coin)
	if err != nil {
		return decimal.Zero, err
	}
	return prices[coin], nil
}

// Prices fetches several coins in one request. It fails if any coin is
// missing from the answer.
func (c *Client) Prices(ctx context.Context, coins ...domain.Coin) (map[domain.Coin]decimal.Decimal, error) {
	if len(coins) == 0 {
		return map[domain.Coin]decimal.Decimal{}, nil
	}
	ids := make([]string, len(coins))
	for i, coin := range coins {
		ids[i] = string(coin)
	}
	q := url.Values{}
	q.Set("ids", strings.Join(ids, ","))
	q.Set("vs_currencies", c.currency)

	payload, err := c.get(ctx, "/simple/price?"+q.Encode())
	if err != nil {
		return nil, err
	}

	out := make(map[domain.Coin]decimal.Decimal, len(coins))
	for _, coin := range coins {
		price, err := extract(payload, coin, c.currency)
		if err != nil {
			return nil, fmt.Errorf("%w: price %s/%s: %v", domain.ErrUpstreamFailure, coin, c.currency, err)
		}
		out[coin] = price
	}
	return out, nil
}

// Snapshot returns a price for every coin, substituting zero for whatever
// could not be fetched.
func (c *Client) Snapshot(ctx context.Context, coins ...domain.Coin) map[domain.Coin]decimal.Decimal {
	prices, err := c.Prices(ctx, coins...)
	if err == nil {
		return prices
	}
	c.logger.Warn().Err(err).Strs("coins", coinIDs(coins)).Msg("price feed unavailable, using zero prices")
	out := make(map[domain.Coin]decimal.Decimal, len(coins))
	for _, coin := range coins {
		out[coin] = decimal.Zero
	}
	return out
}

func (c *Client) get(ctx context.Context, path string) (any, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept", "application/json")
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: price feed: %v", domain.ErrUpstreamFailure, err)
	}
	defer resp.Body.Close()
	c.logger.Debug().Str("url", req.URL.String()).Int("status", resp.StatusCode).Msg("price feed request")
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, fmt.Errorf("%w: price feed: status %d: %s", domain.ErrUpstreamFailure, resp.StatusCode, strings.TrimSpace(string(body)))
	}

	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	var payload any
	if err := dec.Decode(&payload); err != nil {
		return nil, fmt.Errorf("%w: price feed: decode: %v", domain.ErrUpstreamFailure, err)
	}
	return payload, nil
}

// extract reads {"<coin>": {"<currency>": <price>}}.
func extract(payload any, coin domain.Coin, currency string) (decimal.Decimal, error) {
	path := fmt.Sprintf("$.%s.%s", coin, currency)
	v, err := jsonpath.Get(path, payload)
	if err != nil {
		return decimal.Zero, err
	}
	if list, ok := v.([]any); ok && len(list) > 0 {
		v = list[0]
	}
	switch n := v.(type) {
	case json.Number:
		return decimal.NewFromString(n.String())
	case float64:
		return decimal.NewFromFloat(n), nil
	case string:
		return decimal.NewFromString(n)
	default:
		return decimal.Zero, fmt.Errorf("unexpected value %v at %s", v, path)
	}
}

func coinIDs(coins []domain.Coin) []string {
	out := make([]string, len(coins))
	for i, c := range coins {
		out[i] = string(c)
	}
	return out
}

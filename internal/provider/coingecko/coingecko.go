package coingecko

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cryptofeed/internal/httpx"
	"cryptofeed/internal/provider"
)

const baseURL = "https://api.coingecko.com"

// demoKeyHeader is optional; the public API works without it at a lower rate.
const demoKeyHeader = "x-cg-demo-api-key"

const lastUpdatedKey = "last_updated_at"

// Client is the CoinGecko simple price provider.
type Client struct {
	baseURL    string
	httpClient httpx.Doer
	header     http.Header
	now        func() time.Time
}

type Option func(*Client)

func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

func WithHTTPClient(httpClient httpx.Doer) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithAPIKey sends a demo API key with each request.
func WithAPIKey(key string) Option {
	return func(c *Client) {
		if key = strings.TrimSpace(key); key != "" {
			c.header.Set(demoKeyHeader, key)
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

func New(options ...Option) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		now:        time.Now,
	}
	c.header.Set("Accept", "application/json")
	for _, option := range options {
		option(c)
	}
	return c
}

func (c *Client) ID() provider.ID { return provider.CoinGecko }

// GetQuotes asks for all currencies at once through vs_currencies.
func (c *Client) GetQuotes(ctx context.Context, coin provider.Coin, currencies []provider.Currency) ([]provider.Quote, error) {
	currencies, err := provider.ValidateRequest(coin, currencies)
	if err != nil {
		return nil, err
	}
	coinID := coin.CoinGeckoID()

	codes := make([]string, 0, len(currencies))
	for _, cur := range currencies {
		codes = append(codes, strings.ToLower(cur.String()))
	}
	query := url.Values{}
	query.Set("ids", coinID)
	query.Set("vs_currencies", strings.Join(codes, ","))
	query.Set("include_last_updated_at", "true")

	u := fmt.Sprintf("%s/api/v3/simple/price?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, provider.Errorf(c.ID(), provider.KindUpstreamUnavailable, "creating request: %w", err)
	}
	req.Header = c.header.Clone()

	body, err := httpx.ReadBody(c.httpClient, req)
	if err != nil {
		return nil, provider.FromHTTP(c.ID(), err)
	}

	var res map[string]map[string]json.RawMessage
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, provider.Errorf(c.ID(), provider.KindMalformedResponse, "decoding price response: %w", err)
	}
	fields, ok := res[coinID]
	if !ok {
		return nil, provider.Errorf(c.ID(), provider.KindMalformedResponse, "no data for coin %s (%s)", coin, coinID)
	}

	ts := c.now()
	prices := make(map[provider.Currency]decimal.Decimal, len(fields))
	for key, raw := range fields {
		if key == lastUpdatedKey {
			var unix int64
			if err := json.Unmarshal(raw, &unix); err != nil {
				return nil, provider.Errorf(c.ID(), provider.KindMalformedResponse, "decoding %s: %w", lastUpdatedKey, err)
			}
			if unix > 0 {
				ts = time.Unix(unix, 0)
			}
			continue
		}
		cur, err := provider.ParseCurrency(key)
		if err != nil {
			return nil, provider.NewError(c.ID(), provider.KindMalformedResponse, err)
		}
		var price decimal.NullDecimal
		if err := json.Unmarshal(raw, &price); err != nil {
			return nil, provider.Errorf(c.ID(), provider.KindMalformedResponse, "decoding %s price: %w", cur, err)
		}
		if !price.Valid {
			continue
		}
		prices[cur] = price.Decimal
	}

	out := make([]provider.Quote, 0, len(currencies))
	for _, cur := range currencies {
		price, ok := prices[cur]
		if !ok {
			return nil, provider.Errorf(c.ID(), provider.KindMalformedResponse, "price not found for %s in %s", coin, cur)
		}
		if !price.IsPositive() {
			return nil, provider.Errorf(c.ID(), provider.KindMalformedResponse, "non-positive price %s for %s in %s", price, coin, cur)
		}
		out = append(out, provider.NewQuote(c.ID(), coin, cur, price, ts))
	}
	return out, nil
}

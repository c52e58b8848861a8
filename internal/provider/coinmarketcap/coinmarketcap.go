package coinmarketcap

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"cryptofeed/internal/httpx"
	"cryptofeed/internal/provider"
)

const baseURL = "https://pro-api.coinmarketcap.com"

// apiKeyHeader carries the CoinMarketCap Pro credential.
// https://coinmarketcap.com/api/documentation/v1/#section/Authentication
const apiKeyHeader = "X-CMC_PRO_API_KEY"

// Client is the CoinMarketCap quotes provider.
type Client struct {
	// baseURL is the base URL for the API.
	baseURL string
	// httpClient sends the requests.
	httpClient httpx.Doer
	// header is sent with each request and holds the API key.
	header http.Header
	// now stamps quotes the upstream did not date.
	now func() time.Time
}

// Option configures the client.
type Option func(*Client)

// WithBaseURL sets the base URL for the API.
func WithBaseURL(baseURL string) Option {
	return func(c *Client) {
		if baseURL != "" {
			c.baseURL = strings.TrimRight(baseURL, "/")
		}
	}
}

// WithHTTPClient sets the HTTP client for the API.
func WithHTTPClient(httpClient httpx.Doer) Option {
	return func(c *Client) {
		c.httpClient = httpClient
	}
}

// WithHeader sets additional headers to be sent with each request.
func WithHeader(header http.Header) Option {
	return func(c *Client) {
		for key, values := range header {
			for _, value := range values {
				c.header.Add(key, value)
			}
		}
	}
}

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a CoinMarketCap client. The API key is mandatory.
func New(key string, options ...Option) (*Client, error) {
	if strings.TrimSpace(key) == "" {
		return nil, fmt.Errorf("%w: coinmarketcap API key is empty", provider.ErrConfiguration)
	}
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
		header:     http.Header{},
		now:        time.Now,
	}
	c.header.Set(apiKeyHeader, key)
	c.header.Set("Accept", "application/json")
	for _, option := range options {
		option(c)
	}
	return c, nil
}

func (c *Client) ID() provider.ID { return provider.CoinMarketCap }

type quotesResponse struct {
	Status status              `json:"status"`
	Data   map[string]coinData `json:"data"`
}

type status struct {
	ErrorCode    int     `json:"error_code"`
	ErrorMessage *string `json:"error_message"`
}

type coinData struct {
	ID     int                  `json:"id"`
	Symbol string               `json:"symbol"`
	Quote  map[string]quoteData `json:"quote"`
}

type quoteData struct {
	Price       decimal.NullDecimal `json:"price"`
	LastUpdated *time.Time          `json:"last_updated"`
}

// GetQuotes fetches every requested currency in a single call through the convert parameter.
func (c *Client) GetQuotes(ctx context.Context, coin provider.Coin, currencies []provider.Currency) ([]provider.Quote, error) {
	currencies, err := provider.ValidateRequest(coin, currencies)
	if err != nil {
		return nil, err
	}
	coinID := coin.CoinMarketCapID()

	codes := make([]string, 0, len(currencies))
	for _, cur := range currencies {
		codes = append(codes, cur.String())
	}
	query := url.Values{}
	query.Set("id", strconv.Itoa(coinID))
	query.Set("convert", strings.Join(codes, ","))

	u := fmt.Sprintf("%s/v2/cryptocurrency/quotes/latest?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return nil, provider.Errorf(c.ID(), provider.KindUpstreamUnavailable, "creating request: %w", err)
	}
	req.Header = c.header.Clone()

	body, err := httpx.ReadBody(c.httpClient, req)
	if err != nil {
		return nil, c.classify(err)
	}

	var res quotesResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return nil, provider.Errorf(c.ID(), provider.KindMalformedResponse, "decoding quotes response: %w", err)
	}
	if res.Status.ErrorCode != 0 {
		return nil, provider.NewError(c.ID(), kindForCode(res.Status.ErrorCode), res.Status.err())
	}

	data, ok := res.Data[strconv.Itoa(coinID)]
	if !ok {
		return nil, provider.Errorf(c.ID(), provider.KindMalformedResponse, "no data for coin %s (id %d)", coin, coinID)
	}

	byCurrency := make(map[provider.Currency]quoteData, len(data.Quote))
	for code, q := range data.Quote {
		cur, err := provider.ParseCurrency(code)
		if err != nil {
			return nil, provider.NewError(c.ID(), provider.KindMalformedResponse, err)
		}
		byCurrency[cur] = q
	}

	now := c.now()
	out := make([]provider.Quote, 0, len(currencies))
	for _, cur := range currencies {
		q, ok := byCurrency[cur]
		if !ok || !q.Price.Valid {
			return nil, provider.Errorf(c.ID(), provider.KindMalformedResponse, "price not found for %s in %s", coin, cur)
		}
		if !q.Price.Decimal.IsPositive() {
			return nil, provider.Errorf(c.ID(), provider.KindMalformedResponse, "non-positive price %s for %s in %s", q.Price.Decimal, coin, cur)
		}
		ts := now
		if q.LastUpdated != nil && !q.LastUpdated.IsZero() {
			ts = *q.LastUpdated
		}
		out = append(out, provider.NewQuote(c.ID(), coin, cur, q.Price.Decimal, ts))
	}
	return out, nil
}

// classify maps transport and status failures, reading CoinMarketCap error codes from the body.
func (c *Client) classify(err error) error {
	var se *httpx.StatusError
	if errors.As(err, &se) {
		var res quotesResponse
		if json.Unmarshal([]byte(se.Body), &res) == nil && res.Status.ErrorCode != 0 {
			return provider.NewError(c.ID(), kindForCode(res.Status.ErrorCode), fmt.Errorf("%w: %w", res.Status.err(), err))
		}
	}
	return provider.FromHTTP(c.ID(), err)
}

func (s status) err() error {
	msg := "unknown error"
	if s.ErrorMessage != nil && *s.ErrorMessage != "" {
		msg = *s.ErrorMessage
	}
	return fmt.Errorf("coinmarketcap error %d: %s", s.ErrorCode, msg)
}

// kindForCode maps CoinMarketCap status.error_code values.
func kindForCode(code int) provider.Kind {
	switch code {
	case 1008, 1009, 1010, 1011:
		// minute, daily, monthly and IP rate limits
		return provider.KindRateLimited
	}
	return provider.KindUpstreamRejected
}

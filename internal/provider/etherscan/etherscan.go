package etherscan

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"cryptofeed/internal/httpx"
	"cryptofeed/internal/provider"
)

const baseURL = "https://api.etherscan.io"

// mainnet
const defaultChainID = 1

// Client reads the Etherscan gas tracker oracle.
type Client struct {
	baseURL    string
	apiKey     string
	chainID    int
	httpClient httpx.Doer
	log        logrus.FieldLogger
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

// WithChainID targets another chain served by the v2 multichain API.
func WithChainID(id int) Option {
	return func(c *Client) {
		if id > 0 {
			c.chainID = id
		}
	}
}

func WithLogger(log logrus.FieldLogger) Option {
	return func(c *Client) {
		if log != nil {
			c.log = log
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New creates a gas tracker client. The API key is mandatory.
func New(key string, options ...Option) (*Client, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, fmt.Errorf("%w: etherscan API key is empty", provider.ErrConfiguration)
	}
	c := &Client{
		baseURL:    baseURL,
		apiKey:     key,
		chainID:    defaultChainID,
		httpClient: http.DefaultClient,
		log:        logrus.StandardLogger(),
		now:        time.Now,
	}
	for _, option := range options {
		option(c)
	}
	c.log = c.log.WithField("provider", provider.Etherscan)
	return c, nil
}

func (c *Client) ID() provider.ID { return provider.Etherscan }

type oracleResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
	// Result is an object on success and a plain string on error.
	Result json.RawMessage `json:"result"`
}

type oracleResult struct {
	LastBlock       string `json:"LastBlock"`
	SafeGasPrice    string `json:"SafeGasPrice"`
	ProposeGasPrice string `json:"ProposeGasPrice"`
	FastGasPrice    string `json:"FastGasPrice"`
	SuggestBaseFee  string `json:"suggestBaseFee"`
	GasUsedRatio    string `json:"gasUsedRatio"`
}

// GetGasPrice maps Safe/Propose/Fast onto low/average/high.
func (c *Client) GetGasPrice(ctx context.Context) (provider.GasEstimate, error) {
	query := url.Values{}
	query.Set("chainid", strconv.Itoa(c.chainID))
	query.Set("module", "gastracker")
	query.Set("action", "gasoracle")
	query.Set("apikey", c.apiKey)

	u := fmt.Sprintf("%s/v2/api?%s", c.baseURL, query.Encode())
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, http.NoBody)
	if err != nil {
		return provider.GasEstimate{}, provider.Errorf(c.ID(), provider.KindUpstreamUnavailable, "creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	body, err := httpx.ReadBody(c.httpClient, req)
	if err != nil {
		return provider.GasEstimate{}, provider.FromHTTP(c.ID(), err)
	}

	var res oracleResponse
	if err := json.Unmarshal(body, &res); err != nil {
		return provider.GasEstimate{}, provider.Errorf(c.ID(), provider.KindMalformedResponse, "decoding gas oracle response: %w", err)
	}
	if res.Status != "1" {
		return provider.GasEstimate{}, c.apiError(res)
	}

	var result oracleResult
	if err := json.Unmarshal(res.Result, &result); err != nil {
		return provider.GasEstimate{}, provider.Errorf(c.ID(), provider.KindMalformedResponse, "decoding gas oracle result: %w", err)
	}

	low, err := provider.ParseGwei(result.SafeGasPrice, provider.Gwei)
	if err != nil {
		return provider.GasEstimate{}, provider.Errorf(c.ID(), provider.KindMalformedResponse, "SafeGasPrice: %w", err)
	}
	average, err := provider.ParseGwei(result.ProposeGasPrice, provider.Gwei)
	if err != nil {
		return provider.GasEstimate{}, provider.Errorf(c.ID(), provider.KindMalformedResponse, "ProposeGasPrice: %w", err)
	}
	high, err := provider.ParseGwei(result.FastGasPrice, provider.Gwei)
	if err != nil {
		return provider.GasEstimate{}, provider.Errorf(c.ID(), provider.KindMalformedResponse, "FastGasPrice: %w", err)
	}
	if low.IsNegative() {
		return provider.GasEstimate{}, provider.Errorf(c.ID(), provider.KindMalformedResponse, "negative SafeGasPrice %s", low)
	}

	l, a, h, clamped := provider.ClampGas(low, average, high)
	if clamped {
		c.log.WithFields(logrus.Fields{
			"last_block": result.LastBlock,
			"safe":       low.String(),
			"propose":    average.String(),
			"fast":       high.String(),
		}).Warn("gas oracle returned non-monotonic prices, clamped upward")
	}

	return provider.GasEstimate{
		Low:       l,
		Average:   a,
		High:      h,
		Timestamp: c.now().UTC(),
		Provider:  c.ID(),
	}, nil
}

// apiError classifies a status "0" reply. The reason is in result as text.
func (c *Client) apiError(res oracleResponse) error {
	var reason string
	if err := json.Unmarshal(res.Result, &reason); err != nil {
		reason = string(res.Result)
	}
	msg := strings.TrimSpace(res.Message + ": " + reason)
	lower := strings.ToLower(reason + " " + res.Message)
	switch {
	case strings.Contains(lower, "rate limit"):
		return provider.Errorf(c.ID(), provider.KindRateLimited, "etherscan: %s", msg)
	default:
		// includes "Invalid API Key"
		return provider.Errorf(c.ID(), provider.KindUpstreamRejected, "etherscan: %s", msg)
	}
}

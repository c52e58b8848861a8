// Package ethrpc derives a gas estimate straight from an Ethereum node.
//
// The estimate is baseFee + tip for three priority levels. Tips come from
// eth_feeHistory over the last FeeHistoryBlocks blocks at the 10th, 50th and
// 90th reward percentiles: the median of each column across blocks, floored
// at 1, 2 and 3 gwei, then made non-decreasing. A node that returns no reward
// data gets the floors.
package ethrpc

import (
	"context"
	"errors"
	"fmt"
	"math/big"
	"sort"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"
	"golang.org/x/sync/errgroup"

	"cryptofeed/internal/provider"
)

const (
	// FeeHistoryBlocks is how many recent blocks feed the tip percentiles.
	FeeHistoryBlocks = 20
	// DefaultMaxBlockAge rejects a latest header older than this.
	DefaultMaxBlockAge = 2 * time.Minute
)

// RewardPercentiles are requested from eth_feeHistory for low, average and high.
var RewardPercentiles = []float64{10, 50, 90}

// tipFloors in gwei, per percentile column.
var tipFloors = []decimal.Decimal{
	decimal.NewFromInt(1),
	decimal.NewFromInt(2),
	decimal.NewFromInt(3),
}

// ChainReader is the subset of *ethclient.Client the oracle uses.
//
//go:generate mockgen -package=ethrpcmock -destination=ethrpcmock/ethrpcmock.go -source=ethrpc.go ChainReader
type ChainReader interface {
	HeaderByNumber(ctx context.Context, number *big.Int) (*types.Header, error)
	FeeHistory(ctx context.Context, blockCount uint64, lastBlock *big.Int, rewardPercentiles []float64) (*ethereum.FeeHistory, error)
}

// Client is the chain RPC gas oracle.
type Client struct {
	reader      ChainReader
	closer      func()
	maxBlockAge time.Duration
	now         func() time.Time
}

type Option func(*Client)

// WithMaxBlockAge overrides DefaultMaxBlockAge. Zero disables the check.
func WithMaxBlockAge(d time.Duration) Option {
	return func(c *Client) {
		if d >= 0 {
			c.maxBlockAge = d
		}
	}
}

func WithClock(now func() time.Time) Option {
	return func(c *Client) {
		c.now = now
	}
}

// New wraps an existing reader.
func New(reader ChainReader, options ...Option) *Client {
	c := &Client{
		reader:      reader,
		closer:      func() {},
		maxBlockAge: DefaultMaxBlockAge,
		now:         time.Now,
	}
	for _, option := range options {
		option(c)
	}
	return c
}

// Dial connects to the node at rawURL. The URL is mandatory.
func Dial(ctx context.Context, rawURL string, options ...Option) (*Client, error) {
	rawURL = strings.TrimSpace(rawURL)
	if rawURL == "" {
		return nil, fmt.Errorf("%w: ethereum RPC URL is empty", provider.ErrConfiguration)
	}
	ec, err := ethclient.DialContext(ctx, rawURL)
	if err != nil {
		return nil, fmt.Errorf("%w: dialing ethereum RPC: %w", provider.ErrConfiguration, err)
	}
	c := New(ec, options...)
	c.closer = ec.Close
	return c, nil
}

// Close releases the node connection when the client owns one.
func (c *Client) Close() { c.closer() }

func (c *Client) ID() provider.ID { return provider.RPC }

func (c *Client) GetGasPrice(ctx context.Context) (provider.GasEstimate, error) {
	var (
		header  *types.Header
		history *ethereum.FeeHistory
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		header, err = c.reader.HeaderByNumber(gctx, nil)
		if err != nil {
			return fmt.Errorf("reading latest header: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		var err error
		history, err = c.reader.FeeHistory(gctx, FeeHistoryBlocks, nil, RewardPercentiles)
		if err != nil {
			return fmt.Errorf("reading fee history: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return provider.GasEstimate{}, c.classify(err)
	}

	if header == nil || header.BaseFee == nil {
		return provider.GasEstimate{}, provider.Errorf(c.ID(), provider.KindStaleData, "latest header has no base fee")
	}
	now := c.now()
	blockTime := time.Unix(int64(header.Time), 0)
	if age := now.Sub(blockTime); c.maxBlockAge > 0 && age > c.maxBlockAge {
		return provider.GasEstimate{}, provider.Errorf(c.ID(), provider.KindStaleData,
			"latest block %s is %s old, limit %s", header.Number, age.Truncate(time.Second), c.maxBlockAge)
	}

	tips, err := Tips(history)
	if err != nil {
		return provider.GasEstimate{}, provider.NewError(c.ID(), provider.KindMalformedResponse, err)
	}
	baseFee := provider.WeiToGwei(header.BaseFee)

	est := provider.GasEstimate{
		Low:       baseFee.Add(tips[0]),
		Average:   baseFee.Add(tips[1]),
		High:      baseFee.Add(tips[2]),
		Timestamp: now.UTC(),
		Provider:  c.ID(),
	}
	return est, nil
}

// Tips turns a fee history into three non-decreasing priority fees in gwei.
func Tips(history *ethereum.FeeHistory) ([]decimal.Decimal, error) {
	tips := make([]decimal.Decimal, len(tipFloors))
	copy(tips, tipFloors)
	if history == nil || len(history.Reward) == 0 {
		return tips, nil
	}

	columns := make([][]decimal.Decimal, len(RewardPercentiles))
	for i, row := range history.Reward {
		if len(row) != len(RewardPercentiles) {
			return nil, fmt.Errorf("fee history block %d has %d rewards, want %d", i, len(row), len(RewardPercentiles))
		}
		for j, wei := range row {
			if wei == nil || wei.Sign() < 0 {
				return nil, fmt.Errorf("fee history block %d has invalid reward at column %d", i, j)
			}
			columns[j] = append(columns[j], provider.WeiToGwei(wei))
		}
	}

	for j, col := range columns {
		tips[j] = decimal.Max(median(col), tipFloors[j])
		if j > 0 {
			tips[j] = decimal.Max(tips[j], tips[j-1])
		}
	}
	return tips, nil
}

func median(vals []decimal.Decimal) decimal.Decimal {
	if len(vals) == 0 {
		return decimal.Zero
	}
	sorted := make([]decimal.Decimal, len(vals))
	copy(sorted, vals)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].LessThan(sorted[j]) })
	mid := len(sorted) / 2
	if len(sorted)%2 == 1 {
		return sorted[mid]
	}
	return sorted[mid-1].Add(sorted[mid]).Div(decimal.NewFromInt(2))
}

// classify maps go-ethereum transport and JSON-RPC errors onto failure kinds.
func (c *Client) classify(err error) error {
	var herr rpc.HTTPError
	if errors.As(err, &herr) {
		return provider.NewError(c.ID(), provider.KindForStatus(herr.StatusCode), err)
	}
	var rerr rpc.Error
	if errors.As(err, &rerr) {
		if rerr.ErrorCode() == -32005 {
			// limit exceeded
			return provider.NewError(c.ID(), provider.KindRateLimited, err)
		}
		return provider.NewError(c.ID(), provider.KindUpstreamRejected, err)
	}
	if errors.Is(err, ethereum.NotFound) {
		return provider.NewError(c.ID(), provider.KindMalformedResponse, err)
	}
	// dial, timeout and cancellation
	return provider.NewError(c.ID(), provider.KindUpstreamUnavailable, err)
}

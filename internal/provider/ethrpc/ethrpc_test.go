package ethrpc_test

import (
	"context"
	"errors"
	"math/big"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/rpc"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cryptofeed/internal/provider"
	"cryptofeed/internal/provider/ethrpc"
	"cryptofeed/internal/provider/ethrpc/ethrpcmock"
)

var now = time.Date(2025, 6, 1, 12, 0, 0, 0, time.UTC)

func gwei(n int64) *big.Int { return new(big.Int).Mul(big.NewInt(n), big.NewInt(1_000_000_000)) }

func header(baseFeeGwei int64, age time.Duration) *types.Header {
	return &types.Header{
		Number:  big.NewInt(21_000_000),
		Time:    uint64(now.Add(-age).Unix()),
		BaseFee: gwei(baseFeeGwei),
	}
}

func history(rows ...[]*big.Int) *ethereum.FeeHistory {
	return &ethereum.FeeHistory{OldestBlock: big.NewInt(20_999_981), Reward: rows}
}

func repeat(row []*big.Int, n int) [][]*big.Int {
	out := make([][]*big.Int, n)
	for i := range out {
		out[i] = row
	}
	return out
}

func newOracle(t *testing.T, h *types.Header, fh *ethereum.FeeHistory) *ethrpc.Client {
	t.Helper()
	ctrl := gomock.NewController(t)
	reader := ethrpcmock.NewMockChainReader(ctrl)
	reader.EXPECT().HeaderByNumber(gomock.Any(), gomock.Nil()).Return(h, nil)
	reader.EXPECT().
		FeeHistory(gomock.Any(), uint64(ethrpc.FeeHistoryBlocks), gomock.Nil(), []float64{10, 50, 90}).
		Return(fh, nil)
	return ethrpc.New(reader, ethrpc.WithClock(func() time.Time { return now }))
}

func requireGwei(t *testing.T, want int64, got decimal.Decimal) {
	t.Helper()
	require.True(t, got.Equal(decimal.NewFromInt(want)), "want %d gwei, got %s", want, got)
}

func TestGetGasPrice_BaseFeePlusTips(t *testing.T) {
	t.Parallel()

	// Arrange: base fee 12 gwei, tips 1/2/5 gwei in every block
	fh := history(repeat([]*big.Int{gwei(1), gwei(2), gwei(5)}, ethrpc.FeeHistoryBlocks)...)
	oracle := newOracle(t, header(12, 12*time.Second), fh)

	// Act
	gas, err := oracle.GetGasPrice(t.Context())

	// Assert
	require.NoError(t, err)
	requireGwei(t, 13, gas.Low)
	requireGwei(t, 14, gas.Average)
	requireGwei(t, 17, gas.High)
	assert.Equal(t, provider.RPC, gas.Provider)
	assert.Equal(t, now, gas.Timestamp)
	require.NoError(t, gas.Validate())
}

func TestGetGasPrice_NoRewardsUsesFloors(t *testing.T) {
	t.Parallel()

	oracle := newOracle(t, header(30, time.Second), history())

	gas, err := oracle.GetGasPrice(t.Context())

	require.NoError(t, err)
	requireGwei(t, 31, gas.Low)
	requireGwei(t, 32, gas.Average)
	requireGwei(t, 33, gas.High)
}

func TestGetGasPrice_MissingBaseFee(t *testing.T) {
	t.Parallel()

	h := header(1, time.Second)
	h.BaseFee = nil
	oracle := newOracle(t, h, history())

	_, err := oracle.GetGasPrice(t.Context())

	assert.Equal(t, provider.KindStaleData, provider.KindOf(err))
}

func TestGetGasPrice_StaleHeader(t *testing.T) {
	t.Parallel()

	oracle := newOracle(t, header(12, 10*time.Minute), history())

	_, err := oracle.GetGasPrice(t.Context())

	assert.Equal(t, provider.KindStaleData, provider.KindOf(err))
}

func TestTips(t *testing.T) {
	t.Parallel()

	t.Run("median per column", func(t *testing.T) {
		t.Parallel()
		tips, err := ethrpc.Tips(history(
			[]*big.Int{gwei(1), gwei(4), gwei(9)},
			[]*big.Int{gwei(3), gwei(6), gwei(7)},
			[]*big.Int{gwei(2), gwei(5), gwei(8)},
		))
		require.NoError(t, err)
		requireGwei(t, 2, tips[0])
		requireGwei(t, 5, tips[1])
		requireGwei(t, 8, tips[2])
	})

	t.Run("even count averages middles", func(t *testing.T) {
		t.Parallel()
		tips, err := ethrpc.Tips(history(
			[]*big.Int{gwei(2), gwei(4), gwei(6)},
			[]*big.Int{gwei(3), gwei(6), gwei(10)},
		))
		require.NoError(t, err)
		assert.Equal(t, "2.5", tips[0].String())
		requireGwei(t, 5, tips[1])
		requireGwei(t, 8, tips[2])
	})

	t.Run("floors and running max", func(t *testing.T) {
		t.Parallel()
		// quiet chain with inverted percentiles
		tips, err := ethrpc.Tips(history(repeat([]*big.Int{big.NewInt(100), gwei(7), big.NewInt(5)}, 3)...))
		require.NoError(t, err)
		requireGwei(t, 1, tips[0])
		requireGwei(t, 7, tips[1])
		requireGwei(t, 7, tips[2])
	})

	t.Run("ragged row", func(t *testing.T) {
		t.Parallel()
		_, err := ethrpc.Tips(history([]*big.Int{gwei(1), gwei(2)}))
		require.Error(t, err)
	})

	t.Run("sub gwei precision", func(t *testing.T) {
		t.Parallel()
		tips, err := ethrpc.Tips(history([]*big.Int{big.NewInt(1_500_000_001), gwei(3), gwei(4)}))
		require.NoError(t, err)
		assert.Equal(t, "1.500000001", tips[0].String())
	})
}

type jsonRPCError struct{ code int }

func (e jsonRPCError) Error() string  { return "rpc error" }
func (e jsonRPCError) ErrorCode() int { return e.code }

func TestGetGasPrice_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		err  error
		kind provider.Kind
	}{
		{name: "http 429", err: rpc.HTTPError{StatusCode: 429, Status: "429 Too Many Requests"}, kind: provider.KindRateLimited},
		{name: "http 401", err: rpc.HTTPError{StatusCode: 401, Status: "401 Unauthorized"}, kind: provider.KindUpstreamRejected},
		{name: "json-rpc limit", err: jsonRPCError{code: -32005}, kind: provider.KindRateLimited},
		{name: "json-rpc method", err: jsonRPCError{code: -32601}, kind: provider.KindUpstreamRejected},
		{name: "not found", err: ethereum.NotFound, kind: provider.KindMalformedResponse},
		{name: "timeout", err: context.DeadlineExceeded, kind: provider.KindUpstreamUnavailable},
		{name: "dial", err: errors.New("dial tcp 127.0.0.1:8545: connect: connection refused"), kind: provider.KindUpstreamUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			reader := ethrpcmock.NewMockChainReader(ctrl)
			reader.EXPECT().HeaderByNumber(gomock.Any(), gomock.Any()).Return(nil, tc.err)
			reader.EXPECT().FeeHistory(gomock.Any(), gomock.Any(), gomock.Any(), gomock.Any()).Return(history(), nil).AnyTimes()

			_, err := ethrpc.New(reader).GetGasPrice(t.Context())

			var pe *provider.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, provider.RPC, pe.Provider)
			assert.Equal(t, tc.kind, pe.Kind, "err: %v", err)
		})
	}
}

func TestDial_EmptyURL(t *testing.T) {
	t.Parallel()

	_, err := ethrpc.Dial(t.Context(), " ")
	require.ErrorIs(t, err, provider.ErrConfiguration)
}

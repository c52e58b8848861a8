package coinmarketcap_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cryptofeed/internal/httpx/httpxmock"
	"cryptofeed/internal/provider"
	"cryptofeed/internal/provider/coinmarketcap"
)

const okBody = `{
  "status": {"error_code": 0, "error_message": null},
  "data": {
    "1027": {
      "id": 1027,
      "symbol": "ETH",
      "quote": {
        "EUR": {"price": 3850.10, "last_updated": "2025-01-02T03:04:05.000Z"},
        "USD": {"price": 4164.82, "last_updated": "2025-01-02T03:04:05.000Z"}
      }
    }
  }
}`

func respond(code int, body string) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: code,
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	}
}

func newClient(t *testing.T, doer *httpxmock.MockDoer) *coinmarketcap.Client {
	t.Helper()
	client, err := coinmarketcap.New("test-key",
		coinmarketcap.WithHTTPClient(doer),
		coinmarketcap.WithBaseURL("http://localhost:8080/"),
	)
	require.NoError(t, err)
	return client
}

func TestNew_EmptyKey(t *testing.T) {
	t.Parallel()

	// Assert: a missing key is a configuration error, not a request-time failure.
	client, err := coinmarketcap.New("  ")
	require.ErrorIs(t, err, provider.ErrConfiguration)
	require.Nil(t, client)
}

func TestGetQuotes(t *testing.T) {
	t.Parallel()

	// Arrange: create a mock HTTP client
	ctrl := gomock.NewController(t)
	doer := httpxmock.NewMockDoer(ctrl)

	// Assert: one request covering both currencies
	doer.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			require.Equal(t, http.MethodGet, req.Method)
			require.Equal(t, "test-key", req.Header.Get("X-CMC_PRO_API_KEY"))
			require.True(t, strings.HasPrefix(req.URL.String(), "http://localhost:8080/v2/cryptocurrency/quotes/latest"))
			require.Equal(t, "1027", req.URL.Query().Get("id"))
			require.Equal(t, "USD,EUR", req.URL.Query().Get("convert"))
			return respond(http.StatusOK, okBody)(req)
		}).
		Times(1)

	// Act
	quotes, err := newClient(t, doer).GetQuotes(t.Context(), provider.ETH, []provider.Currency{provider.USD, provider.EUR})

	// Assert: request order is kept and prices are exact
	require.NoError(t, err)
	require.Len(t, quotes, 2)
	require.Equal(t, provider.USD, quotes[0].Currency)
	require.Equal(t, "4164.82", quotes[0].Price.String())
	require.Equal(t, provider.EUR, quotes[1].Currency)
	require.Equal(t, "3850.1", quotes[1].Price.String())
	for _, q := range quotes {
		require.Equal(t, provider.CoinMarketCap, q.Provider)
		require.Equal(t, provider.ETH, q.Coin)
		require.True(t, q.Timestamp.Equal(time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)))
	}
}

func TestGetQuotes_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		code int
		body string
		err  error
		kind provider.Kind
	}{
		{
			name: "rate limited status",
			code: http.StatusTooManyRequests,
			body: `slow down`,
			kind: provider.KindRateLimited,
		},
		{
			name: "rate limit error code",
			code: http.StatusTooManyRequests,
			body: `{"status":{"error_code":1008,"error_message":"You've exceeded your API Key's HTTP request rate limit."}}`,
			kind: provider.KindRateLimited,
		},
		{
			name: "invalid key",
			code: http.StatusUnauthorized,
			body: `{"status":{"error_code":1001,"error_message":"This API Key is invalid."}}`,
			kind: provider.KindUpstreamRejected,
		},
		{
			name: "server error",
			code: http.StatusInternalServerError,
			kind: provider.KindUpstreamRejected,
		},
		{
			name: "transport error",
			err:  errors.New("connection reset"),
			kind: provider.KindUpstreamUnavailable,
		},
		{
			name: "malformed json",
			code: http.StatusOK,
			body: `{"data":`,
			kind: provider.KindMalformedResponse,
		},
		{
			name: "error code in ok body",
			code: http.StatusOK,
			body: `{"status":{"error_code":1011,"error_message":"IP rate limit"}}`,
			kind: provider.KindRateLimited,
		},
		{
			name: "coin missing",
			code: http.StatusOK,
			body: `{"status":{"error_code":0},"data":{}}`,
			kind: provider.KindMalformedResponse,
		},
		{
			name: "currency missing",
			code: http.StatusOK,
			body: `{"status":{"error_code":0},"data":{"1027":{"quote":{"USD":{"price":1}}}}}`,
			kind: provider.KindMalformedResponse,
		},
		{
			name: "null price",
			code: http.StatusOK,
			body: `{"status":{"error_code":0},"data":{"1027":{"quote":{"USD":{"price":null},"EUR":{"price":2}}}}}`,
			kind: provider.KindMalformedResponse,
		},
		{
			name: "zero price",
			code: http.StatusOK,
			body: `{"status":{"error_code":0},"data":{"1027":{"quote":{"USD":{"price":0},"EUR":{"price":2}}}}}`,
			kind: provider.KindMalformedResponse,
		},
		{
			name: "unknown currency code",
			code: http.StatusOK,
			body: `{"status":{"error_code":0},"data":{"1027":{"quote":{"USD":{"price":1},"EUR":{"price":2},"XBT":{"price":3}}}}}`,
			kind: provider.KindMalformedResponse,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			ctrl := gomock.NewController(t)
			doer := httpxmock.NewMockDoer(ctrl)
			if tc.err != nil {
				doer.EXPECT().Do(gomock.Any()).Return(nil, tc.err)
			} else {
				doer.EXPECT().Do(gomock.Any()).DoAndReturn(respond(tc.code, tc.body))
			}

			quotes, err := newClient(t, doer).GetQuotes(t.Context(), provider.ETH, []provider.Currency{provider.USD, provider.EUR})
			require.Nil(t, quotes)

			var pe *provider.ProviderError
			require.ErrorAs(t, err, &pe)
			require.Equal(t, provider.CoinMarketCap, pe.Provider)
			require.Equal(t, tc.kind, pe.Kind, "err: %v", err)
		})
	}
}

func TestGetQuotes_UnknownCurrencyCodeWrapsSentinel(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	doer := httpxmock.NewMockDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).DoAndReturn(respond(http.StatusOK,
		`{"status":{"error_code":0},"data":{"1027":{"quote":{"USD":{"price":1},"ZZZ":{"price":3}}}}}`))

	_, err := newClient(t, doer).GetQuotes(t.Context(), provider.ETH, []provider.Currency{provider.USD})
	require.ErrorIs(t, err, provider.ErrUnknownCurrency)
}

func TestGetQuotes_InvalidInputSkipsUpstream(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	doer := httpxmock.NewMockDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).Times(0)

	_, err := newClient(t, doer).GetQuotes(t.Context(), provider.ETH, nil)
	require.ErrorIs(t, err, provider.ErrInvalidInput)
}

package etherscan_test

import (
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"cryptofeed/internal/httpx/httpxmock"
	"cryptofeed/internal/provider"
	"cryptofeed/internal/provider/etherscan"
)

func respond(code int, body string) func(*http.Request) (*http.Response, error) {
	return func(*http.Request) (*http.Response, error) {
		return &http.Response{
			StatusCode: code,
			Body:       io.NopCloser(strings.NewReader(body)),
		}, nil
	}
}

func oracleBody(safe, propose, fast string) string {
	return `{"status":"1","message":"OK","result":{"LastBlock":"21000000","SafeGasPrice":"` + safe +
		`","ProposeGasPrice":"` + propose + `","FastGasPrice":"` + fast +
		`","suggestBaseFee":"0.48","gasUsedRatio":"0.4,0.5"}}`
}

func TestNew_EmptyKey(t *testing.T) {
	t.Parallel()

	_, err := etherscan.New("")
	require.ErrorIs(t, err, provider.ErrConfiguration)
}

func TestGetGasPrice(t *testing.T) {
	t.Parallel()

	// Arrange
	ctrl := gomock.NewController(t)
	doer := httpxmock.NewMockDoer(ctrl)
	doer.EXPECT().
		Do(gomock.Any()).
		DoAndReturn(func(req *http.Request) (*http.Response, error) {
			q := req.URL.Query()
			require.Equal(t, "/v2/api", req.URL.Path)
			require.Equal(t, "1", q.Get("chainid"))
			require.Equal(t, "gastracker", q.Get("module"))
			require.Equal(t, "gasoracle", q.Get("action"))
			require.Equal(t, "key", q.Get("apikey"))
			return respond(http.StatusOK, oracleBody("0.523", "0.61", "1.2"))(req)
		})

	client, err := etherscan.New("key", etherscan.WithHTTPClient(doer), etherscan.WithBaseURL("http://localhost:8080"))
	require.NoError(t, err)

	// Act
	gas, err := client.GetGasPrice(t.Context())

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "0.523", gas.Low.String())
	assert.Equal(t, "0.61", gas.Average.String())
	assert.Equal(t, "1.2", gas.High.String())
	assert.Equal(t, provider.Etherscan, gas.Provider)
	assert.False(t, gas.Timestamp.IsZero())
	require.NoError(t, gas.Validate())
}

func TestGetGasPrice_ClampsNonMonotonic(t *testing.T) {
	t.Parallel()

	// Arrange: a logger that captures entries
	logger, hook := logtest.NewNullLogger()
	ctrl := gomock.NewController(t)
	doer := httpxmock.NewMockDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).DoAndReturn(respond(http.StatusOK, oracleBody("3", "2", "1")))

	client, err := etherscan.New("key", etherscan.WithHTTPClient(doer), etherscan.WithLogger(logger))
	require.NoError(t, err)

	// Act
	gas, err := client.GetGasPrice(t.Context())

	// Assert: raised to the low value and logged
	require.NoError(t, err)
	assert.Equal(t, "3", gas.Low.String())
	assert.Equal(t, "3", gas.Average.String())
	assert.Equal(t, "3", gas.High.String())
	require.Len(t, hook.Entries, 1)
	assert.Equal(t, logrus.WarnLevel, hook.LastEntry().Level)
	assert.Equal(t, provider.Etherscan, hook.LastEntry().Data["provider"])
}

func TestGetGasPrice_Errors(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name string
		code int
		body string
		err  error
		kind provider.Kind
	}{
		{
			name: "rate limit text",
			code: http.StatusOK,
			body: `{"status":"0","message":"NOTOK","result":"Max calls per sec rate limit reached (5/sec)"}`,
			kind: provider.KindRateLimited,
		},
		{
			name: "invalid key",
			code: http.StatusOK,
			body: `{"status":"0","message":"NOTOK","result":"Invalid API Key (#err2)|v2"}`,
			kind: provider.KindUpstreamRejected,
		},
		{
			name: "http 429",
			code: http.StatusTooManyRequests,
			kind: provider.KindRateLimited,
		},
		{
			name: "http 503",
			code: http.StatusServiceUnavailable,
			kind: provider.KindUpstreamRejected,
		},
		{
			name: "network",
			err:  errors.New("no route to host"),
			kind: provider.KindUpstreamUnavailable,
		},
		{
			name: "not json",
			code: http.StatusOK,
			body: `nope`,
			kind: provider.KindMalformedResponse,
		},
		{
			name: "bad number",
			code: http.StatusOK,
			body: oracleBody("abc", "1", "2"),
			kind: provider.KindMalformedResponse,
		},
		{
			name: "negative low",
			code: http.StatusOK,
			body: oracleBody("-1", "1", "2"),
			kind: provider.KindMalformedResponse,
		},
		{
			name: "result has wrong shape",
			code: http.StatusOK,
			body: `{"status":"1","message":"OK","result":[1,2,3]}`,
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
			logger, _ := logtest.NewNullLogger()
			client, err := etherscan.New("key", etherscan.WithHTTPClient(doer), etherscan.WithLogger(logger))
			require.NoError(t, err)

			_, err = client.GetGasPrice(t.Context())

			var pe *provider.ProviderError
			require.ErrorAs(t, err, &pe)
			assert.Equal(t, provider.Etherscan, pe.Provider)
			assert.Equal(t, tc.kind, pe.Kind, "err: %v", err)
		})
	}
}

func TestGetGasPrice_ErrorDoesNotLeakKey(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	doer := httpxmock.NewMockDoer(ctrl)
	doer.EXPECT().Do(gomock.Any()).DoAndReturn(respond(http.StatusForbidden, "forbidden"))

	client, err := etherscan.New("super-secret", etherscan.WithHTTPClient(doer))
	require.NoError(t, err)

	_, err = client.GetGasPrice(t.Context())
	require.Error(t, err)
	assert.NotContains(t, err.Error(), "super-secret")
}

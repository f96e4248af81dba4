package oracle

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D-DEV-JSS/HPAY/types"
)

func jsonServer(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(status)
		w.Write([]byte(body)) //nolint:errcheck
	}))
	t.Cleanup(server.Close)
	return server
}

func TestCoinExSource(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `{"code":0,"data":[{"market":"HACUSDT","last":"0.4521"}]}`)

	src := NewCoinExSource(server.URL, server.Client())
	assert.Equal(t, types.SourceCoinEx, src.Name())

	rate, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.4521")))
}

func TestCoinExSourceMissingField(t *testing.T) {
	cases := []string{
		`{"code":0,"data":[]}`,
		`{"code":0,"data":[{"market":"HACUSDT"}]}`,
		`{"code":0}`,
	}
	for _, body := range cases {
		server := jsonServer(t, http.StatusOK, body)
		src := NewCoinExSource(server.URL, server.Client())

		_, err := src.Fetch(context.Background())
		require.Error(t, err, "body %s must be treated as unavailable", body)
		assert.Equal(t, types.ErrSourceUnavailable, types.ErrorCode(err))
	}
}

func TestNonkycSource(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `{"ticker":{"last":"0.4498","high":"0.47"}}`)

	src := NewNonkycSource(server.URL, server.Client())
	assert.Equal(t, types.SourceNonkyc, src.Name())

	rate, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.RequireFromString("0.4498")))
}

func TestNonkycSourceMissingField(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `{"ticker":{}}`)
	src := NewNonkycSource(server.URL, server.Client())

	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestCoinGeckoSource(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `{"hacash":{"usdt":0.4533}}`)

	src := NewCoinGeckoSource(server.URL, server.Client())
	assert.Equal(t, types.SourceCoinGecko, src.Name())

	rate, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, rate.Equal(decimal.NewFromFloat(0.4533)))
}

func TestCoinGeckoSourceMissingField(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `{}`)
	src := NewCoinGeckoSource(server.URL, server.Client())

	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestSourceNonOKStatus(t *testing.T) {
	server := jsonServer(t, http.StatusInternalServerError, `{}`)
	src := NewCoinExSource(server.URL, server.Client())

	_, err := src.Fetch(context.Background())
	require.Error(t, err)
	assert.Equal(t, types.ErrSourceUnavailable, types.ErrorCode(err))
}

func TestSourceMalformedJSON(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `not json at all`)
	src := NewNonkycSource(server.URL, server.Client())

	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestSourceNegativeRateRejected(t *testing.T) {
	server := jsonServer(t, http.StatusOK, `{"ticker":{"last":"-0.1"}}`)
	src := NewNonkycSource(server.URL, server.Client())

	_, err := src.Fetch(context.Background())
	assert.Error(t, err)
}

func TestSourcesFromConfig(t *testing.T) {
	client := &http.Client{}
	sources, err := SourcesFromConfig([]types.SourceConfig{
		{Name: types.SourceCoinEx, URL: "http://coinex.test"},
		{Name: types.SourceNonkyc, URL: "http://nonkyc.test"},
		{Name: types.SourceCoinGecko, URL: "http://gecko.test"},
	}, client)
	require.NoError(t, err)
	require.Len(t, sources, 3)

	// Priority order must match configuration order.
	assert.Equal(t, types.SourceCoinEx, sources[0].Name())
	assert.Equal(t, types.SourceNonkyc, sources[1].Name())
	assert.Equal(t, types.SourceCoinGecko, sources[2].Name())
}

func TestSourcesFromConfigUnknownName(t *testing.T) {
	_, err := SourcesFromConfig([]types.SourceConfig{
		{Name: "Binance", URL: "http://binance.test"},
	}, &http.Client{})
	require.Error(t, err)
	assert.Equal(t, types.ErrConfigError, types.ErrorCode(err))
}

package oracle

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/D-DEV-JSS/HPAY/types"
)

// Source supplies one upstream HAC/USDT exchange rate. Implementations must
// respect ctx cancellation and return an error for anything other than a
// strictly positive rate.
type Source interface {
	Name() string
	Fetch(ctx context.Context) (decimal.Decimal, error)
}

const maxTickerBody = 1 << 20

// httpSource fetches a ticker over HTTP GET and extracts the last price with
// a provider-specific adapter.
type httpSource struct {
	name    string
	url     string
	client  *http.Client
	extract func(body []byte) (decimal.Decimal, error)
}

func (s *httpSource) Name() string {
	return s.name
}

func (s *httpSource) Fetch(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return decimal.Zero, fmt.Errorf("building request for %s: %w", s.name, err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("requesting %s ticker: %w", s.name, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, &types.Error{
			Code:    types.ErrSourceUnavailable,
			Message: fmt.Sprintf("%s ticker returned status %d", s.name, resp.StatusCode),
		}
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxTickerBody))
	if err != nil {
		return decimal.Zero, fmt.Errorf("reading %s ticker body: %w", s.name, err)
	}

	rate, err := s.extract(body)
	if err != nil {
		// Malformed or missing fields mean the source is unavailable,
		// not that the refresh failed.
		return decimal.Zero, &types.Error{
			Code:    types.ErrSourceUnavailable,
			Message: err.Error(),
		}
	}
	if !rate.IsPositive() {
		return decimal.Zero, &types.Error{
			Code:    types.ErrSourceUnavailable,
			Message: fmt.Sprintf("%s returned non-positive rate %s", s.name, rate),
		}
	}

	return rate, nil
}

// NewCoinExSource adapts the CoinEx spot ticker endpoint. The last price
// lives at data[0].last in the response body.
func NewCoinExSource(url string, client *http.Client) Source {
	return &httpSource{
		name:   types.SourceCoinEx,
		url:    url,
		client: client,
		extract: func(body []byte) (decimal.Decimal, error) {
			var resp struct {
				Data []struct {
					Last string `json:"last"`
				} `json:"data"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return decimal.Zero, fmt.Errorf("parsing CoinEx ticker: %w", err)
			}
			if len(resp.Data) == 0 || resp.Data[0].Last == "" {
				return decimal.Zero, fmt.Errorf("CoinEx ticker missing last price")
			}
			return decimal.NewFromString(resp.Data[0].Last)
		},
	}
}

// NewNonkycSource adapts the Nonkyc.io peatio market ticker endpoint.
func NewNonkycSource(url string, client *http.Client) Source {
	return &httpSource{
		name:   types.SourceNonkyc,
		url:    url,
		client: client,
		extract: func(body []byte) (decimal.Decimal, error) {
			var resp struct {
				Ticker struct {
					Last string `json:"last"`
				} `json:"ticker"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return decimal.Zero, fmt.Errorf("parsing Nonkyc ticker: %w", err)
			}
			if resp.Ticker.Last == "" {
				return decimal.Zero, fmt.Errorf("Nonkyc ticker missing last price")
			}
			return decimal.NewFromString(resp.Ticker.Last)
		},
	}
}

// NewCoinGeckoSource adapts the CoinGecko simple-price endpoint, which
// reports the rate as a plain number under hacash.usdt.
func NewCoinGeckoSource(url string, client *http.Client) Source {
	return &httpSource{
		name:   types.SourceCoinGecko,
		url:    url,
		client: client,
		extract: func(body []byte) (decimal.Decimal, error) {
			var resp struct {
				Hacash struct {
					USDT float64 `json:"usdt"`
				} `json:"hacash"`
			}
			if err := json.Unmarshal(body, &resp); err != nil {
				return decimal.Zero, fmt.Errorf("parsing CoinGecko price: %w", err)
			}
			if resp.Hacash.USDT == 0 {
				return decimal.Zero, fmt.Errorf("CoinGecko price missing hacash.usdt")
			}
			return decimal.NewFromFloat(resp.Hacash.USDT), nil
		},
	}
}

// SourcesFromConfig builds the fallback chain from configuration, preserving
// the configured priority order.
func SourcesFromConfig(configs []types.SourceConfig, client *http.Client) ([]Source, error) {
	sources := make([]Source, 0, len(configs))
	for _, cfg := range configs {
		switch cfg.Name {
		case types.SourceCoinEx:
			sources = append(sources, NewCoinExSource(cfg.URL, client))
		case types.SourceNonkyc:
			sources = append(sources, NewNonkycSource(cfg.URL, client))
		case types.SourceCoinGecko:
			sources = append(sources, NewCoinGeckoSource(cfg.URL, client))
		default:
			return nil, &types.Error{
				Code:    types.ErrConfigError,
				Message: fmt.Sprintf("unknown price source %q", cfg.Name),
			}
		}
	}
	return sources, nil
}

package types

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
)

// SourceConfig identifies one upstream price-source endpoint. Name selects
// the provider-specific response adapter; URL is the ticker endpoint.
type SourceConfig struct {
	Name string `json:"name" validate:"required"`
	URL  string `json:"url" validate:"required,url"`
}

// Config contains global configuration for the hpay library.
type Config struct {
	// Fraction of every settled payment that is burned. Must be in [0, 1).
	BurnPercentage decimal.Decimal `json:"burnPercentage"`

	// Smallest initial balance accepted when opening a channel.
	MinimumChannelBalance decimal.Decimal `json:"minimumChannelBalance"`

	// Flat settlement fee reported alongside a channel close.
	CloseFee decimal.Decimal `json:"closeFee,omitempty"`

	// How long a fetched quote is served from cache.
	CacheTTL time.Duration `json:"cacheTtl,omitempty"`

	// Background refresh interval for rate polling.
	PollInterval time.Duration `json:"pollInterval,omitempty"`

	// Per-source timeout for upstream ticker requests.
	SourceTimeout time.Duration `json:"sourceTimeout,omitempty"`

	// Price sources in fallback priority order.
	PriceSources []SourceConfig `json:"priceSources" validate:"required,min=1,dive"`

	LogLevel string `json:"logLevel,omitempty"`
}

// Source names understood by the oracle's response adapters.
const (
	SourceCoinEx    = "CoinEx"
	SourceNonkyc    = "Nonkyc.io"
	SourceCoinGecko = "CoinGecko"
)

// Defaults mirroring the Hacash Pay production configuration.
const (
	DefaultCacheTTL      = 15 * time.Second
	DefaultPollInterval  = 15 * time.Second
	DefaultSourceTimeout = 3 * time.Second

	coinExTickerURL   = "https://api.coinex.com/v2/spot/ticker?market=HACUSDT"
	nonkycTickerURL   = "https://api.nonkyc.io/api/v2/peatio/public/markets/hacusdt/tickers"
	coinGeckoPriceURL = "https://api.coingecko.com/api/v3/simple/price?ids=hacash&vs_currencies=usdt"
)

// DefaultConfig returns the configuration the Hacash Pay app ships with:
// 2% burn, 1 HAC minimum channel balance, 15s cache and poll interval, and
// the CoinEx -> Nonkyc.io -> CoinGecko fallback chain.
func DefaultConfig() *Config {
	return &Config{
		BurnPercentage:        decimal.NewFromFloat(0.02),
		MinimumChannelBalance: decimal.NewFromInt(1),
		CloseFee:              decimal.NewFromFloat(0.0001),
		CacheTTL:              DefaultCacheTTL,
		PollInterval:          DefaultPollInterval,
		SourceTimeout:         DefaultSourceTimeout,
		PriceSources: []SourceConfig{
			{Name: SourceCoinEx, URL: coinExTickerURL},
			{Name: SourceNonkyc, URL: nonkycTickerURL},
			{Name: SourceCoinGecko, URL: coinGeckoPriceURL},
		},
		LogLevel: "info",
	}
}

// Validate checks that the Config is internally consistent.
func (c *Config) Validate() error {
	one := decimal.NewFromInt(1)
	if c.BurnPercentage.IsNegative() || c.BurnPercentage.GreaterThanOrEqual(one) {
		return &Error{
			Code:    ErrInvalidBurnPercentage,
			Message: fmt.Sprintf("burnPercentage must be in [0, 1), got %s", c.BurnPercentage),
		}
	}

	if c.MinimumChannelBalance.IsNegative() {
		return &Error{
			Code:    ErrConfigError,
			Message: "minimumChannelBalance cannot be negative",
		}
	}

	if c.CloseFee.IsNegative() {
		return &Error{
			Code:    ErrConfigError,
			Message: "closeFee cannot be negative",
		}
	}

	if c.CacheTTL < 0 || c.PollInterval < 0 || c.SourceTimeout < 0 {
		return &Error{
			Code:    ErrConfigError,
			Message: "durations cannot be negative",
		}
	}

	if len(c.PriceSources) == 0 {
		return &Error{
			Code:    ErrConfigError,
			Message: "at least one price source is required",
		}
	}

	for _, src := range c.PriceSources {
		if src.Name == "" || src.URL == "" {
			return &Error{
				Code:    ErrConfigError,
				Message: "price source name and url are required",
			}
		}
	}

	return nil
}

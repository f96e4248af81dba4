// Package hpay implements the off-chain payment core of Hacash Pay: a
// bilateral channel ledger with a deflationary burn on settlement, a
// fee-split calculator that converts stable-currency payment targets into
// channel-currency amounts, and a multi-source price oracle feeding the
// conversion.
package hpay

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"

	"github.com/D-DEV-JSS/HPAY/feesplit"
	"github.com/D-DEV-JSS/HPAY/ledger"
	"github.com/D-DEV-JSS/HPAY/logger"
	"github.com/D-DEV-JSS/HPAY/metrics"
	"github.com/D-DEV-JSS/HPAY/oracle"
	"github.com/D-DEV-JSS/HPAY/types"
	"github.com/D-DEV-JSS/HPAY/utils"
	"github.com/D-DEV-JSS/HPAY/wallet"
)

// HPay is the main struct wiring the price oracle, the fee-split calculator
// and the channel ledger together.
type HPay struct {
	oracle *oracle.Oracle
	ledger *ledger.Ledger
	config *types.Config

	logger     logger.Logger
	metrics    metrics.Recorder
	httpClient *http.Client
	sources    []oracle.Source
}

// New creates an HPay instance from the given configuration. A nil config
// uses DefaultConfig.
func New(config *types.Config, opts ...Option) (*HPay, error) {
	if config == nil {
		config = types.DefaultConfig()
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	h := &HPay{
		config:  config,
		logger:  logger.NoopLogger{},
		metrics: metrics.NoopRecorder{},
	}

	for _, opt := range opts {
		opt(h)
	}

	if h.httpClient == nil {
		h.httpClient = &http.Client{Timeout: config.SourceTimeout}
	}

	if h.sources == nil {
		sources, err := oracle.SourcesFromConfig(config.PriceSources, h.httpClient)
		if err != nil {
			return nil, err
		}
		h.sources = sources
	}

	h.oracle = oracle.New(h.sources,
		oracle.WithCacheTTL(config.CacheTTL),
		oracle.WithSourceTimeout(config.SourceTimeout),
		oracle.WithLogger(h.logger),
		oracle.WithMetrics(h.metrics),
	)

	h.ledger = ledger.New(config.MinimumChannelBalance, config.BurnPercentage,
		ledger.WithCloseFee(config.CloseFee),
		ledger.WithLogger(h.logger),
		ledger.WithMetrics(h.metrics),
	)

	return h, nil
}

// NewWithDefaults creates an HPay instance with the stock Hacash Pay
// configuration.
func NewWithDefaults(opts ...Option) *HPay {
	h, _ := New(types.DefaultConfig(), opts...)
	return h
}

// GetRate returns the current HAC/USDT rate, served from cache while fresh.
func (h *HPay) GetRate(ctx context.Context) (*types.PriceQuote, error) {
	return h.oracle.GetRate(ctx)
}

// ComputeSplit computes the burn/merchant split for a stable-currency target
// at the given rate, using the configured burn percentage.
func (h *HPay) ComputeSplit(targetStableAmount, rate decimal.Decimal) (*types.PaymentSplit, error) {
	return feesplit.ComputeSplit(targetStableAmount, rate, h.config.BurnPercentage)
}

// QuotePayment fetches the live rate and computes the split for a
// stable-currency payment target.
func (h *HPay) QuotePayment(ctx context.Context, targetStableAmount decimal.Decimal) (*types.PaymentSplit, error) {
	quote, err := h.oracle.GetRate(ctx)
	if err != nil {
		return nil, err
	}
	return h.ComputeSplit(targetStableAmount, quote.Value)
}

// OpenChannel opens a channel funded by the payer.
func (h *HPay) OpenChannel(payerAddress, payeeAddress string, initialBalance decimal.Decimal) (*types.Channel, error) {
	if err := utils.ValidateAddress(payerAddress); err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidAddress,
			Message: fmt.Sprintf("invalid payer address: %v", err),
		}
	}
	if err := utils.ValidateAddress(payeeAddress); err != nil {
		return nil, &types.Error{
			Code:    types.ErrInvalidAddress,
			Message: fmt.Sprintf("invalid payee address: %v", err),
		}
	}

	return h.ledger.Open(payerAddress, payeeAddress, initialBalance)
}

// OpenChannelFor opens a channel on behalf of the connected wallet, taking
// the payer identity from it.
func (h *HPay) OpenChannelFor(w wallet.Wallet, payeeAddress string, initialBalance decimal.Decimal) (*types.Channel, error) {
	return h.OpenChannel(w.Address(), payeeAddress, initialBalance)
}

// Pay applies a channel-currency payment on the channel.
func (h *HPay) Pay(channelID string, amount decimal.Decimal) (*types.PaymentResult, error) {
	return h.ledger.Pay(channelID, amount)
}

// PayStable quotes targetStableAmount at the live rate and applies the
// resulting gross channel amount as a payment. The split is returned so the
// caller can surface the burn and merchant figures.
func (h *HPay) PayStable(ctx context.Context, channelID string, targetStableAmount decimal.Decimal) (*types.PaymentResult, *types.PaymentSplit, error) {
	split, err := h.QuotePayment(ctx, targetStableAmount)
	if err != nil {
		return nil, nil, err
	}

	result, err := h.ledger.Pay(channelID, split.TotalChannelAmount)
	if err != nil {
		return nil, nil, err
	}

	return result, split, nil
}

// CloseChannel settles the channel and removes it from the live set.
func (h *HPay) CloseChannel(channelID string) (*types.SettlementResult, error) {
	return h.ledger.Close(channelID)
}

// Channel returns a snapshot of a live channel.
func (h *HPay) Channel(channelID string) (*types.Channel, error) {
	return h.ledger.Get(channelID)
}

// Channels returns snapshots of every live channel.
func (h *HPay) Channels() []types.Channel {
	return h.ledger.Channels()
}

// StartPolling begins background rate refreshes, invoking onUpdate on every
// successful fetch. Restart-safe; failures are logged and swallowed.
func (h *HPay) StartPolling(interval time.Duration, onUpdate func(*types.PriceQuote)) {
	if interval <= 0 {
		interval = h.config.PollInterval
	}
	h.oracle.StartPolling(interval, onUpdate)
}

// StopPolling cancels the background refresh loop. Idempotent.
func (h *HPay) StopPolling() {
	h.oracle.StopPolling()
}

// Close releases background resources.
func (h *HPay) Close() {
	h.oracle.StopPolling()
}

// Version information
const Version = "1.0.0"

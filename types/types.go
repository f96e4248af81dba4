package types

import (
	"time"

	"github.com/shopspring/decimal"
)

// ChannelStatus represents the lifecycle state of a payment channel
type ChannelStatus string

const (
	ChannelStatusOpen   ChannelStatus = "open"
	ChannelStatusClosed ChannelStatus = "closed"
)

// Channel is the authoritative state of a bilateral off-chain payment channel.
// Balances are denominated in the channel currency (HAC). The sum of both
// balances is fixed at open time and only changes when the channel is closed.
type Channel struct {
	// Unique channel identifier, "0x" + 32 hex digits, generated at open time.
	ID string `json:"id"`

	// Address of the paying party. Immutable after creation.
	PayerAddress string `json:"payerAddress"`

	// Address of the receiving party. Immutable after creation.
	PayeeAddress string `json:"payeeAddress"`

	// Current balance on the payer side of the channel.
	PayerBalance decimal.Decimal `json:"payerBalance"`

	// Current balance on the payee side of the channel.
	PayeeBalance decimal.Decimal `json:"payeeBalance"`

	// Strictly increasing state-update counter. Incremented exactly once
	// per applied payment.
	Nonce uint64 `json:"nonce"`

	Status ChannelStatus `json:"status"`

	OpenedAt      time.Time `json:"openedAt"`
	LastUpdatedAt time.Time `json:"lastUpdatedAt"`
}

// PriceQuote is a single observed exchange rate: stable-currency units (USDT)
// per one channel-currency unit (HAC).
type PriceQuote struct {
	Value      decimal.Decimal `json:"value"`
	Source     string          `json:"source"`
	ObservedAt time.Time       `json:"observedAt"`
}

// PaymentSplit is the result of the fee-split calculation for a payment
// targeting a stable-currency amount. Computed, never persisted.
type PaymentSplit struct {
	// Gross amount the payer is charged, in channel currency.
	TotalChannelAmount decimal.Decimal `json:"totalChannelAmount"`

	// Portion of the gross amount that is permanently burned.
	BurnAmount decimal.Decimal `json:"burnAmount"`

	// Net amount the merchant receives, in channel currency.
	MerchantChannelAmount decimal.Decimal `json:"merchantChannelAmount"`

	// Merchant amount converted back to stable currency at RateUsed.
	MerchantStableAmount decimal.Decimal `json:"merchantStableAmount"`

	RateUsed       decimal.Decimal `json:"rateUsed"`
	BurnPercentage decimal.Decimal `json:"burnPercentage"`
}

// PaymentResult is returned by a successful channel payment.
type PaymentResult struct {
	ChannelID    string          `json:"channelId"`
	Amount       decimal.Decimal `json:"amount"`
	PayerBalance decimal.Decimal `json:"payerBalance"`
	Nonce        uint64          `json:"nonce"`
}

// SettlementResult contains the final amounts produced by closing a channel.
// Broadcasting these on-chain is the wallet collaborator's responsibility.
type SettlementResult struct {
	ChannelID     string          `json:"channelId"`
	BurnAmount    decimal.Decimal `json:"burnAmount"`
	SettledAmount decimal.Decimal `json:"settledAmount"`
	CloseFee      decimal.Decimal `json:"closeFee"`
}

// Error is the typed error returned for all domain failures.
type Error struct {
	Code    string      `json:"code"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}

func (e Error) Error() string {
	return e.Message
}

// Common error codes
const (
	ErrInvalidAmount         = "INVALID_AMOUNT"
	ErrInvalidRate           = "INVALID_RATE"
	ErrInvalidBurnPercentage = "INVALID_BURN_PERCENTAGE"
	ErrInvalidAddress        = "INVALID_ADDRESS"
	ErrChannelNotFound       = "CHANNEL_NOT_FOUND"
	ErrInsufficientBalance   = "INSUFFICIENT_BALANCE"
	ErrBelowMinimumBalance   = "BELOW_MINIMUM_BALANCE"
	ErrNoRateAvailable       = "NO_RATE_AVAILABLE"
	ErrSourceUnavailable     = "SOURCE_UNAVAILABLE"
	ErrConfigError           = "CONFIG_ERROR"
)

// ErrorCode extracts the domain error code from err, or "" if err is not a
// *types.Error.
func ErrorCode(err error) string {
	if err == nil {
		return ""
	}
	if e, ok := err.(*Error); ok {
		return e.Code
	}
	return ""
}

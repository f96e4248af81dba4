// Package ledger owns the authoritative state of all open payment channels.
// Channels live in a map keyed by id; each channel carries its own mutex so
// payments on unrelated channels never serialize against each other. The map
// itself is guarded separately and only briefly, for membership changes and
// lookups.
package ledger

import (
	"encoding/hex"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/D-DEV-JSS/HPAY/logger"
	"github.com/D-DEV-JSS/HPAY/metrics"
	"github.com/D-DEV-JSS/HPAY/types"
)

// Ledger manages the live set of payment channels. The state machine per
// channel is Open -> Open (pay)* -> Closed; no other mutator exists.
type Ledger struct {
	minBalance decimal.Decimal
	burnPct    decimal.Decimal
	closeFee   decimal.Decimal
	log        logger.Logger
	rec        metrics.Recorder
	now        func() time.Time

	mu       sync.RWMutex
	channels map[string]*channelState
}

// channelState pairs a channel with its exclusive payment lock. The closed
// flag stays set after removal from the map so a payment racing a close
// observes the channel as gone rather than mutating a dead record.
type channelState struct {
	mu     sync.Mutex
	closed bool
	ch     types.Channel
}

type Option func(*Ledger)

func WithLogger(l logger.Logger) Option {
	return func(lg *Ledger) {
		lg.log = l
	}
}

func WithMetrics(r metrics.Recorder) Option {
	return func(lg *Ledger) {
		lg.rec = r
	}
}

func WithCloseFee(fee decimal.Decimal) Option {
	return func(lg *Ledger) {
		lg.closeFee = fee
	}
}

// New creates an empty ledger. minBalance guards Open; burnPercentage is
// applied to the payee balance at close time.
func New(minBalance, burnPercentage decimal.Decimal, opts ...Option) *Ledger {
	l := &Ledger{
		minBalance: minBalance,
		burnPct:    burnPercentage,
		log:        logger.NoopLogger{},
		rec:        metrics.NoopRecorder{},
		now:        time.Now,
		channels:   make(map[string]*channelState),
	}

	for _, opt := range opts {
		opt(l)
	}

	return l
}

// Open creates a channel funded entirely by the payer and inserts it into
// the live set.
func (l *Ledger) Open(payerAddress, payeeAddress string, initialBalance decimal.Decimal) (*types.Channel, error) {
	if initialBalance.LessThan(l.minBalance) {
		return nil, &types.Error{
			Code:    types.ErrBelowMinimumBalance,
			Message: fmt.Sprintf("initial balance %s is below the minimum %s", initialBalance, l.minBalance),
		}
	}

	now := l.now()
	ch := types.Channel{
		ID:            newChannelID(),
		PayerAddress:  payerAddress,
		PayeeAddress:  payeeAddress,
		PayerBalance:  initialBalance,
		PayeeBalance:  decimal.Zero,
		Nonce:         0,
		Status:        types.ChannelStatusOpen,
		OpenedAt:      now,
		LastUpdatedAt: now,
	}

	l.mu.Lock()
	l.channels[ch.ID] = &channelState{ch: ch}
	l.mu.Unlock()

	l.log.Info("channel opened", map[string]any{
		"channelId": ch.ID,
		"payer":     payerAddress,
		"payee":     payeeAddress,
		"balance":   initialBalance.String(),
	})
	l.rec.IncCounter("channel_open", nil)

	snapshot := ch
	return &snapshot, nil
}

// Pay moves amount from the payer side to the payee side of the channel.
// The total of both balances is unchanged; the nonce increments exactly once.
// Payments on the same channel are mutually exclusive; different channels
// proceed independently.
func (l *Ledger) Pay(channelID string, amount decimal.Decimal) (*types.PaymentResult, error) {
	if !amount.IsPositive() {
		return nil, &types.Error{
			Code:    types.ErrInvalidAmount,
			Message: fmt.Sprintf("payment amount must be positive, got %s", amount),
		}
	}

	cs := l.lookup(channelID)
	if cs == nil {
		return nil, channelNotFound(channelID)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.closed {
		return nil, channelNotFound(channelID)
	}

	if amount.GreaterThan(cs.ch.PayerBalance) {
		return nil, &types.Error{
			Code:    types.ErrInsufficientBalance,
			Message: fmt.Sprintf("payment of %s exceeds payer balance %s", amount, cs.ch.PayerBalance),
		}
	}

	cs.ch.PayerBalance = cs.ch.PayerBalance.Sub(amount)
	cs.ch.PayeeBalance = cs.ch.PayeeBalance.Add(amount)
	cs.ch.Nonce++
	cs.ch.LastUpdatedAt = l.now()

	l.log.Debug("payment applied", map[string]any{
		"channelId": channelID,
		"amount":    amount.String(),
		"nonce":     cs.ch.Nonce,
	})
	l.rec.IncCounter("channel_pay", nil)

	return &types.PaymentResult{
		ChannelID:    channelID,
		Amount:       amount,
		PayerBalance: cs.ch.PayerBalance,
		Nonce:        cs.ch.Nonce,
	}, nil
}

// Close settles the channel: the accumulated payee balance is split into a
// burned portion and the merchant's settled amount, and the channel leaves
// the live set. The payer's unspent remainder is not burned.
func (l *Ledger) Close(channelID string) (*types.SettlementResult, error) {
	cs := l.lookup(channelID)
	if cs == nil {
		return nil, channelNotFound(channelID)
	}

	cs.mu.Lock()
	if cs.closed {
		cs.mu.Unlock()
		return nil, channelNotFound(channelID)
	}

	cs.closed = true
	cs.ch.Status = types.ChannelStatusClosed
	burnAmount := cs.ch.PayeeBalance.Mul(l.burnPct)
	settledAmount := cs.ch.PayeeBalance.Sub(burnAmount)
	cs.mu.Unlock()

	l.mu.Lock()
	delete(l.channels, channelID)
	l.mu.Unlock()

	l.log.Info("channel closed", map[string]any{
		"channelId": channelID,
		"burned":    burnAmount.String(),
		"settled":   settledAmount.String(),
	})
	l.rec.IncCounter("channel_close", nil)

	return &types.SettlementResult{
		ChannelID:     channelID,
		BurnAmount:    burnAmount,
		SettledAmount: settledAmount,
		CloseFee:      l.closeFee,
	}, nil
}

// Get returns a snapshot of a live channel.
func (l *Ledger) Get(channelID string) (*types.Channel, error) {
	cs := l.lookup(channelID)
	if cs == nil {
		return nil, channelNotFound(channelID)
	}

	cs.mu.Lock()
	defer cs.mu.Unlock()

	if cs.closed {
		return nil, channelNotFound(channelID)
	}

	snapshot := cs.ch
	return &snapshot, nil
}

// Channels returns a snapshot of every live channel.
func (l *Ledger) Channels() []types.Channel {
	l.mu.RLock()
	states := make([]*channelState, 0, len(l.channels))
	for _, cs := range l.channels {
		states = append(states, cs)
	}
	l.mu.RUnlock()

	channels := make([]types.Channel, 0, len(states))
	for _, cs := range states {
		cs.mu.Lock()
		if !cs.closed {
			channels = append(channels, cs.ch)
		}
		cs.mu.Unlock()
	}
	return channels
}

// lookup fetches the channel state without holding the map lock past the
// read. Acquiring the channel mutex under the map lock would let a payment
// block an unrelated open or close.
func (l *Ledger) lookup(channelID string) *channelState {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.channels[channelID]
}

func channelNotFound(channelID string) error {
	return &types.Error{
		Code:    types.ErrChannelNotFound,
		Message: fmt.Sprintf("channel %s not found", channelID),
	}
}

// newChannelID generates a 128-bit random identifier, hex-encoded with the
// 0x prefix the original channel chain uses.
func newChannelID() string {
	u := uuid.New()
	return "0x" + hex.EncodeToString(u[:])
}

// Package wallet defines the collaborator interface through which the
// payment core learns the local party's identity. Signing and broadcasting
// settlements on-chain belong to the wallet implementation, not to the
// channel core; the core only produces the numbers a broadcast would use.
package wallet

import (
	"context"
	"fmt"

	"github.com/shopspring/decimal"
)

// Balance is the wallet's view of the party's funds, split between the
// on-chain layer and the amount currently locked in channels.
type Balance struct {
	L1    decimal.Decimal `json:"l1"`
	L2    decimal.Decimal `json:"l2"`
	Total decimal.Decimal `json:"total"`
}

// StateUpdate is the channel state a wallet is asked to countersign after a
// payment is applied.
type StateUpdate struct {
	ChannelID    string          `json:"channelId"`
	Nonce        uint64          `json:"nonce"`
	PayerBalance decimal.Decimal `json:"payerBalance"`
	PayeeBalance decimal.Decimal `json:"payeeBalance"`
}

// Wallet is the minimal contract the channel core consumes. Address supplies
// the payer identity for channel opens; the rest is surfaced for embedders
// that drive real signing flows.
type Wallet interface {
	Address() string
	Balance(ctx context.Context) (*Balance, error)
	SignState(ctx context.Context, update StateUpdate) (string, error)
}

// StaticWallet is a fixed-identity wallet for tests and examples. A real
// integration substitutes a WalletConnect-backed implementation.
type StaticWallet struct {
	Addr      string
	L1Balance decimal.Decimal
	L2Balance decimal.Decimal
}

var _ Wallet = (*StaticWallet)(nil)

func NewStaticWallet(address string) *StaticWallet {
	return &StaticWallet{Addr: address}
}

func (w *StaticWallet) Address() string {
	return w.Addr
}

func (w *StaticWallet) Balance(_ context.Context) (*Balance, error) {
	return &Balance{
		L1:    w.L1Balance,
		L2:    w.L2Balance,
		Total: w.L1Balance.Add(w.L2Balance),
	}, nil
}

func (w *StaticWallet) SignState(_ context.Context, update StateUpdate) (string, error) {
	if update.ChannelID == "" {
		return "", fmt.Errorf("state update missing channel id")
	}
	return fmt.Sprintf("signed:%s:%d", update.ChannelID, update.Nonce), nil
}

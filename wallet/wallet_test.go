package wallet

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStaticWalletBalance(t *testing.T) {
	w := NewStaticWallet("1MzNY1oA3kfgYi75zGtu7xXfWYxxx3wxxN")
	w.L1Balance = decimal.RequireFromString("50.5")
	w.L2Balance = decimal.RequireFromString("25.25")

	assert.Equal(t, "1MzNY1oA3kfgYi75zGtu7xXfWYxxx3wxxN", w.Address())

	bal, err := w.Balance(context.Background())
	require.NoError(t, err)
	assert.True(t, bal.Total.Equal(decimal.RequireFromString("75.75")))
	assert.True(t, bal.L1.Equal(w.L1Balance))
	assert.True(t, bal.L2.Equal(w.L2Balance))
}

func TestStaticWalletSignState(t *testing.T) {
	w := NewStaticWallet("1MzNY1oA3kfgYi75zGtu7xXfWYxxx3wxxN")

	sig, err := w.SignState(context.Background(), StateUpdate{
		ChannelID:    "0xabc",
		Nonce:        3,
		PayerBalance: decimal.NewFromInt(7),
		PayeeBalance: decimal.NewFromInt(3),
	})
	require.NoError(t, err)
	assert.Equal(t, "signed:0xabc:3", sig)

	_, err = w.SignState(context.Background(), StateUpdate{})
	assert.Error(t, err)
}

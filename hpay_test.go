package hpay

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/D-DEV-JSS/HPAY/types"
	"github.com/D-DEV-JSS/HPAY/wallet"
)

const (
	payerAddr = "1MzNY1oA3kfgYi75zGtu7xXfWYxxx3wxxN"
	payeeAddr = "1AVRuFhNFtoiacBMCaLzQrso1DzxxVDyxx"
)

// fixedSource returns a constant rate without touching the network.
type fixedSource struct {
	rate decimal.Decimal
}

func (s *fixedSource) Name() string {
	return "fixed"
}

func (s *fixedSource) Fetch(_ context.Context) (decimal.Decimal, error) {
	return s.rate, nil
}

func newTestClient(t *testing.T, rate string) *HPay {
	t.Helper()
	h, err := New(types.DefaultConfig(),
		WithSources(&fixedSource{rate: decimal.RequireFromString(rate)}),
	)
	require.NoError(t, err)
	t.Cleanup(h.Close)
	return h
}

func TestNewRejectsInvalidConfig(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.BurnPercentage = decimal.NewFromInt(2)

	h, err := New(cfg)
	require.Error(t, err)
	assert.Nil(t, h)
	assert.Equal(t, types.ErrInvalidBurnPercentage, types.ErrorCode(err))
}

func TestNewRejectsUnknownSource(t *testing.T) {
	cfg := types.DefaultConfig()
	cfg.PriceSources = []types.SourceConfig{{Name: "Kraken", URL: "http://kraken.test"}}

	_, err := New(cfg)
	require.Error(t, err)
	assert.Equal(t, types.ErrConfigError, types.ErrorCode(err))
}

func TestNewWithDefaults(t *testing.T) {
	h := NewWithDefaults()
	require.NotNil(t, h)
	defer h.Close()

	assert.Empty(t, h.Channels())
}

func TestGetRate(t *testing.T) {
	h := newTestClient(t, "0.45")

	quote, err := h.GetRate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "fixed", quote.Source)
	assert.True(t, quote.Value.Equal(decimal.RequireFromString("0.45")))
}

func TestQuotePayment(t *testing.T) {
	h := newTestClient(t, "2")

	split, err := h.QuotePayment(context.Background(), decimal.NewFromInt(100))
	require.NoError(t, err)

	total, _ := split.TotalChannelAmount.Float64()
	assert.InDelta(t, 51.0204081632653, total, 1e-9)

	stable, _ := split.MerchantStableAmount.Float64()
	assert.InDelta(t, 100.0, stable, 1e-9)
}

func TestOpenChannelValidatesAddresses(t *testing.T) {
	h := newTestClient(t, "0.45")

	_, err := h.OpenChannel("", payeeAddr, decimal.NewFromInt(5))
	assert.Equal(t, types.ErrInvalidAddress, types.ErrorCode(err))

	_, err = h.OpenChannel(payerAddr, "nope", decimal.NewFromInt(5))
	assert.Equal(t, types.ErrInvalidAddress, types.ErrorCode(err))
}

func TestOpenChannelFor(t *testing.T) {
	h := newTestClient(t, "0.45")
	w := wallet.NewStaticWallet(payerAddr)

	ch, err := h.OpenChannelFor(w, payeeAddr, decimal.NewFromInt(10))
	require.NoError(t, err)
	assert.Equal(t, payerAddr, ch.PayerAddress)
	assert.Equal(t, payeeAddr, ch.PayeeAddress)
}

func TestPayStableEndToEnd(t *testing.T) {
	h := newTestClient(t, "2")

	ch, err := h.OpenChannel(payerAddr, payeeAddr, decimal.NewFromInt(100))
	require.NoError(t, err)

	// Pay a 100 USDT target at 2 USDT/HAC with 2% burn: the payer is
	// debited the gross 51.02... HAC; the burn is enforced at close.
	result, split, err := h.PayStable(context.Background(), ch.ID, decimal.NewFromInt(100))
	require.NoError(t, err)
	assert.Equal(t, uint64(1), result.Nonce)
	assert.True(t, result.Amount.Equal(split.TotalChannelAmount))

	got, err := h.Channel(ch.ID)
	require.NoError(t, err)
	assert.True(t, got.PayeeBalance.Equal(split.TotalChannelAmount))
	assert.True(t, got.PayerBalance.Add(got.PayeeBalance).Equal(decimal.NewFromInt(100)))

	settlement, err := h.CloseChannel(ch.ID)
	require.NoError(t, err)

	// Settlement burns 2% of the gross payee balance, which by the
	// gross-up construction equals the per-payment burn figure.
	burn, _ := settlement.BurnAmount.Float64()
	wantBurn, _ := split.BurnAmount.Float64()
	assert.InEpsilon(t, wantBurn, burn, 1e-9)

	settled, _ := settlement.SettledAmount.Float64()
	wantSettled, _ := split.MerchantChannelAmount.Float64()
	assert.InEpsilon(t, wantSettled, settled, 1e-9)
}

func TestPayStableInsufficientBalance(t *testing.T) {
	h := newTestClient(t, "2")

	ch, err := h.OpenChannel(payerAddr, payeeAddr, decimal.NewFromInt(10))
	require.NoError(t, err)

	// 100 USDT needs ~51 HAC gross; the channel only holds 10.
	_, _, err = h.PayStable(context.Background(), ch.ID, decimal.NewFromInt(100))
	assert.Equal(t, types.ErrInsufficientBalance, types.ErrorCode(err))
}

func TestFacadePolling(t *testing.T) {
	h := newTestClient(t, "0.45")

	updates := make(chan *types.PriceQuote, 1)
	h.StartPolling(10*time.Millisecond, func(q *types.PriceQuote) {
		select {
		case updates <- q:
		default:
		}
	})
	defer h.StopPolling()

	select {
	case q := <-updates:
		assert.Equal(t, "fixed", q.Source)
	case <-time.After(time.Second):
		t.Fatal("no polling update received")
	}
}

func TestConcreteScenario(t *testing.T) {
	// open(10) -> pay(3) -> close with 2% burn: burn 0.06, settled 2.94.
	h := newTestClient(t, "0.45")

	ch, err := h.OpenChannel(payerAddr, payeeAddr, decimal.NewFromInt(10))
	require.NoError(t, err)

	res, err := h.Pay(ch.ID, decimal.NewFromInt(3))
	require.NoError(t, err)
	assert.True(t, res.PayerBalance.Equal(decimal.NewFromInt(7)))
	assert.Equal(t, uint64(1), res.Nonce)

	settlement, err := h.CloseChannel(ch.ID)
	require.NoError(t, err)
	assert.True(t, settlement.BurnAmount.Equal(decimal.RequireFromString("0.06")))
	assert.True(t, settlement.SettledAmount.Equal(decimal.RequireFromString("2.94")))
}

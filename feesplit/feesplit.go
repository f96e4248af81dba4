// Package feesplit computes the burn/merchant split for a payment targeting
// a stable-currency amount.
package feesplit

import (
	"fmt"

	"github.com/shopspring/decimal"

	"github.com/D-DEV-JSS/HPAY/types"
)

var one = decimal.NewFromInt(1)

// ComputeSplit grosses up targetStableAmount so that after the burn the
// merchant receives exactly the requested stable amount at the given rate:
//
//	base     = target / rate
//	total    = base / (1 - burnPct)
//	burn     = total * burnPct
//	merchant = total - burn
//
// The order of operations is load-bearing: merchant * rate round-trips back
// to targetStableAmount up to decimal division precision.
func ComputeSplit(targetStableAmount, rate, burnPercentage decimal.Decimal) (*types.PaymentSplit, error) {
	if !targetStableAmount.IsPositive() {
		return nil, &types.Error{
			Code:    types.ErrInvalidAmount,
			Message: fmt.Sprintf("target stable amount must be positive, got %s", targetStableAmount),
		}
	}

	if !rate.IsPositive() {
		return nil, &types.Error{
			Code:    types.ErrInvalidRate,
			Message: fmt.Sprintf("rate must be positive, got %s", rate),
		}
	}

	if burnPercentage.IsNegative() || burnPercentage.GreaterThanOrEqual(one) {
		return nil, &types.Error{
			Code:    types.ErrInvalidBurnPercentage,
			Message: fmt.Sprintf("burn percentage must be in [0, 1), got %s", burnPercentage),
		}
	}

	baseChannelAmount := targetStableAmount.Div(rate)
	totalChannelAmount := baseChannelAmount.Div(one.Sub(burnPercentage))
	burnAmount := totalChannelAmount.Mul(burnPercentage)
	merchantChannelAmount := totalChannelAmount.Sub(burnAmount)
	merchantStableAmount := merchantChannelAmount.Mul(rate)

	return &types.PaymentSplit{
		TotalChannelAmount:    totalChannelAmount,
		BurnAmount:            burnAmount,
		MerchantChannelAmount: merchantChannelAmount,
		MerchantStableAmount:  merchantStableAmount,
		RateUsed:              rate,
		BurnPercentage:        burnPercentage,
	}, nil
}

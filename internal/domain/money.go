package domain

import (
	"github.com/shopspring/decimal"
)

// MoneyPlaces is the number of fraction digits kept for every stored amount.
const MoneyPlaces = 2

var hundred = decimal.NewFromInt(100)

// FromMinorUnits converts an amount in cents to a decimal amount.
func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -MoneyPlaces)
}

// ProviderShare returns amount*(1 - feePercent/100) rounded to cents.
// Credits and refunds both go through it, so a full refund reverses its credit exactly.
func ProviderShare(amount, feePercent decimal.Decimal) decimal.Decimal {
	share := hundred.Sub(feePercent)
	return amount.Mul(share).Div(hundred).Round(MoneyPlaces)
}

// SplitDeduction takes amount from pending first and the rest from balance,
// never taking more than a bucket holds.
func SplitDeduction(balance, pending, amount decimal.Decimal) (fromPending, fromBalance decimal.Decimal) {
	if !amount.IsPositive() {
		return decimal.Zero, decimal.Zero
	}
	fromPending = decimal.Min(decimal.Max(pending, decimal.Zero), amount)
	rest := amount.Sub(fromPending)
	fromBalance = decimal.Min(decimal.Max(balance, decimal.Zero), rest)
	return fromPending, fromBalance
}

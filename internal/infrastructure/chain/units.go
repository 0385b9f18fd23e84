package chain

import (
	"math/big"

	"github.com/shopspring/decimal"
)

// ToTokenUnits converts a USDT amount to the raw integer representation
// of a token with the given decimal precision. 1.5 with 6 decimals is
// 1500000; with 18 decimals, 1500000000000000000.
func ToTokenUnits(amount decimal.Decimal, decimals int32) *big.Int {
	return amount.Shift(decimals).Truncate(0).BigInt()
}

// FromTokenUnits converts raw token units back to a USDT amount.
func FromTokenUnits(raw *big.Int, decimals int32) decimal.Decimal {
	return decimal.NewFromBigInt(raw, -decimals)
}

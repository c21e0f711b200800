package types

import "github.com/shopspring/decimal"

// MoneyPrecision is the number of decimal places money is stored and displayed with
const MoneyPrecision int32 = 2

// RoundMoney rounds half away from zero to MoneyPrecision places.
// Only call it at storage or display boundaries, never on intermediate sums.
func RoundMoney(d decimal.Decimal) decimal.Decimal {
	return d.Round(MoneyPrecision)
}

// Hundred is the percentage divisor
var Hundred = decimal.NewFromInt(100)

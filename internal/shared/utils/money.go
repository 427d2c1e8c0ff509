package utils

import "github.com/shopspring/decimal"

// CurrencyPlaces is the number of fractional digits kept on monetary amounts
const CurrencyPlaces = 2

var hundred = decimal.NewFromInt(100)

// RoundMoney rounds half away from zero to currency precision
func RoundMoney(amount decimal.Decimal) decimal.Decimal {
	return amount.Round(CurrencyPlaces)
}

// NonNegative clamps amount at zero
func NonNegative(amount decimal.Decimal) decimal.Decimal {
	if amount.IsNegative() {
		return decimal.Zero
	}
	return amount
}

// ApplyPercentageOff returns amount reduced by percent (0-100), floored at zero
// and rounded to currency precision.
func ApplyPercentageOff(amount decimal.Decimal, percent int) decimal.Decimal {
	factor := decimal.NewFromInt(1).Sub(decimal.NewFromInt(int64(percent)).Div(hundred))
	return RoundMoney(NonNegative(amount.Mul(factor)))
}

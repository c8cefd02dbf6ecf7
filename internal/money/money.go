// Package money holds the two rounding rules the pricing engine relies on.
// Every monetary computation step rounds to cents immediately so repeated
// operations cannot accumulate sub-cent drift.
package money

import "github.com/shopspring/decimal"

// Round2 rounds to 2 decimal places, half up.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// ClampZero floors a value at zero. Discounts may never produce a negative
// price or total.
func ClampZero(d decimal.Decimal) decimal.Decimal {
	if d.IsNegative() {
		return decimal.Zero
	}
	return d
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.LessThan(b) {
		return a
	}
	return b
}

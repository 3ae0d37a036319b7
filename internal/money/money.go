// Package money provides exact-decimal currency helpers for the allocation
// engine. All bill arithmetic runs on shopspring decimals; binary floats are
// never used for amounts, so there is no accumulation error to paper over.
package money

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// Places is the currency precision: two decimal places (cents).
const Places = 2

// Cent is the minimum currency unit, 0.01.
var Cent = decimal.New(1, -Places)

// RoundCents rounds d to the nearest cent, half away from zero.
// This is the single rounding policy used everywhere in the engine.
func RoundCents(d decimal.Decimal) decimal.Decimal {
	return d.Round(Places)
}

// CentsBetween returns the whole number of cents separating a and b,
// i.e. |a-b| / 0.01. Both values must already be cent-exact.
func CentsBetween(a, b decimal.Decimal) int64 {
	return a.Sub(b).Abs().Div(Cent).IntPart()
}

// IsCentExact reports whether d has no fractional cents.
func IsCentExact(d decimal.Decimal) bool {
	return d.Equal(RoundCents(d))
}

// Parse converts a decimal string ("12.34", "-3") into an exact amount.
// It rejects values finer than one cent so malformed input cannot smuggle
// sub-cent precision into a bill.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("invalid amount %q: %w", s, err)
	}
	if !IsCentExact(d) {
		return decimal.Zero, fmt.Errorf("amount %q has sub-cent precision", s)
	}
	return d, nil
}

// Format renders an amount for display with a fixed two-decimal mantissa,
// e.g. "5.30", "-0.25".
func Format(d decimal.Decimal) string {
	return d.StringFixed(Places)
}

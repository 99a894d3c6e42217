// Package types provides common monetary types and utilities.
package types

import (
	"github.com/shopspring/decimal"
)

// Money represents a monetary value with full precision.
// Uses decimal.Decimal to avoid floating-point errors.
// All stored amounts are rounded to 2 fraction digits via Round2 at the
// point of assignment, not only at display.
type Money = decimal.Decimal

// MoneyScale is the number of fraction digits kept on stored amounts.
const MoneyScale = 2

// NewMoneyFromString creates a Money value from a string.
// This is the preferred method for monetary values.
func NewMoneyFromString(s string) (Money, error) {
	return decimal.NewFromString(s)
}

// MustMoney creates a Money value from a string, panics on error.
// Use only for constants and tests.
func MustMoney(s string) Money {
	d, err := decimal.NewFromString(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Zero returns zero Money value.
func Zero() Money {
	return decimal.Zero
}

// Round2 rounds to 2 fraction digits, half away from zero.
// Amounts in this system are non-negative, so this is round-half-up.
// The same convention is applied at every computation step so that
// recomputing totals from unchanged lines is bit-for-bit stable.
func Round2(m Money) Money {
	return m.Round(MoneyScale)
}

// Rate is a percentage with 2 fraction digits, valid range [0,100].
// Used for tax rates and discounts.
type Rate = decimal.Decimal

// ValidRate reports whether r lies in [0,100].
func ValidRate(r Rate) bool {
	return !r.IsNegative() && r.LessThanOrEqual(decimal.NewFromInt(100))
}

// Hundred is the percentage divisor.
var Hundred = decimal.NewFromInt(100)

// One is the multiplicative identity, used for discount factors.
var One = decimal.NewFromInt(1)

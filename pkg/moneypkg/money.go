// Package moneypkg holds the decimal rules for ledger amounts.
//
// Amounts are shopspring decimals with Scale fractional digits. Every computed
// value is rounded half-to-even to Scale at the point it is computed, and
// amounts cross process boundaries as strings fixed to Scale digits.
package moneypkg

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

// Scale is the number of fractional digits of a canonical amount.
const Scale = 8

// Errors returned by Parse.
var (
	ErrMalformed   = errors.New("malformed decimal")
	ErrTooPrecise  = errors.New("more than 8 fractional digits")
	ErrNonPositive = errors.New("not positive")
	ErrTooLarge    = errors.New("exceeds the maximum amount")
)

var (
	// Zero is the canonical zero amount.
	Zero = decimal.Zero
	// Max is the largest amount a balance or record can hold: 20 integer
	// digits and Scale fractional digits.
	Max = decimal.New(1, 20).Sub(decimal.New(1, -Scale))
)

// Parse parses a user supplied amount. It must be a positive decimal with at
// most Scale fractional digits.
func Parse(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Decimal{}, ErrMalformed
	}

	if !d.Equal(d.Truncate(Scale)) {
		return decimal.Decimal{}, ErrTooPrecise
	}

	if !d.IsPositive() {
		return decimal.Decimal{}, ErrNonPositive
	}

	if !InRange(d) {
		return decimal.Decimal{}, ErrTooLarge
	}

	return d, nil
}

// InRange reports whether d does not exceed Max.
func InRange(d decimal.Decimal) bool {
	return d.LessThanOrEqual(Max)
}

// ParseStored parses an amount read from a store.
func ParseStored(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

// Round rounds d to Scale digits, half to even.
func Round(d decimal.Decimal) decimal.Decimal {
	return d.RoundBank(Scale)
}

// ApplyRate returns amount × rate rounded to Scale digits.
func ApplyRate(amount, rate decimal.Decimal) decimal.Decimal {
	return Round(amount.Mul(rate))
}

// Format renders d with exactly Scale fractional digits.
func Format(d decimal.Decimal) string {
	return d.StringFixedBank(Scale)
}

// ValidAmount validates whether the field holds a parsable decimal string.
var ValidAmount validator.Func = func(fl validator.FieldLevel) bool {
	if s, ok := fl.Field().Interface().(string); ok {
		_, err := decimal.NewFromString(s)
		return err == nil
	}

	return false
}

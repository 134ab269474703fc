package money

import (
	"errors"

	"github.com/shopspring/decimal"
)

// Amounts are two-decimal fixed-point values. Magnitudes are stored
// positive; the transaction kind implies the sign.

var (
	ErrNotPositive = errors.New("amount must be positive")
	ErrTooPrecise  = errors.New("amount must have at most two decimal places")
	ErrNotANumber  = errors.New("invalid amount")
)

var Zero = decimal.Zero

// Parse converts a raw amount string into a validated magnitude.
func Parse(raw string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return decimal.Zero, ErrNotANumber
	}
	if err := Validate(d); err != nil {
		return decimal.Zero, err
	}
	return d, nil
}

// Validate checks that d is a usable transaction magnitude.
func Validate(d decimal.Decimal) error {
	if !d.IsPositive() {
		return ErrNotPositive
	}
	if d.Exponent() < -2 {
		return ErrTooPrecise
	}
	return nil
}

// FromFloat builds an amount from a float, rounded to two decimals.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f).Round(2)
}

// Format renders an amount with exactly two decimal places.
func Format(d decimal.Decimal) string {
	return d.StringFixed(2)
}

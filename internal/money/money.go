package money

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amounts are carried as int64 minor units everywhere past the DTO layer.
// This package owns the conversion between decimal strings on the wire and
// minor units inside the engine.

var ErrInvalidAmount = errors.New("invalid amount")

// exponents lists ISO 4217 currencies whose minor unit is not 2.
var exponents = map[string]int32{
	"BHD": 3,
	"CLP": 0,
	"ISK": 0,
	"JOD": 3,
	"JPY": 0,
	"KRW": 0,
	"KWD": 3,
	"OMR": 3,
	"TND": 3,
	"VND": 0,
}

// Exponent returns the number of minor-unit digits for a currency code.
func Exponent(currency string) int32 {
	if exp, ok := exponents[currency]; ok {
		return exp
	}
	return 2
}

// ValidCurrency reports whether code looks like an ISO 4217 alpha code.
func ValidCurrency(code string) bool {
	if len(code) != 3 {
		return false
	}
	for _, c := range code {
		if c < 'A' || c > 'Z' {
			return false
		}
	}
	return true
}

// Parse converts a decimal string like "12.34" to minor units (1234 for USD).
// It rejects values with more fractional digits than the currency carries.
func Parse(value, currency string) (int64, error) {
	d, err := decimal.NewFromString(value)
	if err != nil {
		return 0, fmt.Errorf("%w: %q is not a decimal number", ErrInvalidAmount, value)
	}

	shifted := d.Shift(Exponent(currency))
	if !shifted.IsInteger() {
		return 0, fmt.Errorf("%w: %q has more precision than %s allows", ErrInvalidAmount, value, currency)
	}

	return shifted.IntPart(), nil
}

// Format converts minor units back to a decimal string for display.
func Format(amount int64, currency string) string {
	exp := Exponent(currency)
	return decimal.New(amount, -exp).StringFixed(exp)
}

// Package money holds the decimal helpers used for every amount in the system.
// Amounts travel as strings and are never converted to binary floating point.
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

const (
	// MaxDigits bounds the number of significant digits accepted from callers.
	MaxDigits = 40
	// MaxScale bounds the number of fraction digits. NUMERIC keeps the exact
	// scale, so an unbounded exponent would be rendered digit by digit.
	MaxScale = 20
)

var (
	ErrInvalidAmount = errors.New("invalid amount")
	ErrNonPositive   = errors.New("amount must be > 0")
	ErrTooManyDigits = errors.New("amount has too many digits")
)

// Parse reads a decimal amount from its string form.
func Parse(s string) (decimal.Decimal, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, fmt.Errorf("%w: empty", ErrInvalidAmount)
	}

	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrInvalidAmount, s)
	}

	if d.Exponent() < -MaxScale || digits(d) > MaxDigits {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrTooManyDigits, s)
	}

	return d, nil
}

// ParsePositive is Parse plus a > 0 check.
func ParsePositive(s string) (decimal.Decimal, error) {
	d, err := Parse(s)
	if err != nil {
		return decimal.Zero, err
	}

	if !d.IsPositive() {
		return decimal.Zero, fmt.Errorf("%w: %q", ErrNonPositive, s)
	}

	return d, nil
}

// Min returns the smaller of a and b.
func Min(a, b decimal.Decimal) decimal.Decimal {
	if a.Cmp(b) <= 0 {
		return a
	}

	return b
}

// Max returns the larger of a and b.
func Max(a, b decimal.Decimal) decimal.Decimal {
	if a.Cmp(b) >= 0 {
		return a
	}

	return b
}

// Sum adds all values.
func Sum(values ...decimal.Decimal) decimal.Decimal {
	total := decimal.Zero
	for _, v := range values {
		total = total.Add(v)
	}

	return total
}

// Format renders d without exponent and without trailing zeros.
func Format(d decimal.Decimal) string {
	return d.String()
}

func digits(d decimal.Decimal) int {
	coef := d.Coefficient().String()
	coef = strings.TrimPrefix(coef, "-")

	n := len(coef)
	if exp := d.Exponent(); exp > 0 {
		n += int(exp)
	}

	return n
}

// Package core holds the domain types of the expense tracker: accounts,
// expenses, money arithmetic, aggregation and CSV export. Everything here is
// pure and independently testable on in-memory data.
package core

import (
	"fmt"
	"strconv"
	"strings"
)

// Money is an exact fixed-point amount with two fractional digits, stored as
// cents. All sums happen on cents; conversion to float64 is allowed only at
// the presentation boundary.
type Money struct {
	Cents int64
}

// ParseAmount converts a decimal string to Money with half-up rounding on the
// third fractional digit. Both dot (12.34) and comma (12,34) separators are
// accepted. Zero and negative amounts are accepted on purpose: rejecting them
// is a pending product decision.
//
// Examples:
//
//	ParseAmount("12.34")  -> 1234 cents
//	ParseAmount("12.345") -> 1234 cents (rounds down)
//	ParseAmount("12.346") -> 1235 cents (rounds up)
//	ParseAmount("-3")     -> -300 cents
func ParseAmount(s string) (Money, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Money{}, fmt.Errorf("%w: empty amount", ErrValidation)
	}
	// Normalize decimal comma to dot
	s = strings.ReplaceAll(s, ",", ".")

	neg := false
	switch {
	case strings.HasPrefix(s, "-"):
		neg = true
		s = s[1:]
	case strings.HasPrefix(s, "+"):
		s = s[1:]
	}

	parts := strings.Split(s, ".")
	if len(parts) > 2 {
		return Money{}, fmt.Errorf("%w: malformed amount %q", ErrValidation, s)
	}
	intPart := parts[0]
	fracPart := ""
	if len(parts) == 2 {
		fracPart = parts[1]
	}
	if intPart == "" && fracPart == "" {
		return Money{}, fmt.Errorf("%w: malformed amount", ErrValidation)
	}
	if intPart == "" {
		intPart = "0"
	}
	// ASCII digits only: the cent arithmetic below is byte-based, and
	// unicode digit classes would let e.g. arabic-indic digits through.
	if !allASCIIDigits(intPart) || !allASCIIDigits(fracPart) {
		return Money{}, fmt.Errorf("%w: malformed amount %q", ErrValidation, s)
	}

	iv, err := strconv.ParseInt(intPart, 10, 64)
	if err != nil {
		return Money{}, fmt.Errorf("%w: malformed amount %q", ErrValidation, s)
	}
	// Prevent overflow when multiplying by 100
	const maxSafeInt64 = (1<<63 - 1) / 100
	if iv > maxSafeInt64 {
		return Money{}, fmt.Errorf("%w: amount out of range", ErrValidation)
	}

	// Take first two fractional digits; half-up rounding on the third.
	var fracCents int64
	if len(fracPart) > 0 {
		fracCents = int64(fracPart[0]-'0') * 10
		if len(fracPart) > 1 {
			fracCents += int64(fracPart[1] - '0')
			if len(fracPart) > 2 && fracPart[2] >= '5' {
				fracCents++
			}
		}
	}

	cents := iv*100 + fracCents
	if neg {
		cents = -cents
	}
	return Money{Cents: cents}, nil
}

func allASCIIDigits(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}

// Add returns the exact sum of two amounts.
func (m Money) Add(o Money) Money {
	return Money{Cents: m.Cents + o.Cents}
}

// String renders the canonical decimal form with exactly two fractional
// digits and no currency symbol, e.g. "12.50" or "-0.75". This is the form
// stored records expose to the CSV exporter.
func (m Money) String() string {
	cents := m.Cents
	sign := ""
	if cents < 0 {
		sign = "-"
		cents = -cents
	}
	return fmt.Sprintf("%s%d.%02d", sign, cents/100, cents%100)
}

// Float64 converts to a float for charts and display. Never use the result
// for arithmetic.
func (m Money) Float64() float64 {
	return float64(m.Cents) / 100.0
}

/*
Package money provides decimal money handling for the route-sheet engine.

PURPOSE:
  Every monetary value in the system is a decimal.Decimal. This package
  owns the two rules that keep that true at the edges:

  1. INPUT NORMALIZATION: Operators type amounts on phones and terminals
     using either "12.50" or "12,50", often with stray whitespace. Parse
     accepts both separators and strips whitespace before parsing. Input
     that is still non-numeric after normalization is an error, never a
     silent zero.

  2. END-ONLY ROUNDING: Intermediate calculations keep full decimal
     precision; Round2 is applied exactly once, on final figures. Rounding
     per intermediate step would drift compensation by cents.

USAGE:
  amount, err := money.Parse(" 12,50 ")   // 12.5
  final := money.Round2(raw)              // banker's no - plain half-up

SEE ALSO:
  - pay: end-only rounding of compensation amounts
  - reconcile: end-only rounding of summary figures
*/
package money

import (
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

// ErrNotNumeric is returned when an input is not a number after
// separator and whitespace normalization.
var ErrNotNumeric = errors.New("input is not numeric")

// ParseError reports the offending raw input alongside ErrNotNumeric.
type ParseError struct {
	Input string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("cannot parse %q as an amount", e.Input)
}

func (e *ParseError) Unwrap() error { return ErrNotNumeric }

// Parse normalizes and parses a monetary string.
//
// Normalization: all whitespace is stripped, then a comma decimal
// separator is rewritten to a dot. "12,50", " 12.50 " and "12.50" all
// parse to the same decimal. Empty input and input that remains
// non-numeric return a *ParseError wrapping ErrNotNumeric.
func Parse(raw string) (decimal.Decimal, error) {
	s := strings.Join(strings.Fields(raw), "")
	s = strings.ReplaceAll(s, ",", ".")
	if s == "" {
		return decimal.Zero, &ParseError{Input: raw}
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, &ParseError{Input: raw}
	}
	return d, nil
}

// ParseNonNegative is Parse plus a sign check. Meter prices, collected
// amounts and expense amounts are never negative.
func ParseNonNegative(raw string) (decimal.Decimal, error) {
	d, err := Parse(raw)
	if err != nil {
		return decimal.Zero, err
	}
	if d.IsNegative() {
		return decimal.Zero, &ParseError{Input: raw}
	}
	return d, nil
}

// Round2 rounds to two decimal places, half away from zero.
// Applied once, on final figures only.
func Round2(d decimal.Decimal) decimal.Decimal {
	return d.Round(2)
}

// FromFloat builds a decimal from a float64 literal. Test and config
// convenience only; domain math never goes through float64.
func FromFloat(f float64) decimal.Decimal {
	return decimal.NewFromFloat(f)
}

// MustParse parses a known-good literal and panics otherwise.
// For constants and tests.
func MustParse(s string) decimal.Decimal {
	d, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return d
}

// Package core provides the household finance data model.
//
// This file contains amount parsing for form input and the helpers used to
// aggregate and display money. Amounts travel as float64 (the stored JSON
// shape) and are summed as decimals.
package core

import (
	"math"
	"strconv"
	"strings"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the single display currency.
const Currency = money.USD

// ParseFormAmount parses a user-entered amount field.
//
// Blank input is "not set" and reports false, as does anything that is not a
// finite number. The sign is preserved; callers decide whether it must be
// positive.
//
// Examples:
//
//	ParseFormAmount("12.5") -> 12.5, true
//	ParseFormAmount(" ")    -> 0, false
//	ParseFormAmount("1e3")  -> 1000, true
func ParseFormAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || !IsFinite(v) {
		return 0, false
	}
	return v, true
}

// IsPositiveAmount reports whether the field holds a finite amount above zero.
func IsPositiveAmount(s string) bool {
	v, ok := ParseFormAmount(s)
	return ok && v > 0
}

func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// Dec converts a stored amount to a decimal for aggregation.
func Dec(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v)
}

// Float converts an aggregated decimal back to the stored shape.
func Float(d decimal.Decimal) float64 {
	return d.InexactFloat64()
}

// Fixed2 renders an amount with exactly two decimals ("42.50", "-57.50").
func Fixed2(v float64) string {
	return Dec(v).StringFixed(2)
}

// FormatCurrency renders an amount for display, e.g. "$1,234.56" or "-$57.50".
func FormatCurrency(v float64) string {
	cents := Dec(v).Round(2).Shift(2).IntPart()
	return money.New(cents, Currency).Display()
}

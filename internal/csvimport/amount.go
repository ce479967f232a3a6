package csvimport

import (
	"math"
	"strconv"
	"strings"
)

var amountStripper = strings.NewReplacer("(", "", ")", "", "$", "", ",", "")

// ParseAmount parses a statement amount cell such as "-42.50", "$1,200" or
// "(15.00)". A leading minus or full parenthesization marks a negative
// value. The boolean is false when the cell does not hold a finite number.
func ParseAmount(s string) (float64, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	negative := strings.HasPrefix(s, "-") ||
		(strings.HasPrefix(s, "(") && strings.HasSuffix(s, ")"))

	v, err := strconv.ParseFloat(strings.TrimSpace(amountStripper.Replace(s)), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, false
	}
	if negative {
		return -math.Abs(v), true
	}
	return v, true
}

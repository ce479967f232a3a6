package csvimport

import (
	"strings"
	"time"

	"homefinances/internal/core"
)

// dateLayouts are the non-ISO layouts seen in bank exports. Slash dates are
// read month first.
var dateLayouts = []string{
	"01/02/2006",
	"1/2/2006",
	"01/02/06",
	"1/2/06",
	"2006/01/02",
	"2006/1/2",
	"01-02-2006",
	"1-2-2006",
	"2006-1-2",
	"Jan 2, 2006",
	"January 2, 2006",
	"Jan 2 2006",
	"January 2 2006",
	"2 Jan 2006",
	"02 Jan 2006",
	"2 January 2006",
	"Mon, 02 Jan 2006",
	"Mon Jan 2 2006",
	time.RFC3339,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
}

// NormalizeDate returns s as YYYY-MM-DD. The boolean is false when s is not
// a recognizable calendar date.
func NormalizeDate(s string) (string, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", false
	}
	if core.IsISODate(s) {
		return s, true
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.Format(core.ISODate), true
		}
	}
	return "", false
}

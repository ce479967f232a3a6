// Package csvimport turns bank statement CSV text into transactions.
//
// The tokenizer is deliberately lenient: statements exported by banks mix
// line endings, leave trailing blank lines and occasionally quote in the
// middle of a field, so a quote anywhere toggles quoted mode.
package csvimport

import (
	"strings"
)

// Tokenize splits text into rows of fields.
//
// Fields are separated by commas and rows by "\n", "\r\n" or a bare "\r".
// A double quote toggles quoted mode; inside quotes a doubled quote is a
// literal quote and separators are ordinary characters. Rows whose fields
// are all blank are dropped, including a dangling last row.
func Tokenize(text string) [][]string {
	var (
		rows     [][]string
		row      []string
		field    strings.Builder
		inQuotes bool
	)

	endField := func() {
		row = append(row, field.String())
		field.Reset()
	}
	endRow := func() {
		endField()
		if !isBlankRow(row) {
			rows = append(rows, row)
		}
		row = nil
	}

	for i := 0; i < len(text); i++ {
		c := text[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(text) && text[i+1] == '"' {
				field.WriteByte('"')
				i++
				continue
			}
			inQuotes = !inQuotes
		case c == ',' && !inQuotes:
			endField()
		case (c == '\n' || c == '\r') && !inQuotes:
			if c == '\r' && i+1 < len(text) && text[i+1] == '\n' {
				i++
			}
			endRow()
		default:
			field.WriteByte(c)
		}
	}

	if field.Len() > 0 || len(row) > 0 {
		endRow()
	}
	return rows
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

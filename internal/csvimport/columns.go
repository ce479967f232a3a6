package csvimport

import "strings"

// Logical column candidates, in priority order. Candidates are compared
// against normalized header cells.
var (
	dateHeaders     = []string{"date", "transactiondate", "posteddate", "postdate"}
	amountHeaders   = []string{"amount", "amt", "value"}
	inflowHeaders   = []string{"inflow", "credit", "deposit"}
	outflowHeaders  = []string{"outflow", "debit", "withdrawal"}
	accountHeaders  = []string{"account", "accountname"}
	payeeHeaders    = []string{"payee", "description", "merchant", "name"}
	categoryHeaders = []string{"category", "cat"}
	memoHeaders     = []string{"memo", "note", "notes"}
)

// Columns holds the index of each logical field in a row, -1 when absent.
type Columns struct {
	Date     int
	Amount   int
	Inflow   int
	Outflow  int
	Account  int
	Payee    int
	Category int
	Memo     int
}

// NormalizeHeader lower-cases s and strips everything but [a-z0-9].
func NormalizeHeader(s string) string {
	s = strings.ToLower(s)
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			b.WriteByte(c)
		}
	}
	return b.String()
}

// ResolveColumns matches a header row against the candidate lists.
func ResolveColumns(header []string) Columns {
	normalized := make([]string, len(header))
	for i, h := range header {
		normalized[i] = NormalizeHeader(h)
	}
	return Columns{
		Date:     findColumn(normalized, dateHeaders),
		Amount:   findColumn(normalized, amountHeaders),
		Inflow:   findColumn(normalized, inflowHeaders),
		Outflow:  findColumn(normalized, outflowHeaders),
		Account:  findColumn(normalized, accountHeaders),
		Payee:    findColumn(normalized, payeeHeaders),
		Category: findColumn(normalized, categoryHeaders),
		Memo:     findColumn(normalized, memoHeaders),
	}
}

// findColumn returns the index of the first candidate present in header.
func findColumn(header, candidates []string) int {
	for _, candidate := range candidates {
		for i, h := range header {
			if h == candidate {
				return i
			}
		}
	}
	return -1
}

// Valid reports whether rows can be extracted: a date column plus either an
// amount column or at least one of inflow/outflow.
func (c Columns) Valid() bool {
	if c.Date < 0 {
		return false
	}
	return c.Amount >= 0 || c.Inflow >= 0 || c.Outflow >= 0
}

// cell returns row[idx] or "" when the column is absent or the row is short.
func cell(row []string, idx int) string {
	if idx < 0 || idx >= len(row) {
		return ""
	}
	return row[idx]
}

package csvimport

import (
	"strings"
	"time"

	"homefinances/internal/core"
)

const (
	// UnassignedAccount is used when no default and no accounts exist.
	UnassignedAccount = "Unassigned"
	// ImportedPayee is used for rows without a payee.
	ImportedPayee = "Imported"
)

// Importer extracts transactions from statement text.
//
// Accounts lists the existing account names; an account cell naming any
// other account is replaced by the default account.
type Importer struct {
	Accounts       []string
	DefaultAccount string
	NewID          core.IDFunc
	Now            core.Clock
}

// Result is the outcome of parsing one file.
type Result struct {
	Transactions []core.Transaction
	// Rows is the number of data rows after the header.
	Rows int
	// SkippedRows counts rows without a usable date or amount.
	SkippedRows int
	// AccountFallbacks counts rows whose account cell was replaced by the default.
	AccountFallbacks int
}

// Empty reports whether no transaction was produced.
func (r Result) Empty() bool {
	return len(r.Transactions) == 0
}

// ResolveDefaultAccount picks the caller default, then the first account,
// then "Unassigned".
func ResolveDefaultAccount(preferred string, accounts []string) string {
	if p := strings.TrimSpace(preferred); p != "" {
		return p
	}
	if len(accounts) > 0 {
		return accounts[0]
	}
	return UnassignedAccount
}

// Parse tokenizes text and extracts every valid row, in file order.
// A file without a header and at least one data row, or without date and
// amount columns, yields an empty result.
func (im Importer) Parse(text string) Result {
	rows := Tokenize(text)
	if len(rows) < 2 {
		return Result{}
	}
	cols := ResolveColumns(rows[0])
	if !cols.Valid() {
		return Result{}
	}

	defaultAccount := ResolveDefaultAccount(im.DefaultAccount, im.Accounts)
	known := make(map[string]struct{}, len(im.Accounts))
	for _, name := range im.Accounts {
		known[name] = struct{}{}
	}

	newID := im.NewID
	if newID == nil {
		newID = core.NewID
	}
	now := im.Now
	if now == nil {
		now = time.Now
	}

	res := Result{Rows: len(rows) - 1}
	for _, row := range rows[1:] {
		rec, ok := ParseRecord(row, cols)
		if !ok {
			res.SkippedRows++
			continue
		}

		account := rec.Account
		if account == "" {
			account = defaultAccount
		}
		if _, exists := known[account]; !exists {
			if account != defaultAccount {
				res.AccountFallbacks++
			}
			account = defaultAccount
		}

		payee := rec.Payee
		if payee == "" {
			payee = ImportedPayee
		}

		amount := rec.Signed
		if amount < 0 {
			amount = -amount
		}
		res.Transactions = append(res.Transactions, core.Transaction{
			ID:        newID(),
			CreatedAt: core.Millis(now()),
			Date:      rec.Date,
			Account:   account,
			Payee:     payee,
			Category:  rec.Category,
			Memo:      rec.Memo,
			Type:      core.TypeForSign(rec.Signed),
			Amount:    amount,
		})
	}
	return res
}

// Record is one data row with its date normalized and amount signed. Text
// cells are trimmed and may be empty.
type Record struct {
	Date     string
	Signed   float64
	Account  string
	Payee    string
	Category string
	Memo     string
}

// ParseRecord extracts a row. The boolean is false when the date or the
// amount is unusable.
func ParseRecord(row []string, cols Columns) (Record, bool) {
	date, ok := NormalizeDate(cell(row, cols.Date))
	if !ok {
		return Record{}, false
	}
	signed, ok := rowAmount(row, cols)
	if !ok {
		return Record{}, false
	}
	return Record{
		Date:     date,
		Signed:   signed,
		Account:  strings.TrimSpace(cell(row, cols.Account)),
		Payee:    strings.TrimSpace(cell(row, cols.Payee)),
		Category: strings.TrimSpace(cell(row, cols.Category)),
		Memo:     strings.TrimSpace(cell(row, cols.Memo)),
	}, true
}

// rowAmount returns the signed amount of a row. With an amount column it is
// parsed directly; otherwise a positive inflow wins over a positive outflow.
func rowAmount(row []string, cols Columns) (float64, bool) {
	if cols.Amount >= 0 {
		v, ok := ParseAmount(cell(row, cols.Amount))
		if !ok || v == 0 {
			return 0, false
		}
		return v, true
	}
	if v, ok := ParseAmount(cell(row, cols.Inflow)); ok && v > 0 {
		return v, true
	}
	if v, ok := ParseAmount(cell(row, cols.Outflow)); ok && v > 0 {
		return -v, true
	}
	return 0, false
}

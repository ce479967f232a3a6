// Package register derives the ledger view: seed rows merged with the live
// transactions, sorted, filtered, with running balances per account.
package register

import (
	"strconv"
	"strings"

	"homefinances/internal/core"
)

const (
	// All is the filter value matching every account or type.
	All = "all"

	DefaultAccount = "Checking"
	DefaultPayee   = "Manual entry"

	Placeholder = "No transactions yet. Add one to get started."
)

type (
	Mode   string
	Source string
)

const (
	Display Mode = "display"
	Editing Mode = "editing"

	SourceSeed   Source = "seed"
	SourceManual Source = "manual"
)

// SeedRow is a read-only row that does not come from the transaction list.
// Amount is signed.
type SeedRow struct {
	Date     string
	Account  string
	Payee    string
	Category string
	Memo     string
	Type     core.TxType
	Amount   float64
	// Search overrides the text matched by the search filter.
	Search string
}

// Row is one line of the register view model.
type Row struct {
	Key           string      `json:"key"`
	Source        Source      `json:"source"`
	TransactionID string      `json:"transactionId,omitempty"`
	Date          string      `json:"date"`
	Account       string      `json:"account"`
	Payee         string      `json:"payee"`
	Category      string      `json:"category"`
	Memo          string      `json:"memo"`
	Type          core.TxType `json:"type"`
	Amount        float64     `json:"amount"` // signed
	Order         float64     `json:"order"`
	Search        string      `json:"-"`
	Mode          Mode        `json:"mode"`
	Draft         *Draft      `json:"draft,omitempty"`
	Visible       bool        `json:"visible"`
	Balance       float64     `json:"balance"`
}

// Outflow is the magnitude shown in the outflow column, 0 for inflows.
func (r Row) Outflow() float64 {
	if r.Amount < 0 {
		return -r.Amount
	}
	return 0
}

// Inflow is the magnitude shown in the inflow column, 0 for outflows.
func (r Row) Inflow() float64 {
	if r.Amount >= 0 {
		return r.Amount
	}
	return 0
}

// CategoryLabel is the category cell text.
func (r Row) CategoryLabel() string {
	if r.Category == "" {
		return core.UncategorizedLabel
	}
	return r.Category
}

func seedRow(index int, s SeedRow) Row {
	search := s.Search
	if search == "" {
		search = strings.Join([]string{s.Date, s.Account, s.Payee, s.Category, s.Memo}, " ")
	}
	return Row{
		Key:      "seed-" + strconv.Itoa(index),
		Source:   SourceSeed,
		Date:     s.Date,
		Account:  s.Account,
		Payee:    s.Payee,
		Category: s.Category,
		Memo:     s.Memo,
		Type:     s.Type,
		Amount:   s.Amount,
		Order:    float64(index),
		Search:   search,
		Mode:     Display,
	}
}

func manualRow(tx core.Transaction) Row {
	account := tx.Account
	if account == "" {
		account = DefaultAccount
	}
	payee := tx.Payee
	if payee == "" {
		payee = DefaultPayee
	}
	return Row{
		Key:           tx.ID,
		Source:        SourceManual,
		TransactionID: tx.ID,
		Date:          tx.Date,
		Account:       account,
		Payee:         payee,
		Category:      tx.Category,
		Memo:          tx.Memo,
		Type:          tx.Type,
		Amount:        tx.Signed(),
		Order:         orderKey(tx),
		Search:        strings.Join([]string{payee, tx.Category, tx.Memo, account, string(tx.Type)}, " "),
		Mode:          Display,
	}
}

// orderKey is createdAt, or the numeric prefix of a legacy "<millis>-<rand>"
// id, or 0.
func orderKey(tx core.Transaction) float64 {
	if tx.CreatedAt != 0 {
		return float64(tx.CreatedAt)
	}
	prefix, _, _ := strings.Cut(tx.ID, "-")
	v, err := strconv.ParseFloat(prefix, 64)
	if err != nil || !core.IsFinite(v) {
		return 0
	}
	return v
}

package register

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"homefinances/internal/core"
)

// ErrNotEditing rejects a save for a row that is not in editing mode.
var ErrNotEditing = errors.New("That row is not being edited.")

// Draft holds the inline form fields of a row being edited.
type Draft struct {
	Date     string `json:"date"`
	Account  string `json:"account"`
	Payee    string `json:"payee"`
	Category string `json:"category"`
	Memo     string `json:"memo"`
	Outflow  string `json:"outflow"`
	Inflow   string `json:"inflow"`
}

// direction resolves the outflow/inflow pair. Exactly one side must hold a
// finite amount above zero.
func (d Draft) direction() (core.TxType, float64, error) {
	hasOutflow := core.IsPositiveAmount(d.Outflow)
	hasInflow := core.IsPositiveAmount(d.Inflow)
	if hasOutflow == hasInflow {
		return "", 0, core.ErrAmountDirection
	}
	if hasOutflow {
		v, _ := core.ParseFormAmount(d.Outflow)
		return core.Outflow, v, nil
	}
	v, _ := core.ParseFormAmount(d.Inflow)
	return core.Inflow, v, nil
}

func draftFor(tx core.Transaction) *Draft {
	account := tx.Account
	if account == "" {
		account = DefaultAccount
	}
	d := &Draft{
		Date:     tx.Date,
		Account:  account,
		Payee:    tx.Payee,
		Category: tx.Category,
		Memo:     tx.Memo,
	}
	amount := strconv.FormatFloat(tx.Amount, 'f', -1, 64)
	if tx.Type == core.Outflow {
		d.Outflow = amount
	} else {
		d.Inflow = amount
	}
	return d
}

// Edit puts the row of transaction id into editing for s, prefilled from
// txs. Editing an already editing row keeps its draft.
func (e *Engine) Edit(s *Session, id string, txs []core.Transaction) (View, error) {
	if _, ok := e.find(id); !ok {
		return View{}, fmt.Errorf("edit %s: %w", id, core.ErrTransactionNotFound)
	}
	if s.Editing(id) {
		return e.apply(s), nil
	}
	tx, ok := lookup(txs, id)
	if !ok {
		return View{}, fmt.Errorf("edit %s: %w", id, core.ErrTransactionNotFound)
	}
	s.drafts[id] = draftFor(tx)
	return e.apply(s), nil
}

// Cancel discards the draft s holds for row id.
func (e *Engine) Cancel(s *Session, id string) View {
	delete(s.drafts, id)
	return e.apply(s)
}

// Save validates d and returns txs with transaction id replaced. On a
// validation error the row stays in editing mode for s holding d. The
// caller commits the returned list and renders again.
func (e *Engine) Save(s *Session, id string, d Draft, txs []core.Transaction) ([]core.Transaction, error) {
	if _, ok := e.find(id); !ok || !s.Editing(id) {
		return nil, fmt.Errorf("save %s: %w", id, ErrNotEditing)
	}
	s.drafts[id] = &d

	txType, amount, err := d.direction()
	if err != nil {
		return nil, err
	}
	date := strings.TrimSpace(d.Date)
	if !core.IsISODate(date) {
		return nil, core.ErrInvalidDate
	}

	next := make([]core.Transaction, len(txs))
	found := false
	for j, tx := range txs {
		if tx.ID == id {
			tx.Date = date
			tx.Account = d.Account
			tx.Payee = strings.TrimSpace(d.Payee)
			tx.Category = strings.TrimSpace(d.Category)
			tx.Memo = strings.TrimSpace(d.Memo)
			tx.Type = txType
			tx.Amount = amount
			found = true
		}
		next[j] = tx
	}
	if !found {
		return nil, fmt.Errorf("save %s: %w", id, core.ErrTransactionNotFound)
	}
	delete(s.drafts, id)
	return next, nil
}

// HandleKey maps keyboard input on a row s is editing: Escape cancels,
// Enter saves. Other keys and rows not being edited are ignored and return
// txs unchanged with a nil error.
func (e *Engine) HandleKey(s *Session, id, key string, d Draft, txs []core.Transaction) ([]core.Transaction, bool, error) {
	if !s.Editing(id) {
		return txs, false, nil
	}
	switch key {
	case "Escape":
		e.Cancel(s, id)
		return txs, false, nil
	case "Enter":
		next, err := e.Save(s, id, d, txs)
		if err != nil {
			return txs, false, err
		}
		return next, true, nil
	}
	return txs, false, nil
}

// Remove returns txs without transaction id.
func Remove(id string, txs []core.Transaction) []core.Transaction {
	out := make([]core.Transaction, 0, len(txs))
	for _, tx := range txs {
		if tx.ID != id {
			out = append(out, tx)
		}
	}
	return out
}

func lookup(txs []core.Transaction, id string) (core.Transaction, bool) {
	for _, tx := range txs {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

// AddEntry is the single-row add form.
type AddEntry struct {
	Date     string `json:"date"`
	Account  string `json:"account"`
	Payee    string `json:"payee"`
	Category string `json:"category"`
	Memo     string `json:"memo"`
	Outflow  string `json:"outflow"`
	Inflow   string `json:"inflow"`
}

// Build validates the entry and creates the transaction. The date is
// required and exactly one of outflow/inflow must be positive.
func (a AddEntry) Build(id string, createdAt int64) (core.Transaction, error) {
	date := strings.TrimSpace(a.Date)
	if date == "" || !core.IsISODate(date) {
		return core.Transaction{}, core.ErrInvalidDate
	}
	txType, amount, err := Draft{Outflow: a.Outflow, Inflow: a.Inflow}.direction()
	if err != nil {
		return core.Transaction{}, err
	}
	account := strings.TrimSpace(a.Account)
	if account == "" {
		account = DefaultAccount
	}
	payee := strings.TrimSpace(a.Payee)
	if payee == "" {
		payee = DefaultPayee
	}
	return core.Transaction{
		ID:        id,
		CreatedAt: createdAt,
		Date:      date,
		Account:   account,
		Payee:     payee,
		Category:  strings.TrimSpace(a.Category),
		Memo:      strings.TrimSpace(a.Memo),
		Type:      txType,
		Amount:    amount,
	}, nil
}

package state

import (
	"fmt"
	"strings"

	"homefinances/internal/core"
)

// Opening balance transaction fields.
const (
	OpeningPayee    = "Opening balance"
	OpeningCategory = "Starting balance"
	OpeningMemo     = "Account setup"
)

// AccountInput is the account form. OpeningBalance and OpeningDate are
// only used when adding.
type AccountInput struct {
	Name           string `json:"name"`
	Group          string `json:"group"`
	Type           string `json:"type"`
	Institution    string `json:"institution"`
	OpeningBalance string `json:"openingBalance"`
	OpeningDate    string `json:"openingDate"`
}

// Account finds an account by id.
func (s State) Account(id string) (core.Account, bool) {
	for _, a := range s.Accounts {
		if a.ID == id {
			return a, true
		}
	}
	return core.Account{}, false
}

// nameTaken reports whether another account (id != except) already uses name.
func (s State) nameTaken(name, except string) bool {
	for _, a := range s.Accounts {
		if a.ID != except && core.SameName(a.Name, name) {
			return true
		}
	}
	return false
}

// AddAccount appends an account. A non-zero opening balance also prepends
// an opening transaction dated OpeningDate or today.
func (s State) AddAccount(in AccountInput, env Env) (State, core.Account, Changes, error) {
	account := core.Account{
		Name:        strings.TrimSpace(in.Name),
		Group:       strings.TrimSpace(in.Group),
		Type:        strings.TrimSpace(in.Type),
		Institution: strings.TrimSpace(in.Institution),
	}
	if err := account.Validate(); err != nil {
		return s, core.Account{}, 0, err
	}
	if s.nameTaken(account.Name, "") {
		return s, core.Account{}, 0, core.ErrDuplicateAccount
	}
	account.Group = account.GroupOrDefault()
	account.ID = env.id()

	next := s.Clone()
	next.Accounts = append(next.Accounts, account)
	changes := AccountsChanged

	if opening, ok := core.ParseFormAmount(in.OpeningBalance); ok && opening != 0 {
		now := env.now()
		date := strings.TrimSpace(in.OpeningDate)
		if date == "" {
			date = core.Today(now)
		}
		if !core.IsISODate(date) {
			return s, core.Account{}, 0, core.ErrInvalidDate
		}
		amount := opening
		if amount < 0 {
			amount = -amount
		}
		tx := core.Transaction{
			ID:        env.id(),
			CreatedAt: core.Millis(now),
			Date:      date,
			Account:   account.Name,
			Payee:     OpeningPayee,
			Category:  OpeningCategory,
			Memo:      OpeningMemo,
			Type:      core.TypeForSign(opening),
			Amount:    amount,
		}
		var c Changes
		next, c = next.PrependTransactions([]core.Transaction{tx})
		changes |= c
	}
	return next, account, changes, nil
}

// UpdateAccount edits account id. Blank group and type keep their current
// values. A rename is rejected when another account already has the name
// (case-insensitively); otherwise every transaction pointing at the old
// name follows the rename.
func (s State) UpdateAccount(id string, in AccountInput) (State, core.Account, Changes, error) {
	existing, ok := s.Account(id)
	if !ok {
		return s, core.Account{}, 0, fmt.Errorf("update account %s: %w", id, core.ErrAccountNotFound)
	}
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return s, core.Account{}, 0, core.ErrEmptyName
	}
	if s.nameTaken(name, id) {
		return s, core.Account{}, 0, core.ErrDuplicateAccount
	}

	updated := existing
	updated.Name = name
	updated.Group = firstNonEmpty(strings.TrimSpace(in.Group), existing.Group, core.DefaultAccountGroup)
	updated.Type = firstNonEmpty(strings.TrimSpace(in.Type), existing.Type)
	updated.Institution = strings.TrimSpace(in.Institution)

	next := s.Clone()
	for i := range next.Accounts {
		if next.Accounts[i].ID == id {
			next.Accounts[i] = updated
		}
	}
	changes := AccountsChanged

	if existing.Name != updated.Name {
		for i := range next.Transactions {
			if next.Transactions[i].Account == existing.Name {
				next.Transactions[i].Account = updated.Name
			}
		}
		changes |= TransactionsChanged
	}
	return next, updated, changes, nil
}

// RemoveAccount drops account id together with its transactions.
func (s State) RemoveAccount(id string) (State, Changes, error) {
	existing, ok := s.Account(id)
	if !ok {
		return s, 0, fmt.Errorf("remove account %s: %w", id, core.ErrAccountNotFound)
	}
	next := State{
		Accounts:     make([]core.Account, 0, len(s.Accounts)),
		Transactions: make([]core.Transaction, 0, len(s.Transactions)),
		Reports:      append([]core.Report(nil), s.Reports...),
	}
	for _, a := range s.Accounts {
		if a.ID != id {
			next.Accounts = append(next.Accounts, a)
		}
	}
	for _, tx := range s.Transactions {
		if tx.Account != existing.Name {
			next.Transactions = append(next.Transactions, tx)
		}
	}
	return next, AccountsChanged | TransactionsChanged, nil
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}

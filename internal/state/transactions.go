package state

import (
	"fmt"
	"strings"

	"homefinances/internal/core"
)

// TransactionInput is the quick-add transaction form.
type TransactionInput struct {
	Date     string `json:"date"`
	Account  string `json:"account"`
	Payee    string `json:"payee"`
	Category string `json:"category"`
	Memo     string `json:"memo"`
	Type     string `json:"type"`
	Amount   string `json:"amount"`
}

// AddTransaction prepends a transaction built from in. It requires at least
// one account and a finite amount above zero.
func (s State) AddTransaction(in TransactionInput, env Env) (State, core.Transaction, Changes, error) {
	if len(s.Accounts) == 0 {
		return s, core.Transaction{}, 0, core.ErrNoAccounts
	}
	amount, ok := core.ParseFormAmount(in.Amount)
	if !ok || amount <= 0 {
		return s, core.Transaction{}, 0, core.ErrInvalidAmount
	}
	txType := core.TxType(strings.TrimSpace(in.Type))
	if txType == "" {
		txType = core.Outflow
	}
	if !txType.IsValid() {
		return s, core.Transaction{}, 0, core.ErrInvalidType
	}
	now := env.now()
	date := strings.TrimSpace(in.Date)
	if date == "" {
		date = core.Today(now)
	}
	if !core.IsISODate(date) {
		return s, core.Transaction{}, 0, core.ErrInvalidDate
	}
	account := strings.TrimSpace(in.Account)
	if account == "" {
		account = "Checking"
	}
	tx := core.Transaction{
		ID:        env.id(),
		CreatedAt: core.Millis(now),
		Date:      date,
		Account:   account,
		Payee:     strings.TrimSpace(in.Payee),
		Category:  strings.TrimSpace(in.Category),
		Memo:      strings.TrimSpace(in.Memo),
		Type:      txType,
		Amount:    amount,
	}
	next, changes := s.PrependTransactions([]core.Transaction{tx})
	return next, tx, changes, nil
}

// PrependTransactions puts txs, in order, ahead of the existing list.
func (s State) PrependTransactions(txs []core.Transaction) (State, Changes) {
	if len(txs) == 0 {
		return s, 0
	}
	next := s.Clone()
	next.Transactions = append(append(make([]core.Transaction, 0, len(txs)+len(s.Transactions)), txs...), s.Transactions...)
	return next, TransactionsChanged
}

// ReplaceTransactions swaps in a full replacement list.
func (s State) ReplaceTransactions(txs []core.Transaction) (State, Changes) {
	next := s.Clone()
	next.Transactions = append([]core.Transaction(nil), txs...)
	if next.Transactions == nil {
		next.Transactions = []core.Transaction{}
	}
	return next, TransactionsChanged
}

// UpdateTransaction replaces the transaction with the same id.
func (s State) UpdateTransaction(tx core.Transaction) (State, Changes, error) {
	if err := tx.Validate(); err != nil {
		return s, 0, err
	}
	next := s.Clone()
	for i := range next.Transactions {
		if next.Transactions[i].ID == tx.ID {
			next.Transactions[i] = tx
			return next, TransactionsChanged, nil
		}
	}
	return s, 0, fmt.Errorf("update %s: %w", tx.ID, core.ErrTransactionNotFound)
}

// RemoveTransaction drops the transaction with id.
func (s State) RemoveTransaction(id string) (State, Changes, error) {
	next := s.Clone()
	next.Transactions = next.Transactions[:0]
	found := false
	for _, tx := range s.Transactions {
		if tx.ID == id {
			found = true
			continue
		}
		next.Transactions = append(next.Transactions, tx)
	}
	if !found {
		return s, 0, fmt.Errorf("remove %s: %w", id, core.ErrTransactionNotFound)
	}
	return next, TransactionsChanged, nil
}

// Transaction finds a transaction by id.
func (s State) Transaction(id string) (core.Transaction, bool) {
	for _, tx := range s.Transactions {
		if tx.ID == id {
			return tx, true
		}
	}
	return core.Transaction{}, false
}

// Package state holds the application snapshot. Operations never mutate
// their input: each returns a new State plus the slots it changed.
package state

import (
	"context"
	"fmt"
	"slices"
	"time"

	"homefinances/internal/core"
	"homefinances/internal/storage"
)

// State is the full household data set.
type State struct {
	Transactions []core.Transaction `json:"transactions"`
	Accounts     []core.Account     `json:"accounts"`
	Reports      []core.Report      `json:"reports"`
}

// Changes is a set of modified slots.
type Changes uint8

const (
	TransactionsChanged Changes = 1 << iota
	AccountsChanged
	ReportsChanged
)

// Keys returns the storage keys of the changed slots.
func (c Changes) Keys() []string {
	var keys []string
	if c&TransactionsChanged != 0 {
		keys = append(keys, storage.TransactionsKey)
	}
	if c&AccountsChanged != 0 {
		keys = append(keys, storage.AccountsKey)
	}
	if c&ReportsChanged != 0 {
		keys = append(keys, storage.ReportsKey)
	}
	return keys
}

// ChangesFor maps a storage key to its change flag.
func ChangesFor(key string) Changes {
	switch key {
	case storage.TransactionsKey:
		return TransactionsChanged
	case storage.AccountsKey:
		return AccountsChanged
	case storage.ReportsKey:
		return ReportsChanged
	}
	return 0
}

// Env supplies ids and time to operations that create records.
type Env struct {
	NewID core.IDFunc
	Now   core.Clock
}

func (e Env) id() string {
	if e.NewID == nil {
		return core.NewID()
	}
	return e.NewID()
}

func (e Env) now() time.Time {
	if e.Now == nil {
		return time.Now()
	}
	return e.Now()
}

// Clone returns a deep copy of the three lists.
func (s State) Clone() State {
	return State{
		Transactions: slices.Clone(s.Transactions),
		Accounts:     slices.Clone(s.Accounts),
		Reports:      slices.Clone(s.Reports),
	}
}

// AccountNames lists account names in list order.
func (s State) AccountNames() []string {
	names := make([]string, len(s.Accounts))
	for i, a := range s.Accounts {
		names[i] = a.Name
	}
	return names
}

// Validate checks a state that did not come from the operations, such as a
// restored archive, and returns the first problem found. Account names must
// be unique ignoring case and each month may hold one report.
func (s State) Validate() error {
	for i, a := range s.Accounts {
		if err := a.Validate(); err != nil {
			return fmt.Errorf("account %d: %w", i+1, err)
		}
		for _, earlier := range s.Accounts[:i] {
			if core.SameName(a.Name, earlier.Name) {
				return fmt.Errorf("account %q: %w", a.Name, core.ErrDuplicateAccount)
			}
		}
	}
	months := make(map[string]bool, len(s.Reports))
	for _, r := range s.Reports {
		if !core.IsValidMonth(r.Month) {
			return fmt.Errorf("report %q: %w", r.Month, core.ErrInvalidMonth)
		}
		if months[r.Month] {
			return fmt.Errorf("report %s: %w", r.Month, core.ErrDuplicateReport)
		}
		months[r.Month] = true
	}
	for _, tx := range s.Transactions {
		if err := tx.Validate(); err != nil {
			return fmt.Errorf("transaction %s: %w", tx.ID, err)
		}
	}
	return nil
}

// Load reads all three slots. Accounts are normalized; when normalization
// changed anything the returned Changes asks the caller to save them back.
func Load(ctx context.Context, store storage.SlotStore, env Env) (State, Changes) {
	accounts, fixed := NormalizeAccounts(storage.ReadSlot[core.Account](ctx, store, storage.AccountsKey), env)
	s := State{
		Transactions: storage.ReadSlot[core.Transaction](ctx, store, storage.TransactionsKey),
		Accounts:     accounts,
		Reports:      storage.ReadSlot[core.Report](ctx, store, storage.ReportsKey),
	}
	if fixed {
		return s, AccountsChanged
	}
	return s, 0
}

// Reload replaces the slot named by key with the store's current value.
func (s State) Reload(ctx context.Context, store storage.SlotStore, key string, env Env) (State, Changes) {
	next := s.Clone()
	switch key {
	case storage.TransactionsKey:
		next.Transactions = storage.ReadSlot[core.Transaction](ctx, store, key)
	case storage.AccountsKey:
		accounts, fixed := NormalizeAccounts(storage.ReadSlot[core.Account](ctx, store, key), env)
		next.Accounts = accounts
		if fixed {
			return next, AccountsChanged
		}
	case storage.ReportsKey:
		next.Reports = storage.ReadSlot[core.Report](ctx, store, key)
	}
	return next, 0
}

// NormalizeAccounts assigns fresh ids to accounts whose id is missing or
// repeats an earlier one. The boolean reports whether anything changed.
func NormalizeAccounts(accounts []core.Account, env Env) ([]core.Account, bool) {
	seen := make(map[string]struct{}, len(accounts))
	out := make([]core.Account, len(accounts))
	changed := false
	for i, a := range accounts {
		if _, dup := seen[a.ID]; a.ID == "" || dup {
			a.ID = env.id()
			changed = true
		}
		seen[a.ID] = struct{}{}
		out[i] = a
	}
	return out, changed
}

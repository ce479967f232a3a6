package services

import (
	"context"
	"fmt"

	"homefinances/internal/core"
	"homefinances/internal/log"
	"homefinances/internal/register"
	"homefinances/internal/state"
)

// session returns the register session of view, creating it on first use
// and extending its lifetime. An empty view id gets a throwaway session with
// default filters. Callers hold mu.
func (s *LedgerService) session(view string) *register.Session {
	if view == "" {
		return register.NewSession()
	}
	sess, ok := s.views.Get(view)
	if !ok {
		sess = register.NewSession()
	}
	s.views.Set(view, sess)
	return sess
}

// OpenView starts a register session for a page load and returns its id.
// account pre-filters the register only when it names an existing account.
func (s *LedgerService) OpenView(account string) (string, register.View) {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.newID()
	sess := s.session(id)
	if account != "" {
		s.register.SetAccountFilter(sess, account)
	}
	return id, s.register.View(sess)
}

// Register applies f to the session of view and returns its register. An
// account filter that names no existing account falls back to all
// accounts, and so does an unknown type. Other views are unaffected.
func (s *LedgerService) Register(view string, f register.Filters) register.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register.SetFilters(s.session(view), f)
}

// RegisterView returns the register of view with its current filters.
func (s *LedgerService) RegisterView(view string) register.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register.View(s.session(view))
}

// AddEntry prepends a register entry.
func (s *LedgerService) AddEntry(ctx context.Context, entry register.AddEntry) (core.Transaction, error) {
	s.lockFresh(ctx)
	defer s.mu.Unlock()
	tx, err := entry.Build(s.newID(), core.Millis(s.now()))
	if err != nil {
		return core.Transaction{}, err
	}
	next, changes := s.state.PrependTransactions([]core.Transaction{tx})
	s.commit(ctx, next, changes, log.OpCreate)
	return tx, nil
}

// EditRow puts the row of transaction id into editing mode for view.
func (s *LedgerService) EditRow(view, id string) (register.View, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register.Edit(s.session(view), id, s.state.Transactions)
}

func (s *LedgerService) CancelRow(view, id string) register.View {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.register.Cancel(s.session(view), id)
}

// SaveRow commits the draft of a row view is editing. On a validation
// error the row stays in editing mode and nothing is written.
func (s *LedgerService) SaveRow(ctx context.Context, view, id string, d register.Draft) (register.View, error) {
	s.lockFresh(ctx)
	defer s.mu.Unlock()
	sess := s.session(view)
	txs, err := s.register.Save(sess, id, d, s.state.Transactions)
	if err == nil {
		err = s.commitRow(ctx, id, txs)
	}
	return s.register.View(sess), err
}

// KeyRow routes a key press on a row view is editing. The boolean reports
// whether the row was saved.
func (s *LedgerService) KeyRow(ctx context.Context, view, id, key string, d register.Draft) (register.View, bool, error) {
	s.lockFresh(ctx)
	defer s.mu.Unlock()
	sess := s.session(view)
	txs, saved, err := s.register.HandleKey(sess, id, key, d, s.state.Transactions)
	if err != nil || !saved {
		return s.register.View(sess), false, err
	}
	if err := s.commitRow(ctx, id, txs); err != nil {
		return s.register.View(sess), false, err
	}
	return s.register.View(sess), true, nil
}

// commitRow writes back transaction id as edited in txs.
func (s *LedgerService) commitRow(ctx context.Context, id string, txs []core.Transaction) error {
	edited, ok := state.State{Transactions: txs}.Transaction(id)
	if !ok {
		return fmt.Errorf("save row %s: %w", id, core.ErrTransactionNotFound)
	}
	next, changes, err := s.state.UpdateTransaction(edited)
	if err != nil {
		return err
	}
	s.commit(ctx, next, changes, log.OpUpdate)
	return nil
}

// DeleteRow removes the transaction behind a register row and returns the
// register of view.
func (s *LedgerService) DeleteRow(ctx context.Context, view, id string) (register.View, error) {
	s.lockFresh(ctx)
	defer s.mu.Unlock()
	sess := s.session(view)
	txs := register.Remove(id, s.state.Transactions)
	if len(txs) == len(s.state.Transactions) {
		return s.register.View(sess), fmt.Errorf("delete row %s: %w", id, core.ErrTransactionNotFound)
	}
	next, changes := s.state.ReplaceTransactions(txs)
	s.commit(ctx, next, changes, log.OpDelete)
	s.logger.DebugContext(ctx, "Register row deleted", log.FieldTxID, id)
	return s.register.View(sess), nil
}

func (s *LedgerService) newID() string {
	if s.env.NewID != nil {
		return s.env.NewID()
	}
	return core.NewID()
}

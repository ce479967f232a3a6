package services

import (
	"context"

	"homefinances/internal/core"
	"homefinances/internal/log"
	"homefinances/internal/state"
)

// AddTransaction records a quick-add transaction.
func (s *LedgerService) AddTransaction(ctx context.Context, in state.TransactionInput) (core.Transaction, error) {
	s.lockFresh(ctx)
	defer s.mu.Unlock()
	next, tx, changes, err := s.state.AddTransaction(in, s.env)
	if err != nil {
		return core.Transaction{}, err
	}
	s.commit(ctx, next, changes, log.OpCreate)
	return tx, nil
}

func (s *LedgerService) RemoveTransaction(ctx context.Context, id string) error {
	s.lockFresh(ctx)
	defer s.mu.Unlock()
	next, changes, err := s.state.RemoveTransaction(id)
	if err != nil {
		return err
	}
	s.commit(ctx, next, changes, log.OpDelete)
	s.logger.DebugContext(ctx, "Transaction removed", log.FieldTxID, id)
	return nil
}

// Accounts returns the accounts in list order.
func (s *LedgerService) Accounts() []core.Account {
	return s.Snapshot().Accounts
}

func (s *LedgerService) AddAccount(ctx context.Context, in state.AccountInput) (core.Account, error) {
	s.lockFresh(ctx)
	defer s.mu.Unlock()
	next, account, changes, err := s.state.AddAccount(in, s.env)
	if err != nil {
		return core.Account{}, err
	}
	s.commit(ctx, next, changes, log.OpCreate)
	return account, nil
}

// UpdateAccount edits an account; a rename is carried over to its
// transactions.
func (s *LedgerService) UpdateAccount(ctx context.Context, id string, in state.AccountInput) (core.Account, error) {
	s.lockFresh(ctx)
	defer s.mu.Unlock()
	before, _ := s.state.Account(id)
	next, account, changes, err := s.state.UpdateAccount(id, in)
	if err != nil {
		return core.Account{}, err
	}
	s.commit(ctx, next, changes, log.OpUpdate)
	if before.Name != account.Name {
		s.logger.InfoContext(ctx, "Account renamed", log.FieldAccount, account.Name, "previous", before.Name)
	}
	return account, nil
}

// RenameAccount renames the account currently called from.
func (s *LedgerService) RenameAccount(ctx context.Context, from, to string) (core.Account, error) {
	s.lockFresh(ctx)
	var found *core.Account
	for _, a := range s.state.Accounts {
		if core.SameName(a.Name, from) {
			found = &a
			break
		}
	}
	s.mu.Unlock()
	if found == nil {
		return core.Account{}, core.ErrAccountNotFound
	}
	return s.UpdateAccount(ctx, found.ID, state.AccountInput{
		Name:        to,
		Group:       found.Group,
		Type:        found.Type,
		Institution: found.Institution,
	})
}

// RemoveAccount deletes the account and its transactions.
func (s *LedgerService) RemoveAccount(ctx context.Context, id string) error {
	s.lockFresh(ctx)
	defer s.mu.Unlock()
	next, changes, err := s.state.RemoveAccount(id)
	if err != nil {
		return err
	}
	s.commit(ctx, next, changes, log.OpDelete)
	return nil
}

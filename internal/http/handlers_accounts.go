package http

import (
	"net/http"

	"homefinances/internal/log"
	"homefinances/internal/services"
	"homefinances/internal/state"
)

func (s *Server) handleListAccounts(w http.ResponseWriter, r *http.Request) {
	s.respond(w, NewResponse().Data(s.ledger.Accounts()))
}

func accountInput(p *RequestBodyParser) state.AccountInput {
	return state.AccountInput{
		Name:           p.Get("name"),
		Group:          p.Get("group"),
		Type:           p.Get("type"),
		Institution:    p.Get("institution"),
		OpeningBalance: p.Get("openingBalance"),
		OpeningDate:    p.Get("openingDate"),
	}
}

func (s *Server) handleCreateAccount(w http.ResponseWriter, r *http.Request) {
	p := parseBody(w, r)
	if p == nil {
		return
	}
	account, err := s.ledger.AddAccount(r.Context(), accountInput(p))
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	s.respond(w, NewResponse().Code(http.StatusCreated).
		Message("Account added.", services.ToneSuccess).
		Data(account))
}

// handleUpdateAccount edits an account; a new name is carried over to the
// account's transactions.
func (s *Server) handleUpdateAccount(w http.ResponseWriter, r *http.Request) {
	p := parseBody(w, r)
	if p == nil {
		return
	}
	account, err := s.ledger.UpdateAccount(r.Context(), r.PathValue("id"), accountInput(p))
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	s.respond(w, NewResponse().Message("Account updated.", services.ToneSuccess).Data(account))
}

func (s *Server) handleDeleteAccount(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.RemoveAccount(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	s.respond(w, NewResponse().Message("Account removed.", services.ToneSuccess))
}

func (s *Server) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	p := parseBody(w, r)
	if p == nil {
		return
	}
	tx, err := s.ledger.AddTransaction(r.Context(), state.TransactionInput{
		Date:     p.Get("date"),
		Account:  p.Get("account"),
		Payee:    p.Get("payee"),
		Category: p.Get("category"),
		Memo:     p.Get("memo"),
		Type:     p.Get("type"),
		Amount:   p.Get("amount"),
	})
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	s.respond(w, NewResponse().Code(http.StatusCreated).
		Message("Transaction added.", services.ToneSuccess).
		Data(tx))
}

func (s *Server) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if err := s.ledger.RemoveTransaction(r.Context(), r.PathValue("id")); err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	s.respond(w, NewResponse().Message("Transaction deleted.", services.ToneSuccess))
}

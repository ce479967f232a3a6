package http

import (
	"net/http"

	"homefinances/internal/log"
	"homefinances/internal/register"
	"homefinances/internal/services"
)

// handleRegister applies the query filters to the caller's view only.
func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	view := s.ledger.Register(viewID(r), filtersFromQuery(r.URL.Query()))
	s.respond(w, NewResponse().Data(view))
}

func (s *Server) handleAddEntry(w http.ResponseWriter, r *http.Request) {
	p := parseBody(w, r)
	if p == nil {
		return
	}
	d := p.draft()
	tx, err := s.ledger.AddEntry(r.Context(), register.AddEntry{
		Date:     d.Date,
		Account:  d.Account,
		Payee:    d.Payee,
		Category: d.Category,
		Memo:     d.Memo,
		Outflow:  d.Outflow,
		Inflow:   d.Inflow,
	})
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	s.respond(w, NewResponse().Code(http.StatusCreated).
		Message("Transaction added.", services.ToneSuccess).
		Data(map[string]any{"transaction": tx, "register": s.ledger.RegisterView(viewID(r))}))
}

func (s *Server) handleEditRow(w http.ResponseWriter, r *http.Request) {
	view, err := s.ledger.EditRow(viewID(r), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, log.OpUpdate, err)
		return
	}
	s.respond(w, NewResponse().Data(view))
}

func (s *Server) handleCancelRow(w http.ResponseWriter, r *http.Request) {
	s.respond(w, NewResponse().Data(s.ledger.CancelRow(viewID(r), r.PathValue("id"))))
}

// handleSaveRow commits an inline edit. A validation error keeps the row
// in editing mode and is returned with the view.
func (s *Server) handleSaveRow(w http.ResponseWriter, r *http.Request) {
	p := parseBody(w, r)
	if p == nil {
		return
	}
	view, err := s.ledger.SaveRow(r.Context(), viewID(r), r.PathValue("id"), p.draft())
	if err != nil {
		s.respond(w, ErrorFor(err).Data(view))
		return
	}
	s.respond(w, NewResponse().Message("Transaction updated.", services.ToneSuccess).Data(view))
}

// handleKeyRow routes a key press from an editing row: Enter saves and
// Escape cancels.
func (s *Server) handleKeyRow(w http.ResponseWriter, r *http.Request) {
	p := parseBody(w, r)
	if p == nil {
		return
	}
	view, saved, err := s.ledger.KeyRow(r.Context(), viewID(r), r.PathValue("id"), p.Get("key"), p.draft())
	if err != nil {
		s.respond(w, ErrorFor(err).Data(view))
		return
	}
	b := NewResponse().Data(map[string]any{"saved": saved, "register": view})
	if saved {
		b.Message("Transaction updated.", services.ToneSuccess)
	}
	s.respond(w, b)
}

func (s *Server) handleDeleteRow(w http.ResponseWriter, r *http.Request) {
	view, err := s.ledger.DeleteRow(r.Context(), viewID(r), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, log.OpDelete, err)
		return
	}
	s.respond(w, NewResponse().Message("Transaction deleted.", services.ToneSuccess).Data(view))
}

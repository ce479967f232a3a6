package http

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"homefinances/internal/core"
	"homefinances/internal/log"
	"homefinances/internal/register"
	"homefinances/internal/report"
	"homefinances/internal/services"
)

// handleHealth is the liveness check.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	NewResponse().Data(map[string]any{
		"status":    "ok",
		"timestamp": s.now().UTC().Format(time.RFC3339),
		"uptime":    s.now().Sub(s.started).Round(time.Second).String(),
		"requests":  s.tracer.Metrics(),
	}).Write(w)
}

// handleReady checks templates and the slot backend.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	checks := map[string]string{"templates": "ok", "storage": "ok"}
	ready := true

	if s.templates == nil {
		checks["templates"] = "failed: templates not loaded"
		ready = false
	}
	if s.ping != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()
		if err := s.ping(ctx); err != nil {
			checks["storage"] = fmt.Sprintf("failed: %v", err)
			ready = false
		}
	}
	if s.ledger.PersistWarning() {
		checks["storage"] = "degraded: last write failed"
	}

	b := NewResponse().Data(map[string]any{"ready": ready, "checks": checks})
	if !ready {
		b.Code(http.StatusServiceUnavailable)
	}
	b.Write(w)
}

type indexData struct {
	View      string
	Dashboard report.Dashboard
	Register  register.View
	Accounts  []core.Account
	Reports   []services.ReportCard
	Today     string
	Warning   bool
}

// handleIndex renders the page. A page load opens a new register view,
// pre-filtered by an ?account= value naming an existing account. Refreshes
// from the page send their view id and keep that view's filters.
func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if s.templates == nil {
		s.logger.ErrorContext(r.Context(), "Templates not loaded", log.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	id := viewID(r)
	var view register.View
	if id != "" {
		view = s.ledger.RegisterView(id)
	} else {
		id, view = s.ledger.OpenView(strings.TrimSpace(r.URL.Query().Get("account")))
	}

	now := s.now()
	data := indexData{
		View:      id,
		Dashboard: s.ledger.Dashboard(now),
		Register:  view,
		Accounts:  s.ledger.Accounts(),
		Reports:   s.ledger.Reports(),
		Today:     core.Today(now),
		Warning:   s.ledger.PersistWarning(),
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if s.ledger.PersistWarning() {
		w.Header().Set(HeaderPersistWarning, "true")
	}
	if err := s.templates.ExecuteTemplate(w, "index.html", data); err != nil {
		s.events.LogError(r.Context(), "Index template execution failed", err, log.ComponentTemplate, log.OpRender, nil)
	}
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	d := s.ledger.Dashboard(s.now())
	s.respond(w, NewResponse().Data(map[string]any{
		"dashboard": d,
		"labels": map[string]string{
			"net":         d.NetLabel(),
			"netTrend":    d.NetTrend(),
			"total":       d.TotalLabel(),
			"totalTrend":  d.TotalTrend(),
			"budget":      d.BudgetLabel(),
			"budgetTrend": d.BudgetTrend(),
		},
	}))
}

func (s *Server) handlePlan(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	plan := report.ParsePlan(q.Get("income"), q.Get("expenses"), q.Get("growth"), q.Get("months"))
	NewResponse().Data(map[string]any{
		"plan":       plan,
		"projection": plan.Project(),
	}).Write(w)
}

// handleEvents streams slot changes as server-sent events until the client
// goes away.
func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	rc := http.NewResponseController(w)
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	if err := rc.Flush(); err != nil {
		s.logger.WarnContext(r.Context(), "Event stream unsupported", log.FieldError, err)
		return
	}

	changes, cancel := s.ledger.Hub().Subscribe()
	defer cancel()

	keepAlive := time.NewTicker(25 * time.Second)
	defer keepAlive.Stop()

	fmt.Fprintf(w, "retry: 3000\n\n")
	_ = rc.Flush()
	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepAlive.C:
			fmt.Fprint(w, ": ping\n\n")
		case c, ok := <-changes:
			if !ok {
				return
			}
			payload, _ := json.Marshal(map[string]any{
				"key":     c.Key,
				"origin":  c.Origin,
				"version": s.ledger.Version(),
			})
			fmt.Fprintf(w, "event: change\ndata: %s\n\n", payload)
		}
		if err := rc.Flush(); err != nil {
			return
		}
	}
}

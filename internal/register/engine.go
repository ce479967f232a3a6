package register

import (
	"slices"
	"strings"

	"github.com/shopspring/decimal"

	"homefinances/internal/core"
)

// Filters are the three conjunctive register predicates. Empty Account and
// Type values behave like All.
type Filters struct {
	Account string `json:"account"`
	Type    string `json:"type"`
	Search  string `json:"search"`
}

type Totals struct {
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	Net     float64 `json:"net"`
}

// View is the rendered register.
type View struct {
	Rows           []Row    `json:"rows"`
	Placeholder    string   `json:"placeholder,omitempty"`
	Totals         Totals   `json:"totals"`
	Filters        Filters  `json:"filters"`
	AccountOptions []string `json:"accountOptions"`
}

// Empty reports whether the register has no rows at all.
func (v View) Empty() bool {
	return len(v.Rows) == 0
}

// VisibleRows returns the rows that pass the current filters.
func (v View) VisibleRows() []Row {
	out := make([]Row, 0, len(v.Rows))
	for _, r := range v.Rows {
		if r.Visible {
			out = append(out, r)
		}
	}
	return out
}

// Engine keeps the sorted register rows between renders. Filters and
// editing state belong to a Session, one per client view. It is not safe
// for concurrent use.
type Engine struct {
	seeds    []SeedRow
	accounts []string
	rows     []Row
}

func New(seeds []SeedRow) *Engine {
	return &Engine{seeds: slices.Clone(seeds)}
}

// SetAccountOptions replaces the account names offered by the account filter.
// A session whose account disappears falls back to All on its next view.
func (e *Engine) SetAccountOptions(names []string) {
	e.accounts = slices.Clone(names)
}

// AccountOptions returns the filter choices, All first.
func (e *Engine) AccountOptions() []string {
	return append([]string{All}, e.accounts...)
}

// SetAccountFilter selects name for s only when it is one of the options.
func (e *Engine) SetAccountFilter(s *Session, name string) bool {
	if !slices.Contains(e.AccountOptions(), name) {
		return false
	}
	s.filters.Account = name
	return true
}

// SetFilters replaces the three filters of s and returns its view. Empty,
// unknown account and unknown type values become All.
func (e *Engine) SetFilters(s *Session, f Filters) View {
	if f.Account == "" || !slices.Contains(e.AccountOptions(), f.Account) {
		f.Account = All
	}
	if f.Type == "" || !core.TxType(f.Type).IsValid() {
		f.Type = All
	}
	s.filters = f
	return e.apply(s)
}

// Render rebuilds every row from the seeds and txs and sorts them. The
// returned view uses the default filters.
func (e *Engine) Render(txs []core.Transaction) View {
	rows := make([]Row, 0, len(e.seeds)+len(txs))
	for i, s := range e.seeds {
		rows = append(rows, seedRow(i, s))
	}
	for _, tx := range txs {
		rows = append(rows, manualRow(tx))
	}
	slices.SortStableFunc(rows, func(a, b Row) int {
		if c := strings.Compare(a.Date, b.Date); c != 0 {
			return c
		}
		switch {
		case a.Order < b.Order:
			return -1
		case a.Order > b.Order:
			return 1
		}
		return 0
	})
	e.rows = rows
	return e.apply(nil)
}

// View applies the filters and drafts of s to the current rows. A nil
// session sees the default filters and no editing rows.
func (e *Engine) View(s *Session) View {
	return e.apply(s)
}

// apply computes visibility, running balances and totals over the sorted
// rows for one session.
func (e *Engine) apply(s *Session) View {
	f := Filters{Account: All, Type: All}
	var drafts map[string]*Draft
	if s != nil {
		if s.filters.Account != All && !slices.Contains(e.accounts, s.filters.Account) {
			s.filters.Account = All
		}
		f = s.filters
		drafts = s.drafts
	}

	search := normalize(f.Search)
	running := make(map[string]decimal.Decimal)
	inflow, outflow := decimal.Zero, decimal.Zero
	rows := slices.Clone(e.rows)
	live := make(map[string]bool, len(drafts))

	for i := range rows {
		r := &rows[i]
		if d, ok := drafts[r.TransactionID]; ok && r.Source == SourceManual {
			draft := *d
			r.Mode, r.Draft = Editing, &draft
			live[r.TransactionID] = true
		}
		r.Visible = matches(*r, f, search)
		if !r.Visible {
			continue
		}
		amount := core.Dec(r.Amount)
		if r.Amount >= 0 {
			inflow = inflow.Add(amount)
		} else {
			outflow = outflow.Add(amount.Abs())
		}
		balance := running[r.Account].Add(amount)
		running[r.Account] = balance
		r.Balance = core.Float(balance)
	}
	for id := range drafts {
		if !live[id] {
			delete(drafts, id)
		}
	}

	view := View{
		Rows: rows,
		Totals: Totals{
			Inflow:  core.Float(inflow),
			Outflow: core.Float(outflow),
			Net:     core.Float(inflow.Sub(outflow)),
		},
		Filters:        f,
		AccountOptions: e.AccountOptions(),
	}
	if len(rows) == 0 {
		view.Placeholder = Placeholder
	}
	return view
}

func matches(r Row, f Filters, search string) bool {
	if f.Account != "" && f.Account != All && r.Account != f.Account {
		return false
	}
	if f.Type != "" && f.Type != All && string(r.Type) != f.Type {
		return false
	}
	return search == "" || strings.Contains(normalize(r.Search), search)
}

func normalize(s string) string {
	return strings.TrimSpace(strings.ToLower(s))
}

func (e *Engine) find(id string) (int, bool) {
	for i, r := range e.rows {
		if r.Source == SourceManual && r.TransactionID == id {
			return i, true
		}
	}
	return -1, false
}

package report

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"homefinances/internal/core"
	"homefinances/internal/state"
)

const (
	// RecentDays is the dashboard look-back window.
	RecentDays = 30
	// TopN bounds the account and category lists.
	TopN = 3
	// NoValue is shown when a figure cannot be computed yet.
	NoValue = "--"
)

type AccountBalance struct {
	Name    string  `json:"name"`
	Balance float64 `json:"balance"`
}

type CategoryTotal struct {
	Category string  `json:"category"`
	Total    float64 `json:"total"`
}

// Dashboard is the home page summary.
type Dashboard struct {
	HasTransactions bool    `json:"hasTransactions"`
	RecentCount     int     `json:"recentCount"`
	RecentInflow    float64 `json:"recentInflow"`
	RecentOutflow   float64 `json:"recentOutflow"`
	RecentNet       float64 `json:"recentNet"`
	TotalBalance    float64 `json:"totalBalance"`
	AccountCount    int     `json:"accountCount"`
	// BudgetPercent is round(outflow/inflow*100) over the window, nil
	// without inflow.
	BudgetPercent *int             `json:"budgetPercent,omitempty"`
	Accounts      []AccountBalance `json:"accounts"`
	TopCategories []CategoryTotal  `json:"topCategories"`
}

// NetLabel is the net figure text, "--" with no transactions at all.
func (d Dashboard) NetLabel() string {
	if !d.HasTransactions {
		return NoValue
	}
	return core.FormatCurrency(d.RecentNet)
}

func (d Dashboard) NetTrend() string {
	switch {
	case !d.HasTransactions:
		return "Add transactions to see totals."
	case d.RecentCount == 0:
		return "No recent activity yet."
	}
	return "Last 30 days"
}

func (d Dashboard) TotalLabel() string {
	if d.AccountCount == 0 {
		return NoValue
	}
	return core.FormatCurrency(d.TotalBalance)
}

func (d Dashboard) TotalTrend() string {
	if d.AccountCount == 0 {
		return "Add accounts to track balances."
	}
	return itoa(d.AccountCount) + " account(s) tracked"
}

func (d Dashboard) BudgetLabel() string {
	if d.BudgetPercent == nil {
		return NoValue
	}
	return itoa(*d.BudgetPercent) + "%"
}

func (d Dashboard) BudgetTrend() string {
	if d.BudgetPercent == nil {
		return "Start categorizing transactions."
	}
	return "Outflow vs inflow (30d)"
}

// BuildDashboard summarizes s as of now. The window starts at local
// midnight RecentDays days ago.
func BuildDashboard(s state.State, now time.Time) Dashboard {
	y, m, d := now.Date()
	start := time.Date(y, m, d-RecentDays, 0, 0, 0, 0, now.Location())

	inflow, outflow := decimal.Zero, decimal.Zero
	categories := map[string]decimal.Decimal{}
	recent := 0
	balances := map[string]decimal.Decimal{}

	for _, tx := range s.Transactions {
		if tx.Account != "" {
			balances[tx.Account] = balances[tx.Account].Add(core.Dec(tx.Signed()))
		}
		date, err := time.ParseInLocation(core.ISODate, tx.Date, now.Location())
		if err != nil || date.Before(start) {
			continue
		}
		recent++
		switch tx.Type {
		case core.Inflow:
			inflow = inflow.Add(core.Dec(tx.Amount))
		case core.Outflow:
			outflow = outflow.Add(core.Dec(tx.Amount))
			key := tx.CategoryLabel()
			categories[key] = categories[key].Add(core.Dec(tx.Amount))
		}
	}

	dash := Dashboard{
		HasTransactions: len(s.Transactions) > 0,
		RecentCount:     recent,
		RecentInflow:    core.Float(inflow),
		RecentOutflow:   core.Float(outflow),
		RecentNet:       core.Float(inflow.Sub(outflow)),
		AccountCount:    len(s.Accounts),
		Accounts:        []AccountBalance{},
		TopCategories:   []CategoryTotal{},
	}

	total := decimal.Zero
	for i, a := range s.Accounts {
		total = total.Add(balances[a.Name])
		if i < TopN {
			dash.Accounts = append(dash.Accounts, AccountBalance{Name: a.Name, Balance: core.Float(balances[a.Name])})
		}
	}
	dash.TotalBalance = core.Float(total)

	if inflow.IsPositive() {
		pct := int(math.Round(core.Float(outflow.Div(inflow).Mul(decimal.NewFromInt(100)))))
		dash.BudgetPercent = &pct
	}

	for name, sum := range categories {
		dash.TopCategories = append(dash.TopCategories, CategoryTotal{Category: name, Total: core.Float(sum)})
	}
	sort.SliceStable(dash.TopCategories, func(i, j int) bool {
		a, b := dash.TopCategories[i], dash.TopCategories[j]
		if a.Total != b.Total {
			return a.Total > b.Total
		}
		return a.Category < b.Category
	})
	if len(dash.TopCategories) > TopN {
		dash.TopCategories = dash.TopCategories[:TopN]
	}
	return dash
}

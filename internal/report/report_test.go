package report

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefinances/internal/core"
	"homefinances/internal/state"
)

func transactions() []core.Transaction {
	return []core.Transaction{
		{ID: "1", Date: "2024-02-03", Account: "Checking", Category: "Food", Type: core.Outflow, Amount: 42.5},
		{ID: "2", Date: "2024-02-01", Account: "Checking", Type: core.Inflow, Amount: 100},
		{ID: "3", Date: "2024-02-15", Account: "Savings", Category: "Bills", Type: core.Outflow, Amount: 115},
		{ID: "4", Date: "2024-01-31", Account: "Checking", Type: core.Inflow, Amount: 7},
		{ID: "5", Date: "", Account: "Checking", Type: core.Inflow, Amount: 1},
	}
}

func TestSummarizeMonth(t *testing.T) {
	s := SummarizeMonth("2024-02", transactions())
	assert.Equal(t, Summary{Month: "2024-02", Inflow: 100, Outflow: 157.5, Net: -57.5, Count: 3}, s)
	assert.Equal(t, 0, SummarizeMonth("2023-12", transactions()).Count)
}

func TestMonthLabel(t *testing.T) {
	assert.Equal(t, "February 2024", MonthLabel("2024-02"))
	assert.Equal(t, "December 1999", MonthLabel("1999-12"))
	assert.Equal(t, "2024-13", MonthLabel("2024-13"))
	assert.Equal(t, "Created January 2024.", CreatedMessage("2024-01"))
}

func TestExportCSV(t *testing.T) {
	reports := []core.Report{
		{ID: "r1", Month: "2024-02", Status: "Draft", Focus: `Groceries, "extras"`},
		{ID: "r2", Month: "2024-01"},
	}
	out, err := ExportCSV(reports, transactions())
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Month,Period,Status,Focus,Inflow,Outflow,Net,Transactions", lines[0])
	assert.Equal(t, `February 2024,2024-02,Draft,"Groceries, ""extras""",100.00,157.50,-57.50,3`, lines[1])
	assert.Equal(t, "January 2024,2024-01,Draft,Household summary,7.00,0.00,7.00,1", lines[2])
	assert.False(t, strings.HasSuffix(out, "\n"))

	_, err = ExportCSV(nil, transactions())
	assert.ErrorIs(t, err, ErrNoReports)
}

func TestEscapeField(t *testing.T) {
	assert.Equal(t, "plain", escapeField("plain"))
	assert.Equal(t, `"a,b"`, escapeField("a,b"))
	assert.Equal(t, `"say ""hi"""`, escapeField(`say "hi"`))
	assert.Equal(t, "\"line\nbreak\"", escapeField("line\nbreak"))
}

func TestExportArchive(t *testing.T) {
	s := state.State{
		Accounts:     []core.Account{{ID: "a1", Name: "Checking", Group: "On budget", Type: "Checking"}},
		Transactions: transactions()[:1],
	}
	now := time.Date(2024, 3, 4, 5, 6, 7, 0, time.UTC)
	out, err := ExportArchive(s, now)
	require.NoError(t, err)

	var decoded map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(out, &decoded))
	assert.JSONEq(t, `"2024-03-04T05:06:07.000Z"`, string(decoded["generatedAt"]))
	assert.JSONEq(t, `[]`, string(decoded["reports"]))
	assert.Contains(t, string(out), "\n  \"reports\"")

	back, err := ParseArchive(out)
	require.NoError(t, err)
	assert.Equal(t, s.Accounts, back.Accounts)
	assert.Equal(t, s.Transactions, back.Transactions)

	assert.Equal(t, "home-finances-archive-2024-03-04.json", ArchiveFilename(now))
	assert.Equal(t, "home-finances-reports-2024-03-04.csv", CSVFilename(now))
}

func TestPrintable(t *testing.T) {
	reports := []core.Report{{ID: "r1", Month: "2024-02", Focus: "Bills | <b>rent</b>"}}
	out, err := Printable(reports, transactions(), time.Date(2024, 3, 4, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)
	html := string(out)
	assert.Contains(t, html, "<h1>Monthly reports</h1>")
	assert.Contains(t, html, "Generated 3/4/2024.")
	assert.Contains(t, html, "<table>")
	assert.Contains(t, html, "February 2024")
	assert.Contains(t, html, "-$57.50")
	assert.NotContains(t, html, "<b>rent</b>")

	_, err = Printable(nil, nil, time.Now())
	assert.ErrorIs(t, err, ErrNoReports)
}

func TestBuildDashboard(t *testing.T) {
	now := time.Date(2024, 2, 20, 15, 0, 0, 0, time.UTC)
	s := state.State{
		Accounts: []core.Account{
			{ID: "1", Name: "Checking"}, {ID: "2", Name: "Savings"},
			{ID: "3", Name: "Cash"}, {ID: "4", Name: "Card"},
		},
		Transactions: append(transactions(),
			core.Transaction{ID: "6", Date: "2023-12-01", Account: "Cash", Type: core.Inflow, Amount: 20},
		),
	}
	d := BuildDashboard(s, now)

	// window starts 2024-01-21
	assert.Equal(t, 4, d.RecentCount)
	assert.Equal(t, 107.0, d.RecentInflow)
	assert.Equal(t, 157.5, d.RecentOutflow)
	assert.Equal(t, -50.5, d.RecentNet)
	require.NotNil(t, d.BudgetPercent)
	assert.Equal(t, 147, *d.BudgetPercent)
	assert.Equal(t, "147%", d.BudgetLabel())

	assert.Equal(t, []AccountBalance{
		{Name: "Checking", Balance: 65.5},
		{Name: "Savings", Balance: -115},
		{Name: "Cash", Balance: 20},
	}, d.Accounts)
	assert.Equal(t, -29.5, d.TotalBalance)
	assert.Equal(t, "4 account(s) tracked", d.TotalTrend())

	assert.Equal(t, []CategoryTotal{
		{Category: "Bills", Total: 115},
		{Category: "Food", Total: 42.5},
	}, d.TopCategories)
	assert.Equal(t, "Last 30 days", d.NetTrend())
}

func TestBuildDashboardEmpty(t *testing.T) {
	d := BuildDashboard(state.State{}, time.Now())
	assert.Equal(t, NoValue, d.NetLabel())
	assert.Equal(t, NoValue, d.TotalLabel())
	assert.Equal(t, NoValue, d.BudgetLabel())
	assert.Equal(t, "Add accounts to track balances.", d.TotalTrend())
	assert.Empty(t, d.TopCategories)
}

func TestPlanProject(t *testing.T) {
	p := Plan{Income: 1000, Expenses: 800, GrowthPercent: 10, Months: 3}.Project()
	// incomes 1000, 1100, 1210
	assert.InDelta(t, 910, p.TotalNet, 1e-9)
	assert.InDelta(t, 1210, p.FinalIncome, 1e-9)
	assert.InDelta(t, 910.0/3, p.AverageNet, 1e-9)

	one := ParsePlan("500", "200", "x", "0").Project()
	assert.Equal(t, Projection{TotalNet: 300, FinalIncome: 500, AverageNet: 300}, one)
}

func TestParsePlanClampsMonths(t *testing.T) {
	for _, months := range []string{"5e9", "1e300", "1201"} {
		p := ParsePlan("100", "50", "0", months)
		assert.Equal(t, MaxPlanMonths, p.Months, months)
		assert.InDelta(t, 50*MaxPlanMonths, p.Project().TotalNet, 1e-6, months)
	}
	assert.Equal(t, 1, ParsePlan("100", "50", "0", "-1e300").Months)
	assert.Equal(t, 1, ParsePlan("100", "50", "0", "NaN").Months)

	direct := Plan{Income: 10, Months: 1 << 40}.Project()
	assert.InDelta(t, 10*MaxPlanMonths, direct.TotalNet, 1e-6)
}

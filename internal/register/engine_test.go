package register

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"homefinances/internal/core"
)

func tx(id string, createdAt int64, date, account, payee string, typ core.TxType, amount float64) core.Transaction {
	return core.Transaction{
		ID: id, CreatedAt: createdAt, Date: date, Account: account,
		Payee: payee, Type: typ, Amount: amount,
	}
}

func sampleTransactions() []core.Transaction {
	// newest first, the way the store prepends
	return []core.Transaction{
		tx("t5", 5, "2024-01-04", "Savings", "Year-end bonus", core.Inflow, 500),
		tx("t4", 4, "2024-01-03", "Checking", "Groceries", core.Outflow, 80),
		tx("t3", 3, "2024-01-02", "Savings", "Interest", core.Inflow, 5),
		tx("t2", 2, "2024-01-02", "Checking", "Bonus transfer", core.Outflow, 20),
		tx("t1", 1, "2024-01-01", "Checking", "Paycheck", core.Inflow, 1000),
	}
}

func keys(rows []Row) []string {
	out := make([]string, len(rows))
	for i, r := range rows {
		out[i] = r.Key
	}
	return out
}

func TestRenderPlaceholder(t *testing.T) {
	view := New(nil).Render(nil)
	assert.True(t, view.Empty())
	assert.Equal(t, Placeholder, view.Placeholder)
	assert.Equal(t, Totals{}, view.Totals)
}

func TestRenderSortsByDateThenOrder(t *testing.T) {
	seeds := []SeedRow{
		{Date: "2024-01-02", Account: "Checking", Payee: "Seed", Type: core.Outflow, Amount: -1},
	}
	view := New(seeds).Render(sampleTransactions())
	// seed order key 0 sorts before manual rows on the same date
	assert.Equal(t, []string{"t1", "seed-0", "t2", "t3", "t4", "t5"}, keys(view.Rows))
	assert.Empty(t, view.Placeholder)
}

func TestRenderFallsBackToIDPrefixOrder(t *testing.T) {
	txs := []core.Transaction{
		{ID: "1700000000200-b", Date: "2024-01-01", Type: core.Inflow, Amount: 1},
		{ID: "1700000000100-a", Date: "2024-01-01", Type: core.Inflow, Amount: 1},
	}
	view := New(nil).Render(txs)
	assert.Equal(t, []string{"1700000000100-a", "1700000000200-b"}, keys(view.Rows))
	assert.Equal(t, DefaultAccount, view.Rows[0].Account)
	assert.Equal(t, DefaultPayee, view.Rows[0].Payee)
}

func TestRunningBalancesAndTotals(t *testing.T) {
	view := New(nil).Render(sampleTransactions())
	balances := map[string]float64{}
	for _, r := range view.Rows {
		balances[r.Key] = r.Balance
	}
	assert.Equal(t, 1000.0, balances["t1"])
	assert.Equal(t, 980.0, balances["t2"])
	assert.Equal(t, 5.0, balances["t3"])
	assert.Equal(t, 900.0, balances["t4"])
	assert.Equal(t, 505.0, balances["t5"])

	assert.Equal(t, Totals{Inflow: 1505, Outflow: 100, Net: 1405}, view.Totals)
}

func TestFilterAccountTypeSearch(t *testing.T) {
	e := New(nil)
	e.SetAccountOptions([]string{"Checking", "Savings"})
	e.Render(sampleTransactions())

	view := e.SetFilters(NewSession(), Filters{Account: "Savings", Type: "inflow", Search: "  BONUS "})
	visible := view.VisibleRows()
	require.Len(t, visible, 1)
	assert.Equal(t, "t5", visible[0].Key)
	assert.Equal(t, 500.0, visible[0].Balance)
	assert.Equal(t, Totals{Inflow: 500, Outflow: 0, Net: 500}, view.Totals)

	// hidden rows stay in the model
	assert.Len(t, view.Rows, 5)
}

func TestSetFiltersFallsBackToAll(t *testing.T) {
	e := New(nil)
	e.SetAccountOptions([]string{"Checking"})
	e.Render(sampleTransactions())

	view := e.SetFilters(NewSession(), Filters{Account: "Brokerage", Type: "sideways"})
	assert.Equal(t, Filters{Account: All, Type: All}, view.Filters)
	assert.Len(t, view.VisibleRows(), 5)
}

func TestSingleAccountBalanceIgnoresInterleaving(t *testing.T) {
	e := New(nil)
	e.SetAccountOptions([]string{"Checking", "Savings"})
	e.Render(sampleTransactions())
	view := e.SetFilters(NewSession(), Filters{Account: "Checking"})

	var sum float64
	for _, r := range view.VisibleRows() {
		sum += r.Amount
		assert.Equal(t, sum, r.Balance)
	}
	assert.Equal(t, 900.0, sum)
}

func TestSetAccountFilter(t *testing.T) {
	e := New(nil)
	s := NewSession()
	e.SetAccountOptions([]string{"Checking"})
	assert.False(t, e.SetAccountFilter(s, "Brokerage"))
	assert.Equal(t, All, s.Filters().Account)
	assert.True(t, e.SetAccountFilter(s, "Checking"))
	assert.Equal(t, "Checking", s.Filters().Account)

	e.SetAccountOptions([]string{"Savings"})
	assert.Equal(t, All, e.View(s).Filters.Account)
	assert.Equal(t, All, s.Filters().Account)
}

func TestSessionsAreIndependent(t *testing.T) {
	txs := sampleTransactions()
	e := New(nil)
	e.SetAccountOptions([]string{"Checking", "Savings"})
	e.Render(txs)

	a, b := NewSession(), NewSession()
	e.SetFilters(a, Filters{Account: "Savings"})
	_, err := e.Edit(a, "t4", txs)
	require.NoError(t, err)

	viewB := e.View(b)
	assert.Equal(t, All, viewB.Filters.Account)
	assert.Len(t, viewB.VisibleRows(), 5)
	assert.Equal(t, Totals{Inflow: 1505, Outflow: 100, Net: 1405}, viewB.Totals)
	assert.Equal(t, Display, findRow(t, viewB, "t4").Mode)

	_, err = e.Save(b, "t4", Draft{Date: "2024-01-03", Outflow: "1"}, txs)
	assert.ErrorIs(t, err, ErrNotEditing, "b never opened the row")

	viewA := e.View(a)
	assert.Equal(t, "Savings", viewA.Filters.Account)
	assert.Len(t, viewA.VisibleRows(), 2)
	assert.Equal(t, Editing, findRow(t, viewA, "t4").Mode)
	assert.Nil(t, e.View(nil).Rows[0].Draft)
}

func TestDraftDroppedWhenRowDisappears(t *testing.T) {
	txs := sampleTransactions()
	e := New(nil)
	e.Render(txs)
	s := NewSession()
	_, err := e.Edit(s, "t4", txs)
	require.NoError(t, err)

	e.Render(Remove("t4", txs))
	e.View(s)
	assert.False(t, s.Editing("t4"))
}

func TestEditSaveCycle(t *testing.T) {
	txs := sampleTransactions()
	e := New(nil)
	e.Render(txs)
	s := NewSession()

	view, err := e.Edit(s, "t4", txs)
	require.NoError(t, err)
	row := findRow(t, view, "t4")
	assert.Equal(t, Editing, row.Mode)
	require.NotNil(t, row.Draft)
	assert.Equal(t, "80", row.Draft.Outflow)
	assert.Empty(t, row.Draft.Inflow)

	d := *row.Draft
	d.Inflow = "10"
	_, err = e.Save(s, "t4", d, txs)
	assert.ErrorIs(t, err, core.ErrAmountDirection)
	assert.Equal(t, Editing, findRow(t, e.View(s), "t4").Mode)

	d.Outflow = ""
	d.Payee = "  Market "
	next, err := e.Save(s, "t4", d, txs)
	require.NoError(t, err)
	require.Len(t, next, len(txs))
	assert.Equal(t, core.Inflow, next[1].Type)
	assert.Equal(t, 10.0, next[1].Amount)
	assert.Equal(t, "Market", next[1].Payee)
	// input list untouched
	assert.Equal(t, core.Outflow, txs[1].Type)

	e.Render(next)
	assert.Equal(t, Display, findRow(t, e.View(s), "t4").Mode)
}

func TestEditCancelAndKeys(t *testing.T) {
	txs := sampleTransactions()
	e := New(nil)
	e.Render(txs)
	s := NewSession()

	_, err := e.Edit(s, "missing", txs)
	assert.ErrorIs(t, err, core.ErrTransactionNotFound)

	_, err = e.Edit(s, "t1", txs)
	require.NoError(t, err)
	view := e.Cancel(s, "t1")
	assert.Equal(t, Display, findRow(t, view, "t1").Mode)

	_, err = e.Edit(s, "t1", txs)
	require.NoError(t, err)
	out, saved, err := e.HandleKey(s, "t1", "Escape", Draft{}, txs)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, txs, out)
	assert.Equal(t, Display, findRow(t, e.View(s), "t1").Mode)

	_, err = e.Edit(s, "t1", txs)
	require.NoError(t, err)
	d := *findRow(t, e.View(s), "t1").Draft
	d.Inflow = "1200"
	out, saved, err = e.HandleKey(s, "t1", "Enter", d, txs)
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 1200.0, out[4].Amount)

	// keys on a display row are ignored
	out, saved, err = e.HandleKey(s, "t2", "Enter", Draft{}, txs)
	require.NoError(t, err)
	assert.False(t, saved)
	assert.Equal(t, txs, out)
}

func TestAddEntryBuild(t *testing.T) {
	got, err := AddEntry{Date: "2024-02-01", Outflow: "12.5"}.Build("id-1", 42)
	require.NoError(t, err)
	assert.Equal(t, core.Transaction{
		ID: "id-1", CreatedAt: 42, Date: "2024-02-01", Account: DefaultAccount,
		Payee: DefaultPayee, Type: core.Outflow, Amount: 12.5,
	}, got)

	_, err = AddEntry{Outflow: "1"}.Build("x", 1)
	assert.ErrorIs(t, err, core.ErrInvalidDate)
	_, err = AddEntry{Date: "2024-02-01", Outflow: "1", Inflow: "2"}.Build("x", 1)
	assert.ErrorIs(t, err, core.ErrAmountDirection)
	_, err = AddEntry{Date: "2024-02-01", Outflow: "-1"}.Build("x", 1)
	assert.ErrorIs(t, err, core.ErrAmountDirection)
}

func TestRemove(t *testing.T) {
	txs := sampleTransactions()
	out := Remove("t3", txs)
	assert.Len(t, out, 4)
	assert.Len(t, txs, 5)
}

func TestParseSeedRows(t *testing.T) {
	seeds := ParseSeedRows("Date,Account,Payee,Amount\n2023-12-30,Checking,Rent,-1500\nbad,Checking,x,1\n")
	require.Len(t, seeds, 1)
	assert.Equal(t, SeedRow{Date: "2023-12-30", Account: "Checking", Payee: "Rent", Type: core.Outflow, Amount: -1500}, seeds[0])
}

func findRow(t *testing.T, v View, key string) Row {
	t.Helper()
	for _, r := range v.Rows {
		if r.Key == key {
			return r
		}
	}
	t.Fatalf("row %s not found", key)
	return Row{}
}

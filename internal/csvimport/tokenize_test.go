package csvimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want [][]string
	}{
		{
			name: "quoted comma and doubled quote",
			in:   "a,b\n\"a,\"\"b\"\"\",2\n",
			want: [][]string{{"a", "b"}, {`a,"b"`, "2"}},
		},
		{
			name: "mixed line endings",
			in:   "h1,h2\r\n1,2\r3,4\n5,6",
			want: [][]string{{"h1", "h2"}, {"1", "2"}, {"3", "4"}, {"5", "6"}},
		},
		{
			name: "blank rows dropped",
			in:   "h\n\n , \n1\n   ",
			want: [][]string{{"h"}, {"1"}},
		},
		{
			name: "newline inside quotes",
			in:   "memo\n\"line1\nline2\"\n",
			want: [][]string{{"memo"}, {"line1\nline2"}},
		},
		{
			name: "empty fields kept",
			in:   "a,,c\n",
			want: [][]string{{"a", "", "c"}},
		},
		{
			name: "empty input",
			in:   "",
			want: nil,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Tokenize(tt.in))
		})
	}
}

func TestResolveColumns(t *testing.T) {
	cols := ResolveColumns([]string{"Posted Date", "Description", "Debit", "Credit", "Account Name", "Notes"})
	assert.Equal(t, 0, cols.Date)
	assert.Equal(t, 1, cols.Payee)
	assert.Equal(t, 2, cols.Outflow)
	assert.Equal(t, 3, cols.Inflow)
	assert.Equal(t, 4, cols.Account)
	assert.Equal(t, 5, cols.Memo)
	assert.Equal(t, -1, cols.Amount)
	assert.Equal(t, -1, cols.Category)
	assert.True(t, cols.Valid())
}

func TestResolveColumnsFirstCandidateWins(t *testing.T) {
	// "date" outranks "transactiondate" regardless of column order.
	cols := ResolveColumns([]string{"Transaction Date", "Date", "Amt", "Amount"})
	assert.Equal(t, 1, cols.Date)
	assert.Equal(t, 3, cols.Amount)
}

func TestColumnsValid(t *testing.T) {
	assert.False(t, ResolveColumns([]string{"Amount", "Payee"}).Valid())
	assert.False(t, ResolveColumns([]string{"Date", "Payee"}).Valid())
	assert.True(t, ResolveColumns([]string{"Date", "Withdrawal"}).Valid())
}

func TestNormalizeHeader(t *testing.T) {
	assert.Equal(t, "transactiondate", NormalizeHeader(" Transaction-Date "))
	assert.Equal(t, "accountname", NormalizeHeader("Account_Name"))
	assert.Equal(t, "", NormalizeHeader("€"))
}

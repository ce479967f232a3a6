// Package report derives month summaries, exports and the dashboard from a
// state snapshot. Nothing here is stored; everything is recomputed from the
// live transactions.
package report

import (
	"time"

	"github.com/shopspring/decimal"

	"homefinances/internal/core"
)

// Summary is the month rollup shown on report cards and exports.
type Summary struct {
	Month   string  `json:"month"`
	Inflow  float64 `json:"inflow"`
	Outflow float64 `json:"outflow"`
	Net     float64 `json:"net"`
	Count   int     `json:"count"`
}

// SummarizeMonth totals the transactions dated in month (YYYY-MM).
func SummarizeMonth(month string, txs []core.Transaction) Summary {
	inflow, outflow := decimal.Zero, decimal.Zero
	count := 0
	for _, tx := range txs {
		if tx.Date == "" || tx.Month() != month {
			continue
		}
		switch tx.Type {
		case core.Inflow:
			inflow = inflow.Add(core.Dec(tx.Amount))
		case core.Outflow:
			outflow = outflow.Add(core.Dec(tx.Amount))
		}
		count++
	}
	return Summary{
		Month:   month,
		Inflow:  core.Float(inflow),
		Outflow: core.Float(outflow),
		Net:     core.Float(inflow.Sub(outflow)),
		Count:   count,
	}
}

// MonthLabel renders a month key as "February 2024". Invalid keys are
// returned unchanged.
func MonthLabel(month string) string {
	if !core.IsValidMonth(month) {
		return month
	}
	t, err := time.Parse("2006-01", month)
	if err != nil {
		return month
	}
	return t.Format("January 2006")
}

// CreatedMessage is the status shown after a report is created.
func CreatedMessage(month string) string {
	return "Created " + MonthLabel(month) + "."
}

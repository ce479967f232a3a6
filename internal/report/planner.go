package report

import (
	"math"
	"strconv"
	"strings"
)

// Plan is the cash-flow projection input.
type Plan struct {
	Income        float64 `json:"income"`
	Expenses      float64 `json:"expenses"`
	GrowthPercent float64 `json:"growth"`
	Months        int     `json:"months"`
}

// MaxPlanMonths caps the projection horizon at a hundred years.
const MaxPlanMonths = 1200

type Projection struct {
	TotalNet    float64 `json:"totalNet"`
	FinalIncome float64 `json:"finalIncome"`
	AverageNet  float64 `json:"averageNet"`
}

// Project compounds income monthly by GrowthPercent against flat expenses.
// Months are clamped to 1..MaxPlanMonths.
func (p Plan) Project() Projection {
	months := clampMonths(float64(p.Months))
	rate := p.GrowthPercent / 100

	total := 0.0
	income := p.Income
	for i := 0; i < months; i++ {
		total += income - p.Expenses
		income *= 1 + rate
	}
	return Projection{
		TotalNet:    total,
		FinalIncome: p.Income * math.Pow(1+rate, float64(months-1)),
		AverageNet:  total / float64(months),
	}
}

// ParsePlan reads the planner form; unparseable fields fall back to 0 and
// months to 1. Months are rounded and clamped to 1..MaxPlanMonths.
func ParsePlan(income, expenses, growth, months string) Plan {
	return Plan{
		Income:        parseOr(income, 0),
		Expenses:      parseOr(expenses, 0),
		GrowthPercent: parseOr(growth, 0),
		Months:        clampMonths(math.Round(parseOr(months, 1))),
	}
}

func clampMonths(m float64) int {
	switch {
	case m < 1:
		return 1
	case m > MaxPlanMonths:
		return MaxPlanMonths
	}
	return int(m)
}

func parseOr(s string, fallback float64) float64 {
	v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fallback
	}
	return v
}

func itoa(n int) string {
	return strconv.Itoa(n)
}

package state

import (
	"strings"

	"homefinances/internal/core"
)

// HasReport reports whether month already has a report.
func (s State) HasReport(month string) bool {
	for _, r := range s.Reports {
		if r.Month == month {
			return true
		}
	}
	return false
}

// CreateReport prepends a draft report for month.
func (s State) CreateReport(month string, env Env) (State, core.Report, Changes, error) {
	month = strings.TrimSpace(month)
	if !core.IsValidMonth(month) {
		return s, core.Report{}, 0, core.ErrInvalidMonth
	}
	if s.HasReport(month) {
		return s, core.Report{}, 0, core.ErrDuplicateReport
	}
	report := core.Report{
		ID:        env.id(),
		Month:     month,
		CreatedAt: core.Millis(env.now()),
		Status:    core.DefaultReportStatus,
		Focus:     core.DefaultReportFocus,
	}
	next := s.Clone()
	next.Reports = append([]core.Report{report}, next.Reports...)
	return next, report, ReportsChanged, nil
}

package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"homefinances/internal/core"
	"homefinances/internal/log"
	"homefinances/internal/report"
	"homefinances/internal/state"
)

// ErrSheetsDisabled is returned by ExportToSheets without a configured sheet.
var ErrSheetsDisabled = errors.New("Google Sheets export is not configured.")

// ReportCard is a report with its recomputed month totals.
type ReportCard struct {
	core.Report
	Label   string         `json:"label"`
	Summary report.Summary `json:"summary"`
}

// Reports lists the reports, newest first, with their totals.
func (s *LedgerService) Reports() []ReportCard {
	s.mu.Lock()
	defer s.mu.Unlock()
	cards := make([]ReportCard, 0, len(s.state.Reports))
	for _, r := range s.state.Reports {
		r.Status = r.StatusOrDefault()
		r.Focus = r.FocusOrDefault()
		cards = append(cards, ReportCard{
			Report:  r,
			Label:   report.MonthLabel(r.Month),
			Summary: s.summaryLocked(r.Month),
		})
	}
	return cards
}

// CreateReport adds a report for month and returns the status to show.
func (s *LedgerService) CreateReport(ctx context.Context, month string) (core.Report, Status, error) {
	s.lockFresh(ctx)
	defer s.mu.Unlock()
	next, r, changes, err := s.state.CreateReport(month, s.env)
	if err != nil {
		return core.Report{}, Status{Message: err.Error(), Tone: ToneError}, err
	}
	s.commit(ctx, next, changes, log.OpCreate)
	s.logger.InfoContext(ctx, "Report created", log.FieldMonth, r.Month)
	return r, Status{Message: report.CreatedMessage(r.Month), Tone: ToneSuccess}, nil
}

// Dashboard summarizes the current state as of now.
func (s *LedgerService) Dashboard(now time.Time) report.Dashboard {
	return report.BuildDashboard(s.Snapshot(), now)
}

// ReportsMarkdown renders the reports table for terminals.
func (s *LedgerService) ReportsMarkdown() string {
	snap := s.Snapshot()
	return report.Markdown(snap.Reports, snap.Transactions)
}

func (s *LedgerService) ExportCSV() (string, error) {
	snap := s.Snapshot()
	return report.ExportCSV(snap.Reports, snap.Transactions)
}

func (s *LedgerService) ExportPrintable(now time.Time) ([]byte, error) {
	snap := s.Snapshot()
	return report.Printable(snap.Reports, snap.Transactions, now)
}

// ExportArchive dumps the whole state.
func (s *LedgerService) ExportArchive(now time.Time) ([]byte, error) {
	return report.ExportArchive(s.Snapshot(), now)
}

// ExportToSheets writes the reports table to the configured spreadsheet.
func (s *LedgerService) ExportToSheets(ctx context.Context) (string, error) {
	if s.sheets == nil {
		return "", ErrSheetsDisabled
	}
	snap := s.Snapshot()
	if len(snap.Reports) == 0 {
		return "", report.ErrNoReports
	}
	rows := append([][]string{report.Header}, report.Rows(snap.Reports, snap.Transactions)...)
	ref, err := s.sheets.WriteReport(ctx, rows)
	if err != nil {
		s.events.LogError(ctx, "Sheets export failed", err, log.ComponentSheets, log.OpExport, nil)
		return "", err
	}
	return ref, nil
}

func (s *LedgerService) now() time.Time {
	if s.env.Now != nil {
		return s.env.Now()
	}
	return time.Now()
}

// RestoreArchive replaces the whole state with an archive written by
// ExportArchive and rewrites every slot. An archive that fails
// state.Validate is rejected and nothing changes.
func (s *LedgerService) RestoreArchive(ctx context.Context, data []byte) error {
	restored, err := report.ParseArchive(data)
	if err != nil {
		return err
	}
	if err := restored.Validate(); err != nil {
		return fmt.Errorf("restore archive: %w", err)
	}
	s.lockFresh(ctx)
	defer s.mu.Unlock()
	restored.Accounts, _ = state.NormalizeAccounts(restored.Accounts, s.env)
	s.commit(ctx, restored, state.TransactionsChanged|state.AccountsChanged|state.ReportsChanged, log.OpUpdate)
	return nil
}

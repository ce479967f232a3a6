package worker

import (
	"context"
	"errors"
	"time"

	"homefinances/internal/log"
	"homefinances/internal/notify"
	"homefinances/internal/report"
	"homefinances/internal/storage"
)

// Exporter pushes the reports table to a spreadsheet.
type Exporter interface {
	ExportToSheets(ctx context.Context) (string, error)
}

// SheetsSync mirrors the reports to Google Sheets after they or the
// transactions behind them change. Bursts of changes within Debounce
// produce a single export.
type SheetsSync struct {
	hub      *notify.Hub
	exporter Exporter
	logger   *log.Logger
	Debounce time.Duration
}

func NewSheetsSync(hub *notify.Hub, exporter Exporter, logger *log.Logger) *SheetsSync {
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	return &SheetsSync{
		hub:      hub,
		exporter: exporter,
		logger:   logger.WithComponent(log.ComponentSheets),
		Debounce: 5 * time.Second,
	}
}

// Run exports once at startup and then after every relevant change until
// ctx is cancelled.
func (s *SheetsSync) Run(ctx context.Context) error {
	changes, cancel := s.hub.Subscribe()
	defer cancel()

	s.export(ctx)

	var (
		timer   *time.Timer
		timerCh <-chan time.Time
	)
	for {
		select {
		case <-ctx.Done():
			if timer != nil {
				timer.Stop()
			}
			return nil
		case c, ok := <-changes:
			if !ok {
				return nil
			}
			if c.Key != storage.ReportsKey && c.Key != storage.TransactionsKey {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(s.Debounce)
				timerCh = timer.C
			} else {
				timer.Reset(s.Debounce)
			}
		case <-timerCh:
			timer, timerCh = nil, nil
			s.export(ctx)
		}
	}
}

func (s *SheetsSync) export(ctx context.Context) {
	ref, err := s.exporter.ExportToSheets(ctx)
	switch {
	case errors.Is(err, report.ErrNoReports):
		s.logger.DebugContext(ctx, "No reports to mirror yet")
	case err != nil:
		s.logger.WarnContext(ctx, "Reports sync to Google Sheets failed", log.FieldError, err, log.FieldOperation, log.OpExport)
	default:
		s.logger.InfoContext(ctx, "Reports synced to Google Sheets", "range", ref)
	}
}

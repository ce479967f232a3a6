// Package memory keeps the last written reports table in process, standing
// in for a spreadsheet when none is configured.
package memory

import (
	"context"
	"fmt"
	"slices"
	"sync"

	ports "homefinances/internal/sheets"
)

type Writer struct {
	mu     sync.Mutex
	rows   [][]string
	writes int
}

var _ ports.ReportWriter = (*Writer)(nil)

func New() *Writer {
	return &Writer{}
}

// WriteReport replaces the stored table with a copy of rows.
func (w *Writer) WriteReport(_ context.Context, rows [][]string) (string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.rows = make([][]string, len(rows))
	for i, r := range rows {
		w.rows[i] = slices.Clone(r)
	}
	w.writes++
	return fmt.Sprintf("mem:%d", w.writes), nil
}

// Rows returns the last written table.
func (w *Writer) Rows() [][]string {
	w.mu.Lock()
	defer w.mu.Unlock()
	out := make([][]string, len(w.rows))
	for i, r := range w.rows {
		out[i] = slices.Clone(r)
	}
	return out
}

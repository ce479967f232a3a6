package memory

import (
	"context"
	"testing"
)

func TestWriter_WriteReport(t *testing.T) {
	w := New()
	rows := [][]string{{"Month", "Net"}, {"February 2024", "-57.50"}}

	ref, err := w.WriteReport(context.Background(), rows)
	if err != nil {
		t.Fatalf("WriteReport() error = %v", err)
	}
	if ref != "mem:1" {
		t.Errorf("ref = %q, want mem:1", ref)
	}

	rows[1][1] = "changed"
	got := w.Rows()
	if got[1][1] != "-57.50" {
		t.Errorf("stored rows should not alias the input, got %v", got)
	}

	ref, _ = w.WriteReport(context.Background(), [][]string{{"Month"}})
	if ref != "mem:2" || len(w.Rows()) != 1 {
		t.Errorf("second write should replace the table, ref=%q rows=%v", ref, w.Rows())
	}
}

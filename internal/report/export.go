package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"homefinances/internal/core"
	"homefinances/internal/state"
)

// ErrNoReports is returned by exports that need at least one report.
var ErrNoReports = errors.New("Create a monthly report before exporting.")

// Header is the column row shared by the CSV, sheet and printable exports.
var Header = []string{"Month", "Period", "Status", "Focus", "Inflow", "Outflow", "Net", "Transactions"}

// Rows builds one export row per report, in report list order. Money is
// formatted with exactly two decimals.
func Rows(reports []core.Report, txs []core.Transaction) [][]string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		s := SummarizeMonth(r.Month, txs)
		rows = append(rows, []string{
			MonthLabel(r.Month),
			r.Month,
			r.StatusOrDefault(),
			r.FocusOrDefault(),
			core.Fixed2(s.Inflow),
			core.Fixed2(s.Outflow),
			core.Fixed2(s.Net),
			strconv.Itoa(s.Count),
		})
	}
	return rows
}

// ExportCSV renders the reports table as CSV text. Rows are joined by "\n"
// without a trailing newline.
func ExportCSV(reports []core.Report, txs []core.Transaction) (string, error) {
	if len(reports) == 0 {
		return "", ErrNoReports
	}
	lines := make([]string, 0, len(reports)+1)
	for _, row := range append([][]string{Header}, Rows(reports, txs)...) {
		fields := make([]string, len(row))
		for i, f := range row {
			fields[i] = escapeField(f)
		}
		lines = append(lines, strings.Join(fields, ","))
	}
	return strings.Join(lines, "\n"), nil
}

// escapeField quotes fields holding a quote, comma or newline.
func escapeField(s string) string {
	if !strings.ContainsAny(s, "\",\n") {
		return s
	}
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}

// Archive is the full-state JSON dump.
type Archive struct {
	GeneratedAt  string             `json:"generatedAt"`
	Reports      []core.Report      `json:"reports"`
	Accounts     []core.Account     `json:"accounts"`
	Transactions []core.Transaction `json:"transactions"`
}

// ExportArchive dumps s unmodified, indented by two spaces.
func ExportArchive(s state.State, now time.Time) ([]byte, error) {
	a := Archive{
		GeneratedAt:  now.UTC().Format("2006-01-02T15:04:05.000Z"),
		Reports:      nonNil(s.Reports),
		Accounts:     nonNil(s.Accounts),
		Transactions: nonNil(s.Transactions),
	}
	out, err := json.MarshalIndent(a, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode archive: %w", err)
	}
	return out, nil
}

// ParseArchive reads an archive back, leniently like the slot store.
func ParseArchive(data []byte) (state.State, error) {
	var raw struct {
		Reports      json.RawMessage `json:"reports"`
		Accounts     json.RawMessage `json:"accounts"`
		Transactions json.RawMessage `json:"transactions"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return state.State{}, fmt.Errorf("decode archive: %w", err)
	}
	return state.State{
		Reports:      decodeList[core.Report](raw.Reports),
		Accounts:     decodeList[core.Account](raw.Accounts),
		Transactions: decodeList[core.Transaction](raw.Transactions),
	}, nil
}

func decodeList[T any](raw json.RawMessage) []T {
	var items []T
	if err := json.Unmarshal(raw, &items); err != nil || items == nil {
		return []T{}
	}
	return items
}

func nonNil[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}

// Filenames for downloads, dated by now.
func CSVFilename(now time.Time) string {
	return "home-finances-reports-" + now.UTC().Format(core.ISODate) + ".csv"
}

func ArchiveFilename(now time.Time) string {
	return "home-finances-archive-" + now.UTC().Format(core.ISODate) + ".json"
}

func PrintableFilename(now time.Time) string {
	return "home-finances-reports-" + now.UTC().Format(core.ISODate) + ".html"
}

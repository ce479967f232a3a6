package report

import (
	"bytes"
	"fmt"
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"homefinances/internal/core"
)

// Markdown renders the reports as a markdown table with currency values.
func Markdown(reports []core.Report, txs []core.Transaction) string {
	rows := make([][]string, 0, len(reports))
	for _, r := range reports {
		s := SummarizeMonth(r.Month, txs)
		rows = append(rows, []string{
			MonthLabel(r.Month),
			r.Month,
			r.StatusOrDefault(),
			r.FocusOrDefault(),
			core.FormatCurrency(s.Inflow),
			core.FormatCurrency(s.Outflow),
			core.FormatCurrency(s.Net),
			strconv.Itoa(s.Count),
		})
	}
	return MarkdownTable(
		[]string{"Report", "Period", "Status", "Focus", "Inflow", "Outflow", "Net", "Transactions"},
		4, rows)
}

// MarkdownTable renders a pipe table. Columns from rightFrom on are right
// aligned; pass len(headers) for none.
func MarkdownTable(headers []string, rightFrom int, rows [][]string) string {
	var b strings.Builder
	writeMarkdownRow(&b, headers)
	b.WriteString("|")
	for i := range headers {
		if i >= rightFrom {
			b.WriteString("---:|")
		} else {
			b.WriteString("---|")
		}
	}
	b.WriteString("\n")
	for _, row := range rows {
		writeMarkdownRow(&b, row)
	}
	return b.String()
}

func writeMarkdownRow(b *strings.Builder, cells []string) {
	b.WriteString("|")
	for _, c := range cells {
		b.WriteString(" ")
		b.WriteString(escapeMarkdownCell(c))
		b.WriteString(" |")
	}
	b.WriteString("\n")
}

func escapeMarkdownCell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	return strings.ReplaceAll(s, "|", `\|`)
}

var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

var printableTemplate = template.Must(template.New("printable").Parse(`<!doctype html>
<html lang="en">
  <head>
    <meta charset="utf-8" />
    <title>Home Finances Reports</title>
    <style>
      body { font-family: "Trebuchet MS", "Gill Sans", "Optima", sans-serif; padding: 24px; color: #1e1a16; }
      h1 { margin: 0 0 8px; font-size: 28px; }
      p { margin: 0 0 20px; color: #6f6159; }
      table { width: 100%; border-collapse: collapse; font-size: 13px; }
      th, td { border-bottom: 1px solid #e6ddd2; padding: 8px 6px; text-align: left; }
      th { text-transform: uppercase; font-size: 11px; letter-spacing: 0.12em; color: #3f5961; }
    </style>
  </head>
  <body onload="window.print()">
    <h1>Monthly reports</h1>
    <p>Generated {{.Generated}}.</p>
    {{.Table}}
  </body>
</html>
`))

// Printable renders the print-ready reports document that the browser
// saves as PDF.
func Printable(reports []core.Report, txs []core.Transaction, now time.Time) ([]byte, error) {
	if len(reports) == 0 {
		return nil, ErrNoReports
	}
	var table bytes.Buffer
	if err := markdown.Convert([]byte(Markdown(reports, txs)), &table); err != nil {
		return nil, fmt.Errorf("render report table: %w", err)
	}
	var out bytes.Buffer
	err := printableTemplate.Execute(&out, struct {
		Generated string
		Table     template.HTML
	}{
		Generated: now.Format("1/2/2006"),
		Table:     template.HTML(table.String()),
	})
	if err != nil {
		return nil, fmt.Errorf("render printable report: %w", err)
	}
	return out.Bytes(), nil
}

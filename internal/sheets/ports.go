// Package sheets defines the outbound port for publishing the monthly
// reports table to a spreadsheet.
package sheets

import "context"

// ReportWriter replaces the content of a report sheet with rows. The first
// row is the header. It returns a reference to the written range.
type ReportWriter interface {
	WriteReport(ctx context.Context, rows [][]string) (ref string, err error)
}

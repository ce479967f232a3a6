package services

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"homefinances/internal/csvimport"
	"homefinances/internal/log"
)

// ImportFile is one uploaded statement. Err records a failed read; such a
// file is counted as skipped.
type ImportFile struct {
	Name string
	Text string
	Err  error
}

// ReadImportFile reads r fully into an ImportFile.
func ReadImportFile(name string, r io.Reader) ImportFile {
	data, err := io.ReadAll(r)
	if err != nil {
		return ImportFile{Name: name, Err: fmt.Errorf("read %s: %w", name, err)}
	}
	return ImportFile{Name: name, Text: string(data)}
}

// IsCSVName reports whether name has a .csv extension, in any case.
func IsCSVName(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".csv")
}

// ImportSummary is the outcome of an import batch.
type ImportSummary struct {
	Status           Status `json:"status"`
	Imported         int    `json:"imported"`
	SkippedFiles     int    `json:"skippedFiles"`
	SkippedRows      int    `json:"skippedRows"`
	AccountFallbacks int    `json:"accountFallbacks"`
}

// ImportFiles imports the CSV files in order. Files that are not CSV are
// ignored; a file that cannot be read or yields no transaction is skipped.
// Each file's transactions go ahead of the existing ones, so the last file
// ends up first.
func (s *LedgerService) ImportFiles(ctx context.Context, files []ImportFile, defaultAccount string) ImportSummary {
	if len(files) == 0 {
		return ImportSummary{Status: Status{Message: "No files selected."}}
	}

	s.lockFresh(ctx)
	defer s.mu.Unlock()

	if len(s.state.Accounts) == 0 {
		return ImportSummary{Status: Status{Message: "Add an account first to import files.", Tone: ToneError}}
	}

	var csvFiles []ImportFile
	for _, f := range files {
		if IsCSVName(f.Name) {
			csvFiles = append(csvFiles, f)
		}
	}
	if len(csvFiles) == 0 {
		return ImportSummary{Status: Status{Message: "Only CSV imports are supported right now.", Tone: ToneError}}
	}

	logger := s.logger.WithComponent(log.ComponentImport)
	var sum ImportSummary
	for _, f := range csvFiles {
		if f.Err != nil {
			logger.WarnContext(ctx, "Import file unreadable", "file", f.Name, log.FieldError, f.Err)
			sum.SkippedFiles++
			continue
		}
		im := csvimport.Importer{
			Accounts:       s.state.AccountNames(),
			DefaultAccount: defaultAccount,
			NewID:          s.env.NewID,
			Now:            s.env.Now,
		}
		res := im.Parse(f.Text)
		sum.SkippedRows += res.SkippedRows
		sum.AccountFallbacks += res.AccountFallbacks
		if res.Empty() {
			sum.SkippedFiles++
			continue
		}
		sum.Imported += len(res.Transactions)
		next, changes := s.state.PrependTransactions(res.Transactions)
		s.commit(ctx, next, changes, log.OpImport)
	}

	if sum.Imported > 0 {
		sum.Status = Status{
			Message: fmt.Sprintf("Import complete: %d transaction(s) added.", sum.Imported),
			Tone:    ToneSuccess,
		}
	} else {
		sum.Status = Status{Message: "No transactions imported. Check column headers and data.", Tone: ToneError}
	}
	if sum.SkippedFiles > 0 {
		sum.Status.Message += fmt.Sprintf(" (%d file(s) skipped.)", sum.SkippedFiles)
	}

	logger.InfoContext(ctx, "Import finished",
		log.NewFields().WithImport(len(csvFiles), sum.Imported, sum.SkippedFiles).WithOperation(log.OpImport).ToSlice()...)
	return sum
}

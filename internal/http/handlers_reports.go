package http

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"homefinances/internal/log"
	"homefinances/internal/report"
	"homefinances/internal/services"
)

// maxImportBytes bounds a multipart import upload.
const maxImportBytes = 32 << 20

// handleImport imports the uploaded statements. The optional account field
// names the account used for rows without one.
func (s *Server) handleImport(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			ErrorResponse(http.StatusRequestEntityTooLarge, "Upload is too large.").Write(w)
			return
		}
		if !errors.Is(err, http.ErrNotMultipart) {
			BadRequestError("Malformed upload.").Write(w)
			return
		}
	}

	var files []services.ImportFile
	if r.MultipartForm != nil {
		for _, fh := range r.MultipartForm.File["files"] {
			f, err := fh.Open()
			if err != nil {
				files = append(files, services.ImportFile{Name: fh.Filename, Err: err})
				continue
			}
			files = append(files, services.ReadImportFile(fh.Filename, f))
			f.Close()
		}
	}

	sum := s.ledger.ImportFiles(r.Context(), files, sanitizeInput(r.FormValue("account")))
	b := NewResponse().WithStatus(sum.Status).Data(sum)
	if sum.Status.Tone == services.ToneError {
		b.Code(http.StatusUnprocessableEntity)
	}
	s.respond(w, b)
}

func (s *Server) handleListReports(w http.ResponseWriter, r *http.Request) {
	s.respond(w, NewResponse().Data(s.ledger.Reports()))
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	p := parseBody(w, r)
	if p == nil {
		return
	}
	rep, status, err := s.ledger.CreateReport(r.Context(), p.Get("month"))
	if err != nil {
		s.fail(w, r, log.OpCreate, err)
		return
	}
	s.respond(w, NewResponse().Code(http.StatusCreated).WithStatus(status).Data(rep))
}

// handleExportReports serves the reports as a CSV or print document, the
// full archive as JSON, or pushes them to Google Sheets.
func (s *Server) handleExportReports(w http.ResponseWriter, r *http.Request) {
	now := s.now()
	format := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("format")))
	if format == "" {
		format = "csv"
	}

	switch format {
	case "csv":
		text, err := s.ledger.ExportCSV()
		if err != nil {
			s.fail(w, r, log.OpExport, err)
			return
		}
		download(w, "text/csv; charset=utf-8", report.CSVFilename(now), []byte(text))
	case "pdf":
		doc, err := s.ledger.ExportPrintable(now)
		if err != nil {
			s.fail(w, r, log.OpExport, err)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		w.Header().Set("Content-Disposition", fmt.Sprintf("inline; filename=%q", report.PrintableFilename(now)))
		_, _ = w.Write(doc)
	case "archive":
		data, err := s.ledger.ExportArchive(now)
		if err != nil {
			s.fail(w, r, log.OpExport, err)
			return
		}
		download(w, "application/json", report.ArchiveFilename(now), data)
	case "sheets":
		ref, err := s.ledger.ExportToSheets(r.Context())
		if err != nil {
			s.fail(w, r, log.OpExport, err)
			return
		}
		s.respond(w, NewResponse().
			Message("Reports exported to Google Sheets.", services.ToneSuccess).
			Data(map[string]string{"range": ref}))
	default:
		BadRequestError("Unknown export format. Use csv, pdf, archive or sheets.").Write(w)
	}
}

func download(w http.ResponseWriter, contentType, filename string, body []byte) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
	w.Header().Set("Cache-Control", "no-store")
	_, _ = w.Write(body)
}

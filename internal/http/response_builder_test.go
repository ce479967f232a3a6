package http

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"homefinances/internal/core"
	"homefinances/internal/register"
	"homefinances/internal/report"
	"homefinances/internal/services"
)

type decoded struct {
	Status *services.Status `json:"status"`
	Data   json.RawMessage  `json:"data"`
}

func decode(t *testing.T, w *httptest.ResponseRecorder) decoded {
	t.Helper()
	var d decoded
	if err := json.Unmarshal(w.Body.Bytes(), &d); err != nil {
		t.Fatalf("decode %q: %v", w.Body.String(), err)
	}
	return d
}

func TestResponseBuilder_Basic(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().
		Code(http.StatusCreated).
		Message("Account added.", services.ToneSuccess).
		Data(map[string]int{"n": 1}).
		Header("X-Custom", "value").
		Write(w)

	if w.Code != http.StatusCreated {
		t.Errorf("Status code = %d, want %d", w.Code, http.StatusCreated)
	}
	if w.Header().Get("X-Custom") != "value" {
		t.Error("custom header not set")
	}
	if w.Header().Get(HeaderPersistWarning) != "" {
		t.Error("persist warning must be absent by default")
	}
	d := decode(t, w)
	if d.Status == nil || d.Status.Message != "Account added." || d.Status.Tone != "success" {
		t.Errorf("status = %+v", d.Status)
	}
	if string(d.Data) != `{"n":1}` {
		t.Errorf("data = %s", d.Data)
	}
}

func TestResponseBuilder_PersistWarning(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().PersistWarning(true).Write(w)
	if w.Header().Get(HeaderPersistWarning) != "true" {
		t.Errorf("%s = %q", HeaderPersistWarning, w.Header().Get(HeaderPersistWarning))
	}
}

func TestResponseBuilder_EmptyStatusOmitted(t *testing.T) {
	w := httptest.NewRecorder()
	NewResponse().WithStatus(services.Status{}).Write(w)
	if got := w.Body.String(); got != "{}\n" {
		t.Errorf("Body = %q", got)
	}
}

func TestErrorFor(t *testing.T) {
	tests := []struct {
		err        error
		wantStatus int
		wantMsg    string
	}{
		{core.ErrDuplicateAccount, http.StatusConflict, core.ErrDuplicateAccount.Error()},
		{fmt.Errorf("create: %w", core.ErrDuplicateReport), http.StatusConflict, "That month already has a report."},
		{fmt.Errorf("save x: %w", register.ErrNotEditing), http.StatusConflict, register.ErrNotEditing.Error()},
		{fmt.Errorf("delete row 1: %w", core.ErrTransactionNotFound), http.StatusNotFound, core.ErrTransactionNotFound.Error()},
		{core.ErrAccountNotFound, http.StatusNotFound, core.ErrAccountNotFound.Error()},
		{core.ErrAmountDirection, http.StatusBadRequest, core.ErrAmountDirection.Error()},
		{core.ErrInvalidMonth, http.StatusBadRequest, "Use YYYY-MM for the report month."},
		{report.ErrNoReports, http.StatusBadRequest, report.ErrNoReports.Error()},
		{services.ErrSheetsDisabled, http.StatusServiceUnavailable, services.ErrSheetsDisabled.Error()},
		{fmt.Errorf("disk on fire"), http.StatusInternalServerError, "Something went wrong. Please try again."},
	}
	for _, tt := range tests {
		t.Run(tt.err.Error(), func(t *testing.T) {
			w := httptest.NewRecorder()
			ErrorFor(tt.err).Write(w)
			if w.Code != tt.wantStatus {
				t.Errorf("Status code = %d, want %d", w.Code, tt.wantStatus)
			}
			d := decode(t, w)
			if d.Status == nil || d.Status.Message != tt.wantMsg || d.Status.Tone != services.ToneError {
				t.Errorf("status = %+v, want message %q", d.Status, tt.wantMsg)
			}
		})
	}
}

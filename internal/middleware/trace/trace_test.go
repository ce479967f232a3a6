package trace

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"homefinances/internal/log"
)

func TestMiddleware(t *testing.T) {
	var buf bytes.Buffer
	logger := log.New(log.Config{Level: slog.LevelInfo, Format: "json", Component: "test", Output: &buf})
	m := NewMiddleware(func(*http.Request) string { return "198.51.100.1" }, log.NewStructuredLogger(logger))

	var seen string
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
		if r.URL.Path == "/boom" {
			w.WriteHeader(http.StatusInternalServerError)
		}
	}))

	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/ok", nil))
	if !strings.HasPrefix(seen, "req_") {
		t.Fatalf("request id = %q", seen)
	}
	if rr.Header().Get(HeaderRequestID) != seen {
		t.Errorf("response header = %q, want %q", rr.Header().Get(HeaderRequestID), seen)
	}

	req := httptest.NewRequest(http.MethodGet, "/boom", nil)
	req.Header.Set(HeaderRequestID, "upstream-1")
	h.ServeHTTP(httptest.NewRecorder(), req)
	if seen != "upstream-1" {
		t.Errorf("incoming request id not kept: %q", seen)
	}

	got := m.Metrics()
	if got.TotalRequests != 2 || got.FailedRequests != 1 {
		t.Errorf("Metrics() = %+v", got)
	}
	out := buf.String()
	if !strings.Contains(out, `"status_code":500`) || !strings.Contains(out, `"client_ip":"198.51.100.1"`) {
		t.Errorf("completion log missing fields: %s", out)
	}
}

func TestResponseWriterFlush(t *testing.T) {
	rr := httptest.NewRecorder()
	rw := &responseWriter{ResponseWriter: rr, statusCode: http.StatusOK}
	var _ http.Flusher = rw
	rw.Flush()
	if !rr.Flushed {
		t.Error("Flush should reach the underlying writer")
	}
}

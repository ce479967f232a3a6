package log

import (
	"context"
	"log/slog"
	"net/http"
)

type ContextKey string

const LoggerContextKey ContextKey = "logger"

// IntoContext returns ctx carrying logger for FromContext.
func IntoContext(ctx context.Context, logger *Logger) context.Context {
	return context.WithValue(ctx, LoggerContextKey, logger)
}

// FromContext returns the request logger, or one over slog.Default.
func FromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(LoggerContextKey).(*Logger); ok {
		return logger
	}
	return &Logger{Logger: slog.Default(), component: "unknown"}
}

// Middleware puts logger in every request context.
func Middleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			next.ServeHTTP(w, r.WithContext(IntoContext(r.Context(), logger)))
		})
	}
}

// RequestIDMiddleware tags the context logger with the id returned by
// requestID. It must run inside Middleware.
func RequestIDMiddleware(requestID func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			tagged := FromContext(r.Context()).With(FieldRequestID, requestID(r))
			next.ServeHTTP(w, r.WithContext(IntoContext(r.Context(), tagged)))
		})
	}
}

// StructuredLogger emits the request and ledger events with fixed field sets.
type StructuredLogger struct {
	logger *Logger
}

func NewStructuredLogger(logger *Logger) *StructuredLogger {
	return &StructuredLogger{logger: logger}
}

func statusLevel(status int) slog.Level {
	switch {
	case status >= 500:
		return slog.LevelError
	case status >= 400:
		return slog.LevelWarn
	default:
		return slog.LevelInfo
	}
}

// LogHTTPEnd logs a finished request; 4xx at warn, 5xx at error.
func (sl *StructuredLogger) LogHTTPEnd(ctx context.Context, r *http.Request, status int, durationMs int64, clientIP string) {
	attrs := NewFields().
		WithHTTPRequest(r.Method, r.URL.Path, r.URL.RawQuery, r.Header.Get("User-Agent")).
		WithHTTPResponse(status, durationMs, status < 400).
		WithClientIP(clientIP).
		WithComponent(ComponentHTTP).
		ToSlice()
	sl.logger.Logger.Log(ctx, statusLevel(status), "HTTP request completed", attrs...)
}

// LogSlotChange logs a persisted or received slot change.
func (sl *StructuredLogger) LogSlotChange(ctx context.Context, op, key, origin string) {
	attrs := NewFields().WithSlot(key, origin).WithOperation(op).WithComponent(ComponentLedger)
	sl.logger.Logger.InfoContext(ctx, "Slot changed", attrs.ToSlice()...)
}

// LogError logs err tagged with component and operation. extra may be nil.
func (sl *StructuredLogger) LogError(ctx context.Context, msg string, err error, component, operation string, extra LogFields) {
	if extra == nil {
		extra = NewFields()
	}
	attrs := extra.WithError(err).WithOperation(operation).WithComponent(component)
	sl.logger.Logger.ErrorContext(ctx, msg, attrs.ToSlice()...)
}

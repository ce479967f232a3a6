package http

import (
	"context"
	"html/template"
	"io/fs"
	"net/http"
	"sync"
	"time"

	"homefinances/internal/core"
	"homefinances/internal/log"
	"homefinances/internal/middleware/ratelimit"
	"homefinances/internal/middleware/security"
	"homefinances/internal/middleware/trace"
	"homefinances/internal/services"
	appweb "homefinances/web"
)

// Options configures NewServer. Zero values pick defaults.
type Options struct {
	RateLimitPerMinute int
	// Ping checks the slot backend for /readyz; nil means always ready.
	Ping   func(context.Context) error
	Logger *log.Logger
	Now    func() time.Time
}

type Server struct {
	http.Server

	ledger    *services.LedgerService
	templates *template.Template
	limiter   *ratelimit.Limiter
	tracer    *trace.Middleware
	ping      func(context.Context) error
	logger    *log.Logger
	events    *log.StructuredLogger
	now       func() time.Time
	started   time.Time

	shutdownOnce sync.Once
}

// NewServer configures routes and templates, returning a ready-to-run server.
func NewServer(addr string, ledger *services.LedgerService, opts Options) *Server {
	logger := opts.Logger
	if logger == nil {
		logger = log.New(log.DefaultConfig())
	}
	logger = logger.WithComponent(log.ComponentHTTP)
	now := opts.Now
	if now == nil {
		now = time.Now
	}

	s := &Server{
		ledger:  ledger,
		limiter: ratelimit.NewLimiter(ratelimit.Config{RequestsPerMinute: opts.RateLimitPerMinute}),
		ping:    opts.Ping,
		logger:  logger,
		events:  log.NewStructuredLogger(logger),
		now:     now,
		started: now(),
	}
	s.tracer = trace.NewMiddleware(security.ClientIP, s.events)

	t, err := template.New("").Funcs(templateFuncs).ParseFS(appweb.TemplatesFS, "templates/*.html")
	if err != nil {
		logger.Warn("Failed parsing templates", log.FieldError, err)
	}
	s.templates = t

	mux := http.NewServeMux()
	if sub, err := fs.Sub(appweb.StaticFS, "static"); err == nil {
		static := http.StripPrefix("/static/", http.FileServer(http.FS(sub)))
		mux.Handle("GET /static/", security.StaticAssetMiddleware(3600)(static))
	} else {
		logger.Warn("Failed to mount embedded static FS", log.FieldError, err)
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)
	mux.HandleFunc("GET /{$}", s.handleIndex)

	mux.HandleFunc("GET /api/dashboard", s.handleDashboard)

	mux.HandleFunc("GET /api/register", s.handleRegister)
	mux.HandleFunc("POST /api/register/rows", s.handleAddEntry)
	mux.HandleFunc("POST /api/register/rows/{id}/edit", s.handleEditRow)
	mux.HandleFunc("POST /api/register/rows/{id}/cancel", s.handleCancelRow)
	mux.HandleFunc("POST /api/register/rows/{id}/save", s.handleSaveRow)
	mux.HandleFunc("POST /api/register/rows/{id}/key", s.handleKeyRow)
	mux.HandleFunc("DELETE /api/register/rows/{id}", s.handleDeleteRow)

	mux.HandleFunc("GET /api/accounts", s.handleListAccounts)
	mux.HandleFunc("POST /api/accounts", s.handleCreateAccount)
	mux.HandleFunc("PUT /api/accounts/{id}", s.handleUpdateAccount)
	mux.HandleFunc("DELETE /api/accounts/{id}", s.handleDeleteAccount)

	mux.HandleFunc("POST /api/transactions", s.handleCreateTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)

	mux.HandleFunc("POST /api/import", s.handleImport)

	mux.HandleFunc("GET /api/reports", s.handleListReports)
	mux.HandleFunc("POST /api/reports", s.handleCreateReport)
	mux.HandleFunc("GET /api/reports/export", s.handleExportReports)

	mux.HandleFunc("GET /api/plan", s.handlePlan)
	mux.HandleFunc("GET /api/events", s.handleEvents)

	var handler http.Handler = mux
	limitLogger := logger.WithComponent(log.ComponentRateLimit)
	handler = s.limiter.Middleware(security.ClientIP, func(w http.ResponseWriter, r *http.Request) {
		limitLogger.WarnContext(r.Context(), "Rate limit exceeded",
			log.FieldClientIP, security.ClientIP(r), log.FieldMethod, r.Method, log.FieldPath, r.URL.Path)
		ErrorResponse(http.StatusTooManyRequests, "Rate limit exceeded. Please try again later.").Write(w)
	})(handler)
	handler = log.RequestIDMiddleware(trace.FromRequest)(handler)
	handler = log.Middleware(logger)(handler)
	handler = security.NewHeadersMiddleware(security.DefaultHeadersConfig()).Middleware(handler)
	handler = s.tracer.Middleware(handler)

	s.Server = http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s
}

var templateFuncs = template.FuncMap{
	"currency": core.FormatCurrency,
	"fixed":    core.Fixed2,
}

// Shutdown stops the rate limiter and the HTTP server.
func (s *Server) Shutdown(ctx context.Context) error {
	var err error
	s.shutdownOnce.Do(func() {
		s.limiter.Stop()
		err = s.Server.Shutdown(ctx)
	})
	return err
}

// respond writes b with the ledger's persistence warning.
func (s *Server) respond(w http.ResponseWriter, b *ResponseBuilder) {
	b.PersistWarning(s.ledger.PersistWarning()).Write(w)
}

// fail logs unexpected errors and writes the mapped response.
func (s *Server) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	b := ErrorFor(err)
	if b.statusCode >= http.StatusInternalServerError {
		s.events.LogError(r.Context(), "Request failed", err, log.ComponentHTTP, op, nil)
	}
	s.respond(w, b)
}

// Package cli holds the startup steps shared by cmd/homefinances and
// cmd/homefin.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/joho/godotenv"

	"homefinances/internal/amqp"
	"homefinances/internal/backend"
	"homefinances/internal/config"
	"homefinances/internal/core"
	"homefinances/internal/log"
	"homefinances/internal/register"
	"homefinances/internal/services"
	"homefinances/internal/sheets"
	gsheet "homefinances/internal/sheets/google"
)

// SeedFile is the name of the optional register seed file under DATA_DIR.
const SeedFile = "register_seed.csv"

// SetupLogger builds the application logger from cfg and installs it as the
// slog default. A nil cfg gives the bootstrap logger; a nil out writes to
// stdout.
func SetupLogger(cfg *config.Config, out io.Writer) *log.Logger {
	lc := log.DefaultConfig()
	if out != nil {
		lc.Output = out
	}
	if cfg != nil {
		lc.Level = cfg.SlogLevel()
		lc.Format = cfg.LogFormat
	}
	logger := log.New(lc)
	log.SetDefault(logger)
	return logger
}

// LoadEnvFile loads .env for local development. A missing file is fine.
func LoadEnvFile() {
	_ = godotenv.Load()
}

// LoadAndValidateConfig loads the configuration and exits on any problem.
func LoadAndValidateConfig(logger *log.Logger) *config.Config {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", log.FieldError, err)
		os.Exit(1)
	}
	return cfg
}

// SignalContext is cancelled on SIGINT or SIGTERM.
func SignalContext(parent context.Context, logger *log.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(parent)
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		defer signal.Stop(sigChan)
		select {
		case sig := <-sigChan:
			logger.Info("Shutdown signal received", "signal", sig.String())
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// Runtime is an opened ledger with the connections behind it.
type Runtime struct {
	Ledger *services.LedgerService
	// AMQP is nil when the change broadcast is disabled.
	AMQP *amqp.Client
	Ping func(ctx context.Context) error

	cleanup []func() error
}

// Close releases the ledger store and the broker connection.
func (r *Runtime) Close() error {
	var first error
	for i := len(r.cleanup) - 1; i >= 0; i-- {
		if err := r.cleanup[i](); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// OpenLedger opens the configured backend and the optional Sheets and AMQP
// integrations, then loads the ledger. queueSuffix distinguishes the
// broadcast queue of this process from the others.
func OpenLedger(ctx context.Context, cfg *config.Config, logger *log.Logger, queueSuffix string) (*Runtime, error) {
	bcfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		return nil, err
	}
	if err := bcfg.Validate(); err != nil {
		return nil, err
	}

	res, err := backend.NewFactory(logger.WithComponent(log.ComponentBackend).Logger).CreateBackend(ctx, bcfg)
	if err != nil {
		return nil, fmt.Errorf("open %s backend: %w", bcfg.Type, err)
	}
	rt := &Runtime{Ping: res.Ping, cleanup: []func() error{res.Cleanup}}

	seeds, err := register.LoadSeedFile(filepath.Join(cfg.DataDir, SeedFile))
	if err != nil {
		logger.Warn("Register seed rows unavailable", log.FieldError, err)
	}

	var writer sheets.ReportWriter
	if cfg.SheetsEnabled() {
		client, err := gsheet.New(ctx, gsheet.Config{
			SpreadsheetID:   cfg.GoogleSpreadsheetID,
			SheetName:       cfg.GoogleSheetName,
			CredentialsFile: cfg.GoogleCredentialsFile,
			CredentialsJSON: cfg.GoogleCredentialsJSON,
		})
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("google sheets: %w", err)
		}
		writer = client
		logger.Info("Google Sheets export enabled", "spreadsheet_id", cfg.GoogleSpreadsheetID)
	}

	origin := core.NewID()
	opts := services.Options{
		Store:    res.Store,
		Sheets:   writer,
		Seeds:    seeds,
		Origin:   origin,
		CacheTTL: cfg.CacheTTL,
		Logger:   logger,
	}
	if cfg.AMQPURL != "" {
		queue := cfg.AMQPQueuePrefix + "." + queueSuffix + "." + origin
		client, err := amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, queue)
		if err != nil {
			_ = rt.Close()
			return nil, fmt.Errorf("amqp: %w", err)
		}
		rt.AMQP = client
		rt.cleanup = append(rt.cleanup, client.Close)
		opts.Publisher = client
		logger.Info("Slot change broadcast enabled", "exchange", cfg.AMQPExchange, "queue", queue)
	}

	rt.Ledger = services.NewLedgerService(ctx, opts)
	logger.Info("Ledger loaded",
		"backend", bcfg.Type.String(),
		"accounts", len(rt.Ledger.Accounts()),
		"seed_rows", len(seeds))
	return rt, nil
}

// Command homefinances serves the household finance tracker over HTTP.
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"homefinances/internal/cache"
	"homefinances/internal/cli"
	"homefinances/internal/config"
	apphttp "homefinances/internal/http"
	"homefinances/internal/log"
	"homefinances/internal/worker"
)

func main() {
	cli.LoadEnvFile()
	cfg := cli.LoadAndValidateConfig(cli.SetupLogger(nil, nil))
	logger := cli.SetupLogger(cfg, nil)

	if err := run(cfg, logger); err != nil {
		logger.Error("Server stopped with error", log.FieldError, err)
		os.Exit(1)
	}
	logger.Info("Server stopped gracefully")
}

func run(cfg *config.Config, logger *log.Logger) error {
	ctx, stop := cli.SignalContext(context.Background(), logger)
	defer stop()

	rt, err := cli.OpenLedger(ctx, cfg, logger, "server")
	if err != nil {
		return err
	}
	defer func() {
		if err := rt.Close(); err != nil {
			logger.Error("Failed to close backend", log.FieldError, err)
		}
	}()

	caches := cache.NewManager(logger.WithComponent(log.ComponentCache).Logger)
	for _, c := range rt.Ledger.Caches() {
		caches.Register(c)
	}
	caches.StartCleanup(time.Minute)
	defer caches.Stop()

	srv := apphttp.NewServer(":"+cfg.Port, rt.Ledger, apphttp.Options{
		RateLimitPerMinute: cfg.RateLimitPerMinute,
		Ping:               rt.Ping,
		Logger:             logger,
	})
	srv.ReadTimeout = 30 * time.Second
	srv.IdleTimeout = 60 * time.Second
	srv.MaxHeaderBytes = 1 << 16

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("Starting homefinances server",
			"port", cfg.Port, "backend", cfg.DataBackend, log.FieldOperation, log.OpStartup)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			logger.Error("Server shutdown error", log.FieldError, err, log.FieldOperation, log.OpShutdown)
		}
		return nil
	})
	if rt.AMQP != nil {
		w := worker.NewSlotWorker(rt.AMQP, rt.Ledger, logger)
		g.Go(func() error {
			err := w.Run(gctx)
			applied, ignored := w.Stats()
			logger.Info("Slot change worker stopped", "applied", applied, "ignored", ignored)
			return err
		})
	} else if cfg.SlotPollInterval > 0 && cfg.DataBackend != "memory" {
		poller := worker.NewSlotPoller(rt.Ledger, cfg.SlotPollInterval, logger)
		g.Go(func() error {
			err := poller.Run(gctx)
			logger.Info("Slot poller stopped", "reloaded", poller.Reloaded())
			return err
		})
	}
	if cfg.SheetsAutoSync {
		mirror := worker.NewSheetsSync(rt.Ledger.Hub(), rt.Ledger, logger)
		g.Go(func() error { return mirror.Run(gctx) })
	}

	return g.Wait()
}

package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/JonMunkholm/crunchclean/internal/config"
	"github.com/JonMunkholm/crunchclean/internal/core"
	"github.com/JonMunkholm/crunchclean/internal/logging"
	"github.com/JonMunkholm/crunchclean/internal/metrics"
	"github.com/JonMunkholm/crunchclean/internal/store"
	"github.com/JonMunkholm/crunchclean/internal/web"
	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	// Load .env file if it exists (Overload overwrites existing env vars)
	if err := godotenv.Overload(); err != nil {
		slog.Info("no .env file found, using environment variables")
	} else {
		slog.Info("loaded .env file (overwriting existing env vars)")
	}

	// Load and validate configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	// Setup structured logging based on config
	logging.Setup(cfg.Logging.Level, cfg.Logging.Format)

	slog.Info("configuration loaded",
		"port", cfg.Server.Port,
		"store_backend", cfg.Store.Backend,
		"result_ttl", cfg.Store.TTL,
		"upload_max_concurrent", cfg.Upload.MaxConcurrent,
		"rate_limit_enabled", cfg.Rate.Enabled,
	)
	slog.Debug("effective configuration", "config", cfg.String())

	// Open the result store
	ctx := context.Background()
	results, err := store.Open(ctx, cfg.Store)
	if err != nil {
		slog.Error("failed to open result store", "backend", cfg.Store.Backend, "error", err)
		os.Exit(1)
	}
	defer results.Close()

	service := core.NewService(results, core.ServiceOptions{
		MaxConcurrent: cfg.Upload.MaxConcurrent,
		MaxWait:       cfg.Upload.MaxWaitTime,
		Timeout:       cfg.Upload.Timeout,
		PreviewRows:   cfg.Upload.PreviewRows,
		Recorder:      metrics.New(prometheus.DefaultRegisterer),
	})

	server := web.NewServer(service, cfg)

	// Create cancellable context for background jobs
	jobCtx, cancelJobs := context.WithCancel(context.Background())
	go store.StartSweeper(jobCtx, results, cfg.Store.SweepInterval)

	// Graceful shutdown
	shutdownDone := make(chan struct{})
	go func() {
		defer close(shutdownDone)

		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
		<-sigCh

		slog.Info("shutting down...")

		// Stop background jobs
		cancelJobs()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()

		// Wait for active runs to complete (with timeout)
		status := service.LimiterStatus()
		if status.Active > 0 {
			slog.Info("waiting for cleaning runs to complete", "active", status.Active)
			if err := service.WaitForIdle(shutdownCtx); err != nil {
				slog.Warn("cleaning runs did not complete in time", "error", err)
			} else {
				slog.Info("all cleaning runs completed")
			}
		}

		if err := server.Shutdown(shutdownCtx); err != nil {
			slog.Error("shutdown error", "error", err)
		}
	}()

	if err := server.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("server stopped", "error", err)
		results.Close()
		os.Exit(1)
	}
	<-shutdownDone
	slog.Info("server stopped")
}

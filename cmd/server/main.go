package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	specpkg "github.com/daap14/flightclub/api"
	"github.com/daap14/flightclub/internal/api"
	"github.com/daap14/flightclub/internal/config"
	"github.com/daap14/flightclub/internal/metrics"
	"github.com/daap14/flightclub/internal/registration"
	"github.com/daap14/flightclub/internal/sink/postgres"
	"github.com/daap14/flightclub/internal/sink/sheets"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	setupLogger(cfg.LogLevel)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	m := metrics.New(reg)

	sink, closeSink, sinkErr := initSink(ctx, cfg)
	defer closeSink()
	if sinkErr != nil {
		slog.Warn("record sink not configured; submissions will fail", "driver", cfg.SinkDriver, "error", sinkErr)
	}

	svc := registration.NewService(registration.ServiceDeps{
		Sink:    sink,
		SinkErr: sinkErr,
		Driver:  cfg.SinkDriver,
		Metrics: m,
	})

	router := api.NewRouter(api.RouterDeps{
		Registrar:      svc,
		SinkChecker:    svc,
		Version:        cfg.Version,
		MaxBodyBytes:   cfg.MaxBodyBytes,
		RequestTimeout: cfg.RequestTimeout,
		OpenAPISpec:    specpkg.OpenAPISpec,
		Gatherer:       reg,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	serverErr := make(chan error, 1)
	go func() {
		slog.Info("starting registration server", "port", cfg.Port, "version", cfg.Version, "sink", cfg.SinkDriver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	select {
	case <-ctx.Done():
		slog.Info("shutting down server")
	case err := <-serverErr:
		slog.Error("server error", "error", err)
		os.Exit(1)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
		os.Exit(1)
	}

	slog.Info("server stopped gracefully")
}

func setupLogger(level string) {
	var logLevel slog.Level
	switch level {
	case "debug":
		logLevel = slog.LevelDebug
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}

	handler := slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: logLevel,
	})
	slog.SetDefault(slog.New(handler))
}

// initSink builds the configured record sink. A sink error does not stop the
// server; it is reported on every submission instead.
func initSink(ctx context.Context, cfg *config.Config) (registration.Sink, func(), error) {
	noop := func() {}

	switch cfg.SinkDriver {
	case config.SinkPostgres:
		pool, err := pgxpool.New(ctx, cfg.DatabaseURL)
		if err != nil {
			return nil, noop, fmt.Errorf("connecting to database: %w", err)
		}
		sink := postgres.New(pool, cfg.SinkTimeout)
		if err := sink.EnsureSchema(ctx); err != nil {
			slog.Warn("failed to ensure registrations schema", "error", err)
		}
		return sink, pool.Close, nil

	default:
		// The token source outlives ctx, which is cancelled on shutdown.
		sink, err := sheets.New(context.Background(), sheets.Config{
			ClientEmail: cfg.GoogleClientEmail,
			PrivateKey:  cfg.GooglePrivateKey,
			SheetID:     cfg.GoogleSheetID,
			Range:       cfg.GoogleSheetRange,
			Timeout:     cfg.SinkTimeout,
		})
		if err != nil {
			return nil, noop, err
		}
		return sink, noop, nil
	}
}

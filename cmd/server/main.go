package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"saucebottle/internal/api"
	"saucebottle/internal/config"
	"saucebottle/internal/db"
	"saucebottle/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		Level: cfg.SlogLevel(),
	}))
	slog.SetDefault(logger)

	logger.Info("starting sauce bottle api",
		"environment", cfg.Environment,
		"addr", cfg.Addr,
	)

	metrics := prometheus.NewRegistry()
	metrics.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	registry := db.NewRegistry()
	defer registry.Close()

	dbCfg := db.Config{
		URL:            cfg.DatabaseURL,
		PoolSize:       cfg.DBPoolSize,
		MaxOverflow:    cfg.DBMaxOverflow,
		DialTimeout:    cfg.DBDialTimeout,
		Logger:         logger,
		LogQueries:     cfg.LogQueries,
		LogSlowQueries: cfg.SlowQueryLog,
	}
	dbCfg = dbCfg.WithMetrics(metrics)

	engine, err := registry.Get(dbCfg)
	if err != nil {
		logger.Error("failed to open database", "error", err)
		os.Exit(1)
	}
	logger.Info("database ready", "backend", engine.Backend())

	factory := db.NewFactory(engine)

	// Schema bootstrap runs on a maintenance session before serving.
	session, err := factory.OpenBlocking()
	if err != nil {
		logger.Error("failed to open bootstrap session", "error", err)
		os.Exit(1)
	}
	if err := store.Schema(context.Background(), session.DB()); err != nil {
		_ = session.Close()
		logger.Error("schema bootstrap failed", "error", err)
		os.Exit(1)
	}
	_ = session.Close()

	handler := api.New(factory, logger)

	server := &http.Server{
		Addr:              cfg.Addr,
		Handler:           handler.Router(metrics),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.ListenAndServe()
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server failed", "error", err)
			os.Exit(1)
		}
	case sig := <-stop:
		logger.Info("shutting down", "signal", sig.String())

		ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()

		if err := server.Shutdown(ctx); err != nil {
			logger.Error("graceful shutdown failed", "error", err)
			os.Exit(1)
		}
	}

	logger.Info("server stopped")
}

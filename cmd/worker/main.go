package main

import (
	"context"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/leakwatch/assistant/internal/bootstrap"
	"github.com/leakwatch/assistant/internal/config"
	"github.com/leakwatch/assistant/internal/core/domain"
	"github.com/leakwatch/assistant/internal/observability/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("config error: %v", err)
	}
	slog.SetDefault(logging.NewJSONLogger("assistant-worker", cfg.LogLevel))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := bootstrap.New(ctx, cfg)
	if err != nil {
		log.Fatalf("bootstrap error: %v", err)
	}
	defer app.Close()

	// Backfill embeddings for entries added while the worker was down.
	reindexCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
	if _, err := app.Indexer.Reindex(reindexCtx); err != nil {
		slog.Warn("knowledge_reindex_failed", "error", err)
	}
	cancel()

	metricsServer := &http.Server{
		Addr:    ":" + cfg.WorkerMetricsPort,
		Handler: app.Metrics.Handler(),
	}
	go func() {
		slog.Info("worker_metrics_listening", "port", cfg.WorkerMetricsPort)
		if err := metricsServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.Error("worker_metrics_server_error", "error", err)
		}
	}()

	slog.Info("worker_started", "subject", cfg.NATSSubject)
	err = app.Queue.SubscribeTurns(ctx, func(handlerCtx context.Context, turn domain.AuditTurn) error {
		insertCtx, cancel := context.WithTimeout(handlerCtx, 10*time.Second)
		defer cancel()
		return app.AuditRepo.InsertTurn(insertCtx, turn)
	})
	if err != nil {
		log.Fatalf("subscribe error: %v", err)
	}

	shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelShutdown()
	_ = metricsServer.Shutdown(shutdownCtx)
	slog.Info("worker_stopped")
}

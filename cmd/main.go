package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/pictodeck/ranker/internal/adapters/http/api"
	"github.com/pictodeck/ranker/internal/adapters/http/swagger"
	app "github.com/pictodeck/ranker/internal/app"
	"github.com/pictodeck/ranker/internal/config"
	"github.com/pictodeck/ranker/internal/domain/forest"
	"github.com/pictodeck/ranker/internal/domain/trainer"
	"github.com/pictodeck/ranker/pkg/logger"
)

// HTTP server timeout constants.
const (
	readTimeout       = 10 * time.Second
	writeTimeout      = 30 * time.Second
	idleTimeout       = 60 * time.Second
	readHeaderTimeout = 5 * time.Second
	shutdownTimeout   = 30 * time.Second
)

func main() {
	// Disable default Go metrics collection; the custom registry carries
	// the service's own collectors.
	prometheus.Unregister(collectors.NewGoCollector())
	prometheus.Unregister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}
	defer func() {
		_ = logger.Sync()
	}()

	log := logger.Get()

	// Root context with cancel on SIGINT/SIGTERM.
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Load configuration (defaults -> optional file -> env).
	cfg, err := config.Load(ctx)
	if err != nil {
		os.Stderr.WriteString("failed to load config: " + err.Error() + "\n")
		return
	}

	// Apply configured log level (fallback to info on invalid input).
	if err := logger.SetLevelString(cfg.LogLevel); err != nil {
		log.Warn(ctx, "invalid log_level; falling back to info", logger.String("log_level", cfg.LogLevel), logger.Error(err))
		_ = logger.SetLevelString("info")
	}

	svc := app.New(
		app.WithLogger(log),
		app.WithWorkerCount(cfg.WorkerCount),
		app.WithQueueSize(cfg.EventQueueSize),
		app.WithDedupeSize(cfg.DedupeSize),
		app.WithShardCount(cfg.ShardCount),
		app.WithLedgerBackend(cfg.LedgerBackend),
		app.WithRedisAddr(cfg.RedisAddr, cfg.RedisDB),
		app.WithArtifactPath(cfg.ArtifactPath),
		app.WithTestFraction(cfg.TestFraction),
		app.WithForestOptions(
			forest.WithTreeCount(cfg.ForestTrees),
			forest.WithMaxDepth(cfg.ForestMaxDepth),
			forest.WithSeed(cfg.ForestSeed),
		),
	)
	if err := svc.Start(ctx); err != nil {
		os.Stderr.WriteString("failed to start service: " + err.Error() + "\n")
		return
	}
	defer svc.Stop(context.Background())

	if cfg.TrainIntervalMinutes > 0 {
		go startRetrainLoop(ctx, svc, time.Duration(cfg.TrainIntervalMinutes)*time.Minute)
	}

	// HTTP mux and routes.
	mux := http.NewServeMux()

	swagger.Register(ctx, mux)

	apiServer := api.NewServer(svc, svc)
	apiServer.Register(ctx, mux)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           mux,
		ReadTimeout:       readTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Info(ctx, "starting HTTP server", logger.String("addr", cfg.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			os.Stderr.WriteString("HTTP server failed: " + err.Error() + "\n")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info(ctx, "shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error(ctx, "server shutdown failed", logger.Error(err))
	}

	log.Info(ctx, "server stopped")
}

// startRetrainLoop periodically retrains on ledger contents so the served
// bundle keeps up with fresh interactions. An empty ledger just skips the
// cycle.
func startRetrainLoop(ctx context.Context, svc *app.Service, interval time.Duration) {
	log := logger.Named("retrain")
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			report, err := svc.Train(ctx)
			switch {
			case errors.Is(err, trainer.ErrEmptyDataset):
				log.Debug(ctx, "no interactions recorded yet, skipping retrain")
			case errors.Is(err, app.ErrTrainingInProgress):
				log.Debug(ctx, "training already in progress, skipping retrain")
			case err != nil:
				log.Error(ctx, "scheduled retrain failed", logger.Error(err))
			default:
				log.Info(ctx, "scheduled retrain complete",
					logger.Int("rows_trained", report.RowsTrained),
					logger.Int("users", report.Users),
					logger.Int("cards", report.Cards),
				)
			}
		}
	}
}

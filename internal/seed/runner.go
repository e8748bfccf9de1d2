package seed

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/pictodeck/ranker/pkg/logger"
)

// processingWait gives workers time to drain the queue before training.
const processingWait = 2 * time.Second

// Run seeds the service with fake interactions and optionally trains.
func Run(ctx context.Context, cfg *Config) error {
	stats := &Stats{StartTime: time.Now()}
	log := logger.Get().Named("seed")

	log.Info(ctx, "seeding interactions",
		logger.String("baseURL", cfg.BaseURL),
		logger.Int("users", cfg.Users),
		logger.Int("cards", cfg.Cards),
		logger.Int("days", cfg.Days),
		logger.Int("workers", cfg.Workers),
	)

	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	interactions := generate(cfg, rng)
	stats.Generated = len(interactions)
	log.Info(ctx, "generated interactions", logger.Int("count", stats.Generated))

	if err := submit(ctx, cfg, interactions, stats); err != nil {
		return fmt.Errorf("interaction submission failed: %w", err)
	}

	stats.Duration = time.Since(stats.StartTime)
	log.Info(ctx, "seeding complete",
		logger.Int64("successful", stats.Successful),
		logger.Int64("duplicate", stats.Duplicate),
		logger.Int64("failed", stats.Failed),
		logger.Duration("duration", stats.Duration),
	)
	if stats.Failed > 0 {
		return fmt.Errorf("%d of %d submissions failed", stats.Failed, stats.Generated)
	}

	if !cfg.Train {
		return nil
	}

	log.Info(ctx, "waiting for queue to drain before training")
	time.Sleep(processingWait)

	report, err := train(ctx, cfg)
	if err != nil {
		return err
	}
	log.Info(ctx, "training complete", logger.Any("report", report))
	return nil
}

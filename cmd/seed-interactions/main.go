package main

import (
	"context"
	"flag"
	"os"
	"runtime"
	"time"

	"github.com/pictodeck/ranker/internal/seed"
	"github.com/pictodeck/ranker/pkg/logger"
)

// Default configuration constants.
const (
	defaultUsers       = 50
	defaultCards       = 30
	defaultDays        = 7
	defaultTimeout     = 30 * time.Second
	defaultSeedTimeout = 10 * time.Minute
)

func main() {
	var (
		baseURL = flag.String("url", "http://localhost:9080", "Base URL of the service")
		users   = flag.Int("users", defaultUsers, "Number of distinct users to seed")
		cards   = flag.Int("cards", defaultCards, "Number of distinct cards to seed")
		days    = flag.Int("days", defaultDays, "Number of days to spread clicks over")
		workers = flag.Int("workers", runtime.NumCPU()*2, "Number of concurrent submitters")
		timeout = flag.Duration("timeout", defaultTimeout, "HTTP request timeout")
		train   = flag.Bool("train", false, "Trigger a training run after seeding")
	)
	flag.Parse()

	if err := logger.Init(); err != nil {
		os.Stderr.WriteString("failed to initialize logging: " + err.Error() + "\n")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultSeedTimeout)
	defer cancel()

	cfg := &seed.Config{
		BaseURL: *baseURL,
		Users:   *users,
		Cards:   *cards,
		Days:    *days,
		Workers: *workers,
		Timeout: *timeout,
		Train:   *train,
	}

	if err := seed.Run(ctx, cfg); err != nil {
		os.Stderr.WriteString("Seeding failed: " + err.Error() + "\n")
		os.Exit(1)
	}
}

// Package config defines service configuration structures and loading hooks.
package config

import "runtime"

// Config contains process configuration.
type Config struct {
	// LogLevel controls verbosity: debug, info, warn, error.
	LogLevel string `koanf:"log_level"`

	// Addr configures the HTTP listen address, e.g. ":8080".
	Addr string `koanf:"addr"`

	// EventQueueSize bounds the in-memory click event queue.
	EventQueueSize int `koanf:"queue_size"`

	// WorkerCount sets the number of ledger workers.
	WorkerCount int `koanf:"worker_count"`

	// DedupeSize sets the size of the deduplication cache.
	DedupeSize int `koanf:"dedupe_size"`

	// ShardCount configures the number of shards in the in-memory ledger.
	ShardCount int `koanf:"shard_count"`

	// LedgerBackend selects the ledger storage: memory or redis.
	LedgerBackend string `koanf:"ledger_backend"`

	// RedisAddr and RedisDB configure the redis ledger backend.
	RedisAddr string `koanf:"redis_addr"`
	RedisDB   int    `koanf:"redis_db"`

	// ArtifactPath is where the trained bundle is persisted.
	ArtifactPath string `koanf:"artifact_path"`

	// TrainIntervalMinutes schedules periodic retraining; 0 disables it.
	TrainIntervalMinutes int `koanf:"train_interval_minutes"`

	// Model tuning.
	ForestTrees    int     `koanf:"forest_trees"`
	ForestMaxDepth int     `koanf:"forest_max_depth"`
	ForestSeed     int64   `koanf:"forest_seed"`
	TestFraction   float64 `koanf:"test_fraction"`
}

// New creates a Config with defaults.
func New() *Config {
	return &Config{
		LogLevel:             "info",
		Addr:                 ":9080",
		EventQueueSize:       100_000,
		WorkerCount:          runtime.NumCPU() * 4,
		DedupeSize:           500_000,
		ShardCount:           8,
		LedgerBackend:        "memory",
		RedisAddr:            "localhost:6379",
		RedisDB:              0,
		ArtifactPath:         "data/bundle.json",
		TrainIntervalMinutes: 0,
		ForestTrees:          100,
		ForestMaxDepth:       12,
		ForestSeed:           42,
		TestFraction:         0.2,
	}
}

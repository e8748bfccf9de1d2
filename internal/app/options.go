package service

import (
	"github.com/pictodeck/ranker/internal/domain/forest"
	"github.com/pictodeck/ranker/pkg/logger"
)

// Option applies a configuration option to the Service.
type Option func(*Service)

// WithWorkerCount sets the number of worker goroutines.
func WithWorkerCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.workerCount = count
		}
	}
}

// WithQueueSize sets the maximum size of the event queue.
func WithQueueSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.queueSize = size
		}
	}
}

// WithDedupeSize sets the size of the deduplication cache.
func WithDedupeSize(size int) Option {
	return func(s *Service) {
		if size > 0 {
			s.dedupeSize = size
		}
	}
}

// WithShardCount sets the number of lock shards for the in-memory ledger.
func WithShardCount(count int) Option {
	return func(s *Service) {
		if count > 0 {
			s.shardCount = count
		}
	}
}

// WithLedgerBackend selects the ledger storage backend, "memory" or "redis".
func WithLedgerBackend(backend string) Option {
	return func(s *Service) {
		if backend != "" {
			s.ledgerBackend = backend
		}
	}
}

// WithRedisAddr sets the redis address used by the redis ledger backend.
func WithRedisAddr(addr string, db int) Option {
	return func(s *Service) {
		s.redisAddr = addr
		s.redisDB = db
	}
}

// WithArtifactPath sets the path the published bundle is persisted at.
func WithArtifactPath(path string) Option {
	return func(s *Service) {
		if path != "" {
			s.artifactPath = path
		}
	}
}

// WithForestOptions forwards tuning options to the trained model.
func WithForestOptions(opts ...forest.Option) Option {
	return func(s *Service) {
		s.forestOpts = opts
	}
}

// WithTestFraction sets the held-out fraction for training runs.
func WithTestFraction(fraction float64) Option {
	return func(s *Service) {
		if fraction > 0 && fraction < 1 {
			s.testFraction = fraction
		}
	}
}

// WithLogger sets a custom logger for the service.
func WithLogger(logger logger.Logger) Option {
	return func(s *Service) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// Package service provides the core business service that implements
// the dependencies required by the HTTP API.
package service

import (
	"context"
	"errors"
	"fmt"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/pictodeck/ranker/internal/adapters/artifact"
	eventqueue "github.com/pictodeck/ranker/internal/adapters/mq/queue"
	workerpool "github.com/pictodeck/ranker/internal/adapters/mq/worker"
	"github.com/pictodeck/ranker/internal/adapters/repository"
	"github.com/pictodeck/ranker/internal/domain/dedupe"
	"github.com/pictodeck/ranker/internal/domain/forest"
	"github.com/pictodeck/ranker/internal/domain/model"
	"github.com/pictodeck/ranker/internal/domain/ranker"
	"github.com/pictodeck/ranker/internal/domain/trainer"
	"github.com/pictodeck/ranker/pkg/logger"
	"github.com/pictodeck/ranker/pkg/metrics"
)

// Ledger backend names accepted by WithLedgerBackend.
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

const defaultArtifactPath = "data/bundle.json"

// Service wires the ingestion pipeline, the trainer, and the inference
// ranker behind one facade for the HTTP API.
type Service struct {
	mu sync.RWMutex

	// Core components
	ledger     repository.Ledger
	deduper    dedupe.Deduper
	eventQueue eventqueue.Queue
	workerPool *workerpool.Pool
	trainer    *trainer.Trainer
	ranker     *ranker.Ranker
	artifacts  *artifact.Store

	// Configuration
	workerCount   int
	queueSize     int
	dedupeSize    int
	shardCount    int
	ledgerBackend string
	redisAddr     string
	redisDB       int
	artifactPath  string
	forestOpts    []forest.Option
	testFraction  float64

	// State
	started       bool
	trainInFlight atomic.Bool
	lastReport    atomic.Pointer[model.TrainingReport]

	// Logging
	logger logger.Logger
}

// New constructs a new Service with default configuration.
func New(opts ...Option) *Service {
	s := &Service{
		workerCount:   runtime.NumCPU() * 2,
		queueSize:     100000,
		dedupeSize:    50000,
		ledgerBackend: BackendMemory,
		artifactPath:  defaultArtifactPath,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Start initializes and starts the service components. An existing bundle
// artifact on disk is loaded so ranking survives restarts; a cold start
// without one is not an error.
func (s *Service) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if s.logger == nil {
		s.logger = logger.Get()
	}

	s.logger.Info(ctx, "starting ranker service...")

	switch s.ledgerBackend {
	case BackendRedis:
		ledger, err := repository.NewRedisLedger(ctx, s.redisAddr, s.redisDB)
		if err != nil {
			return fmt.Errorf("start redis ledger: %w", err)
		}
		s.ledger = ledger
		s.logger.Info(ctx, "using redis ledger", logger.String("addr", s.redisAddr))
	default:
		var memOpts []repository.MemoryOption
		if s.shardCount > 0 {
			memOpts = append(memOpts, repository.WithShardCount(s.shardCount))
		}
		s.ledger = repository.NewMemoryLedger(memOpts...)
		s.logger.Info(ctx, "using in-memory ledger")
	}

	s.deduper = dedupe.NewInMemoryDeduper(
		dedupe.WithMaxSize(s.dedupeSize),
	)
	s.eventQueue = eventqueue.NewInMemoryQueue(
		eventqueue.WithCapacity(s.queueSize),
	)

	trainerOpts := []trainer.Option{
		trainer.WithForestOptions(s.forestOpts...),
		trainer.WithLogger(s.logger.Named("trainer")),
	}
	if s.testFraction > 0 {
		trainerOpts = append(trainerOpts, trainer.WithTestFraction(s.testFraction))
	}
	s.trainer = trainer.New(trainerOpts...)
	s.ranker = ranker.New(ranker.WithLogger(s.logger.Named("ranker")))
	s.artifacts = artifact.NewStore(s.artifactPath,
		artifact.WithLogger(s.logger.Named("artifact")))

	if err := s.artifacts.Load(ctx); err != nil {
		if !errors.Is(err, artifact.ErrNoArtifact) {
			return fmt.Errorf("load bundle artifact: %w", err)
		}
		s.logger.Info(ctx, "no bundle artifact found, serving unranked until first training run")
	}

	s.workerPool = workerpool.NewPool(s.workerCount, s.eventQueue, s.ledger)
	s.workerPool.Start(ctx)

	s.started = true
	s.logger.Info(ctx, "ranker service started",
		logger.Int("workers", s.workerCount),
		logger.Int("queueSize", s.queueSize),
		logger.Int("dedupeSize", s.dedupeSize),
		logger.String("ledger", s.ledgerBackend),
	)

	return nil
}

// Stop gracefully shuts down the service, draining queued events into the
// ledger before workers exit.
func (s *Service) Stop(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	s.logger.Info(ctx, "stopping ranker service...")

	if s.workerPool != nil {
		_ = s.workerPool.Shutdown(ctx)
	}

	if closer, ok := s.ledger.(interface{ Close() error }); ok {
		_ = closer.Close()
	}

	s.started = false
	s.logger.Info(ctx, "ranker service stopped")
}

// SeenAndRecord atomically checks if an event id was seen and records it if
// not. Returns true if the event was already seen.
func (s *Service) SeenAndRecord(ctx context.Context, id string) bool {
	seen := s.deduper.SeenAndRecord(ctx, id)
	if seen {
		metrics.RecordEventDuplicate()
	}
	return seen
}

// Unrecord removes an event ID from the seen list, allowing it to be retried.
func (s *Service) Unrecord(ctx context.Context, id string) {
	s.deduper.Unrecord(ctx, id)
}

// RecordClick validates, deduplicates, and enqueues a click event for
// asynchronous ledger application. Events without an explicit EventID get a
// fresh one; events without bucket bounds get the current wall-clock hour.
// The boolean reports whether the event was dropped as a duplicate.
func (s *Service) RecordClick(ctx context.Context, e model.ClickEvent) (bool, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return false, ErrNotStarted
	}

	if strings.TrimSpace(e.UserID) == "" {
		return false, fmt.Errorf("%w: missing user id", ErrInvalidEvent)
	}
	if strings.TrimSpace(e.CardID) == "" {
		return false, fmt.Errorf("%w: missing card id", ErrInvalidEvent)
	}
	if e.Count == 0 {
		e.Count = 1
	}
	if e.Count < 0 {
		return false, fmt.Errorf("%w: count must be positive, got %d", ErrInvalidEvent, e.Count)
	}

	if e.TS.IsZero() {
		e.TS = time.Now().UTC()
	}
	if e.BucketStart.IsZero() {
		e.BucketStart = model.TruncateToHour(e.TS)
	}
	if e.BucketEnd.IsZero() {
		e.BucketEnd = e.BucketStart.Add(time.Hour)
	}
	if e.EventID == "" {
		e.EventID = uuid.NewString()
	}

	if s.SeenAndRecord(ctx, e.EventID) {
		s.logger.Debug(ctx, "duplicate event detected, skipping",
			logger.String("eventID", e.EventID),
			logger.String("userID", e.UserID),
		)
		return true, nil
	}

	if !s.eventQueue.Enqueue(ctx, e) {
		// Let the client retry the same event id once the queue drains.
		s.Unrecord(ctx, e.EventID)
		return false, ErrBackpressure
	}
	return false, nil
}

// Rank orders cards for userID by predicted engagement at hour. Pass a
// negative hour to use the current wall-clock hour. Ranking never fails the
// request: with no bundle, or when prediction breaks, the input order is
// served and the second return value reports that no model ranking applied.
func (s *Service) Rank(ctx context.Context, userID string, cards []model.Card, hour int) ([]model.Card, int, bool) {
	if hour < 0 || hour > 23 {
		hour = time.Now().UTC().Hour()
	}

	start := time.Now()
	defer func() {
		metrics.RecordRankLatency(float64(time.Since(start).Milliseconds()))
	}()

	b, err := s.artifacts.Current()
	if err != nil {
		// No bundle yet: the board still loads, just unranked.
		metrics.RecordRankRequest()
		metrics.RecordRankUnrankedServe()
		return cards, hour, false
	}

	ranked, err := s.ranker.Rank(ctx, userID, cards, hour, b)
	if err != nil {
		metrics.RecordRankUnrankedServe()
		metrics.RecordErrorByComponent("ranker", "prediction_failed")
		s.logger.Error(ctx, "ranking failed, serving unranked",
			logger.String("userID", userID),
			logger.Error(err),
		)
		return cards, hour, false
	}
	return ranked, hour, true
}

// Train snapshots the ledger, fits a fresh bundle, and atomically publishes
// it. At most one run proceeds at a time; concurrent calls get
// ErrTrainingInProgress.
func (s *Service) Train(ctx context.Context) (*model.TrainingReport, error) {
	s.mu.RLock()
	started := s.started
	s.mu.RUnlock()
	if !started {
		return nil, ErrNotStarted
	}

	if !s.trainInFlight.CompareAndSwap(false, true) {
		return nil, ErrTrainingInProgress
	}
	defer s.trainInFlight.Store(false)

	metrics.RecordTrainingRun()
	start := time.Now()

	snapshot, err := s.ledger.Snapshot(ctx)
	if err != nil {
		metrics.RecordTrainingFailure()
		return nil, fmt.Errorf("snapshot ledger: %w", err)
	}

	b, report, err := s.trainer.Train(ctx, snapshot)
	if err != nil {
		metrics.RecordTrainingFailure()
		return nil, err
	}

	if err := s.artifacts.Publish(ctx, b); err != nil {
		metrics.RecordTrainingFailure()
		return nil, fmt.Errorf("publish bundle: %w", err)
	}

	metrics.RecordTrainingDuration(time.Since(start).Seconds())
	metrics.UpdateTrainingRows(report.RowsTrained, report.RowsHeldOut)
	s.lastReport.Store(report)

	return report, nil
}

// LastTrainingReport returns the report of the most recent successful
// training run, or nil when none has completed yet.
func (s *Service) LastTrainingReport() *model.TrainingReport {
	return s.lastReport.Load()
}

// HasBundle reports whether a trained bundle is currently being served.
func (s *Service) HasBundle() bool {
	_, err := s.artifacts.Current()
	return err == nil
}

// GetStats returns service statistics for monitoring.
func (s *Service) GetStats() map[string]interface{} {
	s.mu.RLock()
	defer s.mu.RUnlock()

	ctx := context.Background()
	stats := map[string]interface{}{
		"started":       s.started,
		"workerCount":   s.workerCount,
		"queueSize":     s.queueSize,
		"dedupeSize":    s.dedupeSize,
		"ledgerBackend": s.ledgerBackend,
	}

	if s.started {
		queueLen := s.eventQueue.Len(ctx)
		ledgerRecords := s.ledger.Count(ctx)

		stats["queueLength"] = queueLen
		stats["ledgerRecords"] = ledgerRecords
		stats["bundleLoaded"] = s.HasBundle()
		if report := s.lastReport.Load(); report != nil {
			stats["lastTraining"] = report
		}

		metrics.UpdateQueueSize(queueLen)
		metrics.UpdateLedgerRecords(ledgerRecords)
		metrics.UpdateWorkerCount(s.workerCount)
	}

	return stats
}

// Size returns the current number of entries in the deduper.
func (s *Service) Size() int64 {
	if s.deduper == nil {
		return 0
	}
	return s.deduper.Size()
}

package repository

import (
	"context"
	"hash/fnv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pictodeck/ranker/internal/domain/model"
	"github.com/pictodeck/ranker/pkg/metrics"
)

// defaultShardCount spreads unrelated triples over independent locks so the
// insert-or-merge of one key never serializes against another.
const defaultShardCount = 8

// tripleKey identifies the unique ledger record for a click observation.
type tripleKey struct {
	userID      string
	cardID      string
	bucketStart int64 // unix seconds of the truncated bucket start
}

type shard struct {
	mu      sync.RWMutex
	records map[tripleKey]*model.Interaction
}

// MemoryLedger is a sharded in-memory Ledger implementation. The
// insert-or-merge for a triple happens under its shard lock, which makes it
// atomic with respect to the uniqueness constraint.
type MemoryLedger struct {
	shards     []*shard
	shardCount int
	size       atomic.Int64
}

// NewMemoryLedger creates an in-memory ledger with configuration options.
func NewMemoryLedger(opts ...MemoryOption) *MemoryLedger {
	l := &MemoryLedger{
		shardCount: defaultShardCount,
	}

	for _, opt := range opts {
		opt(l)
	}

	l.shards = make([]*shard, l.shardCount)
	for i := range l.shards {
		l.shards[i] = &shard{records: make(map[tripleKey]*model.Interaction)}
	}

	return l
}

func (l *MemoryLedger) shardFor(k tripleKey) *shard {
	h := fnv.New32a()
	_, _ = h.Write([]byte(k.userID))
	_, _ = h.Write([]byte{0})
	_, _ = h.Write([]byte(k.cardID))
	return l.shards[int(h.Sum32())%l.shardCount]
}

// RecordClick implements Ledger.
func (l *MemoryLedger) RecordClick(_ context.Context, userID, cardID string, bucketStart, bucketEnd time.Time, count int64) (bool, error) {
	if err := validateClick(userID, cardID, count); err != nil {
		metrics.RecordInteractionRejected()
		return false, err
	}

	k := tripleKey{userID: userID, cardID: cardID, bucketStart: bucketStart.Unix()}
	s := l.shardFor(k)

	s.mu.Lock()
	defer s.mu.Unlock()

	if rec, ok := s.records[k]; ok {
		rec.ClickCount += count
		rec.BucketEnd = bucketEnd // last write wins, no ordering check
		metrics.RecordInteractionMerged()
		return false, nil
	}

	s.records[k] = &model.Interaction{
		UserID:      userID,
		CardID:      cardID,
		BucketStart: bucketStart,
		BucketEnd:   bucketEnd,
		ClickCount:  count,
		CreatedAt:   time.Now().UTC(),
	}
	metrics.RecordInteractionCreated()
	metrics.UpdateLedgerRecords(int(l.size.Add(1)))
	return true, nil
}

// Snapshot implements Ledger. Records are copied so the trainer can work on
// them while logging continues.
func (l *MemoryLedger) Snapshot(_ context.Context) ([]model.Interaction, error) {
	var out []model.Interaction
	for _, s := range l.shards {
		s.mu.RLock()
		for _, rec := range s.records {
			out = append(out, *rec)
		}
		s.mu.RUnlock()
	}
	return out, nil
}

// Count implements Ledger.
func (l *MemoryLedger) Count(_ context.Context) int {
	return int(l.size.Load())
}

package repository

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/pictodeck/ranker/internal/domain/model"
	"github.com/pictodeck/ranker/pkg/metrics"
)

const defaultKeyPrefix = "ranker:ledger"

// RedisLedger is a redis-backed Ledger implementation. Each triple lives in
// one hash; HIncrBy gives the atomic insert-or-merge the contract requires,
// so concurrent writers for the same triple resolve into a merge at the
// server with no lock on this side.
type RedisLedger struct {
	client *redis.Client
	prefix string
}

// NewRedisLedger connects to redis and verifies the connection.
func NewRedisLedger(ctx context.Context, addr string, db int, opts ...RedisOption) (*RedisLedger, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
		DB:   db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("connect redis ledger: %w", err)
	}

	l := &RedisLedger{
		client: client,
		prefix: defaultKeyPrefix,
	}

	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

func (l *RedisLedger) recordKey(userID, cardID string, bucketStart time.Time) string {
	return fmt.Sprintf("%s:%s:%s:%d", l.prefix, userID, cardID, bucketStart.Unix())
}

func (l *RedisLedger) indexKey() string {
	return l.prefix + ":keys"
}

// RecordClick implements Ledger.
func (l *RedisLedger) RecordClick(ctx context.Context, userID, cardID string, bucketStart, bucketEnd time.Time, count int64) (bool, error) {
	if err := validateClick(userID, cardID, count); err != nil {
		metrics.RecordInteractionRejected()
		return false, err
	}

	key := l.recordKey(userID, cardID, bucketStart)

	// The increment decides created-vs-merged: the writer whose increment
	// produced exactly count wrote the first field of the hash.
	total, err := l.client.HIncrBy(ctx, key, "click_count", count).Result()
	if err != nil {
		return false, fmt.Errorf("increment click count: %w", err)
	}
	created := total == count

	pipe := l.client.Pipeline()
	pipe.HSet(ctx, key, "bucket_end", bucketEnd.UTC().Format(time.RFC3339))
	if created {
		pipe.HSet(ctx, key,
			"user_id", userID,
			"card_id", cardID,
			"bucket_start", bucketStart.UTC().Format(time.RFC3339),
			"created_at", time.Now().UTC().Format(time.RFC3339),
		)
		pipe.SAdd(ctx, l.indexKey(), key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return false, fmt.Errorf("write ledger record: %w", err)
	}

	if created {
		metrics.RecordInteractionCreated()
		metrics.UpdateLedgerRecords(l.Count(ctx))
	} else {
		metrics.RecordInteractionMerged()
	}
	return created, nil
}

// Snapshot implements Ledger.
func (l *RedisLedger) Snapshot(ctx context.Context) ([]model.Interaction, error) {
	keys, err := l.client.SMembers(ctx, l.indexKey()).Result()
	if err != nil {
		return nil, fmt.Errorf("list ledger keys: %w", err)
	}

	pipe := l.client.Pipeline()
	cmds := make([]*redis.MapStringStringCmd, len(keys))
	for i, key := range keys {
		cmds[i] = pipe.HGetAll(ctx, key)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return nil, fmt.Errorf("read ledger records: %w", err)
	}

	out := make([]model.Interaction, 0, len(keys))
	for _, cmd := range cmds {
		fields := cmd.Val()
		if len(fields) == 0 {
			continue
		}
		rec, err := interactionFromFields(fields)
		if err != nil {
			return nil, err
		}
		out = append(out, rec)
	}
	return out, nil
}

// Count implements Ledger.
func (l *RedisLedger) Count(ctx context.Context) int {
	n, err := l.client.SCard(ctx, l.indexKey()).Result()
	if err != nil {
		return 0
	}
	return int(n)
}

// Close releases the redis connection.
func (l *RedisLedger) Close() error {
	return l.client.Close()
}

func interactionFromFields(fields map[string]string) (model.Interaction, error) {
	clicks, err := strconv.ParseInt(fields["click_count"], 10, 64)
	if err != nil {
		return model.Interaction{}, fmt.Errorf("parse click count: %w", err)
	}
	bucketStart, err := time.Parse(time.RFC3339, fields["bucket_start"])
	if err != nil {
		return model.Interaction{}, fmt.Errorf("parse bucket start: %w", err)
	}
	bucketEnd, err := time.Parse(time.RFC3339, fields["bucket_end"])
	if err != nil {
		return model.Interaction{}, fmt.Errorf("parse bucket end: %w", err)
	}
	createdAt, err := time.Parse(time.RFC3339, fields["created_at"])
	if err != nil {
		return model.Interaction{}, fmt.Errorf("parse created at: %w", err)
	}
	return model.Interaction{
		UserID:      fields["user_id"],
		CardID:      fields["card_id"],
		BucketStart: bucketStart,
		BucketEnd:   bucketEnd,
		ClickCount:  clicks,
		CreatedAt:   createdAt,
	}, nil
}

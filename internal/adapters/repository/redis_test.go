package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
)

// redisAddr returns the address of a redis instance for integration tests,
// or skips the test when none is configured.
func redisAddr(t *testing.T) string {
	t.Helper()
	addr := os.Getenv("RANKER_TEST_REDIS")
	if addr == "" {
		t.Skip("set RANKER_TEST_REDIS to run redis ledger tests")
	}
	return addr
}

func TestRedisLedger_InsertMergeSnapshot(t *testing.T) {
	ctx := context.Background()
	addr := redisAddr(t)

	prefix := "ranker:test:" + uuid.NewString()
	ledger, err := NewRedisLedger(ctx, addr, 0, WithKeyPrefix(prefix))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer ledger.Close()

	start := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)
	end := start.Add(time.Hour)

	created, err := ledger.RecordClick(ctx, "u1", "c1", start, end, 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected first write to create a record")
	}

	laterEnd := start.Add(2 * time.Hour)
	created, err = ledger.RecordClick(ctx, "u1", "c1", start, laterEnd, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected second write to merge, not create")
	}

	if count := ledger.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	snapshot, err := ledger.Snapshot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 record, got %d", len(snapshot))
	}
	rec := snapshot[0]
	if rec.UserID != "u1" || rec.CardID != "c1" {
		t.Errorf("unexpected identity: %s/%s", rec.UserID, rec.CardID)
	}
	if rec.ClickCount != 7 {
		t.Errorf("expected merged click count 7, got %d", rec.ClickCount)
	}
	if !rec.BucketStart.Equal(start) {
		t.Errorf("expected bucket start %v, got %v", start, rec.BucketStart)
	}
	if !rec.BucketEnd.Equal(laterEnd) {
		t.Errorf("expected bucket end %v, got %v", laterEnd, rec.BucketEnd)
	}
}

func TestRedisLedger_Validation(t *testing.T) {
	ctx := context.Background()
	addr := redisAddr(t)

	ledger, err := NewRedisLedger(ctx, addr, 0, WithKeyPrefix("ranker:test:"+uuid.NewString()))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	defer ledger.Close()

	start := time.Now().UTC().Truncate(time.Hour)
	if _, err := ledger.RecordClick(ctx, "", "c1", start, start.Add(time.Hour), 1); err == nil {
		t.Error("expected validation error for empty user id")
	}
}

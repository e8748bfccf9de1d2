package repository

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"
)

var bucket9 = time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)

func TestMemoryLedger_InsertThenMerge(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	created, err := ledger.RecordClick(ctx, "u1", "c1", bucket9, bucket9.Add(time.Hour), 3)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !created {
		t.Error("expected first write to create a record")
	}
	if count := ledger.Count(ctx); count != 1 {
		t.Errorf("expected count 1, got %d", count)
	}

	laterEnd := bucket9.Add(90 * time.Minute)
	created, err = ledger.RecordClick(ctx, "u1", "c1", bucket9, laterEnd, 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if created {
		t.Error("expected second write to merge, not create")
	}
	if count := ledger.Count(ctx); count != 1 {
		t.Errorf("expected count to stay 1 after merge, got %d", count)
	}

	snapshot, err := ledger.Snapshot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 record, got %d", len(snapshot))
	}
	rec := snapshot[0]
	if rec.ClickCount != 7 {
		t.Errorf("expected merged click count 7, got %d", rec.ClickCount)
	}
	if !rec.BucketEnd.Equal(laterEnd) {
		t.Errorf("expected bucket end %v, got %v", laterEnd, rec.BucketEnd)
	}
}

func TestMemoryLedger_TripleUniqueness(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	end := bucket9.Add(time.Hour)
	writes := []struct {
		user, card string
		start      time.Time
	}{
		{"u1", "c1", bucket9},
		{"u1", "c2", bucket9},
		{"u2", "c1", bucket9},
		{"u1", "c1", bucket9.Add(time.Hour)},
	}
	for _, w := range writes {
		created, err := ledger.RecordClick(ctx, w.user, w.card, w.start, end, 1)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !created {
			t.Errorf("expected (%s,%s,%v) to create a record", w.user, w.card, w.start)
		}
	}
	if count := ledger.Count(ctx); count != len(writes) {
		t.Errorf("expected %d records, got %d", len(writes), count)
	}
}

func TestMemoryLedger_Validation(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()
	end := bucket9.Add(time.Hour)

	cases := []struct {
		name       string
		user, card string
		count      int64
	}{
		{"empty user", "", "c1", 1},
		{"empty card", "u1", "  ", 1},
		{"zero count", "u1", "c1", 0},
		{"negative count", "u1", "c1", -2},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := ledger.RecordClick(ctx, tc.user, tc.card, bucket9, end, tc.count)
			if !errors.Is(err, ErrValidation) {
				t.Errorf("expected ErrValidation, got %v", err)
			}
		})
	}
	if count := ledger.Count(ctx); count != 0 {
		t.Errorf("expected no records after rejected writes, got %d", count)
	}
}

func TestMemoryLedger_ConcurrentMerge(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger(WithShardCount(4))

	const (
		writers   = 16
		perWriter = 100
	)
	end := bucket9.Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < perWriter; j++ {
				if _, err := ledger.RecordClick(ctx, "u1", "c1", bucket9, end, 1); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}()
	}
	wg.Wait()

	snapshot, err := ledger.Snapshot(ctx)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(snapshot) != 1 {
		t.Fatalf("expected 1 record after concurrent merges, got %d", len(snapshot))
	}
	if got := snapshot[0].ClickCount; got != writers*perWriter {
		t.Errorf("expected click count %d, got %d", writers*perWriter, got)
	}
}

func TestMemoryLedger_ConcurrentDistinctTriples(t *testing.T) {
	ctx := context.Background()
	ledger := NewMemoryLedger()

	const users = 20
	end := bucket9.Add(time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < users; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			user := fmt.Sprintf("u%d", n)
			for c := 0; c < 5; c++ {
				card := fmt.Sprintf("c%d", c)
				if _, err := ledger.RecordClick(ctx, user, card, bucket9, end, 2); err != nil {
					t.Errorf("unexpected error: %v", err)
					return
				}
			}
		}(i)
	}
	wg.Wait()

	if count := ledger.Count(ctx); count != users*5 {
		t.Errorf("expected %d records, got %d", users*5, count)
	}
}

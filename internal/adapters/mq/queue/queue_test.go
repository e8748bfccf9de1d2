package queue

import (
	"context"
	"testing"
	"time"

	"github.com/pictodeck/ranker/internal/domain/model"
)

func testEvent(id string) Event {
	start := time.Date(2026, time.March, 5, 9, 0, 0, 0, time.UTC)
	return model.ClickEvent{
		EventID:     id,
		UserID:      "u1",
		CardID:      "c1",
		BucketStart: start,
		BucketEnd:   start.Add(time.Hour),
		Count:       1,
		TS:          start,
	}
}

func TestInMemoryQueue_EnqueueDequeue(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue(WithCapacity(10))
	defer q.Close()

	if !q.Enqueue(ctx, testEvent("e1")) {
		t.Fatal("expected enqueue to succeed")
	}
	if got := q.Len(ctx); got != 1 {
		t.Errorf("expected len 1, got %d", got)
	}

	select {
	case e := <-q.Dequeue(ctx):
		if e.EventID != "e1" {
			t.Errorf("expected event e1, got %s", e.EventID)
		}
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for dequeue")
	}
}

func TestInMemoryQueue_FullQueueRejects(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue(WithCapacity(2))
	defer q.Close()

	if !q.Enqueue(ctx, testEvent("e1")) || !q.Enqueue(ctx, testEvent("e2")) {
		t.Fatal("expected enqueues within capacity to succeed")
	}
	if q.Enqueue(ctx, testEvent("e3")) {
		t.Error("expected enqueue on full queue to fail")
	}
}

func TestInMemoryQueue_CloseDrains(t *testing.T) {
	ctx := context.Background()
	q := NewInMemoryQueue(WithCapacity(10))

	for i, id := range []string{"e1", "e2", "e3"} {
		if !q.Enqueue(ctx, testEvent(id)) {
			t.Fatalf("expected enqueue %d to succeed", i)
		}
	}

	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !q.IsClosed() {
		t.Error("expected queue to report closed")
	}
	if q.Enqueue(ctx, testEvent("e4")) {
		t.Error("expected enqueue after close to fail")
	}

	// Events already queued are still delivered before the channel closes.
	var drained []string
	for e := range q.Dequeue(ctx) {
		drained = append(drained, e.EventID)
	}
	if len(drained) != 3 {
		t.Errorf("expected 3 drained events, got %d", len(drained))
	}
}

func TestInMemoryQueue_DoubleCloseIsSafe(t *testing.T) {
	q := NewInMemoryQueue()
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := q.Close(); err != nil {
		t.Fatalf("unexpected error on second close: %v", err)
	}
}

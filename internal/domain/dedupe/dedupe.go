// Package dedupe tracks click event IDs for at-most-once recording.
package dedupe

import (
	"context"
	"sync"
	"sync/atomic"
)

// Deduper records seen event IDs so HTTP retries do not double-count clicks.
type Deduper interface {
	// SeenAndRecord atomically checks whether id was seen and records it if
	// not. Returns true if id was already seen.
	SeenAndRecord(ctx context.Context, id string) bool

	// Unrecord removes an ID from the seen set. Used when an event was
	// marked seen but failed to enqueue, so the client can retry it.
	Unrecord(ctx context.Context, id string)

	Size() int64
}

// inMemoryDeduper implements Deduper with a bounded map. When the bound is
// reached the most recently added IDs are evicted first: old IDs are the
// ones retried clients resend, so they are the ones worth keeping.
type inMemoryDeduper struct {
	mu      sync.Mutex
	seen    map[string]struct{}
	stack   []string // insertion order, newest last; eviction pops the tail
	maxSize int      // 0 or negative means unbounded
	size    atomic.Int64
}

// NewInMemoryDeduper creates a deduper with configuration options.
func NewInMemoryDeduper(opts ...Option) Deduper {
	d := &inMemoryDeduper{
		maxSize: 50000,
	}

	for _, opt := range opts {
		opt(d)
	}

	d.seen = make(map[string]struct{})
	return d
}

func (d *inMemoryDeduper) SeenAndRecord(_ context.Context, id string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; ok {
		return true
	}

	if d.maxSize > 0 && len(d.seen) >= d.maxSize {
		d.evictNewest()
	}

	d.seen[id] = struct{}{}
	if d.maxSize > 0 {
		d.stack = append(d.stack, id)
	}
	d.size.Store(int64(len(d.seen)))
	return false
}

func (d *inMemoryDeduper) Unrecord(_ context.Context, id string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := d.seen[id]; !ok {
		return
	}
	delete(d.seen, id)
	for i := len(d.stack) - 1; i >= 0; i-- {
		if d.stack[i] == id {
			d.stack = append(d.stack[:i], d.stack[i+1:]...)
			break
		}
	}
	d.size.Store(int64(len(d.seen)))
}

func (d *inMemoryDeduper) Size() int64 {
	return d.size.Load()
}

// evictNewest drops the most recently recorded ID. Caller holds the lock.
func (d *inMemoryDeduper) evictNewest() {
	for len(d.stack) > 0 {
		last := d.stack[len(d.stack)-1]
		d.stack = d.stack[:len(d.stack)-1]
		if _, ok := d.seen[last]; ok {
			delete(d.seen, last)
			return
		}
	}
}

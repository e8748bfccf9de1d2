package dedupe_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/pictodeck/ranker/internal/domain/dedupe"
	. "github.com/smartystreets/goconvey/convey"
)

func TestSeenAndRecord(t *testing.T) {
	Convey("Given a fresh deduper", t, func() {
		d := dedupe.NewInMemoryDeduper()
		ctx := context.Background()

		Convey("Then the first sighting of an ID is new and the second is a duplicate", func() {
			So(d.SeenAndRecord(ctx, "evt-1"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "evt-1"), ShouldBeTrue)
			So(d.Size(), ShouldEqual, 1)
		})

		Convey("Then distinct IDs are tracked independently", func() {
			So(d.SeenAndRecord(ctx, "evt-a"), ShouldBeFalse)
			So(d.SeenAndRecord(ctx, "evt-b"), ShouldBeFalse)
			So(d.Size(), ShouldEqual, 2)
		})
	})
}

func TestUnrecord(t *testing.T) {
	Convey("Given a recorded ID", t, func() {
		d := dedupe.NewInMemoryDeduper()
		ctx := context.Background()
		So(d.SeenAndRecord(ctx, "evt-1"), ShouldBeFalse)

		Convey("When unrecording it", func() {
			d.Unrecord(ctx, "evt-1")

			Convey("Then it can be recorded again", func() {
				So(d.Size(), ShouldEqual, 0)
				So(d.SeenAndRecord(ctx, "evt-1"), ShouldBeFalse)
			})
		})

		Convey("When unrecording an unknown ID", func() {
			d.Unrecord(ctx, "evt-404")

			Convey("Then nothing changes", func() {
				So(d.Size(), ShouldEqual, 1)
			})
		})
	})
}

func TestBoundedEviction(t *testing.T) {
	Convey("Given a deduper bounded to 3 IDs", t, func() {
		d := dedupe.NewInMemoryDeduper(dedupe.WithMaxSize(3))
		ctx := context.Background()

		for i := 1; i <= 3; i++ {
			So(d.SeenAndRecord(ctx, fmt.Sprintf("evt-%d", i)), ShouldBeFalse)
		}

		Convey("When a fourth ID arrives", func() {
			So(d.SeenAndRecord(ctx, "evt-4"), ShouldBeFalse)

			Convey("Then the size stays at the bound", func() {
				So(d.Size(), ShouldEqual, 3)
			})

			Convey("Then the oldest IDs survive eviction", func() {
				So(d.SeenAndRecord(ctx, "evt-1"), ShouldBeTrue)
				So(d.SeenAndRecord(ctx, "evt-2"), ShouldBeTrue)
			})
		})
	})
}

func TestConcurrentSeenAndRecord(t *testing.T) {
	Convey("Given many goroutines racing on the same ID", t, func() {
		d := dedupe.NewInMemoryDeduper()
		ctx := context.Background()

		const goroutines = 32
		var wg sync.WaitGroup
		results := make(chan bool, goroutines)
		for i := 0; i < goroutines; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				results <- d.SeenAndRecord(ctx, "evt-race")
			}()
		}
		wg.Wait()
		close(results)

		Convey("Then exactly one call should observe a new ID", func() {
			newSightings := 0
			for seen := range results {
				if !seen {
					newSightings++
				}
			}
			So(newSightings, ShouldEqual, 1)
			So(d.Size(), ShouldEqual, 1)
		})
	})
}

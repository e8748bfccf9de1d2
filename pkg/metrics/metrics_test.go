package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	. "github.com/smartystreets/goconvey/convey"
)

func TestNewManager(t *testing.T) {
	Convey("Given a fresh registry", t, func() {
		registry := prometheus.NewRegistry()

		Convey("When creating a manager with options", func() {
			m := NewManager(
				WithRegistry(registry),
				WithNamespace("test"),
				WithSubsystem("ranker"),
				WithHistogramBuckets([]float64{1, 10, 100}),
			)

			Convey("Then all collectors should be registered", func() {
				So(m, ShouldNotBeNil)
				families, err := registry.Gather()
				So(err, ShouldBeNil)
				// Gauges register eagerly; counters and histograms appear
				// once observed, so only assert the registry is usable.
				So(families, ShouldNotBeNil)
			})
		})
	})
}

func TestGlobalHelpers(t *testing.T) {
	Convey("Given the global metrics manager", t, func() {
		Convey("When recording ledger metrics", func() {
			So(RecordInteractionCreated, ShouldNotPanic)
			So(RecordInteractionMerged, ShouldNotPanic)
			So(RecordInteractionRejected, ShouldNotPanic)
			So(RecordEventDuplicate, ShouldNotPanic)
			So(func() { UpdateLedgerRecords(42) }, ShouldNotPanic)
		})

		Convey("When recording ranking metrics", func() {
			So(RecordRankRequest, ShouldNotPanic)
			So(RecordRankUnrankedServe, ShouldNotPanic)
			So(RecordRankUnknownUser, ShouldNotPanic)
			So(RecordRankUnknownCard, ShouldNotPanic)
			So(func() { RecordRankLatency(1.5) }, ShouldNotPanic)
		})

		Convey("When recording training metrics", func() {
			So(RecordTrainingRun, ShouldNotPanic)
			So(RecordTrainingFailure, ShouldNotPanic)
			So(func() { RecordTrainingDuration(2.5) }, ShouldNotPanic)
			So(func() { UpdateTrainingRows(80, 20) }, ShouldNotPanic)
			So(func() { UpdateBundlePublished(time.Now()) }, ShouldNotPanic)
		})

		Convey("When recording queue and worker metrics", func() {
			So(func() { UpdateQueueSize(10) }, ShouldNotPanic)
			So(func() { UpdateQueueCapacity(100) }, ShouldNotPanic)
			So(func() { UpdateQueueUtilization(0.1) }, ShouldNotPanic)
			So(RecordQueueEnqueue, ShouldNotPanic)
			So(RecordQueueDequeue, ShouldNotPanic)
			So(RecordQueueError, ShouldNotPanic)
			So(func() { UpdateWorkerCount(4) }, ShouldNotPanic)
			So(RecordWorkerError, ShouldNotPanic)
			So(func() { RecordWorkerProcessingLatency(0.5) }, ShouldNotPanic)
		})

		Convey("When recording HTTP metrics", func() {
			So(func() { RecordHTTPRequest("rank", "POST", "200") }, ShouldNotPanic)
			So(func() { RecordHTTPRequestDuration("rank", "POST", "200", 12) }, ShouldNotPanic)
			So(func() { RecordErrorByComponent("ledger", "validation") }, ShouldNotPanic)
		})

		Convey("Then the registry should expose the recorded families", func() {
			families, err := GetRegistry().Gather()
			So(err, ShouldBeNil)
			So(len(families), ShouldBeGreaterThan, 0)
		})
	})
}

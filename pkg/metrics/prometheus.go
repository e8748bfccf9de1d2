// Package metrics provides Prometheus metrics for the pictodeck ranker service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager owns all Prometheus collectors for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Interaction ledger metrics
	interactionsCreated  prometheus.Counter
	interactionsMerged   prometheus.Counter
	interactionsRejected prometheus.Counter
	eventsDuplicate      prometheus.Counter
	ledgerRecords        prometheus.Gauge

	// Ranking metrics
	rankRequests       prometheus.Counter
	rankUnrankedServes prometheus.Counter
	rankUnknownUsers   prometheus.Counter
	rankUnknownCards   prometheus.Counter
	rankLatency        prometheus.Histogram

	// Training metrics
	trainingRuns        prometheus.Counter
	trainingFailures    prometheus.Counter
	trainingDuration    prometheus.Histogram
	trainingRowsTrained prometheus.Gauge
	trainingRowsHeldOut prometheus.Gauge
	bundlePublishedUnix prometheus.Gauge

	// Queue metrics
	queueSize        prometheus.Gauge
	queueCapacity    prometheus.Gauge
	queueUtilization prometheus.Gauge
	queueEnqueues    prometheus.Counter
	queueDequeues    prometheus.Counter
	queueErrors      prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerErrors            prometheus.Counter
	workerProcessingLatency prometheus.Histogram

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Error metrics
	errorsByComponent *prometheus.CounterVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid the default Go collectors.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a metrics manager and registers all collectors.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pictodeck",
		subsystem:        "ranker",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) initializeMetrics() { //nolint:funlen // flat collector registration
	auto := promauto.With(m.registry)

	m.interactionsCreated = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interactions_created_total",
		Help:      "Total number of new interaction records inserted into the ledger",
	})

	m.interactionsMerged = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interactions_merged_total",
		Help:      "Total number of click events merged into existing ledger records",
	})

	m.interactionsRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "interactions_rejected_total",
		Help:      "Total number of click events rejected by validation",
	})

	m.eventsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "events_duplicate_total",
		Help:      "Total number of duplicate click events detected by idempotency tracking",
	})

	m.ledgerRecords = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "ledger_records",
		Help:      "Current number of (user, card, hour bucket) records in the ledger",
	})

	m.rankRequests = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_requests_total",
		Help:      "Total number of ranking requests served",
	})

	m.rankUnrankedServes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_unranked_serves_total",
		Help:      "Total number of ranking requests served in input order (no bundle available)",
	})

	m.rankUnknownUsers = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_unknown_users_total",
		Help:      "Total number of ranking requests for users absent from the trained encoders",
	})

	m.rankUnknownCards = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_unknown_cards_total",
		Help:      "Total number of candidate cards absent from the trained encoders",
	})

	m.rankLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "rank_latency_milliseconds",
		Help:      "Histogram of ranking latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.trainingRuns = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_runs_total",
		Help:      "Total number of completed training runs",
	})

	m.trainingFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_failures_total",
		Help:      "Total number of failed training runs",
	})

	m.trainingDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_duration_seconds",
		Help:      "Histogram of training run duration in seconds",
		Buckets:   []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60, 120, 300},
	})

	m.trainingRowsTrained = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_rows_trained",
		Help:      "Number of aggregated rows in the training partition of the last run",
	})

	m.trainingRowsHeldOut = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "training_rows_held_out",
		Help:      "Number of aggregated rows held out in the last run",
	})

	m.bundlePublishedUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "bundle_published_timestamp_seconds",
		Help:      "Unix timestamp of the last published model bundle",
	})

	m.queueSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_size",
		Help:      "Current size of the click event queue",
	})

	m.queueCapacity = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_capacity",
		Help:      "Configured capacity of the click event queue",
	})

	m.queueUtilization = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_utilization",
		Help:      "Queue fill ratio between 0 and 1",
	})

	m.queueEnqueues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_enqueues_total",
		Help:      "Total number of successfully enqueued click events",
	})

	m.queueDequeues = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_dequeues_total",
		Help:      "Total number of dequeued click events",
	})

	m.queueErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "queue_errors_total",
		Help:      "Total number of rejected enqueue attempts (closed or full queue)",
	})

	m.workerCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_count",
		Help:      "Current number of ledger workers",
	})

	m.workerErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_errors_total",
		Help:      "Total number of worker processing errors",
	})

	m.workerProcessingLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "worker_processing_latency_milliseconds",
		Help:      "Histogram of per-event worker processing latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint, method and status code",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.errorsByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component and error type",
		},
		[]string{"component", "error_type"},
	)
}

// Ledger metrics helpers.

// RecordInteractionCreated increments the created interactions counter.
func RecordInteractionCreated() {
	globalManager.interactionsCreated.Inc()
}

// RecordInteractionMerged increments the merged interactions counter.
func RecordInteractionMerged() {
	globalManager.interactionsMerged.Inc()
}

// RecordInteractionRejected increments the rejected interactions counter.
func RecordInteractionRejected() {
	globalManager.interactionsRejected.Inc()
}

// RecordEventDuplicate increments the duplicate events counter.
func RecordEventDuplicate() {
	globalManager.eventsDuplicate.Inc()
}

// UpdateLedgerRecords sets the current ledger record count.
func UpdateLedgerRecords(count int) {
	globalManager.ledgerRecords.Set(float64(count))
}

// Ranking metrics helpers.

// RecordRankRequest increments the ranking requests counter.
func RecordRankRequest() {
	globalManager.rankRequests.Inc()
}

// RecordRankUnrankedServe increments the unranked-fallback counter.
func RecordRankUnrankedServe() {
	globalManager.rankUnrankedServes.Inc()
}

// RecordRankUnknownUser increments the unknown-user counter.
func RecordRankUnknownUser() {
	globalManager.rankUnknownUsers.Inc()
}

// RecordRankUnknownCard increments the unknown-card counter.
func RecordRankUnknownCard() {
	globalManager.rankUnknownCards.Inc()
}

// RecordRankLatency records ranking latency in milliseconds.
func RecordRankLatency(latencyMs float64) {
	globalManager.rankLatency.Observe(latencyMs)
}

// Training metrics helpers.

// RecordTrainingRun increments the completed training runs counter.
func RecordTrainingRun() {
	globalManager.trainingRuns.Inc()
}

// RecordTrainingFailure increments the failed training runs counter.
func RecordTrainingFailure() {
	globalManager.trainingFailures.Inc()
}

// RecordTrainingDuration records a training run duration in seconds.
func RecordTrainingDuration(seconds float64) {
	globalManager.trainingDuration.Observe(seconds)
}

// UpdateTrainingRows sets the trained and held-out row counts of the last run.
func UpdateTrainingRows(trained, heldOut int) {
	globalManager.trainingRowsTrained.Set(float64(trained))
	globalManager.trainingRowsHeldOut.Set(float64(heldOut))
}

// UpdateBundlePublished sets the publish timestamp of the current bundle.
func UpdateBundlePublished(t time.Time) {
	globalManager.bundlePublishedUnix.Set(float64(t.Unix()))
}

// Queue metrics helpers.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the configured queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue fill ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueues.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeues.Inc()
}

// RecordQueueError increments the enqueue error counter.
func RecordQueueError() {
	globalManager.queueErrors.Inc()
}

// Worker metrics helpers.

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// RecordWorkerError increments the worker errors counter.
func RecordWorkerError() {
	globalManager.workerErrors.Inc()
}

// RecordWorkerProcessingLatency records per-event worker latency in milliseconds.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// HTTP metrics helpers.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, durationMs float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(durationMs)
}

// RecordErrorByComponent records a component error by type.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorsByComponent.WithLabelValues(component, errorType).Inc()
}

// GetRegistry returns the custom registry backing the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// Package metrics provides Prometheus metrics for the results tracker.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Pipeline metrics
	resultsProcessed  prometheus.Counter
	resultsNew        prometheus.Counter
	resultsDuplicate  prometheus.Counter
	parseFailures     prometheus.Counter
	recordsByType     *prometheus.CounterVec
	batchDuration     prometheus.Histogram
	sourceFetchErrors prometheus.Counter

	// State metrics
	seenSetSize   prometheus.Gauge
	persistErrors prometheus.Counter
	lastRunUnix   prometheus.Gauge

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "trackwatch",
		subsystem:        "results",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.resultsProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "processed_total",
		Help:      "Total number of raw results run through classification",
	})

	m.resultsNew = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "new_total",
		Help:      "Total number of results surfaced as new",
	})

	m.resultsDuplicate = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "duplicate_total",
		Help:      "Total number of results suppressed as already seen",
	})

	m.parseFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "parse_failures_total",
		Help:      "Total number of marks that failed to parse to a numeric value",
	})

	m.recordsByType = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "records_total",
			Help:      "Total number of classified results by record type",
		},
		[]string{"record_type"},
	)

	m.batchDuration = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "batch_duration_seconds",
		Help:      "Duration of one full fetch-classify-persist run",
		Buckets:   m.histogramBuckets,
	})

	m.sourceFetchErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "source_fetch_errors_total",
		Help:      "Total number of failed result-source fetches",
	})

	m.seenSetSize = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "seen_set_size",
		Help:      "Current number of result keys in the seen set",
	})

	m.persistErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "persist_errors_total",
		Help:      "Total number of seen-set persistence failures",
	})

	m.lastRunUnix = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "last_run_unix",
		Help:      "Unix timestamp of the last completed run",
	})

	m.httpRequests = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests by endpoint and method",
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.httpRequestDuration = auto.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request duration in seconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)
}

// RecordResultProcessed increments the processed results counter.
func RecordResultProcessed() {
	globalManager.resultsProcessed.Inc()
}

// RecordResultNew increments the new results counter.
func RecordResultNew() {
	globalManager.resultsNew.Inc()
}

// RecordResultDuplicate increments the duplicate results counter.
func RecordResultDuplicate() {
	globalManager.resultsDuplicate.Inc()
}

// RecordParseFailure increments the mark parse failure counter.
func RecordParseFailure() {
	globalManager.parseFailures.Inc()
}

// RecordClassification increments the per-record-type counter.
func RecordClassification(recordType string) {
	globalManager.recordsByType.WithLabelValues(recordType).Inc()
}

// RecordBatchDuration records the duration of one full run in seconds.
func RecordBatchDuration(seconds float64) {
	globalManager.batchDuration.Observe(seconds)
}

// RecordSourceFetchError increments the source fetch error counter.
func RecordSourceFetchError() {
	globalManager.sourceFetchErrors.Inc()
}

// UpdateSeenSetSize sets the current seen-set size.
func UpdateSeenSetSize(size int64) {
	globalManager.seenSetSize.Set(float64(size))
}

// RecordPersistError increments the persistence error counter.
func RecordPersistError() {
	globalManager.persistErrors.Inc()
}

// UpdateLastRunUnix sets the timestamp of the last completed run.
func UpdateLastRunUnix(unix int64) {
	globalManager.lastRunUnix.Set(float64(unix))
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in seconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, seconds float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(seconds)
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

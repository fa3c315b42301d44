// Package metrics provides Prometheus metrics for the scout service.
package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the scout service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	constLabels      prometheus.Labels
	registry         prometheus.Registerer

	// Similarity engine
	similarityQueries    *prometheus.CounterVec
	similarityLatency    prometheus.Histogram
	similarityCandidates prometheus.Histogram
	similarityResults    prometheus.Histogram

	// Population snapshot
	populationSize       prometheus.Gauge
	populationGeneration prometheus.Gauge

	// Repository
	repositoryReplaceDuration *prometheus.HistogramVec
	repositoryQueryLatency    *prometheus.HistogramVec

	// Imports
	importJobs     *prometheus.CounterVec
	importDuration prometheus.Histogram
	importRows     *prometheus.CounterVec

	// Result cache
	cacheLookups *prometheus.CounterVec

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Import queue
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Workers
	workerActiveCount prometheus.Gauge

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
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
		namespace:        "scout",
		subsystem:        "players",
		histogramBuckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 25, 50, 100, 250, 500, 1000},
		registry:         prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.initializeMetrics()
	return m
}

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, ConstLabels: m.constLabels}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{Namespace: m.namespace, Subsystem: m.subsystem, Name: name, Help: help, Buckets: buckets, ConstLabels: m.constLabels}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)
	sizeBuckets := prometheus.ExponentialBuckets(1, 4, 10)

	m.similarityQueries = auto.NewCounterVec(
		m.counterOpts("similarity_queries_total", "Similarity queries by outcome"),
		[]string{"outcome"},
	)
	m.similarityLatency = auto.NewHistogram(m.histogramOpts(
		"similarity_latency_milliseconds", "Time spent ranking candidates in milliseconds", m.histogramBuckets))
	m.similarityCandidates = auto.NewHistogram(m.histogramOpts(
		"similarity_candidates_scanned", "Candidates considered per similarity query", sizeBuckets))
	m.similarityResults = auto.NewHistogram(m.histogramOpts(
		"similarity_results_returned", "Results returned per similarity query", sizeBuckets))

	m.populationSize = auto.NewGauge(m.gaugeOpts("population_size", "Players in the published snapshot"))
	m.populationGeneration = auto.NewGauge(m.gaugeOpts("population_generation", "Generation of the published snapshot"))

	m.repositoryReplaceDuration = auto.NewHistogramVec(
		m.histogramOpts("repository_replace_duration_milliseconds", "Duration of full reloads by store", m.histogramBuckets),
		[]string{"store"},
	)
	m.repositoryQueryLatency = auto.NewHistogramVec(
		m.histogramOpts("repository_query_latency_milliseconds", "Query latency by store", m.histogramBuckets),
		[]string{"store"},
	)

	m.importJobs = auto.NewCounterVec(m.counterOpts("import_jobs_total", "Import jobs by outcome"), []string{"outcome"})
	m.importDuration = auto.NewHistogram(m.histogramOpts(
		"import_duration_milliseconds", "Import job duration in milliseconds",
		[]float64{10, 50, 100, 250, 500, 1000, 2500, 5000, 10000, 30000}))
	m.importRows = auto.NewCounterVec(m.counterOpts("import_rows_total", "CSV rows by result"), []string{"result"})

	m.cacheLookups = auto.NewCounterVec(m.counterOpts("cache_lookups_total", "Similarity cache lookups"), []string{"result"})

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "Total number of HTTP requests by endpoint and method"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.histogramBuckets),
		[]string{"endpoint", "method", "status_code"},
	)

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Pending import jobs"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Maximum pending import jobs"))
	m.queueEnqueueRate = auto.NewCounter(m.counterOpts("queue_enqueue_total", "Import jobs accepted"))
	m.queueDequeueRate = auto.NewCounter(m.counterOpts("queue_dequeue_total", "Import jobs handed to workers"))
	m.queueEnqueueErrors = auto.NewCounter(m.counterOpts("queue_enqueue_errors_total", "Import jobs rejected"))

	m.workerActiveCount = auto.NewGauge(m.gaugeOpts("worker_active_count", "Running import workers"))

	m.errorRateByComponent = auto.NewCounterVec(
		m.counterOpts("errors_by_component_total", "Errors by component and type"),
		[]string{"component", "error_type"},
	)
	m.errorRateByType = auto.NewCounterVec(
		m.counterOpts("errors_by_type_total", "Errors by type and severity"),
		[]string{"error_type", "severity"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("errors_by_endpoint_total", "Errors by endpoint and method"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_usage_bytes", "System memory usage in bytes"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutine_count", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(m.histogramOpts(
		"system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}))
}

// Similarity Metrics Functions.

// RecordSimilarityQuery counts a similarity query by outcome ("ok", "cached",
// "not_found", "invalid", "unavailable", "error").
func RecordSimilarityQuery(outcome string) {
	globalManager.similarityQueries.WithLabelValues(outcome).Inc()
}

// RecordSimilarityLatency records ranking latency in milliseconds.
func RecordSimilarityLatency(latencyMs float64) {
	globalManager.similarityLatency.Observe(latencyMs)
}

// RecordSimilarityScan records how many candidates were considered and how
// many results were returned.
func RecordSimilarityScan(scanned, returned int) {
	globalManager.similarityCandidates.Observe(float64(scanned))
	globalManager.similarityResults.Observe(float64(returned))
}

// UpdatePopulation sets the size and generation of the published snapshot.
func UpdatePopulation(size int, generation uint64) {
	globalManager.populationSize.Set(float64(size))
	globalManager.populationGeneration.Set(float64(generation))
}

// Repository Metrics Functions.

// RecordRepositoryReplaceDuration records a full reload of store.
func RecordRepositoryReplaceDuration(store string, latencyMs float64) {
	globalManager.repositoryReplaceDuration.WithLabelValues(store).Observe(latencyMs)
}

// RecordRepositoryQueryLatency records a read against store.
func RecordRepositoryQueryLatency(store string, latencyMs float64) {
	globalManager.repositoryQueryLatency.WithLabelValues(store).Observe(latencyMs)
}

// Import Metrics Functions.

// RecordImportJob counts a finished import job and its duration.
func RecordImportJob(outcome string, durationMs float64) {
	globalManager.importJobs.WithLabelValues(outcome).Inc()
	globalManager.importDuration.Observe(durationMs)
}

// RecordImportRows counts imported and skipped CSV rows.
func RecordImportRows(imported, skipped int) {
	globalManager.importRows.WithLabelValues("imported").Add(float64(imported))
	globalManager.importRows.WithLabelValues("skipped").Add(float64(skipped))
}

// RecordCacheLookup counts a similarity cache hit or miss.
func RecordCacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	globalManager.cacheLookups.WithLabelValues(result).Inc()
}

// HTTP Metrics Functions.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// Queue Metrics Functions.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	globalManager.queueEnqueueRate.Inc()
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	globalManager.queueDequeueRate.Inc()
}

// RecordQueueEnqueueError increments the enqueue error counter.
func RecordQueueEnqueueError() {
	globalManager.queueEnqueueErrors.Inc()
}

// UpdateWorkerActiveCount sets the number of active workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// Error Metrics Functions.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System Performance Metrics Functions.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	globalManager.systemGCPauseTime.Observe(pauseMs)
}

// StatusCode formats an HTTP status for the status_code label.
func StatusCode(code int) string { return strconv.Itoa(code) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

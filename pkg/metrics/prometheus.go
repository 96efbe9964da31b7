// Package metrics provides Prometheus metrics for the possession service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the possession service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	registry         prometheus.Registerer

	// Core pipeline metrics
	gamesProcessed       prometheus.Counter
	gamesFailed          *prometheus.CounterVec
	possessionsEmitted   prometheus.Counter
	unresolvedOwners     prometheus.Counter
	unclassifiedEvents   prometheus.Counter
	gameProcessLatency   prometheus.Histogram
	gamesDuplicate       prometheus.Counter
	lineupFetchLatency   prometheus.Histogram
	lineupFetchErrors    *prometheus.CounterVec
	lineupFetchRetries   prometheus.Counter

	// Repository metrics
	storedGames           prometheus.Gauge
	repositorySaveLatency prometheus.Histogram

	// HTTP performance metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Queue metrics
	queueSize          prometheus.Gauge
	queueCapacity      prometheus.Gauge
	queueUtilization   prometheus.Gauge
	queueEnqueueRate   prometheus.Counter
	queueDequeueRate   prometheus.Counter
	queueEnqueueErrors prometheus.Counter

	// Worker metrics
	workerCount             prometheus.Gauge
	workerActiveCount       prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrorRate         prometheus.Counter

	// Error metrics
	errorRateByComponent *prometheus.CounterVec

	// System metrics
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "pbp",
		subsystem:        "possessions",
		histogramBuckets: prometheus.DefBuckets,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
	})
}

func (m *Manager) histogram(name, help string) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      name,
		Help:      help,
		Buckets:   m.histogramBuckets,
	})
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // long function required for comprehensive metrics initialization
	auto := promauto.With(m.registry)

	m.gamesProcessed = m.counter("games_processed_total", "Total number of games segmented successfully")
	m.gamesFailed = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "games_failed_total",
			Help:      "Total number of games skipped, by failure reason",
		},
		[]string{"reason"},
	)
	m.possessionsEmitted = m.counter("possessions_total", "Total number of possessions produced")
	m.unresolvedOwners = m.counter("unresolved_owners_total", "Possessions whose owning team could not be resolved")
	m.unclassifiedEvents = m.counter("unclassified_events_total", "Events with a type outside the known categories")
	m.gameProcessLatency = m.histogram("game_process_latency_milliseconds", "Time to process one game in milliseconds")
	m.gamesDuplicate = m.counter("games_duplicate_total", "Submissions rejected because the game was already in flight")

	m.lineupFetchLatency = m.histogram("lineup_fetch_latency_milliseconds", "Latency of one minutes-window query in milliseconds")
	m.lineupFetchErrors = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "lineup_fetch_errors_total",
			Help:      "Failed minutes-window queries, by kind",
		},
		[]string{"kind"},
	)
	m.lineupFetchRetries = m.counter("lineup_fetch_retries_total", "Retried stats API requests")

	m.storedGames = m.gauge("stored_games", "Number of games held by the result store")
	m.repositorySaveLatency = m.histogram("repository_save_latency_milliseconds", "Result store save latency in milliseconds")

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
			Name:      "http_request_duration_milliseconds",
			Help:      "HTTP request duration in milliseconds",
			Buckets:   m.histogramBuckets,
		},
		[]string{"endpoint", "method", "status_code"},
	)

	m.queueSize = m.gauge("queue_size", "Current number of queued games")
	m.queueCapacity = m.gauge("queue_capacity", "Maximum queue capacity")
	m.queueUtilization = m.gauge("queue_utilization_ratio", "Queue utilization ratio (current size / capacity)")
	m.queueEnqueueRate = m.counter("queue_enqueue_total", "Total number of jobs enqueued")
	m.queueDequeueRate = m.counter("queue_dequeue_total", "Total number of jobs dequeued")
	m.queueEnqueueErrors = m.counter("queue_enqueue_errors_total", "Total number of enqueue errors")

	m.workerCount = m.gauge("worker_count", "Configured number of workers")
	m.workerActiveCount = m.gauge("worker_active_count", "Number of workers processing a game")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Worker job latency in milliseconds")
	m.workerErrorRate = m.counter("worker_errors_total", "Total number of failed jobs")

	m.errorRateByComponent = auto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: m.namespace,
			Subsystem: m.subsystem,
			Name:      "errors_by_component_total",
			Help:      "Total number of errors by component",
		},
		[]string{"component", "error_type"},
	)

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
}

// RecordGameProcessed counts a successful game and its possessions.
func RecordGameProcessed(possessions, unresolved, unclassified int, latencyMs float64) {
	globalManager.gamesProcessed.Inc()
	globalManager.possessionsEmitted.Add(float64(possessions))
	globalManager.unresolvedOwners.Add(float64(unresolved))
	globalManager.unclassifiedEvents.Add(float64(unclassified))
	globalManager.gameProcessLatency.Observe(latencyMs)
}

// RecordGameFailed counts a skipped game.
func RecordGameFailed(reason string) {
	globalManager.gamesFailed.WithLabelValues(reason).Inc()
}

// RecordGameDuplicate counts a rejected duplicate submission.
func RecordGameDuplicate() {
	globalManager.gamesDuplicate.Inc()
}

// RecordLineupFetch records the latency of one minutes-window query.
func RecordLineupFetch(latencyMs float64) {
	globalManager.lineupFetchLatency.Observe(latencyMs)
}

// RecordLineupFetchError counts a failed minutes-window query.
func RecordLineupFetchError(kind string) {
	globalManager.lineupFetchErrors.WithLabelValues(kind).Inc()
}

// RecordLineupFetchRetry counts a retried stats API request.
func RecordLineupFetchRetry() {
	globalManager.lineupFetchRetries.Inc()
}

// UpdateStoredGames sets the number of stored games.
func UpdateStoredGames(count int) {
	globalManager.storedGames.Set(float64(count))
}

// RecordRepositorySaveLatency records result store save latency.
func RecordRepositorySaveLatency(latencyMs float64) {
	globalManager.repositorySaveLatency.Observe(latencyMs)
}

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) {
	globalManager.queueSize.Set(float64(size))
}

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) {
	globalManager.queueCapacity.Set(float64(capacity))
}

// UpdateQueueUtilization sets the queue utilization ratio.
func UpdateQueueUtilization(utilization float64) {
	globalManager.queueUtilization.Set(utilization)
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

// UpdateWorkerCount sets the configured worker count.
func UpdateWorkerCount(count int) {
	globalManager.workerCount.Set(float64(count))
}

// UpdateWorkerActiveCount sets the number of busy workers.
func UpdateWorkerActiveCount(count int) {
	globalManager.workerActiveCount.Set(float64(count))
}

// RecordWorkerProcessingLatency records worker processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	globalManager.workerProcessingLatency.Observe(latencyMs)
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	globalManager.workerErrorRate.Inc()
}

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
}

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemoryUsage.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutineCount.Set(float64(count))
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

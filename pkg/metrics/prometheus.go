// Package metrics provides Prometheus metrics for the meal battle service.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	defaultRefreshInterval = 10 * time.Second
)

// Manager owns every Prometheus collector of the service.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	refreshInterval  time.Duration
	customLabels     map[string]string
	metricPrefix     string
	registry         prometheus.Registerer

	// Battle metrics
	battlesResolved  prometheus.Counter
	battleUpsets     prometheus.Counter
	battleScoreGap   prometheus.Histogram
	battleLatency    prometheus.Histogram
	battleFailures   *prometheus.CounterVec
	stagingRejected  *prometheus.CounterVec
	rosterSize       prometheus.Gauge
	activeMeals      prometheus.Gauge
	winsByDifficulty *prometheus.CounterVec

	// Leaderboard metrics
	leaderboardQueries *prometheus.CounterVec
	leaderboardLatency prometheus.Histogram
	cacheHits          prometheus.Counter
	cacheMisses        prometheus.Counter
	cacheErrors        prometheus.Counter

	// Store and random source
	storeLatency       *prometheus.HistogramVec
	storeErrors        *prometheus.CounterVec
	randomSourceErrors prometheus.Counter

	// Outcome queue and workers
	queueSize               prometheus.Gauge
	queueCapacity           prometheus.Gauge
	queueEnqueued           prometheus.Counter
	queueDequeued           prometheus.Counter
	queueDropped            prometheus.Counter
	workerCount             prometheus.Gauge
	workerProcessingLatency prometheus.Histogram
	workerErrors            prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// Errors
	errorRateByComponent *prometheus.CounterVec
	errorRateByType      *prometheus.CounterVec
	errorRateByEndpoint  *prometheus.CounterVec

	// System
	systemMemoryUsage    prometheus.Gauge
	systemGoroutineCount prometheus.Gauge
	systemGCPauseTime    prometheus.Histogram
}

var globalManager *Manager //nolint:gochecknoglobals // singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // metrics registry

func init() { //nolint:gochecknoinits // global metrics setup
	globalManager = NewManager(WithPrometheusRegistry(customRegistry))
}

// NewManager creates a new metrics manager. Collectors are registered on the
// configured registry (prometheus.DefaultRegisterer unless overridden).
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "mealmax",
		subsystem:        "arena",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		refreshInterval:  defaultRefreshInterval,
		customLabels:     make(map[string]string),
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()
	return m
}

func (m *Manager) name(n string) string {
	if m.metricPrefix == "" {
		return n
	}
	return m.metricPrefix + "_" + n
}

func (m *Manager) counter(name, help string) prometheus.Counter {
	return promauto.With(m.registry).NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) counterVec(name, help string, labels ...string) *prometheus.CounterVec {
	return promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	}, labels)
}

func (m *Manager) gauge(name, help string) prometheus.Gauge {
	return promauto.With(m.registry).NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels,
	})
}

func (m *Manager) histogram(name, help string, buckets []float64) prometheus.Histogram {
	return promauto.With(m.registry).NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels, Buckets: buckets,
	})
}

func (m *Manager) histogramVec(name, help string, labels ...string) *prometheus.HistogramVec {
	return promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace, Subsystem: m.subsystem, Name: m.name(name), Help: help, ConstLabels: m.customLabels, Buckets: m.histogramBuckets,
	}, labels)
}

func (m *Manager) initializeMetrics() { //nolint:funlen // one place for every collector
	m.battlesResolved = m.counter("battles_resolved_total", "Total number of battles resolved")
	m.battleUpsets = m.counter("battle_upsets_total", "Battles won by the lower-scoring combatant")
	m.battleScoreGap = m.histogram("battle_score_gap", "Absolute score gap between combatants",
		[]float64{1, 5, 10, 25, 50, 75, 100, 250, 500, 1000})
	m.battleLatency = m.histogram("battle_latency_milliseconds", "End-to-end battle resolution latency in milliseconds", m.histogramBuckets)
	m.battleFailures = m.counterVec("battle_failures_total", "Battles aborted by reason", "reason")
	m.stagingRejected = m.counterVec("staging_rejected_total", "Rejected staging attempts by reason", "reason")
	m.rosterSize = m.gauge("roster_size", "Number of combatants currently staged")
	m.activeMeals = m.gauge("active_meals", "Number of non-deleted meals")
	m.winsByDifficulty = m.counterVec("wins_by_difficulty_total", "Battle wins by winner difficulty", "difficulty")

	m.leaderboardQueries = m.counterVec("leaderboard_queries_total", "Leaderboard queries by sort key", "sort")
	m.leaderboardLatency = m.histogram("leaderboard_latency_milliseconds", "Leaderboard query latency in milliseconds", m.histogramBuckets)
	m.cacheHits = m.counter("leaderboard_cache_hits_total", "Leaderboard cache hits")
	m.cacheMisses = m.counter("leaderboard_cache_misses_total", "Leaderboard cache misses")
	m.cacheErrors = m.counter("leaderboard_cache_errors_total", "Leaderboard cache failures")

	m.storeLatency = m.histogramVec("store_latency_milliseconds", "Meal store operation latency in milliseconds", "op")
	m.storeErrors = m.counterVec("store_errors_total", "Meal store failures by operation", "op")
	m.randomSourceErrors = m.counter("random_source_errors_total", "Random source failures")

	m.queueSize = m.gauge("outcome_queue_size", "Current size of the outcome queue")
	m.queueCapacity = m.gauge("outcome_queue_capacity", "Maximum outcome queue capacity")
	m.queueEnqueued = m.counter("outcome_queue_enqueue_total", "Outcomes enqueued")
	m.queueDequeued = m.counter("outcome_queue_dequeue_total", "Outcomes dequeued")
	m.queueDropped = m.counter("outcome_queue_dropped_total", "Outcomes dropped because the queue was full or closed")
	m.workerCount = m.gauge("worker_count", "Number of outcome workers")
	m.workerProcessingLatency = m.histogram("worker_processing_latency_milliseconds", "Outcome processing latency in milliseconds", m.histogramBuckets)
	m.workerErrors = m.counter("worker_errors_total", "Outcome processing failures")

	m.httpRequests = m.counterVec("http_requests_total", "Total number of HTTP requests by endpoint and method", "endpoint", "method", "status_code")
	m.httpRequestDuration = m.histogramVec("http_request_duration_milliseconds", "HTTP request duration in milliseconds", "endpoint", "method", "status_code")

	m.errorRateByComponent = m.counterVec("errors_by_component_total", "Errors by component", "component", "error_type")
	m.errorRateByType = m.counterVec("errors_by_type_total", "Errors by type", "error_type", "severity")
	m.errorRateByEndpoint = m.counterVec("errors_by_endpoint_total", "Errors by endpoint", "endpoint", "method", "error_type")

	m.systemMemoryUsage = m.gauge("system_memory_usage_bytes", "System memory usage in bytes")
	m.systemGoroutineCount = m.gauge("system_goroutine_count", "Number of goroutines")
	m.systemGCPauseTime = m.histogram("system_gc_pause_time_milliseconds", "GC pause time in milliseconds",
		[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000})
}

// Enabled reports whether recording is on for the global manager.
func Enabled() bool { return globalManager.enabled }

// Battle metrics.

// RecordBattle records a resolved battle.
func RecordBattle(scoreGap float64, upset bool, winnerDifficulty string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.battlesResolved.Inc()
	globalManager.battleScoreGap.Observe(scoreGap)
	globalManager.battleLatency.Observe(latencyMs)
	globalManager.winsByDifficulty.WithLabelValues(winnerDifficulty).Inc()
	if upset {
		globalManager.battleUpsets.Inc()
	}
}

// RecordBattleFailure counts an aborted battle.
func RecordBattleFailure(reason string) {
	if globalManager.enabled {
		globalManager.battleFailures.WithLabelValues(reason).Inc()
	}
}

// RecordStagingRejected counts a rejected staging attempt.
func RecordStagingRejected(reason string) {
	if globalManager.enabled {
		globalManager.stagingRejected.WithLabelValues(reason).Inc()
	}
}

// UpdateRosterSize sets the number of staged combatants.
func UpdateRosterSize(n int) {
	if globalManager.enabled {
		globalManager.rosterSize.Set(float64(n))
	}
}

// UpdateActiveMeals sets the number of non-deleted meals.
func UpdateActiveMeals(n int) {
	if globalManager.enabled {
		globalManager.activeMeals.Set(float64(n))
	}
}

// Leaderboard metrics.

// RecordLeaderboardQuery records a served leaderboard query.
func RecordLeaderboardQuery(sortKey string, latencyMs float64) {
	if !globalManager.enabled {
		return
	}
	globalManager.leaderboardQueries.WithLabelValues(sortKey).Inc()
	globalManager.leaderboardLatency.Observe(latencyMs)
}

// RecordCacheHit increments the leaderboard cache hit counter.
func RecordCacheHit() {
	if globalManager.enabled {
		globalManager.cacheHits.Inc()
	}
}

// RecordCacheMiss increments the leaderboard cache miss counter.
func RecordCacheMiss() {
	if globalManager.enabled {
		globalManager.cacheMisses.Inc()
	}
}

// RecordCacheError increments the leaderboard cache error counter.
func RecordCacheError() {
	if globalManager.enabled {
		globalManager.cacheErrors.Inc()
	}
}

// Store and random source metrics.

// RecordStoreLatency records a meal store operation latency.
func RecordStoreLatency(op string, latencyMs float64) {
	if globalManager.enabled {
		globalManager.storeLatency.WithLabelValues(op).Observe(latencyMs)
	}
}

// RecordStoreError counts a failed meal store operation.
func RecordStoreError(op string) {
	if globalManager.enabled {
		globalManager.storeErrors.WithLabelValues(op).Inc()
	}
}

// RecordRandomSourceError counts a random source failure.
func RecordRandomSourceError() {
	if globalManager.enabled {
		globalManager.randomSourceErrors.Inc()
	}
}

// Queue and worker metrics.

// UpdateQueueSize sets the current outcome queue size.
func UpdateQueueSize(size int) {
	if globalManager.enabled {
		globalManager.queueSize.Set(float64(size))
	}
}

// UpdateQueueCapacity sets the outcome queue capacity.
func UpdateQueueCapacity(capacity int) {
	if globalManager.enabled {
		globalManager.queueCapacity.Set(float64(capacity))
	}
}

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() {
	if globalManager.enabled {
		globalManager.queueEnqueued.Inc()
	}
}

// RecordQueueDequeue increments the dequeue counter.
func RecordQueueDequeue() {
	if globalManager.enabled {
		globalManager.queueDequeued.Inc()
	}
}

// RecordQueueDropped increments the dropped outcome counter.
func RecordQueueDropped() {
	if globalManager.enabled {
		globalManager.queueDropped.Inc()
	}
}

// UpdateWorkerCount sets the number of outcome workers.
func UpdateWorkerCount(count int) {
	if globalManager.enabled {
		globalManager.workerCount.Set(float64(count))
	}
}

// RecordWorkerProcessingLatency records outcome processing latency.
func RecordWorkerProcessingLatency(latencyMs float64) {
	if globalManager.enabled {
		globalManager.workerProcessingLatency.Observe(latencyMs)
	}
}

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() {
	if globalManager.enabled {
		globalManager.workerErrors.Inc()
	}
}

// HTTP metrics.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	if globalManager.enabled {
		globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
	}
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	if globalManager.enabled {
		globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
	}
}

// Error metrics.

// RecordErrorByComponent records an error with component and type labels.
func RecordErrorByComponent(component, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByComponent.WithLabelValues(component, errorType).Inc()
	}
}

// RecordErrorByType records an error with type and severity labels.
func RecordErrorByType(errorType, severity string) {
	if globalManager.enabled {
		globalManager.errorRateByType.WithLabelValues(errorType, severity).Inc()
	}
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	if globalManager.enabled {
		globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
	}
}

// System metrics.

// UpdateSystemMemoryUsage sets the system memory usage in bytes.
func UpdateSystemMemoryUsage(bytes uint64) {
	if globalManager.enabled {
		globalManager.systemMemoryUsage.Set(float64(bytes))
	}
}

// UpdateSystemGoroutineCount sets the number of goroutines.
func UpdateSystemGoroutineCount(count int) {
	if globalManager.enabled {
		globalManager.systemGoroutineCount.Set(float64(count))
	}
}

// RecordSystemGCPauseTime records GC pause time in milliseconds.
func RecordSystemGCPauseTime(pauseMs float64) {
	if globalManager.enabled {
		globalManager.systemGCPauseTime.Observe(pauseMs)
	}
}

// Init replaces the global manager with one built from opts on a fresh
// registry. Call it once at startup, before any metric is recorded.
func Init(opts ...Option) {
	reg := prometheus.NewRegistry()
	globalManager = NewManager(append(opts, WithPrometheusRegistry(reg))...)
	customRegistry = reg
}

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// SetEnabled toggles recording on the global manager.
func SetEnabled(enabled bool) {
	globalManager.enabled = enabled
}

// RefreshInterval returns how often gauge updaters should sample.
func RefreshInterval() time.Duration {
	return globalManager.refreshInterval
}

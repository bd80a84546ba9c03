// Package metrics provides Prometheus metrics for the goalcast service.
package metrics

import (
	"context"
	"runtime"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Default metrics configuration constants.
const (
	defaultCollectInterval = 10 * time.Second
	nanosPerMilli          = 1e6
)

// Manager manages all Prometheus metrics for the goalcast service.
type Manager struct {
	namespace       string
	subsystem       string
	latencyBuckets  []float64
	enabled         bool
	collectInterval time.Duration
	constLabels     map[string]string
	metricPrefix    string
	registry        prometheus.Registerer

	// Refresh cycle
	refreshCycles   *prometheus.CounterVec
	refreshDuration prometheus.Histogram
	livePredictions prometheus.Gauge
	lastRefreshUnix prometheus.Gauge

	// Upstream provider
	upstreamRequests *prometheus.CounterVec
	upstreamLatency  *prometheus.HistogramVec

	// Engine
	matchesProcessed prometheus.Counter
	matchesRejected  prometheus.Counter
	matchesFailed    prometheus.Counter
	matchesDropped   prometheus.Counter
	alertsRaised     prometheus.Counter

	// Notifications
	notificationsPushed     prometheus.Counter
	notificationsSuppressed prometheus.Counter
	notifierSent            *prometheus.CounterVec

	// Cache
	cacheHits   *prometheus.CounterVec
	cacheMisses *prometheus.CounterVec
	cacheErrors *prometheus.CounterVec

	// Queue and workers
	queueSize       prometheus.Gauge
	queueCapacity   prometheus.Gauge
	queueEnqueued   prometheus.Counter
	queueDropped    prometheus.Counter
	workerCount     prometheus.Gauge
	workerLatency   prometheus.Histogram
	workerErrorRate prometheus.Counter

	// Websocket stream
	streamClients    prometheus.Gauge
	streamBroadcasts prometheus.Counter
	streamDropped    prometheus.Counter

	// HTTP
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	errorRateByEndpoint *prometheus.CounterVec

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
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:       "goalcast",
		subsystem:       "engine",
		latencyBuckets:  []float64{1, 5, 10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000},
		enabled:         true,
		collectInterval: defaultCollectInterval,
		constLabels:     make(map[string]string),
		registry:        prometheus.DefaultRegisterer,
	}
	for _, opt := range opts {
		opt(m)
	}
	if !m.enabled {
		// Disabled metrics land on a private registry that nothing exports.
		m.registry = prometheus.NewRegistry()
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

func (m *Manager) counterOpts(name, help string) prometheus.CounterOpts {
	return prometheus.CounterOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) gaugeOpts(name, help string) prometheus.GaugeOpts {
	return prometheus.GaugeOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.constLabels,
	}
}

func (m *Manager) histogramOpts(name, help string, buckets []float64) prometheus.HistogramOpts {
	return prometheus.HistogramOpts{
		Namespace:   m.namespace,
		Subsystem:   m.subsystem,
		Name:        m.name(name),
		Help:        help,
		ConstLabels: m.constLabels,
		Buckets:     buckets,
	}
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() { //nolint:funlen // one registration per metric
	auto := promauto.With(m.registry)

	m.refreshCycles = auto.NewCounterVec(
		m.counterOpts("refresh_cycles_total", "Refresh cycles by outcome"),
		[]string{"outcome"},
	)
	m.refreshDuration = auto.NewHistogram(
		m.histogramOpts("refresh_duration_milliseconds", "Duration of a full refresh cycle in milliseconds", m.latencyBuckets),
	)
	m.livePredictions = auto.NewGauge(
		m.gaugeOpts("live_predictions", "Predictions in the current snapshot"),
	)
	m.lastRefreshUnix = auto.NewGauge(
		m.gaugeOpts("last_refresh_unix_seconds", "Unix time of the last successful refresh"),
	)

	m.upstreamRequests = auto.NewCounterVec(
		m.counterOpts("upstream_requests_total", "Requests to the live-data provider by endpoint and status"),
		[]string{"endpoint", "status"},
	)
	m.upstreamLatency = auto.NewHistogramVec(
		m.histogramOpts("upstream_latency_milliseconds", "Live-data provider latency in milliseconds", m.latencyBuckets),
		[]string{"endpoint"},
	)

	m.matchesProcessed = auto.NewCounter(m.counterOpts("matches_processed_total", "Matches turned into predictions"))
	m.matchesRejected = auto.NewCounter(m.counterOpts("matches_rejected_total", "Matches refused by the validity gate"))
	m.matchesFailed = auto.NewCounter(m.counterOpts("matches_failed_total", "Matches skipped after a processing failure"))
	m.matchesDropped = auto.NewCounter(m.counterOpts("matches_dropped_total", "Matches not processed before the cycle deadline or queue limit"))
	m.alertsRaised = auto.NewCounter(m.counterOpts("alerts_raised_total", "Predictions whose alert decision was positive"))

	m.notificationsPushed = auto.NewCounter(m.counterOpts("notifications_pushed_total", "Entries added to the notification board"))
	m.notificationsSuppressed = auto.NewCounter(m.counterOpts("notifications_suppressed_total", "Qualifying predictions suppressed as repeats"))
	m.notifierSent = auto.NewCounterVec(
		m.counterOpts("notifier_messages_total", "Messages handed to external notifiers by sink and result"),
		[]string{"sink", "result"},
	)

	m.cacheHits = auto.NewCounterVec(m.counterOpts("cache_hits_total", "Snapshot cache hits"), []string{"backend"})
	m.cacheMisses = auto.NewCounterVec(m.counterOpts("cache_misses_total", "Snapshot cache misses"), []string{"backend"})
	m.cacheErrors = auto.NewCounterVec(m.counterOpts("cache_errors_total", "Snapshot cache backend errors"), []string{"backend"})

	m.queueSize = auto.NewGauge(m.gaugeOpts("queue_size", "Jobs waiting in the match queue"))
	m.queueCapacity = auto.NewGauge(m.gaugeOpts("queue_capacity", "Capacity of the match queue"))
	m.queueEnqueued = auto.NewCounter(m.counterOpts("queue_enqueued_total", "Jobs accepted by the match queue"))
	m.queueDropped = auto.NewCounter(m.counterOpts("queue_dropped_total", "Jobs refused because the queue was full or closed"))
	m.workerCount = auto.NewGauge(m.gaugeOpts("worker_count", "Workers in the processing pool"))
	m.workerLatency = auto.NewHistogram(
		m.histogramOpts("worker_latency_milliseconds", "Time to enrich and process one match in milliseconds", m.latencyBuckets),
	)
	m.workerErrorRate = auto.NewCounter(m.counterOpts("worker_errors_total", "Worker job failures"))

	m.streamClients = auto.NewGauge(m.gaugeOpts("stream_clients", "Connected websocket clients"))
	m.streamBroadcasts = auto.NewCounter(m.counterOpts("stream_broadcasts_total", "Snapshots broadcast to websocket clients"))
	m.streamDropped = auto.NewCounter(m.counterOpts("stream_dropped_total", "Messages dropped for slow websocket clients"))

	m.httpRequests = auto.NewCounterVec(
		m.counterOpts("http_requests_total", "HTTP requests by endpoint, method and status code"),
		[]string{"endpoint", "method", "status_code"},
	)
	m.httpRequestDuration = auto.NewHistogramVec(
		m.histogramOpts("http_request_duration_milliseconds", "HTTP request duration in milliseconds", m.latencyBuckets),
		[]string{"endpoint", "method", "status_code"},
	)
	m.errorRateByEndpoint = auto.NewCounterVec(
		m.counterOpts("http_errors_total", "HTTP errors by endpoint, method and error type"),
		[]string{"endpoint", "method", "error_type"},
	)

	m.systemMemoryUsage = auto.NewGauge(m.gaugeOpts("system_memory_bytes", "Heap bytes in use"))
	m.systemGoroutineCount = auto.NewGauge(m.gaugeOpts("system_goroutines", "Number of goroutines"))
	m.systemGCPauseTime = auto.NewHistogram(
		m.histogramOpts("system_gc_pause_milliseconds", "Most recent GC pause in milliseconds",
			[]float64{0.1, 0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000}),
	)
}

// CollectSystem samples memory, goroutine and GC figures once.
func (m *Manager) CollectSystem() {
	var ms runtime.MemStats
	runtime.ReadMemStats(&ms)
	m.systemMemoryUsage.Set(float64(ms.HeapAlloc))
	m.systemGoroutineCount.Set(float64(runtime.NumGoroutine()))
	if ms.NumGC > 0 {
		m.systemGCPauseTime.Observe(float64(ms.PauseNs[(ms.NumGC+255)%256]) / nanosPerMilli)
	}
}

// RunSystemCollector samples system figures every refresh interval until ctx ends.
func (m *Manager) RunSystemCollector(ctx context.Context) {
	t := time.NewTicker(m.collectInterval)
	defer t.Stop()
	for {
		m.CollectSystem()
		select {
		case <-ctx.Done():
			return
		case <-t.C:
		}
	}
}

// Refresh cycle.

// RecordRefresh counts a refresh cycle and its duration.
func RecordRefresh(outcome string, durationMs float64) {
	globalManager.refreshCycles.WithLabelValues(outcome).Inc()
	globalManager.refreshDuration.Observe(durationMs)
}

// UpdateLivePredictions sets the number of predictions in the current snapshot.
func UpdateLivePredictions(count int) {
	globalManager.livePredictions.Set(float64(count))
	globalManager.lastRefreshUnix.Set(float64(time.Now().Unix()))
}

// Upstream.

// RecordUpstreamRequest counts a provider request and its latency.
func RecordUpstreamRequest(endpoint, status string, latencyMs float64) {
	globalManager.upstreamRequests.WithLabelValues(endpoint, status).Inc()
	globalManager.upstreamLatency.WithLabelValues(endpoint).Observe(latencyMs)
}

// Engine.

// RecordMatchProcessed increments the processed matches counter.
func RecordMatchProcessed() { globalManager.matchesProcessed.Inc() }

// RecordMatchRejected increments the gate rejections counter.
func RecordMatchRejected() { globalManager.matchesRejected.Inc() }

// RecordMatchFailed increments the failed matches counter.
func RecordMatchFailed() { globalManager.matchesFailed.Inc() }

// RecordMatchesDropped adds n to the dropped matches counter.
func RecordMatchesDropped(n int) { globalManager.matchesDropped.Add(float64(n)) }

// RecordAlerts adds n to the raised alerts counter.
func RecordAlerts(n int) { globalManager.alertsRaised.Add(float64(n)) }

// Notifications.

// RecordNotificationsPushed adds n to the pushed notifications counter.
func RecordNotificationsPushed(n int) { globalManager.notificationsPushed.Add(float64(n)) }

// RecordNotificationsSuppressed adds n to the suppressed notifications counter.
func RecordNotificationsSuppressed(n int) { globalManager.notificationsSuppressed.Add(float64(n)) }

// RecordNotifierMessage counts one message handed to an external sink.
func RecordNotifierMessage(sink, result string) {
	globalManager.notifierSent.WithLabelValues(sink, result).Inc()
}

// Cache.

// RecordCacheHit increments the cache hit counter for backend.
func RecordCacheHit(backend string) { globalManager.cacheHits.WithLabelValues(backend).Inc() }

// RecordCacheMiss increments the cache miss counter for backend.
func RecordCacheMiss(backend string) { globalManager.cacheMisses.WithLabelValues(backend).Inc() }

// RecordCacheError increments the cache error counter for backend.
func RecordCacheError(backend string) { globalManager.cacheErrors.WithLabelValues(backend).Inc() }

// Queue and workers.

// UpdateQueueSize sets the current queue size.
func UpdateQueueSize(size int) { globalManager.queueSize.Set(float64(size)) }

// UpdateQueueCapacity sets the maximum queue capacity.
func UpdateQueueCapacity(capacity int) { globalManager.queueCapacity.Set(float64(capacity)) }

// RecordQueueEnqueue increments the enqueue counter.
func RecordQueueEnqueue() { globalManager.queueEnqueued.Inc() }

// RecordQueueDrop increments the dropped jobs counter.
func RecordQueueDrop() { globalManager.queueDropped.Inc() }

// UpdateWorkerCount sets the current worker count.
func UpdateWorkerCount(count int) { globalManager.workerCount.Set(float64(count)) }

// RecordWorkerLatency records how long one job took.
func RecordWorkerLatency(latencyMs float64) { globalManager.workerLatency.Observe(latencyMs) }

// RecordWorkerError increments the worker error counter.
func RecordWorkerError() { globalManager.workerErrorRate.Inc() }

// Stream.

// UpdateStreamClients sets the number of connected websocket clients.
func UpdateStreamClients(count int) { globalManager.streamClients.Set(float64(count)) }

// RecordStreamBroadcast increments the broadcast counter.
func RecordStreamBroadcast() { globalManager.streamBroadcasts.Inc() }

// RecordStreamDrop increments the dropped message counter.
func RecordStreamDrop() { globalManager.streamDropped.Inc() }

// HTTP.

// RecordHTTPRequest records an HTTP request.
func RecordHTTPRequest(endpoint, method, statusCode string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, statusCode).Inc()
}

// RecordHTTPRequestDuration records HTTP request duration.
func RecordHTTPRequestDuration(endpoint, method, statusCode string, duration float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, statusCode).Observe(duration)
}

// RecordErrorByEndpoint records an error with endpoint, method, and error type labels.
func RecordErrorByEndpoint(endpoint, method, errorType string) {
	globalManager.errorRateByEndpoint.WithLabelValues(endpoint, method, errorType).Inc()
}

// System.

// CollectSystem samples system figures on the global manager.
func CollectSystem() { globalManager.CollectSystem() }

// RunSystemCollector runs the global manager's system sampler until ctx ends.
func RunSystemCollector(ctx context.Context) { globalManager.RunSystemCollector(ctx) }

// GetRegistry returns the custom Prometheus registry used by our metrics.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

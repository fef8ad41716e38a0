// Package metrics provides Prometheus metrics for the posture monitor.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Manager manages all Prometheus metrics for the daemon.
type Manager struct {
	namespace        string
	subsystem        string
	histogramBuckets []float64
	enabled          bool
	registry         prometheus.Registerer

	// Frame loop metrics
	framesProcessed   prometheus.Counter
	frameFailures     prometheus.Counter
	inferenceFailures prometheus.Counter
	inferenceLatency  prometheus.Histogram
	samplesRejected   prometheus.Counter

	// Posture state metrics
	debounceCount prometheus.Gauge
	postureDelta  prometheus.Gauge
	alertState    prometheus.Gauge
	alertEpisodes prometheus.Counter

	// Overlay metrics
	overlayAlpha prometheus.Gauge
	surfaceShows prometheus.Counter
	surfaceHides prometheus.Counter

	// Control and storage metrics
	commandDrops prometheus.Counter
	storeErrors  prometheus.Counter

	// HTTP metrics
	httpRequests        *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec

	// System metrics
	systemMemory     prometheus.Gauge
	systemGoroutines prometheus.Gauge
}

// Global metrics manager instance.
var globalManager *Manager //nolint:gochecknoglobals // intentional global for singleton metrics manager

// Custom registry to avoid default Go metrics.
var customRegistry = prometheus.NewRegistry() //nolint:gochecknoglobals // intentional global for metrics registry

// Initialize global metrics.
func init() { //nolint:gochecknoinits // intentional init for global metrics setup
	globalManager = NewManager(WithRegistry(customRegistry))
}

// NewManager creates a new metrics manager with default configuration.
func NewManager(opts ...Option) *Manager {
	m := &Manager{
		namespace:        "slouchd",
		subsystem:        "posture",
		histogramBuckets: prometheus.DefBuckets,
		enabled:          true,
		registry:         prometheus.DefaultRegisterer,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.initializeMetrics()

	return m
}

// initializeMetrics creates all the Prometheus metrics.
func (m *Manager) initializeMetrics() {
	auto := promauto.With(m.registry)

	m.framesProcessed = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frames_processed_total",
		Help:      "Total number of camera frames run through the loop",
	})

	m.frameFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "frame_failures_total",
		Help:      "Total number of frame acquisition failures (transient, per tick)",
	})

	m.inferenceFailures = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inference_failures_total",
		Help:      "Total number of inference failures (transient, per tick)",
	})

	m.inferenceLatency = auto.NewHistogram(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "inference_latency_milliseconds",
		Help:      "Histogram of pose inference latency in milliseconds",
		Buckets:   m.histogramBuckets,
	})

	m.samplesRejected = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "samples_rejected_total",
		Help:      "Total number of keypoint readings below the confidence threshold",
	})

	m.debounceCount = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "debounce_count",
		Help:      "Current consecutive bad-posture frame count",
	})

	m.postureDelta = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "delta_pixels",
		Help:      "Current vertical drift from the baseline in pixels",
	})

	m.alertState = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "alert_state",
		Help:      "1 while the bad-posture alert is active, else 0",
	})

	m.alertEpisodes = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "alert_episodes_total",
		Help:      "Total number of sustained bad-posture episodes",
	})

	m.overlayAlpha = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "overlay_alpha",
		Help:      "Current overlay opacity (0-255 scale)",
	})

	m.surfaceShows = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "surface_shows_total",
		Help:      "Total number of overlay surface show transitions",
	})

	m.surfaceHides = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "surface_hides_total",
		Help:      "Total number of overlay surface hide transitions",
	})

	m.commandDrops = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "command_drops_total",
		Help:      "Total number of commands dropped on queue backpressure",
	})

	m.storeErrors = auto.NewCounter(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "episode_store_errors_total",
		Help:      "Total number of episode store failures",
	})

	m.httpRequests = auto.NewCounterVec(prometheus.CounterOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_requests_total",
		Help:      "Total number of HTTP requests by endpoint, method and status",
	}, []string{"endpoint", "method", "status"})

	m.httpRequestDuration = auto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: m.namespace,
		Subsystem: m.subsystem,
		Name:      "http_request_duration_milliseconds",
		Help:      "Histogram of HTTP request duration in milliseconds",
		Buckets:   m.histogramBuckets,
	}, []string{"endpoint", "method", "status"})

	m.systemMemory = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "memory_bytes",
		Help:      "Current allocated heap memory in bytes",
	})

	m.systemGoroutines = auto.NewGauge(prometheus.GaugeOpts{
		Namespace: m.namespace,
		Subsystem: "system",
		Name:      "goroutines",
		Help:      "Current number of goroutines",
	})
}

// GetRegistry returns the custom registry used by the global manager.
func GetRegistry() *prometheus.Registry {
	return customRegistry
}

// RecordFrameProcessed increments the processed-frames counter.
func RecordFrameProcessed() {
	globalManager.framesProcessed.Inc()
}

// RecordFrameFailure increments the frame-failure counter.
func RecordFrameFailure() {
	globalManager.frameFailures.Inc()
}

// RecordInferenceFailure increments the inference-failure counter.
func RecordInferenceFailure() {
	globalManager.inferenceFailures.Inc()
}

// RecordInferenceLatency records one inference duration in milliseconds.
func RecordInferenceLatency(ms float64) {
	globalManager.inferenceLatency.Observe(ms)
}

// RecordSampleRejected increments the low-confidence rejection counter.
func RecordSampleRejected() {
	globalManager.samplesRejected.Inc()
}

// UpdateDebounceCount sets the current debounce counter gauge.
func UpdateDebounceCount(count int) {
	globalManager.debounceCount.Set(float64(count))
}

// UpdatePostureDelta sets the current baseline-drift gauge.
func UpdatePostureDelta(delta float64) {
	globalManager.postureDelta.Set(delta)
}

// UpdateAlertState sets the alert gauge.
func UpdateAlertState(alert bool) {
	if alert {
		globalManager.alertState.Set(1)
	} else {
		globalManager.alertState.Set(0)
	}
}

// RecordAlertEpisode increments the episode counter.
func RecordAlertEpisode() {
	globalManager.alertEpisodes.Inc()
}

// UpdateOverlayAlpha sets the overlay opacity gauge.
func UpdateOverlayAlpha(alpha uint32) {
	globalManager.overlayAlpha.Set(float64(alpha))
}

// RecordSurfaceShow increments the surface show-transition counter.
func RecordSurfaceShow() {
	globalManager.surfaceShows.Inc()
}

// RecordSurfaceHide increments the surface hide-transition counter.
func RecordSurfaceHide() {
	globalManager.surfaceHides.Inc()
}

// RecordCommandDrop increments the command backpressure counter.
func RecordCommandDrop() {
	globalManager.commandDrops.Inc()
}

// RecordStoreError increments the episode store failure counter.
func RecordStoreError() {
	globalManager.storeErrors.Inc()
}

// RecordHTTPRequest increments the HTTP request counter.
func RecordHTTPRequest(endpoint, method, status string) {
	globalManager.httpRequests.WithLabelValues(endpoint, method, status).Inc()
}

// RecordHTTPRequestDuration records one HTTP request duration in milliseconds.
func RecordHTTPRequestDuration(endpoint, method, status string, ms float64) {
	globalManager.httpRequestDuration.WithLabelValues(endpoint, method, status).Observe(ms)
}

// UpdateSystemMemoryUsage sets the allocated heap gauge.
func UpdateSystemMemoryUsage(bytes uint64) {
	globalManager.systemMemory.Set(float64(bytes))
}

// UpdateSystemGoroutineCount sets the goroutine gauge.
func UpdateSystemGoroutineCount(count int) {
	globalManager.systemGoroutines.Set(float64(count))
}

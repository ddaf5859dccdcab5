package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics contains all Prometheus metrics for the clip media service
type Metrics struct {
	// Operation metrics, labeled by operation kind
	// (trim, concat, gain, thumbnails, waveform)
	OperationsStarted   *prometheus.CounterVec
	OperationsCompleted *prometheus.CounterVec
	OperationsFailed    *prometheus.CounterVec
	OperationDuration   *prometheus.HistogramVec

	// Engine metrics
	EngineInvocations prometheus.Counter
	EngineFailures    prometheus.Counter

	// Workspace metrics
	StagedArtifacts prometheus.Gauge

	// Extraction metrics
	ThumbnailFrames prometheus.Histogram
	WaveformBuckets prometheus.Histogram
	OutputBytes     prometheus.Histogram

	// HTTP API metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPErrors          *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics() *Metrics {
	return &Metrics{
		OperationsStarted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clip_operations_started_total",
			Help: "Total number of clip operations started",
		}, []string{"kind"}),
		OperationsCompleted: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clip_operations_completed_total",
			Help: "Total number of clip operations completed successfully",
		}, []string{"kind"}),
		OperationsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clip_operations_failed_total",
			Help: "Total number of clip operations that failed",
		}, []string{"kind"}),
		OperationDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clip_operation_duration_seconds",
			Help:    "Duration of clip operations",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 12), // 10ms to ~40s
		}, []string{"kind"}),

		EngineInvocations: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clip_engine_invocations_total",
			Help: "Total number of transcoding engine commands executed",
		}),
		EngineFailures: promauto.NewCounter(prometheus.CounterOpts{
			Name: "clip_engine_failures_total",
			Help: "Total number of transcoding engine commands that failed",
		}),

		StagedArtifacts: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "clip_staged_artifacts",
			Help: "Current number of artifacts staged in the engine namespace",
		}),

		ThumbnailFrames: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clip_thumbnail_frames",
			Help:    "Number of thumbnail frames produced per extraction",
			Buckets: prometheus.ExponentialBuckets(1, 2, 8), // 1 to 128 frames
		}),
		WaveformBuckets: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clip_waveform_buckets",
			Help:    "Length of waveform visualization vectors produced",
			Buckets: prometheus.LinearBuckets(0, 50, 9), // 0 to 400 buckets
		}),
		OutputBytes: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "clip_output_bytes",
			Help:    "Size of operation output buffers in bytes",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 10), // 1KB to ~256MB
		}),

		HTTPRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clip_http_requests_total",
			Help: "Total number of HTTP requests",
		}, []string{"method", "endpoint", "status_code"}),
		HTTPRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "clip_http_request_duration_seconds",
			Help:    "Duration of HTTP requests",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),
		HTTPErrors: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "clip_http_errors_total",
			Help: "Total number of HTTP errors",
		}, []string{"method", "endpoint", "error_type"}),
	}
}

// RecordOperationStarted increments the started counter for an operation kind
func (m *Metrics) RecordOperationStarted(kind string) {
	m.OperationsStarted.WithLabelValues(kind).Inc()
}

// RecordOperationCompleted records a successful operation and its duration
func (m *Metrics) RecordOperationCompleted(kind string, durationSeconds float64) {
	m.OperationsCompleted.WithLabelValues(kind).Inc()
	m.OperationDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// RecordOperationFailed records a failed operation and its duration
func (m *Metrics) RecordOperationFailed(kind string, durationSeconds float64) {
	m.OperationsFailed.WithLabelValues(kind).Inc()
	m.OperationDuration.WithLabelValues(kind).Observe(durationSeconds)
}

// RecordEngineInvocation increments engine counters
func (m *Metrics) RecordEngineInvocation(failed bool) {
	m.EngineInvocations.Inc()
	if failed {
		m.EngineFailures.Inc()
	}
}

// SetStagedArtifacts sets the staged artifact gauge
func (m *Metrics) SetStagedArtifacts(count int) {
	m.StagedArtifacts.Set(float64(count))
}

// RecordThumbnailFrames records how many frames an extraction produced
func (m *Metrics) RecordThumbnailFrames(count int) {
	m.ThumbnailFrames.Observe(float64(count))
}

// RecordWaveformBuckets records the visualization vector length
func (m *Metrics) RecordWaveformBuckets(count int) {
	m.WaveformBuckets.Observe(float64(count))
}

// RecordOutputBytes records the size of an operation's output buffer
func (m *Metrics) RecordOutputBytes(size int) {
	m.OutputBytes.Observe(float64(size))
}

// RecordHTTPRequest records an HTTP request
func (m *Metrics) RecordHTTPRequest(method, endpoint, statusCode string, durationSeconds float64) {
	m.HTTPRequests.WithLabelValues(method, endpoint, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, endpoint).Observe(durationSeconds)
}

// RecordHTTPError records an HTTP error
func (m *Metrics) RecordHTTPError(method, endpoint, errorType string) {
	m.HTTPErrors.WithLabelValues(method, endpoint, errorType).Inc()
}

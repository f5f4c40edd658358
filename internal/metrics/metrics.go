package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal     *prometheus.CounterVec
	HTTPRequestDuration   *prometheus.HistogramVec
	HTTPResponseSize      *prometheus.HistogramVec
	HTTPActiveConnections *prometheus.GaugeVec

	// Rate limiting metrics
	RateLimitExceededTotal *prometheus.CounterVec

	// Database metrics
	DatabaseConnectAttempts *prometheus.CounterVec
	DatabaseConnectDuration prometheus.Histogram

	// Real-time gateway metrics
	WebSocketConnections   prometheus.Gauge
	WebSocketMessagesTotal *prometheus.CounterVec
	WebSocketDroppedTotal  prometheus.Counter
	RoomsActive            prometheus.Gauge
	PresenceOnline         prometheus.Gauge

	// Chat metrics
	ChatAppendsTotal   *prometheus.CounterVec
	ChatAppendDuration prometheus.Histogram

	// Blob store metrics
	BlobUploadsTotal    *prometheus.CounterVec
	BlobUploadBytes     prometheus.Histogram
	CircuitBreakerState *prometheus.GaugeVec

	// Error metrics
	ErrorsTotal *prometheus.CounterVec

	Social *SocialMetrics
}

var (
	instance *Metrics
	once     sync.Once
)

// Initialize creates and registers all Prometheus metrics
func Initialize() *Metrics {
	once.Do(func() {
		instance = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "http_requests_total",
					Help: "Total number of HTTP requests",
				},
				[]string{"method", "path", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_request_duration_seconds",
					Help:    "HTTP request latency in seconds",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5},
				},
				[]string{"method", "path", "status"},
			),
			HTTPResponseSize: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "http_response_size_bytes",
					Help:    "HTTP response size in bytes",
					Buckets: prometheus.ExponentialBuckets(100, 10, 7),
				},
				[]string{"method", "path", "status"},
			),
			HTTPActiveConnections: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "http_active_connections",
					Help: "Number of currently active HTTP connections",
				},
				[]string{"method", "path"},
			),

			RateLimitExceededTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "rate_limit_exceeded_total",
					Help: "Total number of rate limit violations",
				},
				[]string{"scope"},
			),

			DatabaseConnectAttempts: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "database_connect_attempts_total",
					Help: "Database connection attempts by outcome",
				},
				[]string{"status"},
			),
			DatabaseConnectDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "database_connect_duration_seconds",
					Help:    "Time spent establishing the database connection",
					Buckets: []float64{.01, .05, .1, .25, .5, 1, 2.5, 5, 10},
				},
			),

			WebSocketConnections: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "websocket_connections",
					Help: "Currently connected websocket clients",
				},
			),
			WebSocketMessagesTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "websocket_messages_total",
					Help: "Realtime events handled by type and outcome",
				},
				[]string{"type", "status"},
			),
			WebSocketDroppedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "websocket_dropped_frames_total",
					Help: "Frames dropped because a client send buffer was full",
				},
			),
			RoomsActive: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "chat_rooms_active",
					Help: "Rooms with at least one joined connection",
				},
			),
			PresenceOnline: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "presence_online_identities",
					Help: "Identities currently marked online in this process",
				},
			),

			ChatAppendsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "chat_appends_total",
					Help: "Chat message appends by outcome",
				},
				[]string{"status"},
			),
			ChatAppendDuration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "chat_append_duration_seconds",
					Help:    "Latency of the atomic chat append transaction",
					Buckets: []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
				},
			),

			BlobUploadsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "blob_uploads_total",
					Help: "Blob store uploads by folder and outcome",
				},
				[]string{"folder", "status"},
			),
			BlobUploadBytes: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "blob_upload_bytes",
					Help:    "Size of uploaded blobs",
					Buckets: prometheus.ExponentialBuckets(1024, 4, 9),
				},
			),
			CircuitBreakerState: promauto.NewGaugeVec(
				prometheus.GaugeOpts{
					Name: "circuit_breaker_state",
					Help: "Circuit breaker state (0=closed, 1=half-open, 2=open)",
				},
				[]string{"name"},
			),

			ErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "errors_total",
					Help: "Total number of errors by type",
				},
				[]string{"error_type", "endpoint"},
			),

			Social: newSocialMetrics(),
		}
	})
	return instance
}

// Get returns the global metrics instance
func Get() *Metrics {
	return Initialize()
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}

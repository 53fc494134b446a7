package observability

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metrics
type Metrics struct {
	// HTTP metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	// Ingestion metrics
	IngestBatchesTotal *prometheus.CounterVec
	IngestEventsTotal  *prometheus.CounterVec
	IngestBatchSize    prometheus.Histogram

	// Rate limit metrics
	RateLimitDecisionsTotal *prometheus.CounterVec
	RateLimitEntries        prometheus.Gauge

	// Store metrics
	StoredEventsTotal prometheus.Gauge
	SessionsTotal     prometheus.Gauge

	// Query metrics
	QueryDuration prometheus.Histogram
	ExportsTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewMetrics creates and registers all Prometheus metrics
func NewMetrics(registry *prometheus.Registry) *Metrics {
	m := &Metrics{
		registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telemetry_http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "path", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "telemetry_http_request_duration_seconds",
				Help:    "HTTP request duration in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "path"},
		),

		IngestBatchesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telemetry_ingest_batches_total",
				Help: "Total number of ingestion batches by outcome",
			},
			[]string{"outcome"},
		),
		IngestEventsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telemetry_ingest_events_total",
				Help: "Total number of accepted events by type",
			},
			[]string{"event_type"},
		),
		IngestBatchSize: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "telemetry_ingest_batch_size",
				Help:    "Accepted events per batch",
				Buckets: []float64{1, 5, 10, 25, 50, 100},
			},
		),

		RateLimitDecisionsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telemetry_rate_limit_decisions_total",
				Help: "Rate limit decisions by outcome",
			},
			[]string{"outcome"},
		),
		RateLimitEntries: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "telemetry_rate_limit_entries",
				Help: "Tracked rate limit client keys",
			},
		),

		StoredEventsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "telemetry_stored_events_total",
				Help: "Events currently held in the store",
			},
		),
		SessionsTotal: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Name: "telemetry_sessions_total",
				Help: "Distinct sessions seen",
			},
		),

		QueryDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "telemetry_query_duration_seconds",
				Help:    "Event query duration in seconds",
				Buckets: []float64{.0005, .001, .005, .01, .05, .1, .5, 1},
			},
		),
		ExportsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "telemetry_exports_total",
				Help: "Event exports by format",
			},
			[]string{"format"},
		),
	}

	registry.MustRegister(
		m.HTTPRequestsTotal,
		m.HTTPRequestDuration,
		m.IngestBatchesTotal,
		m.IngestEventsTotal,
		m.IngestBatchSize,
		m.RateLimitDecisionsTotal,
		m.RateLimitEntries,
		m.StoredEventsTotal,
		m.SessionsTotal,
		m.QueryDuration,
		m.ExportsTotal,
	)

	return m
}

// Handler returns the /metrics HTTP handler for this registry.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// ObserveHTTPRequest records one completed HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, path string, status int, duration time.Duration) {
	m.HTTPRequestsTotal.WithLabelValues(method, path, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, path).Observe(duration.Seconds())
}

// responseRecorder captures the status code written by a handler.
type responseRecorder struct {
	http.ResponseWriter
	status int
}

func (r *responseRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// HTTPMiddleware instruments a handler with request count and duration.
func (m *Metrics) HTTPMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &responseRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)
		m.ObserveHTTPRequest(r.Method, r.URL.Path, recorder.status, time.Since(start))
	})
}

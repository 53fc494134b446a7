// Package observability provides structured logging, Prometheus metrics, and OpenTelemetry tracing.
//
// # Overview
//
// This package centralizes observability infrastructure including JSON logging,
// metrics collection, health probes, distributed tracing, panic recovery, and
// graceful shutdown.
//
// # Structured Logging
//
// Create logger:
//
//	logger := observability.NewLogger(observability.InfoLevel, os.Stdout)
//	logger.WithField("port", 8080).Info("Server started")
//
// Context-aware logging:
//
//	logger := observability.FromContext(ctx) // carries request_id and client_ip
//
// # Prometheus Metrics
//
// Initialize metrics:
//
//	metrics := observability.NewMetrics(prometheus.NewRegistry())
//	metrics.IngestBatchesTotal.WithLabelValues("accepted").Inc()
//	metrics.IngestBatchSize.Observe(float64(accepted))
//
// # Health Probes
//
// Configure health checker:
//
//	checker := observability.NewHealthChecker(store, limiter, version)
//	checker.RegisterHealthRoutes(mux) // /healthz and /readyz
//
// # OpenTelemetry
//
// InitOTel wires an OTLP/gRPC trace exporter when enabled; disabled
// configurations return nil providers and ShutdownOTel becomes a no-op.
package observability

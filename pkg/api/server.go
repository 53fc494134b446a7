package api

import (
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"github.com/tunehub/telemetry/pkg/observability"
	"github.com/tunehub/telemetry/pkg/telemetry"
)

// ServerOptions configures the assembled handler chain.
type ServerOptions struct {
	Metrics     *observability.Metrics
	Logger      *observability.Logger
	TracingOn   bool
	ServiceName string
}

// NewServer assembles the full HTTP handler: router, request context,
// access logging, panic recovery, and optional metrics/tracing wrappers.
func NewServer(service *telemetry.Service, opts ServerOptions) http.Handler {
	router := mux.NewRouter()

	handlers := NewHandlers(service, opts.Metrics)
	handlers.RegisterRoutes(router)

	logger := opts.Logger
	if logger == nil {
		logger = observability.NewLogger(observability.InfoLevel, nil)
	}

	var handler http.Handler = router
	handler = RecoveryMiddleware(logger)(handler)
	handler = AccessLogMiddleware(handler)
	if opts.Metrics != nil {
		handler = opts.Metrics.HTTPMiddleware(handler)
	}
	handler = RequestContextMiddleware(handler)
	if opts.TracingOn {
		name := opts.ServiceName
		if name == "" {
			name = "telemetry-analytics"
		}
		handler = otelhttp.NewHandler(handler, name)
	}

	return handler
}

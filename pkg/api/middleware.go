package api

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/tunehub/telemetry/pkg/observability"
	"github.com/tunehub/telemetry/pkg/ratelimit"
)

// RequestContextMiddleware assigns a request id and resolves the client
// identity into the request context for downstream logging.
func RequestContextMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get("X-Request-ID")
		if requestID == "" {
			requestID = uuid.NewString()
		}

		ctx := observability.WithRequestID(r.Context(), requestID)
		ctx = observability.WithClientIP(ctx, ratelimit.ClientKey(r))

		w.Header().Set("X-Request-ID", requestID)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// AccessLogMiddleware logs one line per request.
func AccessLogMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		next.ServeHTTP(recorder, r)

		logrus.WithFields(logrus.Fields{
			"method":      r.Method,
			"path":        r.URL.Path,
			"status":      recorder.status,
			"duration_ms": time.Since(start).Milliseconds(),
			"request_id":  observability.GetRequestID(r.Context()),
			"client_ip":   observability.GetClientIP(r.Context()),
		}).Info("request handled")
	})
}

// RecoveryMiddleware converts panics into a generic 500 without leaking
// internal detail to the caller. Events appended before the panic stay
// stored.
func RecoveryMiddleware(logger *observability.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if err := observability.MustRecover(recover()); err != nil {
					observability.UpdateLoggerWithTraceContext(r.Context(), logger).
						WithError(err).
						WithField("path", r.URL.Path).
						Error("request handler panicked")
					writeError(w, http.StatusInternalServerError, ErrorResponse{
						Error: "internal_error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"

	"github.com/tunehub/telemetry/pkg/observability"
	"github.com/tunehub/telemetry/pkg/ratelimit"
	"github.com/tunehub/telemetry/pkg/telemetry"
)

// maxQueryLimit caps the page size a caller may request.
const maxQueryLimit = 1000

// defaultQueryLimit is used when no limit parameter is present.
const defaultQueryLimit = 50

// Handlers provides the telemetry HTTP API.
type Handlers struct {
	service *telemetry.Service
	metrics *observability.Metrics
}

// NewHandlers creates handlers over the ingestion service. metrics may be
// nil when metrics are disabled.
func NewHandlers(service *telemetry.Service, metrics *observability.Metrics) *Handlers {
	return &Handlers{
		service: service,
		metrics: metrics,
	}
}

// RegisterRoutes registers the API routes.
func (h *Handlers) RegisterRoutes(router *mux.Router) {
	router.HandleFunc("/api/v1/events", h.ingest).Methods("POST")
	router.HandleFunc("/api/v1/events", h.queryEvents).Methods("GET")
	router.HandleFunc("/api/v1/events/export", h.exportEvents).Methods("GET")
	router.HandleFunc("/api/v1/analytics/stats", h.getStats).Methods("GET")
	router.HandleFunc("/api/v1/sessions", h.listSessions).Methods("GET")
	router.HandleFunc("/api/v1/sessions/{id}", h.getSession).Methods("GET")
}

// ingest handles POST /api/v1/events
func (h *Handlers) ingest(w http.ResponseWriter, r *http.Request) {
	var payload IngestPayload
	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{
			Error: "invalid_payload",
			Violations: []telemetry.FieldViolation{
				{Field: "body", Message: "malformed JSON"},
			},
		})
		return
	}

	result, err := h.service.Ingest(telemetry.IngestRequest{
		ClientKey: ratelimit.ClientKey(r),
		BatchID:   payload.BatchID,
		Platform:  payload.Platform,
		Events:    payload.Events,
	})
	if err != nil {
		h.writeIngestError(w, err)
		return
	}

	if h.metrics != nil {
		h.metrics.IngestBatchesTotal.WithLabelValues("accepted").Inc()
		h.metrics.IngestBatchSize.Observe(float64(result.Accepted))
		for eventType, count := range result.Stats.EventTypes {
			h.metrics.IngestEventsTotal.WithLabelValues(string(eventType)).Add(float64(count))
		}
		h.metrics.RateLimitDecisionsTotal.WithLabelValues("allowed").Inc()
		h.refreshGauges()
	}

	setQuotaHeaders(w, h.service.Limiter().Limit(), result.Quota)
	writeJSON(w, http.StatusOK, IngestResponse{
		BatchID:  result.BatchID,
		Accepted: result.Accepted,
		Stats:    result.Stats,
	})
}

func (h *Handlers) writeIngestError(w http.ResponseWriter, err error) {
	var rateLimited *telemetry.RateLimitError
	if errors.As(err, &rateLimited) {
		if h.metrics != nil {
			h.metrics.IngestBatchesTotal.WithLabelValues("rate_limited").Inc()
			h.metrics.RateLimitDecisionsTotal.WithLabelValues("rejected").Inc()
		}
		decision := rateLimited.Decision
		setQuotaHeaders(w, h.service.Limiter().Limit(), decision)
		w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
		writeError(w, http.StatusTooManyRequests, ErrorResponse{
			Error:      "rate_limited",
			RetryAfter: decision.RetryAfter,
			Remaining:  decision.Remaining,
			ResetAt:    decision.ResetAt.Unix(),
		})
		return
	}

	var invalid *telemetry.ValidationError
	if errors.As(err, &invalid) {
		if h.metrics != nil {
			h.metrics.IngestBatchesTotal.WithLabelValues("invalid").Inc()
		}
		writeError(w, http.StatusBadRequest, ErrorResponse{
			Error:      "invalid_payload",
			Violations: invalid.Violations,
		})
		return
	}

	if h.metrics != nil {
		h.metrics.IngestBatchesTotal.WithLabelValues("error").Inc()
	}
	writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
}

// queryEvents handles GET /api/v1/events
func (h *Handlers) queryEvents(w http.ResponseWriter, r *http.Request) {
	filter, limit, offset, err := parseQueryParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{
			Error: "invalid_query",
			Violations: []telemetry.FieldViolation{
				{Field: "query", Message: err.Error()},
			},
		})
		return
	}

	start := time.Now()
	result := h.service.Query(filter, limit, offset)
	if h.metrics != nil {
		h.metrics.QueryDuration.Observe(time.Since(start).Seconds())
	}

	writeJSON(w, http.StatusOK, result)
}

// getStats handles GET /api/v1/analytics/stats
func (h *Handlers) getStats(w http.ResponseWriter, r *http.Request) {
	filter, _, _, err := parseQueryParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{
			Error: "invalid_query",
			Violations: []telemetry.FieldViolation{
				{Field: "query", Message: err.Error()},
			},
		})
		return
	}

	writeJSON(w, http.StatusOK, h.service.StatsOverview(filter))
}

// listSessions handles GET /api/v1/sessions
func (h *Handlers) listSessions(w http.ResponseWriter, r *http.Request) {
	sessions := h.service.Sessions()
	writeJSON(w, http.StatusOK, SessionsResponse{
		Sessions: sessions,
		Count:    len(sessions),
	})
}

// getSession handles GET /api/v1/sessions/{id}
func (h *Handlers) getSession(w http.ResponseWriter, r *http.Request) {
	summary, err := h.service.Session(mux.Vars(r)["id"])
	if err != nil {
		if errors.Is(err, telemetry.ErrNotFound) {
			writeError(w, http.StatusNotFound, ErrorResponse{Error: "session_not_found"})
			return
		}
		writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
		return
	}
	writeJSON(w, http.StatusOK, summary)
}

// exportEvents handles GET /api/v1/events/export
func (h *Handlers) exportEvents(w http.ResponseWriter, r *http.Request) {
	filter, _, _, err := parseQueryParams(r)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponse{
			Error: "invalid_query",
			Violations: []telemetry.FieldViolation{
				{Field: "query", Message: err.Error()},
			},
		})
		return
	}

	format := telemetry.ExportFormat(r.URL.Query().Get("format"))
	if format == "" {
		format = telemetry.ExportFormatJSON
	}

	data, err := h.service.Export(filter, format)
	if err != nil {
		writeError(w, http.StatusInternalServerError, ErrorResponse{Error: "internal_error"})
		return
	}

	if h.metrics != nil {
		h.metrics.ExportsTotal.WithLabelValues(string(format)).Inc()
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=events.%s", format))
	w.Write(data)
}

// refreshGauges pushes current store and limiter sizes into the gauges.
func (h *Handlers) refreshGauges() {
	h.metrics.StoredEventsTotal.Set(float64(h.service.Store().EventCount()))
	h.metrics.SessionsTotal.Set(float64(h.service.Store().SessionCount()))
	h.metrics.RateLimitEntries.Set(float64(h.service.Limiter().EntryCount()))
}

// setQuotaHeaders exposes the sustained quota figures on every decided
// request, mirroring the usual X-RateLimit conventions.
func setQuotaHeaders(w http.ResponseWriter, limit int, decision ratelimit.Decision) {
	w.Header().Set("X-RateLimit-Limit", strconv.Itoa(limit))
	w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(decision.Remaining))
	w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(decision.ResetAt.Unix(), 10))
}

// parseQueryParams extracts the filter, limit, and offset from the request.
func parseQueryParams(r *http.Request) (telemetry.QueryFilter, int, int, error) {
	var filter telemetry.QueryFilter
	query := r.URL.Query()

	if typeStr := query.Get("type"); typeStr != "" {
		eventType := telemetry.EventType(typeStr)
		if !telemetry.IsKnownEventType(eventType) {
			return filter, 0, 0, fmt.Errorf("unknown event type %q", typeStr)
		}
		filter.EventType = eventType
	}

	if startStr := query.Get("start_time"); startStr != "" {
		t, err := time.Parse(time.RFC3339, startStr)
		if err != nil {
			return filter, 0, 0, fmt.Errorf("invalid start_time: must be RFC3339")
		}
		filter.StartTime = &t
	}
	if endStr := query.Get("end_time"); endStr != "" {
		t, err := time.Parse(time.RFC3339, endStr)
		if err != nil {
			return filter, 0, 0, fmt.Errorf("invalid end_time: must be RFC3339")
		}
		filter.EndTime = &t
	}

	limit := defaultQueryLimit
	if limitStr := query.Get("limit"); limitStr != "" {
		parsed, err := strconv.Atoi(limitStr)
		if err != nil || parsed < 0 {
			return filter, 0, 0, fmt.Errorf("invalid limit: must be a non-negative integer")
		}
		if parsed > maxQueryLimit {
			return filter, 0, 0, fmt.Errorf("invalid limit: max %d", maxQueryLimit)
		}
		limit = parsed
	}

	offset := 0
	if offsetStr := query.Get("offset"); offsetStr != "" {
		parsed, err := strconv.Atoi(offsetStr)
		if err != nil || parsed < 0 {
			return filter, 0, 0, fmt.Errorf("invalid offset: must be a non-negative integer")
		}
		offset = parsed
	}

	return filter, limit, offset, nil
}

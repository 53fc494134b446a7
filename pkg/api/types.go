package api

import (
	"encoding/json"
	"net/http"

	"github.com/tunehub/telemetry/pkg/telemetry"
)

// IngestPayload is the request body for POST /api/v1/events.
type IngestPayload struct {
	BatchID  string                    `json:"batch_id,omitempty"`
	Platform string                    `json:"platform,omitempty"`
	Events   []telemetry.IncomingEvent `json:"events"`
}

// IngestResponse is returned on a successful ingestion.
type IngestResponse struct {
	BatchID  string          `json:"batch_id"`
	Accepted int             `json:"accepted"`
	Stats    telemetry.Stats `json:"stats"`
}

// ErrorResponse is the envelope for all error results.
type ErrorResponse struct {
	Error      string                     `json:"error"`
	Violations []telemetry.FieldViolation `json:"violations,omitempty"`
	RetryAfter int                        `json:"retry_after,omitempty"`
	Remaining  int                        `json:"remaining,omitempty"`
	ResetAt    int64                      `json:"reset_at,omitempty"`
}

// SessionsResponse wraps the session listing.
type SessionsResponse struct {
	Sessions []telemetry.SessionSummary `json:"sessions"`
	Count    int                        `json:"count"`
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(body)
}

func writeError(w http.ResponseWriter, status int, resp ErrorResponse) {
	writeJSON(w, status, resp)
}

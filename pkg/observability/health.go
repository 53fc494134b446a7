package observability

import (
	"encoding/json"
	"net/http"
	"time"
)

// StoreStats reports the event store's current size for health output.
type StoreStats interface {
	EventCount() int
	SessionCount() int
}

// LimiterStats reports the rate limiter's tracked key count.
type LimiterStats interface {
	EntryCount() int
}

// HealthChecker provides liveness and readiness probes. The service holds
// all state in process, so readiness only reports internal gauges; there
// are no external dependencies to probe.
type HealthChecker struct {
	store   StoreStats
	limiter LimiterStats
	version string
}

// NewHealthChecker creates a health checker over the service's state.
func NewHealthChecker(store StoreStats, limiter LimiterStats, version string) *HealthChecker {
	return &HealthChecker{
		store:   store,
		limiter: limiter,
		version: version,
	}
}

// HealthStatus represents the overall health status
type HealthStatus struct {
	Status    string         `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
	Version   string         `json:"version,omitempty"`
	Details   map[string]int `json:"details,omitempty"`
}

const (
	StatusHealthy = "healthy"
)

// Liveness returns 200 whenever the process is serving.
func (h *HealthChecker) Liveness(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status":    StatusHealthy,
		"timestamp": time.Now(),
	})
}

// Readiness reports healthy along with store and limiter gauges.
func (h *HealthChecker) Readiness(w http.ResponseWriter, r *http.Request) {
	status := HealthStatus{
		Status:    StatusHealthy,
		Timestamp: time.Now(),
		Version:   h.version,
		Details:   map[string]int{},
	}
	if h.store != nil {
		status.Details["stored_events"] = h.store.EventCount()
		status.Details["sessions"] = h.store.SessionCount()
	}
	if h.limiter != nil {
		status.Details["rate_limit_entries"] = h.limiter.EntryCount()
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(status)
}

// RegisterHealthRoutes attaches the probes to a mux.
func (h *HealthChecker) RegisterHealthRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/healthz", h.Liveness)
	mux.HandleFunc("/readyz", h.Readiness)
}

package observability

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
)

type fakeStoreStats struct {
	events   int
	sessions int
}

func (f *fakeStoreStats) EventCount() int   { return f.events }
func (f *fakeStoreStats) SessionCount() int { return f.sessions }

type fakeLimiterStats struct {
	entries int
}

func (f *fakeLimiterStats) EntryCount() int { return f.entries }

func TestNewHealthChecker(t *testing.T) {
	t.Run("with nil dependencies", func(t *testing.T) {
		checker := NewHealthChecker(nil, nil, "")
		if checker == nil {
			t.Fatal("Expected non-nil checker")
		}
	})

	t.Run("with dependencies", func(t *testing.T) {
		checker := NewHealthChecker(&fakeStoreStats{}, &fakeLimiterStats{}, "1.0.0")
		if checker.store == nil {
			t.Error("Expected non-nil store")
		}
		if checker.limiter == nil {
			t.Error("Expected non-nil limiter")
		}
	})
}

func TestHealthChecker_Liveness(t *testing.T) {
	checker := NewHealthChecker(nil, nil, "1.0.0")

	req := httptest.NewRequest("GET", "/healthz", nil)
	recorder := httptest.NewRecorder()
	checker.Liveness(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	var body map[string]interface{}
	if err := json.Unmarshal(recorder.Body.Bytes(), &body); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if body["status"] != StatusHealthy {
		t.Errorf("Expected status %q, got %v", StatusHealthy, body["status"])
	}
}

func TestHealthChecker_Readiness(t *testing.T) {
	store := &fakeStoreStats{events: 12, sessions: 3}
	limiter := &fakeLimiterStats{entries: 5}
	checker := NewHealthChecker(store, limiter, "1.0.0")

	req := httptest.NewRequest("GET", "/readyz", nil)
	recorder := httptest.NewRecorder()
	checker.Readiness(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	var status HealthStatus
	if err := json.Unmarshal(recorder.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}

	if status.Status != StatusHealthy {
		t.Errorf("Expected status %q, got %q", StatusHealthy, status.Status)
	}
	if status.Version != "1.0.0" {
		t.Errorf("Expected version 1.0.0, got %q", status.Version)
	}
	if status.Details["stored_events"] != 12 {
		t.Errorf("Expected 12 stored events, got %d", status.Details["stored_events"])
	}
	if status.Details["sessions"] != 3 {
		t.Errorf("Expected 3 sessions, got %d", status.Details["sessions"])
	}
	if status.Details["rate_limit_entries"] != 5 {
		t.Errorf("Expected 5 rate limit entries, got %d", status.Details["rate_limit_entries"])
	}
}

func TestHealthChecker_ReadinessWithNilDependencies(t *testing.T) {
	checker := NewHealthChecker(nil, nil, "")

	req := httptest.NewRequest("GET", "/readyz", nil)
	recorder := httptest.NewRecorder()
	checker.Readiness(recorder, req)

	if recorder.Code != http.StatusOK {
		t.Fatalf("Expected 200, got %d", recorder.Code)
	}

	var status HealthStatus
	if err := json.Unmarshal(recorder.Body.Bytes(), &status); err != nil {
		t.Fatalf("Failed to unmarshal response: %v", err)
	}
	if len(status.Details) != 0 {
		t.Errorf("Expected no details, got %v", status.Details)
	}
}

func TestHealthChecker_RegisterHealthRoutes(t *testing.T) {
	checker := NewHealthChecker(&fakeStoreStats{}, &fakeLimiterStats{}, "1.0.0")

	mux := http.NewServeMux()
	checker.RegisterHealthRoutes(mux)

	for _, path := range []string{"/healthz", "/readyz"} {
		req := httptest.NewRequest("GET", path, nil)
		recorder := httptest.NewRecorder()
		mux.ServeHTTP(recorder, req)

		if recorder.Code != http.StatusOK {
			t.Errorf("Expected 200 from %s, got %d", path, recorder.Code)
		}
	}
}

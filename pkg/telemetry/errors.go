package telemetry

import (
	"errors"
	"fmt"

	"github.com/tunehub/telemetry/pkg/ratelimit"
)

// ErrNotFound is returned when a requested session or event does not exist.
var ErrNotFound = errors.New("not found")

// RateLimitError reports a rejected admission along with the limiter's
// decision so the transport can surface retry guidance and quota headers.
type RateLimitError struct {
	Decision ratelimit.Decision
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: retry after %ds", e.Decision.RetryAfter)
}

// ValidationError reports a rejected batch with field-level violations.
type ValidationError struct {
	Violations []FieldViolation
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid payload: %d violations", len(e.Violations))
}

// FieldViolation is a single machine-readable validation failure.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

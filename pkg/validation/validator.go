// Package validation implements the batch schema validator consumed by the
// ingestion service. It checks a raw batch against the declared event shape
// and reports field-level violations; the caller acts only on the
// accept/reject outcome.
package validation

import (
	"fmt"

	"github.com/tunehub/telemetry/pkg/telemetry"
)

// Validation constraints.
const (
	MaxBatchSize     = 100
	MaxSessionIDLen  = 128
	MaxUserIDLen     = 128
	MaxDeviceIDLen   = 128
	MaxPropertyCount = 50
	MaxPropertyKey   = 64
)

// Validator checks incoming event batches.
type Validator struct {
	maxBatchSize int
}

// New creates a validator with the default constraints.
func New() *Validator {
	return &Validator{maxBatchSize: MaxBatchSize}
}

// NewWithBatchSize creates a validator with a custom batch cap.
func NewWithBatchSize(maxBatchSize int) *Validator {
	if maxBatchSize <= 0 {
		maxBatchSize = MaxBatchSize
	}
	return &Validator{maxBatchSize: maxBatchSize}
}

// Validate checks the batch and every event in it. A nil result means the
// batch is accepted.
func (v *Validator) Validate(events []telemetry.IncomingEvent) []telemetry.FieldViolation {
	var violations []telemetry.FieldViolation

	if len(events) == 0 {
		return []telemetry.FieldViolation{{
			Field:   "events",
			Message: "required and must contain at least one item",
		}}
	}
	if len(events) > v.maxBatchSize {
		return []telemetry.FieldViolation{{
			Field:   "events",
			Message: fmt.Sprintf("max %d items", v.maxBatchSize),
		}}
	}

	for i := range events {
		violations = append(violations, validateEvent(i, &events[i])...)
	}
	return violations
}

func validateEvent(index int, event *telemetry.IncomingEvent) []telemetry.FieldViolation {
	var violations []telemetry.FieldViolation

	field := func(name string) string {
		return fmt.Sprintf("events[%d].%s", index, name)
	}

	if event.EventType == "" {
		violations = append(violations, telemetry.FieldViolation{
			Field:   field("event_type"),
			Message: "required",
		})
	} else if !telemetry.IsKnownEventType(event.EventType) {
		violations = append(violations, telemetry.FieldViolation{
			Field:   field("event_type"),
			Message: fmt.Sprintf("unknown event type %q", event.EventType),
		})
	}

	if event.SessionID == "" {
		violations = append(violations, telemetry.FieldViolation{
			Field:   field("session_id"),
			Message: "required",
		})
	} else if len(event.SessionID) > MaxSessionIDLen {
		violations = append(violations, telemetry.FieldViolation{
			Field:   field("session_id"),
			Message: fmt.Sprintf("max length %d", MaxSessionIDLen),
		})
	}

	if len(event.UserID) > MaxUserIDLen {
		violations = append(violations, telemetry.FieldViolation{
			Field:   field("user_id"),
			Message: fmt.Sprintf("max length %d", MaxUserIDLen),
		})
	}
	if len(event.DeviceID) > MaxDeviceIDLen {
		violations = append(violations, telemetry.FieldViolation{
			Field:   field("device_id"),
			Message: fmt.Sprintf("max length %d", MaxDeviceIDLen),
		})
	}

	if len(event.Properties) > MaxPropertyCount {
		violations = append(violations, telemetry.FieldViolation{
			Field:   field("properties"),
			Message: fmt.Sprintf("max %d keys", MaxPropertyCount),
		})
	} else {
		for key := range event.Properties {
			if key == "" {
				violations = append(violations, telemetry.FieldViolation{
					Field:   field("properties"),
					Message: "property keys must be non-empty",
				})
				continue
			}
			if len(key) > MaxPropertyKey {
				violations = append(violations, telemetry.FieldViolation{
					Field:   field("properties." + key),
					Message: fmt.Sprintf("key max length %d", MaxPropertyKey),
				})
			}
		}
	}

	return violations
}

package telemetry

import (
	"sort"
	"time"

	"github.com/google/uuid"

	"github.com/tunehub/telemetry/pkg/ratelimit"
)

// defaultPlatform tags events whose batch did not declare a platform.
const defaultPlatform = "web"

// IncomingEvent is the client-submitted event shape before enrichment. The
// server assigns the timestamp and client identity during ingestion.
type IncomingEvent struct {
	EventType  EventType              `json:"event_type"`
	SessionID  string                 `json:"session_id"`
	UserID     string                 `json:"user_id,omitempty"`
	DeviceID   string                 `json:"device_id,omitempty"`
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// Validator checks a raw batch and reports field-level violations. An empty
// result means the batch is accepted. The service never inspects untyped
// payloads itself; it consumes only the validator's outcome.
type Validator interface {
	Validate(events []IncomingEvent) []FieldViolation
}

// IngestRequest is one ingestion call: the resolved client key plus the
// submitted batch.
type IngestRequest struct {
	ClientKey string
	BatchID   string
	Platform  string
	Events    []IncomingEvent
}

// IngestResult is returned on successful ingestion.
type IngestResult struct {
	BatchID  string             `json:"batch_id"`
	Accepted int                `json:"accepted"`
	Stats    Stats              `json:"stats"`
	Quota    ratelimit.Decision `json:"-"`
}

// Service coordinates one request end to end: rate-limit check, validation,
// enrichment, storage, and per-batch aggregation. All state is owned by the
// instance; there are no package-level singletons.
type Service struct {
	limiter   *ratelimit.Limiter
	store     *Store
	queries   *QueryEngine
	validator Validator
	platform  string

	// now is replaceable in tests.
	now func() time.Time
}

// NewService wires a coordinator over its collaborators with the standard
// platform tag for untagged batches.
func NewService(limiter *ratelimit.Limiter, store *Store, validator Validator) *Service {
	return NewServiceWithPlatform(limiter, store, validator, defaultPlatform)
}

// NewServiceWithPlatform wires a coordinator with a custom platform tag for
// batches that do not declare one.
func NewServiceWithPlatform(limiter *ratelimit.Limiter, store *Store, validator Validator, platform string) *Service {
	if platform == "" {
		platform = defaultPlatform
	}
	return &Service{
		limiter:   limiter,
		store:     store,
		queries:   NewQueryEngine(store),
		validator: validator,
		platform:  platform,
		now:       time.Now,
	}
}

// Ingest handles one batch synchronously. It returns *RateLimitError when
// the client is over quota and *ValidationError when the batch is rejected;
// nothing is stored in either case. Once Append has run the batch is
// committed: a later fault does not roll it back.
func (s *Service) Ingest(req IngestRequest) (*IngestResult, error) {
	decision := s.limiter.Check(req.ClientKey)
	if !decision.Allowed {
		return nil, &RateLimitError{Decision: decision}
	}

	if violations := s.validator.Validate(req.Events); len(violations) > 0 {
		return nil, &ValidationError{Violations: violations}
	}

	batchID := req.BatchID
	if batchID == "" {
		batchID = uuid.NewString()
	}

	batch := s.enrich(req)
	s.store.Append(batch)

	return &IngestResult{
		BatchID:  batchID,
		Accepted: len(batch),
		Stats:    Aggregate(batch),
		Quota:    decision,
	}, nil
}

// enrich converts the validated batch into stored events: server-assigned
// timestamp, client network identity, and a default platform tag.
func (s *Service) enrich(req IngestRequest) []Event {
	now := s.now()
	platform := req.Platform
	if platform == "" {
		platform = s.platform
	}

	batch := make([]Event, 0, len(req.Events))
	for _, in := range req.Events {
		props := make(map[string]interface{}, len(in.Properties)+2)
		for k, v := range in.Properties {
			props[k] = v
		}
		if _, ok := props["platform"]; !ok {
			props["platform"] = platform
		}
		if req.ClientKey != "" {
			props["clientIp"] = req.ClientKey
		}

		batch = append(batch, Event{
			EventType:  in.EventType,
			SessionID:  in.SessionID,
			UserID:     in.UserID,
			DeviceID:   in.DeviceID,
			Timestamp:  now,
			Properties: props,
		})
	}
	return batch
}

// Query returns one page of stored events matching the filter, newest
// first. Read-only apart from the limiter's opportunistic sweep.
func (s *Service) Query(filter QueryFilter, limit, offset int) QueryResult {
	s.limiter.MaybeSweep()
	return s.queries.Query(filter, limit, offset)
}

// StatsOverview aggregates over the full store, optionally restricted by
// the filter. Read-only apart from the limiter's opportunistic sweep.
func (s *Service) StatsOverview(filter QueryFilter) Stats {
	s.limiter.MaybeSweep()
	return Aggregate(filterEvents(s.store.AllEvents(), filter))
}

// Sessions returns all session summaries ordered by start time, newest
// first, with the session id breaking ties for a stable listing.
func (s *Service) Sessions() []SessionSummary {
	s.limiter.MaybeSweep()

	summaries := s.store.SessionSummaries()
	sort.Slice(summaries, func(i, j int) bool {
		if summaries[i].StartTime.Equal(summaries[j].StartTime) {
			return summaries[i].SessionID < summaries[j].SessionID
		}
		return summaries[i].StartTime.After(summaries[j].StartTime)
	})
	return summaries
}

// Session returns one session's summary, or ErrNotFound.
func (s *Service) Session(sessionID string) (SessionSummary, error) {
	summary, ok := s.store.Session(sessionID)
	if !ok {
		return SessionSummary{}, ErrNotFound
	}
	return summary, nil
}

// Export renders the filtered events (newest first, unpaginated) in the
// given format.
func (s *Service) Export(filter QueryFilter, format ExportFormat) ([]byte, error) {
	s.limiter.MaybeSweep()

	matched := filterEvents(s.store.AllEvents(), filter)
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})
	return ExportEvents(matched, format)
}

// Limiter exposes the rate limiter for transport-level headers and health
// reporting.
func (s *Service) Limiter() *ratelimit.Limiter {
	return s.limiter
}

// Store exposes the event store for health reporting.
func (s *Service) Store() *Store {
	return s.store
}

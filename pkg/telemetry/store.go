package telemetry

import (
	"sync"
)

// sessionLog holds one session's metadata and its events in arrival order.
type sessionLog struct {
	summary SessionSummary
	events  []Event
}

// Store is the in-memory, session-partitioned event log. Events are
// append-only and never evicted; durability and size bounding are left to
// an external store in a production deployment.
//
// Store is safe for concurrent use. Appends to the same session preserve
// arrival order.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*sessionLog
	total    int

	// version increments on every append; read-side caches key on it to
	// detect staleness without comparing contents.
	version uint64
}

// NewStore creates an empty event store.
func NewStore() *Store {
	return &Store{
		sessions: make(map[string]*sessionLog),
	}
}

// Append stores each event in order under its session, creating the session
// record on first sight of a session id. Session metadata is seeded from the
// first event and never overwritten by later events.
func (s *Store) Append(events []Event) {
	if len(events) == 0 {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, event := range events {
		log, exists := s.sessions[event.SessionID]
		if !exists {
			log = &sessionLog{
				summary: SessionSummary{
					SessionID: event.SessionID,
					UserID:    event.UserID,
					DeviceID:  event.DeviceID,
					StartTime: event.Timestamp,
				},
			}
			s.sessions[event.SessionID] = log
		}
		log.events = append(log.events, event)
		log.summary.EventCount++
		s.total++
	}
	s.version++
}

// AllEvents returns a copy of every stored event. Order within a session is
// insertion order; order across sessions is unspecified.
func (s *Store) AllEvents() []Event {
	s.mu.RLock()
	defer s.mu.RUnlock()

	events := make([]Event, 0, s.total)
	for _, log := range s.sessions {
		events = append(events, log.events...)
	}
	return events
}

// EventCount returns the number of stored events across all sessions.
func (s *Store) EventCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.total
}

// SessionCount returns the number of distinct sessions seen so far.
func (s *Store) SessionCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// SessionSummaries returns a summary per session. Order is unspecified.
func (s *Store) SessionSummaries() []SessionSummary {
	s.mu.RLock()
	defer s.mu.RUnlock()

	summaries := make([]SessionSummary, 0, len(s.sessions))
	for _, log := range s.sessions {
		summaries = append(summaries, log.summary)
	}
	return summaries
}

// Session returns the summary for one session id, if it exists.
func (s *Store) Session(sessionID string) (SessionSummary, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	log, ok := s.sessions[sessionID]
	if !ok {
		return SessionSummary{}, false
	}
	return log.summary, true
}

// Version returns the current append generation. It changes whenever new
// events are stored.
func (s *Store) Version() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.version
}

package telemetry

import (
	"encoding/json"
	"time"
)

// EventType represents the category of analytics event
type EventType string

const (
	// Playback events
	EventTypeTrackPlay     EventType = "TRACK_PLAY"
	EventTypeTrackPause    EventType = "TRACK_PAUSE"
	EventTypeTrackSkip     EventType = "TRACK_SKIP"
	EventTypeTrackComplete EventType = "TRACK_COMPLETE"
	EventTypePlaybackSeek  EventType = "PLAYBACK_SEEK"

	// Search events
	EventTypeSearchQuery       EventType = "SEARCH_QUERY"
	EventTypeSearchResultClick EventType = "SEARCH_RESULT_CLICK"

	// Performance events
	EventTypePageLoad        EventType = "PAGE_LOAD"
	EventTypeAPIResponseTime EventType = "API_RESPONSE_TIME"
	EventTypeBuffering       EventType = "BUFFERING_EVENT"

	// Error events
	EventTypeErrorOccurred EventType = "ERROR_OCCURRED"
)

// PlaybackEventTypes lists event types counted toward playback statistics.
var PlaybackEventTypes = []EventType{
	EventTypeTrackPlay,
	EventTypeTrackPause,
	EventTypeTrackSkip,
	EventTypeTrackComplete,
	EventTypePlaybackSeek,
}

// SearchEventTypes lists event types counted toward search statistics.
var SearchEventTypes = []EventType{
	EventTypeSearchQuery,
	EventTypeSearchResultClick,
}

// PerformanceEventTypes lists event types counted toward performance statistics.
var PerformanceEventTypes = []EventType{
	EventTypePageLoad,
	EventTypeAPIResponseTime,
	EventTypeBuffering,
}

// ErrorEventTypes lists event types counted toward error statistics.
var ErrorEventTypes = []EventType{
	EventTypeErrorOccurred,
}

// KnownEventTypes is the closed set of accepted event types.
var KnownEventTypes = func() map[EventType]bool {
	known := make(map[EventType]bool)
	for _, group := range [][]EventType{
		PlaybackEventTypes,
		SearchEventTypes,
		PerformanceEventTypes,
		ErrorEventTypes,
	} {
		for _, t := range group {
			known[t] = true
		}
	}
	return known
}()

// IsKnownEventType reports whether t is part of the accepted taxonomy.
func IsKnownEventType(t EventType) bool {
	return KnownEventTypes[t]
}

// Event represents a single accepted analytics event. Events are write-once:
// the store never mutates an event after Append accepts it.
type Event struct {
	EventType EventType `json:"event_type"`
	SessionID string    `json:"session_id"`
	UserID    string    `json:"user_id,omitempty"`
	DeviceID  string    `json:"device_id,omitempty"`

	// Timestamp is assigned by the server at ingestion time. It is not
	// guaranteed to be monotonically non-decreasing across clients.
	Timestamp time.Time `json:"timestamp"`

	// Properties carries type-specific detail (track ids, query strings,
	// durations, error codes). Use the prop helpers for defaulted access.
	Properties map[string]interface{} `json:"properties,omitempty"`
}

// StringProp returns the named property as a string, or def when the
// property is absent or not a string.
func (e *Event) StringProp(key, def string) string {
	if v, ok := e.Properties[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return def
}

// FloatProp returns the named property as a float64, or def when absent.
// JSON numbers decode as float64; integer values are widened.
func (e *Event) FloatProp(key string, def float64) (float64, bool) {
	v, ok := e.Properties[key]
	if !ok {
		return def, false
	}
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return def, false
		}
		return f, true
	default:
		return def, false
	}
}

// SessionSummary describes a session derived from its first stored event.
type SessionSummary struct {
	SessionID  string    `json:"session_id"`
	UserID     string    `json:"user_id,omitempty"`
	DeviceID   string    `json:"device_id,omitempty"`
	StartTime  time.Time `json:"start_time"`
	EventCount int       `json:"event_count"`
}

// QueryFilter restricts a query to an event type and/or time range.
// Zero-value fields are treated as absent; time bounds are inclusive.
type QueryFilter struct {
	EventType EventType
	StartTime *time.Time
	EndTime   *time.Time
}

// QueryResult is one page of filtered events plus the total match count.
type QueryResult struct {
	Events []Event `json:"events"`
	Total  int     `json:"total"`
	Limit  int     `json:"limit"`
	Offset int     `json:"offset"`
}

// PlaybackStats summarizes playback-group events.
type PlaybackStats struct {
	TotalPlays     int     `json:"total_plays"`
	TotalPauses    int     `json:"total_pauses"`
	TotalSkips     int     `json:"total_skips"`
	TotalCompletes int     `json:"total_completes"`
	TotalSeeks     int     `json:"total_seeks"`
	UniqueTracks   int     `json:"unique_tracks"`
	CompletionRate float64 `json:"completion_rate"`
}

// SearchStats summarizes search-group events.
type SearchStats struct {
	TotalSearches    int            `json:"total_searches"`
	TotalClicks      int            `json:"total_clicks"`
	ClickThroughRate float64        `json:"click_through_rate"`
	Queries          map[string]int `json:"queries"`
	AvgResultCount   float64        `json:"avg_result_count"`
}

// PerformanceStats summarizes performance-group events.
type PerformanceStats struct {
	PageLoads        int     `json:"page_loads"`
	AvgPageLoadMs    float64 `json:"avg_page_load_ms"`
	APICalls         int     `json:"api_calls"`
	AvgAPIResponseMs float64 `json:"avg_api_response_ms"`
	BufferingEvents  int     `json:"buffering_events"`
}

// ErrorStats summarizes error-group events.
type ErrorStats struct {
	TotalErrors int            `json:"total_errors"`
	ErrorTypes  map[string]int `json:"error_types"`
}

// Stats is the aggregate view over a set of events: four category
// breakdowns plus global totals.
type Stats struct {
	TotalEvents int               `json:"total_events"`
	EventTypes  map[EventType]int `json:"event_types"`
	Playback    PlaybackStats     `json:"playback"`
	Search      SearchStats       `json:"search"`
	Performance PerformanceStats  `json:"performance"`
	Errors      ErrorStats        `json:"errors"`
}

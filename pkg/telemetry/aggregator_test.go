package telemetry

import (
	"math/rand"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func propEvent(eventType EventType, props map[string]interface{}) Event {
	return Event{
		EventType:  eventType,
		SessionID:  "session-1",
		Timestamp:  time.Unix(1700000000, 0),
		Properties: props,
	}
}

func TestAggregate_EmptyInput(t *testing.T) {
	stats := Aggregate(nil)

	assert.Equal(t, 0, stats.TotalEvents)
	assert.Empty(t, stats.EventTypes)
	assert.Empty(t, stats.Errors.ErrorTypes)
	assert.Empty(t, stats.Search.Queries)
	assert.Zero(t, stats.Playback.CompletionRate)
	assert.Zero(t, stats.Search.ClickThroughRate)
	assert.Zero(t, stats.Performance.AvgPageLoadMs)
}

func TestAggregate_MixedBatch(t *testing.T) {
	events := []Event{
		propEvent(EventTypeTrackPlay, map[string]interface{}{"trackId": "t-1"}),
		propEvent(EventTypeSearchQuery, map[string]interface{}{"query": "jazz", "resultCount": float64(12)}),
		propEvent(EventTypeErrorOccurred, map[string]interface{}{"errorType": "timeout"}),
	}

	stats := Aggregate(events)

	assert.Equal(t, 3, stats.TotalEvents)
	assert.Equal(t, 1, stats.EventTypes[EventTypeTrackPlay])
	assert.Equal(t, 1, stats.EventTypes[EventTypeSearchQuery])
	assert.Equal(t, 1, stats.EventTypes[EventTypeErrorOccurred])
	assert.Equal(t, 1, stats.Errors.TotalErrors)
	assert.Equal(t, 1, stats.Errors.ErrorTypes["timeout"])
}

func TestAggregate_PlaybackStats(t *testing.T) {
	events := []Event{
		propEvent(EventTypeTrackPlay, map[string]interface{}{"trackId": "t-1"}),
		propEvent(EventTypeTrackPlay, map[string]interface{}{"trackId": "t-2"}),
		propEvent(EventTypeTrackPlay, map[string]interface{}{"trackId": "t-1"}),
		propEvent(EventTypeTrackPause, nil),
		propEvent(EventTypeTrackSkip, map[string]interface{}{"trackId": "t-2"}),
		propEvent(EventTypeTrackComplete, map[string]interface{}{"trackId": "t-1"}),
		propEvent(EventTypePlaybackSeek, nil),
	}

	stats := Aggregate(events)

	assert.Equal(t, 3, stats.Playback.TotalPlays)
	assert.Equal(t, 1, stats.Playback.TotalPauses)
	assert.Equal(t, 1, stats.Playback.TotalSkips)
	assert.Equal(t, 1, stats.Playback.TotalCompletes)
	assert.Equal(t, 1, stats.Playback.TotalSeeks)
	assert.Equal(t, 2, stats.Playback.UniqueTracks)
	assert.InDelta(t, 1.0/3.0, stats.Playback.CompletionRate, 1e-9)
}

func TestAggregate_SearchStats(t *testing.T) {
	events := []Event{
		propEvent(EventTypeSearchQuery, map[string]interface{}{"query": "jazz", "resultCount": float64(10)}),
		propEvent(EventTypeSearchQuery, map[string]interface{}{"query": "jazz", "resultCount": float64(20)}),
		propEvent(EventTypeSearchQuery, map[string]interface{}{"query": "blues"}),
		propEvent(EventTypeSearchResultClick, nil),
	}

	stats := Aggregate(events)

	assert.Equal(t, 3, stats.Search.TotalSearches)
	assert.Equal(t, 1, stats.Search.TotalClicks)
	assert.InDelta(t, 1.0/3.0, stats.Search.ClickThroughRate, 1e-9)
	assert.Equal(t, 2, stats.Search.Queries["jazz"])
	assert.Equal(t, 1, stats.Search.Queries["blues"])
	// Average over the events that carried a result count.
	assert.InDelta(t, 15.0, stats.Search.AvgResultCount, 1e-9)
}

func TestAggregate_PerformanceStats(t *testing.T) {
	events := []Event{
		propEvent(EventTypePageLoad, map[string]interface{}{"durationMs": float64(100)}),
		propEvent(EventTypePageLoad, map[string]interface{}{"durationMs": float64(300)}),
		propEvent(EventTypeAPIResponseTime, map[string]interface{}{"durationMs": float64(50)}),
		propEvent(EventTypeBuffering, nil),
	}

	stats := Aggregate(events)

	assert.Equal(t, 2, stats.Performance.PageLoads)
	assert.InDelta(t, 200.0, stats.Performance.AvgPageLoadMs, 1e-9)
	assert.Equal(t, 1, stats.Performance.APICalls)
	assert.InDelta(t, 50.0, stats.Performance.AvgAPIResponseMs, 1e-9)
	assert.Equal(t, 1, stats.Performance.BufferingEvents)
}

func TestAggregate_ErrorTypeDefaultsToUnknown(t *testing.T) {
	events := []Event{
		propEvent(EventTypeErrorOccurred, nil),
		propEvent(EventTypeErrorOccurred, map[string]interface{}{"errorType": "network"}),
		propEvent(EventTypeErrorOccurred, map[string]interface{}{"errorType": 500}),
	}

	stats := Aggregate(events)

	assert.Equal(t, 3, stats.Errors.TotalErrors)
	assert.Equal(t, 2, stats.Errors.ErrorTypes["unknown"])
	assert.Equal(t, 1, stats.Errors.ErrorTypes["network"])
}

func TestAggregate_OrderIndependent(t *testing.T) {
	events := []Event{
		propEvent(EventTypeTrackPlay, map[string]interface{}{"trackId": "t-1"}),
		propEvent(EventTypeTrackComplete, map[string]interface{}{"trackId": "t-1"}),
		propEvent(EventTypeSearchQuery, map[string]interface{}{"query": "jazz"}),
		propEvent(EventTypePageLoad, map[string]interface{}{"durationMs": float64(120)}),
		propEvent(EventTypeErrorOccurred, map[string]interface{}{"errorType": "timeout"}),
	}

	expected := Aggregate(events)

	shuffled := make([]Event, len(events))
	copy(shuffled, events)
	rng := rand.New(rand.NewSource(42))
	for i := 0; i < 10; i++ {
		rng.Shuffle(len(shuffled), func(a, b int) {
			shuffled[a], shuffled[b] = shuffled[b], shuffled[a]
		})
		require.Equal(t, expected, Aggregate(shuffled))
	}
}

package telemetry

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testEvent(eventType EventType, sessionID string, ts time.Time) Event {
	return Event{
		EventType: eventType,
		SessionID: sessionID,
		UserID:    "user-1",
		DeviceID:  "device-1",
		Timestamp: ts,
	}
}

func TestStore_AppendCreatesSession(t *testing.T) {
	store := NewStore()
	start := time.Unix(1700000000, 0)

	store.Append([]Event{testEvent(EventTypeTrackPlay, "session-1", start)})

	require.Equal(t, 1, store.SessionCount())
	summary, ok := store.Session("session-1")
	require.True(t, ok)
	assert.Equal(t, "session-1", summary.SessionID)
	assert.Equal(t, "user-1", summary.UserID)
	assert.Equal(t, "device-1", summary.DeviceID)
	assert.Equal(t, start, summary.StartTime)
	assert.Equal(t, 1, summary.EventCount)
}

func TestStore_SessionMetadataFirstSeenWins(t *testing.T) {
	store := NewStore()
	first := time.Unix(1700000000, 0)
	later := first.Add(time.Minute)

	store.Append([]Event{testEvent(EventTypeTrackPlay, "session-1", first)})
	second := testEvent(EventTypeTrackPause, "session-1", later)
	second.UserID = "someone-else"
	second.DeviceID = "other-device"
	store.Append([]Event{second})

	summary, ok := store.Session("session-1")
	require.True(t, ok)
	assert.Equal(t, first, summary.StartTime)
	assert.Equal(t, "user-1", summary.UserID)
	assert.Equal(t, "device-1", summary.DeviceID)
	assert.Equal(t, 2, summary.EventCount)
}

func TestStore_SameSessionPreservesArrivalOrder(t *testing.T) {
	store := NewStore()
	base := time.Unix(1700000000, 0)

	batch := make([]Event, 10)
	for i := range batch {
		e := testEvent(EventTypeTrackPlay, "session-1", base)
		e.Properties = map[string]interface{}{"seq": fmt.Sprintf("%d", i)}
		batch[i] = e
	}
	store.Append(batch)

	events := store.AllEvents()
	require.Len(t, events, 10)
	for i, event := range events {
		assert.Equal(t, fmt.Sprintf("%d", i), event.StringProp("seq", ""))
	}
}

func TestStore_Counts(t *testing.T) {
	store := NewStore()
	base := time.Unix(1700000000, 0)

	store.Append([]Event{
		testEvent(EventTypeTrackPlay, "session-1", base),
		testEvent(EventTypeSearchQuery, "session-2", base),
		testEvent(EventTypeTrackPause, "session-1", base),
	})

	assert.Equal(t, 3, store.EventCount())
	assert.Equal(t, 2, store.SessionCount())
	assert.Len(t, store.AllEvents(), 3)
	assert.Len(t, store.SessionSummaries(), 2)
}

func TestStore_SessionNotFound(t *testing.T) {
	store := NewStore()
	_, ok := store.Session("missing")
	assert.False(t, ok)
}

func TestStore_VersionAdvancesOnAppend(t *testing.T) {
	store := NewStore()
	base := time.Unix(1700000000, 0)

	v0 := store.Version()
	store.Append([]Event{testEvent(EventTypeTrackPlay, "session-1", base)})
	v1 := store.Version()
	assert.NotEqual(t, v0, v1)

	// Empty appends do not advance the version.
	store.Append(nil)
	assert.Equal(t, v1, store.Version())
}

func TestStore_ConcurrentAppends(t *testing.T) {
	store := NewStore()
	base := time.Unix(1700000000, 0)

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			sessionID := fmt.Sprintf("session-%d", n%4)
			store.Append([]Event{testEvent(EventTypeTrackPlay, sessionID, base)})
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 20, store.EventCount())
	assert.Equal(t, 4, store.SessionCount())
}

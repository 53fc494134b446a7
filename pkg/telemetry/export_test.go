package telemetry

import (
	"bytes"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExportEvents_NDJSON(t *testing.T) {
	events := []Event{
		testEvent(EventTypeTrackPlay, "session-1", time.Unix(1700000000, 0)),
		testEvent(EventTypeTrackPause, "session-1", time.Unix(1700000060, 0)),
	}

	data, err := ExportEvents(events, ExportFormatNDJSON)
	require.NoError(t, err)

	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	require.Len(t, lines, 2)

	var decoded Event
	require.NoError(t, json.Unmarshal(lines[0], &decoded))
	assert.Equal(t, EventTypeTrackPlay, decoded.EventType)
}

func TestExportEvents_UnknownFormatFallsBackToJSON(t *testing.T) {
	events := []Event{testEvent(EventTypeTrackPlay, "session-1", time.Unix(1700000000, 0))}

	data, err := ExportEvents(events, ExportFormat("parquet"))
	require.NoError(t, err)

	var decoded []Event
	require.NoError(t, json.Unmarshal(data, &decoded))
	require.Len(t, decoded, 1)
}

func TestExportFormat_ContentType(t *testing.T) {
	assert.Equal(t, "text/csv", ExportFormatCSV.ContentType())
	assert.Equal(t, "application/x-ndjson", ExportFormatNDJSON.ContentType())
	assert.Equal(t, "application/json", ExportFormatJSON.ContentType())
}

package telemetry

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
)

// ExportFormat selects the rendering for exported events.
type ExportFormat string

const (
	ExportFormatJSON   ExportFormat = "json"
	ExportFormatCSV    ExportFormat = "csv"
	ExportFormatNDJSON ExportFormat = "ndjson" // Newline-delimited JSON
)

// ExportEvents renders events in the given format. Unknown formats fall
// back to JSON.
func ExportEvents(events []Event, format ExportFormat) ([]byte, error) {
	switch format {
	case ExportFormatCSV:
		return exportCSV(events)
	case ExportFormatNDJSON:
		return exportNDJSON(events)
	default:
		return exportJSON(events)
	}
}

// ContentType returns the MIME type for the format.
func (f ExportFormat) ContentType() string {
	switch f {
	case ExportFormatCSV:
		return "text/csv"
	case ExportFormatNDJSON:
		return "application/x-ndjson"
	default:
		return "application/json"
	}
}

func exportJSON(events []Event) ([]byte, error) {
	return json.MarshalIndent(events, "", "  ")
}

func exportNDJSON(events []Event) ([]byte, error) {
	var buf bytes.Buffer
	encoder := json.NewEncoder(&buf)

	for i := range events {
		if err := encoder.Encode(&events[i]); err != nil {
			return nil, fmt.Errorf("failed to encode event: %w", err)
		}
	}

	return buf.Bytes(), nil
}

func exportCSV(events []Event) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	header := []string{
		"Timestamp",
		"EventType",
		"SessionID",
		"UserID",
		"DeviceID",
		"Properties",
	}

	if err := writer.Write(header); err != nil {
		return nil, fmt.Errorf("failed to write CSV header: %w", err)
	}

	for i := range events {
		event := &events[i]

		props := ""
		if len(event.Properties) > 0 {
			encoded, err := json.Marshal(event.Properties)
			if err != nil {
				return nil, fmt.Errorf("failed to encode properties: %w", err)
			}
			props = string(encoded)
		}

		row := []string{
			event.Timestamp.Format("2006-01-02 15:04:05"),
			string(event.EventType),
			event.SessionID,
			event.UserID,
			event.DeviceID,
			props,
		}

		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("CSV writer error: %w", err)
	}

	return buf.Bytes(), nil
}

// Package telemetry implements the analytics event pipeline: ingestion,
// session-partitioned storage, filtered queries, and category aggregation.
//
// # Overview
//
// This package owns the event domain model and the ingestion coordinator.
// Events flow through a fixed sequence: rate-limit check, batch validation,
// enrichment (server timestamp, client identity, platform tag), storage, and
// per-batch aggregation. Everything is held in process memory; restarting the
// service starts from an empty store.
//
// # Event Taxonomy
//
// Playback: TRACK_PLAY, TRACK_PAUSE, TRACK_SKIP, TRACK_COMPLETE, PLAYBACK_SEEK
// Search: SEARCH_QUERY, SEARCH_RESULT_CLICK
// Performance: PAGE_LOAD, API_RESPONSE_TIME, BUFFERING_EVENT
// Error: ERROR_OCCURRED
//
// # Usage Example
//
// Ingest a batch:
//
//	service := telemetry.NewService(limiter, telemetry.NewStore(), validator)
//	result, err := service.Ingest(telemetry.IngestRequest{
//		ClientKey: "203.0.113.7",
//		Events: []telemetry.IncomingEvent{{
//			EventType: telemetry.EventTypeTrackPlay,
//			SessionID: "session-1",
//			Properties: map[string]interface{}{"trackId": "track-42"},
//		}},
//	})
//
// Query stored events, newest first:
//
//	page := service.Query(telemetry.QueryFilter{
//		EventType: telemetry.EventTypeTrackPlay,
//		StartTime: &dayStart,
//	}, 50, 0)
//
// Aggregate statistics:
//
//	stats := service.StatsOverview(telemetry.QueryFilter{})
//	fmt.Printf("completion rate: %.2f\n", stats.Playback.CompletionRate)
//
// # Export
//
// Stored events can be rendered as JSON, CSV, or NDJSON via ExportEvents for
// external analysis.
//
// # Related Packages
//
//   - pkg/ratelimit: per-client admission decisions
//   - pkg/validation: batch schema validation
//   - pkg/api: HTTP surface over the service
package telemetry

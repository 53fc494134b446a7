// Package api provides the HTTP surface for the telemetry service.
//
// # Overview
//
// This package assembles the gorilla/mux router, the middleware chain
// (request context, access logging, panic recovery, metrics, optional
// tracing), and the JSON handlers over the ingestion service.
//
// # Endpoints
//
//	POST /api/v1/events           ingest an event batch
//	GET  /api/v1/events           query stored events (type/time filter, pagination)
//	GET  /api/v1/events/export    export filtered events (json, csv, ndjson)
//	GET  /api/v1/analytics/stats  aggregate statistics
//	GET  /api/v1/sessions         list session summaries
//	GET  /api/v1/sessions/{id}    one session summary
//
// # Error Envelope
//
// All error responses share one shape:
//
//	{"error": "rate_limited", "retry_after": 1, "remaining": 0, "reset_at": 1756700000}
//	{"error": "invalid_payload", "violations": [{"field": "events[0].session_id", "message": "required"}]}
//
// Rate-limited responses additionally carry Retry-After and the
// X-RateLimit-Limit/Remaining/Reset headers.
package api

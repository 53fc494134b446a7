// Package ratelimit implements per-client request limiting over two fixed
// windows: a sustained quota and a short burst guard.
//
// # Overview
//
// Each client key tracks two counters. The sustained window (default 1000
// requests per 15 minutes) bounds overall volume; the burst window (default
// 50 requests per second) stops short spikes that would otherwise fit inside
// the sustained quota. The burst check runs first, so a client exhausting
// both windows gets the shorter retry hint.
//
// # Usage Example
//
//	limiter := ratelimit.New(ratelimit.DefaultConfig())
//	decision := limiter.Check(ratelimit.ClientKey(r))
//	if !decision.Allowed {
//		w.Header().Set("Retry-After", strconv.Itoa(decision.RetryAfter))
//		w.WriteHeader(http.StatusTooManyRequests)
//		return
//	}
//
// # Entry Cleanup
//
// Expired entries are collected opportunistically: every SweepEvery checks
// the limiter walks its table and drops keys whose sustained window has
// elapsed. MaybeSweep exposes the same trigger to read paths that never call
// Check, while Sweep runs a full pass immediately for scheduled collection.
//
// # Client Identity
//
// ClientKey resolves the caller's IP from proxy headers in precedence order:
// CF-Connecting-IP, X-Real-IP, the first X-Forwarded-For entry, then the
// connection's remote address.
package ratelimit

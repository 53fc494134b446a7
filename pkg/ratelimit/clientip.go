package ratelimit

import (
	"net/http"
	"strings"
)

// loopbackFallback is used when no client address signal is present.
const loopbackFallback = "127.0.0.1"

// ClientKey resolves the rate-limit key for a request from its headers.
// Precedence: the edge proxy's connecting-IP header, then X-Real-IP, then
// the first entry of X-Forwarded-For, falling back to a loopback
// placeholder. The transport terminates at a trusted proxy, so headers are
// taken at face value here.
func ClientKey(r *http.Request) string {
	if ip := r.Header.Get("CF-Connecting-IP"); ip != "" {
		return ip
	}

	if ip := r.Header.Get("X-Real-IP"); ip != "" {
		return ip
	}

	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		first := strings.TrimSpace(strings.Split(forwarded, ",")[0])
		if first != "" {
			return first
		}
	}

	return loopbackFallback
}

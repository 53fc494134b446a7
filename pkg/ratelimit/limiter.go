package ratelimit

import (
	"math"
	"sync"
	"time"
)

// Config holds the limiter's window lengths and caps.
type Config struct {
	// Window is the sustained window length.
	Window time.Duration
	// Limit is the max requests admitted per sustained window.
	Limit int
	// BurstWindow is the burst sub-window length.
	BurstWindow time.Duration
	// BurstLimit is the max requests admitted per burst window.
	BurstLimit int
	// SweepEvery triggers a best-effort sweep of expired entries once per
	// this many admitted checks. Worst-case entries held between sweeps is
	// bounded by the distinct keys seen in one sustained window plus
	// SweepEvery.
	SweepEvery int
}

// DefaultConfig returns the standard client-facing limits.
func DefaultConfig() Config {
	return Config{
		Window:      15 * time.Minute,
		Limit:       1000,
		BurstWindow: time.Second,
		BurstLimit:  50,
		SweepEvery:  1000,
	}
}

// Decision is the outcome of a single rate-limit check.
type Decision struct {
	Allowed bool
	// Remaining is the sustained quota left after this decision; zero when
	// rejected at the sustained cap.
	Remaining int
	// ResetAt is when the sustained window rolls over.
	ResetAt time.Time
	// RetryAfter is the suggested wait before retrying, in whole seconds,
	// rounded up. Zero when allowed.
	RetryAfter int
}

// entry tracks one client key's counters for both windows.
type entry struct {
	count          int
	resetTime      time.Time
	burstCount     int
	burstResetTime time.Time
}

// Limiter tracks per-key request counts over the sustained and burst
// windows. It is safe for concurrent use; each check mutates the key's
// entry as a single atomic unit under the limiter's lock.
type Limiter struct {
	mu      sync.Mutex
	config  Config
	entries map[string]*entry
	checks  int

	// now is replaceable in tests.
	now func() time.Time
}

// New creates a limiter with the given configuration.
func New(config Config) *Limiter {
	if config.SweepEvery <= 0 {
		config.SweepEvery = DefaultConfig().SweepEvery
	}
	return &Limiter{
		config:  config,
		entries: make(map[string]*entry),
		now:     time.Now,
	}
}

// Check decides whether a request from clientKey is admitted and updates the
// key's counters. The burst window is checked before the sustained cap, so a
// burst rejection carries the shorter retry hint.
//
// Once per SweepEvery checks an inline sweep of expired entries runs; the
// sweep is advisory and correctness never depends on it.
func (l *Limiter) Check(clientKey string) Decision {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()

	l.checks++
	if l.checks >= l.config.SweepEvery {
		l.checks = 0
		l.sweepLocked(now)
	}

	e, exists := l.entries[clientKey]
	if !exists || now.After(e.resetTime) {
		// First contact, or the sustained window elapsed: both windows
		// restart and this request is the first of each.
		l.entries[clientKey] = &entry{
			count:          1,
			resetTime:      now.Add(l.config.Window),
			burstCount:     1,
			burstResetTime: now.Add(l.config.BurstWindow),
		}
		return Decision{
			Allowed:   true,
			Remaining: l.config.Limit - 1,
			ResetAt:   l.entries[clientKey].resetTime,
		}
	}

	if now.Before(e.burstResetTime) {
		if e.burstCount >= l.config.BurstLimit {
			return Decision{
				Allowed:    false,
				Remaining:  l.config.Limit - e.count,
				ResetAt:    e.resetTime,
				RetryAfter: ceilSeconds(e.burstResetTime.Sub(now)),
			}
		}
	} else {
		// Burst sub-window rolls over independently of the sustained one.
		e.burstCount = 0
		e.burstResetTime = now.Add(l.config.BurstWindow)
	}

	if e.count >= l.config.Limit {
		return Decision{
			Allowed:    false,
			Remaining:  0,
			ResetAt:    e.resetTime,
			RetryAfter: ceilSeconds(e.resetTime.Sub(now)),
		}
	}

	e.count++
	e.burstCount++
	return Decision{
		Allowed:   true,
		Remaining: l.config.Limit - e.count,
		ResetAt:   e.resetTime,
	}
}

// MaybeSweep counts toward the same once-per-SweepEvery trigger as Check
// without taking a decision. Read-only request paths call it so expired
// entries still get collected on a query-heavy workload.
func (l *Limiter) MaybeSweep() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.checks++
	if l.checks >= l.config.SweepEvery {
		l.checks = 0
		l.sweepLocked(l.now())
	}
}

// Sweep removes entries whose sustained window has expired and returns how
// many were removed. Safe to call at any time.
func (l *Limiter) Sweep() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.sweepLocked(l.now())
}

func (l *Limiter) sweepLocked(now time.Time) int {
	removed := 0
	for key, e := range l.entries {
		if now.After(e.resetTime) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

// EntryCount returns the number of tracked client keys.
func (l *Limiter) EntryCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

// Limit returns the sustained cap, for response headers.
func (l *Limiter) Limit() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.config.Limit
}

// SetConfig replaces the limiter's configuration. Existing entries keep
// their current windows; new windows use the new limits.
func (l *Limiter) SetConfig(config Config) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if config.SweepEvery <= 0 {
		config.SweepEvery = DefaultConfig().SweepEvery
	}
	l.config = config
}

func ceilSeconds(d time.Duration) int {
	return int(math.Ceil(d.Seconds()))
}

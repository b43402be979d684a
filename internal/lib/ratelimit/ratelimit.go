// Package ratelimit implements a fixed-window request counter keyed by a
// client identifier (normally the forwarded IP). State is in-process: this
// service is deployed as a single instance and keeps no datastore.
package ratelimit

import (
	"sync"
	"time"
)

type window struct {
	startedAt time.Time
	count     int
}

type Limiter struct {
	mu      sync.Mutex
	limit   int
	period  time.Duration
	windows map[string]*window
	now     func() time.Time
}

// New creates a limiter admitting at most limit requests per key per period.
// A non-positive limit disables enforcement (every request passes).
func New(limit int, period time.Duration) *Limiter {
	return &Limiter{
		limit:   limit,
		period:  period,
		windows: make(map[string]*window),
		now:     time.Now,
	}
}

// Allow records a request for key and reports whether it fits the window.
func (l *Limiter) Allow(key string) bool {
	if l.limit <= 0 {
		return true
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	w, ok := l.windows[key]
	if !ok || now.Sub(w.startedAt) >= l.period {
		l.windows[key] = &window{startedAt: now, count: 1}
		if len(l.windows) > 1 {
			l.sweep(now)
		}
		return true
	}

	w.count++
	return w.count <= l.limit
}

// sweep drops windows that ended, bounding memory on long runs.
// Caller holds the lock.
func (l *Limiter) sweep(now time.Time) {
	for key, w := range l.windows {
		if now.Sub(w.startedAt) >= l.period {
			delete(l.windows, key)
		}
	}
}

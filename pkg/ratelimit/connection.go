// Package ratelimit holds the fixed-window quota trackers guarding the AI
// proxy: a per-address request limiter and a per-device daily action quota.
//
// Records are never decremented. A record whose window or day has passed is
// replaced wholesale on the next request for its key.
package ratelimit

import (
	"sync"
	"time"
)

const (
	DefaultConnectionMax    = 10
	DefaultConnectionWindow = time.Minute
)

type Result struct {
	Allowed   bool
	Remaining int
	ResetAt   time.Time
}

type connectionWindow struct {
	count   int
	resetAt time.Time
}

// ConnectionLimiter counts requests per key inside a fixed window.
type ConnectionLimiter struct {
	mu      sync.Mutex
	max     int
	window  time.Duration
	entries map[string]*connectionWindow
}

func NewConnectionLimiter(limit int, window time.Duration) *ConnectionLimiter {
	if limit <= 0 {
		limit = DefaultConnectionMax
	}
	if window <= 0 {
		window = DefaultConnectionWindow
	}
	return &ConnectionLimiter{
		max:     limit,
		window:  window,
		entries: make(map[string]*connectionWindow),
	}
}

func (l *ConnectionLimiter) Max() int {
	return l.max
}

// Check records one request for key and reports whether it fits the window.
func (l *ConnectionLimiter) Check(key string, now time.Time) Result {
	l.mu.Lock()
	defer l.mu.Unlock()

	entry, ok := l.entries[key]
	if !ok || now.After(entry.resetAt) {
		entry = &connectionWindow{count: 1, resetAt: now.Add(l.window)}
		l.entries[key] = entry
		return Result{Allowed: true, Remaining: l.max - 1, ResetAt: entry.resetAt}
	}

	entry.count++
	if entry.count > l.max {
		return Result{Allowed: false, Remaining: 0, ResetAt: entry.resetAt}
	}
	return Result{Allowed: true, Remaining: l.max - entry.count, ResetAt: entry.resetAt}
}

// Sweep drops every record whose window has already closed.
func (l *ConnectionLimiter) Sweep(now time.Time) int {
	l.mu.Lock()
	defer l.mu.Unlock()

	removed := 0
	for key, entry := range l.entries {
		if now.After(entry.resetAt) {
			delete(l.entries, key)
			removed++
		}
	}
	return removed
}

func (l *ConnectionLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.entries)
}

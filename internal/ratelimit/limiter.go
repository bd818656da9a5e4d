// Package ratelimit provides per-caller sliding-window admission control.
// Correctness is scoped to a single running instance; there is no
// cross-process coordination.
package ratelimit

import (
	"sync"
	"time"
)

// Class separates independent limiter classes. Execute admits less traffic
// than quote, reflecting its higher cost and risk.
type Class string

const (
	ClassQuote   Class = "quote"
	ClassExecute Class = "execute"
)

// bucketKey scopes a RateBucket to one (identity, class) pair.
type bucketKey struct {
	identity string
	class    Class
}

// Limiter maintains one timestamp bucket per (caller identity, class).
// Buckets are pruned lazily to the sliding window on each admission check;
// no background timer runs.
type Limiter struct {
	window time.Duration
	limits map[Class]int

	mu      sync.Mutex
	buckets map[bucketKey][]time.Time

	// now is swappable for tests.
	now func() time.Time
}

// New creates a Limiter with the given window and per-class limits.
func New(window time.Duration, quoteLimit, executeLimit int) *Limiter {
	return &Limiter{
		window: window,
		limits: map[Class]int{
			ClassQuote:   quoteLimit,
			ClassExecute: executeLimit,
		},
		buckets: make(map[bucketKey][]time.Time),
		now:     time.Now,
	}
}

// Admit reports whether a request from identity may proceed under class.
// Timestamps older than the window are discarded first; a rejected attempt
// is NOT recorded, so hammering a full bucket does not extend the lockout.
func (l *Limiter) Admit(identity string, class Class) bool {
	limit, ok := l.limits[class]
	if !ok {
		return false
	}

	now := l.now()
	cutoff := now.Add(-l.window)
	key := bucketKey{identity: identity, class: class}

	l.mu.Lock()
	defer l.mu.Unlock()

	recent := l.buckets[key][:0]
	for _, ts := range l.buckets[key] {
		if ts.After(cutoff) {
			recent = append(recent, ts)
		}
	}

	if len(recent) >= limit {
		l.buckets[key] = recent
		return false
	}

	l.buckets[key] = append(recent, now)
	return true
}

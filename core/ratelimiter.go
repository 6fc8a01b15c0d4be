package core

import (
	"sync/atomic"
	"time"
)

// RateLimiter admits one event per interval and counts the rest. The logger
// uses it so a failing exporter cannot flood the output with error lines.
type RateLimiter struct {
	interval time.Duration
	// next is the earliest unix-nano time at which the next event is admitted.
	next    atomic.Int64
	dropped atomic.Int64
	now     func() time.Time
}

// NewRateLimiter returns a limiter that admits the first event immediately.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	return &RateLimiter{interval: interval, now: time.Now}
}

// Allow reports whether an event may proceed now. Concurrent callers race on
// a single compare-and-swap, so exactly one of them wins each interval.
func (r *RateLimiter) Allow() bool {
	now := r.now().UnixNano()
	for {
		next := r.next.Load()
		if now < next {
			r.dropped.Add(1)
			return false
		}
		if r.next.CompareAndSwap(next, now+int64(r.interval)) {
			return true
		}
	}
}

// Dropped returns how many events Allow has rejected.
func (r *RateLimiter) Dropped() int64 {
	return r.dropped.Load()
}

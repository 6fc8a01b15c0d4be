package core

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterInterval(t *testing.T) {
	now := time.Unix(1700000000, 0)
	r := NewRateLimiter(time.Second)
	r.now = func() time.Time { return now }

	assert.True(t, r.Allow(), "first event is admitted")
	assert.False(t, r.Allow())

	now = now.Add(999 * time.Millisecond)
	assert.False(t, r.Allow())

	now = now.Add(time.Millisecond)
	assert.True(t, r.Allow(), "admitted once the interval has elapsed")
	assert.Equal(t, int64(2), r.Dropped())
}

func TestRateLimiterConcurrent(t *testing.T) {
	r := NewRateLimiter(time.Hour)
	var (
		wg      sync.WaitGroup
		allowed atomic.Int64
	)
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if r.Allow() {
				allowed.Add(1)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, int64(1), allowed.Load())
	assert.Equal(t, int64(49), r.Dropped())
}

package util

import (
	"context"
	"sync"
	"time"
)

// RateLimiter is a token bucket holding at most burst tokens, refilled at a
// fixed rate.
type RateLimiter struct {
	mu       sync.Mutex
	rate     float64 // tokens per second
	burst    float64
	tokens   float64
	lastTime time.Time
	now      func() time.Time
}

// NewRateLimiter creates a RateLimiter that allows perMinute operations per
// minute with bursts of up to burst. A burst below one is one.
func NewRateLimiter(perMinute, burst int) *RateLimiter {
	if burst < 1 {
		burst = 1
	}
	rl := &RateLimiter{
		rate:  float64(perMinute) / 60.0,
		burst: float64(burst),
		now:   time.Now,
	}
	rl.tokens = rl.burst
	rl.lastTime = rl.now()
	return rl
}

// take refills the bucket and consumes a token when one is available.
func (rl *RateLimiter) take() bool {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	now := rl.now()
	rl.tokens += now.Sub(rl.lastTime).Seconds() * rl.rate
	if rl.tokens > rl.burst {
		rl.tokens = rl.burst
	}
	rl.lastTime = now

	if rl.tokens >= 1 {
		rl.tokens--
		return true
	}
	return false
}

// Allow reports whether an operation may proceed now, consuming a token if
// so.
func (rl *RateLimiter) Allow() bool { return rl.take() }

// Wait blocks until a token is available or the context is cancelled.
func (rl *RateLimiter) Wait(ctx context.Context) error {
	for !rl.take() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(10 * time.Millisecond):
		}
	}
	return nil
}

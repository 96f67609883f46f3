package extractor

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Throttle spaces out provider calls with a token bucket and pauses all
// callers after the provider reports a rate limit.
type Throttle struct {
	mu      sync.Mutex
	limiter *rate.Limiter
	retryAt time.Time
}

// NewThrottle creates a throttle allowing rps calls per second with the given
// burst. rps <= 0 disables the token bucket; 429 backoff still applies.
func NewThrottle(rps float64, burst int) *Throttle {
	t := &Throttle{}
	if rps > 0 {
		if burst <= 0 {
			burst = 1
		}
		t.limiter = rate.NewLimiter(rate.Limit(rps), burst)
	}
	return t
}

// Wait blocks until a call may be made or ctx is done.
func (t *Throttle) Wait(ctx context.Context) error {
	if t == nil {
		return nil
	}
	t.mu.Lock()
	retryAt := t.retryAt
	t.mu.Unlock()

	if wait := time.Until(retryAt); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}

	if t.limiter == nil {
		return nil
	}
	return t.limiter.Wait(ctx)
}

// Backoff delays subsequent calls by d. A later deadline is never shortened.
func (t *Throttle) Backoff(d time.Duration) {
	if t == nil || d <= 0 {
		return
	}
	t.mu.Lock()
	defer t.mu.Unlock()
	if until := time.Now().Add(d); until.After(t.retryAt) {
		t.retryAt = until
	}
}

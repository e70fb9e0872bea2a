// Package throttle provides a minimum-spacing rate limiter shared by the
// external data clients. Each client owns its own Limiter; instances do not
// coordinate with each other, so N clients may issue N times the configured
// rate against the same upstream.
package throttle

import (
	"context"
	"sync"
	"time"
)

// Limiter enforces a minimum wall-clock interval between successive calls.
// Safe for concurrent use; waiting callers are serialized by the lock.
type Limiter struct {
	interval time.Duration

	mu   sync.Mutex
	last time.Time
}

func NewLimiter(interval time.Duration) *Limiter {
	if interval < 0 {
		interval = 0
	}
	return &Limiter{interval: interval}
}

// Wait blocks until at least the configured interval has elapsed since the
// previous call, then stamps the current time. Returns early with the
// context's error if it is cancelled mid-wait.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if wait := l.interval - time.Since(l.last); wait > 0 {
		timer := time.NewTimer(wait)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	l.last = time.Now()
	return nil
}

// Interval reports the configured minimum spacing.
func (l *Limiter) Interval() time.Duration {
	return l.interval
}

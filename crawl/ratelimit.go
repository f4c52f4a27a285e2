package crawl

import (
	"context"
	"time"

	"github.com/fwojciec/arachne"
	"golang.org/x/time/rate"
)

var _ arachne.Limiter = (*RateLimiter)(nil)

// RateLimiter enforces a minimum interval between fetch starts across all
// crawl workers. Callers pass through a single gate one at a time; the gate
// records the release time before letting the next caller in.
type RateLimiter struct {
	interval time.Duration
	gate     chan struct{}
	limiter  *rate.Limiter
	last     time.Time // guarded by gate
}

// NewRateLimiter creates a RateLimiter with the given minimum interval.
// A zero interval lets every caller through immediately.
func NewRateLimiter(interval time.Duration) *RateLimiter {
	l := &RateLimiter{
		interval: interval,
		gate:     make(chan struct{}, 1),
	}
	if interval > 0 {
		l.limiter = rate.NewLimiter(rate.Every(interval), 1)
	}
	return l
}

// Wait blocks until at least the interval has elapsed since the previous
// Wait returned. Returns an error if the context is canceled first.
func (l *RateLimiter) Wait(ctx context.Context) error {
	if l.limiter == nil {
		return ctx.Err()
	}

	select {
	case l.gate <- struct{}{}:
	case <-ctx.Done():
		return ctx.Err()
	}
	defer func() { <-l.gate }()

	// A slot past ctx's deadline still waits until ctx is done.
	res := l.limiter.Reserve()
	if err := sleep(ctx, res.Delay()); err != nil {
		res.Cancel()
		return err
	}

	// The bucket schedules reservations, not wakeups. A previous caller that
	// woke late can leave less than the interval since its release.
	if !l.last.IsZero() {
		if d := l.interval - time.Since(l.last); d > 0 {
			if err := sleep(ctx, d); err != nil {
				return err
			}
		}
	}
	l.last = time.Now()
	return nil
}

// sleep pauses for d or until ctx is done.
func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

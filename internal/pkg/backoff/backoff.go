package backoff

import (
	"context"
	"time"

	"farelock/internal/pkg/clock"
)

// Policy is a bounded fixed-interval retry policy. The supplier's ticketing
// endpoint is eventually consistent, so callers poll it under a budget rather
// than waiting indefinitely.
type Policy struct {
	MaxAttempts int
	Interval    time.Duration
}

// Retry calls fn up to MaxAttempts times, sleeping Interval between attempts.
// fn reports done=true to stop early. Retry returns the ctx error if the
// context is cancelled mid-wait, otherwise the last fn error.
func (p Policy) Retry(ctx context.Context, clk clock.Clock, fn func(attempt int) (done bool, err error)) (bool, error) {
	var lastErr error
	for attempt := 0; attempt < p.MaxAttempts; attempt++ {
		done, err := fn(attempt)
		if done {
			return true, err
		}
		lastErr = err

		if attempt == p.MaxAttempts-1 {
			break
		}
		if err := clk.Sleep(ctx, p.Interval); err != nil {
			return false, err
		}
	}
	return false, lastErr
}

package sched

import (
	"context"
	"time"
)

// Do invokes fn, and on failure waits delay before trying again, up to
// maxAttempts total invocations. The first success returns immediately; after
// exhausting attempts the last error is returned. Context cancellation aborts
// the wait. Do blocks the calling goroutine and therefore belongs off the
// request path; in-request retries go through the Scheduler instead.
func Do(ctx context.Context, maxAttempts int, delay time.Duration, fn func(ctx context.Context) error) error {
	if maxAttempts <= 0 {
		maxAttempts = 1
	}
	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(ctx); lastErr == nil {
			return nil
		}
		if attempt == maxAttempts {
			break
		}
		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
	}
	return lastErr
}

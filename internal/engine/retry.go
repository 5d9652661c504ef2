package engine

import (
	"context"
	"time"
)

const (
	defaultRetryDelay = 100 * time.Millisecond
	maxRetryDelay     = 10 * time.Second
)

// withRetry calls fn up to maxRetries+1 times, sleeping between failures with
// a doubling delay capped at maxRetryDelay. It gives up early when ctx ends.
func withRetry(ctx context.Context, maxRetries int, baseDelay time.Duration, fn func(context.Context) error) error {
	var err error
	for attempt := 0; attempt <= max(maxRetries, 0); attempt++ {
		if attempt > 0 {
			timer := time.NewTimer(retryDelay(baseDelay, attempt))
			select {
			case <-ctx.Done():
				timer.Stop()
				return ctx.Err()
			case <-timer.C:
			}
		}
		if err = fn(ctx); err == nil {
			return nil
		}
	}
	return err
}

// retryDelay returns the sleep before the given retry attempt (1-based).
func retryDelay(base time.Duration, attempt int) time.Duration {
	if base <= 0 {
		base = defaultRetryDelay
	}
	delay := base
	for i := 1; i < attempt; i++ {
		delay *= 2
		if delay >= maxRetryDelay {
			return maxRetryDelay
		}
	}
	return delay
}

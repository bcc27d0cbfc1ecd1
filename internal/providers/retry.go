package providers

import (
	"context"
	"time"
)

// retryBackoff is the pause before the single retry attempt.
const retryBackoff = 500 * time.Millisecond

// WithRetry runs fn, and on failure retries once after a short backoff.
// Transient provider hiccups are common enough that one retry pays for
// itself; anything still failing after that is reported to the caller.
func WithRetry(ctx context.Context, fn func(context.Context) error) error {
	err := fn(ctx)
	if err == nil || ctx.Err() != nil {
		return err
	}

	timer := time.NewTimer(retryBackoff)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return err
	case <-timer.C:
	}
	return fn(ctx)
}

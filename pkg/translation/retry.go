package translation

import (
	"context"
	"time"
)

// RetryPolicy describes how the batch orchestrator retries a failed chunk.
// The policy is deliberately a plain value: the orchestrator owns the loop,
// the policy only answers "how many attempts" and "how long to wait".
type RetryPolicy struct {
	// MaxAttempts is the total number of attempts per chunk, first try
	// included.
	MaxAttempts int
	// BaseDelay is the wait after the first failed attempt; it doubles on
	// every further attempt.
	BaseDelay time.Duration
	// InterChunkDelay is the pause between consecutive chunks, used to stay
	// inside the backend's rate limit without a token bucket.
	InterChunkDelay time.Duration
}

// DefaultRetryPolicy mirrors the service defaults: three attempts with a
// multi-second doubling backoff.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts:     3,
		BaseDelay:       3 * time.Second,
		InterChunkDelay: 500 * time.Millisecond,
	}
}

// Backoff returns the delay before retrying after the given zero-based failed
// attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	d := p.BaseDelay
	for i := 0; i < attempt; i++ {
		d *= 2
	}
	return d
}

// Sleep blocks for d or until ctx is done, whichever comes first.
func Sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

package budget

import (
	"context"
	"math/rand"
	"time"

	"github.com/rewards/backend/internal/domain/shared"
)

// RetryConfig tunes the contention retry loop
type RetryConfig struct {
	// Attempts is the number of retries after the first try
	Attempts int
	// BaseDelay is the first backoff interval; it doubles each retry
	// with up to 25% jitter.
	BaseDelay time.Duration
}

// DefaultRetryConfig returns the default retry configuration
func DefaultRetryConfig() RetryConfig {
	return RetryConfig{Attempts: 3, BaseDelay: 50 * time.Millisecond}
}

// Retry runs fn, retrying with exponential backoff while it fails
// with a retryable error (lock contention). Non-retryable errors and
// context cancellation return immediately.
func Retry(ctx context.Context, cfg RetryConfig, fn func(ctx context.Context) error) error {
	var err error
	delay := cfg.BaseDelay

	for attempt := 0; ; attempt++ {
		err = fn(ctx)
		if err == nil || !shared.IsRetryable(err) {
			return err
		}
		if attempt >= cfg.Attempts {
			return err
		}

		jittered := delay + time.Duration(rand.Int63n(int64(delay)/4+1))
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(jittered):
		}
		delay *= 2
	}
}

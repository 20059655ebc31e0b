package services

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// RetryPolicy retries rate-limited attempts with exponential backoff. Any
// other failure is returned after a single call.
type RetryPolicy struct {
	// MaxRetries is the number of retries after the first attempt.
	MaxRetries int
	// InitialDelay is the wait before retry 1; retry i+1 waits InitialDelay*2^i.
	InitialDelay time.Duration
	// Sleep waits d or until ctx is done. Nil uses a timer.
	Sleep  func(ctx context.Context, d time.Duration) error
	Logger *zap.Logger
}

func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{MaxRetries: 2, InitialDelay: 2 * time.Second}
}

// Backoff returns the wait before the retry that follows attempt.
func (p RetryPolicy) Backoff(attempt int) time.Duration {
	return p.InitialDelay * time.Duration(1<<uint(attempt))
}

// Retry runs fn with attempt indices 0..MaxRetries.
func Retry[T any](ctx context.Context, p RetryPolicy, fn func(ctx context.Context, attempt int) (T, error)) (T, error) {
	var zero T
	sleep := p.Sleep
	if sleep == nil {
		sleep = sleepCtx
	}
	logger := p.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	for attempt := 0; ; attempt++ {
		val, err := fn(ctx, attempt)
		if err == nil {
			return val, nil
		}
		if !IsRateLimited(err) || attempt >= p.MaxRetries {
			return zero, err
		}

		delay := p.Backoff(attempt)
		logger.Warn("rate limited, retrying",
			zap.Int("retry", attempt+1),
			zap.Int("max_retries", p.MaxRetries),
			zap.Duration("delay", delay),
			zap.Error(err),
		)
		if sleepErr := sleep(ctx, delay); sleepErr != nil {
			return zero, err
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

package httputil

import (
	"context"
	"errors"
	"time"
)

// MaxDelay caps the wait between download attempts.
const MaxDelay = 30 * time.Second

// RetryableError marks a download failure that may succeed on a later
// attempt: a dropped connection, a 429 or a 5xx from the host serving the
// GeoJSON or CSV. [Fetcher] wraps those; anything else fails the fetch at
// once.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retry calls fn until it succeeds, returns an error that is not a
// [RetryableError], or has been called attempts times. The wait starts at
// delay and doubles up to [MaxDelay]. No attempt starts once ctx is done,
// so a cancelled command never issues another request.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if lastErr = fn(); lastErr == nil || !isRetryable(lastErr) {
			return lastErr
		}
		if i == attempts-1 {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return ctx.Err()
		case <-timer.C:
		}
		delay = min(delay*2, MaxDelay)
	}
	return lastErr
}

func isRetryable(err error) bool {
	return errors.As(err, new(*RetryableError))
}

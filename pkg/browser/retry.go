package browser

import (
	"context"
	"errors"
	"time"
)

// RetryableError marks a failure as transient. Browser launch and connect
// errors are wrapped in it so that [Retry] attempts them again; load
// failures are not, because a broken document stays broken.
type RetryableError struct{ Err error }

func (e *RetryableError) Error() string { return e.Err.Error() }
func (e *RetryableError) Unwrap() error { return e.Err }

// Retryable wraps err as a [RetryableError]. It returns nil for nil.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Retry runs fn up to attempts times, doubling delay after each retryable
// failure. Errors not wrapped with [Retryable] are returned at once.
// It returns the last error when every attempt fails, or ctx.Err() when
// the context ends while waiting.
func Retry(ctx context.Context, attempts int, delay time.Duration, fn func() error) error {
	attempts = max(attempts, 1)
	var lastErr error

	for i := range attempts {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !errors.As(err, new(*RetryableError)) {
			return err
		}

		if i < attempts-1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
				delay *= 2
			}
		}
	}
	return lastErr
}

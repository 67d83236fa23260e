package cache

import (
	"context"
	"errors"
	"time"
)

// Sentinel errors for cache backend operations.
var (
	// ErrNotFound is returned when a cached document or artifact does not
	// exist in the backend.
	ErrNotFound = errors.New("not found")

	// ErrNetwork is returned when a remote backend (redis) is unreachable.
	ErrNetwork = errors.New("network error")
)

// RetryableError marks an error as transient. Backend operations wrap
// connection failures with it so [RetryWithBackoff] tries again instead of
// failing the command.
type RetryableError struct{ Err error }

// Retryable wraps an error as a RetryableError.
func Retryable(err error) error {
	if err == nil {
		return nil
	}
	return &RetryableError{Err: err}
}

// Error returns the error message of the wrapped error.
func (e *RetryableError) Error() string { return e.Err.Error() }

// Unwrap returns the wrapped error.
func (e *RetryableError) Unwrap() error { return e.Err }

// IsRetryable checks if an error is wrapped with RetryableError.
func IsRetryable(err error) bool {
	var re *RetryableError
	return errors.As(err, &re)
}

// RetryWithBackoff retries fn up to 3 times with exponential backoff,
// starting at one second. Only errors wrapped with [Retryable] trigger
// retries; the redis backend uses this for its startup ping so a briefly
// unreachable server does not silently disable caching.
func RetryWithBackoff(ctx context.Context, fn func() error) error {
	const attempts = 3
	delay := time.Second
	var lastErr error

	for i := 0; i < attempts; i++ {
		if err := fn(); err == nil {
			return nil
		} else if lastErr = err; !IsRetryable(err) {
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

// Package httputil provides retry support for outbound HTTP callers.
//
// [Retry] wraps an operation with automatic retry for transient failures.
// Wrap errors that should trigger another attempt with [RetryableError];
// anything else is returned immediately:
//
//	err := httputil.RetryWithBackoff(ctx, func() error {
//	    return callService()
//	})
//
// The packing client wraps network errors, 5xx responses, and 429 rate
// limits this way. [RetryWithBackoff] uses 3 attempts with a 1 second
// initial delay that doubles after each failure.
//
// Response caching is a separate concern, handled by the cache package and
// its Keyer-generated keys.
package httputil

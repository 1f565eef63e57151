// Package errors provides centralized error definitions for the application.
// Errors are organized by domain to avoid duplication and provide consistent naming.
//
// Naming conventions:
//   - Exported errors (Err*): Use for errors that callers need to check with errors.Is
//   - All sentinel errors should be defined as variables, not inline errors.New calls
//   - Use fmt.Errorf with %w to wrap sentinel errors with context
package errors

import "errors"

// Quota errors.
var (
	// ErrQuotaExceeded indicates the user's token budget cannot cover the
	// estimated cost. Jobs failing with this error are not retried.
	ErrQuotaExceeded = errors.New("token quota exceeded")
)

// Asset and catalog errors.
var (
	// ErrAssetNotFound indicates the asset content tree could not be loaded.
	ErrAssetNotFound = errors.New("asset not found")

	// ErrJobNotFound indicates a scout job could not be found.
	ErrJobNotFound = errors.New("scout job not found")
)

// Client and response errors.
var (
	// ErrCircuitBreakerOpen indicates the circuit breaker has tripped and requests are blocked.
	ErrCircuitBreakerOpen = errors.New("circuit breaker is open")

	// ErrEmptyResponse indicates an empty response was received.
	ErrEmptyResponse = errors.New("empty response")

	// ErrInvalidInput indicates invalid input was provided.
	ErrInvalidInput = errors.New("invalid input")
)

// Cache errors.
var (
	// ErrCacheNotFound indicates a cache entry was not found.
	ErrCacheNotFound = errors.New("cache entry not found")
)

// Is is a convenience wrapper around errors.Is.
func Is(err, target error) bool {
	return errors.Is(err, target)
}

// As is a convenience wrapper around errors.As.
func As(err error, target interface{}) bool {
	return errors.As(err, target)
}

// NonRetryable marks an error as terminal for the job queue: the job fails
// immediately instead of consuming its remaining attempts.
type NonRetryable struct {
	Err error
}

func (e *NonRetryable) Error() string {
	return e.Err.Error()
}

func (e *NonRetryable) Unwrap() error {
	return e.Err
}

// MarkNonRetryable wraps err so IsNonRetryable reports true.
func MarkNonRetryable(err error) error {
	if err == nil {
		return nil
	}

	return &NonRetryable{Err: err}
}

// IsNonRetryable reports whether err carries non-retryable semantics.
func IsNonRetryable(err error) bool {
	var nr *NonRetryable

	return errors.As(err, &nr)
}

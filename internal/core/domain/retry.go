package domain

import "time"

// Backoff kind constants.
const (
	BackoffFixed       = "fixed"
	BackoffExponential = "exponential"
)

// RetryPolicy describes how a failed job is rescheduled, independent of any
// particular queue implementation.
type RetryPolicy struct {
	MaxAttempts int
	Backoff     string
	BaseDelay   time.Duration
}

// DefaultScoutRetryPolicy matches the enqueue contract: 3 attempts,
// exponential backoff starting at 5 seconds.
func DefaultScoutRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 3,
		Backoff:     BackoffExponential,
		BaseDelay:   5 * time.Second,
	}
}

// Delay returns the wait before the next attempt, given the number of
// attempts already made (1-based). Exponential backoff doubles per attempt.
func (p RetryPolicy) Delay(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}

	if p.Backoff != BackoffExponential {
		return p.BaseDelay
	}

	delay := p.BaseDelay
	for i := 1; i < attempt; i++ {
		delay *= 2
	}

	return delay
}

// Exhausted reports whether the attempt budget is used up.
func (p RetryPolicy) Exhausted(attempt int) bool {
	return attempt >= p.MaxAttempts
}

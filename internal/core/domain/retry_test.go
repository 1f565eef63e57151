package domain

import (
	"testing"
	"time"
)

func TestRetryPolicyDelay(t *testing.T) {
	policy := DefaultScoutRetryPolicy()

	tests := []struct {
		name     string
		attempt  int
		expected time.Duration
	}{
		{name: "first attempt", attempt: 1, expected: 5 * time.Second},
		{name: "second attempt doubles", attempt: 2, expected: 10 * time.Second},
		{name: "third attempt doubles again", attempt: 3, expected: 20 * time.Second},
		{name: "zero attempt clamps to first", attempt: 0, expected: 5 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := policy.Delay(tt.attempt); got != tt.expected {
				t.Errorf("Delay(%d) = %v, want %v", tt.attempt, got, tt.expected)
			}
		})
	}
}

func TestRetryPolicyFixedBackoff(t *testing.T) {
	policy := RetryPolicy{MaxAttempts: 5, Backoff: BackoffFixed, BaseDelay: time.Second}

	for attempt := 1; attempt <= 5; attempt++ {
		if got := policy.Delay(attempt); got != time.Second {
			t.Errorf("Delay(%d) = %v, want %v", attempt, got, time.Second)
		}
	}
}

func TestRetryPolicyExhausted(t *testing.T) {
	policy := DefaultScoutRetryPolicy()

	if policy.Exhausted(1) || policy.Exhausted(2) {
		t.Error("policy exhausted before max attempts")
	}

	if !policy.Exhausted(3) || !policy.Exhausted(4) {
		t.Error("policy not exhausted at or past max attempts")
	}
}

package core

import (
	"context"
	"time"
)

// DefaultRetryAttempts bounds retries of chat platform calls. The webhook
// source redelivers failed events, so a small attempt count is enough.
const DefaultRetryAttempts = 3

const initialBackoff = 500 * time.Millisecond

// RetryAfterHint is implemented by errors that carry the platform's own
// retry-after delay (HTTP 429 responses include one).
type RetryAfterHint interface {
	RetryAfter() time.Duration
}

// Backoff returns the delay before the given retry attempt (1-based).
// Exponential doubling from 500ms: 500ms, 1s, 2s, ...
func Backoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	d := initialBackoff
	for i := 1; i < attempt; i++ {
		d *= 2
	}
	return d
}

// Retry runs fn up to attempts times, sleeping between tries. Only transient
// errors are retried; anything else is returned immediately. A rate-limit
// hint on the error overrides the computed backoff.
func Retry(ctx context.Context, attempts int, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for attempt := 1; attempt <= attempts; attempt++ {
		err = fn()
		if err == nil || !IsTransient(err) {
			return err
		}
		if attempt == attempts {
			break
		}

		delay := Backoff(attempt)
		var hint RetryAfterHint
		if h, ok := err.(*NudgeError); ok {
			if inner, ok := h.Unwrap().(RetryAfterHint); ok {
				hint = inner
			}
		}
		if hint != nil && hint.RetryAfter() > 0 {
			delay = hint.RetryAfter()
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(delay):
		}
	}
	return err
}

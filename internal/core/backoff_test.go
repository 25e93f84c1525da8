package core

import (
	"context"
	"errors"
	"testing"
	"time"
)

func TestBackoff_Exponential(t *testing.T) {
	tests := []struct {
		attempt int
		want    time.Duration
	}{
		{1, 500 * time.Millisecond},
		{2, 1 * time.Second},
		{3, 2 * time.Second},
		{4, 4 * time.Second},
	}

	for _, tt := range tests {
		got := Backoff(tt.attempt)
		if got != tt.want {
			t.Errorf("Backoff(%d) = %v, want %v", tt.attempt, got, tt.want)
		}
	}
}

func TestBackoff_ClampsBadAttempt(t *testing.T) {
	if got := Backoff(0); got != 500*time.Millisecond {
		t.Errorf("Backoff(0) = %v, want %v", got, 500*time.Millisecond)
	}
}

func TestRetry_SucceedsFirstTry(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		return nil
	})
	if err != nil {
		t.Fatalf("Retry returned %v, want nil", err)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_RetriesTransient(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 3, func() error {
		calls++
		if calls < 3 {
			return NewTransientError("rate limited", nil)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry returned %v, want nil", err)
	}
	if calls != 3 {
		t.Errorf("calls = %d, want 3", calls)
	}
}

func TestRetry_DoesNotRetryNonTransient(t *testing.T) {
	calls := 0
	sentinel := errors.New("invalid channel")
	err := Retry(context.Background(), 3, func() error {
		calls++
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("Retry returned %v, want %v", err, sentinel)
	}
	if calls != 1 {
		t.Errorf("calls = %d, want 1", calls)
	}
}

func TestRetry_ExhaustsAttempts(t *testing.T) {
	calls := 0
	err := Retry(context.Background(), 2, func() error {
		calls++
		return NewTransientError("still rate limited", nil)
	})
	if !IsTransient(err) {
		t.Fatalf("Retry returned %v, want transient error", err)
	}
	if calls != 2 {
		t.Errorf("calls = %d, want 2", calls)
	}
}

func TestRetry_ContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := Retry(ctx, 3, func() error {
		return NewTransientError("rate limited", nil)
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Retry returned %v, want context.Canceled", err)
	}
}

type fakeRateLimited struct{ after time.Duration }

func (f fakeRateLimited) Error() string             { return "rate limited" }
func (f fakeRateLimited) RetryAfter() time.Duration { return f.after }

func TestRetry_HonorsRetryAfterHint(t *testing.T) {
	calls := 0
	start := time.Now()
	err := Retry(context.Background(), 2, func() error {
		calls++
		if calls == 1 {
			return NewTransientError("rate limited", fakeRateLimited{after: 10 * time.Millisecond})
		}
		return nil
	})
	if err != nil {
		t.Fatalf("Retry returned %v, want nil", err)
	}
	// Hint (10ms) should replace the default 500ms first backoff.
	if elapsed := time.Since(start); elapsed > 400*time.Millisecond {
		t.Errorf("Retry took %v, hint delay was not honored", elapsed)
	}
}

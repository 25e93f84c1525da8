package scheduler

import (
	"context"
	"testing"
)

func TestNew_RejectsBadCron(t *testing.T) {
	_, err := New("not a cron line", func(ctx context.Context) error { return nil })
	if err == nil {
		t.Fatal("New should reject an unparseable cron expression")
	}
}

func TestNew_AcceptsStandardExpressions(t *testing.T) {
	exprs := []string{
		"0 7 * * 1-5",
		"*/15 * * * *",
		"@daily",
	}
	for _, expr := range exprs {
		if _, err := New(expr, func(ctx context.Context) error { return nil }); err != nil {
			t.Errorf("New(%q) error: %v", expr, err)
		}
	}
}

func TestStop_Idempotent(t *testing.T) {
	tk, err := New("@daily", func(ctx context.Context) error { return nil })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	tk.Start()
	tk.Stop()

	defer func() {
		if r := recover(); r != nil {
			t.Fatalf("Stop should be idempotent, panicked on second call: %v", r)
		}
	}()
	tk.Stop()
}

package calendar

import (
	"testing"
	"time"

	"github.com/prnudge/prnudge/internal/core"
)

func mustConfig(t *testing.T) Config {
	t.Helper()
	cfg, err := New("Australia/Melbourne", 9, 17, nil)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}
	return cfg
}

// mel builds a local Melbourne time. January dates avoid DST transitions
// mid-test (Melbourne is on AEDT throughout).
func mel(t *testing.T, day, hour, min int) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("Australia/Melbourne")
	if err != nil {
		t.Fatalf("LoadLocation: %v", err)
	}
	// 2026-01-19 is a Monday.
	return time.Date(2026, time.January, day, hour, min, 0, 0, loc)
}

func TestNew_RejectsBadBounds(t *testing.T) {
	tests := []struct {
		name       string
		start, end int
	}{
		{"start after end", 17, 9},
		{"start equals end", 9, 9},
		{"negative start", -1, 17},
		{"end past midnight", 9, 25},
	}

	for _, tt := range tests {
		_, err := New("Australia/Melbourne", tt.start, tt.end, nil)
		if err == nil {
			t.Errorf("%s: New(%d, %d) should fail", tt.name, tt.start, tt.end)
		}
		var ne *core.NudgeError
		if !asNudgeError(err, &ne) || ne.Code != core.ErrCodeConfiguration {
			t.Errorf("%s: error = %v, want configuration error", tt.name, err)
		}
	}
}

func asNudgeError(err error, target **core.NudgeError) bool {
	ne, ok := err.(*core.NudgeError)
	if ok {
		*target = ne
	}
	return ok
}

func TestNew_RejectsUnknownTimezone(t *testing.T) {
	if _, err := New("Not/AZone", 9, 17, nil); err == nil {
		t.Error("New with unknown timezone should fail")
	}
}

func TestWithin(t *testing.T) {
	cfg := mustConfig(t)

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"monday 10am", mel(t, 19, 10, 0), true},
		{"monday 9am start inclusive", mel(t, 19, 9, 0), true},
		{"monday 4pm", mel(t, 19, 16, 59), true},
		{"monday 5pm end exclusive", mel(t, 19, 17, 0), false},
		{"monday 8am before start", mel(t, 19, 8, 0), false},
		{"saturday", mel(t, 17, 10, 0), false},
		{"sunday", mel(t, 18, 10, 0), false},
	}

	for _, tt := range tests {
		if got := cfg.Within(tt.t); got != tt.want {
			t.Errorf("%s: Within(%v) = %v, want %v", tt.name, tt.t, got, tt.want)
		}
	}
}

func TestNext_InsideHoursUnchanged(t *testing.T) {
	cfg := mustConfig(t)
	in := mel(t, 19, 10, 30) // Monday 10:30
	if got := cfg.Next(in); !got.Equal(in) {
		t.Errorf("Next(%v) = %v, want unchanged", in, got)
	}
}

func TestNext_BeforeStartSameDay(t *testing.T) {
	cfg := mustConfig(t)
	got := cfg.Next(mel(t, 19, 8, 0)) // Monday 08:00
	want := mel(t, 19, 9, 0)
	if !got.Equal(want) {
		t.Errorf("Next = %v, want %v", got, want)
	}
}

func TestNext_AfterEndRollsToNextDay(t *testing.T) {
	cfg := mustConfig(t)
	got := cfg.Next(mel(t, 19, 18, 0)) // Monday 18:00
	want := mel(t, 20, 9, 0)           // Tuesday 09:00
	if !got.Equal(want) {
		t.Errorf("Next = %v, want %v", got, want)
	}
}

func TestNext_WeekendSkipped(t *testing.T) {
	cfg := mustConfig(t)

	// Saturday 10:00 -> Monday 09:00
	got := cfg.Next(mel(t, 17, 10, 0))
	want := mel(t, 19, 9, 0)
	if !got.Equal(want) {
		t.Errorf("Next(saturday) = %v, want %v", got, want)
	}

	// Friday 17:00 -> Monday 09:00
	got = cfg.Next(mel(t, 16, 17, 0))
	if !got.Equal(want) {
		t.Errorf("Next(friday 5pm) = %v, want %v", got, want)
	}
}

func TestNext_Idempotent(t *testing.T) {
	cfg := mustConfig(t)

	// Sweep a fortnight hour by hour; Next(Next(t)) == Next(t) must hold
	// everywhere, including weekend and boundary hours.
	start := mel(t, 12, 0, 0)
	for i := 0; i < 14*24; i++ {
		in := start.Add(time.Duration(i) * time.Hour)
		once := cfg.Next(in)
		twice := cfg.Next(once)
		if !twice.Equal(once) {
			t.Fatalf("Next not idempotent at %v: first %v, second %v", in, once, twice)
		}
		if !cfg.Within(once) {
			t.Fatalf("Next(%v) = %v is outside business hours", in, once)
		}
		if once.Before(in) {
			t.Fatalf("Next(%v) = %v went backwards", in, once)
		}
	}
}

func TestAddInterval_SameDay(t *testing.T) {
	cfg := mustConfig(t)
	got := cfg.AddInterval(mel(t, 19, 10, 0), 3) // Monday 10:00 + 3h
	want := mel(t, 19, 13, 0)
	if !got.Equal(want) {
		t.Errorf("AddInterval = %v, want %v", got, want)
	}
}

func TestAddInterval_RollsPastEndOfDay(t *testing.T) {
	cfg := mustConfig(t)
	// Monday 15:00 + 3h = 18:00, past end -> Tuesday 09:00.
	got := cfg.AddInterval(mel(t, 19, 15, 0), 3)
	want := mel(t, 20, 9, 0)
	if !got.Equal(want) {
		t.Errorf("AddInterval = %v, want %v", got, want)
	}
}

func TestAddInterval_RollsPastWeekend(t *testing.T) {
	cfg := mustConfig(t)
	// Friday 16:00 + 3h = 19:00 -> Monday 09:00.
	got := cfg.AddInterval(mel(t, 23, 16, 0), 3)
	want := mel(t, 26, 9, 0)
	if !got.Equal(want) {
		t.Errorf("AddInterval = %v, want %v", got, want)
	}
}

func TestAddBusinessDays(t *testing.T) {
	cfg := mustConfig(t)

	tests := []struct {
		name string
		from time.Time
		n    int
		want time.Time
	}{
		{"monday plus two", mel(t, 19, 8, 0), 2, mel(t, 21, 8, 0)},
		{"thursday plus two spans weekend", mel(t, 22, 14, 0), 2, mel(t, 26, 14, 0)},
		{"friday plus one", mel(t, 23, 10, 0), 1, mel(t, 26, 10, 0)},
		{"saturday plus two", mel(t, 17, 10, 0), 2, mel(t, 20, 10, 0)},
		{"zero days", mel(t, 19, 10, 0), 0, mel(t, 19, 10, 0)},
	}

	for _, tt := range tests {
		got := cfg.AddBusinessDays(tt.from, tt.n)
		if !got.Equal(tt.want) {
			t.Errorf("%s: AddBusinessDays = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestCustomWeekdaySet(t *testing.T) {
	// Sunday-Thursday work week.
	weekdays := map[time.Weekday]bool{
		time.Sunday:    true,
		time.Monday:    true,
		time.Tuesday:   true,
		time.Wednesday: true,
		time.Thursday:  true,
	}
	cfg, err := New("Australia/Melbourne", 9, 17, weekdays)
	if err != nil {
		t.Fatalf("New() error: %v", err)
	}

	// Friday 10:00 -> Sunday 09:00.
	got := cfg.Next(mel(t, 23, 10, 0))
	want := mel(t, 25, 9, 0)
	if !got.Equal(want) {
		t.Errorf("Next(friday, sun-thu week) = %v, want %v", got, want)
	}
}

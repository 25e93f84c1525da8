package reminder

import (
	"time"

	"github.com/prnudge/prnudge/internal/calendar"
)

// windowTarget is the instant the latest pending reminder must reach:
// now advanced windowDays business weekdays, keeping the time of day.
func windowTarget(now time.Time, cal calendar.Config, windowDays int) time.Time {
	return cal.AddBusinessDays(now, windowDays)
}

// InitialSchedule computes the reminder instants for a freshly mentioned
// thread. The first instant is the next business instant at or after now;
// subsequent instants step by intervalHours (business-aware) until the
// latest reaches the coverage target. The result is strictly increasing and
// lies entirely inside business hours.
func InitialSchedule(now time.Time, cal calendar.Config, intervalHours, windowDays int) []time.Time {
	target := windowTarget(now, cal, windowDays)

	first := cal.Next(now)
	schedule := []time.Time{first}
	last := first
	for last.Before(target) {
		last = cal.AddInterval(last, intervalHours)
		schedule = append(schedule, last)
	}
	return schedule
}

// TopUpSchedule computes only the missing trailing instants needed so a
// thread's latest pending reminder reaches the coverage target again. The
// latest surviving pending instant is the sole seed; existing instants are
// never touched or re-derived, so the result never contains an instant at or
// before the existing latest. Instants at or before now have already fired
// and are ignored. An empty pending set yields nil: only InitialSchedule
// seeds a thread.
func TopUpSchedule(existing []time.Time, now time.Time, cal calendar.Config, intervalHours, windowDays int) []time.Time {
	var last time.Time
	for _, t := range existing {
		if t.After(now) && t.After(last) {
			last = t
		}
	}
	if last.IsZero() {
		return nil
	}

	target := windowTarget(now, cal, windowDays)

	var added []time.Time
	for last.Before(target) {
		last = cal.AddInterval(last, intervalHours)
		added = append(added, last)
	}
	return added
}

// Package calendar implements business-hours time arithmetic. Every function
// is pure: the clock is always a parameter and no I/O happens here.
package calendar

import (
	"fmt"
	"time"

	"github.com/prnudge/prnudge/internal/core"
)

// Config describes the business calendar: a timezone, a daily hour range
// and the set of working weekdays.
type Config struct {
	Location  *time.Location
	StartHour int
	EndHour   int
	Weekdays  map[time.Weekday]bool
}

// DefaultWeekdays is Monday through Friday.
func DefaultWeekdays() map[time.Weekday]bool {
	return map[time.Weekday]bool{
		time.Monday:    true,
		time.Tuesday:   true,
		time.Wednesday: true,
		time.Thursday:  true,
		time.Friday:    true,
	}
}

// New validates and returns a calendar config. Hour bounds follow
// [StartHour, EndHour) with 0 <= StartHour < EndHour <= 24.
func New(tz string, startHour, endHour int, weekdays map[time.Weekday]bool) (Config, error) {
	loc, err := time.LoadLocation(tz)
	if err != nil {
		return Config{}, core.NewConfigError(fmt.Sprintf("unknown timezone %q", tz), map[string]any{"timezone": tz})
	}
	if startHour < 0 || startHour >= 24 {
		return Config{}, core.NewConfigError("business hours start out of range", map[string]any{"start": startHour})
	}
	if endHour <= startHour || endHour > 24 {
		return Config{}, core.NewConfigError("business hours end must be after start and at most 24", map[string]any{"start": startHour, "end": endHour})
	}
	if len(weekdays) == 0 {
		weekdays = DefaultWeekdays()
	}
	return Config{Location: loc, StartHour: startHour, EndHour: endHour, Weekdays: weekdays}, nil
}

// Within reports whether t falls inside business hours on a business day.
func (c Config) Within(t time.Time) bool {
	local := t.In(c.Location)
	if !c.Weekdays[local.Weekday()] {
		return false
	}
	h := local.Hour()
	return h >= c.StartHour && h < c.EndHour
}

// dayStart returns the business-day start hour on the date of t.
func (c Config) dayStart(t time.Time) time.Time {
	local := t.In(c.Location)
	return time.Date(local.Year(), local.Month(), local.Day(), c.StartHour, 0, 0, 0, c.Location)
}

// Next returns the smallest business instant >= t:
//   - inside business hours: t unchanged
//   - before start on a business day: that day's start
//   - at/after end, or on a non-business day: next business day's start
func (c Config) Next(t time.Time) time.Time {
	local := t.In(c.Location)
	if c.Within(local) {
		return local
	}

	if c.Weekdays[local.Weekday()] && local.Hour() < c.StartHour {
		return c.dayStart(local)
	}

	day := c.dayStart(local).AddDate(0, 0, 1)
	for !c.Weekdays[day.Weekday()] {
		day = day.AddDate(0, 0, 1)
	}
	return day
}

// AddInterval adds wall-clock hours to t and re-normalizes through Next, so
// interval steps roll over past end-of-day and weekends instead of landing
// after hours.
func (c Config) AddInterval(t time.Time, hours int) time.Time {
	return c.Next(t.In(c.Location).Add(time.Duration(hours) * time.Hour))
}

// AddBusinessDays advances t by n business weekdays, keeping the time of
// day. Used to compute coverage-window targets.
func (c Config) AddBusinessDays(t time.Time, n int) time.Time {
	target := t.In(c.Location)
	added := 0
	for added < n {
		target = target.AddDate(0, 0, 1)
		if c.Weekdays[target.Weekday()] {
			added++
		}
	}
	return target
}

package reminder

import (
	"log/slog"
	"sort"
	"time"

	"github.com/prnudge/prnudge/internal/marker"
)

// Coverage is the derived, in-memory snapshot of one thread's pending
// reminders. It is recomputed from a fresh platform listing on every
// invocation and never persisted.
type Coverage struct {
	ThreadTS string
	URL      string
	// Channel the pending entries were listed from; top-ups go back there.
	Channel string
	// Reminders are the pending entries, sorted by post-at ascending.
	Reminders []PendingReminder
}

// PendingReminder pairs a scheduled-message id with its post-at instant.
type PendingReminder struct {
	ID     string
	PostAt time.Time
}

// Len returns the number of pending reminders.
func (c Coverage) Len() int { return len(c.Reminders) }

// Soonest returns the earliest pending instant, zero when empty.
func (c Coverage) Soonest() time.Time {
	if len(c.Reminders) == 0 {
		return time.Time{}
	}
	return c.Reminders[0].PostAt
}

// Latest returns the latest pending instant, zero when empty.
func (c Coverage) Latest() time.Time {
	if len(c.Reminders) == 0 {
		return time.Time{}
	}
	return c.Reminders[len(c.Reminders)-1].PostAt
}

// PostAts returns the pending instants in ascending order.
func (c Coverage) PostAts() []time.Time {
	out := make([]time.Time, len(c.Reminders))
	for i, r := range c.Reminders {
		out[i] = r.PostAt
	}
	return out
}

// Reconstruct groups pending scheduled messages by the thread identity
// embedded in their markers. Messages without a well-formed marker are
// logged and skipped; they are someone else's scheduled messages or
// corrupted bodies, and must not fail the batch. Pure function of its input.
func Reconstruct(msgs []ScheduledMessage) map[string]Coverage {
	byThread := make(map[string]Coverage)
	for _, msg := range msgs {
		m, err := marker.Parse(msg.Body)
		if err != nil {
			slog.Warn("skipping scheduled message without parseable marker",
				"scheduled_message_id", msg.ID,
				"channel", msg.Channel,
			)
			continue
		}

		cov := byThread[m.ThreadTS]
		cov.ThreadTS = m.ThreadTS
		cov.URL = m.URL
		cov.Channel = msg.Channel
		cov.Reminders = append(cov.Reminders, PendingReminder{ID: msg.ID, PostAt: msg.PostAt})
		byThread[m.ThreadTS] = cov
	}

	for ts, cov := range byThread {
		sort.Slice(cov.Reminders, func(i, j int) bool {
			return cov.Reminders[i].PostAt.Before(cov.Reminders[j].PostAt)
		})
		byThread[ts] = cov
	}
	return byThread
}

package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/prnudge/prnudge/internal/calendar"
	"github.com/prnudge/prnudge/internal/core"
	"github.com/prnudge/prnudge/internal/marker"
	"github.com/prnudge/prnudge/internal/metrics"
)

// Scheduler turns planned reminder instants into scheduled messages on the
// chat platform. Creation is not transactional: a failure mid-sequence
// leaves the already-created reminders in place, and the next top-up tick
// fills forward from them.
type Scheduler struct {
	Chat ChatClient
	Cal  calendar.Config
	Opts Options
}

// NewScheduler builds a Scheduler with defaulted options.
func NewScheduler(chat ChatClient, cal calendar.Config, opts Options) *Scheduler {
	return &Scheduler{Chat: chat, Cal: cal, Opts: opts.withDefaults()}
}

// RenderBody produces one reminder body: the template with the placeholder
// phrase replaced by a link to the subject, plus the thread marker appended.
func (s *Scheduler) RenderBody(threadTS, url string) string {
	link := fmt.Sprintf("<%s|%s>", url, s.Opts.Placeholder)
	text := strings.Replace(s.Opts.Template, s.Opts.Placeholder, link, 1)
	m := marker.Marker{ThreadTS: threadTS, URL: url}
	return text + " " + m.String()
}

// ScheduleInitial computes the initial reminder sequence for a thread and
// issues one create call per instant, into the thread's own channel. Returns
// the instants actually created; on partial failure both the created prefix
// and the error are returned.
func (s *Scheduler) ScheduleInitial(ctx context.Context, channel, threadTS, url string, now time.Time) ([]time.Time, error) {
	plan := InitialSchedule(now, s.Cal, s.Opts.IntervalHours, s.Opts.WindowDays)
	return s.createAll(ctx, channel, threadTS, url, plan)
}

// ExtendCoverage tops up an existing thread so its latest pending reminder
// reaches the coverage window again. Only the missing trailing instants are
// created; existing entries are never touched. New entries land in the
// channel the coverage was reconstructed from.
func (s *Scheduler) ExtendCoverage(ctx context.Context, cov Coverage, now time.Time) ([]time.Time, error) {
	plan := TopUpSchedule(cov.PostAts(), now, s.Cal, s.Opts.IntervalHours, s.Opts.WindowDays)
	return s.createAll(ctx, cov.Channel, cov.ThreadTS, cov.URL, plan)
}

func (s *Scheduler) createAll(ctx context.Context, channel, threadTS, url string, plan []time.Time) ([]time.Time, error) {
	body := s.RenderBody(threadTS, url)

	created := make([]time.Time, 0, len(plan))
	for _, postAt := range plan {
		err := core.Retry(ctx, core.DefaultRetryAttempts, func() error {
			_, err := s.Chat.CreateScheduledMessage(ctx, channel, postAt, threadTS, body)
			return err
		})
		if err != nil {
			// No rollback of the prefix: the surviving reminders become the
			// seed the next top-up tick fills forward from.
			return created, fmt.Errorf("scheduling reminder at %s for thread %s: %w", postAt, threadTS, err)
		}
		created = append(created, postAt)
		metrics.RemindersScheduled.Inc()
		slog.Info("scheduled reminder",
			"thread_ts", threadTS,
			"post_at", postAt,
			"channel", channel,
		)
	}
	return created, nil
}

package reminder

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/prnudge/prnudge/internal/calendar"
	"github.com/prnudge/prnudge/internal/core"
	"github.com/prnudge/prnudge/internal/marker"
	"github.com/prnudge/prnudge/internal/metrics"
)

// Event is an inbound occurrence the orchestrator acts on. The transport
// layer has already verified and authenticated it.
type Event struct {
	// ID is the platform's event id, used only for best-effort in-process
	// dedup at the transport layer.
	ID string
	// Channel the event happened in.
	Channel string
	// ThreadTS identifies the thread: the origin message's timestamp for
	// mentions, the reacted/replied message's thread root for approvals.
	ThreadTS string
	// MessageTS is the triggering message itself (carries the idempotency
	// reactions). For mentions this equals ThreadTS.
	MessageTS string
	// Text is the raw mention or reply text, empty for reactions.
	Text string
}

// Orchestrator decides, per event, whether to schedule, extend, cancel or
// no-op. It holds no state between invocations: thread coverage is
// reconstructed from the platform every time, and idempotency rests on
// observable side effects (reactions present, coverage present or absent)
// rather than any local table, so concurrent and redelivered events
// converge without locks.
type Orchestrator struct {
	chat  ChatClient
	sched *Scheduler
	cal   calendar.Config
	opts  Options

	// now is the clock, a field so tests can pin it.
	now func() time.Time
}

// NewOrchestrator wires the orchestrator. A nil now defaults to time.Now.
func NewOrchestrator(chat ChatClient, cal calendar.Config, opts Options, now func() time.Time) *Orchestrator {
	if now == nil {
		now = time.Now
	}
	opts = opts.withDefaults()
	return &Orchestrator{
		chat:  chat,
		sched: NewScheduler(chat, cal, opts),
		cal:   cal,
		opts:  opts,
		now:   now,
	}
}

// ApprovalEmoji exposes the configured approval emoji for the transport
// layer's event filtering.
func (o *Orchestrator) ApprovalEmoji() string { return o.opts.ApprovalEmoji }

// coverageFor lists the channel's pending scheduled messages and returns the
// coverage snapshot for one thread. The list is always fresh; there is no
// cache to go stale.
func (o *Orchestrator) coverageFor(ctx context.Context, channel, threadTS string) (Coverage, error) {
	msgs, err := o.listChannel(ctx, channel)
	if err != nil {
		return Coverage{}, err
	}
	return Reconstruct(msgs)[threadTS], nil
}

func (o *Orchestrator) listChannel(ctx context.Context, channel string) ([]ScheduledMessage, error) {
	var msgs []ScheduledMessage
	err := core.Retry(ctx, core.DefaultRetryAttempts, func() error {
		var listErr error
		msgs, listErr = o.chat.ListScheduledMessages(ctx, channel)
		return listErr
	})
	if err != nil {
		metrics.ChatAPIErrors.WithLabelValues("list").Inc()
		return nil, fmt.Errorf("listing scheduled messages in %s: %w", channel, err)
	}
	return msgs, nil
}

// react adds an emoji to a message, treating already-present as success.
func (o *Orchestrator) react(ctx context.Context, channel, ts, emoji string) error {
	err := core.Retry(ctx, core.DefaultRetryAttempts, func() error {
		return o.chat.AddReaction(ctx, channel, ts, emoji)
	})
	if core.IsAlreadySatisfied(err) {
		return nil
	}
	if err != nil {
		metrics.ChatAPIErrors.WithLabelValues("add_reaction").Inc()
		return fmt.Errorf("adding :%s: to %s: %w", emoji, ts, err)
	}
	return nil
}

// HandleMention processes a new-thread mention. A mention for an
// already-covered thread is a duplicate delivery: it is acknowledged again
// (AddReaction is idempotent on the platform side) and nothing is scheduled.
func (o *Orchestrator) HandleMention(ctx context.Context, ev Event) error {
	cov, err := o.coverageFor(ctx, ev.Channel, ev.ThreadTS)
	if err != nil {
		metrics.EventsTotal.WithLabelValues("mention", "error").Inc()
		return err
	}

	if cov.Len() > 0 {
		slog.Info("mention for already-covered thread, acknowledging only",
			"thread_ts", ev.ThreadTS,
			"pending", cov.Len(),
		)
		metrics.EventsTotal.WithLabelValues("mention", "duplicate").Inc()
		return o.react(ctx, ev.Channel, ev.MessageTS, o.opts.AckEmoji)
	}

	url, ok := marker.FindPRURL(ev.Text)
	if !ok {
		slog.Info("mention without a recognizable PR link", "thread_ts", ev.ThreadTS)
		metrics.EventsTotal.WithLabelValues("mention", "not_understood").Inc()
		return o.react(ctx, ev.Channel, ev.MessageTS, o.opts.UnknownEmoji)
	}

	created, err := o.sched.ScheduleInitial(ctx, ev.Channel, ev.ThreadTS, url, o.now())
	if err != nil {
		slog.Error("initial scheduling failed",
			"thread_ts", ev.ThreadTS,
			"url", url,
			"created", len(created),
			"error", err,
		)
		metrics.EventsTotal.WithLabelValues("mention", "error").Inc()
		// Surface the failure on the thread; the created prefix stays and
		// self-heals via the next tick.
		if reactErr := o.react(ctx, ev.Channel, ev.MessageTS, o.opts.FailEmoji); reactErr != nil {
			slog.Error("failure reaction also failed", "error", reactErr)
		}
		return err
	}

	slog.Info("scheduled initial reminders",
		"thread_ts", ev.ThreadTS,
		"url", url,
		"count", len(created),
	)
	metrics.EventsTotal.WithLabelValues("mention", "scheduled").Inc()
	return o.react(ctx, ev.Channel, ev.MessageTS, o.opts.AckEmoji)
}

// HandleApproval cancels a thread's pending reminders. The
// cancellation-acknowledgement reaction on the triggering message is the
// idempotency guard: if it is already there, this delivery is a duplicate of
// an event that was fully handled, and no deletion calls are made.
func (o *Orchestrator) HandleApproval(ctx context.Context, ev Event) error {
	var reactions []string
	err := core.Retry(ctx, core.DefaultRetryAttempts, func() error {
		var listErr error
		reactions, listErr = o.chat.ListReactions(ctx, ev.Channel, ev.MessageTS)
		return listErr
	})
	if err != nil {
		metrics.ChatAPIErrors.WithLabelValues("list_reactions").Inc()
		metrics.EventsTotal.WithLabelValues("approval", "error").Inc()
		return fmt.Errorf("listing reactions on %s: %w", ev.MessageTS, err)
	}
	for _, r := range reactions {
		if r == o.opts.CancelAckEmoji {
			slog.Info("approval already acknowledged, skipping", "thread_ts", ev.ThreadTS)
			metrics.EventsTotal.WithLabelValues("approval", "duplicate").Inc()
			return nil
		}
	}

	cov, err := o.coverageFor(ctx, ev.Channel, ev.ThreadTS)
	if err != nil {
		metrics.EventsTotal.WithLabelValues("approval", "error").Inc()
		return err
	}

	if cov.Len() == 0 {
		slog.Info("approval for thread with nothing pending", "thread_ts", ev.ThreadTS)
		metrics.EventsTotal.WithLabelValues("approval", "nothing_found").Inc()
		return o.react(ctx, ev.Channel, ev.MessageTS, o.opts.NothingFoundEmoji)
	}

	// Best-effort per entry: one failed deletion must not block the rest. A
	// reminder that survives fires later, which is acceptable degraded
	// behavior surfaced only in logs.
	deleted := 0
	for _, rem := range cov.Reminders {
		err := core.Retry(ctx, core.DefaultRetryAttempts, func() error {
			return o.chat.DeleteScheduledMessage(ctx, ev.Channel, rem.ID)
		})
		if core.IsAlreadySatisfied(err) {
			// Already delivered or deleted by a concurrent invocation.
			deleted++
			continue
		}
		if err != nil {
			metrics.ChatAPIErrors.WithLabelValues("delete").Inc()
			slog.Error("deleting scheduled reminder failed",
				"scheduled_message_id", rem.ID,
				"thread_ts", ev.ThreadTS,
				"error", err,
			)
			continue
		}
		deleted++
		metrics.RemindersCancelled.Inc()
	}

	slog.Info("cancelled pending reminders",
		"thread_ts", ev.ThreadTS,
		"deleted", deleted,
		"pending_was", cov.Len(),
	)
	metrics.EventsTotal.WithLabelValues("approval", "cancelled").Inc()
	return o.react(ctx, ev.Channel, ev.MessageTS, o.opts.CancelAckEmoji)
}

// HandleTick runs the rolling-window top-up across every thread with pending
// coverage in the monitored channel. Threads with no coverage are left
// alone: only a mention seeds a thread, so a user's cancellation is never
// resurrected by the timer.
func (o *Orchestrator) HandleTick(ctx context.Context) error {
	msgs, err := o.listChannel(ctx, o.opts.Channel)
	if err != nil {
		metrics.EventsTotal.WithLabelValues("tick", "error").Inc()
		return err
	}

	now := o.now()
	target := windowTarget(now, o.cal, o.opts.WindowDays)

	var firstErr error
	extended := 0
	for _, cov := range Reconstruct(msgs) {
		if !cov.Latest().Before(target) {
			continue
		}
		added, err := o.sched.ExtendCoverage(ctx, cov, now)
		if err != nil {
			slog.Error("top-up failed for thread",
				"thread_ts", cov.ThreadTS,
				"added", len(added),
				"error", err,
			)
			if firstErr == nil {
				firstErr = err
			}
			continue
		}
		if len(added) > 0 {
			extended++
			slog.Info("topped up thread coverage",
				"thread_ts", cov.ThreadTS,
				"added", len(added),
				"latest", added[len(added)-1],
			)
		}
	}

	if firstErr != nil {
		metrics.EventsTotal.WithLabelValues("tick", "error").Inc()
		return firstErr
	}
	metrics.EventsTotal.WithLabelValues("tick", "ok").Inc()
	slog.Info("top-up tick complete", "threads_extended", extended)
	return nil
}

package reminder

import (
	"context"
	"time"
)

// ScheduledMessage is a pending scheduled message as the chat platform
// reports it. The platform owns these; the service never keeps a copy.
type ScheduledMessage struct {
	ID      string
	Channel string
	PostAt  time.Time
	Body    string
}

// ChatClient is the chat-platform surface the reminder engine needs.
// Implementations classify failures through internal/core: rate limits and
// timeouts are transient, already_reacted and not-found-on-delete are
// AlreadySatisfied.
type ChatClient interface {
	// CreateScheduledMessage schedules body to post into threadTS at postAt.
	CreateScheduledMessage(ctx context.Context, channel string, postAt time.Time, threadTS, body string) (string, error)

	// ListScheduledMessages returns every pending scheduled message in the
	// channel, across all pagination pages.
	ListScheduledMessages(ctx context.Context, channel string) ([]ScheduledMessage, error)

	// DeleteScheduledMessage removes a pending scheduled message.
	DeleteScheduledMessage(ctx context.Context, channel, id string) error

	// AddReaction adds an emoji reaction to a message. AlreadySatisfied when
	// the reaction is already present.
	AddReaction(ctx context.Context, channel, timestamp, emoji string) error

	// ListReactions returns the emoji names currently on a message.
	ListReactions(ctx context.Context, channel, timestamp string) ([]string, error)
}

// Reaction emoji defaults. The approval emoji is configurable; the rest are
// the service's own visible side-effect markers.
const (
	DefaultAckEmoji          = "white_check_mark" // mention accepted, reminders scheduled
	DefaultFailEmoji         = "x"                // scheduling failed
	DefaultUnknownEmoji      = "question"         // mention without a recognizable PR link
	DefaultApprovalEmoji     = "approved"         // cancels pending reminders
	DefaultCancelAckEmoji    = "no_bell"          // reminders cancelled; doubles as the dedup guard
	DefaultNothingFoundEmoji = "mag"              // approval on a thread with nothing pending
)

// DefaultTemplate is the reminder body before marker insertion. The
// "this PR" phrase is replaced with a link to the subject.
const DefaultTemplate = "Friendly nudge: no review yet on this PR. React with :eyes: if you're taking it and :approved: once it's approved. Thanks!"

// DefaultPlaceholder is the phrase in the template that gets replaced by the
// subject link.
const DefaultPlaceholder = "this PR"

// Options carries the reminder engine configuration.
type Options struct {
	Channel       string
	IntervalHours int
	WindowDays    int
	Template      string
	Placeholder   string

	AckEmoji          string
	FailEmoji         string
	UnknownEmoji      string
	ApprovalEmoji     string
	CancelAckEmoji    string
	NothingFoundEmoji string
}

// withDefaults fills zero-valued options.
func (o Options) withDefaults() Options {
	if o.IntervalHours == 0 {
		o.IntervalHours = 3
	}
	if o.WindowDays == 0 {
		o.WindowDays = 2
	}
	if o.Template == "" {
		o.Template = DefaultTemplate
	}
	if o.Placeholder == "" {
		o.Placeholder = DefaultPlaceholder
	}
	if o.AckEmoji == "" {
		o.AckEmoji = DefaultAckEmoji
	}
	if o.FailEmoji == "" {
		o.FailEmoji = DefaultFailEmoji
	}
	if o.UnknownEmoji == "" {
		o.UnknownEmoji = DefaultUnknownEmoji
	}
	if o.ApprovalEmoji == "" {
		o.ApprovalEmoji = DefaultApprovalEmoji
	}
	if o.CancelAckEmoji == "" {
		o.CancelAckEmoji = DefaultCancelAckEmoji
	}
	if o.NothingFoundEmoji == "" {
		o.NothingFoundEmoji = DefaultNothingFoundEmoji
	}
	return o
}

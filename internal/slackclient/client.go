// Package slackclient adapts the Slack Web API to the reminder engine's
// ChatClient contract and classifies Slack failures into the service error
// taxonomy.
package slackclient

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/slack-go/slack"

	"github.com/prnudge/prnudge/internal/core"
	"github.com/prnudge/prnudge/internal/reminder"
)

// listPageSize matches Slack's maximum page size for
// chat.scheduledMessages.list.
const listPageSize = 100

// Client wraps a Slack API client.
type Client struct {
	api *slack.Client
}

// New builds a Client from a bot token.
func New(token string) *Client {
	return &Client{api: slack.New(token)}
}

// rateLimitHint satisfies core.RetryAfterHint for Slack 429 responses.
type rateLimitHint struct {
	after time.Duration
}

func (h rateLimitHint) Error() string             { return "slack: rate limited" }
func (h rateLimitHint) RetryAfter() time.Duration { return h.after }

// classify maps a Slack API error onto the service taxonomy. Slack reports
// platform errors as short snake_case strings in the response body, which
// slack-go surfaces as a SlackErrorResponse; Error() is the fallback for
// errors that arrive some other way.
func classify(op string, err error) error {
	if err == nil {
		return nil
	}

	var rle *slack.RateLimitedError
	if errors.As(err, &rle) {
		return core.NewTransientError(op+" rate limited", rateLimitHint{after: rle.RetryAfter})
	}

	code := err.Error()
	var serr slack.SlackErrorResponse
	if errors.As(err, &serr) {
		code = serr.Err
	}

	switch code {
	case "already_reacted":
		return core.NewAlreadySatisfiedError("reaction already present", err)
	case "invalid_scheduled_message_id":
		// The message was already delivered or deleted; the desired end
		// state (no pending reminder) holds.
		return core.NewAlreadySatisfiedError("scheduled message already gone", err)
	case "internal_error", "service_unavailable", "request_timeout":
		return core.NewTransientError(op+" failed transiently", err)
	}
	return fmt.Errorf("%s: %w", op, err)
}

// CreateScheduledMessage schedules a broadcast reply into the thread.
func (c *Client) CreateScheduledMessage(ctx context.Context, channel string, postAt time.Time, threadTS, body string) (string, error) {
	_, id, err := c.api.ScheduleMessageContext(ctx, channel,
		strconv.FormatInt(postAt.Unix(), 10),
		slack.MsgOptionText(body, false),
		slack.MsgOptionTS(threadTS),
		slack.MsgOptionBroadcast(),
	)
	if err != nil {
		return "", classify("chat.scheduleMessage", err)
	}
	return id, nil
}

// ListScheduledMessages walks every pagination page of the channel's
// pending scheduled messages.
func (c *Client) ListScheduledMessages(ctx context.Context, channel string) ([]reminder.ScheduledMessage, error) {
	var out []reminder.ScheduledMessage
	cursor := ""
	for {
		msgs, next, err := c.api.GetScheduledMessagesContext(ctx, &slack.GetScheduledMessagesParameters{
			Channel: channel,
			Cursor:  cursor,
			Limit:   listPageSize,
		})
		if err != nil {
			return nil, classify("chat.scheduledMessages.list", err)
		}
		for _, m := range msgs {
			out = append(out, reminder.ScheduledMessage{
				ID:      m.ID,
				Channel: channel,
				PostAt:  time.Unix(int64(m.PostAt), 0),
				Body:    m.Text,
			})
		}
		if next == "" {
			return out, nil
		}
		cursor = next
	}
}

// DeleteScheduledMessage removes one pending scheduled message.
func (c *Client) DeleteScheduledMessage(ctx context.Context, channel, id string) error {
	_, err := c.api.DeleteScheduledMessageContext(ctx, &slack.DeleteScheduledMessageParameters{
		Channel:            channel,
		ScheduledMessageID: id,
	})
	return classify("chat.deleteScheduledMessage", err)
}

// AddReaction adds an emoji reaction to a message.
func (c *Client) AddReaction(ctx context.Context, channel, timestamp, emoji string) error {
	err := c.api.AddReactionContext(ctx, emoji, slack.NewRefToMessage(channel, timestamp))
	return classify("reactions.add", err)
}

// ListReactions returns the emoji names currently on a message.
func (c *Client) ListReactions(ctx context.Context, channel, timestamp string) ([]string, error) {
	reactions, err := c.api.GetReactionsContext(ctx, slack.NewRefToMessage(channel, timestamp), slack.GetReactionsParameters{})
	if err != nil {
		return nil, classify("reactions.get", err)
	}
	names := make([]string, 0, len(reactions))
	for _, r := range reactions {
		names = append(names, r.Name)
	}
	return names, nil
}

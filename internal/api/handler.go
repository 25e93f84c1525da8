// Package api implements the Slack Events webhook surface. Transport
// concerns only: signature verification, payload parsing and event routing.
// All reminder decisions live in internal/reminder.
package api

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/slack-go/slack"
	"github.com/slack-go/slack/slackevents"

	"github.com/prnudge/prnudge/internal/reminder"
)

// EventHandler is the orchestrator surface the webhook needs.
type EventHandler interface {
	HandleMention(ctx context.Context, ev reminder.Event) error
	HandleApproval(ctx context.Context, ev reminder.Event) error
}

// Handler serves POST /slack/events.
type Handler struct {
	events        EventHandler
	signingSecret string
	approvalEmoji string
	seen          *ProcessedEventSet
}

// NewHandler builds the webhook handler.
func NewHandler(events EventHandler, signingSecret, approvalEmoji string) *Handler {
	return &Handler{
		events:        events,
		signingSecret: signingSecret,
		approvalEmoji: approvalEmoji,
		seen:          NewProcessedEventSet(0),
	}
}

// ServeHTTP verifies the request came from Slack, answers the
// url_verification handshake, and routes event callbacks. Handler failures
// are logged but still acknowledged with 200: Slack's own retries are
// duplicate deliveries, which the orchestrator's idempotency absorbs, and a
// non-200 would only trigger more of them.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		http.Error(w, "unreadable body", http.StatusBadRequest)
		return
	}

	if err := h.verifySignature(r.Header, body); err != nil {
		slog.Warn("webhook signature verification failed", "error", err)
		http.Error(w, "invalid signature", http.StatusForbidden)
		return
	}

	event, err := slackevents.ParseEvent(json.RawMessage(body), slackevents.OptionNoVerifyToken())
	if err != nil {
		slog.Warn("unparseable event payload", "error", err)
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}

	switch event.Type {
	case slackevents.URLVerification:
		var challenge slackevents.ChallengeResponse
		if err := json.Unmarshal(body, &challenge); err != nil {
			http.Error(w, "bad challenge", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/plain")
		_, _ = w.Write([]byte(challenge.Challenge))

	case slackevents.CallbackEvent:
		h.handleCallback(r.Context(), event, body)
		w.WriteHeader(http.StatusOK)

	default:
		w.WriteHeader(http.StatusOK)
	}
}

func (h *Handler) verifySignature(header http.Header, body []byte) error {
	sv, err := slack.NewSecretsVerifier(header, h.signingSecret)
	if err != nil {
		return err
	}
	if _, err := sv.Write(body); err != nil {
		return err
	}
	return sv.Ensure()
}

// callbackEnvelope pulls the outer event id for best-effort dedup.
type callbackEnvelope struct {
	EventID string `json:"event_id"`
}

func (h *Handler) handleCallback(ctx context.Context, event slackevents.EventsAPIEvent, body []byte) {
	var envelope callbackEnvelope
	_ = json.Unmarshal(body, &envelope)
	if h.seen.Seen(envelope.EventID) {
		slog.Info("skipping already-processed event", "event_id", envelope.EventID)
		return
	}

	switch inner := event.InnerEvent.Data.(type) {
	case *slackevents.AppMentionEvent:
		threadTS := inner.ThreadTimeStamp
		if threadTS == "" {
			threadTS = inner.TimeStamp
		}
		ev := reminder.Event{
			ID:        envelope.EventID,
			Channel:   inner.Channel,
			ThreadTS:  threadTS,
			MessageTS: inner.TimeStamp,
			Text:      inner.Text,
		}
		if err := h.events.HandleMention(ctx, ev); err != nil {
			slog.Error("mention handling failed", "event_id", envelope.EventID, "error", err)
		}

	case *slackevents.ReactionAddedEvent:
		if inner.Reaction != h.approvalEmoji || inner.Item.Type != "message" {
			return
		}
		ev := reminder.Event{
			ID:        envelope.EventID,
			Channel:   inner.Item.Channel,
			ThreadTS:  inner.Item.Timestamp,
			MessageTS: inner.Item.Timestamp,
		}
		if err := h.events.HandleApproval(ctx, ev); err != nil {
			slog.Error("approval handling failed", "event_id", envelope.EventID, "error", err)
		}

	case *slackevents.MessageEvent:
		// Approval spelled out as :emoji: text in a thread reply. Bot and
		// edited messages are ignored.
		if inner.BotID != "" || inner.SubType != "" || inner.ThreadTimeStamp == "" {
			return
		}
		if !strings.Contains(inner.Text, ":"+h.approvalEmoji+":") {
			return
		}
		ev := reminder.Event{
			ID:        envelope.EventID,
			Channel:   inner.Channel,
			ThreadTS:  inner.ThreadTimeStamp,
			MessageTS: inner.TimeStamp,
		}
		if err := h.events.HandleApproval(ctx, ev); err != nil {
			slog.Error("approval handling failed", "event_id", envelope.EventID, "error", err)
		}
	}
}

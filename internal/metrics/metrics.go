// Package metrics exposes Prometheus instrumentation for the nudge service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// EventsTotal counts inbound events by kind and outcome.
	EventsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prnudge_events_total",
		Help: "Inbound events handled, by kind (mention, approval, tick) and outcome.",
	}, []string{"kind", "outcome"})

	// RemindersScheduled counts scheduled-message create calls that succeeded.
	RemindersScheduled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prnudge_reminders_scheduled_total",
		Help: "Reminders successfully scheduled on the chat platform.",
	})

	// RemindersCancelled counts scheduled-message deletions that succeeded.
	RemindersCancelled = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prnudge_reminders_cancelled_total",
		Help: "Pending reminders deleted after an approval.",
	})

	// ChatAPIErrors counts chat platform call failures by operation.
	ChatAPIErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prnudge_chat_api_errors_total",
		Help: "Chat platform API call failures, by operation.",
	}, []string{"operation"})

	serverInfo = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "prnudge_server_info",
		Help: "Static server information.",
	}, []string{"version"})
)

// Init publishes the server-info gauge. Call once at startup.
func Init(version string) {
	serverInfo.WithLabelValues(version).Set(1)
}

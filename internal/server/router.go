package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/prnudge/prnudge/internal/api"
)

// NewRouter assembles the HTTP surface: the Slack events webhook plus
// liveness and metrics endpoints.
func NewRouter(webhook *api.Handler) http.Handler {
	r := chi.NewRouter()

	r.Use(api.RequestID)
	r.Use(api.RequestLogger)
	r.Use(api.LimitBody)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})
	r.Handle("/metrics", promhttp.Handler())
	r.Method(http.MethodPost, "/slack/events", webhook)

	return r
}

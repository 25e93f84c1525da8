// Package scheduler drives the rolling-window top-up tick. The cadence is a
// cron expression so deployments can align the tick with the start of their
// business day.
package scheduler

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// TickFunc runs one top-up pass across the monitored channel.
type TickFunc func(ctx context.Context) error

// tickTimeout bounds one top-up pass; a stuck chat API call must not pile
// ticks on top of each other.
const tickTimeout = 5 * time.Minute

// Ticker fires the top-up on a cron cadence.
type Ticker struct {
	cron *cron.Cron
	tick TickFunc

	stopOnce sync.Once
}

// New parses the cron expression (standard five-field form) and prepares the
// ticker. The tick does not run until Start.
func New(expr string, tick TickFunc) (*Ticker, error) {
	t := &Ticker{
		cron: cron.New(),
		tick: tick,
	}
	if _, err := t.cron.AddFunc(expr, t.run); err != nil {
		return nil, fmt.Errorf("parsing top-up cron %q: %w", expr, err)
	}
	return t, nil
}

func (t *Ticker) run() {
	ctx, cancel := context.WithTimeout(context.Background(), tickTimeout)
	defer cancel()

	start := time.Now()
	if err := t.tick(ctx); err != nil {
		slog.Error("top-up tick failed", "error", err, "duration_ms", time.Since(start).Milliseconds())
		return
	}
	slog.Info("top-up tick done", "duration_ms", time.Since(start).Milliseconds())
}

// Start begins firing ticks in a background goroutine.
func (t *Ticker) Start() {
	t.cron.Start()
}

// Stop halts the cron loop and waits for an in-flight tick to finish.
// Idempotent.
func (t *Ticker) Stop() {
	t.stopOnce.Do(func() {
		<-t.cron.Stop().Done()
	})
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/danielhkuo/tripsync/models"
	"github.com/danielhkuo/tripsync/store"
)

// Sweeper is the background worker that moves sessions along without a
// client request: it starts voting for sessions that reached quorum (when
// AutoStart is set) and enforces voting deadlines.
type Sweeper struct {
	engine    *Engine
	store     store.Store
	interval  time.Duration
	autoStart bool
	logger    *slog.Logger
}

func NewSweeper(engine *Engine, st store.Store, interval time.Duration, autoStart bool, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{engine: engine, store: st, interval: interval, autoStart: autoStart, logger: logger}
}

// SweepStats counts what one pass did.
type SweepStats struct {
	Started          int
	ImplicitDislikes int
	Failed           int
}

// RunOnce performs a single pass. Per-session failures are logged and
// counted; only store listing errors are returned.
func (w *Sweeper) RunOnce(ctx context.Context) (SweepStats, error) {
	var stats SweepStats

	if w.autoStart {
		ready, err := w.store.ListByState(ctx, models.StateAwaitingVotes)
		if err != nil {
			return stats, err
		}
		for _, s := range ready {
			if _, err := w.engine.StartVoting(ctx, s.ID); err != nil {
				stats.Failed++
				w.logger.Error("auto start voting failed", "session_id", s.ID, "error", err)
				continue
			}
			stats.Started++
		}
	}

	voting, err := w.store.ListByState(ctx, models.StateVoting)
	if err != nil {
		return stats, err
	}
	for _, s := range voting {
		if s.VotingDeadline == nil {
			continue
		}
		n, err := w.engine.EnforceDeadline(ctx, s.ID)
		if err != nil {
			stats.Failed++
			w.logger.Error("deadline enforcement failed", "session_id", s.ID, "error", err)
			continue
		}
		stats.ImplicitDislikes += n
	}

	return stats, nil
}

// Run sweeps every interval until ctx is cancelled.
func (w *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	w.logger.Info("sweeper started", "interval", w.interval.String(), "auto_start_voting", w.autoStart)

	for {
		stats, err := w.RunOnce(ctx)
		if err != nil && !errors.Is(err, context.Canceled) {
			w.logger.Error("sweep failed", "error", err)
		} else if stats.Started > 0 || stats.ImplicitDislikes > 0 || stats.Failed > 0 {
			w.logger.Info("sweep finished",
				"started", stats.Started,
				"implicit_dislikes", stats.ImplicitDislikes,
				"failed", stats.Failed,
			)
		}

		select {
		case <-ctx.Done():
			w.logger.Info("sweeper stopped")
			return nil
		case <-ticker.C:
		}
	}
}

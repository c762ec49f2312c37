// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/danielhkuo/tripsync/models"
)

func TestSweeperRunOnce(t *testing.T) {
	f := newFixture(t, Config{VotingTimeout: time.Minute}, threeCandidates...)
	ctx := context.Background()
	f.seed(t, "AUTO01", models.StateAwaitingVotes, 2)
	f.seed(t, "AUTO02", models.StateAwaitingVotes, 1)
	f.seed(t, "COLL01", models.StateCollecting, 1)

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	sweeper := NewSweeper(f.engine, f.store, time.Second, true, logger)

	stats, err := sweeper.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	if stats.Started != 2 || stats.ImplicitDislikes != 0 {
		t.Errorf("first pass stats = %+v, want 2 started", stats)
	}
	for _, id := range []string{"AUTO01", "AUTO02"} {
		if s := f.session(t, id); s.State != models.StateVoting {
			t.Errorf("%s state = %s, want voting", id, s.State)
		}
	}
	if s := f.session(t, "COLL01"); s.State != models.StateCollecting {
		t.Errorf("collecting session must be left alone, got %s", s.State)
	}

	f.vote(t, "AUTO02", "p0", "lisbon-portugal", models.VoteLike)
	f.clock.Advance(time.Minute)

	stats, err = sweeper.RunOnce(ctx)
	if err != nil {
		t.Fatalf("RunOnce() error = %v", err)
	}
	// AUTO01: 2 participants x 3 candidates; AUTO02: 2 remaining
	if stats.ImplicitDislikes != 8 {
		t.Errorf("implicit dislikes = %d, want 8", stats.ImplicitDislikes)
	}
	for _, id := range []string{"AUTO01", "AUTO02"} {
		if s := f.session(t, id); s.State != models.StateResolved {
			t.Errorf("%s state = %s, want resolved", id, s.State)
		}
	}
}

func TestSweeperWithoutAutoStart(t *testing.T) {
	f := newFixture(t, Config{}, threeCandidates...)
	f.seed(t, "MANU01", models.StateAwaitingVotes, 1)

	sweeper := NewSweeper(f.engine, f.store, time.Second, false, slog.New(slog.NewTextHandler(io.Discard, nil)))
	stats, err := sweeper.RunOnce(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Started != 0 {
		t.Errorf("started = %d, want 0 without auto start", stats.Started)
	}
	if s := f.session(t, "MANU01"); s.State != models.StateAwaitingVotes {
		t.Errorf("state = %s, want awaiting_votes", s.State)
	}
}

func TestSweeperRunStopsOnCancel(t *testing.T) {
	f := newFixture(t, Config{}, threeCandidates...)
	sweeper := NewSweeper(f.engine, f.store, time.Millisecond, true, slog.New(slog.NewTextHandler(io.Discard, nil)))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- sweeper.Run(ctx) }()

	time.Sleep(10 * time.Millisecond)
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("Run() did not return after cancel")
	}
}

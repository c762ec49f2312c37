// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package poller

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/danielhkuo/tripsync/models"
)

// scriptedGetter returns one scripted result per call and repeats the last
// one once the script runs out.
type scriptedGetter struct {
	mu     sync.Mutex
	states []models.State
	errs   []error
	calls  int
}

func (g *scriptedGetter) GetSession(ctx context.Context, id string) (*models.Session, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	i := min(g.calls, len(g.states)-1)
	g.calls++
	if g.errs != nil && g.errs[i] != nil {
		return nil, g.errs[i]
	}
	return &models.Session{ID: id, State: g.states[i], Version: int64(i + 1)}, nil
}

func (g *scriptedGetter) Calls() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.calls
}

func TestWatchStopsOnConvergence(t *testing.T) {
	g := &scriptedGetter{states: []models.State{
		models.StateCollecting,
		models.StateCollecting,
		models.StateAwaitingVotes,
		models.StateVoting,
	}}

	var seen []models.State
	for s, err := range Watch(context.Background(), g, "ABCDEF", time.Millisecond, time.Second) {
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		seen = append(seen, s.State)
	}

	want := []models.State{models.StateCollecting, models.StateCollecting, models.StateAwaitingVotes}
	if fmt.Sprint(seen) != fmt.Sprint(want) {
		t.Errorf("snapshots = %v, want %v", seen, want)
	}
	if g.Calls() != 3 {
		t.Errorf("getter called %d times, want 3", g.Calls())
	}
}

func TestWatchAlreadyConverged(t *testing.T) {
	g := &scriptedGetter{states: []models.State{models.StateResolved}}

	n := 0
	for s, err := range Watch(context.Background(), g, "ABCDEF", time.Hour, time.Hour) {
		if err != nil || s.State != models.StateResolved {
			t.Fatalf("got (%v, %v)", s, err)
		}
		n++
	}
	if n != 1 {
		t.Errorf("yielded %d snapshots, want 1", n)
	}
}

func TestWatchTimesOut(t *testing.T) {
	g := &scriptedGetter{states: []models.State{models.StateCollecting}}

	var lastErr error
	snapshots := 0
	for s, err := range Watch(context.Background(), g, "ABCDEF", 5*time.Millisecond, 30*time.Millisecond) {
		if err != nil {
			lastErr = err
			continue
		}
		if s.State != models.StateCollecting {
			t.Fatalf("unexpected state %s", s.State)
		}
		snapshots++
	}

	if !errors.Is(lastErr, ErrWatchTimedOut) {
		t.Fatalf("terminal error = %v, want ErrWatchTimedOut", lastErr)
	}
	if snapshots == 0 {
		t.Error("expected at least one snapshot before timing out")
	}
}

func TestWatchNotFoundEndsSequence(t *testing.T) {
	g := &scriptedGetter{
		states: []models.State{models.StateCollecting},
		errs:   []error{fmt.Errorf("session X: %w", models.ErrNotFound)},
	}

	var errs []error
	for _, err := range Watch(context.Background(), g, "X", time.Millisecond, time.Second) {
		errs = append(errs, err)
	}

	if len(errs) != 1 || !errors.Is(errs[0], models.ErrNotFound) {
		t.Errorf("errors = %v, want a single ErrNotFound", errs)
	}
}

func TestWatchTransientErrorContinues(t *testing.T) {
	boom := errors.New("connection reset")
	g := &scriptedGetter{
		states: []models.State{models.StateCollecting, models.StateCollecting, models.StateAwaitingVotes},
		errs:   []error{nil, boom, nil},
	}

	var sawErr bool
	var final *models.Session
	for s, err := range Watch(context.Background(), g, "ABCDEF", time.Millisecond, time.Second) {
		if errors.Is(err, boom) {
			sawErr = true
			continue
		}
		final = s
	}

	if !sawErr {
		t.Error("transient error should be yielded")
	}
	if final == nil || final.State != models.StateAwaitingVotes {
		t.Errorf("final snapshot = %+v, want awaiting_votes", final)
	}
}

func TestWatchBreakStopsPolling(t *testing.T) {
	g := &scriptedGetter{states: []models.State{models.StateCollecting}}

	for range Watch(context.Background(), g, "ABCDEF", time.Millisecond, time.Second) {
		break
	}
	time.Sleep(20 * time.Millisecond)

	if g.Calls() != 1 {
		t.Errorf("getter called %d times after break, want 1", g.Calls())
	}
}

func TestWatchContextCancel(t *testing.T) {
	g := &scriptedGetter{states: []models.State{models.StateCollecting}}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var lastErr error
	n := 0
	for _, err := range Watch(ctx, g, "ABCDEF", time.Millisecond, time.Minute) {
		n++
		if n == 3 {
			cancel()
		}
		lastErr = err
	}

	if !errors.Is(lastErr, context.Canceled) {
		t.Errorf("terminal error = %v, want context.Canceled", lastErr)
	}
}

func TestWatchRejectsNonPositiveInterval(t *testing.T) {
	tests := []struct {
		name     string
		interval time.Duration
		timeout  time.Duration
	}{
		{"zero interval", 0, time.Second},
		{"negative interval", -time.Millisecond, time.Second},
		{"zero timeout", time.Millisecond, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := &scriptedGetter{states: []models.State{models.StateCollecting}}

			var errs []error
			for s, err := range Watch(context.Background(), g, "ABCDEF", tt.interval, tt.timeout) {
				if s != nil {
					t.Errorf("unexpected snapshot %+v", s)
				}
				errs = append(errs, err)
			}

			if len(errs) != 1 || !errors.Is(errs[0], models.ErrInvalidArgument) {
				t.Errorf("Watch() errors = %v, want a single ErrInvalidArgument", errs)
			}
			if g.Calls() != 0 {
				t.Errorf("getter called %d times, want 0", g.Calls())
			}
		})
	}
}

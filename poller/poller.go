// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package poller watches a session by repeated reads until it leaves the
// collecting state. Observers are independent: nothing is registered on the
// server, so a client that disconnects simply stops polling.
package poller

import (
	"context"
	"errors"
	"fmt"
	"iter"
	"time"

	"github.com/danielhkuo/tripsync/models"
)

// ErrWatchTimedOut is the terminal value of a watch whose timeout elapsed
// before the stop condition was observed.
var ErrWatchTimedOut = errors.New("watch timed out")

// SessionGetter reads a session snapshot. *coordinator.Coordinator
// implements it.
type SessionGetter interface {
	GetSession(ctx context.Context, sessionID string) (*models.Session, error)
}

// Converged reports whether a session has left the collecting state.
func Converged(s *models.Session) bool {
	return s.State != models.StateCollecting
}

// Resolved reports whether voting has finished.
func Resolved(s *models.Session) bool {
	return s.State == models.StateResolved
}

// Watch polls sessionID every interval and yields each snapshot. The
// sequence ends after the first snapshot that is no longer collecting.
func Watch(ctx context.Context, getter SessionGetter, sessionID string, interval, timeout time.Duration) iter.Seq2[*models.Session, error] {
	return WatchUntil(ctx, getter, sessionID, interval, timeout, Converged)
}

// WatchUntil is Watch with a caller supplied stop condition.
//
// Errors from the getter are yielded with a nil snapshot and polling
// continues, except models.ErrNotFound which ends the sequence. When timeout
// elapses the final element is (nil, ErrWatchTimedOut). If ctx is cancelled
// the final element carries ctx's error. Breaking out of the range loop
// stops polling immediately. A non-positive interval or timeout yields a
// single models.ErrInvalidArgument and ends the sequence.
func WatchUntil(ctx context.Context, getter SessionGetter, sessionID string, interval, timeout time.Duration, done func(*models.Session) bool) iter.Seq2[*models.Session, error] {
	return func(yield func(*models.Session, error) bool) {
		if interval <= 0 || timeout <= 0 {
			yield(nil, fmt.Errorf("%w: poll interval and timeout must be positive", models.ErrInvalidArgument))
			return
		}

		ctx, cancel := context.WithTimeoutCause(ctx, timeout, ErrWatchTimedOut)
		defer cancel()

		ticker := time.NewTicker(interval)
		defer ticker.Stop()

		for {
			s, err := getter.GetSession(ctx, sessionID)
			switch {
			case ctx.Err() != nil:
				// fall through to the terminal select below
			case errors.Is(err, models.ErrNotFound):
				yield(nil, err)
				return
			case err != nil:
				if !yield(nil, err) {
					return
				}
			default:
				if !yield(s, nil) || done(s) {
					return
				}
			}

			select {
			case <-ctx.Done():
				yield(nil, context.Cause(ctx))
				return
			case <-ticker.C:
			}
		}
	}
}

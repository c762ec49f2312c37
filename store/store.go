// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/danielhkuo/tripsync/models"
)

var (
	ErrAlreadyExists   = errors.New("session already exists")
	ErrVersionConflict = errors.New("session version conflict")
)

// SkipWrite can be returned by a Patch function to leave the stored session
// untouched. Patch then returns the unmodified snapshot and a nil error.
var SkipWrite = errors.New("skip write")

// MaxPatchAttempts bounds how often Patch retries after a version conflict.
const MaxPatchAttempts = 5

// Store is durable keyed storage for sessions. Every method works on copies:
// callers never share memory with stored state.
type Store interface {
	// Create stores a new session at version 1. It fails with
	// ErrAlreadyExists if the id is taken.
	Create(ctx context.Context, s *models.Session) error

	// Get returns a snapshot, or an error wrapping models.ErrNotFound.
	Get(ctx context.Context, id string) (*models.Session, error)

	// Put replaces the session if s.Version matches the stored version and
	// bumps s.Version. A stale version fails with ErrVersionConflict.
	Put(ctx context.Context, s *models.Session) error

	// ListByState returns snapshots of every session in the given state,
	// ordered by id.
	ListByState(ctx context.Context, state models.State) ([]*models.Session, error)
}

// Patch reads the session, applies fn and writes the result back with
// optimistic concurrency, retrying from a fresh read on version conflicts.
// fn may run more than once and must only mutate the session it is given.
func Patch(ctx context.Context, st Store, id string, fn func(*models.Session) error) (*models.Session, error) {
	for attempt := 1; ; attempt++ {
		s, err := st.Get(ctx, id)
		if err != nil {
			return nil, err
		}

		if err := fn(s); err != nil {
			if errors.Is(err, SkipWrite) {
				return s, nil
			}
			return nil, err
		}

		err = st.Put(ctx, s)
		if err == nil {
			return s, nil
		}
		if !errors.Is(err, ErrVersionConflict) || attempt >= MaxPatchAttempts {
			return nil, err
		}
		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}
}

func notFound(id string) error {
	return fmt.Errorf("session %s: %w", id, models.ErrNotFound)
}

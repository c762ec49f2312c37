// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package coordinator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/tripsync/auth"
	"github.com/danielhkuo/tripsync/models"
	"github.com/danielhkuo/tripsync/sessionlock"
	"github.com/danielhkuo/tripsync/store"
)

// maxCreateAttempts bounds retries when a generated group code is taken.
const maxCreateAttempts = 8

type Config struct {
	// StrictCompletion rejects MarkComplete while any step is missing.
	StrictCompletion bool

	// Test hooks; nil means the real implementation.
	Now          func() time.Time
	NewGroupCode func() (string, error)
}

// Coordinator owns the session lifecycle up to quorum. It is the only
// writer of participant steps and completion flags.
type Coordinator struct {
	store  store.Store
	locks  *sessionlock.Locks
	cfg    Config
	logger *slog.Logger
}

func New(st store.Store, locks *sessionlock.Locks, cfg Config, logger *slog.Logger) *Coordinator {
	if logger == nil {
		logger = slog.Default()
	}
	if locks == nil {
		locks = sessionlock.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.NewGroupCode == nil {
		cfg.NewGroupCode = auth.GenerateGroupCode
	}
	return &Coordinator{store: st, locks: locks, cfg: cfg, logger: logger}
}

// CreateSession starts a new group session and returns its group code.
func (c *Coordinator) CreateSession(ctx context.Context, expectedCount int) (string, error) {
	if expectedCount < 1 {
		return "", fmt.Errorf("%w: expected participant count must be at least 1, got %d", models.ErrInvalidArgument, expectedCount)
	}

	for attempt := 1; attempt <= maxCreateAttempts; attempt++ {
		code, err := c.cfg.NewGroupCode()
		if err != nil {
			return "", err
		}

		session := &models.Session{
			ID:                       code,
			ExpectedParticipantCount: expectedCount,
			Participants:             []*models.Participant{},
			CreatedAt:                c.cfg.Now().UTC(),
			State:                    models.StateCollecting,
		}
		err = c.store.Create(ctx, session)
		if errors.Is(err, store.ErrAlreadyExists) {
			c.logger.Warn("group code collision", "session_id", code, "attempt", attempt)
			continue
		}
		if err != nil {
			return "", err
		}

		c.logger.Info("session created", "session_id", code, "expected_count", expectedCount)
		return code, nil
	}

	return "", fmt.Errorf("failed to allocate a unique group code after %d attempts", maxCreateAttempts)
}

// AdmitParticipant adds a participant with no steps submitted.
func (c *Coordinator) AdmitParticipant(ctx context.Context, sessionID string) (string, error) {
	unlock := c.locks.Lock(sessionID)
	defer unlock()

	participantID := auth.NewParticipantID()
	session, err := store.Patch(ctx, c.store, sessionID, func(s *models.Session) error {
		if s.IsFull() || s.State != models.StateCollecting {
			return fmt.Errorf("%w: %d of %d participants already joined", models.ErrSessionFull, len(s.Participants), s.ExpectedParticipantCount)
		}
		s.Participants = append(s.Participants, models.NewParticipant(participantID, c.cfg.Now().UTC()))
		return nil
	})
	if err != nil {
		return "", err
	}

	c.logger.Info("participant joined",
		"session_id", sessionID,
		"participant_id", participantID,
		"joined", len(session.Participants),
		"expected", session.ExpectedParticipantCount,
	)
	return participantID, nil
}

// UpdateStep upserts one step value. Completed participants are frozen.
func (c *Coordinator) UpdateStep(ctx context.Context, sessionID, participantID, step string, value json.RawMessage) error {
	if !models.IsValidStep(step) {
		return fmt.Errorf("%w: %q", models.ErrInvalidStep, step)
	}
	value = bytes.TrimSpace(value)
	if len(value) == 0 || bytes.Equal(value, []byte("null")) {
		return fmt.Errorf("%w: value for step %s is required", models.ErrInvalidArgument, step)
	}
	if !json.Valid(value) {
		return fmt.Errorf("%w: value for step %s is not valid JSON", models.ErrInvalidArgument, step)
	}

	unlock := c.locks.Lock(sessionID)
	defer unlock()

	_, err := store.Patch(ctx, c.store, sessionID, func(s *models.Session) error {
		p, err := participant(s, participantID)
		if err != nil {
			return err
		}
		if p.Completed {
			return fmt.Errorf("%w: steps are frozen once completion is marked", models.ErrAlreadyCompleted)
		}
		p.Steps[step] = bytes.Clone(value)
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("step submitted", "session_id", sessionID, "participant_id", participantID, "step", step)
	return nil
}

// MarkComplete flags a participant as done. Marking twice is a no-op. When
// the group is fully admitted and everyone is complete, the session moves to
// awaiting_votes in the same write.
func (c *Coordinator) MarkComplete(ctx context.Context, sessionID, participantID string) error {
	unlock := c.locks.Lock(sessionID)
	defer unlock()

	var quorum bool
	session, err := store.Patch(ctx, c.store, sessionID, func(s *models.Session) error {
		quorum = false
		p, err := participant(s, participantID)
		if err != nil {
			return err
		}
		if p.Completed {
			return store.SkipWrite
		}
		if c.cfg.StrictCompletion {
			if missing := p.MissingSteps(); len(missing) > 0 {
				return &models.IncompleteStepsError{Missing: missing}
			}
		}

		now := c.cfg.Now().UTC()
		p.Completed = true
		p.CompletedAt = &now

		if s.State == models.StateCollecting && s.QuorumReached() {
			if err := s.Advance(models.StateAwaitingVotes); err != nil {
				return err
			}
			s.AwaitingVotesAt = &now
			quorum = true
		}
		return nil
	})
	if err != nil {
		return err
	}

	c.logger.Info("participant completed",
		"session_id", sessionID,
		"participant_id", participantID,
		"completed", session.CompletedCount(),
		"expected", session.ExpectedParticipantCount,
	)
	if quorum {
		c.logger.Info("quorum reached", "session_id", sessionID, "state", session.State)
	}
	return nil
}

// GetSession returns a read-only snapshot.
func (c *Coordinator) GetSession(ctx context.Context, sessionID string) (*models.Session, error) {
	unlock := c.locks.RLock(sessionID)
	defer unlock()

	return c.store.Get(ctx, sessionID)
}

func participant(s *models.Session, participantID string) (*models.Participant, error) {
	p := s.Participant(participantID)
	if p == nil {
		return nil, fmt.Errorf("participant %s in session %s: %w", participantID, s.ID, models.ErrNotFound)
	}
	return p, nil
}

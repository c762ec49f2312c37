// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package voting

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/danielhkuo/tripsync/models"
	"github.com/danielhkuo/tripsync/planner"
	"github.com/danielhkuo/tripsync/sessionlock"
	"github.com/danielhkuo/tripsync/store"
)

type Config struct {
	// VotingTimeout is how long participants have to finish voting once
	// voting starts. Zero disables the deadline.
	VotingTimeout time.Duration

	// AllowRevote lets a participant change a ballot for a candidate they
	// already passed. The cursor never moves back.
	AllowRevote bool

	Now func() time.Time
}

// Engine runs the per-participant voting state machine. It is the only
// writer of ballots and cursors.
type Engine struct {
	store    store.Store
	locks    *sessionlock.Locks
	producer planner.Producer
	cfg      Config
	logger   *slog.Logger
}

// VoteResult is the outcome of CastVote.
type VoteResult struct {
	// NextCandidateID is nil once the participant has voted on every candidate.
	NextCandidateID *string
	// ForcedClose is set when the deadline had passed and the participant's
	// remaining candidates were recorded as implicit dislikes instead.
	ForcedClose bool
	// Resolved is set when this call finished voting for the whole group.
	Resolved bool
}

func New(st store.Store, locks *sessionlock.Locks, producer planner.Producer, cfg Config, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	if locks == nil {
		locks = sessionlock.New()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	return &Engine{store: st, locks: locks, producer: producer, cfg: cfg, logger: logger}
}

// StartVoting fixes the candidate list and moves the session from
// awaiting_votes to voting. The producer is called once, under the session
// lock. Calling StartVoting on a session that is already voting or resolved
// returns the fixed list.
func (e *Engine) StartVoting(ctx context.Context, sessionID string) ([]models.Candidate, error) {
	unlock := e.locks.Lock(sessionID)
	defer unlock()

	snapshot, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	switch snapshot.State {
	case models.StateVoting, models.StateResolved:
		return snapshot.Candidates, nil
	case models.StateCollecting:
		return nil, fmt.Errorf("%w: %d of %d participants completed",
			models.ErrSessionNotReady, snapshot.CompletedCount(), snapshot.ExpectedParticipantCount)
	}

	candidates, err := e.producer.GenerateCandidates(ctx, snapshot)
	if err != nil {
		if !errors.Is(err, models.ErrUpstream) && ctx.Err() == nil {
			err = fmt.Errorf("%w: %v", models.ErrUpstream, err)
		}
		e.logger.Error("candidate generation failed", "session_id", sessionID, "error", err)
		return nil, err
	}
	if len(candidates) == 0 {
		return nil, models.ErrNoCandidates
	}
	if err := planner.Validate(candidates); err != nil {
		return nil, err
	}

	session, err := store.Patch(ctx, e.store, sessionID, func(s *models.Session) error {
		if err := s.Advance(models.StateVoting); err != nil {
			return err
		}
		now := e.cfg.Now().UTC()
		s.Candidates = candidates
		s.VotingStartedAt = &now
		s.VotingDeadline = nil
		if e.cfg.VotingTimeout > 0 {
			deadline := now.Add(e.cfg.VotingTimeout)
			s.VotingDeadline = &deadline
		}
		for _, p := range s.Participants {
			p.Cursor = 0
			p.ForcedClose = false
			p.Ballots = make(map[string]models.Ballot, len(candidates))
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	e.logger.Info("voting started",
		"session_id", sessionID,
		"candidates", len(session.Candidates),
		"deadline", session.VotingDeadline,
	)
	return session.Candidates, nil
}

// Candidates returns the fixed candidate list of a session that started
// voting.
func (e *Engine) Candidates(ctx context.Context, sessionID string) ([]models.Candidate, error) {
	unlock := e.locks.RLock(sessionID)
	defer unlock()

	s, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if s.State.Rank() < models.StateVoting.Rank() {
		return nil, fmt.Errorf("%w: state is %s", models.ErrSessionNotVoting, s.State)
	}
	return s.Candidates, nil
}

// CastVote records vote for the participant's current candidate and advances
// their cursor. After the voting deadline the vote is discarded and every
// participant's remaining candidates are closed as implicit dislikes.
func (e *Engine) CastVote(ctx context.Context, sessionID, participantID, candidateID string, vote models.Vote) (VoteResult, error) {
	if !vote.Valid() {
		return VoteResult{}, fmt.Errorf("%w: vote must be %q or %q, got %q",
			models.ErrInvalidArgument, models.VoteLike, models.VoteDislike, vote)
	}

	unlock := e.locks.Lock(sessionID)
	defer unlock()

	var result VoteResult
	var forced int
	_, err := store.Patch(ctx, e.store, sessionID, func(s *models.Session) error {
		result = VoteResult{}
		forced = 0

		if s.State != models.StateVoting {
			return fmt.Errorf("%w: state is %s", models.ErrSessionNotVoting, s.State)
		}
		p := s.Participant(participantID)
		if p == nil {
			return fmt.Errorf("participant %s in session %s: %w", participantID, sessionID, models.ErrNotFound)
		}
		now := e.cfg.Now().UTC()

		if deadlinePassed(s, now) {
			forced = closeRemaining(s, now)
			result.ForcedClose = p.ForcedClose
			result.Resolved = resolveIfComplete(s, now)
			if forced == 0 && !result.Resolved {
				return store.SkipWrite
			}
			return nil
		}

		n := len(s.Candidates)
		idx := s.CandidateIndex(candidateID)
		switch {
		case p.Cursor < n && idx == p.Cursor:
			record(p, sessionID, candidateID, vote, now, false)
			p.Cursor++
		case idx >= 0 && idx < p.Cursor && e.cfg.AllowRevote:
			record(p, sessionID, candidateID, vote, now, false)
		default:
			return outOfSequence(s, p, candidateID)
		}

		result.NextCandidateID = nextCandidate(s, p)
		result.Resolved = resolveIfComplete(s, now)
		return nil
	})
	if err != nil {
		return VoteResult{}, err
	}

	if forced > 0 {
		e.logger.Warn("voting deadline passed, closed remaining ballots",
			"session_id", sessionID, "participant_id", participantID, "implicit_dislikes", forced)
	} else {
		e.logger.Info("vote cast",
			"session_id", sessionID, "participant_id", participantID,
			"candidate_id", candidateID, "vote", vote)
	}
	if result.Resolved {
		e.logger.Info("voting resolved", "session_id", sessionID)
	}
	return result, nil
}

// IsGroupVotingComplete reports whether every participant has voted on every
// candidate.
func (e *Engine) IsGroupVotingComplete(ctx context.Context, sessionID string) (bool, error) {
	unlock := e.locks.RLock(sessionID)
	defer unlock()

	s, err := e.store.Get(ctx, sessionID)
	if err != nil {
		return false, err
	}
	switch s.State {
	case models.StateResolved:
		return true, nil
	case models.StateVoting:
		return s.VotingComplete(), nil
	}
	return false, nil
}

// EnforceDeadline force-closes every unfinished participant of a voting
// session whose deadline has passed and resolves it. It returns the number of
// implicit dislikes recorded.
func (e *Engine) EnforceDeadline(ctx context.Context, sessionID string) (int, error) {
	unlock := e.locks.Lock(sessionID)
	defer unlock()

	var forced int
	var resolved bool
	_, err := store.Patch(ctx, e.store, sessionID, func(s *models.Session) error {
		forced, resolved = 0, false
		now := e.cfg.Now().UTC()
		if s.State != models.StateVoting || !deadlinePassed(s, now) {
			return store.SkipWrite
		}
		forced = closeRemaining(s, now)
		resolved = resolveIfComplete(s, now)
		if forced == 0 && !resolved {
			return store.SkipWrite
		}
		return nil
	})
	if err != nil {
		return 0, err
	}

	if forced > 0 || resolved {
		e.logger.Warn("voting deadline enforced",
			"session_id", sessionID, "implicit_dislikes", forced, "resolved", resolved)
	}
	return forced, nil
}

func deadlinePassed(s *models.Session, now time.Time) bool {
	return s.VotingDeadline != nil && !now.Before(*s.VotingDeadline)
}

func record(p *models.Participant, sessionID, candidateID string, vote models.Vote, now time.Time, implicit bool) {
	if p.Ballots == nil {
		p.Ballots = make(map[string]models.Ballot)
	}
	p.Ballots[candidateID] = models.Ballot{
		SessionID:     sessionID,
		ParticipantID: p.ID,
		CandidateID:   candidateID,
		Vote:          vote,
		CastAt:        now,
		Implicit:      implicit,
	}
}

// closeRemaining records an implicit dislike for every candidate at or after
// each participant's cursor.
func closeRemaining(s *models.Session, now time.Time) int {
	n := len(s.Candidates)
	closed := 0
	for _, p := range s.Participants {
		if p.Cursor >= n {
			continue
		}
		for i := p.Cursor; i < n; i++ {
			record(p, s.ID, s.Candidates[i].ID, models.VoteDislike, now, true)
			closed++
		}
		p.Cursor = n
		p.ForcedClose = true
	}
	return closed
}

func resolveIfComplete(s *models.Session, now time.Time) bool {
	if s.State != models.StateVoting || !s.VotingComplete() {
		return false
	}
	if err := s.Advance(models.StateResolved); err != nil {
		return false
	}
	s.ResolvedAt = &now
	return true
}

func nextCandidate(s *models.Session, p *models.Participant) *string {
	if p.Cursor >= len(s.Candidates) {
		return nil
	}
	id := s.Candidates[p.Cursor].ID
	return &id
}

func outOfSequence(s *models.Session, p *models.Participant, got string) error {
	return &models.OutOfSequenceError{Expected: nextCandidate(s, p), Got: got}
}

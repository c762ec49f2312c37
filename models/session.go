// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"bytes"
	"encoding/json"
	"fmt"
	"maps"
	"time"
)

// Participant returns the participant with the given id, or nil.
func (s *Session) Participant(id string) *Participant {
	for _, p := range s.Participants {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// CompletedCount counts participants that marked their steps complete.
func (s *Session) CompletedCount() int {
	n := 0
	for _, p := range s.Participants {
		if p.Completed {
			n++
		}
	}
	return n
}

// IsFull reports whether every expected participant has joined.
func (s *Session) IsFull() bool {
	return len(s.Participants) >= s.ExpectedParticipantCount
}

// QuorumReached requires full admission and every admitted participant
// completed. A partially joined group never reaches quorum.
func (s *Session) QuorumReached() bool {
	return len(s.Participants) == s.ExpectedParticipantCount &&
		s.CompletedCount() == len(s.Participants)
}

// VotingComplete reports whether every participant's cursor reached the end
// of the candidate list.
func (s *Session) VotingComplete() bool {
	n := len(s.Candidates)
	for _, p := range s.Participants {
		if p.Cursor < n {
			return false
		}
	}
	return true
}

// Advance moves the session to a later state. Regressions and no-op moves
// are rejected.
func (s *Session) Advance(to State) error {
	if to.Rank() == 0 || to.Rank() <= s.State.Rank() {
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.State, to)
	}
	s.State = to
	return nil
}

// CandidateIndex returns the list position of a candidate, or -1.
func (s *Session) CandidateIndex(id string) int {
	for i, c := range s.Candidates {
		if c.ID == id {
			return i
		}
	}
	return -1
}

// MissingSteps lists required steps without a submitted value, in wizard order.
func (p *Participant) MissingSteps() []string {
	var missing []string
	for _, step := range RequiredSteps {
		if _, ok := p.Steps[step]; !ok {
			missing = append(missing, step)
		}
	}
	return missing
}

// SubmittedSteps lists submitted steps in wizard order.
func (p *Participant) SubmittedSteps() []string {
	submitted := []string{}
	for _, step := range RequiredSteps {
		if _, ok := p.Steps[step]; ok {
			submitted = append(submitted, step)
		}
	}
	return submitted
}

// NewParticipant returns a participant with no steps submitted.
func NewParticipant(id string, joinedAt time.Time) *Participant {
	return &Participant{
		ID:       id,
		Steps:    make(map[string]json.RawMessage),
		JoinedAt: joinedAt,
	}
}

// Clone returns a deep copy so snapshots never alias stored state.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	c.Participants = make([]*Participant, len(s.Participants))
	for i, p := range s.Participants {
		c.Participants[i] = p.Clone()
	}
	if s.Candidates != nil {
		c.Candidates = make([]Candidate, len(s.Candidates))
		for i, cand := range s.Candidates {
			cand.Metadata = bytes.Clone(cand.Metadata)
			c.Candidates[i] = cand
		}
	}
	c.AwaitingVotesAt = cloneTime(s.AwaitingVotesAt)
	c.VotingStartedAt = cloneTime(s.VotingStartedAt)
	c.VotingDeadline = cloneTime(s.VotingDeadline)
	c.ResolvedAt = cloneTime(s.ResolvedAt)
	return &c
}

func (p *Participant) Clone() *Participant {
	c := *p
	c.Steps = make(map[string]json.RawMessage, len(p.Steps))
	for k, v := range p.Steps {
		c.Steps[k] = bytes.Clone(v)
	}
	if p.Ballots != nil {
		c.Ballots = maps.Clone(p.Ballots)
	}
	c.CompletedAt = cloneTime(p.CompletedAt)
	return &c
}

// BallotLedger returns every ballot in the session ordered by candidate
// position, then participant join order.
func (s *Session) BallotLedger() []Ballot {
	var ledger []Ballot
	for _, c := range s.Candidates {
		for _, p := range s.Participants {
			if b, ok := p.Ballots[c.ID]; ok {
				ledger = append(ledger, b)
			}
		}
	}
	return ledger
}

// CandidateIDs returns the ids of the fixed candidate list in order.
func (s *Session) CandidateIDs() []string {
	ids := make([]string, 0, len(s.Candidates))
	for _, c := range s.Candidates {
		ids = append(ids, c.ID)
	}
	return ids
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package coordinator

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/dustin/go-humanize/english"

	"github.com/danielhkuo/tripsync/models"
)

// Status builds the waiting-room view of a session.
func (c *Coordinator) Status(ctx context.Context, sessionID string) (models.SessionStatus, error) {
	s, err := c.GetSession(ctx, sessionID)
	if err != nil {
		return models.SessionStatus{}, err
	}
	return BuildStatus(s, c.cfg.Now()), nil
}

// BuildStatus summarises a snapshot for display. now is used for relative
// deadline wording.
func BuildStatus(s *models.Session, now time.Time) models.SessionStatus {
	status := models.SessionStatus{
		SessionID:      s.ID,
		State:          s.State,
		CompletedCount: s.CompletedCount(),
		TotalCount:     len(s.Participants),
		ExpectedCount:  s.ExpectedParticipantCount,
		Participants:   make([]models.ParticipantStatus, 0, len(s.Participants)),
		VotingDeadline: s.VotingDeadline,
	}

	n := len(s.Candidates)
	votingDone := 0
	for _, p := range s.Participants {
		ps := models.ParticipantStatus{
			ParticipantID:  p.ID,
			Completed:      p.Completed,
			SubmittedSteps: p.SubmittedSteps(),
			VotesCast:      len(p.Ballots),
			VotingDone:     s.State.Rank() >= models.StateVoting.Rank() && p.Cursor >= n,
		}
		var origin string
		if raw, ok := p.Steps[models.StepOrigin]; ok && json.Unmarshal(raw, &origin) == nil {
			ps.Origin = origin
		}
		if ps.VotingDone {
			votingDone++
		}
		status.Participants = append(status.Participants, ps)
	}

	status.Message = statusMessage(s, votingDone, now)
	return status
}

// statusMessage tells the reader whether they are waiting on others or
// have something left to do.
func statusMessage(s *models.Session, votingDone int, now time.Time) string {
	switch s.State {
	case models.StateCollecting:
		if missing := s.ExpectedParticipantCount - len(s.Participants); missing > 0 {
			return fmt.Sprintf("Waiting for %d more %s to join. Share the code %s.",
				missing, english.PluralWord(missing, "participant", ""), s.ID)
		}
		pending := len(s.Participants) - s.CompletedCount()
		return fmt.Sprintf("Waiting for %s to finish their trip preferences.",
			english.Plural(pending, "participant", ""))
	case models.StateAwaitingVotes:
		return "Everyone is ready. Voting on destinations starts shortly."
	case models.StateVoting:
		msg := fmt.Sprintf("Voting in progress: %d of %d %s done.",
			votingDone, len(s.Participants), english.PluralWord(len(s.Participants), "participant", ""))
		if s.VotingDeadline != nil {
			msg += " Voting closes " + humanize.RelTime(*s.VotingDeadline, now, "ago", "from now") + "."
		}
		return msg
	case models.StateResolved:
		return "Voting has finished. Results are ready."
	}
	return ""
}

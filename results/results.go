// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package results ranks a resolved session's candidates from its ballots.
package results

import (
	"cmp"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"log/slog"
	"slices"
	"strconv"

	"github.com/dustin/go-humanize"

	"github.com/danielhkuo/tripsync/models"
	"github.com/danielhkuo/tripsync/planner"
	"github.com/danielhkuo/tripsync/sessionlock"
	"github.com/danielhkuo/tripsync/store"
)

// Price bands for the total flight cost, in euros.
const (
	budgetBelow   = 300
	moderateBelow = 700
)

type Aggregator struct {
	store  store.Store
	locks  *sessionlock.Locks
	logger *slog.Logger
}

func New(st store.Store, locks *sessionlock.Locks, logger *slog.Logger) *Aggregator {
	if logger == nil {
		logger = slog.Default()
	}
	if locks == nil {
		locks = sessionlock.New()
	}
	return &Aggregator{store: st, locks: locks, logger: logger}
}

// Aggregate returns the ranked candidates of a resolved session.
func (a *Aggregator) Aggregate(ctx context.Context, sessionID string) (models.RankedResult, error) {
	unlock := a.locks.RLock(sessionID)
	s, err := a.store.Get(ctx, sessionID)
	unlock()
	if err != nil {
		return models.RankedResult{}, err
	}
	if s.State != models.StateResolved {
		return models.RankedResult{}, fmt.Errorf("%w: state is %s", models.ErrSessionNotResolved, s.State)
	}

	result := Rank(s)
	a.logger.Info("results aggregated",
		"session_id", sessionID,
		"candidates", len(result.Rankings),
		"ballots", result.BallotCount,
		"inputs_hash", result.InputsHash,
	)
	return result, nil
}

// Rank scores every candidate as likes minus dislikes and orders them by
// score descending, then total votes descending, then list position
// ascending. The output depends only on the candidate list and ballots.
func Rank(s *models.Session) models.RankedResult {
	rankings := make([]models.RankedCandidate, len(s.Candidates))
	for i, c := range s.Candidates {
		rankings[i] = models.RankedCandidate{Position: i, Candidate: c}
		enrich(&rankings[i])
	}

	ledger := s.BallotLedger()
	for _, b := range ledger {
		i := s.CandidateIndex(b.CandidateID)
		if i < 0 {
			continue
		}
		switch b.Vote {
		case models.VoteLike:
			rankings[i].LikeCount++
		case models.VoteDislike:
			rankings[i].DislikeCount++
		}
	}
	for i := range rankings {
		rankings[i].Score = rankings[i].LikeCount - rankings[i].DislikeCount
	}

	slices.SortStableFunc(rankings, func(a, b models.RankedCandidate) int {
		if c := cmp.Compare(b.Score, a.Score); c != 0 {
			return c
		}
		if c := cmp.Compare(b.LikeCount+b.DislikeCount, a.LikeCount+a.DislikeCount); c != 0 {
			return c
		}
		return cmp.Compare(a.Position, b.Position)
	})
	for i := range rankings {
		rankings[i].Rank = i + 1
	}

	return models.RankedResult{
		SessionID:        s.ID,
		ResolvedAt:       s.ResolvedAt,
		ParticipantCount: len(s.Participants),
		BallotCount:      len(ledger),
		Rankings:         rankings,
		InputsHash:       inputsHash(s.CandidateIDs(), ledger),
	}
}

// enrich fills the display fields from plan-trip metadata when present.
func enrich(rc *models.RankedCandidate) {
	plan, ok := planner.ParsePlan(rc.Candidate.Metadata)
	if !ok {
		return
	}

	rc.Highlights = plan.Destination.TopHighlights
	rc.PriceIndicator = PriceIndicator(plan.Totals.TotalFlightCost)
	if cost := plan.Totals.TotalFlightCost; cost != nil && *cost > 0 {
		v := *cost
		rc.TotalCost = &v
		rc.CostDisplay = FormatCost(v)
	}

	if f, ok := plan.CheapestFlight(); ok {
		rc.CheapestFlight = &models.Flight{
			Airline:          f.Airline,
			FlightNo:         f.FlightNo,
			DepartureAirport: f.DepartureAirport,
			OutboundDate:     f.Outbound.Date,
			OutboundTime:     f.Outbound.Time,
			OutboundPrice:    *f.Outbound.Price,
			BookingLink:      f.Outbound.BookingLink,
		}
	}
}

// PriceIndicator buckets a total flight cost: "€" under 300, "€€" under 700,
// "€€€" otherwise, "?" when unknown.
func PriceIndicator(cost *float64) string {
	switch {
	case cost == nil || *cost <= 0:
		return "?"
	case *cost < budgetBelow:
		return "€"
	case *cost < moderateBelow:
		return "€€"
	default:
		return "€€€"
	}
}

// FormatCost renders a euro amount with thousands separators, e.g. "€1,240.5".
func FormatCost(v float64) string {
	return "€" + humanize.CommafWithDigits(v, 2)
}

// inputsHash fingerprints everything ranking depends on so clients can
// check two result fetches were computed from the same inputs.
func inputsHash(candidateIDs []string, ledger []models.Ballot) string {
	h := sha256.New()
	for _, id := range candidateIDs {
		h.Write([]byte("c|" + id + "\n"))
	}
	for _, b := range ledger {
		h.Write([]byte("b|" + b.CandidateID + "|" + b.ParticipantID + "|" + string(b.Vote) + "|" + strconv.FormatBool(b.Implicit) + "\n"))
	}
	return hex.EncodeToString(h.Sum(nil))
}

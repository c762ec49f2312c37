// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

// Package planner produces the destination candidates a group votes on.
package planner

import (
	"context"
	"fmt"
	"slices"

	"github.com/danielhkuo/tripsync/models"
)

// Producer generates the ordered candidate list for a session that reached
// quorum. The voting engine calls it exactly once per session.
type Producer interface {
	GenerateCandidates(ctx context.Context, session *models.Session) ([]models.Candidate, error)
}

// ProducerFunc adapts a function to Producer.
type ProducerFunc func(ctx context.Context, session *models.Session) ([]models.Candidate, error)

func (f ProducerFunc) GenerateCandidates(ctx context.Context, session *models.Session) ([]models.Candidate, error) {
	return f(ctx, session)
}

// StaticProducer returns the same candidates for every session.
type StaticProducer struct {
	Candidates []models.Candidate
}

func NewStaticProducer(candidates ...models.Candidate) *StaticProducer {
	return &StaticProducer{Candidates: candidates}
}

func (p *StaticProducer) GenerateCandidates(ctx context.Context, _ *models.Session) ([]models.Candidate, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return slices.Clone(p.Candidates), nil
}

// Validate checks that a candidate list can be fixed for voting: non-empty
// ids, no duplicates.
func Validate(candidates []models.Candidate) error {
	seen := make(map[string]struct{}, len(candidates))
	for i, c := range candidates {
		if c.ID == "" {
			return fmt.Errorf("%w: candidate %d has an empty id", models.ErrInvalidArgument, i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("%w: duplicate candidate id %q", models.ErrInvalidArgument, c.ID)
		}
		seen[c.ID] = struct{}{}
	}
	return nil
}

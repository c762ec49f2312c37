// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/danielhkuo/tripsync/models"
)

// maxResponseBytes caps how much of a plan-trip response is read.
const maxResponseBytes = 4 << 20

// HTTPProducer asks the plan-trip service for destination plans.
//
// Request:
//
//	POST {URL} {"group_id": "<session id>"}
//
// Response:
//
//	{"plans": [{"destination": {...}, "flights": [...], "totals": {...}}]}
//
// Each plan becomes one candidate with id city-country and the plan JSON as
// metadata. Plans without a city are skipped.
type HTTPProducer struct {
	URL    string
	Client *http.Client
	Logger *slog.Logger
}

func NewHTTPProducer(url string, timeout time.Duration, logger *slog.Logger) *HTTPProducer {
	if logger == nil {
		logger = slog.Default()
	}
	return &HTTPProducer{
		URL:    url,
		Client: &http.Client{Timeout: timeout},
		Logger: logger,
	}
}

func (p *HTTPProducer) GenerateCandidates(ctx context.Context, session *models.Session) ([]models.Candidate, error) {
	body, err := json.Marshal(map[string]string{"group_id": session.ID})
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.URL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := p.Client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", models.ErrUpstream, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return nil, fmt.Errorf("%w: reading plan-trip response: %v", models.ErrUpstream, err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: plan-trip returned %d: %s", models.ErrUpstream, resp.StatusCode, bytes.TrimSpace(raw))
	}

	var decoded planResponse
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, fmt.Errorf("%w: decoding plan-trip response: %v", models.ErrUpstream, err)
	}

	candidates := make([]models.Candidate, 0, len(decoded.Plans))
	seen := make(map[string]bool, len(decoded.Plans))
	for i, rawPlan := range decoded.Plans {
		plan, ok := ParsePlan(rawPlan)
		if !ok {
			p.Logger.Warn("skipping plan without destination", "session_id", session.ID, "index", i)
			continue
		}
		id := CandidateID(plan.Destination.City, plan.Destination.Country)
		if seen[id] {
			p.Logger.Warn("skipping duplicate plan", "session_id", session.ID, "candidate_id", id)
			continue
		}
		seen[id] = true
		candidates = append(candidates, models.Candidate{
			ID:       id,
			Label:    plan.Destination.City,
			Metadata: rawPlan,
		})
	}

	p.Logger.Info("plans generated",
		"session_id", session.ID,
		"plans", len(decoded.Plans),
		"candidates", len(candidates),
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return candidates, nil
}

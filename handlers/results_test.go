// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/tripsync/models"
	"github.com/danielhkuo/tripsync/testutil"
)

func getResults(handler *ResultsHandler, sessionID string) *httptest.ResponseRecorder {
	req := testutil.MakeRequest("GET", "/sessions/"+sessionID+"/results", nil, nil)
	req.SetPathValue("id", sessionID)
	w := httptest.NewRecorder()
	handler.GetResults(w, req)
	return w
}

func TestGetResults(t *testing.T) {
	svc := testutil.NewTestServices(t, testutil.GetTestConfig(), nil)
	handler := NewResultsHandler(svc.Results)
	sessionID, pids := testutil.CreateVotingSession(t, svc, 2)

	// One participant still voting
	testutil.CastTestVotes(t, svc, sessionID, pids[0], models.VoteDislike, models.VoteLike, models.VoteLike)
	testutil.AssertErrorCode(t, getResults(handler, sessionID), http.StatusConflict, "session_not_resolved")

	testutil.CastTestVotes(t, svc, sessionID, pids[1], models.VoteDislike, models.VoteLike, models.VoteDislike)

	w := getResults(handler, sessionID)
	testutil.AssertStatus(t, w, http.StatusOK)

	var result models.RankedResult
	testutil.AssertJSON(t, w, &result)

	want := []struct {
		id    string
		score int
	}{
		{"rome-italy", 2},
		{"oslo-norway", 0},
		{"lisbon-portugal", -2},
	}
	if len(result.Rankings) != len(want) {
		t.Fatalf("Expected %d rankings, got %d", len(want), len(result.Rankings))
	}
	for i, w := range want {
		r := result.Rankings[i]
		if r.Candidate.ID != w.id || r.Score != w.score || r.Rank != i+1 {
			t.Errorf("rank %d = %s (score %d), want %s (score %d)", i+1, r.Candidate.ID, r.Score, w.id, w.score)
		}
	}
	if result.BallotCount != 6 || result.ParticipantCount != 2 {
		t.Errorf("Unexpected counts: %+v", result)
	}
	if len(result.InputsHash) != 64 {
		t.Errorf("Expected sha256 hex hash, got %q", result.InputsHash)
	}

	rome := result.Rankings[0]
	if rome.PriceIndicator != "€€" || rome.CostDisplay != "€650" {
		t.Errorf("Expected enriched Rome entry, got %+v", rome)
	}

	again := getResults(handler, sessionID)
	var second models.RankedResult
	testutil.AssertJSON(t, again, &second)
	if second.InputsHash != result.InputsHash {
		t.Error("Expected identical results on repeated fetch")
	}
}

func TestGetResults_UnknownSession(t *testing.T) {
	svc := testutil.NewTestServices(t, testutil.GetTestConfig(), nil)
	handler := NewResultsHandler(svc.Results)

	testutil.AssertErrorCode(t, getResults(handler, "ZZZZZZ"), http.StatusNotFound, "not_found")
}

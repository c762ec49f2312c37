// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/tripsync/middleware"
	"github.com/danielhkuo/tripsync/models"
	"github.com/danielhkuo/tripsync/voting"
)

type VotingHandler struct {
	engine *voting.Engine
}

func NewVotingHandler(engine *voting.Engine) *VotingHandler {
	return &VotingHandler{engine: engine}
}

// StartVoting handles POST /sessions/{id}/voting
func (h *VotingHandler) StartVoting(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathSessionID(w, r)
	if !ok {
		return
	}

	candidates, err := h.engine.StartVoting(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CandidatesResponse{Candidates: candidates})
}

// GetCandidates handles GET /sessions/{id}/candidates
func (h *VotingHandler) GetCandidates(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathSessionID(w, r)
	if !ok {
		return
	}

	candidates, err := h.engine.Candidates(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CandidatesResponse{Candidates: candidates})
}

// CastVote handles POST /sessions/{id}/participants/{pid}/votes
func (h *VotingHandler) CastVote(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathSessionID(w, r)
	if !ok {
		return
	}
	participantID := r.PathValue("pid")

	var req models.CastVoteRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON", models.RetryFixRequest)
		return
	}
	if req.CandidateID == "" {
		middleware.WriteError(w, http.StatusBadRequest, "invalid_argument", "candidate_id is required", models.RetryFixRequest)
		return
	}

	result, err := h.engine.CastVote(r.Context(), sessionID, participantID, req.CandidateID, req.Vote)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, models.CastVoteResponse{
		NextCandidateID: result.NextCandidateID,
		ForcedClose:     result.ForcedClose,
	})
}

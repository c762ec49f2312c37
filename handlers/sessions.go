// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/danielhkuo/tripsync/coordinator"
	"github.com/danielhkuo/tripsync/middleware"
	"github.com/danielhkuo/tripsync/models"
)

type SessionHandler struct {
	coord *coordinator.Coordinator
}

func NewSessionHandler(coord *coordinator.Coordinator) *SessionHandler {
	return &SessionHandler{coord: coord}
}

// CreateSession handles POST /sessions
func (h *SessionHandler) CreateSession(w http.ResponseWriter, r *http.Request) {
	var req models.CreateSessionRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON", models.RetryFixRequest)
		return
	}

	sessionID, err := h.coord.CreateSession(r.Context(), req.ExpectedParticipantCount)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.CreateSessionResponse{
		SessionID: sessionID,
	})
}

// JoinSession handles POST /sessions/{id}/participants
func (h *SessionHandler) JoinSession(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathSessionID(w, r)
	if !ok {
		return
	}

	participantID, err := h.coord.AdmitParticipant(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusCreated, models.JoinSessionResponse{
		ParticipantID: participantID,
	})
}

// SubmitStep handles PUT /sessions/{id}/participants/{pid}/steps/{step}
func (h *SessionHandler) SubmitStep(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathSessionID(w, r)
	if !ok {
		return
	}
	participantID := r.PathValue("pid")
	step := r.PathValue("step")

	var req models.SubmitStepRequest
	if err := middleware.ParseJSONBody(r, &req); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "invalid_json", "Invalid JSON", models.RetryFixRequest)
		return
	}

	if err := h.coord.UpdateStep(r.Context(), sessionID, participantID, step, req.Value); err != nil {
		writeError(w, r, err)
		return
	}

	h.writeStatus(w, r, sessionID)
}

// CompleteParticipant handles POST /sessions/{id}/participants/{pid}/complete
func (h *SessionHandler) CompleteParticipant(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathSessionID(w, r)
	if !ok {
		return
	}
	participantID := r.PathValue("pid")

	if err := h.coord.MarkComplete(r.Context(), sessionID, participantID); err != nil {
		var incomplete *models.IncompleteStepsError
		if errors.As(err, &incomplete) {
			slog.Info("completion rejected", "session_id", sessionID, "participant_id", participantID, "missing", incomplete.Missing)
		}
		writeError(w, r, err)
		return
	}

	h.writeStatus(w, r, sessionID)
}

// GetStatus handles GET /sessions/{id}
func (h *SessionHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	if id, ok := pathSessionID(w, r); ok {
		h.writeStatus(w, r, id)
	}
}

func (h *SessionHandler) writeStatus(w http.ResponseWriter, r *http.Request, sessionID string) {
	status, err := h.coord.Status(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}
	middleware.JSONResponse(w, http.StatusOK, status)
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/dustin/go-humanize/english"

	"github.com/danielhkuo/tripsync/auth"
	"github.com/danielhkuo/tripsync/middleware"
	"github.com/danielhkuo/tripsync/models"
)

// apiError is the HTTP rendition of a domain error.
type apiError struct {
	status  int
	code    string
	message string
}

// classify maps a domain error to status, stable code and a message that
// tells the caller whether to wait for others or fix their own input.
func classify(err error) apiError {
	var incomplete *models.IncompleteStepsError
	var outOfSequence *models.OutOfSequenceError

	switch {
	case errors.As(err, &incomplete):
		return apiError{http.StatusUnprocessableEntity, "incomplete_steps",
			"Fill in your " + english.WordSeries(incomplete.Missing, "and") + " before finishing."}
	case errors.As(err, &outOfSequence):
		if outOfSequence.Expected == nil {
			return apiError{http.StatusConflict, "out_of_sequence", "You have already voted on every destination."}
		}
		return apiError{http.StatusConflict, "out_of_sequence", "Vote on " + *outOfSequence.Expected + " next."}
	case errors.Is(err, models.ErrNotFound):
		return apiError{http.StatusNotFound, "not_found", "Session or participant not found. Check the group code."}
	case errors.Is(err, models.ErrInvalidStep):
		return apiError{http.StatusBadRequest, "invalid_step", "Unknown step. Valid steps are " + english.WordSeries(models.RequiredSteps, "and") + "."}
	case errors.Is(err, models.ErrInvalidArgument):
		return apiError{http.StatusBadRequest, "invalid_argument", err.Error()}
	case errors.Is(err, models.ErrSessionFull):
		return apiError{http.StatusConflict, "session_full", "This group is already complete."}
	case errors.Is(err, models.ErrAlreadyCompleted):
		return apiError{http.StatusConflict, "already_completed", "Your preferences are locked once you finish."}
	case errors.Is(err, models.ErrSessionNotReady):
		return apiError{http.StatusConflict, "session_not_ready", "Wait for everyone to finish their preferences."}
	case errors.Is(err, models.ErrSessionNotVoting):
		return apiError{http.StatusConflict, "session_not_voting", "Voting is not open for this group."}
	case errors.Is(err, models.ErrSessionNotResolved):
		return apiError{http.StatusConflict, "session_not_resolved", "Wait for everyone to finish voting."}
	case errors.Is(err, models.ErrNoCandidates):
		return apiError{http.StatusConflict, "no_candidates", "No destinations were found for this group."}
	case errors.Is(err, models.ErrUpstream):
		return apiError{http.StatusBadGateway, "upstream_error", "The trip planner is unavailable. Try again shortly."}
	case errors.Is(err, context.DeadlineExceeded):
		return apiError{http.StatusGatewayTimeout, "timeout", "The request took too long. Try again."}
	}
	return apiError{http.StatusInternalServerError, "internal_error", "Something went wrong."}
}

// writeError translates err once, at the edge.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	e := classify(err)
	if e.status >= http.StatusInternalServerError {
		slog.Error("request failed",
			"method", r.Method,
			"path", r.URL.Path,
			"status", e.status,
			"error", err,
		)
	}
	middleware.WriteError(w, e.status, e.code, e.message, models.RetryHint(err))
}

// pathSessionID returns the {id} path value. Anything not shaped like a group
// code is answered with 404 here, without a store read.
func pathSessionID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := r.PathValue("id")
	if !auth.IsGroupCode(id) {
		writeError(w, r, fmt.Errorf("session %q: %w", id, models.ErrNotFound))
		return "", false
	}
	return id, true
}

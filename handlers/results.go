// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package handlers

import (
	"net/http"

	"github.com/danielhkuo/tripsync/middleware"
	"github.com/danielhkuo/tripsync/results"
)

type ResultsHandler struct {
	aggregator *results.Aggregator
}

func NewResultsHandler(aggregator *results.Aggregator) *ResultsHandler {
	return &ResultsHandler{aggregator: aggregator}
}

// GetResults handles GET /sessions/{id}/results
// Only available once every participant has finished voting.
func (h *ResultsHandler) GetResults(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := pathSessionID(w, r)
	if !ok {
		return
	}

	result, err := h.aggregator.Aggregate(r.Context(), sessionID)
	if err != nil {
		writeError(w, r, err)
		return
	}

	middleware.JSONResponse(w, http.StatusOK, result)
}

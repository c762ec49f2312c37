// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"net/http"

	"github.com/danielhkuo/tripsync/cliparse"
	"github.com/danielhkuo/tripsync/coordinator"
	"github.com/danielhkuo/tripsync/handlers"
	"github.com/danielhkuo/tripsync/middleware"
	"github.com/danielhkuo/tripsync/results"
	"github.com/danielhkuo/tripsync/voting"
)

// Services are the domain services the API fronts.
type Services struct {
	Coordinator *coordinator.Coordinator
	Voting      *voting.Engine
	Results     *results.Aggregator
}

func NewRouter(svc Services, cfg cliparse.Config) *http.ServeMux {
	mux := http.NewServeMux()

	sessionHandler := handlers.NewSessionHandler(svc.Coordinator)
	votingHandler := handlers.NewVotingHandler(svc.Voting)
	resultsHandler := handlers.NewResultsHandler(svc.Results)
	watchHandler := handlers.NewWatchHandler(svc.Coordinator, cfg.WatchInterval, cfg.WatchTimeout)

	// Health check
	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("OK"))
	})

	// Session collection
	mux.HandleFunc("POST /sessions", middleware.WithLogging(sessionHandler.CreateSession))
	mux.HandleFunc("GET /sessions/{id}", middleware.WithLogging(sessionHandler.GetStatus))
	mux.HandleFunc("POST /sessions/{id}/participants", middleware.WithLogging(sessionHandler.JoinSession))
	mux.HandleFunc("PUT /sessions/{id}/participants/{pid}/steps/{step}", middleware.WithLogging(sessionHandler.SubmitStep))
	mux.HandleFunc("POST /sessions/{id}/participants/{pid}/complete", middleware.WithLogging(sessionHandler.CompleteParticipant))

	// Voting
	mux.HandleFunc("POST /sessions/{id}/voting", middleware.WithLogging(votingHandler.StartVoting))
	mux.HandleFunc("GET /sessions/{id}/candidates", middleware.WithLogging(votingHandler.GetCandidates))
	mux.HandleFunc("POST /sessions/{id}/participants/{pid}/votes", middleware.WithLogging(votingHandler.CastVote))

	// Results
	mux.HandleFunc("GET /sessions/{id}/results", middleware.WithLogging(resultsHandler.GetResults))

	// Push rendition of the poller
	mux.HandleFunc("GET /sessions/{id}/watch", middleware.WithLogging(watchHandler.Watch))

	// Root endpoint
	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("tripsync API v1"))
	})

	return mux
}

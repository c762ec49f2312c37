// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package router defines HTTP routes for the TripSync API.

# Route Registration

NewRouter creates a configured http.ServeMux with all endpoints:

	mux := router.NewRouter(router.Services{...}, cfg)

# Endpoints

Health:

	GET /health

Collection:

	POST /sessions                                      - Create session
	GET  /sessions/{id}                                 - Status view
	POST /sessions/{id}/participants                    - Join
	PUT  /sessions/{id}/participants/{pid}/steps/{step} - Submit a wizard step
	POST /sessions/{id}/participants/{pid}/complete     - Finish the wizard

Voting:

	POST /sessions/{id}/voting                   - Fix the candidate list
	GET  /sessions/{id}/candidates               - Candidates in voting order
	POST /sessions/{id}/participants/{pid}/votes - Like or dislike the next candidate

Results:

	GET /sessions/{id}/results - Ranked results (resolved only)

Watching:

	GET /sessions/{id}/watch?until=converged|resolved - Websocket status stream

# Handler Initialization

Handlers receive the service they front, never the database:

	sessionHandler := handlers.NewSessionHandler(svc.Coordinator)
	votingHandler := handlers.NewVotingHandler(svc.Voting)
	resultsHandler := handlers.NewResultsHandler(svc.Results)
	watchHandler := handlers.NewWatchHandler(svc.Coordinator, cfg.WatchInterval, cfg.WatchTimeout)
*/
package router

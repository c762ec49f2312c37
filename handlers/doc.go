// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package handlers contains HTTP request handlers for the TripSync API.

# Handler Types

Each handler is a struct holding the service it fronts:

  - SessionHandler: create, join, submit steps, complete, status
  - VotingHandler: start voting, list candidates, cast votes
  - ResultsHandler: ranked results of a resolved session
  - WatchHandler: websocket stream of status changes

Handlers are created via constructor functions:

	sessionHandler := handlers.NewSessionHandler(coord)

# Session Lifecycle

Sessions progress through four states:

	collecting → awaiting_votes → voting → resolved

	POST /sessions                                    → CreateSession (returns group code)
	POST /sessions/{id}/participants                  → JoinSession
	PUT  /sessions/{id}/participants/{pid}/steps/{step} → SubmitStep
	POST /sessions/{id}/participants/{pid}/complete   → CompleteParticipant
	GET  /sessions/{id}                               → GetStatus

# Voting Flow

	POST /sessions/{id}/voting                   → StartVoting (fixes the candidate list)
	GET  /sessions/{id}/candidates               → GetCandidates
	POST /sessions/{id}/participants/{pid}/votes → CastVote (returns next_candidate_id)
	GET  /sessions/{id}/results                  → GetResults

# Errors

Domain errors are translated once, in writeError. Every error body carries a
stable code and a retry hint:

	404 not_found                 retry "safe"
	400 invalid_argument, invalid_step       retry "fix_request"
	409 session_full, already_completed, session_not_ready,
	    session_not_voting, session_not_resolved, out_of_sequence,
	    no_candidates             retry "refetch"
	422 incomplete_steps          retry "supply_input"
	502 upstream_error

# Watching

GET /sessions/{id}/watch upgrades to a websocket and pushes a status message
whenever the session version changes. The stream ends with a close frame once
the session converges (or resolves, with ?until=resolved), or with a timeout
message when the configured watch timeout elapses.
*/
package handlers

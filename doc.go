// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package main provides the entry point for the TripSync API server.

TripSync coordinates a group planning a trip together. Each participant
joins a session by its group code, fills in a five-step wizard (origin,
destination ideas, dates, interests, budget) and marks themselves complete.
Once the expected group has completed, a planner produces candidate trips,
everyone swipes like or dislike through the same ordered list, and the
session resolves to a ranked result.

# Starting the Server

With no configuration the server stores sessions in a local SQLite file:

	go run .

Or with flags:

	go run . -p 5000 -t postgres -d "postgres://..." --planner-url http://planner:6000/plan-trip

# Configuration

Settings come from flags, then the environment, then a .env file:

  - PORT (-p): Server port (default: 5000)
  - DATABASE_TYPE (-t): sqlite, postgres or memory (default: sqlite)
  - DATABASE_URL (-d): connection string (default: file:tripsync.db)
  - PLANNER_URL (--planner-url): candidate producer endpoint
  - VOTING_TIMEOUT (--voting-timeout): per-session voting deadline
  - STRICT_COMPLETION, ALLOW_REVOTE, AUTO_START_VOTING: policy switches

# Architecture

  - coordinator: session creation, admission, step updates, completion
  - voting: candidate fixing, ordered swipe votes, deadline sweeper
  - results: deterministic ranking of a resolved session
  - planner: candidate producers (HTTP planner service, static list)
  - poller: bounded convergence polling, used by the watch endpoint
  - store, sessionlock, db: persistence and per-session serialization
  - handlers, router, middleware: HTTP surface
  - models: domain, request and response types
  - auth: group codes and participant ids
  - cliparse: configuration parsing

Logs are text on a terminal and JSON otherwise.
*/
package main

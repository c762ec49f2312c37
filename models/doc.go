// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package models defines domain, request, and response types for the API.

# Domain Types

  - Session: a group trip identified by a shareable group code
  - Participant: one member's submitted steps and voting progress
  - Candidate: one proposed destination plan (opaque metadata)
  - Ballot: one participant's like/dislike on one candidate
  - RankedResult: the final ordered candidate list

# Lifecycle

Sessions move forward only:

	collecting → awaiting_votes → voting → resolved

Session.Advance rejects any move that is not strictly forward.

# Steps

Each participant submits a value for every step:

	origin, destinationIdeas, dates, interests, budget

# Errors

Sentinel errors (ErrNotFound, ErrSessionFull, ErrOutOfSequence, ...) are
wrapped with context by the services and matched with errors.Is at the HTTP
edge. RetryHint tells callers whether to re-fetch state before retrying.
*/
package models

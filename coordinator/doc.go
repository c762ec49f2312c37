// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package coordinator manages the collecting phase of a trip session: creating
sessions, admitting participants, recording step values and detecting quorum.

# Operations

	CreateSession(ctx, expectedCount)        → group code
	AdmitParticipant(ctx, sessionID)         → participant id
	UpdateStep(ctx, sessionID, pid, step, v) → error
	MarkComplete(ctx, sessionID, pid)        → error
	Status(ctx, sessionID)                   → SessionStatus

# Quorum

A session leaves collecting only when the number of admitted participants
equals the expected count and every one of them has completed. The check runs
inside the same store write that marks the last participant complete, so the
transition to awaiting_votes happens exactly once.

# Concurrency

Mutations take the per-session exclusive lock from sessionlock and write
through store.Patch, which retries on version conflicts. Reads take the shared
lock. Different sessions never contend.

# Strict Completion

With Config.StrictCompletion set, MarkComplete returns an
*models.IncompleteStepsError listing the missing steps. Without it, a
participant may complete with partial data.
*/
package coordinator

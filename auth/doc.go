// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package auth provides identifier generation for sessions and participants.

# Group Codes

A session is identified by a six character code that members share to join:

	code, err := auth.GenerateGroupCode()  // e.g. "K7QF3M"

Codes use crypto/rand over an alphabet without the ambiguous 0/O and 1/I.
Collisions are possible, so the coordinator retries creation when the store
reports the code is taken.

# Participant IDs

Participants get a random UUID when they are admitted:

	id := auth.NewParticipantID()

# ID Generation

Random hex IDs for other records:

	id, err := auth.GenerateID(16)  // 32 hex characters
*/
package auth

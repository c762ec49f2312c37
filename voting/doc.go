// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package voting runs the like/dislike round over a session's destination
candidates.

# Candidate List

StartVoting calls the planner.Producer once, when the session leaves
awaiting_votes, and stores the ordered list on the session. Every participant
votes over the same list in the same order.

# Per-participant Cursor

Each participant has a cursor in [0, n]. CastVote only accepts the candidate
at the cursor and then advances it:

	cursor 0: vote c0 → next c1
	cursor 1: vote c1 → next c2
	cursor n: done, next is nil

Voting for any other candidate returns *models.OutOfSequenceError carrying
the expected id. With Config.AllowRevote, a participant may overwrite a
ballot for a candidate behind the cursor; the cursor stays where it is.

# Resolution

The write that moves the last cursor to n also moves the session to
resolved. IsGroupVotingComplete reports the same condition for observers.

# Deadline

With Config.VotingTimeout set, voting closes at votingStartedAt + timeout.
After that, the next CastVote or sweep records every remaining candidate of
every unfinished participant as an implicit dislike, marks them
ForcedClose, and resolves the session. The late vote itself is discarded.

# Sweeper

Sweeper.Run is the background worker wired in main. Each pass starts voting
for sessions in awaiting_votes (when auto start is enabled) and enforces
expired deadlines.
*/
package voting

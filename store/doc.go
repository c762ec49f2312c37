// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package store provides durable keyed storage for sessions.

# Interface

Store exposes Create, Get, Put and ListByState. Put is a compare-and-swap on
the session version:

	s, _ := st.Get(ctx, id)
	s.State = models.StateAwaitingVotes
	err := st.Put(ctx, s) // ErrVersionConflict if someone wrote in between

Patch wraps the read-modify-write cycle and retries on conflicts:

	s, err := store.Patch(ctx, st, id, func(s *models.Session) error {
		return s.Advance(models.StateVoting)
	})

Return store.SkipWrite from the function to read without writing.

# Implementations

  - MemoryStore: in-process map guarded by a RWMutex, copies on every call
  - SQLStore: trip_session table on PostgreSQL (lib/pq) or SQLite
    (modernc.org/sqlite), one JSON document per session
*/
package store

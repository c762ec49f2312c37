// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package db opens the database and creates the schema.

# Connecting

Open picks the driver from the configuration:

		conn, err := db.Open(cfg)

	  - postgres: github.com/lib/pq
	  - sqlite: modernc.org/sqlite (pure Go, no cgo)

SQLite connections are limited to one so that ":memory:" databases behave
as a single database across queries.

# Schema Creation

CreateSchema initializes all required tables:

	if err := db.CreateSchema(conn); err != nil {
		log.Fatal(err)
	}

Safe to call multiple times - uses IF NOT EXISTS for all tables and indexes.

# Tables

  - trip_session: one row per group session. The full session document
    (participants, steps, candidates, ballots) is stored as JSON in payload;
    state and version are kept in their own columns for filtering and
    optimistic concurrency.

# Indexes

  - trip_session.state (sweeper scans voting sessions)
*/
package db

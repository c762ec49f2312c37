// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

/*
Package cliparse handles command-line argument parsing and configuration.

# Configuration

ParseFlags returns a Config struct with all settings:

	cfg, err := cliparse.ParseFlags(os.Args[1:])

# Config Fields

  - Port: Server listen port (default: 5000)
  - DatabaseType: sqlite (default), postgres, or memory
  - DatabaseURL: connection string (default file:tripsync.db for sqlite)
  - StrictCompletion: require all five steps before completing (default: true)
  - AllowRevote: allow overwriting a vote on an earlier candidate (default: true)
  - AutoStartVoting: sweeper starts voting once quorum is reached (default: false)
  - VotingTimeout: deadline after voting starts (default: 10m)
  - WatchInterval / WatchTimeout: websocket watch polling (default: 2s / 10m)
  - SweepInterval: voting sweeper period (default: 5s)
  - PlannerURL / PlannerTimeout: plan-trip endpoint (default: http://127.0.0.1:6000/plan-trip, 30s)

# Environment Variables

Flags fall back to environment variables:

	PORT              → -p
	DATABASE_URL      → -d
	DATABASE_TYPE     → -t
	STRICT_COMPLETION → -strict-completion
	ALLOW_REVOTE      → -allow-revote
	AUTO_START_VOTING → -auto-start-voting
	VOTING_TIMEOUT    → -voting-timeout
	WATCH_INTERVAL    → -watch-interval
	WATCH_TIMEOUT     → -watch-timeout
	SWEEP_INTERVAL    → -sweep-interval
	PLANNER_URL       → -planner-url
	PLANNER_TIMEOUT   → -planner-timeout

CLI flags take precedence over environment variables. Variables from a .env
file (path in ENV_FILE, default ".env") are loaded with godotenv before flags
are read and never replace variables already present in the environment.

# Validation

ParseFlags returns an error if:

  - an env variable cannot be parsed
  - DATABASE_TYPE is postgres and no DATABASE_URL is given
  - a duration is zero or negative
*/
package cliparse

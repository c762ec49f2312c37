// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package cliparse

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Database backends
const (
	DatabaseSQLite   = "sqlite"
	DatabasePostgres = "postgres"
	DatabaseMemory   = "memory"
)

type Config struct {
	Port         int
	DatabaseURL  string
	DatabaseType string

	// Coordination policy
	StrictCompletion bool
	AllowRevote      bool
	AutoStartVoting  bool
	VotingTimeout    time.Duration

	// Convergence watching
	WatchInterval time.Duration
	WatchTimeout  time.Duration
	SweepInterval time.Duration

	// Upstream candidate producer
	PlannerURL     string
	PlannerTimeout time.Duration
}

// Defaults
const (
	DefaultPort           = 5000
	DefaultSQLiteURL      = "file:tripsync.db"
	DefaultPlannerURL     = "http://127.0.0.1:6000/plan-trip"
	DefaultVotingTimeout  = 10 * time.Minute
	DefaultWatchInterval  = 2 * time.Second
	DefaultWatchTimeout   = 10 * time.Minute
	DefaultSweepInterval  = 5 * time.Second
	DefaultPlannerTimeout = 30 * time.Second
)

// ParseFlags validates flags and fills unset values from the environment.
// A .env file (ENV_FILE, default ".env") is loaded first when present; it
// never overrides variables already set in the process environment.
func ParseFlags(args []string) (Config, error) {
	var cfg Config

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load %s: %w", envFile, err)
	}

	fs := flag.NewFlagSet("tripsync", flag.ContinueOnError)

	// Network config (can be CLI args or env)
	fs.IntVar(&cfg.Port, "p", 0, "Server port")
	fs.StringVar(&cfg.DatabaseURL, "d", "", "Database URL")
	fs.StringVar(&cfg.DatabaseType, "t", "", "Database type (sqlite, postgres or memory)")

	// Policy
	fs.BoolVar(&cfg.StrictCompletion, "strict-completion", true, "Require every step before a participant can complete")
	fs.BoolVar(&cfg.AllowRevote, "allow-revote", true, "Allow overwriting a vote on an already voted candidate")
	fs.BoolVar(&cfg.AutoStartVoting, "auto-start-voting", false, "Start voting as soon as the group reaches quorum")
	fs.DurationVar(&cfg.VotingTimeout, "voting-timeout", 0, "Per-session voting deadline")

	// Watching
	fs.DurationVar(&cfg.WatchInterval, "watch-interval", 0, "Poll interval for session watches")
	fs.DurationVar(&cfg.WatchTimeout, "watch-timeout", 0, "Give up watching a session after this long")
	fs.DurationVar(&cfg.SweepInterval, "sweep-interval", 0, "How often the voting sweeper runs")

	// Planner
	fs.StringVar(&cfg.PlannerURL, "planner-url", "", "Candidate producer endpoint")
	fs.DurationVar(&cfg.PlannerTimeout, "planner-timeout", 0, "Candidate producer request timeout")

	if err := fs.Parse(args); err != nil {
		return Config{}, err
	}

	set := make(map[string]bool)
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	// Fall back to environment variables
	if cfg.Port == 0 {
		if portStr := os.Getenv("PORT"); portStr != "" {
			port, err := strconv.Atoi(portStr)
			if err != nil {
				return Config{}, errors.New("invalid PORT env variable")
			}
			cfg.Port = port
		} else {
			cfg.Port = DefaultPort
		}
	}
	if cfg.Port < 0 || cfg.Port > 65535 {
		return Config{}, fmt.Errorf("port %d out of range", cfg.Port)
	}

	if cfg.DatabaseType == "" {
		cfg.DatabaseType = os.Getenv("DATABASE_TYPE")
		if cfg.DatabaseType == "" {
			cfg.DatabaseType = DatabaseSQLite
		}
	}
	if cfg.DatabaseURL == "" {
		cfg.DatabaseURL = os.Getenv("DATABASE_URL")
	}
	switch cfg.DatabaseType {
	case DatabaseSQLite:
		if cfg.DatabaseURL == "" {
			cfg.DatabaseURL = DefaultSQLiteURL
		}
	case DatabasePostgres:
		if cfg.DatabaseURL == "" {
			return Config{}, errors.New("database URL required for postgres (use -d or DATABASE_URL env)")
		}
	case DatabaseMemory:
	default:
		return Config{}, fmt.Errorf("unknown database type %q", cfg.DatabaseType)
	}

	var err error
	if !set["strict-completion"] {
		if cfg.StrictCompletion, err = envBool("STRICT_COMPLETION", true); err != nil {
			return Config{}, err
		}
	}
	if !set["allow-revote"] {
		if cfg.AllowRevote, err = envBool("ALLOW_REVOTE", true); err != nil {
			return Config{}, err
		}
	}
	if !set["auto-start-voting"] {
		if cfg.AutoStartVoting, err = envBool("AUTO_START_VOTING", false); err != nil {
			return Config{}, err
		}
	}

	durations := []struct {
		dst  *time.Duration
		env  string
		def  time.Duration
		name string
	}{
		{&cfg.VotingTimeout, "VOTING_TIMEOUT", DefaultVotingTimeout, "voting-timeout"},
		{&cfg.WatchInterval, "WATCH_INTERVAL", DefaultWatchInterval, "watch-interval"},
		{&cfg.WatchTimeout, "WATCH_TIMEOUT", DefaultWatchTimeout, "watch-timeout"},
		{&cfg.SweepInterval, "SWEEP_INTERVAL", DefaultSweepInterval, "sweep-interval"},
		{&cfg.PlannerTimeout, "PLANNER_TIMEOUT", DefaultPlannerTimeout, "planner-timeout"},
	}
	for _, d := range durations {
		if !set[d.name] {
			if *d.dst, err = envDuration(d.env, d.def); err != nil {
				return Config{}, err
			}
		}
		if *d.dst <= 0 {
			return Config{}, fmt.Errorf("%s must be positive", d.name)
		}
	}

	if cfg.PlannerURL == "" {
		cfg.PlannerURL = os.Getenv("PLANNER_URL")
		if cfg.PlannerURL == "" {
			cfg.PlannerURL = DefaultPlannerURL
		}
	}

	return cfg, nil
}

func envBool(key string, def bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return b, nil
}

func envDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s env variable: %w", key, err)
	}
	return d, nil
}

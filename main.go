// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"

	"github.com/danielhkuo/tripsync/cliparse"
	"github.com/danielhkuo/tripsync/coordinator"
	"github.com/danielhkuo/tripsync/db"
	"github.com/danielhkuo/tripsync/middleware"
	"github.com/danielhkuo/tripsync/planner"
	"github.com/danielhkuo/tripsync/results"
	"github.com/danielhkuo/tripsync/router"
	"github.com/danielhkuo/tripsync/sessionlock"
	"github.com/danielhkuo/tripsync/store"
	"github.com/danielhkuo/tripsync/voting"
)

func main() {
	var err error

	// Human-readable logs on a terminal, JSON otherwise
	var handler slog.Handler
	if isatty.IsTerminal(os.Stdout.Fd()) || isatty.IsCygwinTerminal(os.Stdout.Fd()) {
		handler = slog.NewTextHandler(os.Stdout, nil)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, nil)
	}
	logger := slog.New(handler)
	slog.SetDefault(logger)

	// Parse configuration
	cfg, err := cliparse.ParseFlags(os.Args[1:])
	if err != nil {
		slog.Error("Error parsing flags", "error", err)
		os.Exit(1)
	}

	// Session storage
	var st store.Store
	if cfg.DatabaseType == cliparse.DatabaseMemory {
		st = store.NewMemoryStore()
		slog.Warn("Using in-memory session store; sessions are lost on restart")
	} else {
		dbConn, err := db.Open(cfg)
		if err != nil {
			slog.Error("database connection failed", "type", cfg.DatabaseType, "error", err)
			os.Exit(1)
		}
		defer dbConn.Close()

		// Create schema (tables)
		if err := db.CreateSchema(dbConn); err != nil {
			slog.Error("schema creation failed", "error", err)
			os.Exit(1)
		}
		slog.Info("Database schema ready", "type", cfg.DatabaseType)

		st = store.NewSQLStore(dbConn, logger)
	}

	// One lock table shared by every writer of a session
	locks := sessionlock.New()

	coord := coordinator.New(st, locks, coordinator.Config{
		StrictCompletion: cfg.StrictCompletion,
	}, logger)
	producer := planner.NewHTTPProducer(cfg.PlannerURL, cfg.PlannerTimeout, logger)
	engine := voting.New(st, locks, producer, voting.Config{
		VotingTimeout: cfg.VotingTimeout,
		AllowRevote:   cfg.AllowRevote,
	}, logger)
	aggregator := results.New(st, locks, logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Background deadline enforcement and auto-start
	sweeper := voting.NewSweeper(engine, st, cfg.SweepInterval, cfg.AutoStartVoting, logger)
	go func() {
		if err := sweeper.Run(ctx); err != nil {
			slog.Error("sweeper stopped", "error", err)
		}
	}()

	// Create router
	mux := router.NewRouter(router.Services{
		Coordinator: coord,
		Voting:      engine,
		Results:     aggregator,
	}, cfg)

	// Create server
	server := http.Server{
		Handler:           middleware.CORS(mux),
		Addr:              ":" + strconv.Itoa(cfg.Port),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		// Wait for Ctrl-C signal
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			server.Close()
		}
	}()

	// Start server
	slog.Info("Listening", "port", cfg.Port, "planner", cfg.PlannerURL)
	err = server.ListenAndServe()
	if err != nil && err != http.ErrServerClosed {
		slog.Error("Server closed", "error", err)
	} else {
		slog.Info("Server closed", "error", err)
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package testutil

import (
	"bytes"
	"context"
	"database/sql"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/tripsync/cliparse"
	"github.com/danielhkuo/tripsync/coordinator"
	"github.com/danielhkuo/tripsync/db"
	"github.com/danielhkuo/tripsync/models"
	"github.com/danielhkuo/tripsync/planner"
	"github.com/danielhkuo/tripsync/results"
	"github.com/danielhkuo/tripsync/sessionlock"
	"github.com/danielhkuo/tripsync/store"
	"github.com/danielhkuo/tripsync/voting"
)

// TestDBURL is an in-memory SQLite database, so tests need no server.
const TestDBURL = ":memory:"

// StepValues holds a valid value for every required step.
var StepValues = map[string]json.RawMessage{
	models.StepOrigin:           json.RawMessage(`"Amsterdam"`),
	models.StepDestinationIdeas: json.RawMessage(`["Lisbon","Rome"]`),
	models.StepDates:            json.RawMessage(`{"start":"2025-07-01","end":"2025-07-08"}`),
	models.StepInterests:        json.RawMessage(`["food","museums"]`),
	models.StepBudget:           json.RawMessage(`{"min":300,"max":900,"currency":"EUR"}`),
}

// TestCandidates is the list returned by the default test producer.
var TestCandidates = []models.Candidate{
	{ID: "lisbon-portugal", Label: "Lisbon", Metadata: json.RawMessage(`{"destination":{"city":"Lisbon","country":"Portugal","top_highlights":["Alfama"]},"flights":[{"flight_no":"TP671","outbound":{"price":120}}],"totals":{"total_flight_cost":240}}`)},
	{ID: "rome-italy", Label: "Rome", Metadata: json.RawMessage(`{"destination":{"city":"Rome","country":"Italy"},"totals":{"total_flight_cost":650}}`)},
	{ID: "oslo-norway", Label: "Oslo"},
}

// SetupTestDB opens a fresh in-memory database with the full schema.
func SetupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := db.Open(cliparse.Config{DatabaseType: cliparse.DatabaseSQLite, DatabaseURL: TestDBURL})
	if err != nil {
		t.Fatalf("Failed to open test database: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	if err := db.CreateSchema(conn); err != nil {
		t.Fatalf("Failed to create schema: %v", err)
	}
	return conn
}

// GetTestConfig returns a standard test configuration
func GetTestConfig() cliparse.Config {
	return cliparse.Config{
		Port:             5318,
		DatabaseURL:      TestDBURL,
		DatabaseType:     cliparse.DatabaseSQLite,
		StrictCompletion: true,
		AllowRevote:      true,
		VotingTimeout:    10 * time.Minute,
		WatchInterval:    5 * time.Millisecond,
		WatchTimeout:     2 * time.Second,
		SweepInterval:    time.Second,
		PlannerURL:       "http://127.0.0.1:0/plan-trip",
		PlannerTimeout:   time.Second,
	}
}

// Services is the service graph main builds, backed by a test database.
type Services struct {
	Store       store.Store
	Locks       *sessionlock.Locks
	Coordinator *coordinator.Coordinator
	Voting      *voting.Engine
	Results     *results.Aggregator
}

// DiscardLogger returns a logger that drops everything.
func DiscardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// NewTestServices wires every service against a fresh SQLite database. A
// nil producer serves TestCandidates.
func NewTestServices(t *testing.T, cfg cliparse.Config, producer planner.Producer) *Services {
	t.Helper()

	if producer == nil {
		producer = planner.NewStaticProducer(TestCandidates...)
	}
	logger := DiscardLogger()
	st := store.NewSQLStore(SetupTestDB(t), logger)
	locks := sessionlock.New()

	return &Services{
		Store: st,
		Locks: locks,
		Coordinator: coordinator.New(st, locks, coordinator.Config{
			StrictCompletion: cfg.StrictCompletion,
		}, logger),
		Voting: voting.New(st, locks, producer, voting.Config{
			VotingTimeout: cfg.VotingTimeout,
			AllowRevote:   cfg.AllowRevote,
		}, logger),
		Results: results.New(st, locks, logger),
	}
}

// CreateTestSession creates a session expecting n participants.
func CreateTestSession(t *testing.T, svc *Services, n int) string {
	t.Helper()

	id, err := svc.Coordinator.CreateSession(context.Background(), n)
	if err != nil {
		t.Fatalf("Failed to create test session: %v", err)
	}
	return id
}

// JoinTestParticipant admits one participant.
func JoinTestParticipant(t *testing.T, svc *Services, sessionID string) string {
	t.Helper()

	pid, err := svc.Coordinator.AdmitParticipant(context.Background(), sessionID)
	if err != nil {
		t.Fatalf("Failed to admit test participant: %v", err)
	}
	return pid
}

// CompleteTestParticipant submits every step and marks the participant
// complete.
func CompleteTestParticipant(t *testing.T, svc *Services, sessionID, participantID string) {
	t.Helper()

	ctx := context.Background()
	for _, step := range models.RequiredSteps {
		if err := svc.Coordinator.UpdateStep(ctx, sessionID, participantID, step, StepValues[step]); err != nil {
			t.Fatalf("Failed to submit step %s: %v", step, err)
		}
	}
	if err := svc.Coordinator.MarkComplete(ctx, sessionID, participantID); err != nil {
		t.Fatalf("Failed to complete participant: %v", err)
	}
}

// CreateReadySession returns a session in awaiting_votes with n completed
// participants, in join order.
func CreateReadySession(t *testing.T, svc *Services, n int) (string, []string) {
	t.Helper()

	id := CreateTestSession(t, svc, n)
	pids := make([]string, n)
	for i := range pids {
		pids[i] = JoinTestParticipant(t, svc, id)
		CompleteTestParticipant(t, svc, id, pids[i])
	}
	return id, pids
}

// CreateVotingSession returns a session in voting with n participants.
func CreateVotingSession(t *testing.T, svc *Services, n int) (string, []string) {
	t.Helper()

	id, pids := CreateReadySession(t, svc, n)
	if _, err := svc.Voting.StartVoting(context.Background(), id); err != nil {
		t.Fatalf("Failed to start voting: %v", err)
	}
	return id, pids
}

// CastTestVotes walks one participant through the full candidate list.
func CastTestVotes(t *testing.T, svc *Services, sessionID, participantID string, votes ...models.Vote) {
	t.Helper()

	ctx := context.Background()
	s, err := svc.Store.Get(ctx, sessionID)
	if err != nil {
		t.Fatalf("Failed to load session: %v", err)
	}
	for i, c := range s.Candidates {
		v := models.VoteLike
		if i < len(votes) {
			v = votes[i]
		}
		if _, err := svc.Voting.CastVote(ctx, sessionID, participantID, c.ID, v); err != nil {
			t.Fatalf("Failed to cast vote on %s: %v", c.ID, err)
		}
	}
}

// MakeRequest creates an HTTP test request
func MakeRequest(method, path string, body any, headers map[string]string) *http.Request {
	var req *http.Request
	if body != nil {
		jsonBody, _ := json.Marshal(body)
		req = httptest.NewRequest(method, path, bytes.NewReader(jsonBody))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, path, nil)
	}

	for k, v := range headers {
		req.Header.Set(k, v)
	}

	return req
}

// AssertStatus checks that the response has the expected status code
func AssertStatus(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("Expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertJSON decodes the response body into the provided struct
func AssertJSON(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	if err := json.NewDecoder(w.Body).Decode(v); err != nil {
		t.Fatalf("Failed to decode JSON response: %v", err)
	}
}

// AssertErrorCode checks the status and the machine readable error code.
func AssertErrorCode(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	AssertStatus(t, w, status)

	var resp models.ErrorResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("Failed to decode error response: %v", err)
	}
	if resp.Code != code {
		t.Errorf("Expected error code %q, got %q (message %q)", code, resp.Code, resp.Message)
	}
}

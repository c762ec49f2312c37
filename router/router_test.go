// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/danielhkuo/tripsync/models"
	"github.com/danielhkuo/tripsync/testutil"
)

func newTestRouter(t *testing.T) (*http.ServeMux, *testutil.Services) {
	t.Helper()

	cfg := testutil.GetTestConfig()
	svc := testutil.NewTestServices(t, cfg, nil)
	mux := NewRouter(Services{
		Coordinator: svc.Coordinator,
		Voting:      svc.Voting,
		Results:     svc.Results,
	}, cfg)
	return mux, svc
}

func TestHealthEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	if w.Body.String() != "OK" {
		t.Errorf("Expected body 'OK', got '%s'", w.Body.String())
	}
}

func TestRootEndpoint(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusOK {
		t.Errorf("Expected status 200, got %d", w.Code)
	}

	expected := "tripsync API v1"
	if w.Body.String() != expected {
		t.Errorf("Expected body '%s', got '%s'", expected, w.Body.String())
	}
}

func TestUnknownPathIsNotFound(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/nope", nil)
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	if w.Code != http.StatusNotFound {
		t.Errorf("Expected 404, got %d", w.Code)
	}
}

func TestRouteExistence(t *testing.T) {
	mux, _ := newTestRouter(t)

	// Unknown sessions and empty bodies produce 400 or 404 from the handler;
	// only 405 means the route is missing.
	testCases := []struct {
		method string
		path   string
	}{
		{"GET", "/health"},
		{"GET", "/"},

		// Collection
		{"POST", "/sessions"},
		{"GET", "/sessions/test-id"},
		{"POST", "/sessions/test-id/participants"},
		{"PUT", "/sessions/test-id/participants/p1/steps/destination"},
		{"POST", "/sessions/test-id/participants/p1/complete"},

		// Voting
		{"POST", "/sessions/test-id/voting"},
		{"GET", "/sessions/test-id/candidates"},
		{"POST", "/sessions/test-id/participants/p1/votes"},

		// Results and watching
		{"GET", "/sessions/test-id/results"},
		{"GET", "/sessions/test-id/watch"},
	}

	for _, tc := range testCases {
		t.Run(tc.method+" "+tc.path, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code == http.StatusMethodNotAllowed {
				t.Errorf("Route %s %s returned 405, expected route handler to exist", tc.method, tc.path)
			}
		})
	}
}

func TestSpecificMethodRouting(t *testing.T) {
	mux, _ := newTestRouter(t)

	testCases := []struct {
		name           string
		method         string
		path           string
		expectedStatus int
	}{
		{"POST to health endpoint", "POST", "/health", http.StatusMethodNotAllowed},
		{"DELETE a session", "DELETE", "/sessions/test-id", http.StatusMethodNotAllowed},
		{"POST a step", "POST", "/sessions/test-id/participants/p1/steps/budget", http.StatusMethodNotAllowed},
		{"PUT to voting endpoint", "PUT", "/sessions/test-id/voting", http.StatusMethodNotAllowed},
		{"GET votes", "GET", "/sessions/test-id/participants/p1/votes", http.StatusMethodNotAllowed},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(tc.method, tc.path, nil)
			w := httptest.NewRecorder()

			mux.ServeHTTP(w, req)

			if w.Code != tc.expectedStatus {
				t.Errorf("Expected %d for %s %s, got %d", tc.expectedStatus, tc.method, tc.path, w.Code)
			}
		})
	}
}

func TestPathParameterExtraction(t *testing.T) {
	mux, svc := newTestRouter(t)

	sessionID := testutil.CreateTestSession(t, svc, 2)
	participantID := testutil.JoinTestParticipant(t, svc, sessionID)

	t.Run("session ID extraction", func(t *testing.T) {
		req := httptest.NewRequest("GET", "/sessions/"+sessionID, nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		var status models.SessionStatus
		testutil.AssertJSON(t, w, &status)
		if status.SessionID != sessionID {
			t.Errorf("Expected session %s, got %s", sessionID, status.SessionID)
		}
	})

	t.Run("participant and step extraction", func(t *testing.T) {
		req := testutil.MakeRequest("PUT", "/sessions/"+sessionID+"/participants/"+participantID+"/steps/budget",
			models.SubmitStepRequest{Value: json.RawMessage(`1500`)}, nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		testutil.AssertStatus(t, w, http.StatusOK)

		s, err := svc.Coordinator.GetSession(req.Context(), sessionID)
		if err != nil {
			t.Fatalf("GetSession: %v", err)
		}
		if got := string(s.Participant(participantID).Steps[models.StepBudget]); got != "1500" {
			t.Errorf("Expected budget 1500, got %q", got)
		}
	})

	t.Run("unknown step", func(t *testing.T) {
		req := testutil.MakeRequest("PUT", "/sessions/"+sessionID+"/participants/"+participantID+"/steps/hotel",
			models.SubmitStepRequest{Value: json.RawMessage(`"x"`)}, nil)
		w := httptest.NewRecorder()

		mux.ServeHTTP(w, req)

		testutil.AssertErrorCode(t, w, http.StatusBadRequest, "invalid_step")
	})
}

func TestRequestIDIsEchoed(t *testing.T) {
	mux, _ := newTestRouter(t)

	req := httptest.NewRequest("GET", "/sessions/missing", nil)
	req.Header.Set("X-Request-ID", "abc123")
	w := httptest.NewRecorder()

	mux.ServeHTTP(w, req)

	testutil.AssertErrorCode(t, w, http.StatusNotFound, "not_found")
	if got := w.Header().Get("X-Request-ID"); got != "abc123" {
		t.Errorf("Expected request id abc123, got %q", got)
	}
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/danielhkuo/tripsync/models"
)

const samplePlans = `{
  "plans": [
    {
      "destination": {"city": "Lisbon", "country": "Portugal", "summary": "Sunny", "top_highlights": ["Alfama", "Belem"]},
      "flights": [
        {"airline": "TAP", "flight_no": "TP671", "departure_airport": "AMS",
         "outbound": {"date": "2025-07-01", "time": "08:00", "price": 180.5, "booking_link": "https://example.com/tp671"},
         "return": {"date": "2025-07-08", "time": "19:00", "price": 150}},
        {"airline": "KLM", "flight_no": "KL1691", "departure_airport": "AMS",
         "outbound": {"date": "2025-07-01", "time": "10:00", "price": 120, "booking_link": "https://example.com/kl1691"},
         "return": {"date": "2025-07-08", "time": "21:00", "price": 140}}
      ],
      "totals": {"total_flight_cost": 560}
    },
    {"destination": {"city": "", "country": "Nowhere"}},
    {
      "destination": {"city": "Rio de Janeiro", "country": "Brazil", "summary": "Beaches"},
      "flights": [],
      "totals": {"total_flight_cost": null}
    },
    {"destination": {"city": "Lisbon", "country": "Portugal"}}
  ]
}`

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestHTTPProducer(t *testing.T) {
	var gotBody map[string]string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s, want POST", r.Method)
		}
		if err := json.NewDecoder(r.Body).Decode(&gotBody); err != nil {
			t.Errorf("decoding request: %v", err)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, samplePlans)
	}))
	defer server.Close()

	p := NewHTTPProducer(server.URL, time.Second, discardLogger())
	candidates, err := p.GenerateCandidates(context.Background(), &models.Session{ID: "ABC234"})
	if err != nil {
		t.Fatalf("GenerateCandidates() error = %v", err)
	}

	if gotBody["group_id"] != "ABC234" {
		t.Errorf("request body = %v, want group_id ABC234", gotBody)
	}

	wantIDs := []string{"lisbon-portugal", "rio-de-janeiro-brazil"}
	if len(candidates) != len(wantIDs) {
		t.Fatalf("got %d candidates, want %d", len(candidates), len(wantIDs))
	}
	for i, id := range wantIDs {
		if candidates[i].ID != id {
			t.Errorf("candidate[%d].ID = %q, want %q", i, candidates[i].ID, id)
		}
	}
	if candidates[0].Label != "Lisbon" {
		t.Errorf("label = %q, want Lisbon", candidates[0].Label)
	}

	plan, ok := ParsePlan(candidates[0].Metadata)
	if !ok {
		t.Fatal("metadata should round-trip as a plan")
	}
	if len(plan.Destination.TopHighlights) != 2 {
		t.Errorf("highlights = %v", plan.Destination.TopHighlights)
	}
}

func TestHTTPProducerUpstreamFailures(t *testing.T) {
	tests := []struct {
		name    string
		handler http.HandlerFunc
	}{
		{
			name: "server error",
			handler: func(w http.ResponseWriter, r *http.Request) {
				http.Error(w, "planner exploded", http.StatusInternalServerError)
			},
		},
		{
			name: "malformed body",
			handler: func(w http.ResponseWriter, r *http.Request) {
				_, _ = io.WriteString(w, `{"plans": [`)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			server := httptest.NewServer(tt.handler)
			defer server.Close()

			p := NewHTTPProducer(server.URL, time.Second, discardLogger())
			_, err := p.GenerateCandidates(context.Background(), &models.Session{ID: "ABC234"})
			if !errors.Is(err, models.ErrUpstream) {
				t.Errorf("error = %v, want ErrUpstream", err)
			}
		})
	}
}

func TestHTTPProducerUnreachable(t *testing.T) {
	server := httptest.NewServer(http.NotFoundHandler())
	url := server.URL
	server.Close()

	p := NewHTTPProducer(url, time.Second, discardLogger())
	if _, err := p.GenerateCandidates(context.Background(), &models.Session{ID: "X"}); !errors.Is(err, models.ErrUpstream) {
		t.Errorf("error = %v, want ErrUpstream", err)
	}
}

func TestCheapestFlight(t *testing.T) {
	plan, ok := ParsePlan(json.RawMessage(`{
		"destination": {"city": "Rome"},
		"flights": [
			{"flight_no": "A", "outbound": {"price": 300}},
			{"flight_no": "B", "outbound": {}},
			{"flight_no": "C", "outbound": {"price": 99.99}},
			{"flight_no": "D", "outbound": {"price": 99.99}}
		]
	}`))
	if !ok {
		t.Fatal("ParsePlan() ok = false")
	}

	f, found := plan.CheapestFlight()
	if !found || f.FlightNo != "C" {
		t.Errorf("CheapestFlight() = %+v, %v; want flight C", f, found)
	}

	if _, found := (Plan{}).CheapestFlight(); found {
		t.Error("plan without flights should have no cheapest flight")
	}
}

func TestParsePlanRejectsOpaqueMetadata(t *testing.T) {
	for _, raw := range []string{``, `"just a string"`, `{"name": "Paris"}`, `{bad json`} {
		if _, ok := ParsePlan(json.RawMessage(raw)); ok {
			t.Errorf("ParsePlan(%q) ok = true, want false", raw)
		}
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name       string
		candidates []models.Candidate
		wantErr    bool
	}{
		{"empty list", nil, false},
		{"distinct", []models.Candidate{{ID: "a"}, {ID: "b"}}, false},
		{"empty id", []models.Candidate{{ID: "a"}, {ID: ""}}, true},
		{"duplicate", []models.Candidate{{ID: "a"}, {ID: "a"}}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.candidates)
			if tt.wantErr && !errors.Is(err, models.ErrInvalidArgument) {
				t.Errorf("Validate() error = %v, want ErrInvalidArgument", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() error = %v", err)
			}
		})
	}
}

func TestStaticProducerReturnsCopies(t *testing.T) {
	p := NewStaticProducer(models.Candidate{ID: "a"}, models.Candidate{ID: "b"})

	first, _ := p.GenerateCandidates(context.Background(), nil)
	first[0].ID = "changed"

	second, _ := p.GenerateCandidates(context.Background(), nil)
	if second[0].ID != "a" {
		t.Error("StaticProducer must not share its backing slice")
	}
}

func TestCandidateID(t *testing.T) {
	tests := map[string][2]string{
		"lisbon-portugal":        {"Lisbon", "Portugal"},
		"new-york-united-states": {"New  York", "United States"},
		"paris":                  {"Paris", ""},
	}
	for want, in := range tests {
		if got := CandidateID(in[0], in[1]); got != want {
			t.Errorf("CandidateID(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
}

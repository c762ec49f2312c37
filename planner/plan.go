// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package planner

import (
	"encoding/json"
	"strings"
)

// Plan is one destination proposal returned by the plan-trip service. It is
// stored verbatim as candidate metadata.
type Plan struct {
	Destination Destination `json:"destination"`
	Flights     []Flight    `json:"flights"`
	Totals      Totals      `json:"totals"`
}

type Destination struct {
	City          string   `json:"city"`
	Country       string   `json:"country"`
	Summary       string   `json:"summary"`
	TopHighlights []string `json:"top_highlights"`
}

type Flight struct {
	Airline          string `json:"airline"`
	FlightNo         string `json:"flight_no"`
	DepartureAirport string `json:"departure_airport"`
	Outbound         Leg    `json:"outbound"`
	Return           Leg    `json:"return"`
}

type Leg struct {
	Date        string   `json:"date"`
	Time        string   `json:"time"`
	Price       *float64 `json:"price"`
	BookingLink string   `json:"booking_link"`
}

type Totals struct {
	TotalFlightCost *float64 `json:"total_flight_cost"`
}

type planResponse struct {
	Plans []json.RawMessage `json:"plans"`
}

// CandidateID derives a stable id from city and country, e.g. "lisbon-portugal".
func CandidateID(city, country string) string {
	slug := func(s string) string {
		return strings.Join(strings.Fields(strings.ToLower(s)), "-")
	}
	if country == "" {
		return slug(city)
	}
	return slug(city) + "-" + slug(country)
}

// ParsePlan decodes candidate metadata. ok is false when the metadata is not
// a plan with at least a city.
func ParsePlan(metadata json.RawMessage) (Plan, bool) {
	var p Plan
	if len(metadata) == 0 || json.Unmarshal(metadata, &p) != nil {
		return Plan{}, false
	}
	return p, p.Destination.City != ""
}

// CheapestFlight returns the flight with the lowest priced outbound leg.
// Flights without an outbound price are ignored.
func (p Plan) CheapestFlight() (Flight, bool) {
	var best Flight
	found := false
	for _, f := range p.Flights {
		if f.Outbound.Price == nil {
			continue
		}
		if !found || *f.Outbound.Price < *best.Outbound.Price {
			best = f
			found = true
		}
	}
	return best, found
}

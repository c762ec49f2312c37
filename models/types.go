// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import (
	"encoding/json"
	"time"
)

// State is the lifecycle position of a session. It only moves forward.
type State string

// Session state constants
const (
	StateCollecting    State = "collecting"
	StateAwaitingVotes State = "awaiting_votes"
	StateVoting        State = "voting"
	StateResolved      State = "resolved"
)

// Rank orders states along the lifecycle; unknown states rank 0.
func (s State) Rank() int {
	switch s {
	case StateCollecting:
		return 1
	case StateAwaitingVotes:
		return 2
	case StateVoting:
		return 3
	case StateResolved:
		return 4
	}
	return 0
}

// Step name constants
const (
	StepOrigin           = "origin"
	StepDestinationIdeas = "destinationIdeas"
	StepDates            = "dates"
	StepInterests        = "interests"
	StepBudget           = "budget"
)

// RequiredSteps lists every step in wizard order.
var RequiredSteps = []string{
	StepOrigin,
	StepDestinationIdeas,
	StepDates,
	StepInterests,
	StepBudget,
}

// IsValidStep reports whether name belongs to the fixed step set.
func IsValidStep(name string) bool {
	for _, s := range RequiredSteps {
		if s == name {
			return true
		}
	}
	return false
}

// Vote is a swipe signal on one candidate.
type Vote string

// Vote constants
const (
	VoteLike    Vote = "like"
	VoteDislike Vote = "dislike"
)

func (v Vote) Valid() bool {
	return v == VoteLike || v == VoteDislike
}

// Domain types

type Session struct {
	ID                       string         `json:"session_id"`
	ExpectedParticipantCount int            `json:"expected_participant_count"`
	Participants             []*Participant `json:"participants"` // join order
	CreatedAt                time.Time      `json:"created_at"`
	State                    State          `json:"state"`
	Candidates               []Candidate    `json:"candidates,omitempty"`
	AwaitingVotesAt          *time.Time     `json:"awaiting_votes_at,omitempty"`
	VotingStartedAt          *time.Time     `json:"voting_started_at,omitempty"`
	VotingDeadline           *time.Time     `json:"voting_deadline,omitempty"`
	ResolvedAt               *time.Time     `json:"resolved_at,omitempty"`
	Version                  int64          `json:"version"`
}

type Participant struct {
	ID          string                     `json:"participant_id"`
	Steps       map[string]json.RawMessage `json:"steps"`
	Completed   bool                       `json:"completed"`
	JoinedAt    time.Time                  `json:"joined_at"`
	CompletedAt *time.Time                 `json:"completed_at,omitempty"`

	// Voting progress, written only by the voting engine.
	Cursor      int               `json:"cursor"`
	Ballots     map[string]Ballot `json:"ballots,omitempty"` // candidate_id -> ballot
	ForcedClose bool              `json:"forced_close,omitempty"`
}

// Candidate is one proposed plan. Metadata is passed through unmodified.
type Candidate struct {
	ID       string          `json:"candidate_id"`
	Label    string          `json:"label,omitempty"`
	Metadata json.RawMessage `json:"metadata,omitempty"`
}

type Ballot struct {
	SessionID     string    `json:"session_id"`
	ParticipantID string    `json:"participant_id"`
	CandidateID   string    `json:"candidate_id"`
	Vote          Vote      `json:"vote"`
	CastAt        time.Time `json:"cast_at"`
	Implicit      bool      `json:"implicit,omitempty"` // recorded by the deadline policy
}

// Request types

type CreateSessionRequest struct {
	ExpectedParticipantCount int `json:"expected_participant_count"`
}

type SubmitStepRequest struct {
	Value json.RawMessage `json:"value"`
}

type CastVoteRequest struct {
	CandidateID string `json:"candidate_id"`
	Vote        Vote   `json:"vote"`
}

// Response types

type CreateSessionResponse struct {
	SessionID string `json:"session_id"`
}

type JoinSessionResponse struct {
	ParticipantID string `json:"participant_id"`
}

type ParticipantStatus struct {
	ParticipantID  string   `json:"participant_id"`
	Completed      bool     `json:"completed"`
	SubmittedSteps []string `json:"submitted_steps"`
	Origin         string   `json:"origin,omitempty"`
	VotesCast      int      `json:"votes_cast"`
	VotingDone     bool     `json:"voting_done"`
}

type SessionStatus struct {
	SessionID      string              `json:"session_id"`
	State          State               `json:"state"`
	CompletedCount int                 `json:"completed_count"`
	TotalCount     int                 `json:"total_count"`
	ExpectedCount  int                 `json:"expected_count"`
	Participants   []ParticipantStatus `json:"participants"`
	VotingDeadline *time.Time          `json:"voting_deadline,omitempty"`
	Message        string              `json:"message"`
}

type CandidatesResponse struct {
	Candidates []Candidate `json:"candidates"`
}

type CastVoteResponse struct {
	NextCandidateID *string `json:"next_candidate_id"`
	ForcedClose     bool    `json:"forced_close,omitempty"`
}

// Watch message types, sent over the watch websocket.
const (
	WatchStatus  = "status"
	WatchError   = "error"
	WatchTimeout = "timeout"
)

type WatchMessage struct {
	Type   string         `json:"type"`
	Status *SessionStatus `json:"status,omitempty"`
	Error  *ErrorResponse `json:"error,omitempty"`
}

// Result types

type Flight struct {
	Airline          string  `json:"airline,omitempty"`
	FlightNo         string  `json:"flight_no,omitempty"`
	DepartureAirport string  `json:"departure_airport,omitempty"`
	OutboundDate     string  `json:"outbound_date,omitempty"`
	OutboundTime     string  `json:"outbound_time,omitempty"`
	OutboundPrice    float64 `json:"outbound_price"`
	BookingLink      string  `json:"booking_link,omitempty"`
}

type RankedCandidate struct {
	Rank           int       `json:"rank"` // 1-indexed
	Position       int       `json:"position"`
	Candidate      Candidate `json:"candidate"`
	Score          int       `json:"score"`
	LikeCount      int       `json:"like_count"`
	DislikeCount   int       `json:"dislike_count"`
	TotalCost      *float64  `json:"total_cost,omitempty"`
	CostDisplay    string    `json:"cost_display,omitempty"`
	PriceIndicator string    `json:"price_indicator,omitempty"`
	Highlights     []string  `json:"highlights,omitempty"`
	CheapestFlight *Flight   `json:"cheapest_flight,omitempty"`
}

type RankedResult struct {
	SessionID        string            `json:"session_id"`
	ResolvedAt       *time.Time        `json:"resolved_at,omitempty"`
	ParticipantCount int               `json:"participant_count"`
	BallotCount      int               `json:"ballot_count"`
	Rankings         []RankedCandidate `json:"rankings"`
	InputsHash       string            `json:"inputs_hash"` // sha256 of the sorted ballot ledger
}

// Error response

type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Message string `json:"message,omitempty"`
	Retry   string `json:"retry,omitempty"`
}

// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package models

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrInvalidArgument    = errors.New("invalid argument")
	ErrInvalidStep        = errors.New("invalid step")
	ErrSessionFull        = errors.New("session is full")
	ErrAlreadyCompleted   = errors.New("participant already completed")
	ErrIncompleteSteps    = errors.New("participant has incomplete steps")
	ErrSessionNotReady    = errors.New("session has not reached quorum")
	ErrSessionNotVoting   = errors.New("session is not voting")
	ErrSessionNotResolved = errors.New("session is not resolved")
	ErrOutOfSequence      = errors.New("vote out of sequence")
	ErrNoCandidates       = errors.New("no candidates to vote on")
	ErrInvalidTransition  = errors.New("invalid state transition")
	ErrUpstream           = errors.New("candidate producer failed")
)

// Retry hints attached to API errors.
const (
	RetrySafe        = "safe"         // re-check identifiers, then retry
	RetryFixRequest  = "fix_request"  // caller bug, do not retry as-is
	RetryRefetch     = "refetch"      // re-fetch session state before retrying
	RetrySupplyInput = "supply_input" // submit the missing data first
)

// RetryHint classifies err for callers deciding whether to retry.
func RetryHint(err error) string {
	switch {
	case errors.Is(err, ErrNotFound):
		return RetrySafe
	case errors.Is(err, ErrInvalidArgument), errors.Is(err, ErrInvalidStep):
		return RetryFixRequest
	case errors.Is(err, ErrIncompleteSteps):
		return RetrySupplyInput
	case errors.Is(err, ErrSessionFull),
		errors.Is(err, ErrAlreadyCompleted),
		errors.Is(err, ErrSessionNotReady),
		errors.Is(err, ErrSessionNotVoting),
		errors.Is(err, ErrSessionNotResolved),
		errors.Is(err, ErrOutOfSequence),
		errors.Is(err, ErrNoCandidates):
		return RetryRefetch
	}
	return ""
}

// IncompleteStepsError names the steps a participant still has to submit.
type IncompleteStepsError struct {
	Missing []string
}

func (e *IncompleteStepsError) Error() string {
	return ErrIncompleteSteps.Error()
}

func (e *IncompleteStepsError) Unwrap() error {
	return ErrIncompleteSteps
}

// OutOfSequenceError carries the candidate the participant must vote on next.
type OutOfSequenceError struct {
	Expected *string
	Got      string
}

func (e *OutOfSequenceError) Error() string {
	if e.Expected == nil {
		return ErrOutOfSequence.Error() + ": voting already finished"
	}
	return ErrOutOfSequence.Error() + ": expected " + *e.Expected + ", got " + e.Got
}

func (e *OutOfSequenceError) Unwrap() error {
	return ErrOutOfSequence
}

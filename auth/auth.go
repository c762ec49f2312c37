// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"

	"github.com/google/uuid"
)

// GroupCodeLength is the number of characters in a shareable group code.
const GroupCodeLength = 6

// 32 symbols without 0/O or 1/I so codes survive being read aloud.
// 256 is a multiple of 32, so byte%32 is unbiased.
const groupCodeAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

// GenerateID creates a random hex ID of the specified byte length
func GenerateID(byteLen int) (string, error) {
	b := make([]byte, byteLen)
	_, err := rand.Read(b)
	if err != nil {
		return "", fmt.Errorf("failed to generate random ID: %w", err)
	}
	return hex.EncodeToString(b), nil
}

// GenerateGroupCode creates a short upper-case code that identifies a session
// and is easy to share between group members.
func GenerateGroupCode() (string, error) {
	b := make([]byte, GroupCodeLength)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate group code: %w", err)
	}
	for i := range b {
		b[i] = groupCodeAlphabet[int(b[i])%len(groupCodeAlphabet)]
	}
	return string(b), nil
}

// NewParticipantID returns a random UUID for a newly admitted participant.
func NewParticipantID() string {
	return uuid.NewString()
}

// IsGroupCode reports whether s has the shape of a generated group code.
func IsGroupCode(s string) bool {
	if len(s) != GroupCodeLength {
		return false
	}
	for i := 0; i < len(s); i++ {
		found := false
		for j := 0; j < len(groupCodeAlphabet); j++ {
			if s[i] == groupCodeAlphabet[j] {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

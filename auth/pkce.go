// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"fmt"

	"github.com/google/uuid"
)

// PKCEPair is the verifier/challenge/state triple for one authorization
// attempt (RFC 7636). A pair is single-use: the verifier is never
// transmitted before the code-exchange step, and state round-trips through
// the authorization redirect unchanged.
type PKCEPair struct {
	Verifier  string
	Challenge string
	State     string
}

// NewPKCEPair generates a fresh PKCE pair using a cryptographically strong
// RNG for both the verifier and the state.
func NewPKCEPair() (PKCEPair, error) {
	verifierBytes := make([]byte, 32) // 32 bytes -> 43 base64url chars, within RFC 7636's 43-128 range
	if _, err := rand.Read(verifierBytes); err != nil {
		return PKCEPair{}, fmt.Errorf("auth: generating pkce verifier: %w", err)
	}
	verifier := base64.RawURLEncoding.EncodeToString(verifierBytes)

	hash := sha256.Sum256([]byte(verifier))
	challenge := base64.RawURLEncoding.EncodeToString(hash[:])

	state := uuid.NewString()

	return PKCEPair{Verifier: verifier, Challenge: challenge, State: state}, nil
}

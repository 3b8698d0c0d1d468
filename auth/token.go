// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

// Package auth owns the token triple, its pluggable storage, and the three
// OAuth 2.0 grant flows (PKCE, Authorization Code, Client Credentials) with
// coalesced refresh under concurrency.
package auth

import "time"

// Token is the triple persisted by a TokenStore and handed to the Client
// Core for request signing.
type Token struct {
	AccessToken  string    `json:"access_token"`
	RefreshToken string    `json:"refresh_token,omitempty"`
	ExpiresAt    time.Time `json:"expires_at"`
	Scope        string    `json:"scope,omitempty"`
	TokenType    string    `json:"token_type"`
}

// Expired reports whether the token is expired as of now, with no safety
// skew: the core re-refreshes on a 401 regardless of this check.
func (t Token) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Renewable reports whether the token can be silently refreshed; a token
// with no refresh token can only be renewed by re-running its originating
// grant flow.
func (t Token) Renewable() bool { return t.RefreshToken != "" }

// TokenStore persists, loads, and clears a single Token. Implementations
// must be safe for concurrent use.
type TokenStore interface {
	Load() (*Token, error)
	Save(Token) error
	Clear() error
}

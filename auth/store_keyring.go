// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

package auth

import (
	"errors"

	"github.com/goccy/go-json"

	"github.com/resonantlabs/harmonic/herrors"
)

// ErrSecretNotFound is the sentinel a Keyring implementation's Get must
// return when no secret is stored under (service, account), distinguishing
// "never authenticated" from a genuine backend failure (locked keychain,
// permission denied) that has to propagate as TokenStorageError.
var ErrSecretNotFound = errors.New("auth: secret not found in keyring")

// Keyring is the seam a caller implements to back KeyringTokenStore with an
// OS keychain (e.g. Keychain Access on macOS, Credential Manager on
// Windows, Secret Service on Linux). The core does not depend on any
// platform-specific cgo binding itself; a caller wires in a library such as
// zalando/go-keyring and satisfies this interface. Get must return
// ErrSecretNotFound, not a wrapped/ambiguous error, when the secret is
// absent.
type Keyring interface {
	Set(service, account, secret string) error
	Get(service, account string) (string, error)
	Delete(service, account string) error
}

// KeyringTokenStore adapts a Keyring into a TokenStore, matching the
// spec's "secure OS-keystore store where available" branch without forcing
// every platform and build to carry a cgo dependency.
type KeyringTokenStore struct {
	ring    Keyring
	service string
	account string
}

// NewKeyringTokenStore returns a TokenStore backed by ring, storing the
// token triple as one JSON secret under (service, account).
func NewKeyringTokenStore(ring Keyring, service, account string) *KeyringTokenStore {
	return &KeyringTokenStore{ring: ring, service: service, account: account}
}

// Load implements TokenStore. A missing secret (ErrSecretNotFound) reports
// "no token yet" as (nil, nil); any other Keyring error is a genuine
// storage failure and surfaces as TokenStorageError.
func (k *KeyringTokenStore) Load() (*Token, error) {
	raw, err := k.ring.Get(k.service, k.account)
	if errors.Is(err, ErrSecretNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, &herrors.TokenStorageError{Cause: err}
	}
	var tok Token
	if err := json.Unmarshal([]byte(raw), &tok); err != nil {
		return nil, &herrors.TokenStorageError{Cause: err}
	}
	return &tok, nil
}

// Save implements TokenStore.
func (k *KeyringTokenStore) Save(t Token) error {
	raw, err := json.Marshal(t)
	if err != nil {
		return &herrors.TokenStorageError{Cause: err}
	}
	if err := k.ring.Set(k.service, k.account, string(raw)); err != nil {
		return &herrors.TokenStorageError{Cause: err}
	}
	return nil
}

// Clear implements TokenStore.
func (k *KeyringTokenStore) Clear() error {
	if err := k.ring.Delete(k.service, k.account); err != nil {
		return &herrors.TokenStorageError{Cause: err}
	}
	return nil
}

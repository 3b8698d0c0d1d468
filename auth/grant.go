// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

package auth

// Flow identifies which of the three OAuth 2.0 grant flows a GrantConfig
// describes.
type Flow int

const (
	FlowPKCE Flow = iota
	FlowAuthorizationCode
	FlowClientCredentials
)

func (f Flow) String() string {
	switch f {
	case FlowPKCE:
		return "pkce"
	case FlowAuthorizationCode:
		return "authorization_code"
	case FlowClientCredentials:
		return "client_credentials"
	default:
		return "unknown"
	}
}

// GrantConfig is the immutable, tagged auth configuration for one of the
// three supported grant flows. Construct with NewPKCEGrant,
// NewAuthorizationCodeGrant, or NewClientCredentialsGrant; all fields are
// validated before the client accepts the configuration.
type GrantConfig struct {
	Flow         Flow
	ClientID     string   `validate:"required"`
	Scopes       []string `validate:"min=0"`
	RedirectURI  string   // PKCE, AuthorizationCode
	ClientSecret string   // AuthorizationCode, ClientCredentials
}

// NewPKCEGrant constructs a PKCE GrantConfig.
func NewPKCEGrant(clientID, redirectURI string, scopes []string) GrantConfig {
	return GrantConfig{Flow: FlowPKCE, ClientID: clientID, RedirectURI: redirectURI, Scopes: scopes}
}

// NewAuthorizationCodeGrant constructs an AuthorizationCode GrantConfig.
func NewAuthorizationCodeGrant(clientID, clientSecret, redirectURI string, scopes []string) GrantConfig {
	return GrantConfig{Flow: FlowAuthorizationCode, ClientID: clientID, ClientSecret: clientSecret, RedirectURI: redirectURI, Scopes: scopes}
}

// NewClientCredentialsGrant constructs a ClientCredentials GrantConfig.
func NewClientCredentialsGrant(clientID, clientSecret string, scopes []string) GrantConfig {
	return GrantConfig{Flow: FlowClientCredentials, ClientID: clientID, ClientSecret: clientSecret, Scopes: scopes}
}

// requiresClientSecret reports whether the flow authenticates at the token
// endpoint with HTTP Basic using ClientSecret.
func (g GrantConfig) requiresClientSecret() bool {
	return g.Flow == FlowAuthorizationCode || g.Flow == FlowClientCredentials
}

// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

// Package config defines the client core's immutable, validated settings
// and a layered loader (defaults, then an optional YAML file, then
// environment variables) built on koanf.
package config

import (
	"net"
	"net/url"
	"strings"
	"time"

	"github.com/resonantlabs/harmonic/herrors"
	"github.com/resonantlabs/harmonic/internal/validation"
)

// DebugOptions controls diagnostic verbosity. None of these toggles change
// observable request semantics, only what gets logged.
type DebugOptions struct {
	LogLevel        string `validate:"omitempty,oneof=trace debug info warn error"`
	LogRequests     bool
	LogResponses    bool
	ExposeMetrics   bool
}

// NetworkRecovery governs the Retry Engine's handling of transport-level
// failures, distinct from the rate-limit budget.
type NetworkRecovery struct {
	MaxNetworkRetries   int           `validate:"gte=0"`
	BaseRetryDelay      time.Duration `validate:"gt=0"`
	RetryableStatusCodes []int        `validate:"dive,gte=100,lte=599"`
}

// Configuration is the client core's validated, immutable settings object.
// Construct it with Load or New; both return a value that has already
// passed validation, so no other package needs to re-check it.
type Configuration struct {
	APIBaseURL           string          `validate:"required"`
	RequestTimeout       time.Duration   `validate:"gt=0"`
	MaxRateLimitRetries  int             `validate:"gte=0"`
	RequestDedupEnabled  bool
	CustomHeaders        map[string]string
	NetworkRecovery      NetworkRecovery
	Debug                DebugOptions
}

// protectedHeaders may never be overridden via CustomHeaders; the core sets
// them itself on the request path.
var protectedHeaders = map[string]struct{}{
	"authorization":       {},
	"proxy-authorization": {},
	"cookie":              {},
	"set-cookie":          {},
	"host":                {},
}

// Defaults returns the baseline configuration used as the first koanf
// layer; callers rarely need this directly, Load calls it automatically.
func Defaults() Configuration {
	return Configuration{
		APIBaseURL:          "https://api.example-music-service.com/v1",
		RequestTimeout:      10 * time.Second,
		MaxRateLimitRetries: 1,
		RequestDedupEnabled: true,
		CustomHeaders:       map[string]string{},
		NetworkRecovery: NetworkRecovery{
			MaxNetworkRetries:    2,
			BaseRetryDelay:       250 * time.Millisecond,
			RetryableStatusCodes: []int{502, 503, 504},
		},
		Debug: DebugOptions{LogLevel: "info"},
	}
}

// New validates cfg and returns it unchanged, or an error describing every
// failed field. Validation is idempotent: validating an already-valid
// Configuration again returns the same value with no error.
func New(cfg Configuration) (Configuration, error) {
	if err := validation.Struct(&cfg); err != nil {
		return Configuration{}, &herrors.InvalidConfiguration{Kind: err.Error()}
	}
	if err := validateBaseURL(cfg.APIBaseURL); err != nil {
		return Configuration{}, err
	}
	if err := validateCustomHeaders(cfg.CustomHeaders); err != nil {
		return Configuration{}, err
	}
	return cfg, nil
}

func validateBaseURL(raw string) error {
	u, err := url.Parse(raw)
	if err != nil {
		return &herrors.InvalidConfiguration{Kind: "api_base_url: " + err.Error()}
	}
	if u.Scheme == "https" {
		return nil
	}
	host := u.Hostname()
	if host == "localhost" || host == "127.0.0.1" || host == "::1" || net.ParseIP(host).IsLoopback() {
		return nil
	}
	return &herrors.InvalidConfiguration{Kind: "api_base_url must be HTTPS unless host is localhost, got " + raw}
}

func validateCustomHeaders(headers map[string]string) error {
	for name := range headers {
		if strings.ContainsAny(name, "\r\n") {
			return &herrors.InvalidConfiguration{Kind: "custom_headers key " + name + " contains a newline"}
		}
		if _, protected := protectedHeaders[strings.ToLower(name)]; protected {
			return &herrors.InvalidConfiguration{Kind: "custom_headers key " + name + " is a protected header"}
		}
	}
	return nil
}

// MergeHeaders combines base and override, with override winning on
// conflicting keys. Disjoint key sets merge commutatively.
func MergeHeaders(base, override map[string]string) map[string]string {
	merged := make(map[string]string, len(base)+len(override))
	for k, v := range base {
		merged[k] = v
	}
	for k, v := range override {
		merged[k] = v
	}
	return merged
}

// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

package harmonic

import (
	"net/http"

	"github.com/resonantlabs/harmonic/auth"
	"github.com/resonantlabs/harmonic/config"
	"github.com/resonantlabs/harmonic/events"
	"github.com/resonantlabs/harmonic/herrors"
	"github.com/resonantlabs/harmonic/internal/validation"
	"github.com/resonantlabs/harmonic/transport"
)

// Option configures NewDefault.
type Option func(*buildOptions)

type buildOptions struct {
	cfg            config.Configuration
	store          auth.TokenStore
	endpoints      auth.Endpoints
	httpClient     *http.Client
	breakerEnabled bool
	breakerConfig  transport.CircuitBreakerSettings
}

// WithConfiguration overrides the default configuration.
func WithConfiguration(cfg config.Configuration) Option {
	return func(o *buildOptions) { o.cfg = cfg }
}

// WithTokenStore overrides the default in-memory token store.
func WithTokenStore(store auth.TokenStore) Option {
	return func(o *buildOptions) { o.store = store }
}

// WithEndpoints overrides the default accounts-host endpoints, for testing
// against a local token-endpoint fixture.
func WithEndpoints(endpoints auth.Endpoints) Option {
	return func(o *buildOptions) { o.endpoints = endpoints }
}

// WithHTTPClient overrides the *http.Client backing the default transport.
func WithHTTPClient(client *http.Client) Option {
	return func(o *buildOptions) { o.httpClient = client }
}

// WithCircuitBreaker enables the automatic offline kill-switch with the
// given settings.
func WithCircuitBreaker(settings transport.CircuitBreakerSettings) Option {
	return func(o *buildOptions) {
		o.breakerEnabled = true
		o.breakerConfig = settings
	}
}

// NewDefault builds a fully wired Client for grant using sane defaults,
// overridable via opts. grant and the configuration are validated first.
// It owns the Event Bus it creates; call the returned close function when
// done.
func NewDefault(grant auth.GrantConfig, opts ...Option) (*Client, func() error, error) {
	if err := validation.Struct(&grant); err != nil {
		return nil, nil, &herrors.InvalidConfiguration{Kind: err.Error()}
	}

	o := &buildOptions{
		cfg:       config.Defaults(),
		store:     auth.NewMemoryTokenStore(),
		endpoints: auth.DefaultEndpoints(),
	}
	for _, opt := range opts {
		opt(o)
	}

	cfg, err := config.New(o.cfg)
	if err != nil {
		return nil, nil, err
	}

	bus := events.NewBus(nil)

	var tr transport.Transport = transport.NewHTTPTransport(o.httpClient)
	if o.breakerEnabled {
		tr = transport.NewCircuitBreaker(tr, o.breakerConfig)
	}

	backend := auth.NewBackend(grant, o.endpoints, o.store, tr, bus)

	client := New(cfg, backend, tr, bus)
	return client, bus.Close, nil
}

// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

// Package request models one logical API call: a typed descriptor the
// service layer builds and hands to the client core. The core never knows
// about albums, playlists, or tracks — only about methods, paths, query
// parameters, bodies, and an opaque decoder.
package request

import (
	"net/url"
)

// Param is a single ordered query parameter.
type Param struct {
	Name  string
	Value string
}

// Body is the optional request payload. Exactly one of Bytes or Form should
// be populated; Form takes precedence if both are set (callers should not
// set both).
type Body struct {
	ContentType string
	Bytes       []byte
	Form        url.Values
}

// Descriptor is the typed description of one API call, built by the service
// layer and executed unchanged by the client core.
type Descriptor struct {
	Method        string
	Path          string
	Query         []Param
	Headers       map[string]string
	Body          *Body
	Decode        func([]byte) (any, error)
	Idempotent    bool
	Unauthenticated bool // true only for the token endpoint itself
}

// Builder provides fluent construction of a Descriptor, matching the thin
// contract the service layer needs: build once, hand off to the core.
type Builder struct {
	d Descriptor
}

// New starts building a descriptor for method and path (e.g. "/albums/{id}").
func New(method, path string) *Builder {
	return &Builder{d: Descriptor{Method: method, Path: path, Headers: map[string]string{}}}
}

// Query appends an ordered query parameter. Empty values are dropped at
// URL-assembly time by the client core, not here, so callers can add
// conditionally-present parameters without filtering.
func (b *Builder) Query(name, value string) *Builder {
	b.d.Query = append(b.d.Query, Param{Name: name, Value: value})
	return b
}

// Header sets a custom header. Neither the builder nor the client core
// checks the name against the protected-header list that config applies to
// CustomHeaders; on an authenticated call the core's own Authorization
// header replaces any caller-set one.
func (b *Builder) Header(name, value string) *Builder {
	b.d.Headers[name] = value
	return b
}

// JSONBody attaches a pre-encoded JSON payload.
func (b *Builder) JSONBody(bytes []byte) *Builder {
	b.d.Body = &Body{ContentType: "application/json", Bytes: bytes}
	return b
}

// FormBody attaches a form-encoded payload (used for token endpoint calls).
func (b *Builder) FormBody(form url.Values) *Builder {
	b.d.Body = &Body{ContentType: "application/x-www-form-urlencoded", Form: form}
	return b
}

// Idempotent marks the call eligible for dedup (GET/HEAD/OPTIONS only; the
// client core does not enforce the method restriction, callers are trusted
// the same way the original service layer is).
func (b *Builder) Idempotent() *Builder {
	b.d.Idempotent = true
	return b
}

// Unauthenticated marks the call as not requiring a bearer token (the token
// endpoint itself).
func (b *Builder) Unauthenticated() *Builder {
	b.d.Unauthenticated = true
	return b
}

// Decode attaches the response decoder. T is erased to any so Descriptor
// stays a concrete, non-generic type the core can store and pass around;
// callers recover the concrete type via a closure over T, same pattern as
// the descriptor's documented contract.
func Decode[T any](b *Builder, fn func([]byte) (T, error)) *Builder {
	b.d.Decode = func(data []byte) (any, error) { return fn(data) }
	return b
}

// Build finalizes the descriptor.
func (b *Builder) Build() Descriptor { return b.d }

// CanonicalQuery returns the query string with empty-value parameters
// omitted. url.Values.Encode sorts by key, giving the same bytes regardless
// of the order the caller added parameters in, which is what dedup
// fingerprinting (spec §4.4) and reproducible URLs need.
func (d Descriptor) CanonicalQuery() string {
	values := url.Values{}
	for _, p := range d.Query {
		if p.Value == "" {
			continue
		}
		values.Add(p.Name, p.Value)
	}
	return values.Encode()
}

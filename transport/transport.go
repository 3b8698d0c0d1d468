// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

// Package transport defines the one-method boundary between the Client
// Core and the network, swappable for tests, plus a circuit-breaker
// decorator that backs the automatic offline kill-switch.
package transport

import (
	"context"
	"io"
	"net/http"
	"time"
)

// Request is everything a Transport needs to execute one HTTP call.
type Request struct {
	Method  string
	URL     string
	Headers http.Header
	Body    io.Reader
	Timeout time.Duration
}

// Response is the raw transport outcome: status, headers, and the fully
// read response body.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Transport executes one request and returns the raw response or a
// transport-level error (DNS, TLS, timeout, connection refused — never a
// non-2xx status, which is a valid Response).
type Transport interface {
	Do(ctx context.Context, req Request) (*Response, error)
}

// HTTPTransport is the default Transport, backed by net/http.
type HTTPTransport struct {
	client *http.Client
}

// NewHTTPTransport constructs a Transport using client, or http.DefaultClient
// if client is nil.
func NewHTTPTransport(client *http.Client) *HTTPTransport {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTPTransport{client: client}
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, req Request) (*Response, error) {
	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, req.URL, req.Body)
	if err != nil {
		return nil, err
	}
	httpReq.Header = req.Headers

	resp, err := t.client.Do(httpReq)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, err
	}

	return &Response{Status: resp.StatusCode, Headers: resp.Header, Body: body}, nil
}

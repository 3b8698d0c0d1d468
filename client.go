// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

// Package harmonic is the Client Core (C7): it wires the Auth Backend,
// Transport, Retry Engine, Dedup Table, and Event Bus into the ten-step
// request pipeline the rest of this module's packages implement in
// isolation. Service-layer code (album, playlist, track lookups, and so
// on) builds a request.Descriptor and hands it to Client.Do; the core
// never knows what the descriptor represents.
package harmonic

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/resonantlabs/harmonic/auth"
	"github.com/resonantlabs/harmonic/config"
	"github.com/resonantlabs/harmonic/dedupe"
	"github.com/resonantlabs/harmonic/events"
	"github.com/resonantlabs/harmonic/herrors"
	"github.com/resonantlabs/harmonic/internal/logging"
	"github.com/resonantlabs/harmonic/internal/metrics"
	"github.com/resonantlabs/harmonic/request"
	"github.com/resonantlabs/harmonic/retry"
	"github.com/resonantlabs/harmonic/transport"
)

// Interceptor inspects or rewrites a built request before auth injection.
// It may only change headers, query, and body; method and path are fixed by
// the caller's Descriptor once the chain starts.
type Interceptor func(req *PreparedRequest) error

// PreparedRequest is the mutable request state an Interceptor may adjust.
type PreparedRequest struct {
	Method string
	URL    string
	Query  string
	Header http.Header
	Body   []byte
}

// Client is the Client Core. Construct with New; the zero value is not
// usable.
type Client struct {
	cfg       config.Configuration
	backend   *auth.Backend
	transport transport.Transport
	dedupe    *dedupe.Table
	bus       *events.Bus

	interceptors []Interceptor

	offlineMu sync.RWMutex
	offline   bool
}

// New constructs a Client. backend, tr, and bus are typically produced by
// auth.NewBackend, transport.NewCircuitBreaker(transport.NewHTTPTransport(...)),
// and events.NewBus respectively; cmd/harmonic-demo shows the full wiring.
func New(cfg config.Configuration, backend *auth.Backend, tr transport.Transport, bus *events.Bus) *Client {
	return &Client{
		cfg:       cfg,
		backend:   backend,
		transport: tr,
		dedupe:    dedupe.NewTable(),
		bus:       bus,
	}
}

// Use appends an interceptor to the chain, applied in registration order.
func (c *Client) Use(i Interceptor) {
	c.interceptors = append(c.interceptors, i)
}

// SetOffline flips the manual offline kill-switch. When true, every Do call
// fails immediately with herrors.Offline without touching the network.
func (c *Client) SetOffline(offline bool) {
	c.offlineMu.Lock()
	c.offline = offline
	c.offlineMu.Unlock()
}

// Offline reports the current manual offline state. The circuit breaker's
// own open state is a separate, transport-level mechanism (see
// transport.CircuitBreaker) and is not reflected here.
func (c *Client) Offline() bool {
	c.offlineMu.RLock()
	defer c.offlineMu.RUnlock()
	return c.offline
}

// Do executes one descriptor through the full request pipeline and returns
// the decoded value from Descriptor.Decode.
func (c *Client) Do(ctx context.Context, d request.Descriptor) (any, error) {
	if c.Offline() {
		return nil, herrors.Offline
	}

	correlationID := logging.NewCorrelationID()
	ctx = logging.ContextWithCorrelationID(ctx, correlationID)
	log := logging.Ctx(ctx)

	prep, err := c.assemble(d)
	if err != nil {
		return nil, err
	}

	for _, interceptor := range c.interceptors {
		if err := interceptor(prep); err != nil {
			return nil, &herrors.InvalidRequest{Reason: "interceptor: " + err.Error()}
		}
	}

	var refreshed int32
	if !d.Unauthenticated {
		token, err := c.backend.AccessToken(ctx, false)
		if err != nil {
			return nil, err
		}
		prep.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}

	for name, value := range c.cfg.CustomHeaders {
		prep.Header.Set(name, value)
	}

	dispatch := func() (any, error) {
		return c.dispatchWithRetry(ctx, d, prep, &refreshed)
	}

	if d.Idempotent && c.cfg.RequestDedupEnabled {
		fingerprint := dedupe.Fingerprint(prep.Method, prep.URL+"?"+prep.Query, prep.Body, prep.Header.Get("Authorization"))
		value, err := c.dedupe.Do(fingerprint, dispatch)
		if err != nil {
			log.Debug().Str("method", prep.Method).Err(err).Msg("request failed")
		}
		return value, err
	}

	value, err := dispatch()
	if err != nil {
		log.Debug().Str("method", prep.Method).Err(err).Msg("request failed")
	}
	return value, err
}

// assemble performs step 2 of the pipeline: URL assembly from the
// descriptor's path and canonical query.
func (c *Client) assemble(d request.Descriptor) (*PreparedRequest, error) {
	if d.Method == "" || d.Path == "" {
		return nil, &herrors.InvalidRequest{Reason: "method and path are required"}
	}

	header := http.Header{}
	for name, value := range d.Headers {
		header.Set(name, value)
	}

	var body []byte
	if d.Body != nil {
		if d.Body.Form != nil {
			body = []byte(d.Body.Form.Encode())
			header.Set("Content-Type", "application/x-www-form-urlencoded")
		} else {
			body = d.Body.Bytes
			if d.Body.ContentType != "" {
				header.Set("Content-Type", d.Body.ContentType)
			}
		}
	}

	return &PreparedRequest{
		Method: d.Method,
		URL:    strings.TrimRight(c.cfg.APIBaseURL, "/") + d.Path,
		Query:  d.CanonicalQuery(),
		Header: header,
		Body:   body,
	}, nil
}

// dispatchWithRetry runs steps 7-10 of the pipeline: transport,
// classification, 401/429/5xx recovery, decode, and event emission.
func (c *Client) dispatchWithRetry(ctx context.Context, d request.Descriptor, prep *PreparedRequest, refreshed *int32) (any, error) {
	budgets := retry.Budgets{
		MaxRateLimitRetries: c.cfg.MaxRateLimitRetries,
		MaxNetworkRetries:   c.cfg.NetworkRecovery.MaxNetworkRetries,
	}
	attempt := &retry.Attempt{}
	retryableStatus := c.retryableStatus()

	for {
		url := prep.URL
		if prep.Query != "" {
			url += "?" + prep.Query
		}

		resp, transportErr := c.transport.Do(ctx, transport.Request{
			Method:  prep.Method,
			URL:     url,
			Headers: prep.Header.Clone(),
			Body:    bodyReader(prep.Body),
			Timeout: c.cfg.RequestTimeout,
		})

		if errors.Is(transportErr, herrors.Offline) {
			return nil, herrors.Offline
		}

		var retryResp *retry.Response
		if transportErr == nil {
			retryResp = &retry.Response{Status: resp.Status, Headers: resp.Headers, Body: resp.Body}
			c.emitRateLimitInfo(retryResp.Headers)
		}

		decision := retry.Classify(retryResp, transportErr, attempt, budgets, c.cfg.NetworkRecovery.BaseRetryDelay, retryableStatus)

		switch decision.Outcome {
		case retry.OutcomeReturn:
			return c.decode(d, resp)

		case retry.OutcomeRetryAuth:
			atomic.AddInt32(refreshed, 1)
			token, err := c.backend.AccessToken(ctx, true)
			if err != nil {
				return nil, err
			}
			prep.Header.Set("Authorization", "Bearer "+token.AccessToken)
			metrics.RetryAttemptsTotal.WithLabelValues(decision.Reason.String()).Inc()
			continue

		case retry.OutcomeRetry:
			metrics.RetryAttemptsTotal.WithLabelValues(decision.Reason.String()).Inc()
			metrics.RetryDelaySeconds.WithLabelValues(decision.Reason.String()).Observe(decision.Delay.Seconds())
			if err := sleep(ctx, decision.Delay); err != nil {
				return nil, err
			}
			continue

		case retry.OutcomeFatalAuth, retry.OutcomeFatalClient:
			return nil, decision.Err

		default:
			return nil, decision.Err
		}
	}
}

func (c *Client) retryableStatus() func(int) bool {
	set := make(map[int]struct{}, len(c.cfg.NetworkRecovery.RetryableStatusCodes))
	for _, code := range c.cfg.NetworkRecovery.RetryableStatusCodes {
		set[code] = struct{}{}
	}
	return func(status int) bool {
		_, ok := set[status]
		return ok
	}
}

func (c *Client) decode(d request.Descriptor, resp *transport.Response) (any, error) {
	if d.Decode == nil || resp.Status == http.StatusNoContent || len(resp.Body) == 0 {
		return nil, nil
	}
	value, err := d.Decode(resp.Body)
	if err != nil {
		return nil, &herrors.UnexpectedResponse{Cause: err}
	}
	return value, nil
}

func (c *Client) emitRateLimitInfo(headers http.Header) {
	if c.bus == nil {
		return
	}
	limit, hasLimit := parseIntHeader(headers, "X-RateLimit-Limit")
	remaining, hasRemaining := parseIntHeader(headers, "X-RateLimit-Remaining")
	reset, hasReset := parseIntHeader(headers, "X-RateLimit-Reset")
	if !hasLimit && !hasRemaining && !hasReset {
		return
	}
	info := events.RateLimitInfo{}
	if hasLimit {
		info.Limit = &limit
	}
	if hasRemaining {
		info.Remaining = &remaining
		metrics.RateLimitRemaining.Set(float64(remaining))
	}
	if hasReset {
		resetAt := time.Unix(int64(reset), 0)
		info.ResetAt = &resetAt
	}
	c.bus.PublishRateLimitInfo(info)
}

func parseIntHeader(headers http.Header, name string) (int, bool) {
	raw := headers.Get(name)
	if raw == "" {
		return 0, false
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-timer.C:
		return nil
	case <-ctx.Done():
		return herrors.Canceled
	}
}

func bodyReader(body []byte) *strings.Reader {
	return strings.NewReader(string(body))
}

// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

// Package retry classifies a transport outcome into a retry decision and
// computes the delay to honor before the Client Core re-dispatches,
// mirroring the exponential-backoff-with-Retry-After pattern the teacher's
// HTTP client uses, generalized to the closed error taxonomy in herrors.
package retry

import (
	"math"
	"net/http"
	"strconv"
	"time"

	"github.com/resonantlabs/harmonic/herrors"
)

// Reason labels why a Decision recommends a retry, for metrics and logs.
type Reason int

const (
	ReasonNone Reason = iota
	ReasonTokenExpired
	ReasonRateLimited
	ReasonTransient
)

func (r Reason) String() string {
	switch r {
	case ReasonTokenExpired:
		return "token_expired"
	case ReasonRateLimited:
		return "rate_limit"
	case ReasonTransient:
		return "transient"
	default:
		return "none"
	}
}

// Outcome is what Classify decides to do with a completed transport attempt.
type Outcome int

const (
	// OutcomeReturn means the response is final and should be decoded.
	OutcomeReturn Outcome = iota
	// OutcomeRetryAuth means the caller must invalidate the cached token and
	// re-dispatch; consumes the auth budget (always exactly 1 per call).
	OutcomeRetryAuth
	// OutcomeRetry means re-dispatch after Delay; consumes the rate-limit or
	// network budget depending on Reason.
	OutcomeRetry
	// OutcomeFatalAuth means the auth-retry budget is exhausted; propagate
	// the 401 as an AuthFailure-equivalent.
	OutcomeFatalAuth
	// OutcomeFatalClient means the error is terminal and not retryable.
	OutcomeFatalClient
)

// Decision is the result of classifying one transport attempt.
type Decision struct {
	Outcome Outcome
	Delay   time.Duration
	Reason  Reason
	Err     error // populated for OutcomeFatalClient / OutcomeFatalAuth
}

// Budgets bounds how many times each retry reason may fire within one
// logical call. Auth is always exactly 1 per spec and is not configurable.
type Budgets struct {
	MaxRateLimitRetries int
	MaxNetworkRetries   int
}

// Attempt tracks consumed budget across one logical call's retries.
type Attempt struct {
	AuthUsed       bool
	RateLimitUsed  int
	NetworkUsed    int
	NetworkAttempt int // 0-indexed, feeds exponential backoff
}

// Response is the subset of a transport reply the engine needs to classify.
type Response struct {
	Status  int
	Headers http.Header
	Body    []byte
}

// Classify decides what to do after one transport attempt. transportErr, if
// non-nil, indicates the call never produced a Response (network/timeout);
// Response is ignored in that case. retryableStatus reports whether a 5xx
// status is in the configured retryable set (defaults to true if nil).
func Classify(resp *Response, transportErr error, attempt *Attempt, budgets Budgets, baseDelay time.Duration, retryableStatus func(int) bool) Decision {
	if transportErr != nil {
		return classifyNetworkFailure(transportErr, attempt, budgets, baseDelay)
	}

	switch {
	case resp.Status >= 200 && resp.Status < 300:
		return Decision{Outcome: OutcomeReturn}

	case resp.Status == http.StatusUnauthorized:
		if attempt.AuthUsed {
			return Decision{Outcome: OutcomeFatalAuth, Err: &herrors.AuthFailure{Kind: herrors.KindTokenEndpointHTTP, Status: resp.Status, Body: resp.Body}}
		}
		attempt.AuthUsed = true
		return Decision{Outcome: OutcomeRetryAuth, Reason: ReasonTokenExpired}

	case resp.Status == http.StatusTooManyRequests:
		if delay, ok := ParseRetryAfter(resp.Headers.Get("Retry-After")); ok {
			if attempt.RateLimitUsed >= maxOr(budgets.MaxRateLimitRetries, 1) {
				return Decision{Outcome: OutcomeFatalClient, Err: &herrors.RateLimited{RetryAfter: delay.Seconds()}}
			}
			attempt.RateLimitUsed++
			return Decision{Outcome: OutcomeRetry, Delay: delay, Reason: ReasonRateLimited}
		}
		// No Retry-After: treat as transient 5xx per spec.
		return classifyTransient(resp.Status, resp.Body, attempt, budgets, baseDelay, retryableStatus)

	case resp.Status >= 500:
		return classifyTransient(resp.Status, resp.Body, attempt, budgets, baseDelay, retryableStatus)

	default:
		return Decision{Outcome: OutcomeFatalClient, Err: &herrors.HTTPError{Status: resp.Status, Body: resp.Body}}
	}
}

func classifyTransient(status int, body []byte, attempt *Attempt, budgets Budgets, baseDelay time.Duration, retryableStatus func(int) bool) Decision {
	retryable := retryableStatus == nil || retryableStatus(status)
	if !retryable || attempt.NetworkUsed >= budgets.MaxNetworkRetries {
		return Decision{Outcome: OutcomeFatalClient, Err: &herrors.HTTPError{Status: status, Body: body}}
	}
	attempt.NetworkUsed++
	delay := Backoff(baseDelay, attempt.NetworkAttempt)
	attempt.NetworkAttempt++
	return Decision{Outcome: OutcomeRetry, Delay: delay, Reason: ReasonTransient}
}

func classifyNetworkFailure(err error, attempt *Attempt, budgets Budgets, baseDelay time.Duration) Decision {
	if attempt.NetworkUsed >= budgets.MaxNetworkRetries {
		return Decision{Outcome: OutcomeFatalClient, Err: &herrors.NetworkFailure{Detail: err}}
	}
	attempt.NetworkUsed++
	delay := Backoff(baseDelay, attempt.NetworkAttempt)
	attempt.NetworkAttempt++
	return Decision{Outcome: OutcomeRetry, Delay: delay, Reason: ReasonTransient}
}

// Backoff computes base * 2^n, the exponential backoff used for transient
// 5xx and network failures. Callers that want jitter or a ceiling apply it
// on top of this value; none is imposed here so behavior stays deterministic
// and testable.
func Backoff(base time.Duration, n int) time.Duration {
	return time.Duration(float64(base) * math.Pow(2, float64(n)))
}

// ParseRetryAfter parses a Retry-After header value, either an integer
// number of seconds or an HTTP-date, per RFC 7231 §7.1.3.
func ParseRetryAfter(raw string) (time.Duration, bool) {
	if raw == "" {
		return 0, false
	}
	if secs, err := strconv.Atoi(raw); err == nil && secs >= 0 {
		return time.Duration(secs) * time.Second, true
	}
	if when, err := http.ParseTime(raw); err == nil {
		delay := time.Until(when)
		if delay < 0 {
			delay = 0
		}
		return delay, true
	}
	return 0, false
}

func maxOr(v, fallback int) int {
	if v <= 0 {
		return fallback
	}
	return v
}

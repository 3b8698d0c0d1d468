// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

// Package metrics exposes Prometheus instrumentation for the client core.
// Metrics register against a private registry so embedding this module
// never collides with a host application's own metric names; hosts that
// want them on the default registry call UseDefaultRegisterer.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var registry = prometheus.NewRegistry()

// Registry returns the registry the client core's metrics are registered
// against.
func Registry() *prometheus.Registry { return registry }

// UseDefaultRegisterer additionally registers every metric against the
// global Prometheus registerer, for hosts that scrape
// prometheus.DefaultGatherer instead of a dedicated one.
func UseDefaultRegisterer() {
	prometheus.MustRegister(TokenRefreshTotal, RetryAttemptsTotal, RetryDelaySeconds,
		DedupHitsTotal, DedupMissesTotal, CircuitBreakerState, RateLimitRemaining)
}

var (
	// TokenRefreshTotal counts refresh attempts by flow and result
	// ("success", "failure").
	TokenRefreshTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "harmonic_token_refresh_total",
		Help: "Count of token refresh attempts by flow and result.",
	}, []string{"flow", "result"})

	// RetryAttemptsTotal counts retry attempts by classification reason
	// ("token_expired", "rate_limit", "transient").
	RetryAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "harmonic_retry_attempts_total",
		Help: "Count of retry attempts by classification reason.",
	}, []string{"reason"})

	// RetryDelaySeconds observes the delay chosen before each retry.
	RetryDelaySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "harmonic_retry_delay_seconds",
		Help:    "Observed retry delay by classification reason.",
		Buckets: []float64{.1, .25, .5, 1, 2, 4, 8, 16, 32},
	}, []string{"reason"})

	// DedupHitsTotal counts idempotent requests that joined an in-flight
	// dedup entry instead of issuing a new transport call.
	DedupHitsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "harmonic_dedup_hits_total",
		Help: "Count of idempotent requests that joined an in-flight dedup entry.",
	})

	// DedupMissesTotal counts idempotent requests that registered a fresh
	// dedup entry.
	DedupMissesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "harmonic_dedup_misses_total",
		Help: "Count of idempotent requests that registered a fresh dedup entry.",
	})

	// CircuitBreakerState mirrors the transport circuit breaker's state:
	// 0 closed, 1 half-open, 2 open.
	CircuitBreakerState = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "harmonic_circuit_breaker_state",
		Help: "Transport circuit breaker state: 0=closed, 1=half-open, 2=open.",
	})

	// RateLimitRemaining is the last observed rate-limit-remaining header
	// value reported by the API.
	RateLimitRemaining = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "harmonic_rate_limit_remaining",
		Help: "Last observed rate limit remaining value reported by the API.",
	})
)

func init() {
	registry.MustRegister(TokenRefreshTotal, RetryAttemptsTotal, RetryDelaySeconds,
		DedupHitsTotal, DedupMissesTotal, CircuitBreakerState, RateLimitRemaining)
}

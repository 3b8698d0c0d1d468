// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

package transport

import (
	"context"
	"errors"
	"time"

	gobreaker "github.com/sony/gobreaker/v2"

	"github.com/resonantlabs/harmonic/herrors"
	"github.com/resonantlabs/harmonic/internal/logging"
	"github.com/resonantlabs/harmonic/internal/metrics"
)

// CircuitBreakerSettings configures CircuitBreaker. Zero value yields the
// package defaults via DefaultCircuitBreakerSettings.
type CircuitBreakerSettings struct {
	// MaxHalfOpenRequests bounds concurrent probes while half-open.
	MaxHalfOpenRequests uint32
	// Interval is how often closed-state counts reset to zero.
	Interval time.Duration
	// Timeout is how long the breaker stays open before probing again.
	Timeout time.Duration
	// MinRequests is the minimum sample size before ReadyToTrip considers
	// failure ratio.
	MinRequests uint32
	// FailureRatio trips the breaker once reached with at least MinRequests.
	FailureRatio float64
}

// DefaultCircuitBreakerSettings mirrors conservative production defaults:
// trip at 60% failures over at least 10 requests, recover after 30s.
func DefaultCircuitBreakerSettings() CircuitBreakerSettings {
	return CircuitBreakerSettings{
		MaxHalfOpenRequests: 1,
		Interval:            time.Minute,
		Timeout:             30 * time.Second,
		MinRequests:         10,
		FailureRatio:        0.6,
	}
}

// CircuitBreaker wraps a Transport with an automatic offline kill-switch:
// once sustained transport failures trip the breaker, Do returns
// herrors.Offline immediately instead of re-dialing the API.
type CircuitBreaker struct {
	inner Transport
	cb    *gobreaker.CircuitBreaker[*Response]
}

// NewCircuitBreaker decorates inner with breaker behavior per settings.
func NewCircuitBreaker(inner Transport, settings CircuitBreakerSettings) *CircuitBreaker {
	if settings == (CircuitBreakerSettings{}) {
		settings = DefaultCircuitBreakerSettings()
	}
	name := "harmonic-transport"
	metrics.CircuitBreakerState.Set(0)

	cb := gobreaker.NewCircuitBreaker[*Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: settings.MaxHalfOpenRequests,
		Interval:    settings.Interval,
		Timeout:     settings.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < settings.MinRequests {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= settings.FailureRatio
		},
		OnStateChange: func(_ string, from, to gobreaker.State) {
			logging.Info().Str("from", stateToString(from)).Str("to", stateToString(to)).Msg("transport circuit breaker state change")
			metrics.CircuitBreakerState.Set(stateToFloat(to))
		},
	})

	return &CircuitBreaker{inner: inner, cb: cb}
}

// Do implements Transport. While the breaker is open, it returns
// herrors.Offline without invoking the wrapped Transport.
func (c *CircuitBreaker) Do(ctx context.Context, req Request) (*Response, error) {
	resp, err := c.cb.Execute(func() (*Response, error) {
		return c.inner.Do(ctx, req)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return nil, herrors.Offline
	}
	return resp, err
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}

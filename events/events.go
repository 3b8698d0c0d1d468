// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

// Package events is the client core's lifecycle event bus: token refresh
// start/success/failure, expiration warnings, and rate-limit telemetry.
// It is backed by watermill's in-process gochannel driver, the same
// publish/subscribe abstraction the teacher uses for its event pipeline,
// minus the durability machinery a client-side bus does not need.
package events

import (
	"context"
	"time"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"github.com/goccy/go-json"
	"github.com/google/uuid"
)

// Kind identifies a lifecycle event type. Kind doubles as the gochannel
// topic name.
type Kind string

const (
	KindTokenRefreshWillStart Kind = "token_refresh_will_start"
	KindTokenRefreshDidSucceed Kind = "token_refresh_did_succeed"
	KindTokenRefreshDidFail    Kind = "token_refresh_did_fail"
	KindTokenExpiring          Kind = "token_expiring"
	KindRateLimitInfo          Kind = "rate_limit_info"
)

// RefreshReason distinguishes an automatic refresh from a caller-forced one.
type RefreshReason string

const (
	ReasonAutomatic RefreshReason = "automatic"
	ReasonManual    RefreshReason = "manual"
)

// TokenRefreshWillStart precedes every refresh attempt, automatic or manual.
type TokenRefreshWillStart struct {
	Reason                RefreshReason `json:"reason"`
	SecondsUntilExpiration float64      `json:"seconds_until_expiration"`
}

// TokenRefreshDidSucceed carries the opaque new-token marker; the event bus
// does not know the Token Triple's shape, only that a refresh completed.
type TokenRefreshDidSucceed struct {
	NewTokenExpiresAt time.Time `json:"new_token_expires_at"`
}

// TokenRefreshDidFail reports a failed refresh attempt.
type TokenRefreshDidFail struct {
	Error string `json:"error"`
}

// TokenExpiring is a warning fired ahead of a token's actual expiration.
type TokenExpiring struct {
	SecondsUntilExpiration float64 `json:"seconds_until_expiration"`
}

// RateLimitInfo mirrors the rate-limit headers observed on a response, when
// the API reported them.
type RateLimitInfo struct {
	Limit     *int       `json:"limit,omitempty"`
	Remaining *int       `json:"remaining,omitempty"`
	ResetAt   *time.Time `json:"reset_at,omitempty"`
}

// Bus is the client core's observable event bus. The zero value is not
// usable; construct with NewBus.
type Bus struct {
	pub *gochannel.GoChannel
}

// NewBus constructs a Bus backed by a fresh in-process gochannel instance.
func NewBus(logger watermill.LoggerAdapter) *Bus {
	if logger == nil {
		logger = watermill.NopLogger{}
	}
	return &Bus{pub: gochannel.NewGoChannel(gochannel.Config{}, logger)}
}

// Close releases the underlying gochannel resources. Safe to call once.
func (b *Bus) Close() error { return b.pub.Close() }

// publish marshals payload and publishes it best-effort under kind. A
// publish error is swallowed by design: observer failure, including bus
// unavailability, must never affect request completion (spec §4.8).
func (b *Bus) publish(kind Kind, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	msg := message.NewMessage(uuid.New().String(), data)
	_ = b.pub.Publish(string(kind), msg)
}

// PublishTokenRefreshWillStart emits a TokenRefreshWillStart event.
func (b *Bus) PublishTokenRefreshWillStart(e TokenRefreshWillStart) { b.publish(KindTokenRefreshWillStart, e) }

// PublishTokenRefreshDidSucceed emits a TokenRefreshDidSucceed event.
func (b *Bus) PublishTokenRefreshDidSucceed(e TokenRefreshDidSucceed) { b.publish(KindTokenRefreshDidSucceed, e) }

// PublishTokenRefreshDidFail emits a TokenRefreshDidFail event.
func (b *Bus) PublishTokenRefreshDidFail(e TokenRefreshDidFail) { b.publish(KindTokenRefreshDidFail, e) }

// PublishTokenExpiring emits a TokenExpiring event.
func (b *Bus) PublishTokenExpiring(e TokenExpiring) { b.publish(KindTokenExpiring, e) }

// PublishRateLimitInfo emits a RateLimitInfo event.
func (b *Bus) PublishRateLimitInfo(e RateLimitInfo) { b.publish(KindRateLimitInfo, e) }

// Subscription is an active observer registration. Cancel stops delivery
// and releases the underlying subscriber; it is safe to call more than
// once.
type Subscription struct {
	cancel context.CancelFunc
}

// Cancel unregisters the observer.
func (s *Subscription) Cancel() {
	if s.cancel != nil {
		s.cancel()
	}
}

// Subscribe registers handler to be invoked for every event of kind,
// delivered on a dedicated goroutine. Handler panics and errors are
// swallowed so one misbehaving observer cannot affect another or the
// request path that triggered the event.
func (b *Bus) Subscribe(kind Kind, handler func(data []byte)) *Subscription {
	ctx, cancel := context.WithCancel(context.Background())
	messages, err := b.pub.Subscribe(ctx, string(kind))
	if err != nil {
		cancel()
		return &Subscription{cancel: func() {}}
	}

	go func() {
		for msg := range messages {
			func() {
				defer func() { recover() }()
				handler(msg.Payload)
			}()
			msg.Ack()
		}
	}()

	return &Subscription{cancel: cancel}
}

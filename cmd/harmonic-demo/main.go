// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

// Package main is a runnable demonstration of the harmonic client core: it
// wires configuration, a Client Credentials grant, a file-backed token
// store, and the circuit-breaker-decorated transport, then dispatches one
// descriptor (acquiring a token along the way) and prints the decoded
// result. It does not subscribe to the event bus.
//
// # Configuration
//
// Configuration is loaded via Koanf v2 with layered sources (highest
// priority wins):
//   - Environment variables, prefixed HARMONIC_ (see config.EnvPrefix)
//   - A config.yaml file, if HARMONIC_CONFIG_FILE names one
//   - Built-in defaults (config.Defaults)
//
// # Example Usage
//
//	export HARMONIC_CLIENT_ID=your-client-id
//	export HARMONIC_CLIENT_SECRET=your-client-secret
//	go run ./cmd/harmonic-demo
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/goccy/go-json"

	"github.com/resonantlabs/harmonic"
	"github.com/resonantlabs/harmonic/auth"
	"github.com/resonantlabs/harmonic/config"
	"github.com/resonantlabs/harmonic/internal/logging"
	"github.com/resonantlabs/harmonic/request"
	"github.com/resonantlabs/harmonic/transport"
)

func main() {
	logging.Init(logging.Config{Level: envOr("HARMONIC_LOG_LEVEL", "info"), Format: "console"})

	cfg, err := config.Load(os.Getenv("HARMONIC_CONFIG_FILE"))
	if err != nil {
		fatal("loading configuration", err)
	}

	clientID := envOr("HARMONIC_CLIENT_ID", "demo-client-id")
	clientSecret := envOr("HARMONIC_CLIENT_SECRET", "demo-client-secret")
	grant := auth.NewClientCredentialsGrant(clientID, clientSecret, []string{"library-read"})

	tokenPath := envOr("HARMONIC_TOKEN_PATH", "./harmonic-token.bin")
	store := auth.NewFileTokenStore(tokenPath, tokenKeyFromEnv())

	client, closeBus, err := harmonic.NewDefault(
		grant,
		harmonic.WithConfiguration(cfg),
		harmonic.WithTokenStore(store),
		harmonic.WithCircuitBreaker(transport.DefaultCircuitBreakerSettings()),
	)
	if err != nil {
		fatal("constructing client", err)
	}
	defer closeBus()

	client.Use(func(req *harmonic.PreparedRequest) error {
		req.Header.Set("User-Agent", "harmonic-demo/1.0")
		return nil
	})

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	d := request.New("GET", "/me").Idempotent()
	d = request.Decode(d, func(body []byte) (map[string]any, error) {
		var profile map[string]any
		err := json.Unmarshal(body, &profile)
		return profile, err
	})

	result, err := client.Do(ctx, d.Build())
	if err != nil {
		fatal("dispatching request", err)
	}

	fmt.Printf("profile: %v\n", result)
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func tokenKeyFromEnv() [32]byte {
	var key [32]byte
	copy(key[:], os.Getenv("HARMONIC_TOKEN_KEY"))
	return key
}

func fatal(step string, err error) {
	fmt.Fprintf(os.Stderr, "harmonic-demo: %s: %v\n", step, err)
	os.Exit(1)
}

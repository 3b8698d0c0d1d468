// harmonic - Go client core for a third-party music-service HTTP API
// Copyright 2026 The Harmonic Authors
// SPDX-License-Identifier: MIT
// https://github.com/resonantlabs/harmonic

package auth

import (
	"context"
	"encoding/base64"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"

	"github.com/resonantlabs/harmonic/events"
	"github.com/resonantlabs/harmonic/herrors"
	"github.com/resonantlabs/harmonic/internal/metrics"
	"github.com/resonantlabs/harmonic/transport"
)

// Endpoints is the pair of accounts-host URLs the Auth Backend talks to.
// TokenURL is form-encoded request / JSON response for every grant and
// refresh call; AuthorizeURL is the PKCE/AuthCode browser redirect target.
type Endpoints struct {
	AuthorizeURL string
	TokenURL     string
}

// DefaultEndpoints returns the service's official accounts host.
func DefaultEndpoints() Endpoints {
	return Endpoints{
		AuthorizeURL: "https://accounts.example-music-service.com/authorize",
		TokenURL:     "https://accounts.example-music-service.com/api/token",
	}
}

type tokenResponse struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	ExpiresIn    int    `json:"expires_in"`
	RefreshToken string `json:"refresh_token"`
	Scope        string `json:"scope"`
}

func (r tokenResponse) toToken(now time.Time) Token {
	return Token{
		AccessToken:  r.AccessToken,
		RefreshToken: r.RefreshToken,
		ExpiresAt:    now.Add(time.Duration(r.ExpiresIn) * time.Second),
		Scope:        r.Scope,
		TokenType:    r.TokenType,
	}
}

// Backend implements the Auth Backend (C3): per-flow token acquisition and
// refresh, coalesced under concurrency, owning the Token Store.
type Backend struct {
	grant     GrantConfig
	endpoints Endpoints
	store     TokenStore
	transport transport.Transport
	bus       *events.Bus

	mu    sync.Mutex
	token *Token

	coalesceMu sync.Mutex
	coalesce   map[string]*coalescedRefresh

	pkceMu sync.Mutex
	pkce   map[string]PKCEPair
}

type coalescedRefresh struct {
	done  chan struct{}
	token Token
	err   error
}

// NewBackend constructs a Backend for grant, persisting tokens via store and
// calling the token endpoint through tr. bus may be nil to disable event
// emission.
func NewBackend(grant GrantConfig, endpoints Endpoints, store TokenStore, tr transport.Transport, bus *events.Bus) *Backend {
	return &Backend{
		grant:     grant,
		endpoints: endpoints,
		store:     store,
		transport: tr,
		bus:       bus,
		coalesce:  make(map[string]*coalescedRefresh),
		pkce:      make(map[string]PKCEPair),
	}
}

// LoadPersistedTokens loads whatever token the store holds, for startup and
// tests. It does not validate expiry.
func (b *Backend) LoadPersistedTokens() (*Token, error) {
	tok, err := b.store.Load()
	if err != nil {
		return nil, err
	}
	b.mu.Lock()
	b.token = tok
	b.mu.Unlock()
	return tok, nil
}

// Clear discards the cached and persisted token, returning the backend to
// Uninitialized.
func (b *Backend) Clear() error {
	b.mu.Lock()
	b.token = nil
	b.mu.Unlock()
	return b.store.Clear()
}

// BuildAuthorizationURL constructs the browser-redirect URL for PKCE or
// AuthorizationCode flows and registers the PKCE pair for later callback
// verification (for AuthorizationCode only the pair's state is used).
func (b *Backend) BuildAuthorizationURL(showDialog bool) (string, error) {
	pair, err := NewPKCEPair()
	if err != nil {
		return "", err
	}

	b.pkceMu.Lock()
	b.pkce[pair.State] = pair
	b.pkceMu.Unlock()

	params := url.Values{}
	params.Set("response_type", "code")
	params.Set("client_id", b.grant.ClientID)
	params.Set("redirect_uri", b.grant.RedirectURI)
	params.Set("scope", strings.Join(b.grant.Scopes, " "))
	params.Set("state", pair.State)
	if showDialog {
		params.Set("show_dialog", "true")
	}
	if b.grant.Flow == FlowPKCE {
		params.Set("code_challenge", pair.Challenge)
		params.Set("code_challenge_method", "S256")
	}

	return b.endpoints.AuthorizeURL + "?" + params.Encode(), nil
}

// HandleCallback parses the authorization redirect's query string, verifies
// state, and exchanges the code at the token endpoint.
func (b *Backend) HandleCallback(ctx context.Context, callbackURL string) (Token, error) {
	u, err := url.Parse(callbackURL)
	if err != nil {
		return Token{}, &herrors.AuthFailure{Kind: herrors.KindInvalidCallback}
	}
	q := u.Query()

	if errCode := q.Get("error"); errCode != "" {
		return Token{}, &herrors.AuthFailure{Kind: herrors.KindAuthorizationDenied, Code: errCode, Description: q.Get("error_description")}
	}

	state := q.Get("state")
	b.pkceMu.Lock()
	pair, ok := b.pkce[state]
	if ok {
		delete(b.pkce, state)
	}
	b.pkceMu.Unlock()
	if !ok {
		return Token{}, &herrors.AuthFailure{Kind: herrors.KindInvalidCallback}
	}

	code := q.Get("code")

	form := url.Values{}
	form.Set("grant_type", "authorization_code")
	form.Set("code", code)
	form.Set("redirect_uri", b.grant.RedirectURI)

	var basicAuth string
	if b.grant.Flow == FlowPKCE {
		form.Set("client_id", b.grant.ClientID)
		form.Set("code_verifier", pair.Verifier)
	} else if b.grant.requiresClientSecret() {
		basicAuth = b.basicAuthHeader()
	}

	tok, err := b.requestToken(ctx, form, basicAuth)
	if err != nil {
		return Token{}, err
	}

	if err := b.persist(tok); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// ClientCredentials acquires a token via the ClientCredentials flow.
func (b *Backend) ClientCredentials(ctx context.Context) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "client_credentials")

	tok, err := b.requestToken(ctx, form, b.basicAuthHeader())
	if err != nil {
		return Token{}, err
	}
	if err := b.persist(tok); err != nil {
		return Token{}, err
	}
	return tok, nil
}

// AccessToken returns a non-expired token, refreshing if necessary.
// invalidatePrevious forces a refresh even if the cached token looks valid,
// used by the Retry Engine after a 401.
func (b *Backend) AccessToken(ctx context.Context, invalidatePrevious bool) (Token, error) {
	b.mu.Lock()
	cached := b.token
	b.mu.Unlock()

	if cached == nil {
		if loaded, err := b.store.Load(); err == nil && loaded != nil {
			cached = loaded
			b.mu.Lock()
			b.token = loaded
			b.mu.Unlock()
		}
	}

	if !invalidatePrevious && cached != nil && !cached.Expired(time.Now()) {
		return *cached, nil
	}

	if cached == nil || cached.RefreshToken == "" {
		if b.grant.Flow == FlowClientCredentials {
			return b.ClientCredentials(ctx)
		}
		return Token{}, &herrors.AuthFailure{Kind: herrors.KindMissingRefreshToken}
	}

	return b.refreshCoalesced(ctx, cached.RefreshToken)
}

// refreshCoalesced ensures at most one outbound refresh HTTP request is in
// flight per (flow, refresh_token); concurrent callers await the same
// result.
func (b *Backend) refreshCoalesced(ctx context.Context, refreshToken string) (Token, error) {
	key := b.grant.Flow.String() + ":" + refreshToken

	b.coalesceMu.Lock()
	if existing, ok := b.coalesce[key]; ok {
		b.coalesceMu.Unlock()
		<-existing.done
		return existing.token, existing.err
	}

	call := &coalescedRefresh{done: make(chan struct{})}
	b.coalesce[key] = call
	b.coalesceMu.Unlock()

	b.emitWillStart()
	tok, err := b.doRefresh(context.WithoutCancel(ctx), refreshToken)

	b.coalesceMu.Lock()
	delete(b.coalesce, key)
	b.coalesceMu.Unlock()

	call.token, call.err = tok, err
	close(call.done)

	if err != nil {
		b.emitDidFail(err)
		metrics.TokenRefreshTotal.WithLabelValues(b.grant.Flow.String(), "failure").Inc()
		return Token{}, err
	}
	b.emitDidSucceed(tok)
	metrics.TokenRefreshTotal.WithLabelValues(b.grant.Flow.String(), "success").Inc()
	return tok, nil
}

func (b *Backend) doRefresh(ctx context.Context, refreshToken string) (Token, error) {
	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("refresh_token", refreshToken)

	var basicAuth string
	if b.grant.Flow == FlowPKCE {
		form.Set("client_id", b.grant.ClientID)
	} else if b.grant.requiresClientSecret() {
		basicAuth = b.basicAuthHeader()
	}

	tok, err := b.requestToken(ctx, form, basicAuth)
	if err != nil {
		return Token{}, err
	}
	if tok.RefreshToken == "" {
		tok.RefreshToken = refreshToken // many token endpoints omit an unchanged refresh token
	}
	if err := b.persist(tok); err != nil {
		return Token{}, err
	}
	return tok, nil
}

func (b *Backend) persist(tok Token) error {
	b.mu.Lock()
	b.token = &tok
	b.mu.Unlock()
	if err := b.store.Save(tok); err != nil {
		return &herrors.TokenStorageError{Cause: err}
	}
	return nil
}

func (b *Backend) basicAuthHeader() string {
	creds := b.grant.ClientID + ":" + b.grant.ClientSecret
	return "Basic " + base64.StdEncoding.EncodeToString([]byte(creds))
}

func (b *Backend) requestToken(ctx context.Context, form url.Values, basicAuth string) (Token, error) {
	headers := http.Header{}
	headers.Set("Content-Type", "application/x-www-form-urlencoded")
	headers.Set("Accept", "application/json")
	if basicAuth != "" {
		headers.Set("Authorization", basicAuth)
	}

	resp, err := b.transport.Do(ctx, transport.Request{
		Method:  http.MethodPost,
		URL:     b.endpoints.TokenURL,
		Headers: headers,
		Body:    strings.NewReader(form.Encode()),
	})
	if err != nil {
		return Token{}, &herrors.NetworkFailure{Detail: err}
	}
	if resp.Status < 200 || resp.Status >= 300 {
		return Token{}, &herrors.AuthFailure{Kind: herrors.KindTokenEndpointHTTP, Status: resp.Status, Body: resp.Body}
	}

	var tr tokenResponse
	if err := json.Unmarshal(resp.Body, &tr); err != nil {
		return Token{}, &herrors.UnexpectedResponse{Cause: err}
	}
	if tr.TokenType == "" {
		tr.TokenType = "Bearer"
	}
	return tr.toToken(time.Now()), nil
}

func (b *Backend) emitWillStart() {
	if b.bus == nil {
		return
	}
	b.bus.PublishTokenRefreshWillStart(events.TokenRefreshWillStart{Reason: events.ReasonAutomatic})
}

func (b *Backend) emitDidSucceed(tok Token) {
	if b.bus == nil {
		return
	}
	b.bus.PublishTokenRefreshDidSucceed(events.TokenRefreshDidSucceed{NewTokenExpiresAt: tok.ExpiresAt})
}

func (b *Backend) emitDidFail(err error) {
	if b.bus == nil {
		return
	}
	b.bus.PublishTokenRefreshDidFail(events.TokenRefreshDidFail{Error: err.Error()})
}

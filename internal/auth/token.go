package auth

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"sync"
	"time"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
	"golang.org/x/sync/singleflight"
)

// State is the lifecycle state of the cached credential.
type State int

const (
	// StateUnset means no credential has been obtained yet.
	StateUnset State = iota
	// StateValid means the cached credential can be used.
	StateValid
	// StateExpired means the cached credential must be refreshed before use.
	StateExpired
)

func (s State) String() string {
	switch s {
	case StateValid:
		return "valid"
	case StateExpired:
		return "expired"
	default:
		return "unset"
	}
}

type credential struct {
	token     string
	expiresAt time.Time
}

// TokenManager obtains and caches a client-credentials bearer token.
// It is safe for concurrent use; concurrent callers that find no usable token
// share a single exchange with the token endpoint.
type TokenManager struct {
	exchange   *clientcredentials.Config
	httpClient *http.Client
	now        func() time.Time

	mu   sync.RWMutex
	cred *credential

	refreshes singleflight.Group
}

// Option configures a TokenManager.
type Option func(*TokenManager)

// WithHTTPClient sets the HTTP client used for the token exchange.
func WithHTTPClient(c *http.Client) Option {
	return func(m *TokenManager) {
		m.httpClient = c
	}
}

// WithClock replaces the time source used for expiry decisions.
func WithClock(now func() time.Time) Option {
	return func(m *TokenManager) {
		if now != nil {
			m.now = now
		}
	}
}

// NewTokenManager creates a TokenManager. No network call is made until the
// first Token request. Returns ErrMissingCredentials if cfg lacks a client id
// or secret.
func NewTokenManager(cfg Config, opts ...Option) (*TokenManager, error) {
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	m := &TokenManager{
		exchange: &clientcredentials.Config{
			ClientID:     cfg.ClientID,
			ClientSecret: cfg.ClientSecret,
			TokenURL:     cfg.tokenURL(),
			AuthStyle:    oauth2.AuthStyleInHeader,
		},
		now: time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Token returns a bearer token, exchanging client credentials when the cache
// is unset or expired. Exchange failures wrap ErrAuthentication and are not
// retried.
func (m *TokenManager) Token(ctx context.Context) (string, error) {
	if token, ok := m.cached(); ok {
		return token, nil
	}

	// The shared exchange outlives any single caller; each caller only stops
	// waiting when its own context is done.
	ch := m.refreshes.DoChan("token", func() (any, error) {
		// Another caller may have refreshed while we waited on the group.
		if token, ok := m.cached(); ok {
			return token, nil
		}

		ctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), RefreshTimeout)
		defer cancel()
		return m.refresh(ctx)
	})

	select {
	case <-ctx.Done():
		return "", ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return "", res.Err
		}
		return res.Val.(string), nil
	}
}

// State reports the current credential state.
func (m *TokenManager) State() State {
	m.mu.RLock()
	defer m.mu.RUnlock()

	switch {
	case m.cred == nil:
		return StateUnset
	case m.now().Before(m.cred.expiresAt):
		return StateValid
	default:
		return StateExpired
	}
}

// Invalidate marks the cached credential as expired so the next Token call
// performs a fresh exchange. Used when the provider rejects a token early.
func (m *TokenManager) Invalidate() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.cred != nil {
		m.cred.expiresAt = time.Time{}
	}
}

func (m *TokenManager) cached() (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	if m.cred == nil || !m.now().Before(m.cred.expiresAt) {
		return "", false
	}
	return m.cred.token, true
}

func (m *TokenManager) refresh(ctx context.Context) (string, error) {
	if m.httpClient != nil {
		ctx = context.WithValue(ctx, oauth2.HTTPClient, m.httpClient)
	}

	issuedAt := m.now()
	tok, err := m.exchange.Token(ctx)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrAuthentication, err)
	}
	if tok.AccessToken == "" {
		return "", fmt.Errorf("%w: token endpoint returned an empty access token", ErrAuthentication)
	}

	cred := &credential{
		token:     tok.AccessToken,
		expiresAt: issuedAt.Add(lifetime(tok) - ExpiryBuffer),
	}

	m.mu.Lock()
	m.cred = cred
	m.mu.Unlock()

	return cred.token, nil
}

// lifetime returns the provider-reported token lifetime. It prefers the raw
// expires_in field and falls back to the absolute expiry computed by oauth2.
// A token without either is treated as already expired.
func lifetime(tok *oauth2.Token) time.Duration {
	switch v := tok.Extra("expires_in").(type) {
	case float64:
		return time.Duration(v) * time.Second
	case int64:
		return time.Duration(v) * time.Second
	case string:
		if secs, err := strconv.ParseInt(v, 10, 64); err == nil {
			return time.Duration(secs) * time.Second
		}
	}

	if !tok.Expiry.IsZero() {
		return time.Until(tok.Expiry)
	}
	return 0
}

// Package auth manages the credential lifecycle: the cached access token,
// the mutable refresh token, and the refresh flow against the sign-in
// endpoint.
package auth

import (
	"sync"
	"time"

	"github.com/fivetwenty-io/tradestation-client/internal/constants"
)

// Token holds an access token and its refresh state. The JSON tags match
// the sign-in endpoint's token response.
type Token struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type,omitempty"`
	RefreshToken string `json:"refresh_token,omitempty"`
	ExpiresIn    int    `json:"expires_in,omitempty"`
	Scope        string `json:"scope,omitempty"`

	// ExpiresAt is the absolute expiry computed from ExpiresIn when the
	// token was received.
	ExpiresAt time.Time `json:"-"`
}

// Valid reports whether the token is usable for at least the expiry skew
// before it expires. A token without an expiry never goes stale here.
func (t *Token) Valid() bool {
	if t == nil || t.AccessToken == "" {
		return false
	}

	if t.ExpiresAt.IsZero() {
		return true
	}

	return time.Now().Add(constants.TokenExpirySkew).Before(t.ExpiresAt)
}

// TokenStore holds the current token with atomic swap semantics.
type TokenStore struct {
	mu    sync.RWMutex
	token *Token
}

// NewTokenStore creates an empty token store.
func NewTokenStore() *TokenStore {
	return &TokenStore{}
}

// Get returns the current token, or nil.
func (s *TokenStore) Get() *Token {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.token
}

// Set replaces the current token.
func (s *TokenStore) Set(token *Token) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = token
}

// Clear removes the current token.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.token = nil
}

package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/fivetwenty-io/tradestation-client/internal/constants"
	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
	"golang.org/x/sync/singleflight"
)

// TokenManager provides valid access tokens for API requests.
type TokenManager interface {
	// GetToken returns an access token valid for at least the expiry
	// skew, refreshing it when needed.
	GetToken(ctx context.Context) (string, error)

	// RefreshToken forces a refresh regardless of the cached token.
	RefreshToken(ctx context.Context) error

	// RefreshTokenValue returns the current refresh token for external
	// persistence.
	RefreshTokenValue() string

	// SetToken manually seeds the cached access token.
	SetToken(token string, expiresAt time.Time)
}

// OAuth2Config configures the refresh-token grant.
type OAuth2Config struct {
	// TokenURL is the sign-in token endpoint.
	TokenURL string
	// ClientID is the OAuth2 client ID. Required.
	ClientID string
	// ClientSecret is sent only when non-empty (confidential clients).
	ClientSecret string
	// RefreshToken is the initial refresh token. The server may rotate
	// it on each refresh; the manager tracks the current value.
	RefreshToken string
}

// OAuth2TokenManager implements TokenManager with the refresh_token grant.
//
// Refreshes are single-flight: concurrent callers that find the cached
// token stale share one refresh call and all observe its result. Duplicate
// concurrent refreshes would race the server-side refresh token rotation
// and invalidate one of the tokens.
type OAuth2TokenManager struct {
	config     *OAuth2Config
	store      *TokenStore
	httpClient *http.Client

	group singleflight.Group

	// mu guards the mutable refresh token in config.
	mu sync.RWMutex
}

// NewOAuth2TokenManager creates a new OAuth2 token manager.
func NewOAuth2TokenManager(config *OAuth2Config) *OAuth2TokenManager {
	return &OAuth2TokenManager{
		config: config,
		store:  NewTokenStore(),
		httpClient: &http.Client{
			Timeout: constants.DefaultHTTPTimeout,
		},
	}
}

// GetToken returns a valid access token, refreshing if necessary. A caller
// whose context expires abandons the wait; the refresh itself runs to
// completion so other waiters still observe its result.
func (m *OAuth2TokenManager) GetToken(ctx context.Context) (string, error) {
	if token := m.store.Get(); token.Valid() {
		return token.AccessToken, nil
	}

	ch := m.group.DoChan("refresh", func() (interface{}, error) {
		return m.refresh(context.WithoutCancel(ctx))
	})

	select {
	case result := <-ch:
		if result.Err != nil {
			return "", result.Err
		}

		token, ok := result.Val.(*Token)
		if !ok {
			return "", constants.ErrFailedRetrieveToken
		}

		return token.AccessToken, nil
	case <-ctx.Done():
		return "", fmt.Errorf("waiting for token refresh: %w", ctx.Err())
	}
}

// RefreshToken forces a token refresh.
func (m *OAuth2TokenManager) RefreshToken(ctx context.Context) error {
	_, err, _ := m.group.Do("refresh", func() (interface{}, error) {
		return m.refresh(context.WithoutCancel(ctx))
	})

	return err
}

// RefreshTokenValue returns the refresh token currently in use. The stored
// value survives refresh failures so it stays available for diagnostics
// and persistence.
func (m *OAuth2TokenManager) RefreshTokenValue() string {
	m.mu.RLock()
	defer m.mu.RUnlock()

	return m.config.RefreshToken
}

// SetToken manually sets the access token.
func (m *OAuth2TokenManager) SetToken(token string, expiresAt time.Time) {
	m.store.Set(&Token{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
	})
}

// refresh performs one refresh_token grant and atomically swaps the cached
// token and, on rotation, the stored refresh token.
func (m *OAuth2TokenManager) refresh(ctx context.Context) (*Token, error) {
	m.mu.RLock()
	refreshToken := m.config.RefreshToken
	m.mu.RUnlock()

	if refreshToken == "" {
		return nil, &ts.APIError{
			Kind:    ts.ErrorKindAuth,
			Message: constants.ErrNoRefreshToken.Error(),
		}
	}

	if m.config.ClientID == "" {
		return nil, &ts.APIError{
			Kind:    ts.ErrorKindAuth,
			Message: constants.ErrNoClientID.Error(),
		}
	}

	form := url.Values{}
	form.Set("grant_type", "refresh_token")
	form.Set("client_id", m.config.ClientID)
	form.Set("refresh_token", refreshToken)

	if m.config.ClientSecret != "" {
		form.Set("client_secret", m.config.ClientSecret)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, m.config.TokenURL, strings.NewReader(form.Encode()))
	if err != nil {
		return nil, &ts.APIError{
			Kind:    ts.ErrorKindAuth,
			Message: fmt.Sprintf("creating token request: %v", err),
		}
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := m.httpClient.Do(req)
	if err != nil {
		// Transport failure during refresh is fatal for this call; the
		// stored refresh token is untouched.
		return nil, &ts.APIError{
			Kind:    ts.ErrorKindAuth,
			Message: fmt.Sprintf("token refresh request failed: %v", err),
		}
	}

	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &ts.APIError{
			Kind:       ts.ErrorKindAuth,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("reading token response: %v", err),
		}
	}

	if resp.StatusCode != http.StatusOK {
		return nil, tokenErrorFromResponse(resp.StatusCode, body)
	}

	var token Token

	err = json.Unmarshal(body, &token)
	if err != nil {
		return nil, &ts.APIError{
			Kind:       ts.ErrorKindAuth,
			StatusCode: resp.StatusCode,
			Message:    fmt.Sprintf("parsing token response: %v", err),
			Snippet:    snippet(body),
		}
	}

	if token.AccessToken == "" {
		return nil, &ts.APIError{
			Kind:       ts.ErrorKindAuth,
			StatusCode: resp.StatusCode,
			Message:    "token response contained no access token",
			Snippet:    snippet(body),
		}
	}

	if token.ExpiresIn > 0 {
		token.ExpiresAt = time.Now().Add(time.Duration(token.ExpiresIn) * time.Second)
	}

	// The server may rotate the refresh token; subsequent refreshes are
	// rejected unless the rotated value replaces the old one.
	if token.RefreshToken != "" && token.RefreshToken != refreshToken {
		m.mu.Lock()
		m.config.RefreshToken = token.RefreshToken
		m.mu.Unlock()
	}

	m.store.Set(&token)

	return &token, nil
}

// tokenErrorFromResponse maps a non-200 sign-in response to an auth error.
func tokenErrorFromResponse(statusCode int, body []byte) error {
	var oauthErr struct {
		Error            string `json:"error"`
		ErrorDescription string `json:"error_description"`
	}

	message := fmt.Sprintf("token refresh rejected with status %d", statusCode)

	if json.Unmarshal(body, &oauthErr) == nil && oauthErr.Error != "" {
		message = oauthErr.Error
		if oauthErr.ErrorDescription != "" {
			message += ": " + oauthErr.ErrorDescription
		}
	}

	return &ts.APIError{
		Kind:       ts.ErrorKindAuth,
		StatusCode: statusCode,
		Message:    message,
		Snippet:    snippet(body),
	}
}

const maxSnippetLen = 512

// snippet bounds a raw response body for inclusion in errors.
func snippet(body []byte) string {
	if len(body) > maxSnippetLen {
		return string(body[:maxSnippetLen])
	}

	return string(body)
}

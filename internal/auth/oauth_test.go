package auth

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
)

func TestOAuth2TokenManager_GetToken(t *testing.T) {
	t.Run("returns cached valid token without refreshing", func(t *testing.T) {
		var requests atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL,
			ClientID:     "client-id",
			RefreshToken: "refresh-token",
		})
		manager.SetToken("cached-token", time.Now().Add(time.Hour))

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "cached-token", token)
		assert.Equal(t, int32(0), requests.Load())
	})

	t.Run("refreshes when no token is cached", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, http.MethodPost, r.Method)
			assert.Equal(t, "application/x-www-form-urlencoded", r.Header.Get("Content-Type"))

			err := r.ParseForm()
			require.NoError(t, err)
			assert.Equal(t, "refresh_token", r.Form.Get("grant_type"))
			assert.Equal(t, "client-id", r.Form.Get("client_id"))
			assert.Equal(t, "initial-refresh", r.Form.Get("refresh_token"))
			assert.Empty(t, r.Form.Get("client_secret"))

			_ = json.NewEncoder(w).Encode(Token{
				AccessToken: "new-access-token",
				TokenType:   "bearer",
				ExpiresIn:   1200,
			})
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL,
			ClientID:     "client-id",
			RefreshToken: "initial-refresh",
		})

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "new-access-token", token)
	})

	t.Run("refreshes when the cached token is inside the skew", func(t *testing.T) {
		server := newTokenServer(t, "fresh-token", "")
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL,
			ClientID:     "client-id",
			RefreshToken: "refresh-token",
		})
		manager.SetToken("stale-token", time.Now().Add(time.Minute))

		token, err := manager.GetToken(context.Background())
		require.NoError(t, err)
		assert.Equal(t, "fresh-token", token)
	})

	t.Run("sends client secret when configured", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())
			assert.Equal(t, "client-secret", r.Form.Get("client_secret"))

			_ = json.NewEncoder(w).Encode(Token{AccessToken: "token", ExpiresIn: 1200})
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL,
			ClientID:     "client-id",
			ClientSecret: "client-secret",
			RefreshToken: "refresh-token",
		})

		_, err := manager.GetToken(context.Background())
		require.NoError(t, err)
	})

	t.Run("coalesces concurrent refreshes into one call", func(t *testing.T) {
		var requests atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
			time.Sleep(50 * time.Millisecond)

			_ = json.NewEncoder(w).Encode(Token{AccessToken: "shared-token", ExpiresIn: 1200})
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL,
			ClientID:     "client-id",
			RefreshToken: "refresh-token",
		})

		var waitGroup sync.WaitGroup

		for i := 0; i < 10; i++ {
			waitGroup.Add(1)

			go func() {
				defer waitGroup.Done()

				token, err := manager.GetToken(context.Background())
				assert.NoError(t, err)
				assert.Equal(t, "shared-token", token)
			}()
		}

		waitGroup.Wait()
		assert.Equal(t, int32(1), requests.Load())
	})

	t.Run("canceled caller abandons the wait but refresh completes", func(t *testing.T) {
		started := make(chan struct{})

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			close(started)
			time.Sleep(100 * time.Millisecond)

			_ = json.NewEncoder(w).Encode(Token{AccessToken: "late-token", ExpiresIn: 1200})
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL,
			ClientID:     "client-id",
			RefreshToken: "refresh-token",
		})

		ctx, cancel := context.WithCancel(context.Background())

		go func() {
			<-started
			cancel()
		}()

		_, err := manager.GetToken(ctx)
		require.Error(t, err)
		require.ErrorIs(t, err, context.Canceled)

		// The in-flight refresh is not cancellable; its result lands in
		// the store for the next caller.
		assert.Eventually(t, func() bool {
			token := manager.store.Get()

			return token != nil && token.AccessToken == "late-token"
		}, time.Second, 10*time.Millisecond)
	})
}

func TestOAuth2TokenManager_Rotation(t *testing.T) {
	t.Run("adopts a rotated refresh token", func(t *testing.T) {
		var calls atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			require.NoError(t, r.ParseForm())

			switch calls.Add(1) {
			case 1:
				assert.Equal(t, "first-refresh", r.Form.Get("refresh_token"))
				_ = json.NewEncoder(w).Encode(Token{
					AccessToken:  "token-1",
					RefreshToken: "second-refresh",
					ExpiresIn:    1200,
				})
			default:
				assert.Equal(t, "second-refresh", r.Form.Get("refresh_token"))
				_ = json.NewEncoder(w).Encode(Token{AccessToken: "token-2", ExpiresIn: 1200})
			}
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL,
			ClientID:     "client-id",
			RefreshToken: "first-refresh",
		})

		require.NoError(t, manager.RefreshToken(context.Background()))
		assert.Equal(t, "second-refresh", manager.RefreshTokenValue())

		require.NoError(t, manager.RefreshToken(context.Background()))
		assert.Equal(t, "second-refresh", manager.RefreshTokenValue())
	})

	t.Run("keeps the refresh token when the response omits one", func(t *testing.T) {
		server := newTokenServer(t, "token", "")
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL,
			ClientID:     "client-id",
			RefreshToken: "stable-refresh",
		})

		require.NoError(t, manager.RefreshToken(context.Background()))
		assert.Equal(t, "stable-refresh", manager.RefreshTokenValue())
	})
}

func TestOAuth2TokenManager_RefreshFailures(t *testing.T) {
	t.Run("server rejection surfaces as auth error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":"invalid_grant","error_description":"refresh token revoked"}`))
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL,
			ClientID:     "client-id",
			RefreshToken: "revoked-refresh",
		})

		_, err := manager.GetToken(context.Background())
		require.Error(t, err)
		assert.True(t, ts.IsAuthError(err))

		apiErr := &ts.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, http.StatusBadRequest, apiErr.StatusCode)
		assert.Contains(t, apiErr.Message, "invalid_grant")
		assert.Contains(t, apiErr.Snippet, "refresh token revoked")

		// The stored refresh token survives the failure.
		assert.Equal(t, "revoked-refresh", manager.RefreshTokenValue())
	})

	t.Run("missing refresh token", func(t *testing.T) {
		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL: "http://localhost:0",
			ClientID: "client-id",
		})

		_, err := manager.GetToken(context.Background())
		require.Error(t, err)
		assert.True(t, ts.IsAuthError(err))
	})

	t.Run("missing client id", func(t *testing.T) {
		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     "http://localhost:0",
			RefreshToken: "refresh-token",
		})

		_, err := manager.GetToken(context.Background())
		require.Error(t, err)
		assert.True(t, ts.IsAuthError(err))
	})

	t.Run("response without access token", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(`{"token_type":"bearer"}`))
		}))
		defer server.Close()

		manager := NewOAuth2TokenManager(&OAuth2Config{
			TokenURL:     server.URL,
			ClientID:     "client-id",
			RefreshToken: "refresh-token",
		})

		_, err := manager.GetToken(context.Background())
		require.Error(t, err)
		assert.True(t, ts.IsAuthError(err))
	})
}

// newTokenServer returns a sign-in stub that always succeeds.
func newTokenServer(t *testing.T, accessToken, refreshToken string) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewEncoder(w).Encode(Token{
			AccessToken:  accessToken,
			RefreshToken: refreshToken,
			TokenType:    "bearer",
			ExpiresIn:    1200,
		})
	}))
}

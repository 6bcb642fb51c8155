package http

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
)

// stubTokenManager returns a fixed token, or an error when set.
type stubTokenManager struct {
	token string
	err   error
	calls atomic.Int32
}

func (m *stubTokenManager) GetToken(_ context.Context) (string, error) {
	m.calls.Add(1)

	if m.err != nil {
		return "", m.err
	}

	return m.token, nil
}

func (m *stubTokenManager) RefreshToken(_ context.Context) error { return m.err }
func (m *stubTokenManager) RefreshTokenValue() string            { return "refresh-token" }
func (m *stubTokenManager) SetToken(string, time.Time)           {}

func TestClientDo(t *testing.T) {
	t.Run("sends token, accept, and user agent", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))
			assert.Equal(t, "application/json", r.Header.Get("Accept"))
			assert.Equal(t, "tradestation-client-go", r.Header.Get("User-Agent"))

			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"})

		resp, err := client.Get(context.Background(), "/v3/marketdata/quotes/MSFT", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.JSONEq(t, `{"ok":true}`, string(resp.Body))
	})

	t.Run("encodes query values", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "Daily", r.URL.Query().Get("unit"))
			assert.Equal(t, "5", r.URL.Query().Get("barsback"))

			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"})

		query := url.Values{}
		query.Set("unit", "Daily")
		query.Set("barsback", "5")

		_, err := client.Get(context.Background(), "/v3/marketdata/barcharts/MSFT", query)
		require.NoError(t, err)
	})

	t.Run("posts JSON bodies", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "application/json", r.Header.Get("Content-Type"))

			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"})

		_, err := client.Post(context.Background(), "/v3/orderexecution/orders", map[string]string{"Symbol": "MSFT"})
		require.NoError(t, err)
	})

	t.Run("token failure aborts before any request", func(t *testing.T) {
		var requests atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
		}))
		defer server.Close()

		manager := &stubTokenManager{err: &ts.APIError{Kind: ts.ErrorKindAuth, Message: "refresh rejected"}}
		client := NewClient(server.URL, manager)

		_, err := client.Get(context.Background(), "/v3/brokerage/accounts", nil)
		require.Error(t, err)
		assert.True(t, ts.IsAuthError(err))
		assert.Equal(t, int32(0), requests.Load())
	})

	t.Run("feeds rate limit headers into the limiter", func(t *testing.T) {
		reset := time.Now().Add(time.Minute).Unix()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-RateLimit-Limit", "120")
			w.Header().Set("X-RateLimit-Remaining", "3")
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(reset, 10))

			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"})

		_, err := client.Get(context.Background(), "/v3/marketdata/quotes/MSFT", nil)
		require.NoError(t, err)

		limit, remaining, _, known := client.Limiter().Snapshot("/v3/marketdata/quotes/MSFT")
		assert.True(t, known)
		assert.Equal(t, 120, limit)
		assert.Equal(t, 3, remaining)
	})

	t.Run("retries 5xx and succeeds", func(t *testing.T) {
		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if attempts.Add(1) == 1 {
				w.WriteHeader(http.StatusBadGateway)

				return
			}

			_, _ = w.Write([]byte(`{"ok":true}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"},
			WithRetryConfig(2, 10*time.Millisecond, 50*time.Millisecond))

		resp, err := client.Get(context.Background(), "/v3/brokerage/accounts", nil)
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, int32(2), attempts.Load())
	})
}

func TestClientErrorMapping(t *testing.T) {
	tests := []struct {
		name       string
		statusCode int
		body       string
		check      func(t *testing.T, err error)
	}{
		{
			name:       "401 maps to auth",
			statusCode: http.StatusUnauthorized,
			body:       `{"Error":"Unauthorized","Message":"token expired"}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, ts.IsAuthError(err))
			},
		},
		{
			name:       "403 maps to auth",
			statusCode: http.StatusForbidden,
			body:       `{}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, ts.IsAuthError(err))
			},
		},
		{
			name:       "404 maps to not found",
			statusCode: http.StatusNotFound,
			body:       `{"Message":"no such symbol"}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, ts.IsNotFound(err))

				apiErr := &ts.APIError{}
				require.ErrorAs(t, err, &apiErr)
				assert.Equal(t, "no such symbol", apiErr.Message)
			},
		},
		{
			name:       "400 maps to validation",
			statusCode: http.StatusBadRequest,
			body:       `{"Error":"BadRequest"}`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, ts.IsValidationError(err))
			},
		},
		{
			name:       "500 maps to server",
			statusCode: http.StatusInternalServerError,
			body:       `oops`,
			check: func(t *testing.T, err error) {
				t.Helper()
				assert.True(t, ts.IsServerError(err))
			},
		},
	}

	for _, testCase := range tests {
		t.Run(testCase.name, func(t *testing.T) {
			server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(testCase.statusCode)
				_, _ = w.Write([]byte(testCase.body))
			}))
			defer server.Close()

			client := NewClient(server.URL, &stubTokenManager{token: "test-token"},
				WithRetryConfig(0, time.Millisecond, time.Millisecond))

			_, err := client.Get(context.Background(), "/v3/test", nil)
			require.Error(t, err)
			testCase.check(t, err)
		})
	}

	t.Run("429 carries retry-after", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "7")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"},
			WithRetryConfig(0, time.Millisecond, time.Millisecond))

		_, err := client.Get(context.Background(), "/v3/test", nil)
		require.Error(t, err)
		assert.True(t, ts.IsRateLimitError(err))

		apiErr := &ts.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 7*time.Second, apiErr.RetryAfter)
	})

	t.Run("request id is captured", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("X-Request-Id", "req-123")
			w.WriteHeader(http.StatusNotFound)
		}))
		defer server.Close()

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"},
			WithRetryConfig(0, time.Millisecond, time.Millisecond))

		_, err := client.Get(context.Background(), "/v3/test", nil)
		require.Error(t, err)

		apiErr := &ts.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, "req-123", apiErr.RequestID)
	})
}

func TestOpenStream(t *testing.T) {
	t.Run("sets the streaming accept header", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, StreamAccept, r.Header.Get("Accept"))
			assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

			_, _ = w.Write([]byte("{\"Heartbeat\":1}\n"))
		}))
		defer server.Close()

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"})

		resp, err := client.OpenStream(context.Background(), "/v3/marketdata/stream/quotes/MSFT", nil)
		require.NoError(t, err)

		defer func() { _ = resp.Body.Close() }()

		assert.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("maps connect rejections to typed errors", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
			_, _ = w.Write([]byte(`{"Message":"bad token"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"})

		_, err := client.OpenStream(context.Background(), "/v3/marketdata/stream/quotes/MSFT", nil)
		require.Error(t, err)
		assert.True(t, ts.IsAuthError(err))
	})
}

func TestRetryAfterBackoff(t *testing.T) {
	t.Parallel()

	t.Run("prefers retry-after on 429", func(t *testing.T) {
		t.Parallel()

		resp := &http.Response{
			StatusCode: http.StatusTooManyRequests,
			Header:     http.Header{"Retry-After": []string{"3"}},
		}

		wait := retryAfterBackoff(time.Second, 10*time.Second, 0, resp)
		assert.Equal(t, 3*time.Second, wait)
	})

	t.Run("exponential with jitter otherwise", func(t *testing.T) {
		t.Parallel()

		for attempt := 0; attempt < 4; attempt++ {
			wait := retryAfterBackoff(time.Second, 10*time.Second, attempt, nil)
			assert.GreaterOrEqual(t, wait, 500*time.Millisecond)
			assert.LessOrEqual(t, wait, 10*time.Second)
		}
	})
}

func TestClientInterceptors(t *testing.T) {
	t.Parallel()

	t.Run("request interceptors can add headers", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			assert.Equal(t, "trace-42", r.Header.Get("X-Trace-Id"))

			_, _ = w.Write([]byte(`{}`))
		}))
		defer server.Close()

		chain := ts.NewInterceptorChain()
		chain.AddRequestInterceptor(ts.HeaderInterceptor(map[string]string{"X-Trace-Id": "trace-42"}))

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"}, WithInterceptors(chain))

		_, err := client.Get(context.Background(), "/v3/marketdata/quotes/MSFT", nil)
		require.NoError(t, err)
	})

	t.Run("response interceptors observe the typed error", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusInternalServerError)
		}))
		defer server.Close()

		var observed *ts.InterceptedResponse

		chain := ts.NewInterceptorChain()
		chain.AddResponseInterceptor(func(ctx context.Context, req *ts.InterceptedRequest, resp *ts.InterceptedResponse) error {
			observed = resp

			return nil
		})

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"},
			WithInterceptors(chain), WithRetryConfig(0, time.Millisecond, time.Millisecond))

		_, err := client.Get(context.Background(), "/v3/brokerage/accounts", nil)
		require.Error(t, err)

		require.NotNil(t, observed)
		assert.Equal(t, http.StatusInternalServerError, observed.StatusCode)
		assert.True(t, ts.IsServerError(observed.Error))
	})

	t.Run("failing request interceptor aborts the call", func(t *testing.T) {
		t.Parallel()

		var requests atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requests.Add(1)
		}))
		defer server.Close()

		chain := ts.NewInterceptorChain()
		chain.AddRequestInterceptor(func(ctx context.Context, req *ts.InterceptedRequest) error {
			return errors.New("blocked")
		})

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"}, WithInterceptors(chain))

		_, err := client.Get(context.Background(), "/v3/marketdata/quotes/MSFT", nil)
		require.Error(t, err)
		assert.True(t, ts.IsValidationError(err))
		assert.Equal(t, int32(0), requests.Load())
	})
}

func TestRetryExhaustion(t *testing.T) {
	t.Parallel()

	t.Run("exhausted retries surface the last typed status error", func(t *testing.T) {
		t.Parallel()

		var attempts atomic.Int32

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			attempts.Add(1)
			w.WriteHeader(http.StatusBadGateway)
			_, _ = w.Write([]byte(`{"Message":"upstream unavailable"}`))
		}))
		defer server.Close()

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"},
			WithRetryConfig(2, time.Millisecond, 5*time.Millisecond))

		_, err := client.Get(context.Background(), "/v3/brokerage/accounts", nil)
		require.Error(t, err)
		assert.Equal(t, int32(3), attempts.Load())

		apiErr := &ts.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.True(t, ts.IsServerError(err))
		assert.Equal(t, http.StatusBadGateway, apiErr.StatusCode)
		assert.Equal(t, "upstream unavailable", apiErr.Message)
		assert.Contains(t, apiErr.Snippet, "upstream unavailable")
	})

	t.Run("exhausted retries on 429 keep the retry-after hint", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Retry-After", "2")
			w.WriteHeader(http.StatusTooManyRequests)
		}))
		defer server.Close()

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"},
			WithRetryConfig(1, time.Millisecond, 5*time.Millisecond))

		_, err := client.Get(context.Background(), "/v3/marketdata/quotes/MSFT", nil)
		require.Error(t, err)
		assert.True(t, ts.IsRateLimitError(err))

		apiErr := &ts.APIError{}
		require.ErrorAs(t, err, &apiErr)
		assert.Equal(t, 2*time.Second, apiErr.RetryAfter)
	})

	t.Run("response interceptors observe transport failures", func(t *testing.T) {
		t.Parallel()

		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
		server.Close()

		var observed *ts.InterceptedResponse

		chain := ts.NewInterceptorChain()
		chain.AddResponseInterceptor(func(ctx context.Context, req *ts.InterceptedRequest, resp *ts.InterceptedResponse) error {
			observed = resp

			return nil
		})

		client := NewClient(server.URL, &stubTokenManager{token: "test-token"},
			WithInterceptors(chain), WithRetryConfig(0, time.Millisecond, time.Millisecond))

		_, err := client.Get(context.Background(), "/v3/brokerage/accounts", nil)
		require.Error(t, err)
		assert.True(t, ts.IsNetworkError(err))

		require.NotNil(t, observed)
		assert.True(t, ts.IsNetworkError(observed.Error))
		assert.Zero(t, observed.StatusCode)
	})
}

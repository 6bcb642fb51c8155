package ts

import (
	"strings"
	"time"
)

// Environment selects which API deployment the client talks to.
type Environment string

const (
	// EnvironmentLive targets https://api.tradestation.com.
	EnvironmentLive Environment = "Live"

	// EnvironmentSimulation targets https://sim.api.tradestation.com.
	EnvironmentSimulation Environment = "Simulation"
)

// Base URLs per environment. The sign-in endpoint is fixed and does not
// vary with environment selection.
const (
	LiveBaseURL       = "https://api.tradestation.com"
	SimulationBaseURL = "https://sim.api.tradestation.com"
	SignInBaseURL     = "https://signin.tradestation.com"
)

// ParseEnvironment normalizes a user-supplied environment string.
// Anything other than "simulation" (case-insensitive) selects Live.
func ParseEnvironment(s string) Environment {
	if strings.EqualFold(s, string(EnvironmentSimulation)) {
		return EnvironmentSimulation
	}

	return EnvironmentLive
}

// BaseURL returns the API base URL for the environment.
func (e Environment) BaseURL() string {
	if e == EnvironmentSimulation {
		return SimulationBaseURL
	}

	return LiveBaseURL
}

// Config represents client configuration for building a ts.Client.
//
// # Authentication
//
// The client authenticates with the OAuth2 refresh_token grant against the
// fixed sign-in endpoint. ClientID and RefreshToken are required.
// ClientSecret is sent only when set (confidential clients); leave it empty
// for public clients. The authorization server may rotate the refresh token
// on each refresh; the client tracks rotation automatically and the current
// value is available via Client.RefreshTokenValue for persistence.
//
// # Timeouts and retries
//
// Per-request timeouts are controlled via the context passed to client
// methods. Transient failures (429, 5xx, connection errors) are retried up
// to RetryMax times with exponential backoff between RetryWaitMin and
// RetryWaitMax; a server-provided Retry-After takes precedence over the
// computed backoff.
type Config struct {
	// ClientID: OAuth2 client ID issued for the API application. Required.
	ClientID string
	// ClientSecret: OAuth2 client secret. Optional; presence selects the
	// confidential client mode on token refresh.
	ClientSecret string
	// RefreshToken: long-lived refresh token obtained from the sign-in
	// flow. Required.
	RefreshToken string
	// AccessToken: optional previously-cached access token, used until
	// AccessTokenExpiry.
	AccessToken string
	// AccessTokenExpiry: absolute expiry of AccessToken.
	AccessTokenExpiry time.Time

	// Environment selects Live or Simulation. Required (directly or via
	// the ENVIRONMENT variable handled by tsclient.New).
	Environment Environment

	// MaxConcurrentStreams caps simultaneously open streaming sessions.
	// Zero selects the default of 10.
	MaxConcurrentStreams int

	// RetryMax: maximum number of retries for transient failures. Zero
	// selects the default.
	RetryMax int
	// RetryWaitMin: minimum backoff between retries.
	RetryWaitMin time.Duration
	// RetryWaitMax: maximum backoff between retries.
	RetryWaitMax time.Duration

	// Debug enables verbose HTTP request/response logging when a Logger
	// is provided.
	Debug bool
	// Logger: optional structured logger used by the HTTP layer.
	Logger Logger
	// UserAgent overrides the default User-Agent header.
	UserAgent string

	// Cache configures response caching for idempotent snapshot
	// endpoints. Nil disables caching.
	Cache *CacheConfig

	// Interceptors is an optional request/response interceptor chain
	// applied to every non-streaming request.
	Interceptors *InterceptorChain

	// TokenURL overrides the sign-in token endpoint. Intended for tests.
	TokenURL string
	// BaseURL overrides the environment-derived API base URL. Intended
	// for tests.
	BaseURL string
}

// Logger interface for logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

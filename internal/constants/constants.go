package constants

import "time"

// File and directory permissions.
const (
	// ConfigDirPerm is the permission for configuration directories.
	ConfigDirPerm = 0750

	// ConfigFilePerm is the permission for configuration files.
	ConfigFilePerm = 0600
)

// HTTP and network timeouts.
const (
	// DefaultHTTPTimeout is the default timeout for HTTP requests.
	DefaultHTTPTimeout = 30 * time.Second

	// ShortHTTPTimeout is used for quick operations.
	ShortHTTPTimeout = 10 * time.Second
)

// Retry limits and backoff bounds.
const (
	// DefaultRetryMax is the default maximum number of retries.
	DefaultRetryMax = 3

	// DefaultRetryWaitMin is the minimum wait time between retries.
	DefaultRetryWaitMin = 1 * time.Second

	// DefaultRetryWaitMax is the maximum wait time between retries.
	DefaultRetryWaitMax = 10 * time.Second
)

// Token lifecycle.
const (
	// TokenExpirySkew is subtracted from a token's reported expiry so a
	// token is never handed out when it could expire mid-request.
	TokenExpirySkew = 5 * time.Minute
)

// Streaming.
const (
	// DefaultMaxConcurrentStreams caps streams open on one client.
	DefaultMaxConcurrentStreams = 10

	// StreamHeartbeatCadence is the observed server heartbeat interval.
	StreamHeartbeatCadence = 5 * time.Second

	// StreamScanBufferSize is the maximum accepted stream line length.
	StreamScanBufferSize = 1024 * 1024
)

// Caching.
const (
	// DefaultCacheSize is the maximum number of cached entries.
	DefaultCacheSize = 1000

	// DefaultCacheTTL is the default lifetime of a cached snapshot.
	DefaultCacheTTL = 5 * time.Second
)

// Batching.
const (
	// DefaultBatchConcurrency limits concurrent batch fetches.
	DefaultBatchConcurrency = 3

	// MaxSymbolsPerRequest is the API's cap on symbols per snapshot call.
	MaxSymbolsPerRequest = 100
)

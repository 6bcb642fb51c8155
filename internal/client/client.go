// Package client implements the ts.Client interface on top of the
// transport, auth, rate limit, and stream layers.
package client

import (
	"context"
	"fmt"
	nethttp "net/http"
	"net/url"
	"sync"
	"time"

	"github.com/fivetwenty-io/tradestation-client/internal/auth"
	"github.com/fivetwenty-io/tradestation-client/internal/constants"
	"github.com/fivetwenty-io/tradestation-client/internal/http"
	"github.com/fivetwenty-io/tradestation-client/internal/stream"
	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
)

// Client implements the ts.Client interface.
type Client struct {
	httpClient   *http.Client
	tokenManager auth.TokenManager
	environment  ts.Environment
	logger       ts.Logger
	cache        ts.Cache

	marketData     ts.MarketDataClient
	brokerage      ts.BrokerageClient
	orderExecution ts.OrderExecutionClient

	// Stream accounting; the API caps concurrent streams per client.
	// pendingStreams counts slots reserved by opens still connecting.
	streamMu       sync.Mutex
	maxStreams     int
	pendingStreams int
	activeStreams  map[*stream.Reader]struct{}
}

// New creates a new API client from validated configuration. Callers
// normally go through tsclient.New, which also handles environment
// variable fallbacks.
func New(config *ts.Config) (*Client, error) {
	if config == nil {
		return nil, ts.ErrConfigRequired
	}

	if config.ClientID == "" {
		return nil, ts.ErrClientIDRequired
	}

	if config.RefreshToken == "" {
		return nil, ts.ErrRefreshTokenRequired
	}

	tokenURL := config.TokenURL
	if tokenURL == "" {
		tokenURL = ts.SignInBaseURL + "/oauth/token"
	}

	tokenManager := auth.NewOAuth2TokenManager(&auth.OAuth2Config{
		TokenURL:     tokenURL,
		ClientID:     config.ClientID,
		ClientSecret: config.ClientSecret,
		RefreshToken: config.RefreshToken,
	})

	if config.AccessToken != "" {
		tokenManager.SetToken(config.AccessToken, config.AccessTokenExpiry)
	}

	baseURL := config.BaseURL
	if baseURL == "" {
		baseURL = config.Environment.BaseURL()
	}

	httpOpts := createHTTPClientOptions(config)
	httpClient := http.NewClient(baseURL, tokenManager, httpOpts...)

	var cache ts.Cache

	if config.Cache != nil {
		built, err := ts.NewCacheFromConfig(config.Cache)
		if err != nil {
			return nil, fmt.Errorf("building response cache: %w", err)
		}

		cache = built
	}

	maxStreams := config.MaxConcurrentStreams
	if maxStreams <= 0 {
		maxStreams = constants.DefaultMaxConcurrentStreams
	}

	client := &Client{
		httpClient:    httpClient,
		tokenManager:  tokenManager,
		environment:   config.Environment,
		logger:        config.Logger,
		cache:         cache,
		maxStreams:    maxStreams,
		activeStreams: make(map[*stream.Reader]struct{}),
	}

	client.marketData = NewMarketDataClient(client)
	client.brokerage = NewBrokerageClient(client)
	client.orderExecution = NewOrderExecutionClient(client)

	return client, nil
}

// createHTTPClientOptions builds transport options from config.
func createHTTPClientOptions(config *ts.Config) []http.Option {
	var httpOpts []http.Option

	if config.Logger != nil {
		httpOpts = append(httpOpts, http.WithLogger(&loggerAdapter{logger: config.Logger}))
	}

	if config.Debug {
		httpOpts = append(httpOpts, http.WithDebug(true))
	}

	if config.UserAgent != "" {
		httpOpts = append(httpOpts, http.WithUserAgent(config.UserAgent))
	}

	if config.Interceptors != nil {
		httpOpts = append(httpOpts, http.WithInterceptors(config.Interceptors))
	}

	if config.RetryMax > 0 {
		retryWaitMin := constants.DefaultRetryWaitMin
		retryWaitMax := constants.DefaultRetryWaitMax

		if config.RetryWaitMin > 0 {
			retryWaitMin = config.RetryWaitMin
		}

		if config.RetryWaitMax > 0 {
			retryWaitMax = config.RetryWaitMax
		}

		httpOpts = append(httpOpts, http.WithRetryConfig(config.RetryMax, retryWaitMin, retryWaitMax))
	}

	return httpOpts
}

// MarketData implements ts.Client.MarketData.
func (c *Client) MarketData() ts.MarketDataClient {
	return c.marketData
}

// Brokerage implements ts.Client.Brokerage.
func (c *Client) Brokerage() ts.BrokerageClient {
	return c.brokerage
}

// OrderExecution implements ts.Client.OrderExecution.
func (c *Client) OrderExecution() ts.OrderExecutionClient {
	return c.orderExecution
}

// AccessToken implements ts.Client.AccessToken.
func (c *Client) AccessToken(ctx context.Context) (string, error) {
	token, err := c.tokenManager.GetToken(ctx)
	if err != nil {
		return "", fmt.Errorf("getting access token: %w", err)
	}

	return token, nil
}

// RefreshTokenValue implements ts.Client.RefreshTokenValue.
func (c *Client) RefreshTokenValue() string {
	return c.tokenManager.RefreshTokenValue()
}

// Environment implements ts.Client.Environment.
func (c *Client) Environment() ts.Environment {
	return c.environment
}

// CloseAllStreams implements ts.Client.CloseAllStreams.
func (c *Client) CloseAllStreams() error {
	c.streamMu.Lock()
	readers := make([]*stream.Reader, 0, len(c.activeStreams))

	for reader := range c.activeStreams {
		readers = append(readers, reader)
	}
	c.streamMu.Unlock()

	for _, reader := range readers {
		_ = reader.Close()
	}

	return nil
}

// openStream opens a streaming endpoint and registers the session against
// the concurrent stream cap.
func (c *Client) openStream(ctx context.Context, path string, query url.Values) (ts.Stream, error) {
	// Reserve the slot before connecting so concurrent opens cannot all
	// pass the cap check and overshoot it together.
	c.streamMu.Lock()

	if len(c.activeStreams)+c.pendingStreams >= c.maxStreams {
		c.streamMu.Unlock()

		return nil, fmt.Errorf("%w (%d)", constants.ErrMaxStreamsReached, c.maxStreams)
	}

	c.pendingStreams++
	c.streamMu.Unlock()

	var reader *stream.Reader

	reader, err := stream.Open(ctx,
		func(ctx context.Context) (*nethttp.Response, error) {
			return c.httpClient.OpenStream(ctx, path, query)
		},
		stream.WithMaxSilence(4*constants.StreamHeartbeatCadence),
		stream.WithOnClose(func() {
			c.streamMu.Lock()
			delete(c.activeStreams, reader)
			c.streamMu.Unlock()
		}),
	)

	c.streamMu.Lock()
	c.pendingStreams--

	if err != nil {
		c.streamMu.Unlock()

		return nil, err
	}

	c.activeStreams[reader] = struct{}{}
	c.streamMu.Unlock()

	return reader, nil
}

// cachedGet serves idempotent snapshot responses from the configured cache
// when present, falling back to the network and repopulating on a miss.
func (c *Client) cachedGet(ctx context.Context, path string, query url.Values) ([]byte, error) {
	key := path
	if len(query) > 0 {
		key += "?" + query.Encode()
	}

	if c.cache != nil {
		entry, err := c.cache.Get(ctx, key)
		if err == nil {
			return entry.Data, nil
		}
	}

	resp, err := c.httpClient.Get(ctx, path, query)
	if err != nil {
		return nil, err
	}

	if c.cache != nil {
		_ = c.cache.Set(ctx, key, &ts.CacheEntry{
			Data:      resp.Body,
			ExpiresAt: time.Now().Add(constants.DefaultCacheTTL),
			ETag:      resp.Headers.Get("ETag"),
		})
	}

	return resp.Body, nil
}

// loggerAdapter adapts ts.Logger to the transport's logger interface.
type loggerAdapter struct {
	logger ts.Logger
}

func (l *loggerAdapter) Debug(msg string, fields map[string]interface{}) {
	l.logger.Debug(msg, fields)
}

func (l *loggerAdapter) Info(msg string, fields map[string]interface{}) {
	l.logger.Info(msg, fields)
}

func (l *loggerAdapter) Warn(msg string, fields map[string]interface{}) {
	l.logger.Warn(msg, fields)
}

func (l *loggerAdapter) Error(msg string, fields map[string]interface{}) {
	l.logger.Error(msg, fields)
}

var _ ts.Client = (*Client)(nil)

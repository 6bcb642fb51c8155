// Package http wraps the HTTP transport: token injection, rate-limit
// admission, header feedback, typed error mapping, bounded retry, and
// stream connection establishment.
package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/fivetwenty-io/tradestation-client/internal/auth"
	"github.com/fivetwenty-io/tradestation-client/internal/constants"
	"github.com/fivetwenty-io/tradestation-client/internal/ratelimit"
	"github.com/fivetwenty-io/tradestation-client/pkg/ts"
	"github.com/hashicorp/go-retryablehttp"
)

// StreamAccept is the Accept header value selecting the streaming
// representation of an endpoint.
const StreamAccept = "application/vnd.tradestation.streams+json"

const defaultUserAgent = "tradestation-client-go"

// Request represents an API request.
type Request struct {
	Method  string
	Path    string
	Query   url.Values
	Body    interface{}
	Headers map[string]string
}

// Response represents an API response.
type Response struct {
	StatusCode int
	Headers    http.Header
	Body       []byte
}

// Logger interface for HTTP client logging.
type Logger interface {
	Debug(msg string, fields map[string]interface{})
	Info(msg string, fields map[string]interface{})
	Warn(msg string, fields map[string]interface{})
	Error(msg string, fields map[string]interface{})
}

// Client is the request executor shared by all service clients. Every
// request pulls a token, awaits rate-limit admission, and feeds observed
// quota headers back into the limiter regardless of status code.
type Client struct {
	baseURL      string
	tokenManager auth.TokenManager
	limiter      *ratelimit.Limiter
	retryClient  *retryablehttp.Client
	streamClient *http.Client
	userAgent    string
	debug        bool
	logger       Logger
	interceptors *ts.InterceptorChain
}

// Option configures the client.
type Option func(*Client)

// WithLogger sets the logger.
func WithLogger(logger Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithDebug enables request/response logging.
func WithDebug(debug bool) Option {
	return func(c *Client) {
		c.debug = debug
	}
}

// WithUserAgent overrides the User-Agent header.
func WithUserAgent(userAgent string) Option {
	return func(c *Client) {
		c.userAgent = userAgent
	}
}

// WithInterceptors installs a request/response interceptor chain.
func WithInterceptors(chain *ts.InterceptorChain) Option {
	return func(c *Client) {
		c.interceptors = chain
	}
}

// WithRetryConfig tunes retry count and backoff bounds.
func WithRetryConfig(retryMax int, waitMin, waitMax time.Duration) Option {
	return func(c *Client) {
		c.retryClient.RetryMax = retryMax
		c.retryClient.RetryWaitMin = waitMin
		c.retryClient.RetryWaitMax = waitMax
	}
}

// NewClient creates a new API transport client.
func NewClient(baseURL string, tokenManager auth.TokenManager, opts ...Option) *Client {
	retryClient := retryablehttp.NewClient()
	retryClient.RetryMax = constants.DefaultRetryMax
	retryClient.RetryWaitMin = constants.DefaultRetryWaitMin
	retryClient.RetryWaitMax = constants.DefaultRetryWaitMax
	retryClient.Logger = nil
	retryClient.Backoff = retryAfterBackoff
	// Hand the final response back instead of swallowing it in a generic
	// "giving up" error, so exhausted retries still map through the typed
	// status taxonomy with status code, Retry-After, and body snippet.
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler

	client := &Client{
		baseURL:      baseURL,
		tokenManager: tokenManager,
		limiter:      ratelimit.NewLimiter(),
		retryClient:  retryClient,
		streamClient: &http.Client{
			// Streaming connections stay open indefinitely.
			Timeout: 0,
		},
		userAgent: defaultUserAgent,
	}

	// Feed the limiter from every attempt's headers, not just the final
	// response, so retries observe the freshest window.
	retryClient.ResponseLogHook = func(_ retryablehttp.Logger, resp *http.Response) {
		if resp != nil && resp.Request != nil {
			client.limiter.UpdateFromHeaders(resp.Request.URL.Path, resp.Header)
		}
	}

	for _, opt := range opts {
		opt(client)
	}

	return client
}

// Limiter exposes the admission controller, primarily for tests and
// diagnostics.
func (c *Client) Limiter() *ratelimit.Limiter {
	return c.limiter
}

// Do executes a request and returns the response or a typed error.
func (c *Client) Do(ctx context.Context, req *Request) (*Response, error) {
	httpReq, err := c.prepareRequest(ctx, req, "application/json")
	if err != nil {
		return nil, err
	}

	var intercepted *ts.InterceptedRequest

	if c.interceptors != nil {
		// Headers is the live request header map, so interceptors can add
		// or rewrite headers in place.
		intercepted = &ts.InterceptedRequest{
			Method:  req.Method,
			Path:    req.Path,
			Headers: httpReq.Header,
		}

		err = c.interceptors.ExecuteRequestInterceptors(ctx, intercepted)
		if err != nil {
			return nil, &ts.APIError{
				Kind:    ts.ErrorKindValidation,
				Message: err.Error(),
				Path:    req.Path,
			}
		}
	}

	retryReq, err := retryablehttp.FromRequest(httpReq)
	if err != nil {
		return nil, &ts.APIError{
			Kind:    ts.ErrorKindNetwork,
			Message: fmt.Sprintf("preparing request: %v", err),
			Path:    req.Path,
		}
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("API Request", map[string]interface{}{
			"method": req.Method,
			"path":   req.Path,
		})
	}

	httpResp, err := c.retryClient.Do(retryReq)
	if err != nil {
		typedErr := transportError(err, req.Path)

		if intercepted != nil {
			_ = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &ts.InterceptedResponse{
				Error: typedErr,
			})
		}

		return nil, typedErr
	}

	defer func() { _ = httpResp.Body.Close() }()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &ts.APIError{
			Kind:       ts.ErrorKindNetwork,
			StatusCode: httpResp.StatusCode,
			Message:    fmt.Sprintf("reading response body: %v", err),
			Path:       req.Path,
		}
	}

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Headers:    httpResp.Header,
		Body:       body,
	}

	if c.debug && c.logger != nil {
		c.logger.Debug("API Response", map[string]interface{}{
			"method":      req.Method,
			"path":        req.Path,
			"status_code": resp.StatusCode,
		})
	}

	var statusErr error

	if httpResp.StatusCode >= 400 {
		statusErr = statusError(httpResp, body, req.Path)
	}

	if intercepted != nil {
		_ = c.interceptors.ExecuteResponseInterceptors(ctx, intercepted, &ts.InterceptedResponse{
			StatusCode: httpResp.StatusCode,
			Headers:    httpResp.Header,
			Error:      statusErr,
		})
	}

	if statusErr != nil {
		return resp, statusErr
	}

	return resp, nil
}

// OpenStream performs the same token and admission steps as Do, then keeps
// the connection open and returns the live response for a stream reader.
// The caller owns the response body.
func (c *Client) OpenStream(ctx context.Context, path string, query url.Values) (*http.Response, error) {
	req := &Request{
		Method: http.MethodGet,
		Path:   path,
		Query:  query,
	}

	httpReq, err := c.prepareRequest(ctx, req, StreamAccept)
	if err != nil {
		return nil, err
	}

	httpResp, err := c.streamClient.Do(httpReq)
	if err != nil {
		return nil, transportError(err, path)
	}

	c.limiter.UpdateFromHeaders(path, httpResp.Header)

	if httpResp.StatusCode >= 400 {
		body, _ := io.ReadAll(io.LimitReader(httpResp.Body, 4096))
		_ = httpResp.Body.Close()

		return nil, statusError(httpResp, body, path)
	}

	return httpResp, nil
}

// Get performs a GET request.
func (c *Client) Get(ctx context.Context, path string, query url.Values) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodGet, Path: path, Query: query})
}

// Post performs a POST request.
func (c *Client) Post(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPost, Path: path, Body: body})
}

// Put performs a PUT request.
func (c *Client) Put(ctx context.Context, path string, body interface{}) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodPut, Path: path, Body: body})
}

// Delete performs a DELETE request.
func (c *Client) Delete(ctx context.Context, path string) (*Response, error) {
	return c.Do(ctx, &Request{Method: http.MethodDelete, Path: path})
}

// prepareRequest obtains a token, awaits admission, and builds the HTTP
// request. Token and admission happen before any network I/O toward the
// API endpoint.
func (c *Client) prepareRequest(ctx context.Context, req *Request, accept string) (*http.Request, error) {
	var bearer string

	if c.tokenManager != nil {
		token, err := c.tokenManager.GetToken(ctx)
		if err != nil {
			apiErr := &ts.APIError{}
			if errors.As(err, &apiErr) {
				return nil, err
			}

			return nil, &ts.APIError{
				Kind:    ts.ErrorKindAuth,
				Message: fmt.Sprintf("getting access token: %v", err),
				Path:    req.Path,
			}
		}

		bearer = token
	}

	err := c.limiter.WaitForSlot(ctx, req.Path)
	if err != nil {
		return nil, transportError(err, req.Path)
	}

	fullURL := c.baseURL + req.Path
	if len(req.Query) > 0 {
		fullURL += "?" + req.Query.Encode()
	}

	var bodyReader io.Reader

	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, &ts.APIError{
				Kind:    ts.ErrorKindValidation,
				Message: fmt.Sprintf("encoding request body: %v", err),
				Path:    req.Path,
			}
		}

		bodyReader = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, fullURL, bodyReader)
	if err != nil {
		return nil, &ts.APIError{
			Kind:    ts.ErrorKindValidation,
			Message: fmt.Sprintf("creating request: %v", err),
			Path:    req.Path,
		}
	}

	httpReq.Header.Set("Accept", accept)
	httpReq.Header.Set("User-Agent", c.userAgent)

	if req.Body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	if bearer != "" {
		httpReq.Header.Set("Authorization", "Bearer "+bearer)
	}

	for key, value := range req.Headers {
		httpReq.Header.Set(key, value)
	}

	return httpReq, nil
}

// statusError maps an HTTP status to the typed error taxonomy. This is the
// single point where raw transport outcomes become client errors.
func statusError(resp *http.Response, body []byte, path string) error {
	apiErr := &ts.APIError{
		StatusCode: resp.StatusCode,
		Message:    messageFromBody(body, resp.Status),
		Path:       path,
		RequestID:  resp.Header.Get("X-Request-Id"),
		Snippet:    snippet(body),
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		apiErr.Kind = ts.ErrorKindAuth
	case resp.StatusCode == http.StatusNotFound:
		apiErr.Kind = ts.ErrorKindNotFound
	case resp.StatusCode == http.StatusTooManyRequests:
		apiErr.Kind = ts.ErrorKindRateLimit
		apiErr.RetryAfter = retryAfter(resp.Header)
	case resp.StatusCode >= 500:
		apiErr.Kind = ts.ErrorKindServer
	default:
		apiErr.Kind = ts.ErrorKindValidation
	}

	return apiErr
}

// transportError maps a transport-level failure to the typed taxonomy.
func transportError(err error, path string) error {
	apiErr := &ts.APIError{}
	if errors.As(err, &apiErr) {
		return err
	}

	kind := ts.ErrorKindNetwork

	var timeoutErr interface{ Timeout() bool }

	switch {
	case errors.Is(err, context.DeadlineExceeded):
		kind = ts.ErrorKindTimeout
	case errors.As(err, &timeoutErr) && timeoutErr.Timeout():
		kind = ts.ErrorKindTimeout
	}

	return &ts.APIError{
		Kind:    kind,
		Message: err.Error(),
		Path:    path,
	}
}

// messageFromBody extracts the API's error message, falling back to the
// HTTP status line.
func messageFromBody(body []byte, status string) string {
	var apiBody struct {
		Error   string `json:"Error"`
		Message string `json:"Message"`
	}

	if json.Unmarshal(body, &apiBody) == nil {
		if apiBody.Message != "" {
			return apiBody.Message
		}

		if apiBody.Error != "" {
			return apiBody.Error
		}
	}

	return status
}

// retryAfter parses a Retry-After header in seconds.
func retryAfter(headers http.Header) time.Duration {
	value := headers.Get("Retry-After")
	if value == "" {
		return 0
	}

	seconds, err := strconv.Atoi(value)
	if err != nil || seconds < 0 {
		return 0
	}

	return time.Duration(seconds) * time.Second
}

// retryAfterBackoff prefers a server-suggested delay, then falls back to
// exponential backoff with jitter.
func retryAfterBackoff(waitMin, waitMax time.Duration, attemptNum int, resp *http.Response) time.Duration {
	if resp != nil && (resp.StatusCode == http.StatusTooManyRequests || resp.StatusCode == http.StatusServiceUnavailable) {
		if delay := retryAfter(resp.Header); delay > 0 {
			return delay
		}
	}

	wait := waitMin << uint(attemptNum)
	if wait > waitMax || wait <= 0 {
		wait = waitMax
	}

	// Jitter in [wait/2, wait) spreads synchronized retries.
	return wait/2 + time.Duration(rand.Int63n(int64(wait/2)+1))
}

const maxSnippetLen = 512

// snippet bounds a raw response body for inclusion in errors.
func snippet(body []byte) string {
	if len(body) > maxSnippetLen {
		return string(body[:maxSnippetLen])
	}

	return string(body)
}

// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package messaging

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/bureau-foundation/matrix-join/lib/netutil"
	"github.com/bureau-foundation/matrix-join/lib/secret"
)

// apiPrefix is prepended to every endpoint name.
const apiPrefix = "/_matrix/client/unstable/"

// RequestIDHeader carries a per-request UUID so client log lines can be
// matched against homeserver access logs.
const RequestIDHeader = "X-Request-ID"

// ClientConfig holds configuration for creating a Client.
type ClientConfig struct {
	// HomeserverURL is the base URL of the Matrix homeserver (e.g., "https://matrix.org").
	HomeserverURL string
	// HTTPClient is used for all requests. If nil, http.DefaultClient is used.
	HTTPClient *http.Client
	// Logger is used for structured logging. If nil, slog.Default() is used.
	Logger *slog.Logger
	// UserAgent, if set, is sent as the User-Agent header.
	UserAgent string
}

// Client is a Matrix client bound to one homeserver. It starts anonymous
// and holds at most one access token.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *slog.Logger
	userAgent  string

	// mu guards accessToken. Requests read a snapshot under the lock;
	// Login and Logout replace it.
	mu          sync.Mutex
	accessToken *secret.Buffer
}

// NewClient creates an anonymous Matrix client.
func NewClient(config ClientConfig) (*Client, error) {
	if config.HomeserverURL == "" {
		return nil, fmt.Errorf("messaging: HomeserverURL is required")
	}

	// Request URLs are built by concatenation so that escaped path
	// segments (%23 in a room alias) reach the wire unchanged; parsing
	// here only validates the base.
	parsed, err := url.Parse(config.HomeserverURL)
	if err != nil {
		return nil, fmt.Errorf("messaging: invalid HomeserverURL %q: %w", config.HomeserverURL, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("messaging: HomeserverURL %q must use http or https", config.HomeserverURL)
	}

	httpClient := config.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}

	logger := config.Logger
	if logger == nil {
		logger = slog.Default()
	}

	return &Client{
		baseURL:    strings.TrimRight(config.HomeserverURL, "/"),
		httpClient: httpClient,
		logger:     logger,
		userAgent:  config.UserAgent,
	}, nil
}

// Homeserver returns the base URL the client was constructed with,
// without a trailing slash.
func (c *Client) Homeserver() string {
	return c.baseURL
}

// Authenticated reports whether the client currently holds an access token.
func (c *Client) Authenticated() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.accessToken != nil
}

// Close releases the access token memory and returns the client to the
// anonymous state. It does not contact the homeserver; use Logout to
// invalidate the token server-side. Idempotent.
func (c *Client) Close() error {
	return c.replaceToken(nil)
}

// replaceToken swaps in a new token (or nil) and releases the old one.
func (c *Client) replaceToken(token *secret.Buffer) error {
	c.mu.Lock()
	previous := c.accessToken
	c.accessToken = token
	c.mu.Unlock()

	if previous != nil {
		return previous.Close()
	}
	return nil
}

// bearer returns the Authorization header value for the current token,
// or "" when anonymous.
func (c *Client) bearer() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.accessToken == nil {
		return ""
	}
	return "Bearer " + c.accessToken.String()
}

// queryParam is one query-string parameter. Parameters with an empty
// value are dropped by buildURL.
type queryParam struct {
	key   string
	value string
}

// buildURL returns the absolute URL for an endpoint under the client
// API prefix. Keys and values are written as given: the only caller
// passes a server name, which config validation restricts to
// hostname[:port], so "server=host:8448" goes out verbatim.
func (c *Client) buildURL(endpoint string, query ...queryParam) string {
	var builder strings.Builder
	builder.WriteString(c.baseURL)
	builder.WriteString(apiPrefix)
	builder.WriteString(endpoint)

	separator := "?"
	for _, param := range query {
		if param.value == "" {
			continue
		}
		builder.WriteString(separator)
		builder.WriteString(param.key)
		builder.WriteByte('=')
		builder.WriteString(param.value)
		separator = "&"
	}
	return builder.String()
}

// escapePathSegment escapes a room ID or alias for use as one path
// segment. url.PathEscape leaves ':' alone because RFC 3986 permits it
// in a segment; Matrix identifiers are escaped in full so that the
// server sees "%23room%3Aserver" for "#room:server".
func escapePathSegment(segment string) string {
	return strings.ReplaceAll(url.PathEscape(segment), ":", "%3A")
}

// requestOptions controls one call to doRequest.
type requestOptions struct {
	method   string
	endpoint string
	query    []queryParam
	body     any
	// authenticated attaches the bearer token when one is held.
	authenticated bool
	// discardBody drains a 2xx body instead of reading it, for
	// endpoints whose success payload is unused. Error bodies are still
	// captured.
	discardBody bool
}

// response is the outcome of an HTTP exchange that reached the server.
type response struct {
	statusCode int
	body       []byte
}

func (r response) ok() bool {
	return r.statusCode >= 200 && r.statusCode < 300
}

// send performs an HTTP request and returns the status and body without
// interpreting the status. Errors are transport or encoding failures.
func (c *Client) send(ctx context.Context, options requestOptions) (response, error) {
	var bodyReader io.Reader
	if options.body != nil {
		encoded, err := json.Marshal(options.body)
		if err != nil {
			return response{}, fmt.Errorf("messaging: failed to encode %s request body: %w", options.endpoint, err)
		}
		bodyReader = bytes.NewReader(encoded)
	}

	request, err := http.NewRequestWithContext(ctx, options.method, c.buildURL(options.endpoint, options.query...), bodyReader)
	if err != nil {
		return response{}, fmt.Errorf("messaging: failed to create %s request: %w", options.endpoint, err)
	}

	requestID := uuid.NewString()
	request.Header.Set(RequestIDHeader, requestID)
	if options.body != nil {
		request.Header.Set("Content-Type", "application/json")
	}
	if c.userAgent != "" {
		request.Header.Set("User-Agent", c.userAgent)
	}
	if options.authenticated {
		if authorization := c.bearer(); authorization != "" {
			request.Header.Set("Authorization", authorization)
		}
	}

	httpResponse, err := c.httpClient.Do(request)
	if err != nil {
		return response{}, fmt.Errorf("messaging: request to %s %s failed: %w", options.method, options.endpoint, err)
	}
	defer httpResponse.Body.Close()

	result := response{statusCode: httpResponse.StatusCode}
	switch {
	case !options.discardBody:
		result.body, err = netutil.ReadResponse(httpResponse.Body)
		if err != nil {
			return response{}, fmt.Errorf("messaging: failed to read %s response body: %w", options.endpoint, err)
		}
	case result.ok():
		netutil.Drain(httpResponse.Body)
	default:
		result.body = []byte(netutil.ErrorBody(httpResponse.Body))
	}

	c.logger.Debug("matrix request completed",
		"method", options.method,
		"endpoint", options.endpoint,
		"status", httpResponse.StatusCode,
		"request_id", requestID,
	)
	return result, nil
}

// doRequest performs an HTTP request and returns the body of a 2xx
// response. Any other status produces a *RequestError carrying the body.
func (c *Client) doRequest(ctx context.Context, options requestOptions) ([]byte, error) {
	result, err := c.send(ctx, options)
	if err != nil {
		return nil, err
	}
	if result.ok() {
		return result.body, nil
	}

	requestErr := &RequestError{
		Method:     options.method,
		Endpoint:   options.endpoint,
		StatusCode: result.statusCode,
		Body:       result.body,
	}
	// Non-JSON error bodies (proxies, load balancers) leave Code empty.
	var matrixErr matrixErrorBody
	if json.Unmarshal(result.body, &matrixErr) == nil {
		requestErr.Code = matrixErr.Code
		requestErr.Message = matrixErr.Message
	}

	c.logger.Debug("matrix request failed",
		"method", options.method,
		"endpoint", options.endpoint,
		"status", result.statusCode,
		"body", truncate(string(result.body), 1024),
	)
	return nil, requestErr
}

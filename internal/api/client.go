// Package api is the typed HTTP client for the stan-blog backend.
//
// The client holds no view state and never retries. Every operation returns
// either a decoded success payload or an error; callers decide how to react
// (transport failures wrap the underlying net error, application rejections
// surface as *Error with the server's message when one was provided).
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

const defaultTimeout = 30 * time.Second

// Logger receives request-level diagnostics. The zero value of Client logs nowhere.
type Logger interface {
	Printf(format string, args ...any)
}

type nopLogger struct{}

func (nopLogger) Printf(string, ...any) {}

// Client talks to the blog backend REST surface.
type Client struct {
	baseURL string
	httpc   *http.Client
	token   string
	logger  Logger
}

// Option customizes client construction.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP transport.
func WithHTTPClient(h *http.Client) Option {
	return func(c *Client) {
		if h != nil {
			c.httpc = h
		}
	}
}

// WithToken attaches a bearer token to every request.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = strings.TrimSpace(token)
	}
}

// WithLogger overrides the default no-op logger.
func WithLogger(l Logger) Option {
	return func(c *Client) {
		if l != nil {
			c.logger = l
		}
	}
}

// New creates a client rooted at baseURL (scheme and host, optionally a path prefix).
func New(baseURL string, opts ...Option) (*Client, error) {
	trimmed := strings.TrimRight(strings.TrimSpace(baseURL), "/")
	if trimmed == "" {
		return nil, fmt.Errorf("api: server base URL is required")
	}
	if _, err := url.Parse(trimmed); err != nil {
		return nil, fmt.Errorf("api: invalid base URL %q: %w", baseURL, err)
	}
	c := &Client{
		baseURL: trimmed,
		httpc:   &http.Client{Timeout: defaultTimeout},
		logger:  nopLogger{},
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c, nil
}

// BaseURL returns the configured server root without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// ViewURL joins a server-relative path onto the base URL, trimming exactly
// one slash at the boundary so the result has neither a double slash nor a
// missing one.
func (c *Client) ViewURL(path string) string {
	return c.baseURL + "/" + strings.TrimPrefix(path, "/")
}

// Error is an application-level rejection from the backend: a non-2xx status
// or a success=false envelope on a 2xx response.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("api: server rejected request (%d): %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api: server rejected request (%d)", e.Status)
}

// IsConflict reports whether err is an application rejection with HTTP 409.
func IsConflict(err error) bool {
	var apiErr *Error
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusConflict
}

// ServerMessage extracts the backend-supplied message from err, if any.
func ServerMessage(err error) string {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Message
	}
	return ""
}

// envelope is the backend's generic response wrapper.
type envelope struct {
	Success bool            `json:"success"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
}

func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) (*http.Request, error) {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return nil, fmt.Errorf("api: build %s %s: %w", method, path, err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", uuid.NewString())
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	return req, nil
}

// do executes req and decodes a 2xx response body into out when out is
// non-nil. Non-2xx responses become *Error, carrying any message the server
// put in the response envelope.
func (c *Client) do(req *http.Request, out any) error {
	start := time.Now()
	resp, err := c.httpc.Do(req)
	if err != nil {
		c.logger.Printf("%s %s failed: %v", req.Method, req.URL.Path, err)
		return fmt.Errorf("api: %s %s: %w", req.Method, req.URL.Path, err)
	}
	defer resp.Body.Close()
	c.logger.Printf("%s %s -> %d (%s)", req.Method, req.URL.Path, resp.StatusCode, time.Since(start).Round(time.Millisecond))

	raw, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return fmt.Errorf("api: read %s %s response: %w", req.Method, req.URL.Path, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &Error{Status: resp.StatusCode, Message: messageFromBody(raw)}
	}
	if out == nil || len(bytes.TrimSpace(raw)) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("api: decode %s %s response: %w", req.Method, req.URL.Path, err)
	}
	return nil
}

// doEnvelope executes req expecting the {success, message, data} wrapper and
// returns the inner data. A success=false envelope is an application
// rejection even on HTTP 200.
func (c *Client) doEnvelope(req *http.Request) (json.RawMessage, error) {
	var env envelope
	if err := c.do(req, &env); err != nil {
		return nil, err
	}
	if !env.Success {
		return nil, &Error{Status: http.StatusOK, Message: env.Message}
	}
	return env.Data, nil
}

func (c *Client) jsonRequest(ctx context.Context, method, path string, payload any) (*http.Request, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("api: encode %s request: %w", path, err)
	}
	return c.newRequest(ctx, method, path, nil, bytes.NewReader(body), "application/json")
}

// messageFromBody digs a human-readable message out of an error response
// body, which may be the generic envelope or a bare string.
func messageFromBody(raw []byte) string {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 {
		return ""
	}
	var env envelope
	if err := json.Unmarshal(trimmed, &env); err == nil && env.Message != "" {
		return env.Message
	}
	var msg struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(trimmed, &msg); err == nil {
		if msg.Message != "" {
			return msg.Message
		}
		if msg.Error != "" {
			return msg.Error
		}
	}
	return ""
}

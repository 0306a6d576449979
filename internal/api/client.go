// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Configuration constants for the backend API.
const (
	// DefaultBaseURL is the backend address used when none is configured.
	DefaultBaseURL = "http://127.0.0.1:8000/api"

	// DefaultTimeout is the default timeout for API requests.
	DefaultTimeout = 60 * time.Second

	// MaxResponseSize is the maximum allowed response body size.
	MaxResponseSize = 10 * 1024 * 1024

	// DefaultUserAgent identifies the client to the backend.
	DefaultUserAgent = "assistchat"
)

// =============================================================================
// CLIENT
// =============================================================================

// Client executes Requests against the backend. Default headers apply to
// every request and may be changed concurrently with in-flight calls.
type Client struct {
	baseURL    string
	httpClient *http.Client
	userAgent  string
	logger     *slog.Logger

	mu      sync.RWMutex
	headers http.Header
}

// NewClient creates a client for baseURL (e.g. http://127.0.0.1:8000/api).
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
		userAgent:  DefaultUserAgent,
		logger:     slog.Default(),
		headers:    make(http.Header),
	}
}

// WithTimeout sets the request timeout.
func (c *Client) WithTimeout(timeout time.Duration) *Client {
	c.httpClient.Timeout = timeout
	return c
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithUserAgent sets the User-Agent header.
func (c *Client) WithUserAgent(ua string) *Client {
	if ua != "" {
		c.userAgent = ua
	}
	return c
}

// WithLogger sets the request logger.
func (c *Client) WithLogger(l *slog.Logger) *Client {
	if l != nil {
		c.logger = l
	}
	return c
}

// BaseURL returns the configured base URL.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// =============================================================================
// DEFAULT HEADERS
// =============================================================================

// SetDefaultHeader sets a header sent with every subsequent request.
func (c *Client) SetDefaultHeader(name, value string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Set(name, value)
}

// DeleteDefaultHeader removes a default header entirely.
func (c *Client) DeleteDefaultHeader(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.headers.Del(name)
}

// DefaultHeader returns the current value of a default header.
func (c *Client) DefaultHeader(name string) string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Get(name)
}

// =============================================================================
// EXECUTION
// =============================================================================

// Do executes req and decodes a successful response body into out (which
// may be nil). Non-2xx responses and success=false envelopes are returned
// as *APIError.
func (c *Client) Do(ctx context.Context, req Request, out any) error {
	httpReq, err := c.newHTTPRequest(ctx, req)
	if err != nil {
		return err
	}
	requestID := httpReq.Header.Get("X-Request-ID")

	start := time.Now()
	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		c.logger.Debug("api request failed", "method", req.Method, "path", req.Path, "err", err)
		return fmt.Errorf("%s %s: request failed: %w", req.Method, req.Path, err)
	}
	defer resp.Body.Close()

	// Paths and status only; headers carry the session token.
	c.logger.Debug("api request",
		"method", req.Method,
		"path", req.Path,
		"status", resp.StatusCode,
		"duration", time.Since(start),
		"request_id", requestID)

	body, err := readResponse(resp)
	if err != nil {
		return fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &APIError{
			Method:    req.Method,
			Path:      req.Path,
			Status:    resp.StatusCode,
			Message:   errorMessage(body),
			RequestID: requestID,
		}
	}

	if rejected, msg := isRejected(body); rejected {
		return &APIError{
			Method:    req.Method,
			Path:      req.Path,
			Status:    resp.StatusCode,
			Message:   msg,
			RequestID: requestID,
		}
	}

	if out == nil || len(bytes.TrimSpace(body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(body, out); err != nil {
		return fmt.Errorf("%s %s: failed to parse response: %w", req.Method, req.Path, err)
	}
	return nil
}

func (c *Client) newHTTPRequest(ctx context.Context, req Request) (*http.Request, error) {
	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var (
		body        io.Reader
		contentType string
	)
	switch {
	case req.Multipart != nil:
		buf, ct, err := encodeMultipart(req.Multipart)
		if err != nil {
			return nil, fmt.Errorf("%s %s: %w", req.Method, req.Path, err)
		}
		body, contentType = buf, ct
	case req.Body != nil:
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("%s %s: failed to marshal request: %w", req.Method, req.Path, err)
		}
		body, contentType = bytes.NewReader(data), "application/json"
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, target, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	c.mu.RLock()
	for name, values := range c.headers {
		for _, v := range values {
			httpReq.Header.Add(name, v)
		}
	}
	c.mu.RUnlock()

	httpReq.Header.Set("Accept", "application/json")
	httpReq.Header.Set("User-Agent", c.userAgent)
	httpReq.Header.Set("X-Request-ID", uuid.NewString())
	if contentType != "" {
		httpReq.Header.Set("Content-Type", contentType)
	}
	return httpReq, nil
}

func encodeMultipart(m *Multipart) (*bytes.Buffer, string, error) {
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)

	for name, value := range m.Fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}
	if m.File != nil {
		field := m.FileField
		if field == "" {
			field = "file"
		}
		part, err := w.CreateFormFile(field, m.FileName)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create file part: %w", err)
		}
		if _, err := io.Copy(part, m.File); err != nil {
			return nil, "", fmt.Errorf("failed to read upload: %w", err)
		}
	}
	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finish form: %w", err)
	}
	return &buf, w.FormDataContentType(), nil
}

// readResponse reads the response body with a size limit.
func readResponse(resp *http.Response) ([]byte, error) {
	body, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if int64(len(body)) > MaxResponseSize {
		return nil, fmt.Errorf("response exceeded maximum size of %d bytes", MaxResponseSize)
	}
	return body, nil
}

// isRejected reports whether body is an object envelope with success=false.
func isRejected(body []byte) (bool, string) {
	trimmed := bytes.TrimSpace(body)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return false, ""
	}
	var env Envelope
	if err := json.Unmarshal(trimmed, &env); err != nil {
		return false, ""
	}
	if env.Success != nil && !*env.Success {
		msg := env.Message
		if msg == "" {
			msg = "request rejected"
		}
		return true, msg
	}
	return false, ""
}

// errorMessage pulls a message out of an error body: the envelope's
// "message", a string "detail", or the raw text.
func errorMessage(body []byte) string {
	var env Envelope
	if err := json.Unmarshal(body, &env); err == nil {
		if env.Message != "" {
			return env.Message
		}
		if s, ok := env.Detail.(string); ok {
			return s
		}
	}
	return strings.TrimSpace(string(body))
}

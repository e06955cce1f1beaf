// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package api implements the HTTP client for the Ploymind backend.
//
// Every request authenticates with the Telegram launch context via the
// "tma" authorization scheme and carries a UUID correlation header. There
// are no automatic retries: failures surface to the orchestrator, whose
// only retry-like behavior is the fallback-model switch.
package api

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/jeranaias/ploymind-tui/internal/config"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// MaxResponseSize caps response bodies at 10MB to prevent memory
	// exhaustion from a misbehaving backend.
	MaxResponseSize = 10 * 1024 * 1024

	// DefaultHistoryLimit is the history page size used by the
	// reconciler's initial load.
	DefaultHistoryLimit = 50

	// ContextHistoryLimit is the history page size fetched when
	// assembling the context block for a send.
	ContextHistoryLimit = 100
)

// sharedTransport is the pooled transport used by all clients. Connection
// reuse matters here: the TUI fires bursts of small requests at a single
// host.
var sharedTransport = &http.Transport{
	MaxIdleConns:        10,
	MaxIdleConnsPerHost: 5,
	IdleConnTimeout:     90 * time.Second,
	TLSClientConfig: &tls.Config{
		MinVersion: tls.VersionTLS12,
	},
}

// =============================================================================
// CLIENT
// =============================================================================

// Client talks to the Ploymind backend.
type Client struct {
	baseURL    string
	apiPath    string
	initData   string
	httpClient *http.Client
	limiter    *rate.Limiter
	debug      bool
}

// Option configures a Client.
type Option func(*Client)

// WithBaseURL overrides the backend base URL (used in tests).
func WithBaseURL(u string) Option {
	return func(c *Client) {
		c.baseURL = strings.TrimSuffix(u, "/")
	}
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.httpClient.Timeout = d
	}
}

// WithHTTPClient replaces the underlying HTTP client entirely.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithDebug enables request/response logging.
func WithDebug(enabled bool) Option {
	return func(c *Client) {
		c.debug = enabled
	}
}

// New creates a backend client from config. initData is the Telegram
// launch context; empty means unauthenticated, which the backend will
// reject for everything but /health.
func New(cfg *config.Config, initData string, opts ...Option) (*Client, error) {
	if cfg.Backend.URL == "" {
		return nil, fmt.Errorf("%w: set backend.url in config or PLOYMIND_BACKEND_URL", ErrNotConfigured)
	}

	c := &Client{
		baseURL:  strings.TrimSuffix(cfg.Backend.URL, "/"),
		apiPath:  cfg.Backend.APIPath,
		initData: initData,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout(),
			Transport: sharedTransport,
		},
	}

	if cfg.Backend.SendRatePerMin > 0 {
		c.limiter = rate.NewLimiter(rate.Every(time.Minute/time.Duration(cfg.Backend.SendRatePerMin)), cfg.Backend.SendRatePerMin)
	}

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// setHeaders applies the standard headers to a request.
func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Request-ID", uuid.NewString())
	if c.initData != "" {
		req.Header.Set("Authorization", "tma "+c.initData)
	}
}

// doRequest executes one HTTP request and returns the response body.
// Transport failures are wrapped in ErrNetwork; non-2xx statuses go
// through handleErrorResponse.
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body any) ([]byte, error) {
	endpoint := c.baseURL + c.apiPath + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	c.setHeaders(req)
	c.logRequest(req)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNetwork, err)
	}
	defer resp.Body.Close()
	c.logResponse(resp, time.Since(start))

	data, err := readResponse(resp)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, handleErrorResponse(resp.StatusCode, data)
	}
	return data, nil
}

// logRequest logs an outgoing request. Headers and body never reach the
// log: the auth header carries the launch context and bodies carry chat
// content.
func (c *Client) logRequest(req *http.Request) {
	if !c.debug {
		return
	}
	log.Printf("api request: %s %s", req.Method, req.URL.Path)
}

// logResponse logs status and duration only.
func (c *Client) logResponse(resp *http.Response, duration time.Duration) {
	if !c.debug {
		return
	}
	log.Printf("api response: %d (%v)", resp.StatusCode, duration)
}

// readResponse reads a response body with a size cap.
func readResponse(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("%w: reading response: %v", ErrNetwork, err)
	}
	if len(data) > MaxResponseSize {
		return nil, fmt.Errorf("response too large (>%d bytes)", MaxResponseSize)
	}
	return data, nil
}

// getJSON runs a GET and decodes the response into out.
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	data, err := c.doRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// postJSON runs a POST and decodes the response into out (out may be nil).
func (c *Client) postJSON(ctx context.Context, path string, body, out any) error {
	data, err := c.doRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// =============================================================================
// ENDPOINTS
// =============================================================================

// ValidateAuth checks the launch context against the backend and returns
// the authenticated user plus stored preferences.
func (c *Client) ValidateAuth(ctx context.Context) (*AuthValidation, error) {
	var out AuthValidation
	if err := c.postJSON(ctx, "/auth/validate", struct{}{}, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SendChatMessage submits a user message and returns the model's reply.
// Subject to the client-side send throttle when configured.
func (c *Client) SendChatMessage(ctx context.Context, req ChatRequest) (*ChatReply, error) {
	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	var out ChatReply
	if err := c.postJSON(ctx, "/chat", req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetChatHistory fetches up to limit stored messages, oldest first.
// modelID filters server-side when non-empty.
func (c *Client) GetChatHistory(ctx context.Context, limit int, modelID string) (*History, error) {
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if modelID != "" {
		query.Set("model", modelID)
	}

	var out History
	if err := c.getJSON(ctx, "/chat/history", query, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ClearChatHistory deletes stored history server-side, optionally scoped
// to one model. The TUI's session deletion is local-only and never calls
// this; it exists for the explicit `history clear` command.
func (c *Client) ClearChatHistory(ctx context.Context, modelID string) error {
	query := url.Values{}
	if modelID != "" {
		query.Set("model", modelID)
	}
	_, err := c.doRequest(ctx, http.MethodDelete, "/chat/history", query, nil)
	return err
}

// GetAvailableModels fetches the model catalog.
func (c *Client) GetAvailableModels(ctx context.Context) (*ModelsResponse, error) {
	var out ModelsResponse
	if err := c.getJSON(ctx, "/models", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// SelectModel persists the user's model choice server-side.
func (c *Client) SelectModel(ctx context.Context, modelID string) error {
	return c.postJSON(ctx, "/models/select", map[string]string{"model_id": modelID}, nil)
}

// Health probes backend liveness. Works without authentication.
func (c *Client) Health(ctx context.Context) (*HealthStatus, error) {
	var out HealthStatus
	if err := c.getJSON(ctx, "/health", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

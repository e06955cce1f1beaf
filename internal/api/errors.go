// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// =============================================================================
// ERROR TYPES
// =============================================================================

// Sentinel errors for common failure cases. Callers should use errors.Is
// to distinguish them.
var (
	// ErrNotConfigured means no backend URL is configured.
	ErrNotConfigured = errors.New("backend not configured")

	// ErrNetwork means the backend could not be reached at all. Distinct
	// from a server rejection: the UI renders this as a connectivity
	// problem, not a request failure.
	ErrNetwork = errors.New("network error")

	// ErrAuthFailed means the launch context was rejected (401/403).
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotFound means the endpoint or resource does not exist (404).
	ErrNotFound = errors.New("not found")

	// ErrRateLimited means the backend throttled the request (429).
	ErrRateLimited = errors.New("rate limited")

	// ErrServer means the backend failed internally (5xx).
	ErrServer = errors.New("server error")
)

// APIError is a structured rejection parsed from the backend's error body
// ({"error": ..., "detail": ..., "status_code": ...}).
type APIError struct {
	Message string `json:"error"`
	Detail  string `json:"detail,omitempty"`
	Status  int    `json:"status_code,omitempty"`
}

// Error implements the error interface.
func (e *APIError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Message, e.Detail)
	}
	return e.Message
}

// handleErrorResponse converts a non-2xx response body into a typed error.
// The backend sends {"error", "detail", "status_code"}; anything else is
// reported as "HTTP <status>".
func handleErrorResponse(status int, body []byte) error {
	apiErr := &APIError{Status: status}
	if err := json.Unmarshal(body, apiErr); err != nil || apiErr.Message == "" {
		apiErr.Message = fmt.Sprintf("HTTP %d", status)
	}
	apiErr.Status = status

	switch {
	case status == 401 || status == 403:
		return fmt.Errorf("%w: %s", ErrAuthFailed, apiErr.Error())
	case status == 404:
		return fmt.Errorf("%w: %s", ErrNotFound, apiErr.Error())
	case status == 429:
		return fmt.Errorf("%w: %s", ErrRateLimited, apiErr.Error())
	case status >= 500:
		return fmt.Errorf("%w: %s", ErrServer, apiErr.Error())
	default:
		return apiErr
	}
}

// IsModelError reports whether an error looks like a model configuration
// failure. The backend does not use a dedicated status for these, so the
// error text is inspected; this drives the automatic fallback-model switch.
func IsModelError(err error) bool {
	if err == nil {
		return false
	}
	return strings.Contains(strings.ToLower(err.Error()), "model")
}

// IsNetworkError reports whether the backend was unreachable.
func IsNetworkError(err error) bool {
	return errors.Is(err, ErrNetwork)
}

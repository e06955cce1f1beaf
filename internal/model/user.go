// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// UserData is the Telegram user identity returned by auth validation.
type UserData struct {
	ID           int64  `json:"id"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name,omitempty"`
	Username     string `json:"username,omitempty"`
	LanguageCode string `json:"language_code,omitempty"`
	IsPremium    bool   `json:"is_premium,omitempty"`
}

// DisplayName returns the best human-readable name for the user.
func (u UserData) DisplayName() string {
	if u.FirstName != "" {
		return u.FirstName
	}
	if u.Username != "" {
		return u.Username
	}
	return "there"
}

// =============================================================================
// CONNECTION STATUS
// =============================================================================

// ConnectionStatus tracks the client's view of backend reachability.
type ConnectionStatus int

const (
	// StatusConnecting means a request is in flight or startup is underway.
	StatusConnecting ConnectionStatus = iota
	// StatusConnected means the last backend interaction succeeded.
	StatusConnected
	// StatusError means the last backend interaction failed.
	StatusError
)

// String returns the status as displayed in the header.
func (s ConnectionStatus) String() string {
	switch s {
	case StatusConnecting:
		return "connecting"
	case StatusConnected:
		return "connected"
	case StatusError:
		return "error"
	default:
		return "unknown"
	}
}

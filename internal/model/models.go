// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

// ModelInfo describes one selectable AI model.
type ModelInfo struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Provider    string `json:"provider"`
	Description string `json:"description,omitempty"`
	Emoji       string `json:"emoji,omitempty"`

	// SupportsVision marks models that accept image input.
	SupportsVision bool `json:"supports_vision,omitempty"`
	// MaxTokens is the context window advertised by the backend, 0 if
	// unknown.
	MaxTokens int `json:"max_tokens,omitempty"`
}

// Label returns the emoji-prefixed display name used in the model selector.
func (m ModelInfo) Label() string {
	if m.Emoji == "" {
		return m.Name
	}
	return m.Emoji + " " + m.Name
}

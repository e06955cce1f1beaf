// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"time"

	"github.com/jeranaias/ploymind-tui/internal/model"
)

// =============================================================================
// REQUEST / RESPONSE TYPES
// =============================================================================

// AuthValidation is the response from POST /auth/validate.
type AuthValidation struct {
	Valid       bool            `json:"valid"`
	User        model.UserData  `json:"user"`
	AuthDate    int64           `json:"auth_date,omitempty"`
	Preferences UserPreferences `json:"preferences,omitempty"`
}

// UserPreferences carries server-side per-user settings.
type UserPreferences struct {
	PreferredModel string `json:"preferred_model,omitempty"`
}

// ChatRequest is the payload for POST /chat.
type ChatRequest struct {
	Content string `json:"content"`
	Model   string `json:"model,omitempty"`
	// Context is the recent-transcript block the backend feeds to the
	// model, one "<role>: <content>" line per message.
	Context string `json:"context,omitempty"`
}

// ChatReply is the response from POST /chat.
type ChatReply struct {
	Content   string  `json:"content"`
	MessageID string  `json:"message_id"`
	Timestamp float64 `json:"timestamp"`
	ModelUsed string  `json:"model_used,omitempty"`
}

// Time converts the reply's unix-seconds timestamp to a time.Time.
func (r ChatReply) Time() time.Time {
	if r.Timestamp == 0 {
		return time.Now()
	}
	return time.Unix(0, int64(r.Timestamp*float64(time.Second)))
}

// HistoryMessage is one stored transcript entry from GET /chat/history.
type HistoryMessage struct {
	Role      string  `json:"role"`
	Content   string  `json:"content"`
	Timestamp float64 `json:"timestamp"`
	MessageID string  `json:"message_id"`
	ModelUsed string  `json:"model_used,omitempty"`
}

// Time converts the entry's unix-seconds timestamp to a time.Time.
func (m HistoryMessage) Time() time.Time {
	if m.Timestamp == 0 {
		return time.Now()
	}
	return time.Unix(0, int64(m.Timestamp*float64(time.Second)))
}

// History is the response from GET /chat/history, oldest message first.
type History struct {
	Messages      []HistoryMessage `json:"messages"`
	TotalMessages int              `json:"total_messages,omitempty"`
	UserID        int64            `json:"user_id,omitempty"`
}

// ModelsResponse is the response from GET /models.
type ModelsResponse struct {
	Models       []model.ModelInfo `json:"models"`
	DefaultModel string            `json:"default_model,omitempty"`
	Timestamp    float64           `json:"timestamp,omitempty"`
}

// Transcription is the response from POST /voice/transcribe.
type Transcription struct {
	Text       string  `json:"text"`
	Confidence float64 `json:"confidence,omitempty"`
	Language   string  `json:"language,omitempty"`
	// AIResponse is set when the transcript was also run through the
	// chat model (process_with_ai).
	AIResponse string `json:"ai_response,omitempty"`
	ModelUsed  string `json:"model_used,omitempty"`
}

// HealthStatus is the response from GET /health.
type HealthStatus struct {
	Status string `json:"status"`
}

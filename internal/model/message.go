// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package model defines the core data types for the ploymind client:
// chat messages, derived chat sessions, the model catalog entry, and the
// authenticated Telegram user.
package model

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/ploymind-tui/internal/util"
)

// =============================================================================
// ROLES
// =============================================================================

// Role identifies the author of a message.
type Role string

const (
	// RoleUser is a message typed by the user.
	RoleUser Role = "user"
	// RoleAssistant is a message produced by the AI backend (or synthesized
	// locally, e.g. the welcome greeting).
	RoleAssistant Role = "assistant"
)

// =============================================================================
// WELL-KNOWN MESSAGE IDS
// =============================================================================

// WelcomeID is the fixed ID of the synthetic greeting shown when the user
// has no stored history. At most one message with this ID exists at a time.
const WelcomeID = "welcome"

const (
	userIDPrefix        = "user_"
	errorIDPrefix       = "error-"
	modelChangeIDPrefix = "model-change-"
	welcomeModelPrefix  = "welcome_"
)

// =============================================================================
// MESSAGE
// =============================================================================

// Message is a single chat transcript entry.
type Message struct {
	ID        string    `json:"id"`
	Content   string    `json:"content"`
	Role      Role      `json:"role"`
	Timestamp time.Time `json:"timestamp"`

	// Model is the model that produced (or was selected when storing) this
	// message. Empty for messages the backend never tagged.
	Model string `json:"model,omitempty"`

	// InReplyTo links an assistant message to the ID of the user message it
	// answers. Empty for user messages and synthetic notices.
	InReplyTo string `json:"in_reply_to,omitempty"`

	// Failed marks an optimistically appended user message whose send was
	// rejected. The message stays in the transcript.
	Failed bool `json:"failed,omitempty"`
}

// NewUserMessage creates a user message with a locally minted ID.
func NewUserMessage(content string) Message {
	now := time.Now()
	return Message{
		ID:        fmt.Sprintf("%s%d", userIDPrefix, now.UnixMilli()),
		Content:   content,
		Role:      RoleUser,
		Timestamp: now,
	}
}

// NewAssistantMessage creates an assistant message from a backend reply.
// id is the server-assigned message ID; inReplyTo is the ID of the user
// message that triggered it.
func NewAssistantMessage(id, content, modelID, inReplyTo string, ts time.Time) Message {
	if ts.IsZero() {
		ts = time.Now()
	}
	return Message{
		ID:        id,
		Content:   content,
		Role:      RoleAssistant,
		Timestamp: ts,
		Model:     modelID,
		InReplyTo: inReplyTo,
	}
}

// NewErrorMessage creates the synthetic assistant apology appended after a
// failed send.
func NewErrorMessage(content, modelID, inReplyTo string) Message {
	now := time.Now()
	return Message{
		ID:        fmt.Sprintf("%s%d", errorIDPrefix, now.UnixMilli()),
		Content:   content,
		Role:      RoleAssistant,
		Timestamp: now,
		Model:     modelID,
		InReplyTo: inReplyTo,
	}
}

// NewWelcomeMessage creates the greeting shown on an empty transcript.
func NewWelcomeMessage(content string) Message {
	return Message{
		ID:        WelcomeID,
		Content:   content,
		Role:      RoleAssistant,
		Timestamp: time.Now(),
	}
}

// NewModelWelcomeMessage creates the single notice shown after switching to
// a model that has no stored history.
func NewModelWelcomeMessage(content, modelID string) Message {
	return Message{
		ID:        welcomeModelPrefix + modelID,
		Content:   content,
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		Model:     modelID,
	}
}

// NewModelChangeMessage creates an in-transcript notice that the active
// model changed.
func NewModelChangeMessage(content, modelID string) Message {
	return Message{
		ID:        fmt.Sprintf("%s%d", modelChangeIDPrefix, time.Now().UnixMilli()),
		Content:   content,
		Role:      RoleAssistant,
		Timestamp: time.Now(),
		Model:     modelID,
	}
}

// IsSynthetic reports whether the message was fabricated locally (welcome
// greetings and model-change notices). Synthetic messages are excluded from
// session counts and from the context sent to the backend.
func (m Message) IsSynthetic() bool {
	return m.ID == WelcomeID ||
		strings.HasPrefix(m.ID, welcomeModelPrefix) ||
		strings.HasPrefix(m.ID, modelChangeIDPrefix)
}

// IsOptimistic reports whether the message is a locally minted user message
// that has not (yet) been confirmed by the backend.
func (m Message) IsOptimistic() bool {
	return strings.HasPrefix(m.ID, userIDPrefix)
}

// Preview returns a truncated single-line preview of the message content.
func (m Message) Preview(maxRunes int) string {
	return util.TruncateRunes(util.FirstLine(m.Content), maxRunes)
}

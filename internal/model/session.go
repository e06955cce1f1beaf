// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"time"
)

// Display limits for derived session summaries.
const (
	// SessionTitleRunes is the maximum title length before truncation.
	SessionTitleRunes = 40
	// SessionPreviewRunes is the maximum preview length before truncation.
	SessionPreviewRunes = 80
	// MaxSessions caps the sidebar session list. The oldest entry is
	// dropped when a new one would exceed the cap.
	MaxSessions = 20
)

// ChatSession is a summary of one conversation thread, derived from the
// transcript. Sessions are presentation metadata; the backend only stores a
// flat message history.
type ChatSession struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Timestamp time.Time `json:"timestamp"`
	Preview   string    `json:"preview"`
	Model     string    `json:"model,omitempty"`

	// MessageCount is the number of non-synthetic messages in the session.
	MessageCount int `json:"message_count"`

	// Messages holds the full transcript for locally snapshotted sessions
	// (created by "new chat"). Empty for sessions derived from server
	// history, which are re-fetched on load.
	Messages []Message `json:"messages,omitempty"`
}

// NewChatID mints the ID for a fresh conversation thread.
func NewChatID() string {
	return fmt.Sprintf("chat_%d", time.Now().UnixMilli())
}

// SessionIDAt derives the stable ID for a history session opened by a user
// message with the given timestamp. Deriving from the timestamp keeps
// session derivation idempotent: the same history always yields the same
// session IDs.
func SessionIDAt(ts time.Time) string {
	return fmt.Sprintf("session_%d", ts.UnixMilli())
}

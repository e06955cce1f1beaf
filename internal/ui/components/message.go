// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/jeranaias/ploymind-tui/internal/model"
	"github.com/jeranaias/ploymind-tui/internal/ui/styles"
)

// =============================================================================
// MESSAGE BUBBLE COMPONENT
// =============================================================================

// MessageBubble renders a single transcript message.
type MessageBubble struct {
	Message       model.Message
	Width         int
	ShowTimestamp bool
	theme         *styles.Theme
}

// NewMessageBubble creates a message bubble.
func NewMessageBubble(msg model.Message, theme *styles.Theme) *MessageBubble {
	return &MessageBubble{
		Message:       msg,
		Width:         80,
		ShowTimestamp: true,
		theme:         theme,
	}
}

// SetWidth sets the bubble width.
func (b *MessageBubble) SetWidth(width int) {
	b.Width = width
}

// View renders the message: a role line, the content, and an optional
// failure marker. rendered is the pre-rendered content (markdown for
// assistant messages); pass "" to use the raw content.
func (b *MessageBubble) View(rendered string) string {
	content := rendered
	if content == "" {
		content = b.Message.Content
	}
	content = strings.TrimRight(content, "\n")

	width := b.Width - 4
	if width < 20 {
		width = 20
	}

	var label string
	var style = b.theme.AssistantBubble
	switch {
	case b.Message.IsSynthetic():
		style = b.theme.SystemBubble
		label = ""
	case b.Message.Role == model.RoleUser:
		style = b.theme.UserBubble
		label = "You"
	default:
		label = "Ploymind"
	}

	var lines []string
	if label != "" {
		meta := label
		if b.ShowTimestamp && !b.Message.Timestamp.IsZero() {
			meta += " · " + b.Message.Timestamp.Format("15:04")
		}
		if b.Message.Failed {
			meta += " " + b.theme.FailedMarker.Render("✗ failed to send")
		}
		lines = append(lines, b.theme.MessageMeta.Render(meta))
	}
	lines = append(lines, content)

	return style.Width(width).Render(strings.Join(lines, "\n"))
}

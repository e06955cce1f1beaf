// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"fmt"
	"strings"

	"github.com/jeranaias/ploymind-tui/internal/model"
	"github.com/jeranaias/ploymind-tui/internal/ui/styles"
)

// =============================================================================
// SIDEBAR COMPONENT
// =============================================================================

// Sidebar lists recent chat sessions, newest first.
type Sidebar struct {
	Width    int
	Height   int
	Sessions []model.ChatSession
	Cursor   int
	theme    *styles.Theme
}

// NewSidebar creates a sidebar.
func NewSidebar(theme *styles.Theme) *Sidebar {
	return &Sidebar{Width: 28, theme: theme}
}

// SetTheme swaps the style set, used after a config reload.
func (s *Sidebar) SetTheme(theme *styles.Theme) {
	s.theme = theme
}

// SetSize updates the sidebar dimensions.
func (s *Sidebar) SetSize(width, height int) {
	s.Width = width
	s.Height = height
}

// SetSessions replaces the session list and clamps the cursor.
func (s *Sidebar) SetSessions(sessions []model.ChatSession) {
	s.Sessions = sessions
	if s.Cursor >= len(sessions) {
		s.Cursor = len(sessions) - 1
	}
	if s.Cursor < 0 {
		s.Cursor = 0
	}
}

// MoveCursor shifts the selection by delta, clamped to the list.
func (s *Sidebar) MoveCursor(delta int) {
	s.Cursor += delta
	if s.Cursor < 0 {
		s.Cursor = 0
	}
	if s.Cursor >= len(s.Sessions) {
		s.Cursor = len(s.Sessions) - 1
	}
}

// Selected returns the session under the cursor.
func (s *Sidebar) Selected() (model.ChatSession, bool) {
	if s.Cursor < 0 || s.Cursor >= len(s.Sessions) {
		return model.ChatSession{}, false
	}
	return s.Sessions[s.Cursor], true
}

// View renders the session list.
func (s *Sidebar) View() string {
	inner := s.Width - 4
	if inner < 10 {
		inner = 10
	}

	var b strings.Builder
	b.WriteString(s.theme.SessionTitle.Render("History"))
	b.WriteString("\n\n")

	if len(s.Sessions) == 0 {
		b.WriteString(s.theme.SessionMeta.Render("No conversations yet"))
	}

	for i, sess := range s.Sessions {
		title := truncateCell(sess.Title, inner)
		meta := s.theme.SessionMeta.Render(
			fmt.Sprintf("%s · %d msgs", sess.Timestamp.Format("Jan 2"), sess.MessageCount))

		style := s.theme.SessionItem
		if i == s.Cursor {
			style = s.theme.SessionItemSelected
		}
		b.WriteString(style.Render(title))
		b.WriteString("\n")
		b.WriteString(meta)
		b.WriteString("\n")
	}

	return s.theme.Sidebar.Width(s.Width).Height(s.Height).Render(b.String())
}

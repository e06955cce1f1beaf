// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ploymind-tui/internal/model"
	"github.com/jeranaias/ploymind-tui/internal/ui/styles"
)

// =============================================================================
// STATUS BAR COMPONENT
// =============================================================================

// shortcut is a key hint shown in the status bar.
type shortcut struct {
	key  string
	desc string
}

var defaultShortcuts = []shortcut{
	{"enter", "send"},
	{"ctrl+n", "new chat"},
	{"ctrl+r", "regenerate"},
	{"ctrl+p", "models"},
	{"ctrl+c", "quit"},
}

// StatusBar is the bottom line: connection state on the left, key hints on
// the right.
type StatusBar struct {
	Width      int
	Connection model.ConnectionStatus
	theme      *styles.Theme
}

// NewStatusBar creates a status bar.
func NewStatusBar(theme *styles.Theme) *StatusBar {
	return &StatusBar{Width: 80, theme: theme}
}

// SetTheme swaps the style set, used after a config reload.
func (b *StatusBar) SetTheme(theme *styles.Theme) {
	b.theme = theme
}

// SetWidth updates the bar width.
func (b *StatusBar) SetWidth(width int) {
	b.Width = width
}

// SetConnection updates the connection indicator.
func (b *StatusBar) SetConnection(status model.ConnectionStatus) {
	b.Connection = status
}

// View renders the status bar line.
func (b *StatusBar) View() string {
	width := b.Width
	if width < 40 {
		width = 40
	}

	var status string
	switch b.Connection {
	case model.StatusConnected:
		status = b.theme.StatusConnected.Render("● connected")
	case model.StatusError:
		status = b.theme.StatusError.Render("● disconnected")
	default:
		status = b.theme.StatusConnecting.Render("● connecting")
	}

	var hints []string
	for _, sc := range defaultShortcuts {
		hints = append(hints,
			b.theme.ShortcutKey.Render(sc.key)+b.theme.ShortcutDesc.Render(" "+sc.desc))
	}
	right := strings.Join(hints, "  ")

	gap := width - lipgloss.Width(status) - lipgloss.Width(right) - 2
	if gap < 1 {
		// Narrow terminals drop the hints rather than wrapping.
		right = ""
		gap = width - lipgloss.Width(status) - 2
		if gap < 1 {
			gap = 1
		}
	}

	return b.theme.StatusBar.Width(width).Render(status + strings.Repeat(" ", gap) + right)
}

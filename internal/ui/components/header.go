// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package components provides the visual UI components for the Ploymind TUI.
package components

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/jeranaias/ploymind-tui/internal/ui/styles"
)

// =============================================================================
// HEADER COMPONENT
// =============================================================================

// Header is the title bar: brand on the left, active model on the right.
type Header struct {
	Title     string
	ModelName string
	UserName  string
	Width     int
	theme     *styles.Theme
}

// NewHeader creates a new Header component with default values.
func NewHeader(theme *styles.Theme) *Header {
	return &Header{
		Title: "Ploymind AI",
		Width: 80,
		theme: theme,
	}
}

// SetTheme swaps the style set, used after a config reload.
func (h *Header) SetTheme(theme *styles.Theme) {
	h.theme = theme
}

// SetWidth updates the header width.
func (h *Header) SetWidth(width int) {
	h.Width = width
}

// SetModel updates the displayed model label.
func (h *Header) SetModel(model string) {
	h.ModelName = model
}

// SetUser updates the displayed user name.
func (h *Header) SetUser(name string) {
	h.UserName = name
}

// View renders the header line.
func (h *Header) View() string {
	width := h.Width
	if width < 40 {
		width = 40
	}

	brand := h.theme.HeaderBrand.Render(h.Title)
	if h.UserName != "" && h.UserName != "there" {
		brand += h.theme.HeaderSubtitle.Render(" · " + h.UserName)
	}

	right := ""
	if h.ModelName != "" {
		right = h.theme.ModelBadge.Render(h.ModelName)
	}

	gap := width - lipgloss.Width(brand) - lipgloss.Width(right) - 2
	if gap < 1 {
		gap = 1
		right = truncateCell(right, width-lipgloss.Width(brand)-3)
	}

	line := brand + strings.Repeat(" ", gap) + right
	return h.theme.Header.Width(width).Render(line)
}

// truncateCell trims a rendered cell to the given display width.
func truncateCell(s string, width int) string {
	if width <= 0 {
		return ""
	}
	return runewidth.Truncate(s, width, "…")
}

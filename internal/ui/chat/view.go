// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	"github.com/charmbracelet/glamour"
	"github.com/charmbracelet/lipgloss"

	"github.com/jeranaias/ploymind-tui/internal/model"
	"github.com/jeranaias/ploymind-tui/internal/ui/components"
	"github.com/jeranaias/ploymind-tui/internal/ui/styles"
)

// sidebarWidth is the fixed width of the session list in wide layouts.
const sidebarWidth = 30

// =============================================================================
// LAYOUT
// =============================================================================

// resize recomputes component dimensions after a terminal resize.
func (m *Model) resize(width, height int) {
	m.width = width
	m.height = height
	m.theme.SetSize(width, height)

	chatWidth := width
	if m.showSidebar() {
		chatWidth = width - sidebarWidth
	}

	// Header, status bar, input, and its border.
	viewportHeight := height - 5
	if viewportHeight < 3 {
		viewportHeight = 3
	}

	if !m.ready {
		m.viewport = viewport.New(chatWidth, viewportHeight)
		m.ready = true
	} else {
		m.viewport.Width = chatWidth
		m.viewport.Height = viewportHeight
	}

	m.header.SetWidth(width)
	m.statusBar.SetWidth(width)
	m.sidebar.SetSize(sidebarWidth, viewportHeight)
	m.input.Width = chatWidth - 6
	m.markdown.setWidth(chatWidth - 8)
}

// showSidebar reports whether the layout is wide enough for the session
// list.
func (m *Model) showSidebar() bool {
	return m.theme.GetLayoutMode() == styles.LayoutWide
}

// refreshViewport re-renders the transcript into the viewport. gotoBottom
// keeps the latest message in view.
func (m *Model) refreshViewport(gotoBottom bool) {
	if !m.ready {
		return
	}
	m.viewport.SetContent(m.renderTranscript())
	if gotoBottom {
		m.viewport.GotoBottom()
	}
}

// =============================================================================
// VIEW
// =============================================================================

// View renders the full application frame.
func (m Model) View() string {
	if !m.ready {
		return "Starting Ploymind AI..."
	}

	if m.mode == ModePicker {
		return m.renderPicker()
	}

	chat := m.viewport.View()
	if m.showSidebar() || m.mode == ModeSidebar {
		chat = lipgloss.JoinHorizontal(lipgloss.Top, m.sidebar.View(), chat)
	}

	var banner string
	switch {
	case m.snap.Error != "":
		banner = m.theme.ErrorBanner.Render(m.snap.Error)
	case m.notice != "":
		banner = m.theme.MessageMeta.Render(m.notice)
	case m.spin.IsActive():
		banner = m.spin.View()
	}

	inputLine := m.theme.InputContainer.Width(m.viewport.Width).Render(
		m.theme.InputPrompt.Render("> ") + m.input.View())

	sections := []string{m.header.View(), chat}
	if banner != "" {
		sections = append(sections, banner)
	}
	sections = append(sections, inputLine, m.statusBar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// renderTranscript renders all visible messages.
func (m Model) renderTranscript() string {
	msgs := m.snap.Messages
	if len(msgs) == 0 {
		return m.theme.MessageMeta.Render("No messages yet. Say hello!")
	}

	parts := make([]string, 0, len(msgs))
	for _, msg := range msgs {
		bubble := components.NewMessageBubble(msg, m.theme)
		bubble.SetWidth(m.viewport.Width)

		rendered := ""
		if msg.Role == model.RoleAssistant && !msg.IsSynthetic() {
			rendered = m.markdown.render(msg.Content)
		}
		parts = append(parts, bubble.View(rendered))
	}
	return strings.Join(parts, "\n\n")
}

// renderPicker renders the model selection overlay.
func (m Model) renderPicker() string {
	var b strings.Builder
	b.WriteString(m.theme.HeaderTitle.Render("Select a model"))
	b.WriteString("\n\n")

	for i, info := range m.pickerItems {
		style := m.theme.PickerItem
		marker := "  "
		if info.ID == m.snap.SelectedModel {
			marker = "* "
		}
		if i == m.pickerCursor {
			style = m.theme.PickerItemSelected
		}
		b.WriteString(style.Render(marker + info.Label()))
		b.WriteString("\n")
		if info.Description != "" {
			b.WriteString(m.theme.PickerDesc.Render("    " + info.Description))
			b.WriteString("\n")
		}
	}

	b.WriteString("\n")
	b.WriteString(m.theme.PickerDesc.Render("enter select · esc cancel"))

	box := m.theme.PickerBox.Render(b.String())
	return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, box)
}

// =============================================================================
// MARKDOWN RENDERING
// =============================================================================

// markdownCache wraps a glamour renderer, rebuilt on width changes.
type markdownCache struct {
	renderer *glamour.TermRenderer
	width    int
}

func newMarkdownCache() *markdownCache {
	return &markdownCache{width: 72}
}

func (c *markdownCache) setWidth(width int) {
	if width < 20 {
		width = 20
	}
	if width == c.width && c.renderer != nil {
		return
	}
	c.width = width
	c.renderer = nil
}

// render converts markdown to styled terminal output, falling back to the
// raw text when rendering fails.
func (c *markdownCache) render(content string) string {
	if c.renderer == nil {
		r, err := glamour.NewTermRenderer(
			glamour.WithAutoStyle(),
			glamour.WithWordWrap(c.width),
		)
		if err != nil {
			return content
		}
		c.renderer = r
	}
	out, err := c.renderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(out, "\n")
}

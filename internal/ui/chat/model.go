// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package chat provides the Bubble Tea chat view: transcript, input,
// session sidebar, and model picker, driven by the session manager.
package chat

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ploymind-tui/internal/model"
	"github.com/jeranaias/ploymind-tui/internal/session"
	"github.com/jeranaias/ploymind-tui/internal/state"
	"github.com/jeranaias/ploymind-tui/internal/ui/components"
	"github.com/jeranaias/ploymind-tui/internal/ui/styles"
)

// =============================================================================
// VIEW MODES
// =============================================================================

// Mode selects which surface has input focus.
type Mode int

const (
	ModeChat    Mode = iota // Typing into the input box
	ModePicker              // Choosing a model
	ModeSidebar             // Navigating the session list
)

// =============================================================================
// CHAT MODEL
// =============================================================================

// Model is the Bubble Tea model for the chat application.
type Model struct {
	// Domain
	manager *session.Manager
	store   *state.Store
	snap    state.State

	// Mode
	mode Mode

	// Styling
	theme *styles.Theme

	// Dimensions
	width  int
	height int
	ready  bool

	// UI components
	viewport  viewport.Model
	input     textinput.Model
	header    *components.Header
	statusBar *components.StatusBar
	sidebar   *components.Sidebar
	spin      components.Spinner

	// Model picker
	pickerItems  []model.ModelInfo
	pickerCursor int

	// Key bindings
	keyMap KeyMap

	// Markdown rendering
	markdown *markdownCache

	// Transient notice shown in place of the error banner
	notice string
}

// New creates the chat model around a wired session manager.
func New(manager *session.Manager, theme *styles.Theme) Model {
	input := textinput.New()
	input.Placeholder = "Message Ploymind AI..."
	input.CharLimit = 4000
	input.Focus()

	return Model{
		manager:   manager,
		store:     manager.Store(),
		snap:      manager.Store().State(),
		theme:     theme,
		input:     input,
		header:    components.NewHeader(theme),
		statusBar: components.NewStatusBar(theme),
		sidebar:   components.NewSidebar(theme),
		spin:      components.NewSpinner(theme),
		keyMap:    DefaultKeyMap(),
		markdown:  newMarkdownCache(),
	}
}

// Init starts backend initialization and the state change listener.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		initCmd(m.manager),
		waitForChange(m.store),
		textinput.Blink,
	)
}

// refreshPicker rebuilds the picker entries from the catalog with the
// cursor on the active model.
func (m *Model) refreshPicker() {
	m.pickerItems = m.manager.Catalog().Models()
	m.pickerCursor = 0
	for i, info := range m.pickerItems {
		if info.ID == m.snap.SelectedModel {
			m.pickerCursor = i
			break
		}
	}
}

// selectedModelLabel resolves the active model's display label.
func (m *Model) selectedModelLabel() string {
	info := m.manager.Catalog().Resolve(m.snap.SelectedModel)
	return info.Label()
}

// background returns the context used for manager calls issued from the
// UI. Commands run in goroutines owned by Bubble Tea; cancellation comes
// from process exit.
func background() context.Context {
	return context.Background()
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ploymind-tui/internal/session"
	"github.com/jeranaias/ploymind-tui/internal/ui/styles"
)

// =============================================================================
// UPDATE
// =============================================================================

// Update handles all Bubble Tea messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.resize(msg.Width, msg.Height)
		m.refreshViewport(true)

	case stateChangedMsg:
		wasLoading := m.snap.Loading || m.snap.Regenerating
		m.snap = m.store.State()
		m.sidebar.SetSessions(m.snap.Sessions)
		m.statusBar.SetConnection(m.snap.Connection)
		m.header.SetModel(m.selectedModelLabel())
		m.header.SetUser(m.snap.User.DisplayName())
		m.refreshViewport(true)

		nowLoading := m.snap.Loading || m.snap.Regenerating
		if nowLoading && !wasLoading {
			cmds = append(cmds, m.spin.Start())
		} else if !nowLoading {
			m.spin.Stop()
		}
		cmds = append(cmds, waitForChange(m.store))

	case initDoneMsg:
		m.snap = m.store.State()
		m.header.SetModel(m.selectedModelLabel())
		m.header.SetUser(m.snap.User.DisplayName())
		m.refreshViewport(true)

	case sendDoneMsg:
		if msg.err != nil && errors.Is(msg.err, session.ErrBusy) {
			m.notice = "Still waiting on the previous message"
		}

	case noticeMsg:
		m.notice = msg.text

	case ConfigReloadedMsg:
		m.theme = styles.NewTheme(msg.Config.UI.Theme)
		m.theme.SetSize(m.width, m.height)
		m.header.SetTheme(m.theme)
		m.statusBar.SetTheme(m.theme)
		m.sidebar.SetTheme(m.theme)
		m.refreshViewport(true)
		m.notice = "Configuration reloaded"

	case tea.KeyMsg:
		var cmd tea.Cmd
		m, cmd = m.handleKey(msg)
		cmds = append(cmds, cmd)

	default:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		cmds = append(cmds, cmd)
	}

	// Viewport scrolling; key events only reach it in chat mode.
	if _, ok := msg.(tea.KeyMsg); !ok || m.mode == ModeChat {
		var cmd tea.Cmd
		m.viewport, cmd = m.viewport.Update(msg)
		cmds = append(cmds, cmd)
	}

	return m, tea.Batch(cmds...)
}

// handleKey routes key presses by mode.
func (m Model) handleKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keyMap.Quit) {
		return m, tea.Quit
	}

	switch m.mode {
	case ModePicker:
		return m.handlePickerKey(msg)
	case ModeSidebar:
		return m.handleSidebarKey(msg)
	default:
		return m.handleChatKey(msg)
	}
}

// handleChatKey handles keys while the input box has focus.
func (m Model) handleChatKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Send):
		text := strings.TrimSpace(m.input.Value())
		if text == "" {
			return m, nil
		}
		m.input.SetValue("")
		m.notice = ""
		if strings.HasPrefix(text, "/") {
			return m.handleSlashCommand(text)
		}
		return m, sendCmd(m.manager, text)

	case key.Matches(msg, m.keyMap.NewChat):
		m.manager.StartNewChat()
		return m, nil

	case key.Matches(msg, m.keyMap.Regenerate):
		return m, regenerateCmd(m.manager)

	case key.Matches(msg, m.keyMap.Models):
		m.refreshPicker()
		m.mode = ModePicker
		return m, nil

	case key.Matches(msg, m.keyMap.Sessions):
		m.mode = ModeSidebar
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handlePickerKey handles keys while the model picker is open.
func (m Model) handlePickerKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Back):
		m.mode = ModeChat

	case key.Matches(msg, m.keyMap.Up):
		if m.pickerCursor > 0 {
			m.pickerCursor--
		}

	case key.Matches(msg, m.keyMap.Down):
		if m.pickerCursor < len(m.pickerItems)-1 {
			m.pickerCursor++
		}

	case key.Matches(msg, m.keyMap.Select):
		m.mode = ModeChat
		if m.pickerCursor < len(m.pickerItems) {
			return m, switchModelCmd(m.manager, m.pickerItems[m.pickerCursor].ID)
		}
	}
	return m, nil
}

// handleSidebarKey handles keys while the session list has focus.
func (m Model) handleSidebarKey(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keyMap.Back):
		m.mode = ModeChat

	case key.Matches(msg, m.keyMap.Up):
		m.sidebar.MoveCursor(-1)

	case key.Matches(msg, m.keyMap.Down):
		m.sidebar.MoveCursor(1)

	case key.Matches(msg, m.keyMap.Delete):
		if sess, ok := m.sidebar.Selected(); ok {
			m.manager.DeleteSession(sess.ID)
		}

	case key.Matches(msg, m.keyMap.Select):
		m.mode = ModeChat
		if sess, ok := m.sidebar.Selected(); ok {
			return m, loadSessionCmd(m.manager, sess)
		}
	}
	return m, nil
}

// handleSlashCommand interprets "/" commands typed into the input box.
func (m Model) handleSlashCommand(text string) (Model, tea.Cmd) {
	fields := strings.Fields(text)
	switch fields[0] {
	case "/new":
		m.manager.StartNewChat()

	case "/model":
		if len(fields) > 1 {
			return m, switchModelCmd(m.manager, fields[1])
		}
		m.refreshPicker()
		m.mode = ModePicker

	case "/history":
		m.mode = ModeSidebar

	case "/clear":
		m.manager.ClearTranscript()

	case "/voice":
		if len(fields) < 2 {
			m.notice = "Usage: /voice <file>"
			return m, nil
		}
		return m, voiceCmd(m.manager, fields[1])

	case "/regenerate":
		return m, regenerateCmd(m.manager)

	case "/help":
		m.notice = "Commands: /new /model [id] /history /clear /voice <file> /regenerate /quit"

	case "/quit":
		return m, tea.Quit

	default:
		m.notice = "Unknown command " + fields[0] + " (try /help)"
	}
	return m, nil
}

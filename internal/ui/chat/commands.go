// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package chat

import (
	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ploymind-tui/internal/config"
	"github.com/jeranaias/ploymind-tui/internal/model"
	"github.com/jeranaias/ploymind-tui/internal/session"
	"github.com/jeranaias/ploymind-tui/internal/state"
)

// =============================================================================
// MESSAGES
// =============================================================================

// stateChangedMsg signals that the store has new state to render.
type stateChangedMsg struct{}

// initDoneMsg signals that backend initialization finished.
type initDoneMsg struct{}

// sendDoneMsg carries the result of a send or regenerate.
type sendDoneMsg struct{ err error }

// noticeMsg sets a transient status line notice.
type noticeMsg struct{ text string }

// ConfigReloadedMsg carries a freshly loaded config after the config file
// changed on disk. Sent from outside the program by the config watcher.
type ConfigReloadedMsg struct{ Config *config.Config }

// =============================================================================
// COMMANDS
// =============================================================================

// waitForChange blocks on the store's change channel. Re-issued after
// every stateChangedMsg so the subscription stays alive.
func waitForChange(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		<-store.Changes()
		return stateChangedMsg{}
	}
}

// initCmd runs manager initialization off the UI goroutine.
func initCmd(manager *session.Manager) tea.Cmd {
	return func() tea.Msg {
		manager.Init(background())
		return initDoneMsg{}
	}
}

// sendCmd submits a user message.
func sendCmd(manager *session.Manager, content string) tea.Cmd {
	return func() tea.Msg {
		return sendDoneMsg{err: manager.Send(background(), content)}
	}
}

// regenerateCmd re-sends the message behind the last reply.
func regenerateCmd(manager *session.Manager) tea.Cmd {
	return func() tea.Msg {
		return sendDoneMsg{err: manager.Regenerate(background(), "")}
	}
}

// switchModelCmd changes the active model and reloads its history.
func switchModelCmd(manager *session.Manager, id string) tea.Cmd {
	return func() tea.Msg {
		manager.SwitchModel(background(), id)
		return noticeMsg{}
	}
}

// voiceCmd transcribes an audio file and sends the transcript.
func voiceCmd(manager *session.Manager, path string) tea.Cmd {
	return func() tea.Msg {
		if err := manager.SendVoice(background(), path); err != nil {
			return noticeMsg{text: "Voice note failed: " + err.Error()}
		}
		return noticeMsg{}
	}
}

// loadSessionCmd reopens a sidebar session.
func loadSessionCmd(manager *session.Manager, sess model.ChatSession) tea.Cmd {
	return func() tea.Msg {
		manager.LoadSession(background(), sess)
		return noticeMsg{}
	}
}

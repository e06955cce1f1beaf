// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package state

import "github.com/jeranaias/ploymind-tui/internal/model"

// Action is one state transition. Every mutation of the Store goes through
// an action so transitions stay enumerable and testable; there is no other
// write path.
type Action interface {
	isAction()
}

// SetInitialized records the authenticated user and marks startup done.
type SetInitialized struct {
	User model.UserData
}

// SetInput replaces the composer text.
type SetInput struct {
	Text string
}

// AppendMessage appends one message to the visible transcript.
type AppendMessage struct {
	Message model.Message
}

// SetMessages replaces the visible transcript.
type SetMessages struct {
	Messages []model.Message
}

// SetHistory replaces the full converted history backing session
// derivation and context assembly.
type SetHistory struct {
	Messages []model.Message
}

// RemoveMessage deletes a message from the visible transcript by ID.
type RemoveMessage struct {
	ID string
}

// MarkMessageFailed flags an optimistic user message whose send was
// rejected. The message itself stays in place.
type MarkMessageFailed struct {
	ID string
}

// SetLoading toggles the send-in-flight flag.
type SetLoading struct {
	Loading bool
}

// SetRegenerating toggles the regenerate-in-flight flag.
type SetRegenerating struct {
	Regenerating bool
}

// SetError sets the error banner text; empty clears it.
type SetError struct {
	Text string
}

// SetConnection updates the backend connection indicator.
type SetConnection struct {
	Status model.ConnectionStatus
}

// SetSelectedModel changes the active model ID.
type SetSelectedModel struct {
	ID string
}

// SetSessions replaces the sidebar session list.
type SetSessions struct {
	Sessions []model.ChatSession
}

// UpsertSession inserts or updates one session summary. New sessions go to
// the front; the list is capped at model.MaxSessions with the oldest
// entry dropped.
type UpsertSession struct {
	Session model.ChatSession
}

// RemoveSession deletes a session summary by ID.
type RemoveSession struct {
	ID string
}

// SetCurrentChat records the active conversation thread ID.
type SetCurrentChat struct {
	ID string
}

func (SetInitialized) isAction()    {}
func (SetInput) isAction()          {}
func (AppendMessage) isAction()     {}
func (SetMessages) isAction()       {}
func (SetHistory) isAction()        {}
func (RemoveMessage) isAction()     {}
func (MarkMessageFailed) isAction() {}
func (SetLoading) isAction()        {}
func (SetRegenerating) isAction()   {}
func (SetError) isAction()          {}
func (SetConnection) isAction()     {}
func (SetSelectedModel) isAction()  {}
func (SetSessions) isAction()       {}
func (UpsertSession) isAction()     {}
func (RemoveSession) isAction()     {}
func (SetCurrentChat) isAction()    {}

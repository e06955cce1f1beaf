// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package state holds the client's session state behind a reducer-style
// store. The orchestrator dispatches typed actions; the UI reads snapshots
// and blocks on change notifications. A generation counter fences async
// completions so results from an abandoned operation never mutate state
// that has since moved on.
package state

import (
	"sync"

	"github.com/jeranaias/ploymind-tui/internal/model"
)

// State is the complete client session state. Snapshots returned by the
// Store are copies; mutating them has no effect.
type State struct {
	// Messages is the visible transcript.
	Messages []model.Message
	// History is the full converted server history behind the visible
	// window, used for session derivation and context assembly.
	History []model.Message

	Input        string
	Loading      bool
	Regenerating bool
	Error        string
	Connection   model.ConnectionStatus

	User        model.UserData
	Initialized bool

	SelectedModel string
	Sessions      []model.ChatSession
	CurrentChatID string

	// Generation increments on every context switch (model switch, new
	// chat, session load). Async completions issued under an older
	// generation are dropped.
	Generation uint64
}

// Store owns a State and serializes all mutations.
type Store struct {
	mu    sync.RWMutex
	state State

	notify chan struct{}
}

// New creates an empty store.
func New() *Store {
	return &Store{
		state: State{
			Connection:    model.StatusConnecting,
			CurrentChatID: model.NewChatID(),
		},
		notify: make(chan struct{}, 1),
	}
}

// State returns a snapshot of the current state. Slices are copied so the
// caller can iterate without holding any lock.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.copy()
}

func (st State) copy() State {
	out := st
	out.Messages = append([]model.Message(nil), st.Messages...)
	out.History = append([]model.Message(nil), st.History...)
	out.Sessions = append([]model.ChatSession(nil), st.Sessions...)
	return out
}

// Generation returns the current generation counter.
func (s *Store) Generation() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state.Generation
}

// NextGeneration advances the generation counter and returns the new
// value. Called at the start of every context switch.
func (s *Store) NextGeneration() uint64 {
	s.mu.Lock()
	s.state.Generation++
	gen := s.state.Generation
	s.mu.Unlock()
	s.wake()
	return gen
}

// Dispatch applies one or more actions atomically.
func (s *Store) Dispatch(actions ...Action) {
	s.mu.Lock()
	for _, a := range actions {
		s.state.apply(a)
	}
	s.mu.Unlock()
	s.wake()
}

// DispatchIf applies the actions only when the store is still at gen.
// Returns false when the actions were dropped as stale.
func (s *Store) DispatchIf(gen uint64, actions ...Action) bool {
	s.mu.Lock()
	if s.state.Generation != gen {
		s.mu.Unlock()
		return false
	}
	for _, a := range actions {
		s.state.apply(a)
	}
	s.mu.Unlock()
	s.wake()
	return true
}

// Changes returns a channel that receives a (coalesced) signal after each
// state change. Intended for the TUI's subscription command.
func (s *Store) Changes() <-chan struct{} {
	return s.notify
}

func (s *Store) wake() {
	select {
	case s.notify <- struct{}{}:
	default:
	}
}

// =============================================================================
// REDUCER
// =============================================================================

func (st *State) apply(action Action) {
	switch a := action.(type) {
	case SetInitialized:
		st.User = a.User
		st.Initialized = true

	case SetInput:
		st.Input = a.Text

	case AppendMessage:
		st.Messages = append(st.Messages, a.Message)

	case SetMessages:
		st.Messages = append([]model.Message(nil), a.Messages...)

	case SetHistory:
		st.History = append([]model.Message(nil), a.Messages...)

	case RemoveMessage:
		for i, m := range st.Messages {
			if m.ID == a.ID {
				st.Messages = append(st.Messages[:i:i], st.Messages[i+1:]...)
				break
			}
		}

	case MarkMessageFailed:
		for i := range st.Messages {
			if st.Messages[i].ID == a.ID {
				st.Messages[i].Failed = true
				break
			}
		}

	case SetLoading:
		st.Loading = a.Loading

	case SetRegenerating:
		st.Regenerating = a.Regenerating

	case SetError:
		st.Error = a.Text

	case SetConnection:
		st.Connection = a.Status

	case SetSelectedModel:
		st.SelectedModel = a.ID

	case SetSessions:
		st.Sessions = append([]model.ChatSession(nil), a.Sessions...)
		if len(st.Sessions) > model.MaxSessions {
			st.Sessions = st.Sessions[:model.MaxSessions]
		}

	case UpsertSession:
		for i := range st.Sessions {
			if st.Sessions[i].ID == a.Session.ID {
				st.Sessions[i] = a.Session
				return
			}
		}
		st.Sessions = append([]model.ChatSession{a.Session}, st.Sessions...)
		if len(st.Sessions) > model.MaxSessions {
			st.Sessions = st.Sessions[:model.MaxSessions]
		}

	case RemoveSession:
		for i := range st.Sessions {
			if st.Sessions[i].ID == a.ID {
				st.Sessions = append(st.Sessions[:i:i], st.Sessions[i+1:]...)
				break
			}
		}

	case SetCurrentChat:
		st.CurrentChatID = a.ID
	}
}

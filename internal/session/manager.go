// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package session drives the conversation lifecycle: reconciling server
// history into the local transcript, deriving the session sidebar, and
// orchestrating user actions (send, regenerate, model switch, new chat).
// All state changes flow through the state.Store; this package is the only
// dispatcher.
package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/jeranaias/ploymind-tui/internal/api"
	"github.com/jeranaias/ploymind-tui/internal/catalog"
	"github.com/jeranaias/ploymind-tui/internal/model"
	"github.com/jeranaias/ploymind-tui/internal/state"
	"github.com/jeranaias/ploymind-tui/internal/storage"
)

// Sentinel errors.
var (
	// ErrBusy means another send or regenerate is in flight.
	ErrBusy = errors.New("another request is in progress")
	// ErrNoSource means the user message behind an assistant reply could
	// not be resolved for regeneration.
	ErrNoSource = errors.New("could not find the original user message")
	// ErrNoSpeech means a voice note transcribed to an empty string.
	ErrNoSpeech = errors.New("no speech detected in the recording")
)

// apologyContent is the synthetic assistant reply appended after a failed
// send.
const apologyContent = "I'm having trouble processing your request right now. " +
	"This might be due to model configuration issues. Please try again in a " +
	"moment, or try switching to a different AI model."

// connectivityErrorText replaces raw transport errors in the banner. Dial
// and DNS details mean nothing to the user.
const connectivityErrorText = "Unable to reach the server. Check your connection and try again."

// Backend is the slice of the API client the manager uses. Narrowed to an
// interface so tests can substitute a scripted backend.
type Backend interface {
	ValidateAuth(ctx context.Context) (*api.AuthValidation, error)
	SendChatMessage(ctx context.Context, req api.ChatRequest) (*api.ChatReply, error)
	GetChatHistory(ctx context.Context, limit int, modelID string) (*api.History, error)
	SelectModel(ctx context.Context, modelID string) error
	TranscribeVoice(ctx context.Context, filename string, audio io.Reader, modelID string, processWithAI bool) (*api.Transcription, error)
}

// Config tunes manager behavior.
type Config struct {
	// FallbackModelID is switched to after a model configuration error.
	FallbackModelID string
	// FallbackDelay is how long the failed state stays visible before
	// the automatic switch. Shortened in tests.
	FallbackDelay time.Duration
}

// DefaultConfig returns production settings.
func DefaultConfig() Config {
	return Config{
		FallbackModelID: catalog.FallbackModelID,
		FallbackDelay:   2 * time.Second,
	}
}

// Manager owns the conversation lifecycle for one client.
type Manager struct {
	store   *state.Store
	backend Backend
	catalog *catalog.Catalog
	local   *storage.Store // optional; nil disables persistence
	cfg     Config
}

// NewManager wires the manager. local may be nil when persistence is
// unavailable (the client still works, it just forgets on exit).
func NewManager(store *state.Store, backend Backend, cat *catalog.Catalog, local *storage.Store, cfg Config) *Manager {
	if cfg.FallbackModelID == "" {
		cfg.FallbackModelID = catalog.FallbackModelID
	}
	if cfg.FallbackDelay == 0 {
		cfg.FallbackDelay = 2 * time.Second
	}
	return &Manager{
		store:   store,
		backend: backend,
		catalog: cat,
		local:   local,
		cfg:     cfg,
	}
}

// Store exposes the state store for UI subscription.
func (m *Manager) Store() *state.Store {
	return m.store
}

// Catalog exposes the active model registry.
func (m *Manager) Catalog() *catalog.Catalog {
	return m.catalog
}

// =============================================================================
// STARTUP
// =============================================================================

// Init validates auth, restores the preferred model, and loads history.
// An unreachable backend degrades to a welcome screen with an error
// banner instead of failing startup.
func (m *Manager) Init(ctx context.Context) {
	m.store.Dispatch(state.SetConnection{Status: model.StatusConnecting})

	var user model.UserData
	var serverPreferred string
	validation, err := m.backend.ValidateAuth(ctx)
	if err != nil {
		errText := fmt.Sprintf("Failed to connect: %v", err)
		if api.IsNetworkError(err) {
			errText = connectivityErrorText
		}
		m.store.Dispatch(
			state.SetInitialized{},
			state.SetConnection{Status: model.StatusError},
			state.SetError{Text: errText},
			state.SetMessages{Messages: []model.Message{m.welcome(model.UserData{})}},
		)
		return
	}
	user = validation.User
	serverPreferred = validation.Preferences.PreferredModel
	m.store.Dispatch(state.SetInitialized{User: user})

	// Preference order: local store, server-side preference, default.
	preferred := ""
	if m.local != nil {
		preferred = m.local.SelectedModel()
	}
	if preferred == "" {
		preferred = serverPreferred
	}
	selected := m.catalog.Resolve(preferred)
	m.store.Dispatch(state.SetSelectedModel{ID: selected.ID})

	gen := m.store.Generation()
	m.loadHistory(ctx, gen, selected.ID, m.welcome(user))
	m.restoreSessions()
}

// welcome builds the greeting for an empty transcript.
func (m *Manager) welcome(user model.UserData) model.Message {
	return model.NewWelcomeMessage(fmt.Sprintf(
		"👋 Hello %s! I'm Ploymind AI, your intelligent assistant. How can I help you today?",
		user.DisplayName(),
	))
}

// restoreSessions folds locally snapshotted sessions into the sidebar.
func (m *Manager) restoreSessions() {
	if m.local == nil {
		return
	}
	snapshots, err := m.local.Sessions()
	if err != nil || len(snapshots) == 0 {
		return
	}
	merged := MergeSessions(snapshots, m.store.State().Sessions)
	m.store.Dispatch(state.SetSessions{Sessions: merged})
	// Rewrite the stored list so rows dropped by the merge cap do not
	// resurface on the next startup.
	m.local.ReplaceSessions(merged)
}

// =============================================================================
// HISTORY LOADING
// =============================================================================

// loadHistory fetches stored history and reconciles it into the store.
// emptyMsg is shown as the sole transcript entry when no history exists
// (the welcome greeting on startup, the switch notice on model change).
// All dispatches are fenced on gen.
func (m *Manager) loadHistory(ctx context.Context, gen uint64, modelFilter string, emptyMsg model.Message) {
	hist, err := m.backend.GetChatHistory(ctx, api.DefaultHistoryLimit, modelFilter)
	if err == nil && len(hist.Messages) == 0 && modelFilter != "" {
		// Nothing stored under this model; fall back to the unfiltered
		// history so older untagged conversations still appear.
		hist, err = m.backend.GetChatHistory(ctx, api.DefaultHistoryLimit, "")
	}
	if err != nil {
		m.store.DispatchIf(gen,
			state.SetMessages{Messages: []model.Message{emptyMsg}},
			state.SetHistory{},
			state.SetConnection{Status: model.StatusConnected},
		)
		return
	}

	converted := ConvertHistory(hist.Messages)
	filtered := FilterByModel(converted, modelFilter)

	if len(filtered) == 0 {
		m.store.DispatchIf(gen,
			state.SetMessages{Messages: []model.Message{emptyMsg}},
			state.SetHistory{},
			state.SetConnection{Status: model.StatusConnected},
			state.SetError{},
		)
		return
	}

	// Sessions derive from the full converted history, not the filtered
	// view, so the sidebar spans all models.
	sessions := DeriveSessions(converted)
	m.store.DispatchIf(gen,
		state.SetHistory{Messages: converted},
		state.SetMessages{Messages: tailWindow(filtered, VisibleWindow)},
		state.SetSessions{Sessions: sessions},
		state.SetConnection{Status: model.StatusConnected},
		state.SetError{},
	)
	m.restoreSessions()
}

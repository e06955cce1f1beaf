// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/jeranaias/ploymind-tui/internal/api"
	"github.com/jeranaias/ploymind-tui/internal/model"
	"github.com/jeranaias/ploymind-tui/internal/state"
)

// =============================================================================
// SEND
// =============================================================================

// Send submits a user message. The message is appended optimistically
// before the request goes out and is never removed afterwards; a failed
// send marks it and appends a synthetic apology instead.
func (m *Manager) Send(ctx context.Context, content string) error {
	content = strings.TrimSpace(content)
	if content == "" {
		return nil
	}

	st := m.store.State()
	if st.Loading || st.Regenerating {
		return ErrBusy
	}
	return m.send(ctx, content)
}

// send is the unguarded send path shared with Regenerate.
func (m *Manager) send(ctx context.Context, content string) error {
	gen := m.store.Generation()
	st := m.store.State()
	priorTranscript := st.Messages

	userMsg := model.NewUserMessage(content)
	userMsg.Model = st.SelectedModel
	m.store.Dispatch(
		state.AppendMessage{Message: userMsg},
		state.SetInput{},
		state.SetLoading{Loading: true},
		state.SetConnection{Status: model.StatusConnecting},
		state.SetError{},
	)

	// Context: recent stored history plus the transcript as it stood
	// before this message. A failed history fetch degrades to
	// transcript-only context rather than aborting the send.
	var history []model.Message
	if hist, err := m.backend.GetChatHistory(ctx, api.ContextHistoryLimit, ""); err == nil {
		history = ConvertHistory(hist.Messages)
	}
	contextBlock := BuildContext(history, priorTranscript)

	reply, err := m.backend.SendChatMessage(ctx, api.ChatRequest{
		Content: content,
		Model:   st.SelectedModel,
		Context: contextBlock,
	})
	if err != nil {
		m.handleSendFailure(gen, userMsg, err)
		return err
	}

	modelUsed := reply.ModelUsed
	if modelUsed == "" {
		modelUsed = st.SelectedModel
	}
	assistant := model.NewAssistantMessage(reply.MessageID, reply.Content, modelUsed, userMsg.ID, reply.Time())

	if m.store.DispatchIf(gen,
		state.AppendMessage{Message: assistant},
		state.SetLoading{},
		state.SetConnection{Status: model.StatusConnected},
	) {
		m.snapshotCurrent()
	}
	return nil
}

// handleSendFailure marks the optimistic message, surfaces the error, and
// appends the apology. A model configuration error additionally arms the
// delayed switch to the fallback model.
func (m *Manager) handleSendFailure(gen uint64, userMsg model.Message, err error) {
	st := m.store.State()
	apology := model.NewErrorMessage(apologyContent, st.SelectedModel, userMsg.ID)

	errText := err.Error()
	switch {
	case api.IsModelError(err):
		errText = fmt.Sprintf("Model configuration error. Switching to %s...", m.cfg.FallbackModelID)
	case api.IsNetworkError(err):
		errText = connectivityErrorText
	}

	m.store.DispatchIf(gen,
		state.SetLoading{},
		state.SetConnection{Status: model.StatusError},
		state.MarkMessageFailed{ID: userMsg.ID},
		state.SetError{Text: errText},
		state.AppendMessage{Message: apology},
	)

	if !api.IsModelError(err) {
		return
	}
	time.AfterFunc(m.cfg.FallbackDelay, func() {
		// Dropped silently if the user has since switched context.
		if m.store.DispatchIf(gen,
			state.SetSelectedModel{ID: m.cfg.FallbackModelID},
			state.SetError{},
			state.SetConnection{Status: model.StatusConnected},
		) {
			if m.local != nil {
				m.local.SetSelectedModel(m.cfg.FallbackModelID)
			}
		}
	})
}

// =============================================================================
// REGENERATE
// =============================================================================

// Regenerate removes an assistant reply and re-sends the user message
// that produced it. messageID selects the reply; empty targets the newest
// one. When the target or its source cannot be resolved the transcript is
// left untouched and ErrNoSource is returned.
func (m *Manager) Regenerate(ctx context.Context, messageID string) error {
	st := m.store.State()
	if st.Loading || st.Regenerating {
		return ErrBusy
	}

	target, ok := regenTarget(st.Messages, messageID)
	if !ok {
		return ErrNoSource
	}
	source, ok := resolveSource(st.Messages, target)
	if !ok {
		return ErrNoSource
	}

	m.store.Dispatch(
		state.SetRegenerating{Regenerating: true},
		state.RemoveMessage{ID: target.ID},
	)
	err := m.send(ctx, source.Content)
	m.store.Dispatch(state.SetRegenerating{})
	return err
}

// regenTarget selects the assistant message to regenerate: by ID when one
// is given, otherwise the newest non-synthetic assistant message.
func regenTarget(msgs []model.Message, id string) (model.Message, bool) {
	if id != "" {
		for _, msg := range msgs {
			if msg.ID == id && msg.Role == model.RoleAssistant && !msg.IsSynthetic() {
				return msg, true
			}
		}
		return model.Message{}, false
	}
	for i := len(msgs) - 1; i >= 0; i-- {
		if msgs[i].Role == model.RoleAssistant && !msgs[i].IsSynthetic() {
			return msgs[i], true
		}
	}
	return model.Message{}, false
}

// resolveSource finds the user message an assistant reply answers: by the
// explicit InReplyTo link first, then by transcript adjacency for replies
// hydrated from history without a link.
func resolveSource(msgs []model.Message, target model.Message) (model.Message, bool) {
	if target.InReplyTo != "" {
		for _, m := range msgs {
			if m.ID == target.InReplyTo && m.Role == model.RoleUser {
				return m, true
			}
		}
	}
	for i, m := range msgs {
		if m.ID == target.ID {
			if i > 0 && msgs[i-1].Role == model.RoleUser {
				return msgs[i-1], true
			}
			break
		}
	}
	return model.Message{}, false
}

// =============================================================================
// NEW CHAT / SESSIONS
// =============================================================================

// StartNewChat snapshots the current transcript into the session list and
// resets to an empty conversation.
func (m *Manager) StartNewChat() {
	st := m.store.State()

	if sess, ok := snapshotSession(st); ok {
		m.store.Dispatch(state.UpsertSession{Session: sess})
		if m.local != nil {
			m.local.SaveSession(sess)
		}
	}

	m.store.NextGeneration()
	m.store.Dispatch(
		state.SetMessages{Messages: []model.Message{m.welcome(st.User)}},
		state.SetCurrentChat{ID: model.NewChatID()},
		state.SetError{},
		state.SetLoading{},
		state.SetRegenerating{},
	)
}

// ClearTranscript discards the live conversation without saving a
// snapshot. Unlike StartNewChat, the dropped messages do not appear in
// the sidebar.
func (m *Manager) ClearTranscript() {
	st := m.store.State()
	m.store.NextGeneration()
	m.store.Dispatch(
		state.SetMessages{Messages: []model.Message{m.welcome(st.User)}},
		state.SetCurrentChat{ID: model.NewChatID()},
		state.SetError{},
		state.SetLoading{},
		state.SetRegenerating{},
	)
}

// SendVoice transcribes an audio file and sends the transcript through
// the normal send path, so the optimistic append and failure handling
// apply to it like any typed message.
func (m *Manager) SendVoice(ctx context.Context, path string) error {
	st := m.store.State()
	if st.Loading || st.Regenerating {
		return ErrBusy
	}

	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	result, err := m.backend.TranscribeVoice(ctx, filepath.Base(path), f, st.SelectedModel, false)
	if err != nil {
		return err
	}
	text := strings.TrimSpace(result.Text)
	if text == "" {
		return ErrNoSpeech
	}
	return m.send(ctx, text)
}

// snapshotCurrent refreshes the session summary for the live conversation
// after each successful exchange.
func (m *Manager) snapshotCurrent() {
	st := m.store.State()
	sess, ok := snapshotSession(st)
	if !ok {
		return
	}
	m.store.Dispatch(state.UpsertSession{Session: sess})
	if m.local != nil {
		m.local.SaveSession(sess)
	}
}

// snapshotSession summarizes the live transcript. Returns false when the
// transcript has no real (non-synthetic) messages worth keeping.
func snapshotSession(st state.State) (model.ChatSession, bool) {
	var real []model.Message
	var firstUser *model.Message
	for i := range st.Messages {
		msg := st.Messages[i]
		if msg.IsSynthetic() {
			continue
		}
		real = append(real, msg)
		if firstUser == nil && msg.Role == model.RoleUser {
			firstUser = &st.Messages[i]
		}
	}
	if len(real) == 0 || firstUser == nil {
		return model.ChatSession{}, false
	}

	last := real[len(real)-1]
	return model.ChatSession{
		ID:           st.CurrentChatID,
		Title:        titleFor(firstUser.Content),
		Timestamp:    time.Now(),
		Preview:      last.Preview(model.SessionPreviewRunes),
		Model:        st.SelectedModel,
		MessageCount: len(real),
		Messages:     real,
	}, true
}

// LoadSession reopens a session from the sidebar. Local snapshots restore
// directly; derived sessions re-fetch history for their model. Any
// failure falls back to a fresh chat rather than a broken transcript.
func (m *Manager) LoadSession(ctx context.Context, sess model.ChatSession) {
	gen := m.store.NextGeneration()

	// A sidebar entry may carry only the summary; the full transcript can
	// still be on disk from an earlier run.
	if len(sess.Messages) == 0 && m.local != nil {
		if stored, err := m.local.Session(sess.ID); err == nil && len(stored.Messages) > 0 {
			sess = stored
		}
	}

	if len(sess.Messages) > 0 {
		actions := []state.Action{
			state.SetMessages{Messages: tailWindow(sess.Messages, SessionWindow)},
			state.SetCurrentChat{ID: sess.ID},
			state.SetError{},
			state.SetConnection{Status: model.StatusConnected},
		}
		if sess.Model != "" {
			actions = append(actions, state.SetSelectedModel{ID: sess.Model})
		}
		m.store.DispatchIf(gen, actions...)
		return
	}

	hist, err := m.backend.GetChatHistory(ctx, api.ContextHistoryLimit, sess.Model)
	if err != nil || len(hist.Messages) == 0 {
		m.StartNewChat()
		return
	}

	converted := ConvertHistory(hist.Messages)
	m.store.DispatchIf(gen,
		state.SetHistory{Messages: converted},
		state.SetMessages{Messages: tailWindow(converted, SessionWindow)},
		state.SetCurrentChat{ID: sess.ID},
		state.SetError{},
		state.SetConnection{Status: model.StatusConnected},
	)
}

// DeleteSession removes a session from the sidebar. Local-only: the
// backend transcript is untouched, so the conversation re-derives on the
// next full history load.
func (m *Manager) DeleteSession(id string) {
	m.store.Dispatch(state.RemoveSession{ID: id})
	if m.local != nil {
		m.local.DeleteSession(id)
	}
}

// =============================================================================
// MODEL SWITCH
// =============================================================================

// SwitchModel changes the active model, persists the choice, and reloads
// that model's history. A model with no stored history shows exactly one
// switch notice; previous messages are cleared.
func (m *Manager) SwitchModel(ctx context.Context, id string) {
	info := m.catalog.Resolve(id)
	st := m.store.State()
	if info.ID == st.SelectedModel {
		return
	}

	gen := m.store.NextGeneration()
	m.store.Dispatch(
		state.SetSelectedModel{ID: info.ID},
		state.SetConnection{Status: model.StatusConnecting},
		state.SetError{},
	)

	if m.local != nil {
		m.local.SetSelectedModel(info.ID)
	}
	// Server-side persistence is best effort; a failure only loses the
	// cross-device preference.
	m.backend.SelectModel(ctx, info.ID)

	notice := model.NewModelWelcomeMessage(
		fmt.Sprintf("🔄 Switched to %s. How can I help you?", info.Label()),
		info.ID,
	)
	m.loadHistory(ctx, gen, info.ID, notice)

	// When the model had stored history the transcript keeps it, so the
	// switch is announced in place instead.
	st = m.store.State()
	if n := len(st.Messages); n > 0 && st.Messages[n-1].ID != notice.ID {
		m.store.DispatchIf(gen, state.AppendMessage{
			Message: model.NewModelChangeMessage(
				fmt.Sprintf("🔄 Switched to %s", info.Label()), info.ID,
			),
		})
	}
}

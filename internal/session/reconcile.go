// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"sort"
	"strings"

	"github.com/jeranaias/ploymind-tui/internal/api"
	"github.com/jeranaias/ploymind-tui/internal/model"
)

// Reconciliation limits.
const (
	// VisibleWindow is how many trailing messages are shown after an
	// initial history load.
	VisibleWindow = 10
	// SessionWindow is how many trailing messages are shown when a
	// history session is reopened.
	SessionWindow = 20
	// ContextWindow is how many trailing messages go into the context
	// block sent with each chat request.
	ContextWindow = 20
)

// =============================================================================
// HISTORY CONVERSION
// =============================================================================

// ConvertHistory maps server history records to transcript messages,
// oldest first. Assistant entries are linked to the nearest preceding user
// message via InReplyTo, reconstructing the reply chain the backend does
// not store explicitly.
func ConvertHistory(records []api.HistoryMessage) []model.Message {
	msgs := make([]model.Message, 0, len(records))
	lastUserID := ""

	for _, rec := range records {
		role := model.Role(rec.Role)
		if role != model.RoleUser && role != model.RoleAssistant {
			role = model.RoleAssistant
		}

		msg := model.Message{
			ID:        rec.MessageID,
			Content:   rec.Content,
			Role:      role,
			Timestamp: rec.Time(),
			Model:     rec.ModelUsed,
		}
		if role == model.RoleUser {
			lastUserID = msg.ID
		} else {
			msg.InReplyTo = lastUserID
		}
		msgs = append(msgs, msg)
	}
	return msgs
}

// FilterByModel keeps messages tagged with modelID plus untagged ones.
// Untagged messages predate model tracking and belong to every model's
// view. An empty filter keeps everything.
func FilterByModel(msgs []model.Message, modelID string) []model.Message {
	if modelID == "" {
		return msgs
	}
	out := make([]model.Message, 0, len(msgs))
	for _, m := range msgs {
		if m.Model == "" || m.Model == modelID {
			out = append(out, m)
		}
	}
	return out
}

// =============================================================================
// SESSION DERIVATION
// =============================================================================

// DeriveSessions groups a flat transcript into conversation sessions:
// every user message opens a new session and the assistant messages that
// follow attach to it. Pure and idempotent; the same input always yields
// the same sessions, newest first.
func DeriveSessions(msgs []model.Message) []model.ChatSession {
	var sessions []model.ChatSession
	var current *model.ChatSession

	for _, msg := range msgs {
		if msg.IsSynthetic() {
			continue
		}
		if msg.Role == model.RoleUser {
			sessions = append(sessions, model.ChatSession{
				ID:        model.SessionIDAt(msg.Timestamp),
				Title:     titleFor(msg.Content),
				Timestamp: msg.Timestamp,
				Model:     msg.Model,
			})
			current = &sessions[len(sessions)-1]
		}
		if current == nil {
			// Assistant message with no opening user message; nothing
			// to attach it to.
			continue
		}
		current.MessageCount++
		current.Preview = msg.Preview(model.SessionPreviewRunes)
		if current.Model == "" && msg.Model != "" {
			current.Model = msg.Model
		}
	}

	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})
	if len(sessions) > model.MaxSessions {
		sessions = sessions[:model.MaxSessions]
	}
	return sessions
}

func titleFor(content string) string {
	runes := []rune(strings.TrimSpace(content))
	if len(runes) > model.SessionTitleRunes {
		return string(runes[:model.SessionTitleRunes]) + "..."
	}
	return string(runes)
}

// MergeSessions combines derived and locally snapshotted sessions, newest
// first, deduplicated by ID and capped at model.MaxSessions. Snapshots win
// on ID collision because they carry the full transcript.
func MergeSessions(snapshots, derived []model.ChatSession) []model.ChatSession {
	seen := make(map[string]bool, len(snapshots)+len(derived))
	merged := make([]model.ChatSession, 0, len(snapshots)+len(derived))
	for _, sess := range append(append([]model.ChatSession(nil), snapshots...), derived...) {
		if seen[sess.ID] {
			continue
		}
		seen[sess.ID] = true
		merged = append(merged, sess)
	}

	sort.SliceStable(merged, func(i, j int) bool {
		return merged[i].Timestamp.After(merged[j].Timestamp)
	})
	if len(merged) > model.MaxSessions {
		merged = merged[:model.MaxSessions]
	}
	return merged
}

// =============================================================================
// CONTEXT ASSEMBLY
// =============================================================================

// BuildContext renders the recent-transcript block sent with a chat
// request: the last ContextWindow non-synthetic messages from the stored
// history plus the live transcript, one "<role>: <content>" line each.
func BuildContext(history, current []model.Message) string {
	combined := make([]model.Message, 0, len(history)+len(current))
	seen := make(map[string]bool, len(history)+len(current))

	for _, m := range append(append([]model.Message(nil), history...), current...) {
		if m.IsSynthetic() || m.Content == "" {
			continue
		}
		// A failed optimistic send never reached the backend; replaying
		// it as context would misstate the conversation.
		if m.Failed && m.IsOptimistic() {
			continue
		}
		if m.ID != "" && seen[m.ID] {
			continue
		}
		seen[m.ID] = true
		combined = append(combined, m)
	}

	if len(combined) > ContextWindow {
		combined = combined[len(combined)-ContextWindow:]
	}

	lines := make([]string, 0, len(combined))
	for _, m := range combined {
		lines = append(lines, string(m.Role)+": "+m.Content)
	}
	return strings.Join(lines, "\n")
}

// tailWindow returns the last n messages of msgs.
func tailWindow(msgs []model.Message, n int) []model.Message {
	if len(msgs) <= n {
		return msgs
	}
	return msgs[len(msgs)-n:]
}

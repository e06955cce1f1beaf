// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package storage

import (
	"errors"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/ploymind-tui/internal/model"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestPreferences(t *testing.T) {
	store := openTestStore(t)

	// Unset preference reads as empty, not error.
	value, err := store.Preference(PrefSelectedModel)
	require.NoError(t, err)
	assert.Empty(t, value)
	assert.Empty(t, store.SelectedModel())

	require.NoError(t, store.SetSelectedModel("deepseek-r1-0528"))
	assert.Equal(t, "deepseek-r1-0528", store.SelectedModel())

	// Overwrite, not append.
	require.NoError(t, store.SetSelectedModel("openai/gpt-4o"))
	assert.Equal(t, "openai/gpt-4o", store.SelectedModel())
}

func TestSessionRoundTrip(t *testing.T) {
	store := openTestStore(t)

	sess := model.ChatSession{
		ID:           "chat_1700000000000",
		Title:        "How do I cook rice?",
		Timestamp:    time.UnixMilli(1700000000000),
		Preview:      "Use a 2:1 water ratio.",
		Model:        "gemini-2.0-flash",
		MessageCount: 2,
		Messages: []model.Message{
			{ID: "user_1", Role: model.RoleUser, Content: "How do I cook rice?"},
			{ID: "srv-1", Role: model.RoleAssistant, Content: "Use a 2:1 water ratio."},
		},
	}
	require.NoError(t, store.SaveSession(sess))

	got, err := store.Session(sess.ID)
	require.NoError(t, err)
	assert.Equal(t, sess.Title, got.Title)
	assert.Equal(t, sess.Timestamp.UnixMilli(), got.Timestamp.UnixMilli())
	require.Len(t, got.Messages, 2)
	assert.Equal(t, model.RoleAssistant, got.Messages[1].Role)

	sessions, err := store.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 1)
}

func TestSessionNotFound(t *testing.T) {
	store := openTestStore(t)
	_, err := store.Session("nope")
	assert.True(t, errors.Is(err, ErrSessionNotFound))
}

func TestSessionCapEnforced(t *testing.T) {
	store := openTestStore(t)

	for i := 0; i < model.MaxSessions+7; i++ {
		require.NoError(t, store.SaveSession(model.ChatSession{
			ID:        fmt.Sprintf("chat_%d", i),
			Title:     fmt.Sprintf("session %d", i),
			Timestamp: time.UnixMilli(int64(1700000000000 + i)),
		}))
	}

	sessions, err := store.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, model.MaxSessions)
	// Newest survives, oldest were trimmed.
	assert.Equal(t, fmt.Sprintf("chat_%d", model.MaxSessions+6), sessions[0].ID)
	for _, sess := range sessions {
		assert.NotEqual(t, "chat_0", sess.ID)
	}
}

func TestDeleteSession(t *testing.T) {
	store := openTestStore(t)

	require.NoError(t, store.SaveSession(model.ChatSession{
		ID: "chat_1", Title: "t", Timestamp: time.Now(),
	}))
	require.NoError(t, store.DeleteSession("chat_1"))

	sessions, err := store.Sessions()
	require.NoError(t, err)
	assert.Empty(t, sessions)

	// Idempotent.
	require.NoError(t, store.DeleteSession("chat_1"))
}

func TestReplaceSessions(t *testing.T) {
	store := openTestStore(t)
	require.NoError(t, store.SaveSession(model.ChatSession{
		ID: "old", Title: "old", Timestamp: time.Now(),
	}))

	require.NoError(t, store.ReplaceSessions([]model.ChatSession{
		{ID: "new_1", Title: "a", Timestamp: time.Now()},
		{ID: "new_2", Title: "b", Timestamp: time.Now()},
	}))

	sessions, err := store.Sessions()
	require.NoError(t, err)
	require.Len(t, sessions, 2)
	for _, sess := range sessions {
		assert.NotEqual(t, "old", sess.ID)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package state

import (
	"fmt"
	"testing"

	"github.com/jeranaias/ploymind-tui/internal/model"
)

func TestDispatchAppendAndRemove(t *testing.T) {
	s := New()

	s.Dispatch(AppendMessage{Message: model.Message{ID: "a", Content: "one"}})
	s.Dispatch(AppendMessage{Message: model.Message{ID: "b", Content: "two"}})

	st := s.State()
	if len(st.Messages) != 2 {
		t.Fatalf("got %d messages", len(st.Messages))
	}
	if st.Messages[0].ID != "a" || st.Messages[1].ID != "b" {
		t.Error("append order not preserved")
	}

	s.Dispatch(RemoveMessage{ID: "a"})
	st = s.State()
	if len(st.Messages) != 1 || st.Messages[0].ID != "b" {
		t.Errorf("remove failed: %+v", st.Messages)
	}
}

func TestMarkMessageFailed(t *testing.T) {
	s := New()
	s.Dispatch(AppendMessage{Message: model.Message{ID: "user_1", Role: model.RoleUser}})
	s.Dispatch(MarkMessageFailed{ID: "user_1"})

	st := s.State()
	if !st.Messages[0].Failed {
		t.Error("message not marked failed")
	}
	if len(st.Messages) != 1 {
		t.Error("failed message must stay in the transcript")
	}
}

func TestSnapshotIsolation(t *testing.T) {
	s := New()
	s.Dispatch(AppendMessage{Message: model.Message{ID: "a"}})

	st := s.State()
	st.Messages[0].ID = "mutated"
	st.Messages = append(st.Messages, model.Message{ID: "extra"})

	if got := s.State(); got.Messages[0].ID != "a" || len(got.Messages) != 1 {
		t.Error("snapshot mutation leaked into the store")
	}
}

func TestSessionCap(t *testing.T) {
	s := New()
	for i := 0; i < model.MaxSessions+5; i++ {
		s.Dispatch(UpsertSession{Session: model.ChatSession{ID: fmt.Sprintf("chat_%d", i)}})
	}

	st := s.State()
	if len(st.Sessions) != model.MaxSessions {
		t.Fatalf("got %d sessions, want %d", len(st.Sessions), model.MaxSessions)
	}
	// Newest first; the oldest entries were dropped.
	if st.Sessions[0].ID != fmt.Sprintf("chat_%d", model.MaxSessions+4) {
		t.Errorf("front = %q", st.Sessions[0].ID)
	}
}

func TestUpsertSessionUpdatesInPlace(t *testing.T) {
	s := New()
	s.Dispatch(UpsertSession{Session: model.ChatSession{ID: "x", Title: "old"}})
	s.Dispatch(UpsertSession{Session: model.ChatSession{ID: "y"}})
	s.Dispatch(UpsertSession{Session: model.ChatSession{ID: "x", Title: "new"}})

	st := s.State()
	if len(st.Sessions) != 2 {
		t.Fatalf("got %d sessions", len(st.Sessions))
	}
	// Update keeps position, does not duplicate or move to front.
	if st.Sessions[1].ID != "x" || st.Sessions[1].Title != "new" {
		t.Errorf("sessions = %+v", st.Sessions)
	}
}

func TestGenerationFencing(t *testing.T) {
	s := New()
	gen := s.Generation()

	// A completion issued under the current generation lands.
	if !s.DispatchIf(gen, SetError{Text: "boom"}) {
		t.Fatal("current-generation dispatch dropped")
	}
	if s.State().Error != "boom" {
		t.Error("action not applied")
	}

	// After a context switch, the old completion is dropped.
	s.NextGeneration()
	if s.DispatchIf(gen, SetError{Text: "stale"}) {
		t.Fatal("stale dispatch applied")
	}
	if s.State().Error != "boom" {
		t.Error("stale action mutated state")
	}
}

func TestChangeNotification(t *testing.T) {
	s := New()
	s.Dispatch(SetLoading{Loading: true})

	select {
	case <-s.Changes():
	default:
		t.Error("expected a change signal")
	}
}

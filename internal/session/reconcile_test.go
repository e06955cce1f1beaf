// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"fmt"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/jeranaias/ploymind-tui/internal/api"
	"github.com/jeranaias/ploymind-tui/internal/model"
)

func historyPair(i int) []api.HistoryMessage {
	ts := float64(1700000000 + i*10)
	return []api.HistoryMessage{
		{Role: "user", Content: fmt.Sprintf("question %d", i), Timestamp: ts, MessageID: fmt.Sprintf("u%d", i)},
		{Role: "assistant", Content: fmt.Sprintf("answer %d", i), Timestamp: ts + 1, MessageID: fmt.Sprintf("a%d", i), ModelUsed: "gemini-2.0-flash"},
	}
}

func TestConvertHistoryLinksReplies(t *testing.T) {
	records := append(historyPair(0), historyPair(1)...)

	msgs := ConvertHistory(records)
	if len(msgs) != 4 {
		t.Fatalf("got %d messages", len(msgs))
	}
	if msgs[1].InReplyTo != "u0" {
		t.Errorf("first reply links to %q, want u0", msgs[1].InReplyTo)
	}
	if msgs[3].InReplyTo != "u1" {
		t.Errorf("second reply links to %q, want u1", msgs[3].InReplyTo)
	}
	if msgs[0].InReplyTo != "" {
		t.Error("user messages must not carry a reply link")
	}
	if msgs[1].Role != model.RoleAssistant || msgs[0].Role != model.RoleUser {
		t.Error("roles not preserved")
	}
}

func TestFilterByModelKeepsUntagged(t *testing.T) {
	msgs := []model.Message{
		{ID: "1", Model: "gemini-2.0-flash"},
		{ID: "2", Model: ""},
		{ID: "3", Model: "openai/gpt-4o"},
	}

	got := FilterByModel(msgs, "gemini-2.0-flash")
	if len(got) != 2 {
		t.Fatalf("got %d messages, want tagged match + untagged", len(got))
	}
	if got[0].ID != "1" || got[1].ID != "2" {
		t.Errorf("unexpected filter result: %+v", got)
	}

	if got := FilterByModel(msgs, ""); len(got) != 3 {
		t.Errorf("empty filter should keep everything, got %d", len(got))
	}
}

func TestDeriveSessions(t *testing.T) {
	base := time.UnixMilli(1700000000000)
	msgs := []model.Message{
		{ID: "u1", Role: model.RoleUser, Content: "first question", Timestamp: base},
		{ID: "a1", Role: model.RoleAssistant, Content: "first answer", Timestamp: base.Add(time.Second)},
		{ID: "a1b", Role: model.RoleAssistant, Content: "more detail", Timestamp: base.Add(2 * time.Second)},
		{ID: "u2", Role: model.RoleUser, Content: "second question", Timestamp: base.Add(time.Minute)},
		{ID: "a2", Role: model.RoleAssistant, Content: "second answer", Timestamp: base.Add(time.Minute + time.Second)},
	}

	sessions := DeriveSessions(msgs)
	if len(sessions) != 2 {
		t.Fatalf("got %d sessions, want 2", len(sessions))
	}

	// Newest first.
	if sessions[0].Title != "second question" {
		t.Errorf("front title = %q", sessions[0].Title)
	}
	if sessions[0].MessageCount != 2 {
		t.Errorf("front count = %d, want 2", sessions[0].MessageCount)
	}
	if sessions[1].MessageCount != 3 {
		t.Errorf("back count = %d, want 3 (user + two replies)", sessions[1].MessageCount)
	}
	if sessions[1].Preview != "more detail" {
		t.Errorf("preview = %q, want last message content", sessions[1].Preview)
	}
	if sessions[1].ID != model.SessionIDAt(base) {
		t.Errorf("session ID = %q, want timestamp-derived", sessions[1].ID)
	}
}

func TestDeriveSessionsIdempotent(t *testing.T) {
	msgs := ConvertHistory(append(historyPair(0), historyPair(1)...))
	first := DeriveSessions(msgs)
	second := DeriveSessions(msgs)
	if !reflect.DeepEqual(first, second) {
		t.Error("derivation must be idempotent for the same input")
	}
}

func TestDeriveSessionsTitleTruncation(t *testing.T) {
	content := strings.Repeat("x", 45)
	msgs := []model.Message{
		{ID: "u1", Role: model.RoleUser, Content: content, Timestamp: time.Now()},
	}

	sessions := DeriveSessions(msgs)
	want := strings.Repeat("x", 40) + "..."
	if sessions[0].Title != want {
		t.Errorf("title = %q (len %d), want 40 chars + ellipsis", sessions[0].Title, len(sessions[0].Title))
	}

	// A 40-char message is not truncated.
	msgs[0].Content = strings.Repeat("x", 40)
	if got := DeriveSessions(msgs)[0].Title; got != msgs[0].Content {
		t.Errorf("exact-length title modified: %q", got)
	}
}

func TestDeriveSessionsSkipsOrphanedReplies(t *testing.T) {
	msgs := []model.Message{
		{ID: "a0", Role: model.RoleAssistant, Content: "orphan", Timestamp: time.Now()},
	}
	if got := DeriveSessions(msgs); len(got) != 0 {
		t.Errorf("assistant message without an opener produced %d sessions", len(got))
	}
}

func TestDeriveSessionsIgnoresSynthetic(t *testing.T) {
	msgs := []model.Message{
		model.NewWelcomeMessage("hi"),
		{ID: "u1", Role: model.RoleUser, Content: "q", Timestamp: time.Now()},
	}
	sessions := DeriveSessions(msgs)
	if len(sessions) != 1 || sessions[0].MessageCount != 1 {
		t.Errorf("synthetic messages leaked into derivation: %+v", sessions)
	}
}

func TestBuildContextCap(t *testing.T) {
	var history []model.Message
	for i := 0; i < 100; i++ {
		role := model.RoleUser
		if i%2 == 1 {
			role = model.RoleAssistant
		}
		history = append(history, model.Message{
			ID: fmt.Sprintf("m%d", i), Role: role, Content: fmt.Sprintf("message %d", i),
		})
	}

	block := BuildContext(history, nil)
	lines := strings.Split(block, "\n")
	if len(lines) != ContextWindow {
		t.Fatalf("context has %d lines, want %d", len(lines), ContextWindow)
	}
	// The newest messages survive.
	if lines[len(lines)-1] != "assistant: message 99" {
		t.Errorf("last line = %q", lines[len(lines)-1])
	}
	if lines[0] != "user: message 80" {
		t.Errorf("first line = %q", lines[0])
	}
}

func TestBuildContextFormat(t *testing.T) {
	block := BuildContext(nil, []model.Message{
		{ID: "u1", Role: model.RoleUser, Content: "hello"},
		{ID: "a1", Role: model.RoleAssistant, Content: "hi!"},
	})
	want := "user: hello\nassistant: hi!"
	if block != want {
		t.Errorf("context = %q, want %q", block, want)
	}
}

func TestBuildContextExcludesSynthetic(t *testing.T) {
	block := BuildContext(nil, []model.Message{
		model.NewWelcomeMessage("👋 welcome"),
		{ID: "u1", Role: model.RoleUser, Content: "real"},
	})
	if strings.Contains(block, "welcome") {
		t.Errorf("welcome leaked into context: %q", block)
	}
}

func TestBuildContextSkipsFailedSends(t *testing.T) {
	block := BuildContext(nil, []model.Message{
		{ID: "user_1", Role: model.RoleUser, Content: "delivered"},
		{ID: "user_2", Role: model.RoleUser, Content: "never arrived", Failed: true},
	})
	if strings.Contains(block, "never arrived") {
		t.Errorf("failed send leaked into context: %q", block)
	}
	if !strings.Contains(block, "delivered") {
		t.Errorf("delivered message missing from context: %q", block)
	}
}

func TestBuildContextDeduplicates(t *testing.T) {
	shared := model.Message{ID: "m1", Role: model.RoleUser, Content: "hello"}
	block := BuildContext([]model.Message{shared}, []model.Message{shared})
	if block != "user: hello" {
		t.Errorf("context = %q, duplicate not collapsed", block)
	}
}

func TestMergeSessions(t *testing.T) {
	now := time.Now()
	snapshots := []model.ChatSession{
		{ID: "chat_1", Title: "snapshot", Timestamp: now},
	}
	derived := []model.ChatSession{
		{ID: "chat_1", Title: "derived duplicate", Timestamp: now.Add(-time.Hour)},
		{ID: "session_2", Title: "derived", Timestamp: now.Add(-time.Minute)},
	}

	merged := MergeSessions(snapshots, derived)
	if len(merged) != 2 {
		t.Fatalf("got %d sessions", len(merged))
	}
	// Snapshot wins the ID collision and newest sorts first.
	if merged[0].Title != "snapshot" {
		t.Errorf("front = %+v", merged[0])
	}
}

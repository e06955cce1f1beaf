// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/jeranaias/ploymind-tui/internal/config"
)

func testConfig() *config.Config {
	cfg := config.Default()
	cfg.SetDefaults()
	cfg.Backend.SendRatePerMin = 0
	return cfg
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)

	client, err := New(testConfig(), "test-init-data", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	return client, server
}

func TestNewRequiresBackendURL(t *testing.T) {
	cfg := testConfig()
	cfg.Backend.URL = ""

	_, err := New(cfg, "")
	if !errors.Is(err, ErrNotConfigured) {
		t.Errorf("err = %v, want ErrNotConfigured", err)
	}
}

func TestRequestHeaders(t *testing.T) {
	var gotAuth, gotRequestID string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		gotRequestID = r.Header.Get("X-Request-ID")
		w.Write([]byte(`{"status":"ok"}`))
	})

	if _, err := client.Health(context.Background()); err != nil {
		t.Fatalf("Health failed: %v", err)
	}
	if gotAuth != "tma test-init-data" {
		t.Errorf("Authorization = %q, want tma scheme", gotAuth)
	}
	if gotRequestID == "" {
		t.Error("X-Request-ID header missing")
	}
}

func TestSendChatMessage(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/webapp/chat" {
			t.Errorf("path = %q", r.URL.Path)
		}
		if r.Method != http.MethodPost {
			t.Errorf("method = %q", r.Method)
		}
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"content":"hello"`) {
			t.Errorf("body = %s", body)
		}
		w.Write([]byte(`{"content":"hi there","message_id":"srv-1","timestamp":1700000000,"model_used":"gemini-2.0-flash"}`))
	})

	reply, err := client.SendChatMessage(context.Background(), ChatRequest{Content: "hello", Model: "gemini-2.0-flash"})
	if err != nil {
		t.Fatalf("SendChatMessage failed: %v", err)
	}
	if reply.Content != "hi there" {
		t.Errorf("content = %q", reply.Content)
	}
	if reply.MessageID != "srv-1" {
		t.Errorf("message_id = %q", reply.MessageID)
	}
	if reply.Time().Unix() != 1700000000 {
		t.Errorf("timestamp = %v", reply.Time())
	}
}

func TestGetChatHistoryQuery(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		if q.Get("limit") != "50" {
			t.Errorf("limit = %q", q.Get("limit"))
		}
		if q.Get("model") != "gemini-2.0-flash" {
			t.Errorf("model = %q", q.Get("model"))
		}
		w.Write([]byte(`{"messages":[{"role":"user","content":"q","timestamp":1700000000,"message_id":"m1"}],"total_messages":1}`))
	})

	hist, err := client.GetChatHistory(context.Background(), 50, "gemini-2.0-flash")
	if err != nil {
		t.Fatalf("GetChatHistory failed: %v", err)
	}
	if len(hist.Messages) != 1 || hist.Messages[0].MessageID != "m1" {
		t.Errorf("unexpected history: %+v", hist)
	}
}

func TestClearChatHistory(t *testing.T) {
	var gotMethod string
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		w.Write([]byte(`{"deleted":3}`))
	})

	if err := client.ClearChatHistory(context.Background(), ""); err != nil {
		t.Fatalf("ClearChatHistory failed: %v", err)
	}
	if gotMethod != http.MethodDelete {
		t.Errorf("method = %q, want DELETE", gotMethod)
	}
}

func TestSelectModel(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		if !strings.Contains(string(body), `"model_id":"deepseek-r1-0528"`) {
			t.Errorf("body = %s", body)
		}
		w.Write([]byte(`{}`))
	})

	if err := client.SelectModel(context.Background(), "deepseek-r1-0528"); err != nil {
		t.Fatalf("SelectModel failed: %v", err)
	}
}

func TestErrorBodyParsing(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		w.Write([]byte(`{"error":"model not found","detail":"unknown model id"}`))
	})

	_, err := client.SendChatMessage(context.Background(), ChatRequest{Content: "x"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "model not found") {
		t.Errorf("error = %q, want backend message", err)
	}
	if !strings.Contains(err.Error(), "unknown model id") {
		t.Errorf("error = %q, want detail included", err)
	}
	if !IsModelError(err) {
		t.Error("model-config rejection should be classified as model error")
	}

	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		t.Fatal("error should be an *APIError")
	}
	if apiErr.Status != http.StatusBadRequest {
		t.Errorf("status = %d", apiErr.Status)
	}
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		want   error
	}{
		{http.StatusUnauthorized, ErrAuthFailed},
		{http.StatusForbidden, ErrAuthFailed},
		{http.StatusNotFound, ErrNotFound},
		{http.StatusTooManyRequests, ErrRateLimited},
		{http.StatusInternalServerError, ErrServer},
	}

	for _, tt := range tests {
		client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			w.Write([]byte(`not json`))
		})

		_, err := client.Health(context.Background())
		if !errors.Is(err, tt.want) {
			t.Errorf("status %d: err = %v, want %v", tt.status, err, tt.want)
		}
		if !strings.Contains(err.Error(), "HTTP") {
			t.Errorf("status %d: non-JSON body should fall back to HTTP status text, got %q", tt.status, err)
		}
	}
}

func TestNetworkErrorClassification(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	client, err := New(testConfig(), "", WithBaseURL(server.URL))
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	server.Close()

	_, err = client.Health(context.Background())
	if !IsNetworkError(err) {
		t.Errorf("err = %v, want network error", err)
	}
}

func TestTranscribeVoice(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("not multipart: %v", err)
		}
		if r.FormValue("process_with_ai") != "true" {
			t.Errorf("process_with_ai = %q", r.FormValue("process_with_ai"))
		}
		if r.FormValue("model") != "gemini-2.0-flash" {
			t.Errorf("model = %q", r.FormValue("model"))
		}
		file, header, err := r.FormFile("audio")
		if err != nil {
			t.Fatalf("audio part missing: %v", err)
		}
		defer file.Close()
		if header.Filename != "note.ogg" {
			t.Errorf("filename = %q", header.Filename)
		}
		w.Write([]byte(`{"text":"hello world","confidence":0.97,"ai_response":"Hi!"}`))
	})

	tr, err := client.TranscribeVoice(context.Background(), "/tmp/note.ogg", strings.NewReader("fake-ogg-bytes"), "gemini-2.0-flash", true)
	if err != nil {
		t.Fatalf("TranscribeVoice failed: %v", err)
	}
	if tr.Text != "hello world" {
		t.Errorf("text = %q", tr.Text)
	}
	if tr.AIResponse != "Hi!" {
		t.Errorf("ai_response = %q", tr.AIResponse)
	}
}

func TestIsModelError(t *testing.T) {
	if !IsModelError(errors.New("Model configuration invalid")) {
		t.Error("case-insensitive match expected")
	}
	if IsModelError(errors.New("timeout")) {
		t.Error("unrelated error misclassified")
	}
	if IsModelError(nil) {
		t.Error("nil is not an error")
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package catalog

import (
	"context"
	"errors"
	"testing"

	"github.com/jeranaias/ploymind-tui/internal/api"
	"github.com/jeranaias/ploymind-tui/internal/model"
)

type fakeBackend struct {
	resp *api.ModelsResponse
	err  error
}

func (f *fakeBackend) GetAvailableModels(ctx context.Context) (*api.ModelsResponse, error) {
	return f.resp, f.err
}

func TestFetchSuccess(t *testing.T) {
	backend := &fakeBackend{resp: &api.ModelsResponse{
		Models: []model.ModelInfo{
			{ID: "gemini-2.0-flash", Name: "Gemini 2.0 Flash", Provider: "Google"},
			{ID: "custom/model-x", Name: "Model X", Provider: "Custom"},
		},
		DefaultModel: "gemini-2.0-flash",
	}}

	cat, err := Fetch(context.Background(), backend)
	if err != nil {
		t.Fatalf("Fetch failed: %v", err)
	}
	if cat.IsFallback() {
		t.Error("successful fetch should not mark fallback")
	}
	if len(cat.Models()) != 2 {
		t.Fatalf("got %d models", len(cat.Models()))
	}

	// Known models are decorated from the static set.
	gemini, _ := cat.Find("gemini-2.0-flash")
	if gemini.Emoji == "" || gemini.Description == "" {
		t.Errorf("known model not decorated: %+v", gemini)
	}
	// Unknown models get a generic emoji.
	custom, _ := cat.Find("custom/model-x")
	if custom.Emoji == "" {
		t.Errorf("unknown model missing emoji: %+v", custom)
	}
}

func TestFetchErrorUsesFallback(t *testing.T) {
	backend := &fakeBackend{err: errors.New("backend down")}

	cat, err := Fetch(context.Background(), backend)
	if err == nil {
		t.Error("fetch error should be reported")
	}
	if !cat.IsFallback() {
		t.Error("catalog should be the static fallback set")
	}
	if len(cat.Models()) != 5 {
		t.Errorf("fallback set has %d models, want 5", len(cat.Models()))
	}
	if _, ok := cat.Find(FallbackModelID); !ok {
		t.Error("fallback model must be in the static set")
	}
	if cat.DefaultModel() != DefaultModelID {
		t.Errorf("default = %q", cat.DefaultModel())
	}
}

func TestFetchEmptyListUsesFallback(t *testing.T) {
	backend := &fakeBackend{resp: &api.ModelsResponse{}}
	cat, _ := Fetch(context.Background(), backend)
	if !cat.IsFallback() {
		t.Error("empty catalog should fall back to the static set")
	}
}

func TestResolve(t *testing.T) {
	cat := NewFallback()

	if got := cat.Resolve("deepseek-r1-0528"); got.ID != "deepseek-r1-0528" {
		t.Errorf("Resolve known = %q", got.ID)
	}
	// Unknown and empty IDs resolve to the default, never a phantom.
	if got := cat.Resolve("no-such-model"); got.ID != DefaultModelID {
		t.Errorf("Resolve unknown = %q, want default", got.ID)
	}
	if got := cat.Resolve(""); got.ID != DefaultModelID {
		t.Errorf("Resolve empty = %q, want default", got.ID)
	}
}

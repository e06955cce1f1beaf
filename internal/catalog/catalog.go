// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package catalog maintains the list of selectable AI models. The list is
// fetched from the backend when possible and silently replaced by a
// hardcoded fallback set when the fetch fails, so model selection always
// works offline.
package catalog

import (
	"context"
	"sync"

	"github.com/jeranaias/ploymind-tui/internal/api"
	"github.com/jeranaias/ploymind-tui/internal/model"
)

// Well-known model IDs.
const (
	// DefaultModelID is selected when no preference is stored.
	DefaultModelID = "gemini-2.0-flash"
	// FallbackModelID is switched to automatically after a model
	// configuration failure.
	FallbackModelID = "deepseek-r1-0528"
)

// =============================================================================
// STATIC FALLBACK SET
// =============================================================================

// Fallback returns the hardcoded model set used when the backend catalog
// is unreachable.
func Fallback() []model.ModelInfo {
	return []model.ModelInfo{
		{
			ID:             "gemini-2.0-flash",
			Name:           "Gemini 2.0 Flash",
			Provider:       "Google",
			Description:    "Fast multimodal model with vision support",
			Emoji:          "⚡",
			SupportsVision: true,
			MaxTokens:      32000,
		},
		{
			ID:          "deepseek-r1-0528",
			Name:        "DeepSeek R1",
			Provider:    "DeepSeek",
			Description: "Reasoning model tuned for step-by-step answers",
			Emoji:       "🧠",
		},
		{
			ID:          "anthropic/claude-3.5-sonnet",
			Name:        "Claude 3.5 Sonnet",
			Provider:    "Anthropic",
			Description: "Balanced quality and speed for everyday tasks",
			Emoji:       "🎭",
		},
		{
			ID:          "openai/gpt-4o",
			Name:        "GPT-4o",
			Provider:    "OpenAI",
			Description: "Flagship omni model from OpenAI",
			Emoji:       "🤖",
		},
		{
			ID:          "meta-llama/llama-3.3-70b-instruct",
			Name:        "Llama 3.3 70B",
			Provider:    "Meta",
			Description: "Open-weights instruction model",
			Emoji:       "🦙",
		},
	}
}

// fallbackByID indexes the static set for decoration of fetched entries.
var fallbackByID = func() map[string]model.ModelInfo {
	m := make(map[string]model.ModelInfo)
	for _, info := range Fallback() {
		m[info.ID] = info
	}
	return m
}()

// =============================================================================
// CATALOG
// =============================================================================

// Catalog is the active model registry. Safe for concurrent use.
type Catalog struct {
	mu           sync.RWMutex
	models       []model.ModelInfo
	defaultModel string
	fromFallback bool
}

// NewFallback creates a catalog preloaded with the static set.
func NewFallback() *Catalog {
	return &Catalog{
		models:       Fallback(),
		defaultModel: DefaultModelID,
		fromFallback: true,
	}
}

// backend is the subset of the API client the catalog needs.
type backend interface {
	GetAvailableModels(ctx context.Context) (*api.ModelsResponse, error)
}

// Fetch loads the catalog from the backend, substituting the static set on
// any failure. The returned error reports the fetch failure but the
// catalog is always usable.
func Fetch(ctx context.Context, client backend) (*Catalog, error) {
	resp, err := client.GetAvailableModels(ctx)
	if err != nil || len(resp.Models) == 0 {
		return NewFallback(), err
	}

	models := make([]model.ModelInfo, 0, len(resp.Models))
	for _, m := range resp.Models {
		models = append(models, decorate(m))
	}

	defaultModel := resp.DefaultModel
	if defaultModel == "" {
		defaultModel = DefaultModelID
	}

	return &Catalog{models: models, defaultModel: defaultModel}, nil
}

// decorate fills in emoji and description for backend entries that omit
// them, using the static set as the source.
func decorate(m model.ModelInfo) model.ModelInfo {
	known, ok := fallbackByID[m.ID]
	if !ok {
		if m.Emoji == "" {
			m.Emoji = "✨"
		}
		return m
	}
	if m.Emoji == "" {
		m.Emoji = known.Emoji
	}
	if m.Description == "" {
		m.Description = known.Description
	}
	if m.Name == "" {
		m.Name = known.Name
	}
	return m
}

// Models returns a copy of the active model list.
func (c *Catalog) Models() []model.ModelInfo {
	c.mu.RLock()
	defer c.mu.RUnlock()
	out := make([]model.ModelInfo, len(c.models))
	copy(out, c.models)
	return out
}

// DefaultModel returns the backend's advertised default model ID.
func (c *Catalog) DefaultModel() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.defaultModel
}

// IsFallback reports whether the static set is in use.
func (c *Catalog) IsFallback() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.fromFallback
}

// Find returns the entry for id, if present.
func (c *Catalog) Find(id string) (model.ModelInfo, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	for _, m := range c.models {
		if m.ID == id {
			return m, true
		}
	}
	return model.ModelInfo{}, false
}

// Resolve maps an arbitrary model ID to a selectable one: unknown or empty
// IDs resolve to the catalog default. The selected model is therefore
// always a real catalog entry.
func (c *Catalog) Resolve(id string) model.ModelInfo {
	if id != "" {
		if m, ok := c.Find(id); ok {
			return m
		}
	}
	if m, ok := c.Find(c.DefaultModel()); ok {
		return m
	}
	// Catalog default missing from its own list; fall back to the first
	// entry rather than returning a phantom model.
	c.mu.RLock()
	defer c.mu.RUnlock()
	if len(c.models) > 0 {
		return c.models[0]
	}
	return model.ModelInfo{ID: DefaultModelID, Name: "Gemini 2.0 Flash"}
}

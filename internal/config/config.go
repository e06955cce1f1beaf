// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package config provides configuration loading and management for ploymind.
//
// Configuration comes from ~/.ploymind/config.toml with built-in defaults
// and environment variable overrides. In dev mode a missing backend URL
// falls back to localhost; in production it is a hard error.
package config

import (
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/BurntSushi/toml"
)

// =============================================================================
// CONFIG STRUCTURES
// =============================================================================

// Config represents the complete ploymind client configuration.
type Config struct {
	Version string `toml:"version" json:"version"`

	// DefaultModel is the model selected when no preference is stored.
	DefaultModel string `toml:"default_model" json:"default_model"`
	// FallbackModel is switched to automatically after a model
	// configuration failure.
	FallbackModel string `toml:"fallback_model" json:"fallback_model"`

	Backend BackendConfig `toml:"backend" json:"backend"`
	Auth    AuthConfig    `toml:"auth" json:"auth"`
	UI      UIConfig      `toml:"ui" json:"ui"`
}

// BackendConfig describes how to reach the Ploymind backend.
type BackendConfig struct {
	// URL is the backend base URL (scheme + host). Required unless
	// DevMode is enabled.
	URL string `toml:"url" json:"url"`
	// APIPath is the path prefix for all endpoints.
	APIPath string `toml:"api_path" json:"api_path"`
	// TimeoutSecs is the per-request timeout in seconds.
	TimeoutSecs int `toml:"timeout_secs" json:"timeout_secs"`
	// DevMode permits the localhost fallback URL and synthesized auth.
	DevMode bool `toml:"dev_mode" json:"dev_mode"`
	// SendRatePerMin caps outbound chat messages per minute. 0 disables
	// the client-side throttle.
	SendRatePerMin int `toml:"send_rate_per_min" json:"send_rate_per_min"`
}

// AuthConfig controls where the Telegram launch context comes from.
type AuthConfig struct {
	// InitData is the raw launch-context string. Usually left empty and
	// provided via `ploymind auth set` or PLOYMIND_INIT_DATA.
	InitData string `toml:"init_data" json:"init_data"`
	// InitDataFile overrides the default ~/.ploymind/initdata location.
	InitDataFile string `toml:"init_data_file" json:"init_data_file"`
}

// UIConfig contains presentation settings.
type UIConfig struct {
	// Theme is the UI theme: "dark", "light", "auto".
	Theme string `toml:"theme" json:"theme"`
	// CompactMode hides timestamps and model tags in the transcript.
	CompactMode bool `toml:"compact_mode" json:"compact_mode"`
	// ShowModelInfo displays the model tag under assistant messages.
	ShowModelInfo bool `toml:"show_model_info" json:"show_model_info"`
}

// DevBackendURL is the backend used in dev mode when no URL is configured.
const DevBackendURL = "http://localhost:8000"

// Default returns a Config with sensible default values.
func Default() *Config {
	return &Config{
		Version:       "1.0.0",
		DefaultModel:  "gemini-2.0-flash",
		FallbackModel: "deepseek-r1-0528",

		Backend: BackendConfig{
			URL:            "",
			APIPath:        "/api/webapp",
			TimeoutSecs:    30,
			DevMode:        true,
			SendRatePerMin: 20,
		},

		Auth: AuthConfig{},

		UI: UIConfig{
			Theme:         "dark",
			CompactMode:   false,
			ShowModelInfo: true,
		},
	}
}

// =============================================================================
// PATH HELPERS
// =============================================================================

// Dir returns the ploymind configuration directory path.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not determine home directory: %w", err)
	}
	return filepath.Join(home, ".ploymind"), nil
}

// Path returns the path to the TOML config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// EnsureDir ensures the config directory exists.
func EnsureDir() error {
	dir, err := Dir()
	if err != nil {
		return err
	}
	return os.MkdirAll(dir, 0755)
}

// =============================================================================
// LOAD / SAVE
// =============================================================================

// Load loads configuration from the config file, falling back to defaults.
// Environment overrides are applied last, then the result is validated.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}
	return LoadFromPath(path)
}

// LoadFromPath loads configuration from a specific file path with full
// validation. A missing file is not an error; defaults are used.
func LoadFromPath(path string) (*Config, error) {
	cfg := Default()

	if _, statErr := os.Stat(path); statErr == nil {
		if _, err := toml.DecodeFile(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to decode config file: %w", err)
		}
	}

	cfg.ApplyEnvOverrides()
	cfg.SetDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// Save writes the configuration to the default TOML file with 0600
// permissions. Config may carry launch-context data, so it is never
// group or world readable.
func Save(cfg *Config) error {
	path, err := Path()
	if err != nil {
		return err
	}
	return SaveTOML(cfg, path)
}

// SaveTOML writes the configuration to a TOML file.
func SaveTOML(cfg *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0600)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer file.Close()

	fmt.Fprintln(file, "# ploymind configuration file")
	fmt.Fprintln(file, "# Generated by ploymind - edit with care")
	fmt.Fprintln(file, "")

	if err := toml.NewEncoder(file).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// =============================================================================
// DEFAULTS, OVERRIDES, VALIDATION
// =============================================================================

// SetDefaults fills in any missing values, including the dev-mode backend
// URL fallback.
func (c *Config) SetDefaults() {
	defaults := Default()

	if c.Version == "" {
		c.Version = defaults.Version
	}
	if c.DefaultModel == "" {
		c.DefaultModel = defaults.DefaultModel
	}
	if c.FallbackModel == "" {
		c.FallbackModel = defaults.FallbackModel
	}
	if c.Backend.APIPath == "" {
		c.Backend.APIPath = defaults.Backend.APIPath
	}
	if c.Backend.TimeoutSecs == 0 {
		c.Backend.TimeoutSecs = defaults.Backend.TimeoutSecs
	}
	if c.Backend.URL == "" && c.Backend.DevMode {
		c.Backend.URL = DevBackendURL
	}
	if c.UI.Theme == "" {
		c.UI.Theme = defaults.UI.Theme
	}
}

// ApplyEnvOverrides applies environment variable overrides to the config.
//
// Supported environment variables:
//   - PLOYMIND_BACKEND_URL: overrides backend.url
//   - PLOYMIND_API_PATH: overrides backend.api_path
//   - PLOYMIND_MODEL: overrides default_model
//   - PLOYMIND_DEV: set to "1" or "true" to enable dev mode, "0"/"false" to disable
//   - PLOYMIND_INIT_DATA: overrides auth.init_data
//   - PLOYMIND_THEME: overrides ui.theme
func (c *Config) ApplyEnvOverrides() {
	if v := os.Getenv("PLOYMIND_BACKEND_URL"); v != "" {
		c.Backend.URL = v
	}
	if v := os.Getenv("PLOYMIND_API_PATH"); v != "" {
		c.Backend.APIPath = v
	}
	if v := os.Getenv("PLOYMIND_MODEL"); v != "" {
		c.DefaultModel = v
	}
	if v := os.Getenv("PLOYMIND_DEV"); v != "" {
		c.Backend.DevMode = v == "1" || strings.EqualFold(v, "true")
	}
	if v := os.Getenv("PLOYMIND_INIT_DATA"); v != "" {
		c.Auth.InitData = v
	}
	if v := os.Getenv("PLOYMIND_THEME"); v != "" {
		c.UI.Theme = v
	}
}

// ValidationError represents a configuration validation error.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateErrors is a collection of validation errors.
type ValidateErrors []ValidationError

func (e ValidateErrors) Error() string {
	if len(e) == 0 {
		return "no validation errors"
	}
	var msgs []string
	for _, err := range e {
		msgs = append(msgs, err.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate validates the configuration and returns any errors.
func (c *Config) Validate() error {
	var errs ValidateErrors

	if c.Backend.URL == "" {
		if !c.Backend.DevMode {
			errs = append(errs, ValidationError{
				Field:   "backend.url",
				Message: "backend URL is required outside dev mode",
			})
		}
	} else {
		u, err := url.Parse(c.Backend.URL)
		if err != nil || u.Scheme == "" || u.Host == "" {
			errs = append(errs, ValidationError{
				Field:   "backend.url",
				Message: fmt.Sprintf("invalid URL '%s'", c.Backend.URL),
			})
		}
	}

	if !strings.HasPrefix(c.Backend.APIPath, "/") {
		errs = append(errs, ValidationError{
			Field:   "backend.api_path",
			Message: fmt.Sprintf("must start with '/', got '%s'", c.Backend.APIPath),
		})
	}

	if c.Backend.TimeoutSecs < 1 || c.Backend.TimeoutSecs > 300 {
		errs = append(errs, ValidationError{
			Field:   "backend.timeout_secs",
			Message: fmt.Sprintf("must be 1-300, got %d", c.Backend.TimeoutSecs),
		})
	}

	if c.Backend.SendRatePerMin < 0 {
		errs = append(errs, ValidationError{
			Field:   "backend.send_rate_per_min",
			Message: "cannot be negative",
		})
	}

	validThemes := map[string]bool{"dark": true, "light": true, "auto": true}
	if !validThemes[strings.ToLower(c.UI.Theme)] {
		errs = append(errs, ValidationError{
			Field:   "ui.theme",
			Message: fmt.Sprintf("invalid theme '%s', must be one of: dark, light, auto", c.UI.Theme),
		})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}

// Timeout returns the per-request timeout as a duration.
func (c *Config) Timeout() time.Duration {
	return time.Duration(c.Backend.TimeoutSecs) * time.Second
}

// =============================================================================
// SINGLETON (THREAD-SAFE)
// =============================================================================

var (
	globalConfig     *Config
	globalConfigOnce sync.Once
	globalConfigMu   sync.RWMutex
)

// Global returns the global configuration instance, loading it on first
// access. Thread-safe.
func Global() *Config {
	globalConfigOnce.Do(func() {
		cfg, err := Load()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: %v (using defaults)\n", err)
			cfg = Default()
			cfg.SetDefaults()
		}
		globalConfig = cfg
	})

	globalConfigMu.RLock()
	defer globalConfigMu.RUnlock()
	return globalConfig
}

// ReloadGlobal reloads the global configuration from disk. Thread-safe.
func ReloadGlobal() error {
	cfg, err := Load()
	if err != nil {
		return err
	}
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
	return nil
}

// SetGlobal sets the global configuration instance. Thread-safe.
func SetGlobal(cfg *Config) {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = cfg
}

// ResetGlobalForTesting resets the global config state between test runs.
func ResetGlobalForTesting() {
	globalConfigMu.Lock()
	defer globalConfigMu.Unlock()
	globalConfig = nil
	globalConfigOnce = sync.Once{}
}

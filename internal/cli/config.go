// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// config.go - View and modify client configuration.
//
// Command: config [subcommand]
//
// Subcommands:
//
//	show (default)      Display current configuration
//	set <key> <value>   Set a configuration value
//	reset               Reset to default configuration
//	path                Show configuration file path
//
// Configuration Keys:
//
//	default_model       Model used when no preference is stored
//	fallback_model      Model switched to after a model failure
//	backend_url         Backend base URL
//	timeout_secs        Per-request timeout in seconds
//	dev_mode            Allow localhost backend and mock auth (true/false)
//	theme               UI theme (dark/light/auto)
//	compact_mode        Hide timestamps and model tags (true/false)
package cli

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/jeranaias/ploymind-tui/internal/config"
)

// HandleConfig views or modifies the configuration file.
func HandleConfig(args Args) int {
	parser := NewArgParser(args.Raw)

	switch parser.Subcommand() {
	case "", "show":
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("load config: "+err.Error()))
			return ExitError
		}
		if args.JSON {
			outputJSON(cfg)
			return ExitOK
		}
		printConfig(cfg)
		return ExitOK

	case "set":
		key := parser.Positional(1)
		value := parser.Positional(2)
		if key == "" || value == "" {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Usage: ploymind config set <key> <value>"))
			return ExitUsage
		}
		cfg, err := config.Load()
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("load config: "+err.Error()))
			return ExitError
		}
		if err := setConfigKey(cfg, key, value); err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
			return ExitUsage
		}
		if err := config.Save(cfg); err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("save config: "+err.Error()))
			return ExitError
		}
		fmt.Println(SuccessStyle.Render("Set " + key + " = " + value))
		return ExitOK

	case "reset":
		if !confirmOrAbort(parser, "reset configuration to defaults") {
			return ExitError
		}
		if err := config.Save(config.Default()); err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("save config: "+err.Error()))
			return ExitError
		}
		fmt.Println(SuccessStyle.Render("Configuration reset to defaults"))
		return ExitOK

	case "path":
		path, err := config.Path()
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
			return ExitError
		}
		fmt.Println(path)
		return ExitOK

	default:
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Unknown subcommand "+parser.Subcommand()))
		return ExitUsage
	}
}

// printConfig renders the configuration as aligned label/value lines.
func printConfig(cfg *config.Config) {
	fmt.Println(TitleStyle.Render("Configuration"))
	fmt.Println(LabelStyle.Render("default_model") + ValueStyle.Render(cfg.DefaultModel))
	fmt.Println(LabelStyle.Render("fallback_model") + ValueStyle.Render(cfg.FallbackModel))
	fmt.Println(LabelStyle.Render("backend_url") + ValueStyle.Render(cfg.Backend.URL))
	fmt.Println(LabelStyle.Render("timeout_secs") + ValueStyle.Render(strconv.Itoa(cfg.Backend.TimeoutSecs)))
	fmt.Println(LabelStyle.Render("dev_mode") + ValueStyle.Render(strconv.FormatBool(cfg.Backend.DevMode)))
	fmt.Println(LabelStyle.Render("theme") + ValueStyle.Render(cfg.UI.Theme))
	fmt.Println(LabelStyle.Render("compact_mode") + ValueStyle.Render(strconv.FormatBool(cfg.UI.CompactMode)))

	auth := DimStyle.Render("not set")
	if cfg.Auth.InitData != "" {
		auth = WarningStyle.Render("inline (prefer `ploymind auth set`)")
	} else if cfg.Auth.InitDataFile != "" {
		auth = ValueStyle.Render(cfg.Auth.InitDataFile)
	}
	fmt.Println(LabelStyle.Render("auth") + auth)
}

// setConfigKey applies a single key=value change to cfg.
func setConfigKey(cfg *config.Config, key, value string) error {
	switch strings.ToLower(key) {
	case "default_model":
		cfg.DefaultModel = value
	case "fallback_model":
		cfg.FallbackModel = value
	case "backend_url":
		cfg.Backend.URL = value
	case "timeout_secs":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("timeout_secs must be a positive integer, got %q", value)
		}
		cfg.Backend.TimeoutSecs = n
	case "dev_mode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("dev_mode must be true or false, got %q", value)
		}
		cfg.Backend.DevMode = b
	case "theme":
		switch value {
		case "dark", "light", "auto":
			cfg.UI.Theme = value
		default:
			return fmt.Errorf("theme must be dark, light, or auto, got %q", value)
		}
	case "compact_mode":
		b, err := strconv.ParseBool(value)
		if err != nil {
			return fmt.Errorf("compact_mode must be true or false, got %q", value)
		}
		cfg.UI.CompactMode = b
	default:
		return fmt.Errorf("unknown configuration key %q", key)
	}
	return nil
}

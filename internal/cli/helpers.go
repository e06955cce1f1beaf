// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// helpers.go - Shared wiring and prompt helpers for command handlers.
package cli

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/ploymind-tui/internal/api"
	"github.com/jeranaias/ploymind-tui/internal/auth"
	"github.com/jeranaias/ploymind-tui/internal/config"
)

// verboseMode enables api request logging for the current invocation.
// Set once from the parsed global flags before any handler runs.
var verboseMode bool

// SetVerbose records the global --verbose flag for client construction.
func SetVerbose(enabled bool) {
	verboseMode = enabled
}

// newBackendClient wires a backend API client from the loaded config and
// resolved credentials. Shared by every command that talks to the backend.
func newBackendClient() (*api.Client, *config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}

	initData, err := auth.Resolve(cfg)
	if err != nil {
		return nil, nil, fmt.Errorf(
			"no credentials available (run `ploymind auth set` or set PLOYMIND_INIT_DATA): %w", err)
	}

	client, err := api.New(cfg, initData, api.WithDebug(verboseMode))
	if err != nil {
		return nil, nil, err
	}
	return client, cfg, nil
}

// outputJSON writes data as indented JSON to stdout.
func outputJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// promptInput prompts the user for a line of input.
func promptInput(prompt string) string {
	fmt.Print(prompt)
	reader := bufio.NewReader(os.Stdin)
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

// confirmOrAbort requires a yes answer or the --confirm flag.
func confirmOrAbort(parser *ArgParser, what string) bool {
	if parser.BoolFlag("confirm") {
		return true
	}
	if !IsTTY() {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Refusing to "+what+" without --confirm in non-interactive mode"))
		return false
	}
	answer := strings.ToLower(promptInput("Really " + what + "? [y/N] "))
	return answer == "y" || answer == "yes"
}

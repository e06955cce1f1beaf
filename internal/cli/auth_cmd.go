// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// auth_cmd.go - Manage stored backend credentials.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/jeranaias/ploymind-tui/internal/auth"
	"github.com/jeranaias/ploymind-tui/internal/config"
)

// HandleAuth manages the stored init-data credential.
func HandleAuth(ctx context.Context, args Args) int {
	parser := NewArgParser(args.Raw)

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("load config: "+err.Error()))
		return ExitError
	}

	switch parser.Subcommand() {
	case "set":
		initData, err := ReadSecret("Paste init data: ")
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
			return ExitError
		}
		initData = strings.TrimSpace(initData)
		if initData == "" {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("No credentials entered"))
			return ExitUsage
		}
		path, err := auth.FilePath(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
			return ExitError
		}
		if err := auth.Save(path, initData); err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Save failed: "+err.Error()))
			return ExitError
		}
		if os.Getenv(auth.KeyEnvVar) == "" {
			fmt.Println(WarningStyle.Render("Stored in plain text. Set " + auth.KeyEnvVar + " to encrypt at rest."))
		}
		fmt.Println(SuccessStyle.Render("Credentials saved"))
		return ExitOK

	case "show", "", "status":
		initData, err := auth.Resolve(cfg)
		if err != nil {
			fmt.Println(WarningStyle.Render("No credentials configured"))
			fmt.Println(DimStyle.Render("Run `ploymind auth set` or set PLOYMIND_INIT_DATA."))
			return ExitOK
		}
		source := "stored file"
		if cfg.Auth.InitData != "" {
			source = "config file"
		}
		if cfg.Backend.DevMode && initData == auth.MockInitData() {
			source = "dev mode mock"
		}
		fmt.Println(LabelStyle.Render("Credentials") + SuccessStyle.Render("present"))
		fmt.Println(LabelStyle.Render("Source") + ValueStyle.Render(source))
		if user, err := auth.ParseUser(initData); err == nil {
			fmt.Println(LabelStyle.Render("User") + ValueStyle.Render(user.DisplayName()))
		}
		return ExitOK

	case "clear":
		if !confirmOrAbort(parser, "remove stored credentials") {
			return ExitError
		}
		path, err := auth.FilePath(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
			return ExitError
		}
		if err := auth.Clear(path); err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Clear failed: "+err.Error()))
			return ExitError
		}
		fmt.Println(SuccessStyle.Render("Credentials removed"))
		return ExitOK

	case "validate":
		client, _, err := newBackendClient()
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
			return ExitError
		}
		validation, err := client.ValidateAuth(ctx)
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Validation failed: "+err.Error()))
			return ExitError
		}
		if args.JSON {
			outputJSON(validation)
			return ExitOK
		}
		fmt.Println(SuccessStyle.Render("Credentials valid"))
		fmt.Println(LabelStyle.Render("User") + ValueStyle.Render(validation.User.DisplayName()))
		if validation.Preferences.PreferredModel != "" {
			fmt.Println(LabelStyle.Render("Preferred model") + ValueStyle.Render(validation.Preferences.PreferredModel))
		}
		return ExitOK

	default:
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Unknown subcommand "+parser.Subcommand()))
		return ExitUsage
	}
}

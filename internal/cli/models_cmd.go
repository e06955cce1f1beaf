// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// models_cmd.go - List and select AI models.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jeranaias/ploymind-tui/internal/catalog"
	"github.com/jeranaias/ploymind-tui/internal/storage"
)

// HandleModels lists available models or selects one.
func HandleModels(ctx context.Context, args Args) int {
	parser := NewArgParser(args.Raw)

	client, cfg, err := newBackendClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		return ExitError
	}

	cat, fetchErr := catalog.Fetch(ctx, client)

	switch parser.Subcommand() {
	case "", "list":
		return printModels(cat, cfg.DefaultModel, fetchErr != nil, args.JSON)

	case "select":
		id := parser.Positional(1)
		if id == "" {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Usage: ploymind models select <id>"))
			return ExitUsage
		}
		info, ok := cat.Find(id)
		if !ok {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Unknown model "+id+"; run `ploymind models` to list them"))
			return ExitError
		}
		if err := client.SelectModel(ctx, info.ID); err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Select failed: "+err.Error()))
			return ExitError
		}
		// Mirror the choice locally so the TUI picks it up next start.
		if dbPath, err := storage.DefaultPath(); err == nil {
			if store, err := storage.Open(dbPath); err == nil {
				store.SetSelectedModel(info.ID)
				store.Close()
			}
		}
		fmt.Println(SuccessStyle.Render("Selected " + info.Label()))
		return ExitOK

	default:
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Unknown subcommand "+parser.Subcommand()))
		return ExitUsage
	}
}

// printModels renders the model list.
func printModels(cat *catalog.Catalog, defaultModel string, fromFallback, asJSON bool) int {
	models := cat.Models()
	if asJSON {
		outputJSON(models)
		return ExitOK
	}

	fmt.Println(TitleStyle.Render("Available models"))
	if fromFallback || cat.IsFallback() {
		fmt.Println(DimStyle.Render("(backend unreachable, showing built-in list)"))
	}
	for _, info := range models {
		marker := "  "
		if info.ID == defaultModel {
			marker = HighlightStyle.Render("* ")
		}
		fmt.Println(marker + ValueStyle.Render(info.Label()))
		fmt.Println("    " + DimStyle.Render(info.ID))
		if info.Description != "" {
			fmt.Println("    " + DimStyle.Render(info.Description))
		}
	}
	return ExitOK
}

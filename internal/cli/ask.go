// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// ask.go - One-shot question command: send, print the reply, exit.
package cli

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/jeranaias/ploymind-tui/internal/api"
	"github.com/jeranaias/ploymind-tui/internal/catalog"
)

// markdownRenderer is the global glamour renderer for markdown output.
// nil when initialization failed; output falls back to plain text.
var markdownRenderer *glamour.TermRenderer

func init() {
	var err error
	markdownRenderer, err = glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
		glamour.WithWordWrap(GetTerminalWidth()),
	)
	if err != nil {
		markdownRenderer = nil
	}
}

// renderMarkdown converts markdown to terminal output. Plain text passes
// through untouched when rendering is unavailable or stdout is piped.
func renderMarkdown(content string) string {
	if markdownRenderer == nil || !IsStdoutTTY() {
		return content
	}
	rendered, err := markdownRenderer.Render(content)
	if err != nil {
		return content
	}
	return strings.TrimRight(rendered, "\n") + "\n"
}

// HandleAsk sends a single question and prints the reply.
func HandleAsk(ctx context.Context, args Args) int {
	query := strings.TrimSpace(args.Query)
	if query == "" {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Usage: ploymind ask \"your question\""))
		return ExitUsage
	}

	client, cfg, err := newBackendClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		return ExitError
	}

	modelID := args.Model
	if modelID == "" {
		modelID = cfg.DefaultModel
	}
	cat, fetchErr := catalog.Fetch(ctx, client)
	if fetchErr != nil && args.Verbose {
		fmt.Fprintln(os.Stderr, DimStyle.Render("model list unavailable, using defaults"))
	}
	modelID = cat.Resolve(modelID).ID

	reply, err := client.SendChatMessage(ctx, api.ChatRequest{
		Content: query,
		Model:   modelID,
	})
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Request failed: "+err.Error()))
		return ExitError
	}

	if args.JSON {
		outputJSON(reply)
		return ExitOK
	}

	fmt.Print(renderMarkdown(reply.Content))
	if !args.Quiet && reply.ModelUsed != "" {
		fmt.Println(DimStyle.Render("\n— " + cat.Resolve(reply.ModelUsed).Label()))
	}
	return ExitOK
}

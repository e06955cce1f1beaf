// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// history_cmd.go - Show and clear stored chat history.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/jeranaias/ploymind-tui/internal/model"
	"github.com/jeranaias/ploymind-tui/internal/session"
)

// HandleHistory shows or clears stored chat history.
func HandleHistory(ctx context.Context, args Args) int {
	parser := NewArgParser(args.Raw)

	client, _, err := newBackendClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		return ExitError
	}

	switch parser.Subcommand() {
	case "", "show":
		limit := parser.FlagIntOrDefault("limit", 20)
		modelID := parser.FlagOrDefault("model", args.Model)

		hist, err := client.GetChatHistory(ctx, limit, modelID)
		if err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Fetch failed: "+err.Error()))
			return ExitError
		}
		if args.JSON {
			outputJSON(hist)
			return ExitOK
		}

		msgs := session.ConvertHistory(hist.Messages)
		if len(msgs) == 0 {
			fmt.Println(DimStyle.Render("No stored messages."))
			return ExitOK
		}

		fmt.Println(TitleStyle.Render("Chat history"))
		for _, msg := range msgs {
			label := "you"
			style := HighlightStyle
			if msg.Role != model.RoleUser {
				label = "assistant"
				style = ValueStyle
			}
			ts := ""
			if !msg.Timestamp.IsZero() {
				ts = msg.Timestamp.Format("Jan 2 15:04")
			}
			fmt.Println(style.Render(label) + " " + DimStyle.Render(ts))
			fmt.Println("  " + msg.Content)
		}
		if hist.TotalMessages > len(msgs) {
			fmt.Println(DimStyle.Render(fmt.Sprintf("(%d of %d messages)", len(msgs), hist.TotalMessages)))
		}
		return ExitOK

	case "clear":
		if !confirmOrAbort(parser, "delete all stored chat history") {
			return ExitError
		}
		if err := client.ClearChatHistory(ctx, parser.Flag("model")); err != nil {
			fmt.Fprintln(os.Stderr, ErrorStyle.Render("Clear failed: "+err.Error()))
			return ExitError
		}
		fmt.Println(SuccessStyle.Render("History cleared"))
		return ExitOK

	default:
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Unknown subcommand "+parser.Subcommand()))
		return ExitUsage
	}
}

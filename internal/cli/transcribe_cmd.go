// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// transcribe_cmd.go - Transcribe a voice recording via the backend.
package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
)

// HandleTranscribe uploads an audio file for transcription.
func HandleTranscribe(ctx context.Context, args Args) int {
	parser := NewArgParser(args.Raw)

	path := args.File
	if path == "" {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Usage: ploymind transcribe FILE [--ai] [--model ID]"))
		return ExitUsage
	}

	f, err := os.Open(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Cannot open "+path+": "+err.Error()))
		return ExitError
	}
	defer f.Close()

	client, cfg, err := newBackendClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		return ExitError
	}

	modelID := parser.FlagOrDefault("model", args.Model)
	if modelID == "" {
		modelID = cfg.DefaultModel
	}
	withAI := parser.BoolFlag("ai")

	result, err := client.TranscribeVoice(ctx, filepath.Base(path), f, modelID, withAI)
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render("Transcription failed: "+err.Error()))
		return ExitError
	}

	if args.JSON {
		outputJSON(result)
		return ExitOK
	}

	fmt.Println(TitleStyle.Render("Transcript"))
	fmt.Println(ValueStyle.Render(result.Text))
	if result.Language != "" {
		fmt.Println(DimStyle.Render(fmt.Sprintf("language: %s, confidence: %.0f%%",
			result.Language, result.Confidence*100)))
	}
	if withAI && result.AIResponse != "" {
		fmt.Println()
		fmt.Println(TitleStyle.Render("Assistant"))
		fmt.Print(renderMarkdown(result.AIResponse))
	}
	return ExitOK
}

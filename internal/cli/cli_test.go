// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Tests for argument parsing and command dispatch.
package cli

import (
	"strings"
	"testing"
)

// =============================================================================
// ARG PARSER TESTS (args.go)
// =============================================================================

func TestArgParser_BasicParsing(t *testing.T) {
	tests := []struct {
		name     string
		args     []string
		wantSub  string
		validate func(*testing.T, *ArgParser)
	}{
		{
			name:    "simple subcommand",
			args:    []string{"show"},
			wantSub: "show",
		},
		{
			name:    "subcommand with flag",
			args:    []string{"show", "--limit", "50"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("limit") != "50" {
					t.Errorf("Flag(limit) = %q, want %q", p.Flag("limit"), "50")
				}
			},
		},
		{
			name:    "flag with equals",
			args:    []string{"show", "--model=deepseek-r1-0528"},
			wantSub: "show",
			validate: func(t *testing.T, p *ArgParser) {
				if p.Flag("model") != "deepseek-r1-0528" {
					t.Errorf("Flag(model) = %q, want %q", p.Flag("model"), "deepseek-r1-0528")
				}
			},
		},
		{
			name:    "boolean flag",
			args:    []string{"clear", "--confirm"},
			wantSub: "clear",
			validate: func(t *testing.T, p *ArgParser) {
				if !p.BoolFlag("confirm") {
					t.Error("BoolFlag(confirm) should be true")
				}
			},
		},
		{
			name:    "multiple positional args",
			args:    []string{"select", "openai/gpt-4o"},
			wantSub: "select",
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 2 {
					t.Errorf("PositionalCount() = %d, want 2", p.PositionalCount())
				}
				if p.Positional(1) != "openai/gpt-4o" {
					t.Errorf("Positional(1) = %q, want %q", p.Positional(1), "openai/gpt-4o")
				}
			},
		},
		{
			name:    "positional tail join",
			args:    []string{"set", "theme", "light"},
			wantSub: "set",
			validate: func(t *testing.T, p *ArgParser) {
				joined := strings.Join(p.PositionalFrom(1), " ")
				if joined != "theme light" {
					t.Errorf("PositionalFrom(1) joined = %q, want %q", joined, "theme light")
				}
			},
		},
		{
			name:    "empty args",
			args:    []string{},
			wantSub: "",
			validate: func(t *testing.T, p *ArgParser) {
				if p.PositionalCount() != 0 {
					t.Errorf("PositionalCount() = %d, want 0", p.PositionalCount())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := NewArgParser(tt.args)
			if got := p.Subcommand(); got != tt.wantSub {
				t.Errorf("Subcommand() = %q, want %q", got, tt.wantSub)
			}
			if tt.validate != nil {
				tt.validate(t, p)
			}
		})
	}
}

func TestArgParser_FlagDefaults(t *testing.T) {
	p := NewArgParser([]string{"show"})

	if got := p.FlagOrDefault("limit", "20"); got != "20" {
		t.Errorf("FlagOrDefault(limit) = %q, want %q", got, "20")
	}
	if got := p.FlagIntOrDefault("limit", 20); got != 20 {
		t.Errorf("FlagIntOrDefault(limit) = %d, want 20", got)
	}
	if p.HasFlag("limit") {
		t.Error("HasFlag(limit) should be false")
	}
}

func TestArgParser_FlagInt(t *testing.T) {
	p := NewArgParser([]string{"show", "--limit", "35"})

	n, err := p.FlagInt("limit")
	if err != nil {
		t.Fatalf("FlagInt failed: %v", err)
	}
	if n != 35 {
		t.Errorf("FlagInt(limit) = %d, want 35", n)
	}

	bad := NewArgParser([]string{"show", "--limit", "lots"})
	if _, err := bad.FlagInt("limit"); err == nil {
		t.Error("FlagInt should reject non-numeric values")
	}
}

// =============================================================================
// COMMAND DISPATCH TESTS (cli.go)
// =============================================================================

func TestParse_CommandWords(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantCmd Command
	}{
		{"no args is the TUI", []string{}, CmdTUI},
		{"explicit tui", []string{"tui"}, CmdTUI},
		{"ask", []string{"ask", "hello"}, CmdAsk},
		{"chat", []string{"chat"}, CmdChat},
		{"models", []string{"models"}, CmdModels},
		{"model alias", []string{"model", "list"}, CmdModels},
		{"history", []string{"history", "show"}, CmdHistory},
		{"auth", []string{"auth", "set"}, CmdAuth},
		{"transcribe", []string{"transcribe", "note.ogg"}, CmdTranscribe},
		{"voice alias", []string{"voice", "note.ogg"}, CmdTranscribe},
		{"status", []string{"status"}, CmdStatus},
		{"status alias s", []string{"s"}, CmdStatus},
		{"health alias", []string{"health"}, CmdStatus},
		{"config", []string{"config", "show"}, CmdConfig},
		{"version", []string{"version"}, CmdVersion},
		{"version flag", []string{"--version"}, CmdVersion},
		{"help", []string{"help"}, CmdHelp},
		{"help flag", []string{"-h"}, CmdHelp},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cmd, _ := Parse(tt.args)
			if cmd != tt.wantCmd {
				t.Errorf("Parse(%v) = %v, want %v", tt.args, cmd, tt.wantCmd)
			}
		})
	}
}

func TestParse_AskQuery(t *testing.T) {
	cmd, args := Parse([]string{"ask", "how", "do", "I", "cook", "rice?"})
	if cmd != CmdAsk {
		t.Fatalf("Parse = %v, want CmdAsk", cmd)
	}
	if args.Query != "how do I cook rice?" {
		t.Errorf("Query = %q, want %q", args.Query, "how do I cook rice?")
	}
}

func TestParse_UnknownWordBecomesAsk(t *testing.T) {
	cmd, args := Parse([]string{"what", "is", "the", "weather"})
	if cmd != CmdAsk {
		t.Fatalf("Parse = %v, want CmdAsk", cmd)
	}
	if args.Query != "what is the weather" {
		t.Errorf("Query = %q, want %q", args.Query, "what is the weather")
	}
}

func TestParse_GlobalFlags(t *testing.T) {
	cmd, args := Parse([]string{"--json", "ask", "--model", "openai/gpt-4o", "hello"})
	if cmd != CmdAsk {
		t.Fatalf("Parse = %v, want CmdAsk", cmd)
	}
	if !args.JSON {
		t.Error("JSON flag should be set")
	}
	if args.Model != "openai/gpt-4o" {
		t.Errorf("Model = %q, want %q", args.Model, "openai/gpt-4o")
	}
	if args.Query != "hello" {
		t.Errorf("Query = %q, want %q", args.Query, "hello")
	}
}

func TestParse_ModelFlagEquals(t *testing.T) {
	_, args := Parse([]string{"ask", "--model=deepseek-r1-0528", "hi"})
	if args.Model != "deepseek-r1-0528" {
		t.Errorf("Model = %q, want %q", args.Model, "deepseek-r1-0528")
	}
	if args.Query != "hi" {
		t.Errorf("Query = %q, want %q", args.Query, "hi")
	}
}

func TestParse_TranscribeFile(t *testing.T) {
	cmd, args := Parse([]string{"transcribe", "voice_note.ogg", "--ai"})
	if cmd != CmdTranscribe {
		t.Fatalf("Parse = %v, want CmdTranscribe", cmd)
	}
	if args.File != "voice_note.ogg" {
		t.Errorf("File = %q, want %q", args.File, "voice_note.ogg")
	}
}

func TestParse_SubcommandCapture(t *testing.T) {
	_, args := Parse([]string{"history", "clear", "--confirm"})
	if args.Subcommand != "clear" {
		t.Errorf("Subcommand = %q, want %q", args.Subcommand, "clear")
	}
	if len(args.Raw) != 2 {
		t.Errorf("Raw = %v, want 2 entries", args.Raw)
	}
}

// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// cli.go - CLI parsing and command dispatch for ploymind.
package cli

import (
	"fmt"
	"os"
	"runtime"
	"strings"
)

// Version information (can be overridden at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

// Command represents the CLI command to execute.
type Command int

const (
	CmdTUI Command = iota
	CmdAsk
	CmdChat
	CmdModels
	CmdHistory
	CmdAuth
	CmdTranscribe
	CmdStatus
	CmdConfig
	CmdVersion
	CmdHelp
)

// Args holds parsed CLI arguments.
type Args struct {
	// Global flags
	Quiet   bool
	Verbose bool
	JSON    bool
	Model   string

	// Command-specific
	Query      string
	File       string
	Subcommand string

	// Raw args remaining after the command word
	Raw []string
}

const usageText = `ploymind - terminal client for the Ploymind AI assistant

Ploymind is a terminal front end for the Ploymind chat backend. It keeps
your conversation history, lets you switch between AI models, and can
transcribe voice notes.

Usage:
  ploymind                       Start the chat TUI (default)
  ploymind ask "question"        Ask a single question and exit
  ploymind chat                  Interactive chat in plain terminal mode
  ploymind models [list|select]  List or select AI models
  ploymind history [show|clear]  Manage stored chat history
  ploymind auth [subcommand]     Manage backend credentials
  ploymind transcribe FILE       Transcribe a voice recording
  ploymind status                Check backend connectivity
  ploymind config [show|set|path] Configuration
  ploymind version               Show version information
  ploymind help                  Show this help

Ask:
  ploymind ask "how do I cook rice?"
    --model ID                   Use a specific model for this question
    --json                       Print the raw response as JSON

Models:
  ploymind models                List available models
  ploymind models select <id>   Set the active model

History:
  ploymind history show          Show recent messages
    --limit N                    Number of messages (default: 20)
    --model ID                   Only messages from one model
  ploymind history clear         Delete stored history on the backend
    --confirm                    Required confirmation flag

Auth:
  ploymind auth set              Store credentials (prompted, no echo)
  ploymind auth show             Show credential status
  ploymind auth clear            Remove stored credentials
  ploymind auth validate         Validate credentials against the backend

Transcribe:
  ploymind transcribe note.ogg
    --ai                         Also send the transcript to the assistant
    --model ID                   Model for the AI response

Global flags:
  --model ID                     Override the configured model
  --json                         Machine-readable output where supported
  --quiet                        Suppress non-essential output
  --verbose                      More diagnostic output

Environment:
  PLOYMIND_BACKEND_URL           Backend base URL
  PLOYMIND_INIT_DATA             Credentials (overrides stored file)
  PLOYMIND_AUTH_KEY              Key for encrypting stored credentials
  PLOYMIND_MODEL                 Default model override
  NO_COLOR                       Disable colored output

Config file: ~/.ploymind/config.toml
`

// Parse parses os.Args style arguments into a command and its options.
func Parse(args []string) (Command, Args) {
	remaining, parsedArgs := parseGlobalFlags(args)

	// No command word defaults to the TUI.
	if len(remaining) == 0 {
		return CmdTUI, parsedArgs
	}

	cmd := strings.ToLower(remaining[0])
	remaining = remaining[1:]
	parsedArgs.Raw = remaining

	if len(remaining) > 0 && !strings.HasPrefix(remaining[0], "-") {
		parsedArgs.Subcommand = remaining[0]
	}

	switch cmd {
	case "tui":
		return CmdTUI, parsedArgs

	case "ask":
		parsedArgs.Query = strings.Join(positionalOnly(remaining), " ")
		return CmdAsk, parsedArgs

	case "chat":
		return CmdChat, parsedArgs

	case "models", "model":
		return CmdModels, parsedArgs

	case "history":
		return CmdHistory, parsedArgs

	case "auth":
		return CmdAuth, parsedArgs

	case "transcribe", "voice":
		parsedArgs.File = parsedArgs.Subcommand
		return CmdTranscribe, parsedArgs

	case "status", "s", "health":
		return CmdStatus, parsedArgs

	case "config":
		return CmdConfig, parsedArgs

	case "version", "-v", "--version":
		return CmdVersion, parsedArgs

	case "help", "-h", "--help":
		return CmdHelp, parsedArgs

	default:
		// Unknown words are treated as an ask query, so
		// `ploymind how do I ...` just works.
		parsedArgs.Query = strings.Join(positionalOnly(append([]string{cmd}, remaining...)), " ")
		return CmdAsk, parsedArgs
	}
}

// parseGlobalFlags strips the flags every command accepts and returns the
// remaining arguments.
func parseGlobalFlags(args []string) ([]string, Args) {
	var parsed Args
	var remaining []string

	i := 0
	for i < len(args) {
		switch arg := args[i]; arg {
		case "--quiet", "-q":
			parsed.Quiet = true
		case "--verbose":
			parsed.Verbose = true
		case "--json":
			parsed.JSON = true
		case "--model", "-m":
			if i+1 < len(args) {
				parsed.Model = args[i+1]
				i++
			}
		default:
			if strings.HasPrefix(arg, "--model=") {
				parsed.Model = strings.TrimPrefix(arg, "--model=")
			} else {
				remaining = append(remaining, arg)
			}
		}
		i++
	}
	return remaining, parsed
}

// positionalOnly filters out flag-shaped arguments and flag values.
func positionalOnly(args []string) []string {
	var out []string
	skip := false
	for _, arg := range args {
		if skip {
			skip = false
			continue
		}
		if strings.HasPrefix(arg, "-") {
			if !strings.Contains(arg, "=") && !isBoolFlagName(arg) {
				skip = true
			}
			continue
		}
		out = append(out, arg)
	}
	return out
}

// isBoolFlagName reports whether a flag never takes a value.
func isBoolFlagName(arg string) bool {
	switch strings.TrimLeft(arg, "-") {
	case "json", "quiet", "verbose", "confirm", "ai":
		return true
	}
	return false
}

// PrintUsage prints the help text.
func PrintUsage() {
	fmt.Print(usageText)
}

// PrintVersion prints version information.
func PrintVersion() {
	fmt.Printf("ploymind %s\n", Version)
	fmt.Printf("  commit:  %s\n", GitCommit)
	fmt.Printf("  built:   %s\n", BuildDate)
	fmt.Printf("  go:      %s %s/%s\n", runtime.Version(), runtime.GOOS, runtime.GOARCH)
}

// Exit codes.
const (
	ExitOK    = 0
	ExitError = 1
	ExitUsage = 2
)

// Fatalf prints an error and exits.
func Fatalf(format string, args ...interface{}) {
	fmt.Fprintln(os.Stderr, ErrorStyle.Render("Error: ")+fmt.Sprintf(format, args...))
	os.Exit(ExitError)
}

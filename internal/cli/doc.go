// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package cli provides command-line interface parsing and execution for
// ploymind.
//
// It implements the non-TUI commands (ask, chat, models, history, auth,
// transcribe, status, config) plus the argument parsing shared by all of
// them.
//
// # Usage
//
// Parse and dispatch commands:
//
//	cmd, args := cli.Parse(os.Args[1:])
//	switch cmd {
//	case cli.CmdAsk:
//	    os.Exit(cli.HandleAsk(ctx, args))
//	case cli.CmdChat:
//	    os.Exit(cli.HandleChat(ctx, args))
//	// ... other commands
//	}
//
// Handlers return process exit codes (ExitOK, ExitError, ExitUsage) rather
// than calling os.Exit themselves, so they stay testable.
package cli

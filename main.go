// ploymind - A terminal client for the Ploymind AI assistant.
//
// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later
package main

import (
	"context"
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/jeranaias/ploymind-tui/internal/api"
	"github.com/jeranaias/ploymind-tui/internal/auth"
	"github.com/jeranaias/ploymind-tui/internal/catalog"
	"github.com/jeranaias/ploymind-tui/internal/cli"
	"github.com/jeranaias/ploymind-tui/internal/config"
	"github.com/jeranaias/ploymind-tui/internal/session"
	"github.com/jeranaias/ploymind-tui/internal/state"
	"github.com/jeranaias/ploymind-tui/internal/storage"
	"github.com/jeranaias/ploymind-tui/internal/ui/chat"
	"github.com/jeranaias/ploymind-tui/internal/ui/styles"
)

// Version information (set at build time)
var (
	Version   = "0.1.0"
	GitCommit = "unknown"
	BuildDate = "unknown"
)

func init() {
	cli.Version = Version
	cli.GitCommit = GitCommit
	cli.BuildDate = BuildDate
}

func main() {
	ctx := context.Background()
	cmd, args := cli.Parse(os.Args[1:])
	cli.SetVerbose(args.Verbose)

	switch cmd {
	case cli.CmdTUI:
		os.Exit(runTUI(args))
	case cli.CmdAsk:
		os.Exit(cli.HandleAsk(ctx, args))
	case cli.CmdChat:
		os.Exit(cli.HandleChat(ctx, args))
	case cli.CmdModels:
		os.Exit(cli.HandleModels(ctx, args))
	case cli.CmdHistory:
		os.Exit(cli.HandleHistory(ctx, args))
	case cli.CmdAuth:
		os.Exit(cli.HandleAuth(ctx, args))
	case cli.CmdTranscribe:
		os.Exit(cli.HandleTranscribe(ctx, args))
	case cli.CmdStatus:
		os.Exit(cli.HandleStatus(ctx, args))
	case cli.CmdConfig:
		os.Exit(cli.HandleConfig(args))
	case cli.CmdVersion:
		cli.PrintVersion()
	case cli.CmdHelp:
		cli.PrintUsage()
	default:
		cli.PrintUsage()
		os.Exit(cli.ExitUsage)
	}
}

// runTUI wires the full application and runs the Bubble Tea program.
func runTUI(args cli.Args) int {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		return cli.ExitError
	}
	config.SetGlobal(cfg)

	if args.Model != "" {
		cfg.DefaultModel = args.Model
	}

	initData, err := auth.Resolve(cfg)
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error: no credentials configured.")
		fmt.Fprintln(os.Stderr, "Run `ploymind auth set`, or set PLOYMIND_INIT_DATA.")
		return cli.ExitError
	}

	client, err := api.New(cfg, initData)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitError
	}

	// An unreachable backend still yields a usable catalog; Fetch falls
	// back to the built-in model list.
	cat, _ := catalog.Fetch(context.Background(), client)

	// Local persistence is best effort. The TUI works without it, it
	// just forgets session snapshots and the model preference on exit.
	var local *storage.Store
	if dbPath, err := storage.DefaultPath(); err == nil {
		if store, err := storage.Open(dbPath); err == nil {
			local = store
			defer local.Close()
		}
	}

	store := state.New()
	manager := session.NewManager(store, client, cat, local, session.DefaultConfig())

	theme := styles.NewTheme(cfg.UI.Theme)
	app := chat.New(manager, theme)

	program := tea.NewProgram(app, tea.WithAltScreen())

	// Live-reload presentation settings when the config file changes.
	watcher, err := config.NewWatcher(func(updated *config.Config) {
		program.Send(chat.ConfigReloadedMsg{Config: updated})
	})
	if err == nil {
		defer watcher.Close()
	}

	if _, err := program.Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return cli.ExitError
	}
	return cli.ExitOK
}

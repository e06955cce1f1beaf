// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// chat.go - Plain-terminal interactive chat with input history.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/peterh/liner"

	"github.com/jeranaias/ploymind-tui/internal/api"
	"github.com/jeranaias/ploymind-tui/internal/catalog"
	"github.com/jeranaias/ploymind-tui/internal/config"
	"github.com/jeranaias/ploymind-tui/internal/model"
	"github.com/jeranaias/ploymind-tui/internal/session"
)

// =============================================================================
// INPUT HISTORY
// =============================================================================

// ChatCLI provides input history and line editing for interactive chat.
// Supports arrow keys for history navigation.
type ChatCLI struct {
	line        *liner.State
	historyFile string
}

// NewChatCLI creates a ChatCLI with input history support.
func NewChatCLI() *ChatCLI {
	line := liner.NewLiner()
	line.SetCtrlCAborts(true)

	configDir, err := config.Dir()
	if err != nil {
		configDir = os.TempDir()
	}

	cli := &ChatCLI{
		line:        line,
		historyFile: filepath.Join(configDir, "chat_history"),
	}
	cli.LoadHistory()
	return cli
}

// LoadHistory loads input history from file.
func (c *ChatCLI) LoadHistory() {
	if f, err := os.Open(c.historyFile); err == nil {
		c.line.ReadHistory(f)
		f.Close()
	}
}

// ReadInput reads a line of input with the given prompt.
func (c *ChatCLI) ReadInput(prompt string) (string, error) {
	input, err := c.line.Prompt(prompt)
	if err != nil {
		return "", err
	}
	if strings.TrimSpace(input) != "" {
		c.line.AppendHistory(input)
	}
	return input, nil
}

// SaveHistory persists input history with owner-only permissions.
func (c *ChatCLI) SaveHistory() {
	if err := config.EnsureDir(); err != nil {
		return
	}
	f, err := os.OpenFile(c.historyFile, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0600)
	if err != nil {
		return
	}
	defer f.Close()
	c.line.WriteHistory(f)
}

// Close saves history and closes the liner.
func (c *ChatCLI) Close() {
	c.SaveHistory()
	c.line.Close()
}

// =============================================================================
// REPL
// =============================================================================

// replState holds the running conversation for the plain-terminal chat.
type replState struct {
	client     *api.Client
	catalog    *catalog.Catalog
	modelID    string
	transcript []model.Message
}

// HandleChat runs the interactive plain-terminal chat loop.
func HandleChat(ctx context.Context, args Args) int {
	client, cfg, err := newBackendClient()
	if err != nil {
		fmt.Fprintln(os.Stderr, ErrorStyle.Render(err.Error()))
		return ExitError
	}

	cat, _ := catalog.Fetch(ctx, client)
	modelID := cat.Resolve(args.Model)
	if args.Model == "" {
		modelID = cat.Resolve(cfg.DefaultModel)
	}

	state := &replState{
		client:  client,
		catalog: cat,
		modelID: modelID.ID,
	}

	cli := NewChatCLI()
	defer cli.Close()

	if !args.Quiet {
		fmt.Println(TitleStyle.Render("Ploymind AI"))
		fmt.Println(DimStyle.Render("Model: " + modelID.Label()))
		fmt.Println(DimStyle.Render("Type /help for commands, /quit to exit."))
		fmt.Println()
	}

	for {
		input, err := cli.ReadInput("> ")
		if err != nil {
			if errors.Is(err, liner.ErrPromptAborted) {
				continue
			}
			// EOF exits cleanly.
			fmt.Println()
			return ExitOK
		}

		input = strings.TrimSpace(input)
		if input == "" {
			continue
		}
		if strings.HasPrefix(input, "/") {
			if done := state.handleCommand(ctx, input); done {
				return ExitOK
			}
			continue
		}

		state.send(ctx, input)
	}
}

// send submits one message and prints the reply.
func (s *replState) send(ctx context.Context, content string) {
	userMsg := model.NewUserMessage(content)
	userMsg.Model = s.modelID

	contextBlock := session.BuildContext(nil, s.transcript)
	reply, err := s.client.SendChatMessage(ctx, api.ChatRequest{
		Content: content,
		Model:   s.modelID,
		Context: contextBlock,
	})
	if err != nil {
		fmt.Println(ErrorStyle.Render("Request failed: " + err.Error()))
		return
	}

	modelUsed := reply.ModelUsed
	if modelUsed == "" {
		modelUsed = s.modelID
	}
	s.transcript = append(s.transcript, userMsg,
		model.NewAssistantMessage(reply.MessageID, reply.Content, modelUsed, userMsg.ID, reply.Time()))

	fmt.Println()
	fmt.Print(renderMarkdown(reply.Content))
	fmt.Println()
}

// handleCommand interprets "/" commands. Returns true when the REPL
// should exit.
func (s *replState) handleCommand(ctx context.Context, input string) bool {
	fields := strings.Fields(input)
	switch fields[0] {
	case "/quit", "/exit", "/q":
		return true

	case "/help":
		fmt.Println(ValueStyle.Render("Commands:"))
		fmt.Println(DimStyle.Render("  /model [id]   show or switch the active model"))
		fmt.Println(DimStyle.Render("  /models       list available models"))
		fmt.Println(DimStyle.Render("  /new          start a fresh conversation"))
		fmt.Println(DimStyle.Render("  /quit         exit"))

	case "/models":
		for _, info := range s.catalog.Models() {
			marker := "  "
			if info.ID == s.modelID {
				marker = HighlightStyle.Render("* ")
			}
			fmt.Println(marker + info.Label() + DimStyle.Render("  ("+info.ID+")"))
		}

	case "/model":
		if len(fields) < 2 {
			fmt.Println(ValueStyle.Render("Active model: " + s.catalog.Resolve(s.modelID).Label()))
			break
		}
		info := s.catalog.Resolve(fields[1])
		s.modelID = info.ID
		s.transcript = nil
		s.client.SelectModel(ctx, info.ID)
		fmt.Println(SuccessStyle.Render("Switched to " + info.Label()))

	case "/new":
		s.transcript = nil
		fmt.Println(DimStyle.Render("Started a new conversation."))

	default:
		fmt.Println(WarningStyle.Render("Unknown command " + fields[0] + " (try /help)"))
	}
	return false
}

package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/charmbracelet/lipgloss"

	"github.com/petasbytes/memory-agent/internal/assistant"
	"github.com/petasbytes/memory-agent/internal/provider"
	"github.com/petasbytes/memory-agent/internal/runner"
	"github.com/petasbytes/memory-agent/memory"
)

var (
	userPrompt     = lipgloss.NewStyle().Foreground(lipgloss.Color("12")).Bold(true).Render("You")
	assistantLabel = lipgloss.NewStyle().Foreground(lipgloss.Color("11")).Render("Claude")
)

// errNoAnthropicKey stops the chat before any request is made.
var errNoAnthropicKey = errors.New("missing ANTHROPIC_API_KEY; export it before running")

func (a *app) chat(ctx context.Context, out io.Writer) error {
	if os.Getenv("ANTHROPIC_API_KEY") == "" {
		return errNoAnthropicKey
	}

	path := memory.TranscriptPath(a.cfg.TranscriptDir, a.cfg.UserID)
	persisted, err := memory.LoadTranscript(path)
	if err != nil {
		a.log.Warn("failed to load transcript; starting fresh", "path", path, "error", err)
	}

	r := runner.New(a.newClient(), assistant.Tools(a.adapter),
		runner.WithSystem(assistant.SystemPrompt(a.cfg.UserID)),
		runner.WithOutput(out, assistantLabel),
		runner.WithBudget(a.cfg.TokenBudget),
		runner.WithLogger(a.log.With("component", "runner")),
	)
	model := provider.ResolveModel(a.cfg.Model)
	conv := transcriptToConversation(persisted)

	// Set up graceful shutdown on Ctrl-C (SIGINT) / SIGTERM
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	// stdin reader goroutine -> lines into channel
	inputCh := make(chan string)
	scanner := bufio.NewScanner(a.stdin)
	go func() {
		defer close(inputCh)
		for scanner.Scan() {
			select {
			case inputCh <- scanner.Text():
			case <-ctx.Done():
				return
			}
		}
	}()

	fmt.Fprintf(out, "Chat with %s as %q (Ctrl-C to quit)\n", assistant.Name, a.cfg.UserID)
	for {
		fmt.Fprintf(out, "%s: ", userPrompt)
		var (
			line string
			ok   bool
		)
		select {
		case <-ctx.Done():
			fmt.Fprintln(out, "\nExiting...")
			return nil
		case line, ok = <-inputCh:
			if !ok {
				fmt.Fprintln(out)
				return scanner.Err()
			}
		}
		if strings.TrimSpace(line) == "" {
			continue
		}

		conv = append(conv, anthropic.NewUserMessage(anthropic.NewTextBlock(line)))
		var reply string
		conv, reply, err = r.RunTurn(ctx, model, conv)
		if err != nil {
			a.log.Error("turn failed", "error", err)
		}

		// Tool blocks stay in memory only; the transcript keeps text.
		persisted = append(persisted, memory.Turn{Role: "user", Text: line})
		if strings.TrimSpace(reply) != "" {
			persisted = append(persisted, memory.Turn{Role: "assistant", Text: reply})
		}
		if err := memory.SaveTranscript(path, persisted); err != nil {
			a.log.Warn("failed to save transcript", "path", path, "error", err)
		}
	}
}

// transcriptToConversation rebuilds model messages from a saved transcript.
// Consecutive turns from the same role are merged so roles keep alternating.
func transcriptToConversation(turns []memory.Turn) []anthropic.MessageParam {
	conv := make([]anthropic.MessageParam, 0, len(turns))
	var lastRole string
	for _, t := range turns {
		if t.Text == "" {
			continue
		}
		if t.Role == lastRole && len(conv) > 0 {
			prev := &conv[len(conv)-1]
			prev.Content = append(prev.Content, anthropic.NewTextBlock(t.Text))
			continue
		}
		if t.Role == "assistant" {
			conv = append(conv, anthropic.NewAssistantMessage(anthropic.NewTextBlock(t.Text)))
		} else {
			conv = append(conv, anthropic.NewUserMessage(anthropic.NewTextBlock(t.Text)))
		}
		lastRole = t.Role
	}
	return conv
}

package runner

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/google/uuid"

	"github.com/petasbytes/memory-agent/internal/logger"
	"github.com/petasbytes/memory-agent/internal/telemetry"
	"github.com/petasbytes/memory-agent/internal/windowing"
	"github.com/petasbytes/memory-agent/tools"
)

const (
	defaultMaxTokens = 1024
	// maxSteps bounds model round trips within one user turn.
	maxSteps = 8
)

type Runner struct {
	Client    *anthropic.Client
	Tools     []tools.ToolDefinition
	System    string
	MaxTokens int64
	// Budget caps the estimated history size per request. Zero sends everything.
	Budget int
	// Label prefixes assistant text written to Out.
	Label  string
	Out    io.Writer
	Logger *slog.Logger
}

// Option configures a Runner created with New.
type Option func(*Runner)

// WithSystem sets the system prompt sent on every request.
func WithSystem(s string) Option {
	return func(r *Runner) { r.System = s }
}

// WithOutput redirects assistant text, prefixed by label.
func WithOutput(w io.Writer, label string) Option {
	return func(r *Runner) {
		r.Out = w
		r.Label = label
	}
}

// WithBudget trims history to whole turns fitting budget before each request.
func WithBudget(budget int) Option {
	return func(r *Runner) { r.Budget = budget }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Runner) { r.Logger = l }
}

func New(client *anthropic.Client, toolDefs []tools.ToolDefinition, opts ...Option) *Runner {
	r := &Runner{
		Client:    client,
		Tools:     toolDefs,
		MaxTokens: defaultMaxTokens,
		Label:     "Claude",
		Out:       os.Stdout,
		Logger:    logger.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

func (r *Runner) anthropicTools() []anthropic.ToolUnionParam {
	out := make([]anthropic.ToolUnionParam, 0, len(r.Tools))
	for _, t := range r.Tools {
		out = append(out, anthropic.ToolUnionParam{OfTool: &anthropic.ToolParam{
			Name:        t.Name,
			Description: anthropic.String(t.Description),
			InputSchema: t.InputSchema,
		}})
	}
	return out
}

// RunOneStep sends the conversation and either prints text or returns tool results to be appended.
func (r *Runner) RunOneStep(ctx context.Context, model anthropic.Model, conv []anthropic.MessageParam) (*anthropic.Message, []anthropic.ContentBlockParamUnion, error) {
	// Get turnID from context if present, else generate once for this call.
	turnID, ok := telemetry.TurnIDFromContext(ctx)
	if !ok {
		turnID = "turn-" + uuid.NewString()
	}
	ctx = telemetry.WithTurnID(ctx, turnID)

	window, stats := windowing.PrepareSendWindow(conv, r.Budget)
	telemetry.Emit("request_prepared", map[string]any{
		"turn_id":            turnID,
		"model":              string(model),
		"messages":           len(window),
		"history_messages":   len(conv),
		"tools":              len(r.Tools),
		"budget":             stats.Budget,
		"total_estimated":    stats.Total,
		"included_turns":     stats.IncludedTurns,
		"skipped_turns":      stats.SkippedTurns,
		"over_budget_newest": stats.OverBudgetNewest,
	})
	if stats.OverBudgetNewest {
		r.Logger.Warn("newest turn exceeds history budget; sending it anyway", "budget", stats.Budget, "estimated", stats.Total)
	}

	params := anthropic.MessageNewParams{
		Model:     model,
		MaxTokens: r.MaxTokens,
		Messages:  window,
		Tools:     r.anthropicTools(),
	}
	if r.System != "" {
		params.System = []anthropic.TextBlockParam{{Text: r.System}}
	}

	msg, err := r.Client.Messages.New(ctx, params)
	if err != nil {
		return nil, nil, err
	}
	toolResults := []anthropic.ContentBlockParamUnion{}
	for _, block := range msg.Content {
		switch v := block.AsAny().(type) {
		case anthropic.TextBlock:
			fmt.Fprintf(r.Out, "%s: %s\n", r.Label, v.Text)
		case anthropic.ToolUseBlock:
			// Pass raw JSON input through to the tool implementation
			input := json.RawMessage(v.JSON.Input.Raw())
			res := r.execTool(ctx, v.ID, v.Name, input)
			toolResults = append(toolResults, res)
		}
	}
	return msg, toolResults, nil
}

// RunTurn drives one user turn to completion: it keeps answering tool calls
// until the model replies without any. It returns the extended conversation
// and the assistant's visible text for the turn.
func (r *Runner) RunTurn(ctx context.Context, model anthropic.Model, conv []anthropic.MessageParam) ([]anthropic.MessageParam, string, error) {
	if _, ok := telemetry.TurnIDFromContext(ctx); !ok {
		ctx = telemetry.WithTurnID(ctx, "turn-"+uuid.NewString())
	}

	var text []string
	for step := 0; step < maxSteps; step++ {
		msg, toolResults, err := r.RunOneStep(ctx, model, conv)
		if err != nil {
			return conv, strings.Join(text, "\n"), err
		}
		conv = append(conv, msg.ToParam())
		for _, b := range msg.Content {
			if tb, ok := b.AsAny().(anthropic.TextBlock); ok && tb.Text != "" {
				text = append(text, tb.Text)
			}
		}
		if len(toolResults) == 0 {
			return conv, strings.Join(text, "\n"), nil
		}
		// Provide tool results as a user message back to the model
		conv = append(conv, anthropic.NewUserMessage(toolResults...))
	}
	return conv, strings.Join(text, "\n"), fmt.Errorf("runner: turn did not finish within %d steps", maxSteps)
}

func (r *Runner) execTool(ctx context.Context, id, name string, input json.RawMessage) anthropic.ContentBlockParamUnion {
	var def *tools.ToolDefinition
	for i := range r.Tools {
		if r.Tools[i].Name == name {
			def = &r.Tools[i]
			break
		}
	}

	turnID, _ := telemetry.TurnIDFromContext(ctx)

	emit := func(durationMs int64, inputSize int, outputSize int, errStr string) {
		fields := map[string]any{
			"tool_name":   name,
			"duration_ms": durationMs,
			"input_size":  inputSize,
			"output_size": outputSize,
			"turn_id":     turnID,
			"error":       nil,
		}
		if errStr != "" {
			fields["error"] = errStr
		}
		telemetry.Emit("tool_exec", fields)
	}

	start := time.Now()
	inSize := len(input)

	if def == nil {
		r.Logger.Warn("model requested unknown tool", "tool", name, "turn_id", turnID)
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool not found")
		return anthropic.NewToolResultBlock(id, "tool not found", true)
	}

	resp, err := def.Function(ctx, input)
	if err != nil {
		r.Logger.Debug("tool failed", "tool", name, "turn_id", turnID, "error", err)
		// Telemetry gets a generic string; the model sees the detailed error.
		emit(time.Since(start).Milliseconds(), inSize, 0, "tool error")
		return anthropic.NewToolResultBlock(id, err.Error(), true)
	}
	emit(time.Since(start).Milliseconds(), inSize, len(resp), "")
	return anthropic.NewToolResultBlock(id, resp, false)
}

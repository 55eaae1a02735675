package memory

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/petasbytes/memory-agent/internal/logger"
	"github.com/petasbytes/memory-agent/internal/telemetry"
)

// Adapter is the memory capability handed to the host runtime.
type Adapter interface {
	// Search recalls memories for userID that are relevant to query.
	Search(ctx context.Context, query, userID string) Response

	// Save stores content as a single user message under userID.
	Save(ctx context.Context, content, userID string) Response
}

// Option configures a Connected adapter.
type Option func(*Connected)

// WithLogger sets the logger used for store faults.
func WithLogger(l *slog.Logger) Option {
	return func(a *Connected) {
		if l != nil {
			a.logger = l
		}
	}
}

// New picks the adapter variant once at startup: Disabled when the store
// failed to initialize, Connected otherwise.
func New(store Store, initErr error, opts ...Option) Adapter {
	if initErr != nil || store == nil {
		return Disabled{}
	}
	return NewConnected(store, opts...)
}

// Connected forwards calls to a live Store.
type Connected struct {
	store  Store
	logger *slog.Logger
}

// NewConnected wraps store. Connected holds no mutable state and is safe for
// concurrent use.
func NewConnected(store Store, opts ...Option) *Connected {
	a := &Connected{store: store, logger: logger.Nop()}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Search runs a user-scoped search and renders hits as a bulleted list.
func (a *Connected) Search(ctx context.Context, query, userID string) (resp Response) {
	start := time.Now()
	var entries []Entry
	defer func() {
		telemetry.EmitMemoryOp(ctx, "search", string(resp.Status), time.Since(start), query, len(entries))
	}()
	defer a.recoverInto(&resp, "search")

	entries, err := a.store.Search(ctx, query, map[string]string{"user_id": userID})
	switch {
	case err != nil:
		a.logger.Warn("memory search failed", "user_id", userID, "error", err)
		return errorResponse(fmt.Sprintf("Failed to search memory: %v", err))
	case len(entries) == 0:
		return Response{Status: StatusNoMemories, Message: msgNoMemories}
	default:
		return Response{Status: StatusSuccess, Memories: formatEntries(entries)}
	}
}

// Save submits content as one user-authored message. Identical calls are
// not deduplicated.
func (a *Connected) Save(ctx context.Context, content, userID string) (resp Response) {
	start := time.Now()
	defer func() {
		telemetry.EmitMemoryOp(ctx, "save", string(resp.Status), time.Since(start), content, 0)
	}()
	defer a.recoverInto(&resp, "save")

	result, err := a.store.Add(ctx, []Message{{Role: "user", Content: content}}, userID)
	if err != nil {
		a.logger.Warn("memory save failed", "user_id", userID, "error", err)
		return errorResponse(fmt.Sprintf("Failed to save memory: %v", err))
	}
	return Response{Status: StatusSuccess, Message: msgSaved, Result: result}
}

// recoverInto turns a panicking store into an error response.
func (a *Connected) recoverInto(resp *Response, op string) {
	r := recover()
	if r == nil {
		return
	}
	a.logger.Error("memory store panicked", "op", op, "panic", r)
	*resp = errorResponse(fmt.Sprintf("Failed to %s memory: %v", op, r))
}

func formatEntries(entries []Entry) string {
	lines := make([]string, len(entries))
	for i, e := range entries {
		lines[i] = "- " + e.Memory
	}
	return strings.Join(lines, "\n")
}

// Disabled answers every call with an error response. It is used when the
// memory client could not be constructed.
type Disabled struct{}

func (Disabled) Search(ctx context.Context, query, _ string) Response {
	telemetry.EmitMemoryOp(ctx, "search", string(StatusError), 0, query, 0)
	return errorResponse(msgNotInitialized)
}

func (Disabled) Save(ctx context.Context, content, _ string) Response {
	telemetry.EmitMemoryOp(ctx, "save", string(StatusError), 0, content, 0)
	return errorResponse(msgNotInitialized)
}

var (
	_ Adapter = (*Connected)(nil)
	_ Adapter = Disabled{}
)

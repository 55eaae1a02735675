package memory

import (
	"context"
	"encoding/json"
)

// Entry is a single search hit. The text is owned by the store.
type Entry struct {
	ID     string `json:"id,omitempty"`
	Memory string `json:"memory"`
}

// Message is a role-tagged chat message submitted to the store.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Store is the external memory service as seen by the adapter.
type Store interface {
	// Search returns entries relevant to query, restricted by filters
	// (e.g. {"user_id": "u1"}). An empty slice means no matches.
	Search(ctx context.Context, query string, filters map[string]string) ([]Entry, error)

	// Add submits messages under userID and returns the store's raw response.
	Add(ctx context.Context, messages []Message, userID string) (json.RawMessage, error)
}

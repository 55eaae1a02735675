package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/petasbytes/memory-agent/memory"
)

type SearchMemoryInput struct {
	Query  string `json:"query" jsonschema_description:"What to look for in past conversations."`
	UserID string `json:"user_id" jsonschema_description:"Identifier of the user whose memories are searched."`
}

type SaveMemoryInput struct {
	Content string `json:"content" jsonschema_description:"The fact or preference to remember."`
	UserID  string `json:"user_id" jsonschema_description:"Identifier of the user the memory belongs to."`
}

const (
	SearchMemoryName = "search_memory"
	SaveMemoryName   = "save_memory"
)

var (
	SearchMemoryInputSchema = GenerateSchema[SearchMemoryInput]()
	SaveMemoryInputSchema   = GenerateSchema[SaveMemoryInput]()
)

// SearchMemoryDefinition binds search_memory to a.
func SearchMemoryDefinition(a memory.Adapter) ToolDefinition {
	return ToolDefinition{
		Name:        SearchMemoryName,
		Description: "Search through past conversations and memories",
		InputSchema: SearchMemoryInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in SearchMemoryInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", fmt.Errorf("search_memory: decode input: %w", err)
			}
			return encode(a.Search(ctx, in.Query, in.UserID))
		},
	}
}

// SaveMemoryDefinition binds save_memory to a.
func SaveMemoryDefinition(a memory.Adapter) ToolDefinition {
	return ToolDefinition{
		Name:        SaveMemoryName,
		Description: "Save important information to memory",
		InputSchema: SaveMemoryInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in SaveMemoryInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", fmt.Errorf("save_memory: decode input: %w", err)
			}
			return encode(a.Save(ctx, in.Content, in.UserID))
		},
	}
}

// encode renders the adapter response as the tool result text.
func encode(r memory.Response) (string, error) {
	b, err := json.Marshal(r)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

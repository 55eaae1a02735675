// Package assistant defines the personal assistant: who it is, how it is
// told to use memory, and which tools it gets.
package assistant

import (
	"fmt"

	"github.com/petasbytes/memory-agent/memory"
	"github.com/petasbytes/memory-agent/tools"
)

const (
	Name        = "personal_assistant"
	Description = "A personal assistant that remembers user preferences and past interactions"

	Instruction = `You are a helpful personal assistant with memory capabilities.
Use the search_memory function to recall past conversations and user preferences.
Use the save_memory function to store important information about the user.
Always personalize your responses based on available memory.`
)

// SystemPrompt returns the instruction with the active user id appended so
// the model can fill the user_id argument of the memory tools.
func SystemPrompt(userID string) string {
	return fmt.Sprintf("%s\n\nThe current user's id is %q. Pass it as user_id to every memory tool call.", Instruction, userID)
}

// Tools returns the memory tools bound to a.
func Tools(a memory.Adapter) []tools.ToolDefinition {
	return tools.Registry(a)
}

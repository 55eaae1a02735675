package tools

import "github.com/petasbytes/memory-agent/memory"

// Registry returns all tool definitions wired for the agent, bound to a.
func Registry(a memory.Adapter) []ToolDefinition {
	return []ToolDefinition{SearchMemoryDefinition(a), SaveMemoryDefinition(a)}
}

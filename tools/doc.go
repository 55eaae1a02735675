// Package tools defines tool contracts and the memory tools offered to the model.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs.
//   - Memory tools: search_memory, save_memory.
//   - Invariants: a handler only errors on undecodable input; memory faults
//     come back as a JSON response with status "error".
package tools

// Package windowing trims chat history to an approximate size budget before
// it is sent to the model.
//
// History is cut on turn boundaries only. A turn starts at a user message
// that carries text, so a tool_use and its tool_result always travel
// together and every window opens with a user message.
package windowing

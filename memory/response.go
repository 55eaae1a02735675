package memory

import "encoding/json"

// Status tags the outcome of an adapter call.
type Status string

const (
	StatusSuccess    Status = "success"
	StatusNoMemories Status = "no_memories"
	StatusError      Status = "error"
)

// Response is the uniform result handed back to the host runtime.
// Memories is set by a successful search; Result by a successful save.
type Response struct {
	Status   Status          `json:"status"`
	Memories string          `json:"memories,omitempty"`
	Message  string          `json:"message,omitempty"`
	Result   json.RawMessage `json:"result,omitempty"`
}

const (
	msgNoMemories     = "No relevant memories found"
	msgSaved          = "Information saved to memory"
	msgNotInitialized = "Memory client not initialized."
)

func errorResponse(msg string) Response {
	return Response{Status: StatusError, Message: msg}
}

// OK reports whether the call reached the store without a fault.
func (r Response) OK() bool {
	return r.Status == StatusSuccess || r.Status == StatusNoMemories
}

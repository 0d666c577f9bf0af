package domain

// ChatRequest is the body of POST /chat.
type ChatRequest struct {
	Message   string `json:"message"`
	SessionID string `json:"session_id,omitempty"`
}

// ChatResponse is the reply of POST /chat.
type ChatResponse struct {
	Response  string `json:"response"`
	SessionID string `json:"session_id"`
	ToolUsed  string `json:"tool_used,omitempty"`
}

// ChatResult is what the agent service hands back to the transport layer.
type ChatResult struct {
	Response  string
	SessionID string
	ToolUsed  string
	Blocked   bool
}

package domain

// Turn roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is a single role-tagged message within a session. Immutable once stored.
type Turn struct {
	Role    string `json:"role"` // user, assistant
	Content string `json:"content"`
}

// SessionSummary describes one live session for the sessions listing.
type SessionSummary struct {
	SessionID    string `json:"session_id"`
	MessageCount int    `json:"message_count"`
	LastMessage  string `json:"last_message"`
}

package doctypes

import "time"

// Role identifies the author of a conversation turn.
type Role string

const (
	// RoleUser marks turns typed (or triggered) by the user.
	RoleUser Role = "user"
	// RoleAssistant marks turns produced by the model, including rendered error notices.
	RoleAssistant Role = "assistant"
)

// Turn represents a single entry in the conversation transcript.
type Turn struct {
	ID        string    `json:"id"`
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
}

// IsUser reports whether the turn was authored by the user.
func (t Turn) IsUser() bool {
	return t.Role == RoleUser
}

// IsAssistant reports whether the turn was authored by the assistant.
func (t Turn) IsAssistant() bool {
	return t.Role == RoleAssistant
}

package domain

import "time"

// Role identifies the author of a conversation turn.
type Role string

// Conversation roles.
const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Turn is a single entry in the session conversation log.
// Turns are append-only and scoped to one interactive session.
type Turn struct {
	Role    Role
	Content string
	At      time.Time
}

package history

import (
	"context"
	"strings"
)

// Role identifies the author of a conversation turn.
type Role string

// The set of roles a stored turn may carry.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// ParseRole normalizes a stored role value. It accepts any casing (older
// writers stored roles uppercased) and reports whether the value is one of
// the known roles.
func ParseRole(s string) (Role, bool) {
	switch Role(strings.ToLower(strings.TrimSpace(s))) {
	case RoleSystem:
		return RoleSystem, true
	case RoleUser:
		return RoleUser, true
	case RoleAssistant:
		return RoleAssistant, true
	case RoleTool:
		return RoleTool, true
	default:
		return Role(s), false
	}
}

// Turn is one message in a conversation.
type Turn struct {
	// ConversationID groups turns into a conversation.
	ConversationID string

	// Sequence orders turns within a conversation. Unique and monotonically
	// increasing in creation order; replay sorts by this value, never by
	// storage arrival order.
	Sequence int

	// Role is the author of the turn.
	Role Role

	// Text is the message content.
	Text string
}

// Store is an append-only log of conversation turns.
type Store interface {
	// Append writes a new turn at the next free sequence number for the
	// conversation and returns the stored turn.
	Append(ctx context.Context, conversationID string, role Role, text string) (Turn, error)

	// Read returns all turns of a conversation sorted ascending by sequence.
	// A conversation with no turns yields an empty slice, not an error.
	Read(ctx context.Context, conversationID string) ([]Turn, error)
}

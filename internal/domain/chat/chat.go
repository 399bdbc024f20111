package chat

import (
	"fmt"
	"strings"
)

// Role is the author of a chat turn.
type Role string

// Role constants.
const (
	User      Role = "user"
	Assistant Role = "assistant"
	System    Role = "system"
)

// Limits on a conversation.
const (
	// HistoryWindow is the number of trailing turns forwarded to the provider.
	HistoryWindow = 10
	MaxTurns      = 200
	MaxTurnSize   = 16384
)

// Turn is a single message in a conversation.
type Turn struct {
	role    Role
	content string
}

// NewTurn validates and creates a Turn.
func NewTurn(role Role, content string) (Turn, error) {
	switch role {
	case User, Assistant, System:
	default:
		return Turn{}, fmt.Errorf("unknown role %q", role)
	}
	if len(content) > MaxTurnSize {
		return Turn{}, fmt.Errorf("message too large (max %d bytes)", MaxTurnSize)
	}
	return Turn{role: role, content: content}, nil
}

// Role returns the turn author.
func (t Turn) Role() Role { return t.role }

// Content returns the turn text.
func (t Turn) Content() string { return t.content }

// Conversation is a validated, non-empty chat history.
type Conversation struct {
	turns []Turn
}

// NewConversation validates the history.
func NewConversation(turns []Turn) (Conversation, error) {
	if len(turns) == 0 {
		return Conversation{}, fmt.Errorf("at least one message is required")
	}
	if len(turns) > MaxTurns {
		return Conversation{}, fmt.Errorf("too many messages (max %d)", MaxTurns)
	}
	cp := make([]Turn, len(turns))
	copy(cp, turns)
	return Conversation{turns: cp}, nil
}

// Turns returns the full history.
func (c Conversation) Turns() []Turn { return c.turns }

// Window returns the last n turns.
func (c Conversation) Window(n int) []Turn {
	if n <= 0 || n >= len(c.turns) {
		return c.turns
	}
	return c.turns[len(c.turns)-n:]
}

// LastUserMessage returns the content of the most recent user turn, or "".
func (c Conversation) LastUserMessage() string {
	for i := len(c.turns) - 1; i >= 0; i-- {
		if c.turns[i].role == User {
			return c.turns[i].content
		}
	}
	return ""
}

// Transcript renders the last n turns as "Role: content" lines.
func (c Conversation) Transcript(n int) string {
	window := c.Window(n)
	lines := make([]string, 0, len(window))
	for _, t := range window {
		lines = append(lines, fmt.Sprintf("%s: %s", titleRole(t.role), t.content))
	}
	return strings.Join(lines, "\n")
}

func titleRole(r Role) string {
	s := string(r)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

package edugen

import "strings"

// Role indicates the author of a message.
type Role string

const (
	// RoleUser indicates the message is from the user.
	RoleUser Role = "user"
	// RoleSystem indicates the message is a system instruction.
	RoleSystem Role = "system"
	// RoleAssistant indicates the message is from the model.
	RoleAssistant Role = "assistant"
)

// Message is a single text message exchanged with a model.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// Text returns the message content with surrounding whitespace removed.
func (m *Message) Text() string {
	if m == nil {
		return ""
	}
	return strings.TrimSpace(m.Content)
}

// String returns a compact "role: content" form, mostly for logs.
func (m *Message) String() string {
	if m == nil {
		return ""
	}
	return string(m.Role) + ": " + m.Content + "\n"
}

// UserMessage creates a user message.
func UserMessage(text string) *Message {
	return &Message{Role: RoleUser, Content: text}
}

// SystemMessage creates a system message.
func SystemMessage(text string) *Message {
	return &Message{Role: RoleSystem, Content: text}
}

// AssistantMessage creates an assistant message.
func AssistantMessage(text string) *Message {
	return &Message{Role: RoleAssistant, Content: text}
}

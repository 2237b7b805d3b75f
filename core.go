package edugen

import "strings"

// Prompt represents a sequence of messages exchanged between a user and an assistant.
type Prompt struct {
	Messages []*Message `json:"messages"`
}

// NewPrompt creates a new Prompt with the given messages.
func NewPrompt(messages ...*Message) *Prompt {
	return &Prompt{
		Messages: messages,
	}
}

// String returns the string representation of the prompt by concatenating all message strings.
func (p *Prompt) String() string {
	var buf strings.Builder
	for _, msg := range p.Messages {
		buf.WriteString(msg.String())
	}
	return buf.String()
}

// Latest returns the last message of the prompt, or nil when it is empty.
func (p *Prompt) Latest() *Message {
	if p == nil || len(p.Messages) == 0 {
		return nil
	}
	return p.Messages[len(p.Messages)-1]
}

// SystemInstruction joins the text of every system message.
func (p *Prompt) SystemInstruction() string {
	var parts []string
	for _, msg := range p.Messages {
		if msg.Role == RoleSystem {
			parts = append(parts, msg.Text())
		}
	}
	return strings.Join(parts, "\n\n")
}

// Conversation returns the non-system messages in order.
func (p *Prompt) Conversation() []*Message {
	out := make([]*Message, 0, len(p.Messages))
	for _, msg := range p.Messages {
		if msg.Role != RoleSystem {
			out = append(out, msg)
		}
	}
	return out
}

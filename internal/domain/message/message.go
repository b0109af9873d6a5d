// Package message holds the chat transcript entries exchanged with the language model.
package message

// Role is the author of a chat message.
type Role string

// Chat roles understood by OpenAI-compatible providers.
const (
	RoleSystem    Role = "system"
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Message is a single transcript entry.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// User creates a user message.
func User(content string) Message { return Message{Role: RoleUser, Content: content} }

// Assistant creates an assistant message.
func Assistant(content string) Message { return Message{Role: RoleAssistant, Content: content} }

// System creates a system message.
func System(content string) Message { return Message{Role: RoleSystem, Content: content} }

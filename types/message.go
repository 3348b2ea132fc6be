// Package types provides core types used across the sast-ai-agent system.
// This package has ZERO dependencies on other packages in this module to
// avoid circular imports. All other packages should import types from here.
package types

import "time"

// Role represents the role of a message participant.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// Message represents a single conversation message. Messages are
// append-ordered within a run; the total order defines conversational
// context. A Message is exclusively owned by the state that contains it
// and is never shared across concurrent runs.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	Name      string    `json:"name,omitempty"`
	Timestamp time.Time `json:"timestamp,omitempty"`
}

// NewMessage creates a new message with the given role and content.
func NewMessage(role Role, content string) Message {
	return Message{
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// NewUserMessage creates a new user message.
func NewUserMessage(content string) Message {
	return NewMessage(RoleUser, content)
}

// NewAssistantMessage creates a new assistant message.
func NewAssistantMessage(content string) Message {
	return NewMessage(RoleAssistant, content)
}

// NewToolMessage creates a new tool result message. Name records which
// tool produced the content.
func NewToolMessage(name, content string) Message {
	return Message{
		Role:      RoleTool,
		Content:   content,
		Name:      name,
		Timestamp: time.Now(),
	}
}

// LastUserMessage returns the content of the last user message in the
// slice, or the last message of any role when no user message exists.
// Returns "" for an empty slice.
func LastUserMessage(messages []Message) string {
	for i := len(messages) - 1; i >= 0; i-- {
		if messages[i].Role == RoleUser {
			return messages[i].Content
		}
	}
	if len(messages) > 0 {
		return messages[len(messages)-1].Content
	}
	return ""
}

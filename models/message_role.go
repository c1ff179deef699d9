package models

import "fmt"

// MessageRole identifies who authored a chat message.
type MessageRole string

const (
	// RoleUser marks messages typed by the human user.
	RoleUser MessageRole = "user"

	// RoleAssistant marks messages produced by the language-model provider.
	RoleAssistant MessageRole = "assistant"

	// RoleSystem marks system prompts injected into provider context.
	RoleSystem MessageRole = "system"
)

// ParseMessageRole converts the stored string form back into a MessageRole.
// Unknown values are an error: a malformed role in the database indicates
// corruption and must not silently default.
func ParseMessageRole(s string) (MessageRole, error) {
	switch MessageRole(s) {
	case RoleUser, RoleAssistant, RoleSystem:
		return MessageRole(s), nil
	default:
		return "", fmt.Errorf("unknown message role: %q", s)
	}
}

// String returns the serialized form written to storage.
func (r MessageRole) String() string {
	return string(r)
}

package models

import "time"

// ChatMessage is one turn of a conversation. Messages are immutable after
// construction: they are persisted once, never updated, and only removed in
// bulk when a user's history is cleared.
type ChatMessage struct {
	// ID is the store-assigned identifier, zero until persisted.
	ID int64 `json:"id"`

	// UserID is the owning user. It is a lookup key, not an enforced
	// ownership pointer.
	UserID int64 `json:"user_id"`

	// Provider names the model backend that produced or received the message.
	Provider string `json:"provider"`

	// Role identifies the message author (user, assistant, or system).
	Role MessageRole `json:"role"`

	// Content is the message text.
	Content string `json:"content"`

	// Timestamp is the creation time, serialized to RFC 3339 in storage.
	Timestamp time.Time `json:"timestamp"`
}

// NewChatMessage builds an unpersisted message timestamped now.
func NewChatMessage(userID int64, provider string, role MessageRole, content string) ChatMessage {
	return ChatMessage{
		ID:        0,
		UserID:    userID,
		Provider:  provider,
		Role:      role,
		Content:   content,
		Timestamp: time.Now(),
	}
}

// TableName returns the name of the database table
// associated with the ChatMessage model.
func (m ChatMessage) TableName() string {
	return "chat_messages"
}

package service

import (
	"context"

	"github.com/avoronov/go-chat-keeper/internal/provider"
	"github.com/avoronov/go-chat-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/service_mock.go -package=mock

// SessionService owns the username-based session lifecycle: resolving a
// username to a stored user and issuing/validating the session token.
type SessionService interface {
	// Open resolves username to its user record, creating one on first
	// contact, and issues a signed session token for it.
	Open(ctx context.Context, username string) (models.User, models.Token, error)

	// Validate checks a compact token string and returns the parsed token
	// with its user id. A failed check is an authentication-kind error.
	Validate(ctx context.Context, tokenString string) (models.Token, error)
}

// ChatService runs one conversational turn against the configured provider.
type ChatService interface {
	// Send persists the user's message, assembles the provider context
	// (system prompt plus recent history), streams the reply through fn,
	// and persists the assistant's message. It returns the stored assistant
	// message.
	Send(ctx context.Context, userID int64, content string, fn provider.StreamFunc) (models.ChatMessage, error)

	// ProviderName reports the active backend identifier.
	ProviderName() string
}

// HistoryService reads and clears a user's stored conversation.
type HistoryService interface {
	// Messages pages through the user's history, most recent first.
	Messages(ctx context.Context, userID int64, limit, offset int) ([]models.ChatMessage, error)

	// Context builds the provider conversation window: the most recent
	// `window` messages reordered oldest to newest.
	Context(ctx context.Context, userID int64, window int) ([]models.ProviderMessage, error)

	// Count reports how many messages the user has stored.
	Count(ctx context.Context, userID int64) (int64, error)

	// Clear deletes the user's history and returns the number removed.
	Clear(ctx context.Context, userID int64) (int64, error)
}

// PromptService resolves the system prompt for a conversation.
type PromptService interface {
	// SystemPrompt returns the prompt for the named variant, falling back
	// to the default prompt when the variant is unknown or empty.
	SystemPrompt(variant string) string
}

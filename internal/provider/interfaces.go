// Package provider adapts external language-model backends behind a single
// streaming interface.
//
// Two implementations ship: an Ollama adapter speaking the local HTTP API
// ([NewOllamaProvider]) and an OpenRouter adapter over the OpenAI-compatible
// API ([NewOpenRouterProvider]). [New] selects one by configured name.
//
// Transport and API failures are wrapped in apperrors.ProviderError so
// callers can branch with apperrors.IsProvider without knowing which
// backend is active.
package provider

import (
	"context"

	"github.com/avoronov/go-chat-keeper/models"
)

//go:generate mockgen -source=interfaces.go -destination=../mock/provider_mock.go -package=mock

// StreamFunc receives one reply fragment at a time, in order. Returning an
// error aborts the stream and fails the surrounding Stream call.
type StreamFunc func(chunk string) error

// Provider is a conversational language-model backend. Implementations are
// stateless: the full conversation context travels in messages on every call.
type Provider interface {
	// Name reports the backend identifier ("ollama", "openrouter").
	Name() string

	// Model reports the configured model identifier.
	Model() string

	// Stream sends the conversation and delivers the reply incrementally
	// through fn. It returns the complete assembled reply text.
	Stream(ctx context.Context, messages []models.ProviderMessage, fn StreamFunc) (string, error)

	// Complete sends the conversation and returns the full reply in one
	// piece.
	Complete(ctx context.Context, messages []models.ProviderMessage) (string, error)
}

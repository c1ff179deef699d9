package provider

import (
	"fmt"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
)

// New selects a [Provider] implementation by cfg.Name. An empty name
// defaults to Ollama; an unrecognized one is a provider-kind error.
func New(cfg config.Provider, log *logger.Logger) (Provider, error) {
	switch cfg.Name {
	case NameOllama, "":
		return NewOllamaProvider(cfg.Ollama, log), nil
	case NameOpenRouter:
		return NewOpenRouterProvider(cfg.OpenRouter, log), nil
	default:
		return nil, apperrors.NewProviderError(cfg.Name, fmt.Errorf("unknown provider: %q", cfg.Name))
	}
}

package service

import (
	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/internal/provider"
	"github.com/avoronov/go-chat-keeper/internal/store"
)

// Services aggregates the use-case layer behind one constructor.
type Services struct {
	Session SessionService
	Chat    ChatService
	History HistoryService
	Prompts PromptService
}

// NewServices wires all services over the shared repositories and the
// active provider backend.
func NewServices(repos *store.Repositories, cfg *config.StructuredConfig, p provider.Provider, log *logger.Logger) *Services {
	history := NewHistoryService(repos.Messages, log)
	prompts := NewPromptService(cfg.Prompts, log)

	return &Services{
		Session: NewSessionService(repos.Users, cfg.App, log),
		Chat:    NewChatService(repos.Messages, history, prompts, p, log),
		History: history,
		Prompts: prompts,
	}
}

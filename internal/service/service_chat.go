package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/internal/provider"
	"github.com/avoronov/go-chat-keeper/internal/store"
	"github.com/avoronov/go-chat-keeper/models"
)

// historyWindow bounds how many stored messages travel to the provider as
// conversation context on each turn.
const historyWindow = 20

// chatService is the concrete implementation of ChatService. One Send call
// is one conversational turn: the user's message and the assistant's reply
// are both persisted, in that order, under the active provider's name.
type chatService struct {
	messageRepository store.MessageRepository
	history           HistoryService
	prompts           PromptService
	provider          provider.Provider
	logger            *logger.Logger
}

// NewChatService constructs a ChatService over the given repository,
// history and prompt services, and provider backend.
func NewChatService(
	messageRepository store.MessageRepository,
	history HistoryService,
	prompts PromptService,
	p provider.Provider,
	log *logger.Logger,
) ChatService {
	return &chatService{
		messageRepository: messageRepository,
		history:           history,
		prompts:           prompts,
		provider:          p,
		logger:            log,
	}
}

// ProviderName reports the active backend identifier.
func (s *chatService) ProviderName() string {
	return s.provider.Name()
}

// Send runs one conversational turn:
//  1. persist the user's message
//  2. assemble provider context: system prompt, then the recent history
//     window oldest to newest (which already includes the message from
//     step 1)
//  3. stream the provider's reply through fn
//  4. persist the assistant's reply and return it
//
// The user's message stays persisted even when the provider fails, so a
// retry does not lose typed input. Returns ErrEmptyMessage for blank input.
func (s *chatService) Send(ctx context.Context, userID int64, content string, fn provider.StreamFunc) (models.ChatMessage, error) {
	log := logger.FromContext(ctx)

	if strings.TrimSpace(content) == "" {
		return models.ChatMessage{}, ErrEmptyMessage
	}

	userMsg := models.NewChatMessage(userID, s.provider.Name(), models.RoleUser, content)
	if _, err := s.messageRepository.Save(ctx, userMsg); err != nil {
		log.Err(err).Int64("user_id", userID).Msg("persisting user message failed")
		return models.ChatMessage{}, fmt.Errorf("persisting user message failed: %w", err)
	}

	conversation, err := s.history.Context(ctx, userID, historyWindow)
	if err != nil {
		return models.ChatMessage{}, err
	}

	messages := make([]models.ProviderMessage, 0, len(conversation)+1)
	if prompt := s.prompts.SystemPrompt(""); prompt != "" {
		messages = append(messages, models.ProviderMessage{Role: models.RoleSystem, Content: prompt})
	}
	messages = append(messages, conversation...)

	started := time.Now()
	reply, err := s.provider.Stream(ctx, messages, fn)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Str("provider", s.provider.Name()).Msg("provider call failed")
		return models.ChatMessage{}, err
	}
	log.Debug().
		Int64("user_id", userID).
		Dur("duration", time.Since(started)).
		Int("reply_len", len(reply)).
		Msg("provider reply received")

	assistantMsg, err := s.messageRepository.Save(ctx,
		models.NewChatMessage(userID, s.provider.Name(), models.RoleAssistant, reply))
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("persisting assistant message failed")
		return models.ChatMessage{}, fmt.Errorf("persisting assistant message failed: %w", err)
	}

	return assistantMsg, nil
}

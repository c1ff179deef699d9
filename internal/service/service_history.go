package service

import (
	"context"
	"fmt"

	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/internal/store"
	"github.com/avoronov/go-chat-keeper/models"
)

// historyService is the concrete implementation of HistoryService.
type historyService struct {
	messageRepository store.MessageRepository
	logger            *logger.Logger
}

// NewHistoryService constructs a HistoryService over the given
// MessageRepository.
func NewHistoryService(messageRepository store.MessageRepository, log *logger.Logger) HistoryService {
	return &historyService{
		messageRepository: messageRepository,
		logger:            log,
	}
}

// Messages pages through the user's stored history, most recent first.
func (s *historyService) Messages(ctx context.Context, userID int64, limit, offset int) ([]models.ChatMessage, error) {
	messages, err := s.messageRepository.FindByUserID(ctx, userID, limit, offset)
	if err != nil {
		logger.FromContext(ctx).Err(err).Int64("user_id", userID).Msg("history read failed")
		return nil, fmt.Errorf("history read failed: %w", err)
	}
	return messages, nil
}

// Context builds the provider conversation window. The repository returns
// the most recent `window` messages newest first; providers expect them
// oldest first, so the slice is reversed while converting.
func (s *historyService) Context(ctx context.Context, userID int64, window int) ([]models.ProviderMessage, error) {
	recent, err := s.messageRepository.FindByUserID(ctx, userID, window, 0)
	if err != nil {
		logger.FromContext(ctx).Err(err).Int64("user_id", userID).Msg("context read failed")
		return nil, fmt.Errorf("context read failed: %w", err)
	}

	converted := make([]models.ProviderMessage, 0, len(recent))
	for i := len(recent) - 1; i >= 0; i-- {
		converted = append(converted, models.ProviderMessage{
			Role:    recent[i].Role,
			Content: recent[i].Content,
		})
	}
	return converted, nil
}

// Count reports how many messages the user has stored.
func (s *historyService) Count(ctx context.Context, userID int64) (int64, error) {
	count, err := s.messageRepository.CountByUserID(ctx, userID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Int64("user_id", userID).Msg("history count failed")
		return 0, fmt.Errorf("history count failed: %w", err)
	}
	return count, nil
}

// Clear deletes the user's whole history and returns the number removed.
func (s *historyService) Clear(ctx context.Context, userID int64) (int64, error) {
	log := logger.FromContext(ctx)

	removed, err := s.messageRepository.DeleteByUserID(ctx, userID)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("history clear failed")
		return 0, fmt.Errorf("history clear failed: %w", err)
	}

	log.Info().Int64("user_id", userID).Int64("removed", removed).Msg("history cleared")
	return removed, nil
}

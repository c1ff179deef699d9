package service

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/internal/mock"
	"github.com/avoronov/go-chat-keeper/internal/provider"
	"github.com/avoronov/go-chat-keeper/internal/store"
	"github.com/avoronov/go-chat-keeper/models"
)

// newChatFixture wires a ChatService over the in-memory message repository
// and a gomock provider, so turn ordering can be asserted end to end.
func newChatFixture(t *testing.T, prompts config.Prompts) (ChatService, *store.MemoryMessageRepository, *mock.MockProvider) {
	t.Helper()

	ctrl := gomock.NewController(t)
	mockProvider := mock.NewMockProvider(ctrl)
	mockProvider.EXPECT().Name().Return("ollama").AnyTimes()

	messages := store.NewMemoryMessageRepository()
	history := NewHistoryService(messages, logger.Nop())
	svc := NewChatService(messages, history, NewPromptService(prompts, logger.Nop()), mockProvider, logger.Nop())

	return svc, messages, mockProvider
}

func TestChatService_Send(t *testing.T) {
	ctx := context.Background()

	t.Run("persists both turns and streams the reply", func(t *testing.T) {
		svc, messages, mockProvider := newChatFixture(t, config.Prompts{System: "Be brief."})

		mockProvider.EXPECT().
			Stream(ctx, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msgs []models.ProviderMessage, fn provider.StreamFunc) (string, error) {
				// system prompt first, then the just-persisted user message
				require.Len(t, msgs, 2)
				assert.Equal(t, models.RoleSystem, msgs[0].Role)
				assert.Equal(t, "Be brief.", msgs[0].Content)
				assert.Equal(t, models.RoleUser, msgs[1].Role)
				assert.Equal(t, "hello", msgs[1].Content)

				require.NoError(t, fn("Hi "))
				require.NoError(t, fn("there!"))
				return "Hi there!", nil
			})

		var streamed string
		reply, err := svc.Send(ctx, 1, "hello", func(chunk string) error {
			streamed += chunk
			return nil
		})
		require.NoError(t, err)
		assert.Equal(t, models.RoleAssistant, reply.Role)
		assert.Equal(t, "Hi there!", reply.Content)
		assert.Equal(t, "ollama", reply.Provider)
		assert.Equal(t, "Hi there!", streamed)

		count, err := messages.CountByUserID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})

	t.Run("no system message when prompt is empty", func(t *testing.T) {
		svc, _, mockProvider := newChatFixture(t, config.Prompts{})

		mockProvider.EXPECT().
			Stream(ctx, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msgs []models.ProviderMessage, _ provider.StreamFunc) (string, error) {
				require.Len(t, msgs, 1)
				assert.Equal(t, models.RoleUser, msgs[0].Role)
				return "ok", nil
			})

		_, err := svc.Send(ctx, 1, "hello", nil)
		require.NoError(t, err)
	})

	t.Run("carries prior history oldest to newest", func(t *testing.T) {
		svc, _, mockProvider := newChatFixture(t, config.Prompts{})

		mockProvider.EXPECT().Stream(ctx, gomock.Any(), gomock.Any()).Return("first reply", nil)
		_, err := svc.Send(ctx, 1, "first question", nil)
		require.NoError(t, err)

		mockProvider.EXPECT().
			Stream(ctx, gomock.Any(), gomock.Any()).
			DoAndReturn(func(_ context.Context, msgs []models.ProviderMessage, _ provider.StreamFunc) (string, error) {
				require.Len(t, msgs, 3)
				assert.Equal(t, "first question", msgs[0].Content)
				assert.Equal(t, "first reply", msgs[1].Content)
				assert.Equal(t, "second question", msgs[2].Content)
				return "second reply", nil
			})
		_, err = svc.Send(ctx, 1, "second question", nil)
		require.NoError(t, err)
	})

	t.Run("rejects blank input", func(t *testing.T) {
		svc, messages, _ := newChatFixture(t, config.Prompts{})

		_, err := svc.Send(ctx, 1, "   ", nil)
		assert.ErrorIs(t, err, ErrEmptyMessage)

		count, err := messages.CountByUserID(ctx, 1)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("keeps the user message when the provider fails", func(t *testing.T) {
		svc, messages, mockProvider := newChatFixture(t, config.Prompts{})

		mockProvider.EXPECT().
			Stream(ctx, gomock.Any(), gomock.Any()).
			Return("", apperrors.NewProviderError("ollama", errors.New("connection refused")))

		_, err := svc.Send(ctx, 1, "hello", nil)
		require.Error(t, err)
		assert.True(t, apperrors.IsProvider(err))

		count, err := messages.CountByUserID(ctx, 1)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count, "user message survives a provider failure")
	})
}

func TestChatService_ProviderName(t *testing.T) {
	svc, _, _ := newChatFixture(t, config.Prompts{})
	assert.Equal(t, "ollama", svc.ProviderName())
}

package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/internal/mock"
	"github.com/avoronov/go-chat-keeper/models"
)

var testAppCfg = config.App{
	TokenSignKey:  "test-sign-key",
	TokenIssuer:   "chat-keeper-test",
	TokenDuration: time.Hour,
}

func TestSessionService_Open(t *testing.T) {
	ctx := context.Background()

	t.Run("resolves the user and issues a token", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockUsers := mock.NewMockUserRepository(ctrl)
		mockUsers.EXPECT().GetOrCreate(ctx, "Alice").
			Return(models.User{ID: 7, Username: "alice"}, nil)

		svc := NewSessionService(mockUsers, testAppCfg, logger.Nop())

		user, token, err := svc.Open(ctx, "Alice")
		require.NoError(t, err)
		assert.Equal(t, int64(7), user.ID)
		assert.NotEmpty(t, token.SignedString)
		assert.Equal(t, int64(7), token.UserID)

		// issued token passes this service's own validation
		parsed, err := svc.Validate(ctx, token.SignedString)
		require.NoError(t, err)
		assert.Equal(t, int64(7), parsed.UserID)
	})

	t.Run("rejects blank username without touching storage", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockUsers := mock.NewMockUserRepository(ctrl)

		svc := NewSessionService(mockUsers, testAppCfg, logger.Nop())

		for _, username := range []string{"", "   ", "\t"} {
			_, _, err := svc.Open(ctx, username)
			assert.ErrorIs(t, err, ErrEmptyUsername, "username %q", username)
			assert.ErrorIs(t, err, apperrors.ErrValidation)
		}
	})

	t.Run("propagates repository failure", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		mockUsers := mock.NewMockUserRepository(ctrl)
		mockUsers.EXPECT().GetOrCreate(ctx, "alice").
			Return(models.User{}, apperrors.NewStorageError("insert", errors.New("disk full")))

		svc := NewSessionService(mockUsers, testAppCfg, logger.Nop())

		_, _, err := svc.Open(ctx, "alice")
		require.Error(t, err)
		assert.True(t, apperrors.IsStorage(err))
	})
}

func TestSessionService_Validate(t *testing.T) {
	ctx := context.Background()
	ctrl := gomock.NewController(t)
	svc := NewSessionService(mock.NewMockUserRepository(ctrl), testAppCfg, logger.Nop())

	t.Run("garbage token is an authentication error", func(t *testing.T) {
		_, err := svc.Validate(ctx, "not.a.token")
		require.Error(t, err)
		assert.ErrorIs(t, err, ErrInvalidToken)
		assert.True(t, apperrors.IsAuthentication(err))
	})

	t.Run("token signed with another key is rejected", func(t *testing.T) {
		otherCfg := testAppCfg
		otherCfg.TokenSignKey = "other-key"
		other := NewSessionService(mock.NewMockUserRepository(ctrl), otherCfg, logger.Nop())

		_, token, err := func() (models.User, models.Token, error) {
			mockUsers := mock.NewMockUserRepository(ctrl)
			mockUsers.EXPECT().GetOrCreate(ctx, "bob").Return(models.User{ID: 1, Username: "bob"}, nil)
			return NewSessionService(mockUsers, testAppCfg, logger.Nop()).Open(ctx, "bob")
		}()
		require.NoError(t, err)

		_, err = other.Validate(ctx, token.SignedString)
		assert.ErrorIs(t, err, ErrInvalidToken)
	})
}

package store

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/models"
)

func seedUser(t *testing.T, db *DB, username string) models.User {
	t.Helper()

	user, err := NewUserRepository(db, logger.Nop()).Save(context.Background(), models.NewUser(username))
	require.NoError(t, err)
	return user
}

func seedMessages(t *testing.T, repo MessageRepository, userID int64, n int) []models.ChatMessage {
	t.Helper()

	base := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	saved := make([]models.ChatMessage, 0, n)
	for i := 0; i < n; i++ {
		role := models.RoleUser
		if i%2 == 1 {
			role = models.RoleAssistant
		}
		msg := models.ChatMessage{
			UserID:    userID,
			Provider:  "ollama",
			Role:      role,
			Content:   fmt.Sprintf("message %d", i),
			Timestamp: base.Add(time.Duration(i) * time.Minute),
		}
		stored, err := repo.Save(context.Background(), msg)
		require.NoError(t, err)
		saved = append(saved, stored)
	}
	return saved
}

func TestMessageRepository_SaveAndFind(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMessageRepository(db, logger.Nop())
	user := seedUser(t, db, "alice")

	stamp := time.Date(2026, 3, 14, 9, 26, 53, 589793000, time.UTC)
	saved, err := repo.Save(ctx, models.ChatMessage{
		UserID:    user.ID,
		Provider:  "openrouter",
		Role:      models.RoleAssistant,
		Content:   "hello there",
		Timestamp: stamp,
	})
	require.NoError(t, err)
	assert.Positive(t, saved.ID)

	found, err := repo.FindByID(ctx, saved.ID)
	require.NoError(t, err)
	require.NotNil(t, found)
	assert.Equal(t, user.ID, found.UserID)
	assert.Equal(t, "openrouter", found.Provider)
	assert.Equal(t, models.RoleAssistant, found.Role)
	assert.Equal(t, "hello there", found.Content)
	assert.True(t, stamp.Equal(found.Timestamp), "timestamp must round-trip exactly")

	missing, err := repo.FindByID(ctx, 404)
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestMessageRepository_FindByUserID(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMessageRepository(db, logger.Nop())
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	seedMessages(t, repo, alice.ID, 5)
	seedMessages(t, repo, bob.ID, 2)

	t.Run("most recent first", func(t *testing.T) {
		page, err := repo.FindByUserID(ctx, alice.ID, 10, 0)
		require.NoError(t, err)
		require.Len(t, page, 5)
		assert.Equal(t, "message 4", page[0].Content)
		assert.Equal(t, "message 0", page[4].Content)
		for i := 1; i < len(page); i++ {
			assert.False(t, page[i].Timestamp.After(page[i-1].Timestamp))
		}
	})

	t.Run("limit and offset page the history", func(t *testing.T) {
		page, err := repo.FindByUserID(ctx, alice.ID, 2, 0)
		require.NoError(t, err)
		require.Len(t, page, 2)
		assert.Equal(t, "message 4", page[0].Content)
		assert.Equal(t, "message 3", page[1].Content)

		page, err = repo.FindByUserID(ctx, alice.ID, 2, 4)
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "message 0", page[0].Content)
	})

	t.Run("scoped to the requested user", func(t *testing.T) {
		page, err := repo.FindByUserID(ctx, bob.ID, 10, 0)
		require.NoError(t, err)
		assert.Len(t, page, 2)
	})

	t.Run("empty history is empty, not an error", func(t *testing.T) {
		page, err := repo.FindByUserID(ctx, 404, 10, 0)
		require.NoError(t, err)
		assert.Empty(t, page)
	})
}

func TestMessageRepository_CountAndDelete(t *testing.T) {
	ctx := context.Background()
	db := newTestDB(t)
	repo := NewMessageRepository(db, logger.Nop())
	alice := seedUser(t, db, "alice")
	bob := seedUser(t, db, "bob")

	seedMessages(t, repo, alice.ID, 3)
	seedMessages(t, repo, bob.ID, 1)

	count, err := repo.CountByUserID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), count)

	removed, err := repo.DeleteByUserID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(3), removed)

	count, err = repo.CountByUserID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, count)

	// other users' history untouched
	count, err = repo.CountByUserID(ctx, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	removed, err = repo.DeleteByUserID(ctx, alice.ID)
	require.NoError(t, err)
	assert.Zero(t, removed)
}

package store

import (
	"context"

	sq "github.com/Masterminds/squirrel"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/models"
)

// messageRepository is the SQL-backed implementation of [MessageRepository].
type messageRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewMessageRepository constructs a [MessageRepository] backed by the
// provided connection manager and logger.
func NewMessageRepository(db *DB, log *logger.Logger) MessageRepository {
	log.Debug().Msg("creating message repository")
	return &messageRepository{
		db:     db,
		logger: log,
	}
}

// Save persists the message once and returns a copy with the assigned id.
// Messages are immutable after this point.
func (r *messageRepository) Save(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error) {
	log := logger.FromContext(ctx)

	id, err := r.db.InsertReturningID(ctx, insertMessage,
		[]any{
			message.UserID,
			message.Provider,
			message.Role.String(),
			message.Content,
			message.Timestamp.Format(timestampLayout),
		},
		"", // no unique constraints on chat_messages
	)
	if err != nil {
		log.Err(err).Int64("user_id", message.UserID).Msg("error saving message")
		return models.ChatMessage{}, err
	}

	message.ID = id
	return message, nil
}

// FindByID retrieves a message by id, (nil, nil) when absent.
func (r *messageRepository) FindByID(ctx context.Context, id int64) (*models.ChatMessage, error) {
	row, err := r.db.FetchOne(ctx, findMessageByID, id)
	if err != nil {
		logger.FromContext(ctx).Err(err).Int64("id", id).Msg("error finding message by id")
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	return r.rowToMessage(row)
}

// FindByUserID pages through a user's history ordered by timestamp
// descending, most recent first. The query is built with squirrel so the
// placeholder dialect follows the active driver.
func (r *messageRepository) FindByUserID(ctx context.Context, userID int64, limit, offset int) ([]models.ChatMessage, error) {
	log := logger.FromContext(ctx)

	query, args, err := sq.
		Select("id", "user_id", "provider", "role", "content", "timestamp").
		From("chat_messages").
		Where(sq.Eq{"user_id": userID}).
		OrderBy("timestamp DESC").
		Limit(uint64(limit)).
		Offset(uint64(offset)).
		PlaceholderFormat(r.db.placeholderFormat()).
		ToSql()
	if err != nil {
		return nil, apperrors.NewStorageError("build history query", err)
	}

	conn, err := r.db.Conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, query, args...)
	if err != nil {
		log.Err(err).Int64("user_id", userID).Msg("error fetching message history")
		return nil, apperrors.NewStorageError("fetch message history", err)
	}
	defer rows.Close()

	var messages []models.ChatMessage
	for rows.Next() {
		var (
			msg          models.ChatMessage
			role         string
			timestampRaw string
		)
		if err = rows.Scan(&msg.ID, &msg.UserID, &msg.Provider, &role, &msg.Content, &timestampRaw); err != nil {
			return nil, apperrors.NewStorageError("scan message row", err)
		}

		if msg.Role, err = models.ParseMessageRole(role); err != nil {
			return nil, apperrors.NewStorageError("map message row", err)
		}
		if msg.Timestamp, err = parseTimestamp(timestampRaw); err != nil {
			return nil, apperrors.NewStorageError("map message row", err)
		}
		messages = append(messages, msg)
	}
	if err = rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("fetch message history", err)
	}

	return messages, nil
}

// DeleteByUserID removes all of a user's messages, returning the count.
// The delete runs in its own explicitly committed transaction so a cleared
// history is durable before the caller sees the result.
func (r *messageRepository) DeleteByUserID(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecuteCommit(ctx, deleteMessagesByUserID, userID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Int64("user_id", userID).Msg("error deleting messages")
		return 0, err
	}

	removed, err := res.RowsAffected()
	if err != nil {
		return 0, apperrors.NewStorageError("delete messages", err)
	}
	return removed, nil
}

// CountByUserID counts a user's stored messages.
func (r *messageRepository) CountByUserID(ctx context.Context, userID int64) (int64, error) {
	row, err := r.db.FetchOne(ctx, countMessagesByUserID, userID)
	if err != nil {
		logger.FromContext(ctx).Err(err).Int64("user_id", userID).Msg("error counting messages")
		return 0, err
	}
	if row == nil {
		return 0, nil
	}

	count, err := rowInt64(row, "count")
	if err != nil {
		return 0, apperrors.NewStorageError("map count row", err)
	}
	return count, nil
}

func (r *messageRepository) rowToMessage(row map[string]any) (*models.ChatMessage, error) {
	id, err := rowInt64(row, "id")
	if err != nil {
		return nil, apperrors.NewStorageError("map message row", err)
	}
	userID, err := rowInt64(row, "user_id")
	if err != nil {
		return nil, apperrors.NewStorageError("map message row", err)
	}
	provider, err := rowString(row, "provider")
	if err != nil {
		return nil, apperrors.NewStorageError("map message row", err)
	}
	roleRaw, err := rowString(row, "role")
	if err != nil {
		return nil, apperrors.NewStorageError("map message row", err)
	}
	role, err := models.ParseMessageRole(roleRaw)
	if err != nil {
		return nil, apperrors.NewStorageError("map message row", err)
	}
	content, err := rowString(row, "content")
	if err != nil {
		return nil, apperrors.NewStorageError("map message row", err)
	}
	timestamp, err := rowTime(row, "timestamp")
	if err != nil {
		return nil, apperrors.NewStorageError("map message row", err)
	}

	return &models.ChatMessage{
		ID:        id,
		UserID:    userID,
		Provider:  provider,
		Role:      role,
		Content:   content,
		Timestamp: timestamp,
	}, nil
}

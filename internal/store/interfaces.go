package store

import (
	"context"

	"github.com/avoronov/go-chat-keeper/models"
)

// UserRepository is the data-access contract for user accounts. Variant
// implementations (SQL-backed, in-memory) must satisfy identical semantics,
// including case-insensitive username uniqueness.
//
// Find methods return (nil, nil) when nothing matches: absence is a normal
// result, never an error.
type UserRepository interface {
	// Save inserts the user (username lowercased) and returns a copy with
	// the store-assigned id. A duplicate username is a repository-kind error.
	Save(ctx context.Context, user models.User) (models.User, error)

	// FindByID looks up a single user by id.
	FindByID(ctx context.Context, id int64) (*models.User, error)

	// FindByUsername looks up by username, case-insensitively.
	FindByUsername(ctx context.Context, username string) (*models.User, error)

	// GetOrCreate returns the existing user for username or persists a new
	// one. The check-then-act race against a concurrent duplicate insert is
	// resolved internally by one retry lookup.
	GetOrCreate(ctx context.Context, username string) (models.User, error)

	// Delete removes the user by id and reports whether a row was removed.
	Delete(ctx context.Context, id int64) (bool, error)
}

// MessageRepository is the data-access contract for chat messages.
// History reads are ordered by timestamp descending (most recent first).
type MessageRepository interface {
	// Save inserts the message and returns a copy with the assigned id.
	Save(ctx context.Context, message models.ChatMessage) (models.ChatMessage, error)

	// FindByID looks up a single message by id.
	FindByID(ctx context.Context, id int64) (*models.ChatMessage, error)

	// FindByUserID pages through a user's history, most recent first.
	FindByUserID(ctx context.Context, userID int64, limit, offset int) ([]models.ChatMessage, error)

	// DeleteByUserID bulk-deletes a user's messages and returns the count
	// removed.
	DeleteByUserID(ctx context.Context, userID int64) (int64, error)

	// CountByUserID counts a user's messages.
	CountByUserID(ctx context.Context, userID int64) (int64, error)
}

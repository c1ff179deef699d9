package store

import (
	"github.com/avoronov/go-chat-keeper/internal/logger"
)

// Repositories bundles all data-access objects sharing one connection
// manager, so callers wire storage as a single unit.
type Repositories struct {
	Users    UserRepository
	Messages MessageRepository
}

// NewRepositories builds the SQL-backed repository set on top of db.
func NewRepositories(db *DB, log *logger.Logger) *Repositories {
	return &Repositories{
		Users:    NewUserRepository(db, log),
		Messages: NewMessageRepository(db, log),
	}
}

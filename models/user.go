package models

import (
	"strings"
	"time"
)

// User represents an application account identified by username.
// Users are value objects at the domain level: repository methods return
// fresh copies rather than mutating the receiver, so two goroutines never
// share a user instance implicitly.
type User struct {
	// ID is the store-assigned identifier. Zero means the user has not been
	// persisted yet.
	ID int64 `json:"id"`

	// Username is unique case-insensitively; the repository stores the
	// lowercased form. The original casing supplied at creation is kept here.
	Username string `json:"username"`

	// CreatedAt is the creation timestamp, set once.
	CreatedAt time.Time `json:"created_at"`

	// UpdatedAt is refreshed by WithUpdatedTimestamp.
	UpdatedAt time.Time `json:"updated_at"`
}

// NewUser builds an unpersisted user with both timestamps set to now.
func NewUser(username string) User {
	now := time.Now()
	return User{
		ID:        0,
		Username:  username,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// NormalizedUsername returns the lowercase username used for lookups and
// uniqueness checks.
func (u User) NormalizedUsername() string {
	return strings.ToLower(u.Username)
}

// WithUpdatedTimestamp returns a copy of the user with UpdatedAt set to now.
// The receiver is left untouched.
func (u User) WithUpdatedTimestamp() User {
	u.UpdatedAt = time.Now()
	return u
}

// TableName returns the name of the database table
// associated with the User model.
func (u User) TableName() string {
	return "users"
}

package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
	"github.com/avoronov/go-chat-keeper/models"
)

// In-memory repository variants. They back tests and ephemeral sessions
// where no database file should be created, and hold the same contract as
// the SQL implementations: case-insensitive username uniqueness, absence
// as (nil, nil), history ordered most recent first.

// MemoryUserRepository keeps users in a map guarded by a mutex.
type MemoryUserRepository struct {
	mu     sync.Mutex
	nextID int64
	users  map[int64]models.User
}

// NewMemoryUserRepository returns an empty in-memory user repository.
func NewMemoryUserRepository() *MemoryUserRepository {
	return &MemoryUserRepository{
		nextID: 1,
		users:  make(map[int64]models.User),
	}
}

func (r *MemoryUserRepository) Save(_ context.Context, user models.User) (models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := user.NormalizedUsername()
	for _, existing := range r.users {
		if existing.Username == normalized {
			return models.User{}, apperrors.NewRepositoryError(
				fmt.Sprintf("user already exists: %s", user.Username), nil)
		}
	}

	user.ID = r.nextID
	user.Username = normalized
	r.nextID++
	r.users[user.ID] = user
	return user, nil
}

func (r *MemoryUserRepository) FindByID(_ context.Context, id int64) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *MemoryUserRepository) FindByUsername(_ context.Context, username string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	normalized := models.User{Username: username}.NormalizedUsername()
	for _, user := range r.users {
		if user.Username == normalized {
			u := user
			return &u, nil
		}
	}
	return nil, nil
}

func (r *MemoryUserRepository) GetOrCreate(ctx context.Context, username string) (models.User, error) {
	existing, err := r.FindByUsername(ctx, username)
	if err != nil {
		return models.User{}, err
	}
	if existing != nil {
		return *existing, nil
	}
	return r.Save(ctx, models.NewUser(username))
}

func (r *MemoryUserRepository) Delete(_ context.Context, id int64) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.users[id]; !ok {
		return false, nil
	}
	delete(r.users, id)
	return true, nil
}

// MemoryMessageRepository keeps chat messages in a slice guarded by a mutex.
type MemoryMessageRepository struct {
	mu       sync.Mutex
	nextID   int64
	messages []models.ChatMessage
}

// NewMemoryMessageRepository returns an empty in-memory message repository.
func NewMemoryMessageRepository() *MemoryMessageRepository {
	return &MemoryMessageRepository{nextID: 1}
}

func (r *MemoryMessageRepository) Save(_ context.Context, message models.ChatMessage) (models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	message.ID = r.nextID
	r.nextID++
	r.messages = append(r.messages, message)
	return message, nil
}

func (r *MemoryMessageRepository) FindByID(_ context.Context, id int64) (*models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, msg := range r.messages {
		if msg.ID == id {
			m := msg
			return &m, nil
		}
	}
	return nil, nil
}

func (r *MemoryMessageRepository) FindByUserID(_ context.Context, userID int64, limit, offset int) ([]models.ChatMessage, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var matched []models.ChatMessage
	for _, msg := range r.messages {
		if msg.UserID == userID {
			matched = append(matched, msg)
		}
	}
	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].Timestamp.After(matched[j].Timestamp)
	})

	if offset >= len(matched) {
		return nil, nil
	}
	matched = matched[offset:]
	if limit < len(matched) {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *MemoryMessageRepository) DeleteByUserID(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var (
		kept    []models.ChatMessage
		removed int64
	)
	for _, msg := range r.messages {
		if msg.UserID == userID {
			removed++
			continue
		}
		kept = append(kept, msg)
	}
	r.messages = kept
	return removed, nil
}

func (r *MemoryMessageRepository) CountByUserID(_ context.Context, userID int64) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var count int64
	for _, msg := range r.messages {
		if msg.UserID == userID {
			count++
		}
	}
	return count, nil
}

package store

import (
	"context"
	"fmt"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
	"github.com/avoronov/go-chat-keeper/internal/logger"
	"github.com/avoronov/go-chat-keeper/models"
)

// userRepository is the SQL-backed implementation of [UserRepository].
// It holds a non-owning reference to the connection manager and funnels
// every statement through the DB primitives, so no raw driver error crosses
// this boundary.
type userRepository struct {
	db     *DB
	logger *logger.Logger
}

// NewUserRepository constructs a [UserRepository] backed by the provided
// connection manager and logger.
func NewUserRepository(db *DB, log *logger.Logger) UserRepository {
	log.Debug().Msg("creating user repository")
	return &userRepository{
		db:     db,
		logger: log,
	}
}

// Save persists a new user record with the username lowercased and returns
// a copy carrying the store-assigned id. A duplicate username (checked
// case-insensitively by construction, since only the lowercase form is
// stored) surfaces as a repository-kind error.
func (r *userRepository) Save(ctx context.Context, user models.User) (models.User, error) {
	log := logger.FromContext(ctx)

	id, err := r.db.InsertReturningID(ctx, insertUser,
		[]any{
			user.NormalizedUsername(),
			user.CreatedAt.Format(timestampLayout),
			user.UpdatedAt.Format(timestampLayout),
		},
		fmt.Sprintf("user already exists: %s", user.Username),
	)
	if err != nil {
		log.Err(err).Str("username", user.Username).Msg("error saving user")
		return models.User{}, err
	}

	user.ID = id
	return user, nil
}

// FindByID retrieves a user by id, (nil, nil) when absent.
func (r *userRepository) FindByID(ctx context.Context, id int64) (*models.User, error) {
	row, err := r.db.FetchOne(ctx, findUserByID, id)
	if err != nil {
		logger.FromContext(ctx).Err(err).Int64("id", id).Msg("error finding user by id")
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	return r.rowToUser(row)
}

// FindByUsername retrieves a user by username. The input is lowercased
// before comparison, so the lookup is case-insensitive regardless of
// database collation.
func (r *userRepository) FindByUsername(ctx context.Context, username string) (*models.User, error) {
	normalized := models.User{Username: username}.NormalizedUsername()

	row, err := r.db.FetchOne(ctx, findUserByUsername, normalized)
	if err != nil {
		logger.FromContext(ctx).Err(err).Str("username", username).Msg("error finding user by username")
		return nil, err
	}
	if row == nil {
		return nil, nil
	}

	return r.rowToUser(row)
}

// GetOrCreate looks the username up and persists a fresh user when absent.
// A concurrent duplicate insert between the lookup and the save shows up as
// a repository-kind error from Save; it is resolved here by one retry
// lookup, so two racing callers both end up with the same stored user.
func (r *userRepository) GetOrCreate(ctx context.Context, username string) (models.User, error) {
	existing, err := r.FindByUsername(ctx, username)
	if err != nil {
		return models.User{}, err
	}
	if existing != nil {
		return *existing, nil
	}

	created, err := r.Save(ctx, models.NewUser(username))
	if err == nil {
		return created, nil
	}
	if !apperrors.IsRepository(err) {
		return models.User{}, err
	}

	// lost the insert race, the winner's row must exist now
	winner, findErr := r.FindByUsername(ctx, username)
	if findErr != nil {
		return models.User{}, findErr
	}
	if winner == nil {
		return models.User{}, err
	}
	return *winner, nil
}

// Delete removes the user by id, reporting whether a row was removed.
func (r *userRepository) Delete(ctx context.Context, id int64) (bool, error) {
	res, err := r.db.Execute(ctx, deleteUserByID, id)
	if err != nil {
		logger.FromContext(ctx).Err(err).Int64("id", id).Msg("error deleting user")
		return false, err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return false, apperrors.NewStorageError("delete user", err)
	}
	return affected > 0, nil
}

func (r *userRepository) rowToUser(row map[string]any) (*models.User, error) {
	id, err := rowInt64(row, "id")
	if err != nil {
		return nil, apperrors.NewStorageError("map user row", err)
	}
	username, err := rowString(row, "username")
	if err != nil {
		return nil, apperrors.NewStorageError("map user row", err)
	}
	createdAt, err := rowTime(row, "created_at")
	if err != nil {
		return nil, apperrors.NewStorageError("map user row", err)
	}
	updatedAt, err := rowTime(row, "updated_at")
	if err != nil {
		return nil, apperrors.NewStorageError("map user row", err)
	}

	return &models.User{
		ID:        id,
		Username:  username,
		CreatedAt: createdAt,
		UpdatedAt: updatedAt,
	}, nil
}

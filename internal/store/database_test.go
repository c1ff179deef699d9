package store

import (
	"context"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
)

// testStorageConfig points the sqlite backend at a fresh temp directory,
// with the real shipped migrations applied on Init.
func testStorageConfig(t *testing.T) config.Storage {
	t.Helper()
	return config.Storage{
		DB: config.DB{
			Driver: config.DriverSQLite,
			DSN:    filepath.Join(t.TempDir(), "test.db"),
		},
		Migrations: config.Migrations{
			Dir: filepath.Join("..", "..", "migrations"),
		},
	}
}

func newTestDB(t *testing.T) *DB {
	t.Helper()

	db := NewDB(testStorageConfig(t), logger.Nop())
	require.NoError(t, db.Init(context.Background()))
	t.Cleanup(func() { _ = db.Close() })

	return db
}

func TestDB_Lifecycle(t *testing.T) {
	ctx := context.Background()

	t.Run("Conn before Init fails", func(t *testing.T) {
		db := NewDB(testStorageConfig(t), logger.Nop())

		conn, err := db.Conn()
		assert.Nil(t, conn)
		assert.ErrorIs(t, err, ErrNotInitialized)
		assert.True(t, apperrors.IsStorage(err))
	})

	t.Run("Init opens and migrates", func(t *testing.T) {
		db := newTestDB(t)

		conn, err := db.Conn()
		require.NoError(t, err)
		require.NotNil(t, conn)

		history, err := db.History(ctx)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, "001_create_users", history[0].MigrationID)
		assert.Equal(t, "002_create_chat_messages", history[1].MigrationID)
		assert.Equal(t, "003_create_message_indexes", history[2].MigrationID)
	})

	t.Run("repeated Init is a no-op", func(t *testing.T) {
		db := newTestDB(t)

		first, err := db.Conn()
		require.NoError(t, err)

		require.NoError(t, db.Init(ctx))
		second, err := db.Conn()
		require.NoError(t, err)
		assert.Same(t, first, second)
	})

	t.Run("concurrent Init settles on one connection", func(t *testing.T) {
		db := NewDB(testStorageConfig(t), logger.Nop())
		t.Cleanup(func() { _ = db.Close() })

		var wg sync.WaitGroup
		errs := make([]error, 8)
		for i := range errs {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = db.Init(ctx)
			}(i)
		}
		wg.Wait()

		for _, err := range errs {
			require.NoError(t, err)
		}

		history, err := db.History(ctx)
		require.NoError(t, err)
		assert.Len(t, history, 3)
	})

	t.Run("Close then Conn fails, re-Init recovers", func(t *testing.T) {
		db := newTestDB(t)

		require.NoError(t, db.Close())

		_, err := db.Conn()
		assert.ErrorIs(t, err, ErrNotInitialized)

		// queries refuse to run on a closed manager
		_, err = db.FetchAll(ctx, "SELECT id FROM users")
		assert.ErrorIs(t, err, ErrNotInitialized)

		require.NoError(t, db.Init(ctx))
		_, err = db.Conn()
		assert.NoError(t, err)
	})

	t.Run("Close on unopened manager is a no-op", func(t *testing.T) {
		db := NewDB(testStorageConfig(t), logger.Nop())
		assert.NoError(t, db.Close())
	})
}

func TestDB_QueryHelpers(t *testing.T) {
	ctx := context.Background()

	t.Run("FetchOne returns nil on no match", func(t *testing.T) {
		db := newTestDB(t)

		row, err := db.FetchOne(ctx, "SELECT id FROM users WHERE id = ?", int64(404))
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("InsertReturningID hands back the row id", func(t *testing.T) {
		db := newTestDB(t)

		id, err := db.InsertReturningID(ctx, insertUser,
			[]any{"bob", "2026-01-02T15:04:05Z", "2026-01-02T15:04:05Z"}, "user already exists: bob")
		require.NoError(t, err)
		assert.Equal(t, int64(1), id)

		id, err = db.InsertReturningID(ctx, insertUser,
			[]any{"carol", "2026-01-02T15:04:05Z", "2026-01-02T15:04:05Z"}, "user already exists: carol")
		require.NoError(t, err)
		assert.Equal(t, int64(2), id)
	})

	t.Run("unique violation maps to a repository error", func(t *testing.T) {
		db := newTestDB(t)

		_, err := db.InsertReturningID(ctx, insertUser,
			[]any{"bob", "2026-01-02T15:04:05Z", "2026-01-02T15:04:05Z"}, "user already exists: bob")
		require.NoError(t, err)

		_, err = db.InsertReturningID(ctx, insertUser,
			[]any{"bob", "2026-01-02T15:04:05Z", "2026-01-02T15:04:05Z"}, "user already exists: bob")
		require.Error(t, err)
		assert.True(t, apperrors.IsRepository(err))
		assert.False(t, apperrors.IsStorage(err))
		assert.Contains(t, err.Error(), "user already exists: bob")
	})

	t.Run("ExecuteCommit applies and commits the statement", func(t *testing.T) {
		db := newTestDB(t)

		_, err := db.InsertReturningID(ctx, insertUser,
			[]any{"bob", "2026-01-02T15:04:05Z", "2026-01-02T15:04:05Z"}, "")
		require.NoError(t, err)

		res, err := db.ExecuteCommit(ctx, "DELETE FROM users WHERE username = ?", "bob")
		require.NoError(t, err)
		removed, err := res.RowsAffected()
		require.NoError(t, err)
		assert.Equal(t, int64(1), removed)

		row, err := db.FetchOne(ctx, findUserByUsername, "bob")
		require.NoError(t, err)
		assert.Nil(t, row)
	})

	t.Run("FetchAll materializes rows as column maps", func(t *testing.T) {
		db := newTestDB(t)

		_, err := db.InsertReturningID(ctx, insertUser,
			[]any{"bob", "2026-01-02T15:04:05Z", "2026-01-02T15:04:05Z"}, "")
		require.NoError(t, err)

		rows, err := db.FetchAll(ctx, "SELECT id, username FROM users")
		require.NoError(t, err)
		require.Len(t, rows, 1)
		assert.Contains(t, rows[0], "id")
		assert.Contains(t, rows[0], "username")
	})
}

func TestDB_Rebind(t *testing.T) {
	sqliteDB := &DB{cfg: config.Storage{DB: config.DB{Driver: config.DriverSQLite}}}
	assert.Equal(t, "SELECT * FROM users WHERE id = ?", sqliteDB.rebind("SELECT * FROM users WHERE id = ?"))

	postgresDB := &DB{cfg: config.Storage{DB: config.DB{Driver: config.DriverPostgres}}}
	assert.Equal(t,
		"INSERT INTO users (username) VALUES ($1)",
		postgresDB.rebind("INSERT INTO users (username) VALUES (?)"))
	assert.Equal(t,
		"SELECT * FROM users WHERE id = $1 AND username = $2",
		postgresDB.rebind("SELECT * FROM users WHERE id = ? AND username = ?"))
}

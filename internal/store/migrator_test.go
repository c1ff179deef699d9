package store

import (
	"context"
	"database/sql"
	"os"
	"path/filepath"
	"testing"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
)

func openTestSQLite(t *testing.T) *sql.DB {
	t.Helper()

	conn, err := sql.Open("sqlite3", filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	conn.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = conn.Close() })

	return conn
}

func writeMigration(t *testing.T, dir, name, script string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(script), 0o644))
}

func TestMigrator_Migrate(t *testing.T) {
	ctx := context.Background()

	t.Run("applies files in lexical order", func(t *testing.T) {
		conn := openTestSQLite(t)
		dir := t.TempDir()

		// written out of order on purpose
		writeMigration(t, dir, "002_add_column.sql", `ALTER TABLE items ADD COLUMN name TEXT;`)
		writeMigration(t, dir, "001_create_items.sql", `CREATE TABLE items (id INTEGER PRIMARY KEY);`)
		writeMigration(t, dir, "003_add_index.sql", `CREATE INDEX idx_items_name ON items (name);`)

		m := NewMigrator(conn, config.DriverSQLite, dir, logger.Nop())
		require.NoError(t, m.Migrate(ctx))

		history, err := m.History(ctx)
		require.NoError(t, err)
		require.Len(t, history, 3)
		assert.Equal(t, "001_create_items", history[0].MigrationID)
		assert.Equal(t, "002_add_column", history[1].MigrationID)
		assert.Equal(t, "003_add_index", history[2].MigrationID)
		assert.False(t, history[0].AppliedAt.IsZero())
	})

	t.Run("is idempotent across reruns", func(t *testing.T) {
		conn := openTestSQLite(t)
		dir := t.TempDir()
		writeMigration(t, dir, "001_create_items.sql", `CREATE TABLE items (id INTEGER PRIMARY KEY);`)

		m := NewMigrator(conn, config.DriverSQLite, dir, logger.Nop())
		require.NoError(t, m.Migrate(ctx))
		require.NoError(t, m.Migrate(ctx))
		require.NoError(t, m.Migrate(ctx))

		history, err := m.History(ctx)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})

	t.Run("picks up files added between runs", func(t *testing.T) {
		conn := openTestSQLite(t)
		dir := t.TempDir()
		writeMigration(t, dir, "001_create_items.sql", `CREATE TABLE items (id INTEGER PRIMARY KEY);`)

		m := NewMigrator(conn, config.DriverSQLite, dir, logger.Nop())
		require.NoError(t, m.Migrate(ctx))

		writeMigration(t, dir, "002_add_column.sql", `ALTER TABLE items ADD COLUMN name TEXT;`)
		require.NoError(t, m.Migrate(ctx))

		history, err := m.History(ctx)
		require.NoError(t, err)
		require.Len(t, history, 2)
		assert.Equal(t, "002_add_column", history[1].MigrationID)
	})

	t.Run("stops at the first failing file", func(t *testing.T) {
		conn := openTestSQLite(t)
		dir := t.TempDir()
		writeMigration(t, dir, "001_create_items.sql", `CREATE TABLE items (id INTEGER PRIMARY KEY);`)
		writeMigration(t, dir, "002_broken.sql", `THIS IS NOT SQL;`)
		writeMigration(t, dir, "003_never_reached.sql", `CREATE TABLE unreachable (id INTEGER);`)

		m := NewMigrator(conn, config.DriverSQLite, dir, logger.Nop())
		err := m.Migrate(ctx)
		require.Error(t, err)
		assert.True(t, apperrors.IsStorage(err))
		assert.Contains(t, err.Error(), "002_broken")

		// only the file before the failure is recorded
		history, histErr := m.History(ctx)
		require.NoError(t, histErr)
		require.Len(t, history, 1)
		assert.Equal(t, "001_create_items", history[0].MigrationID)

		// the failing file left no schema behind
		var name string
		scanErr := conn.QueryRow(
			`SELECT name FROM sqlite_master WHERE type='table' AND name='unreachable'`).Scan(&name)
		assert.ErrorIs(t, scanErr, sql.ErrNoRows)
	})

	t.Run("recovers after a failing file is fixed", func(t *testing.T) {
		conn := openTestSQLite(t)
		dir := t.TempDir()
		writeMigration(t, dir, "001_create_items.sql", `CREATE TABLE items (id INTEGER PRIMARY KEY);`)
		writeMigration(t, dir, "002_broken.sql", `THIS IS NOT SQL;`)

		m := NewMigrator(conn, config.DriverSQLite, dir, logger.Nop())
		require.Error(t, m.Migrate(ctx))

		writeMigration(t, dir, "002_broken.sql", `ALTER TABLE items ADD COLUMN name TEXT;`)
		require.NoError(t, m.Migrate(ctx))

		history, err := m.History(ctx)
		require.NoError(t, err)
		require.Len(t, history, 2)
	})

	t.Run("tolerates a missing migrations directory", func(t *testing.T) {
		conn := openTestSQLite(t)

		m := NewMigrator(conn, config.DriverSQLite, filepath.Join(t.TempDir(), "does-not-exist"), logger.Nop())
		require.NoError(t, m.Migrate(ctx))

		history, err := m.History(ctx)
		require.NoError(t, err)
		assert.Empty(t, history)
	})

	t.Run("ignores non-sql files and subdirectories", func(t *testing.T) {
		conn := openTestSQLite(t)
		dir := t.TempDir()
		writeMigration(t, dir, "001_create_items.sql", `CREATE TABLE items (id INTEGER PRIMARY KEY);`)
		writeMigration(t, dir, "README.md", `notes`)
		require.NoError(t, os.Mkdir(filepath.Join(dir, "archive"), 0o755))

		m := NewMigrator(conn, config.DriverSQLite, dir, logger.Nop())
		require.NoError(t, m.Migrate(ctx))

		history, err := m.History(ctx)
		require.NoError(t, err)
		assert.Len(t, history, 1)
	})
}

func TestMigrationID(t *testing.T) {
	assert.Equal(t, "001_create_users", migrationID("migrations/001_create_users.sql"))
	assert.Equal(t, "001_create_users", migrationID("001_create_users.sql"))
}

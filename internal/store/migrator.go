package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
)

const migrationsTable = "schema_migrations"

// MigrationRecord is one applied migration as tracked in the bookkeeping
// table. Records are created exactly once per migration file, only by the
// Migrator, and are never updated or deleted afterwards.
type MigrationRecord struct {
	// ID is the insertion-ordered bookkeeping row id.
	ID int64

	// MigrationID is the migration file's base name without extension,
	// unique across the table.
	MigrationID string

	// AppliedAt is the time the migration was committed.
	AppliedAt time.Time
}

// Migrator brings a schema up to the latest known state: it discovers
// ordered *.sql files in a directory, tracks applied ones in the
// schema_migrations table, applies pending ones transactionally in lexical
// filename order, and reports history.
//
// The Migrator borrows the connection for the duration of one Migrate or
// History call and does not own it.
type Migrator struct {
	db     *sql.DB
	driver string
	dir    string
	logger *logger.Logger
}

// NewMigrator constructs a Migrator over the given connection. driver is the
// configured backend name (config.DriverSQLite or config.DriverPostgres) and
// controls only the bookkeeping DDL and placeholder dialect; dir is the
// migration-source directory.
func NewMigrator(db *sql.DB, driver, dir string, log *logger.Logger) *Migrator {
	return &Migrator{
		db:     db,
		driver: driver,
		dir:    dir,
		logger: log,
	}
}

// Migrate applies all pending migrations, each one at most once, in lexical
// filename order. Any failure while applying a file is fatal: no bookkeeping
// row is written for the failing file and no later file is attempted.
// Rerunning Migrate after fixing a bad file is the recovery path, since
// already-applied migrations are skipped.
func (m *Migrator) Migrate(ctx context.Context) error {
	if err := m.ensureMigrationsTable(ctx); err != nil {
		return err
	}

	applied, err := m.appliedMigrations(ctx)
	if err != nil {
		return err
	}

	pending, err := m.pendingMigrations(applied)
	if err != nil {
		return err
	}

	for _, file := range pending {
		if err := m.applyMigration(ctx, file); err != nil {
			return err
		}
		m.logger.Info().Str("migration", migrationID(file)).Msg("applied migration")
	}

	return nil
}

// History returns all applied migrations ordered by insertion id ascending.
func (m *Migrator) History(ctx context.Context) ([]MigrationRecord, error) {
	query := fmt.Sprintf(
		"SELECT id, migration_id, applied_at FROM %s ORDER BY id ASC", migrationsTable)

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewStorageError("migration history", err)
	}
	defer rows.Close()

	var records []MigrationRecord
	for rows.Next() {
		var rec MigrationRecord
		if err := rows.Scan(&rec.ID, &rec.MigrationID, &rec.AppliedAt); err != nil {
			return nil, apperrors.NewStorageError("migration history scan", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("migration history", err)
	}

	return records, nil
}

// ensureMigrationsTable creates the bookkeeping table if it does not exist.
// The unique constraint on migration_id protects against double-apply races
// when two processes run Migrate at the same time by accident.
func (m *Migrator) ensureMigrationsTable(ctx context.Context) error {
	var ddl string
	if m.driver == config.DriverPostgres {
		ddl = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id BIGSERIAL PRIMARY KEY,
			migration_id TEXT UNIQUE NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, migrationsTable)
	} else {
		ddl = fmt.Sprintf(`CREATE TABLE IF NOT EXISTS %s (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			migration_id TEXT UNIQUE NOT NULL,
			applied_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, migrationsTable)
	}

	if _, err := m.db.ExecContext(ctx, ddl); err != nil {
		return apperrors.NewStorageError("create migrations table", err)
	}

	return nil
}

func (m *Migrator) appliedMigrations(ctx context.Context) (map[string]bool, error) {
	query := fmt.Sprintf("SELECT migration_id FROM %s", migrationsTable)

	rows, err := m.db.QueryContext(ctx, query)
	if err != nil {
		return nil, apperrors.NewStorageError("read applied migrations", err)
	}
	defer rows.Close()

	applied := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, apperrors.NewStorageError("scan applied migration", err)
		}
		applied[id] = true
	}
	if err := rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("read applied migrations", err)
	}

	return applied, nil
}

// pendingMigrations lists *.sql files in the source directory that are not
// yet applied, sorted by filename. Lexical order is the total order of
// application, so files must be named with zero-padded numeric prefixes.
// A missing directory means zero pending migrations, not an error.
func (m *Migrator) pendingMigrations(applied map[string]bool) ([]string, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, apperrors.NewStorageError("read migrations directory", err)
	}

	var pending []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".sql") {
			continue
		}
		if applied[migrationID(entry.Name())] {
			continue
		}
		pending = append(pending, filepath.Join(m.dir, entry.Name()))
	}

	sort.Strings(pending)

	return pending, nil
}

// applyMigration runs one migration file as a single unit: the script and
// its bookkeeping row commit together or not at all.
func (m *Migrator) applyMigration(ctx context.Context, file string) error {
	id := migrationID(file)

	script, err := os.ReadFile(file)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("apply migration %s", id), err)
	}

	tx, err := m.db.BeginTx(ctx, nil)
	if err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("apply migration %s", id), err)
	}

	if _, err = tx.ExecContext(ctx, string(script)); err != nil {
		_ = tx.Rollback()
		return apperrors.NewStorageError(fmt.Sprintf("apply migration %s", id), err)
	}

	insert := fmt.Sprintf("INSERT INTO %s (migration_id) VALUES (?)", migrationsTable)
	if m.driver == config.DriverPostgres {
		insert = fmt.Sprintf("INSERT INTO %s (migration_id) VALUES ($1)", migrationsTable)
	}
	if _, err = tx.ExecContext(ctx, insert, id); err != nil {
		_ = tx.Rollback()
		return apperrors.NewStorageError(fmt.Sprintf("record migration %s", id), err)
	}

	if err = tx.Commit(); err != nil {
		return apperrors.NewStorageError(fmt.Sprintf("commit migration %s", id), err)
	}

	return nil
}

// migrationID derives the unique migration identifier from a file path:
// the base name without its extension.
func migrationID(file string) string {
	base := filepath.Base(file)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

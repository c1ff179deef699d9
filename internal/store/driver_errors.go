package store

import (
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"
	sqlite3 "github.com/mattn/go-sqlite3"
)

// IntegrityClassifier inspects a driver-level error and reports whether it
// represents a uniqueness/integrity constraint violation. Repositories use
// it to decide between a caller-visible RepositoryError (duplicate key) and
// an infrastructural StorageError (everything else).
type IntegrityClassifier interface {
	IsUniqueViolation(err error) bool
}

// SQLiteErrorClassifier implements [IntegrityClassifier] for the
// mattn/go-sqlite3 driver.
type SQLiteErrorClassifier struct{}

// NewSQLiteErrorClassifier constructs a classifier for sqlite errors.
func NewSQLiteErrorClassifier() *SQLiteErrorClassifier {
	return &SQLiteErrorClassifier{}
}

// IsUniqueViolation reports whether err carries a sqlite constraint code.
// Both the generic ErrConstraint class and the extended unique/primary-key
// codes are matched, since the driver reports either depending on version.
func (c *SQLiteErrorClassifier) IsUniqueViolation(err error) bool {
	var sqliteErr sqlite3.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}

	if sqliteErr.Code == sqlite3.ErrConstraint {
		return true
	}

	switch sqliteErr.ExtendedCode {
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return true
	}

	return false
}

// PostgresErrorClassifier implements [IntegrityClassifier] for the pgx
// driver by inspecting the PostgreSQL error code.
// See https://www.postgresql.org/docs/current/errcodes-appendix.html.
type PostgresErrorClassifier struct{}

// NewPostgresErrorClassifier constructs a classifier for postgres errors.
func NewPostgresErrorClassifier() *PostgresErrorClassifier {
	return &PostgresErrorClassifier{}
}

// IsUniqueViolation reports whether err is a class-23 unique violation
// (code 23505).
func (c *PostgresErrorClassifier) IsUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}

	return pgErr.Code == pgerrcode.UniqueViolation
}

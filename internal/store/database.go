package store

import (
	"context"
	"database/sql"
	"errors"
	"sync"

	sq "github.com/Masterminds/squirrel"

	"github.com/avoronov/go-chat-keeper/internal/apperrors"
	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
)

// ErrNotInitialized is returned by [DB.Conn] and the query helpers when
// Init was never called (or Close was called since). It wraps the storage
// kind, so apperrors.IsStorage matches it.
var ErrNotInitialized = apperrors.NewStorageError(
	"connection access", errors.New("database connection not initialized, call Init first"))

// DB is the single point of truth for the live database connection. It owns
// the physical *sql.DB exclusively; repositories hold a non-owning *DB and
// never close it.
//
// Structural state transitions (open, close) are serialized by one mutex.
// Statement execution is not additionally serialized: the sqlite backend is
// constrained to one open connection so the pool itself queues statements,
// and postgres serializes writers internally.
//
// Init must be called explicitly before any query helper; there is no
// auto-init-on-first-use path.
type DB struct {
	cfg    config.Storage
	logger *logger.Logger

	mu         sync.Mutex
	conn       *sql.DB
	classifier IntegrityClassifier
}

// NewDB constructs an unopened DB for the configured storage backend.
// No connection is made until Init.
func NewDB(cfg config.Storage, log *logger.Logger) *DB {
	return &DB{
		cfg:    cfg,
		logger: log,
	}
}

// Init lazily opens the connection and runs pending migrations, exactly
// once. Concurrent callers racing to initialize block on the mutex and
// observe a single physical open plus a single migration run; later calls
// are no-ops until Close.
func (db *DB) Init(ctx context.Context) error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.conn != nil {
		return nil
	}

	var (
		conn       *sql.DB
		classifier IntegrityClassifier
		err        error
	)

	switch db.cfg.DB.Driver {
	case config.DriverPostgres:
		conn, err = openPostgres(ctx, db.cfg.DB, db.logger)
		classifier = NewPostgresErrorClassifier()
	default:
		conn, err = openSQLite(ctx, db.cfg.DB, db.logger)
		classifier = NewSQLiteErrorClassifier()
	}
	if err != nil {
		db.logger.Err(err).Str("driver", db.cfg.DB.Driver).Msg("database open failed")
		return apperrors.NewStorageError("database init", err)
	}

	migrator := NewMigrator(conn, db.cfg.DB.Driver, db.cfg.Migrations.Dir, db.logger)
	if err = migrator.Migrate(ctx); err != nil {
		_ = conn.Close()
		db.logger.Err(err).Msg("database migration failed")
		return err
	}

	db.conn = conn
	db.classifier = classifier
	db.logger.Info().Str("driver", db.cfg.DB.Driver).Msg("database initialized and migrated")

	return nil
}

// Conn returns the live connection, or [ErrNotInitialized] if Init was
// never called.
func (db *DB) Conn() (*sql.DB, error) {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.conn == nil {
		return nil, ErrNotInitialized
	}
	return db.conn, nil
}

// Close closes the connection if open and clears the reference. A
// subsequent Init is legal and required before further use.
func (db *DB) Close() error {
	db.mu.Lock()
	defer db.mu.Unlock()

	if db.conn == nil {
		return nil
	}

	err := db.conn.Close()
	db.conn = nil
	db.classifier = nil
	if err != nil {
		return apperrors.NewStorageError("database close", err)
	}

	return nil
}

// History reports applied migrations through the engine bound to the live
// connection, insertion order ascending.
func (db *DB) History(ctx context.Context) ([]MigrationRecord, error) {
	conn, err := db.Conn()
	if err != nil {
		return nil, err
	}

	migrator := NewMigrator(conn, db.cfg.DB.Driver, db.cfg.Migrations.Dir, db.logger)
	return migrator.History(ctx)
}

// Execute runs one parameterized statement. Queries are written with `?`
// placeholders and rebound for the postgres dialect.
func (db *DB) Execute(ctx context.Context, query string, args ...any) (sql.Result, error) {
	conn, err := db.Conn()
	if err != nil {
		return nil, err
	}

	res, err := conn.ExecContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, apperrors.NewStorageError("execute", err)
	}
	return res, nil
}

// ExecuteCommit runs one parameterized statement inside its own transaction
// with an explicit commit. Use it for statements whose effect must be fully
// durable before the call returns, such as bulk deletes.
func (db *DB) ExecuteCommit(ctx context.Context, query string, args ...any) (sql.Result, error) {
	conn, err := db.Conn()
	if err != nil {
		return nil, err
	}

	tx, err := conn.BeginTx(ctx, nil)
	if err != nil {
		return nil, apperrors.NewStorageError("begin transaction", err)
	}

	res, err := tx.ExecContext(ctx, db.rebind(query), args...)
	if err != nil {
		_ = tx.Rollback()
		return nil, apperrors.NewStorageError("execute", err)
	}

	if err = tx.Commit(); err != nil {
		return nil, apperrors.NewStorageError("commit", err)
	}
	return res, nil
}

// FetchAll materializes all result rows as column-name→value maps, so
// callers are insulated from column order.
func (db *DB) FetchAll(ctx context.Context, query string, args ...any) ([]map[string]any, error) {
	conn, err := db.Conn()
	if err != nil {
		return nil, err
	}

	rows, err := conn.QueryContext(ctx, db.rebind(query), args...)
	if err != nil {
		return nil, apperrors.NewStorageError("fetch", err)
	}
	defer rows.Close()

	columns, err := rows.Columns()
	if err != nil {
		return nil, apperrors.NewStorageError("fetch columns", err)
	}

	var result []map[string]any
	for rows.Next() {
		values := make([]any, len(columns))
		pointers := make([]any, len(columns))
		for i := range values {
			pointers[i] = &values[i]
		}

		if err = rows.Scan(pointers...); err != nil {
			return nil, apperrors.NewStorageError("fetch scan", err)
		}

		row := make(map[string]any, len(columns))
		for i, col := range columns {
			row[col] = values[i]
		}
		result = append(result, row)
	}
	if err = rows.Err(); err != nil {
		return nil, apperrors.NewStorageError("fetch", err)
	}

	return result, nil
}

// FetchOne returns the first result row as a column-name→value map, or nil
// when the query matches nothing. Absence is a normal return, never an error.
func (db *DB) FetchOne(ctx context.Context, query string, args ...any) (map[string]any, error) {
	rows, err := db.FetchAll(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	if len(rows) == 0 {
		return nil, nil
	}
	return rows[0], nil
}

// InsertReturningID runs an INSERT and returns the store-assigned row id.
// A uniqueness/integrity violation is reported as a RepositoryError carrying
// integrityMsg; any other driver fault becomes a StorageError.
func (db *DB) InsertReturningID(ctx context.Context, query string, args []any, integrityMsg string) (int64, error) {
	conn, err := db.Conn()
	if err != nil {
		return 0, err
	}

	if db.cfg.DB.Driver == config.DriverPostgres {
		var id int64
		row := conn.QueryRowContext(ctx, db.rebind(query)+" RETURNING id", args...)
		if err = row.Scan(&id); err != nil {
			return 0, db.insertError(err, integrityMsg)
		}
		return id, nil
	}

	res, err := conn.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, db.insertError(err, integrityMsg)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return 0, apperrors.NewStorageError("insert id", err)
	}
	return id, nil
}

func (db *DB) insertError(err error, integrityMsg string) error {
	if db.classifier != nil && db.classifier.IsUniqueViolation(err) && integrityMsg != "" {
		return apperrors.NewRepositoryError(integrityMsg, err)
	}
	return apperrors.NewStorageError("insert", err)
}

// rebind translates `?` placeholders to the dialect of the active driver.
func (db *DB) rebind(query string) string {
	if db.cfg.DB.Driver != config.DriverPostgres {
		return query
	}

	bound, err := sq.Dollar.ReplacePlaceholders(query)
	if err != nil {
		// ReplacePlaceholders only fails on malformed escape sequences,
		// which would already be a bug in a query constant.
		return query
	}
	return bound
}

// placeholderFormat exposes the squirrel placeholder dialect for builders
// constructing dynamic queries against this connection.
func (db *DB) placeholderFormat() sq.PlaceholderFormat {
	if db.cfg.DB.Driver == config.DriverPostgres {
		return sq.Dollar
	}
	return sq.Question
}

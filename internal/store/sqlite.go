package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/mattn/go-sqlite3"

	"github.com/avoronov/go-chat-keeper/internal/config"
	"github.com/avoronov/go-chat-keeper/internal/logger"
)

// openSQLite opens the single-file sqlite backend, creating the database
// file (and its directory) if absent. The pool is pinned to one open
// connection so at most one physical statement runs at a time; the driver
// queues the rest.
func openSQLite(ctx context.Context, cfg config.DB, log *logger.Logger) (*sql.DB, error) {
	dsn := cfg.DSN
	if dsn == "" {
		dsn = config.DefaultDatabasePath
	}

	if dsn != ":memory:" {
		if err := createDBFileIfNotExists(dsn); err != nil {
			log.Err(err).Str("path", dsn).Msg("error creating database file")
			return nil, fmt.Errorf("error creating database file: %w", err)
		}
	}

	conn, err := sql.Open("sqlite3", dsn)
	if err != nil {
		log.Err(err).Msg("error opening sqlite database")
		return nil, fmt.Errorf("error opening connection to DB: %w", err)
	}

	conn.SetMaxOpenConns(1)

	if err = conn.PingContext(ctx); err != nil {
		log.Err(err).Msg("error connecting database (ping)")
		return nil, err
	}
	log.Debug().Str("path", dsn).Msg("connected to sqlite database")

	return conn, nil
}

func createDBFileIfNotExists(dbFile string) error {
	if _, err := os.Stat(dbFile); !os.IsNotExist(err) {
		return nil
	}

	dir := filepath.Dir(dbFile)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("error creating DB directory: %w", err)
		}
	}

	f, err := os.Create(dbFile)
	if err != nil {
		return fmt.Errorf("error creating DB file: %w", err)
	}
	return f.Close()
}

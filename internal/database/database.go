// Package database manages the SQLite connection and schema for idxwatch.
package database

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"sort"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // SQLite driver

	"github.com/jonesrussell/idxwatch/internal/config"
	"github.com/jonesrussell/idxwatch/internal/logger"
)

//go:embed migrations
var migrationsFS embed.FS

const pingTimeout = 5 * time.Second

type DB struct {
	db     *sqlx.DB
	logger logger.Logger
}

// New opens the SQLite database, applies migrations, and verifies the
// connection.
func New(cfg *config.Config, log logger.Logger) (*DB, error) {
	dsn := fmt.Sprintf(
		"file:%s?_busy_timeout=5000&_journal_mode=WAL&_foreign_keys=on",
		cfg.Database.Path,
	)

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// SQLite handles one writer at a time; a single connection avoids
	// SQLITE_BUSY between the scheduler cycle and the command handlers.
	db.SetMaxOpenConns(1)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if pingErr := db.PingContext(ctx); pingErr != nil {
		return nil, fmt.Errorf("ping database: %w", pingErr)
	}

	if migrateErr := runMigrations(ctx, db); migrateErr != nil {
		return nil, fmt.Errorf("run migrations: %w", migrateErr)
	}

	log.Info("Database ready",
		logger.String("path", cfg.Database.Path),
	)

	return &DB{
		db:     db,
		logger: log,
	}, nil
}

func runMigrations(ctx context.Context, db *sqlx.DB) error {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	if err != nil {
		return fmt.Errorf("read migrations dir: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, e.Name())
	}
	sort.Strings(names)

	for _, name := range names {
		sqlBytes, readErr := migrationsFS.ReadFile("migrations/" + name)
		if readErr != nil {
			return fmt.Errorf("read migration %s: %w", name, readErr)
		}
		if _, execErr := db.ExecContext(ctx, string(sqlBytes)); execErr != nil {
			return fmt.Errorf("execute migration %s: %w", name, execErr)
		}
	}
	return nil
}

func (d *DB) Close() error {
	if d.db != nil {
		return d.db.Close()
	}
	return nil
}

func (d *DB) DB() *sqlx.DB {
	return d.db
}

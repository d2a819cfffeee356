package sqlitedb

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/jrazmi/yata/schema"
)

// Migrate applies pending schema/sqlitemigrations/*.sql files in name order,
// tracking them in schema_migrations with a checksum. Forward only.
func Migrate(ctx context.Context, log *slog.Logger, db *DB) error {
	if err := StatusCheck(ctx, db); err != nil {
		return fmt.Errorf("status check database: %w", err)
	}

	log.InfoContext(ctx, "running database migrations", "driver", "sqlite", "path", db.path)

	const createTable = `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version TEXT PRIMARY KEY,
			checksum TEXT NOT NULL,
			applied_at INTEGER NOT NULL
		)`
	if _, err := db.ExecContext(ctx, createTable); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	files, err := schema.MigrationFiles(schema.SQLiteMigrations, "sqlitemigrations")
	if err != nil {
		return fmt.Errorf("get migration files: %w", err)
	}

	for _, file := range files {
		if err := applyMigration(ctx, log, db, schema.SQLiteMigrations, path.Join("sqlitemigrations", file)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}

	log.InfoContext(ctx, "migrations complete", "driver", "sqlite")
	return nil
}

func applyMigration(ctx context.Context, log *slog.Logger, db *DB, migrationsFS fs.FS, filePath string) error {
	version := path.Base(filePath)

	content, err := fs.ReadFile(migrationsFS, filePath)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}
	checksum := schema.Checksum(content)

	var existing string
	err = db.QueryRowContext(ctx, "SELECT checksum FROM schema_migrations WHERE version = ?", version).Scan(&existing)
	switch {
	case err == nil:
		if existing != checksum {
			return fmt.Errorf("%w: %s (expected %s, got %s)", schema.ErrChecksumMismatch, version, existing, checksum)
		}
		log.DebugContext(ctx, "migration already applied", "version", version)
		return nil
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("read migration state: %w", HandleError(err))
	}

	return WithTx(ctx, db, func(ctx context.Context) error {
		tx := Conn(ctx, db)
		if _, err := tx.ExecContext(ctx, string(content)); err != nil {
			return fmt.Errorf("execute migration: %w", err)
		}
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO schema_migrations (version, checksum, applied_at) VALUES (?, ?, ?)",
			version, checksum, Micros(db.Now())); err != nil {
			return fmt.Errorf("record migration: %w", err)
		}
		log.InfoContext(ctx, "migration applied", "version", version, "checksum", checksum[:8])
		return nil
	})
}

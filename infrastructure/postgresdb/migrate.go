package postgresdb

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"path"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jrazmi/yata/schema"
)

// Migrate runs all pending migrations from schema/pgmigrations/*.sql files.
// Migrations are applied in alphabetical order (use numeric prefixes: 001_xxx.sql, 002_xxx.sql).
// Already-applied migrations are tracked in the schema_migrations table.
// This is a forward-only migration system - no rollbacks.
func Migrate(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool) error {
	if err := StatusCheck(ctx, pool); err != nil {
		return fmt.Errorf("status check database: %w", err)
	}

	log.InfoContext(ctx, "running database migrations", "driver", "postgres")

	if err := runMigrations(ctx, log, pool, schema.PostgresMigrations, "pgmigrations"); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	log.InfoContext(ctx, "migrations complete", "driver", "postgres")
	return nil
}

// runMigrations is the internal migration runner
func runMigrations(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool, migrationsFS fs.FS, migrationsDir string) error {
	if err := createMigrationsTable(ctx, pool); err != nil {
		return fmt.Errorf("create migrations table: %w", err)
	}

	files, err := schema.MigrationFiles(migrationsFS, migrationsDir)
	if err != nil {
		return fmt.Errorf("get migration files: %w", err)
	}

	for _, file := range files {
		if err := applyMigration(ctx, log, pool, migrationsFS, path.Join(migrationsDir, file)); err != nil {
			return fmt.Errorf("apply migration %s: %w", file, err)
		}
	}

	return nil
}

func createMigrationsTable(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version VARCHAR(255) PRIMARY KEY,
			checksum VARCHAR(64) NOT NULL,
			applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)
	`
	_, err := pool.Exec(ctx, query)
	return err
}

// applyMigration applies a single migration if it hasn't been applied yet
func applyMigration(ctx context.Context, log *slog.Logger, pool *pgxpool.Pool, migrationsFS fs.FS, filePath string) error {
	version := path.Base(filePath)

	content, err := fs.ReadFile(migrationsFS, filePath)
	if err != nil {
		return fmt.Errorf("read migration file: %w", err)
	}

	checksum := schema.Checksum(content)

	var existingChecksum string
	err = pool.QueryRow(ctx, "SELECT checksum FROM schema_migrations WHERE version = $1", version).Scan(&existingChecksum)
	switch {
	case err == nil:
		if existingChecksum != checksum {
			return fmt.Errorf("%w: %s (expected %s, got %s)", schema.ErrChecksumMismatch, version, existingChecksum, checksum)
		}
		log.DebugContext(ctx, "migration already applied", "version", version)
		return nil
	case !errors.Is(err, pgx.ErrNoRows):
		return fmt.Errorf("read migration state: %w", HandlePgError(err))
	}

	tx, err := pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, string(content)); err != nil {
		return fmt.Errorf("execute migration: %w", err)
	}

	if _, err := tx.Exec(ctx, "INSERT INTO schema_migrations (version, checksum) VALUES ($1, $2)", version, checksum); err != nil {
		return fmt.Errorf("record migration: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}

	log.InfoContext(ctx, "migration applied", "version", version, "checksum", checksum[:8])
	return nil
}

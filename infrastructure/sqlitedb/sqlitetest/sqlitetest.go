// Package sqlitetest opens migrated throwaway SQLite databases for tests.
package sqlitetest

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jrazmi/yata/infrastructure/sqlitedb"
	"github.com/jrazmi/yata/sdk/logger"
)

// New returns a migrated database under t.TempDir that is closed when the
// test ends.
func New(t testing.TB, opts ...sqlitedb.Option) *sqlitedb.DB {
	t.Helper()
	ctx := context.Background()

	db, err := sqlitedb.Open(ctx, sqlitedb.Options{Path: filepath.Join(t.TempDir(), "yata.db")}, opts...)
	if err != nil {
		t.Fatalf("opening sqlite: %v", err)
	}
	t.Cleanup(func() { db.Close() })

	if err := sqlitedb.Migrate(ctx, logger.NewDiscard().Logger, db); err != nil {
		t.Fatalf("migrating sqlite: %v", err)
	}
	return db
}

// SeedUser inserts a user row directly so owned rows satisfy their foreign
// keys.
func SeedUser(t testing.TB, db *sqlitedb.DB, id string) {
	t.Helper()
	now := sqlitedb.Micros(db.Now())
	_, err := db.Exec(`INSERT INTO users (id, email, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		id, id+"@example.com", now, now)
	if err != nil {
		t.Fatalf("seeding user %s: %v", id, err)
	}
}

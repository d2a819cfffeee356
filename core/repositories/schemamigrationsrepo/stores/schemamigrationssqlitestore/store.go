package schemamigrationssqlitestore

import (
	"context"

	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/repositories/schemamigrationsrepo"
	"github.com/jrazmi/yata/infrastructure/sqlitedb"
	"github.com/jrazmi/yata/sdk/logger"
)

type Store struct {
	log *logger.Logger
	db  *sqlitedb.DB
}

func NewStore(log *logger.Logger, db *sqlitedb.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

func (s *Store) ListApplied(ctx context.Context) ([]schemamigrationsrepo.Migration, error) {
	rows, err := sqlitedb.Conn(ctx, s.db).QueryContext(ctx,
		`SELECT version, checksum, applied_at FROM schema_migrations ORDER BY version`)
	if err != nil {
		return nil, repositories.FromSQLite(err)
	}
	defer rows.Close()

	migrations := []schemamigrationsrepo.Migration{}
	for rows.Next() {
		var (
			m       schemamigrationsrepo.Migration
			applied int64
		)
		if err := rows.Scan(&m.Version, &m.Checksum, &applied); err != nil {
			return nil, repositories.FromSQLite(err)
		}
		m.AppliedAt = sqlitedb.FromMicros(applied)
		migrations = append(migrations, m)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.FromSQLite(err)
	}
	return migrations, nil
}

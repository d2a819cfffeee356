package schemamigrationspgxstore

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/repositories/schemamigrationsrepo"
	"github.com/jrazmi/yata/infrastructure/postgresdb"
	"github.com/jrazmi/yata/sdk/logger"
)

type Store struct {
	log  *logger.Logger
	pool *postgresdb.Pool
}

func NewStore(log *logger.Logger, pool *postgresdb.Pool) *Store {
	return &Store{
		log:  log,
		pool: pool,
	}
}

func (s *Store) ListApplied(ctx context.Context) ([]schemamigrationsrepo.Migration, error) {
	query := `SELECT version, checksum, applied_at
		FROM schema_migrations
		ORDER BY version`

	rows, err := postgresdb.Conn(ctx, s.pool).Query(ctx, query)
	if err != nil {
		return nil, repositories.FromPostgres(err)
	}

	migrations, err := pgx.CollectRows(rows, pgx.RowToStructByName[schemamigrationsrepo.Migration])
	if err != nil {
		return nil, repositories.FromPostgres(err)
	}
	return migrations, nil
}

// Package syncpgxstore runs sync phases in PostgreSQL transactions.
package syncpgxstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/infrastructure/postgresdb"
	"github.com/jrazmi/yata/sdk/logger"
)

// watermarkQuery returns a timestamp below the start of every transaction
// still open in this database. Rows are stamped with their transaction's
// start time, so anything that commits after the read snapshot is taken
// carries a later updated_at than the watermark and is picked up by the
// next sync. Idle connections report a null xact_start.
//
// pg_stat_activity hides xact_start for sessions of other roles unless the
// querying role is a superuser or a member of pg_read_all_stats. When writers
// connect as a different role than the sync server, grant it:
//
//	GRANT pg_read_all_stats TO yata;
const watermarkQuery = `
	SELECT LEAST(
		clock_timestamp(),
		COALESCE(min(xact_start) FILTER (WHERE pid <> pg_backend_pid()), 'infinity')
	) - interval '1 microsecond'
	FROM pg_stat_activity
	WHERE datname = current_database() AND xact_start IS NOT NULL`

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

// WithinTx runs fn in a read-committed transaction.
func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	err := postgresdb.WithTx(ctx, s.pool, pgx.TxOptions{IsoLevel: pgx.ReadCommitted}, fn)
	return translate(err)
}

// ReadSnapshot samples the watermark first and only then opens a
// repeatable-read snapshot, so the snapshot sees at least every transaction
// that had finished when the watermark was taken.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, watermark time.Time) error) error {
	var watermark time.Time
	if err := s.pool.QueryRow(ctx, watermarkQuery).Scan(&watermark); err != nil {
		return repositories.FromPostgres(err)
	}

	txOpts := pgx.TxOptions{IsoLevel: pgx.RepeatableRead, AccessMode: pgx.ReadOnly}
	err := postgresdb.WithTx(ctx, s.pool, txOpts, func(ctx context.Context) error {
		return fn(ctx, watermark.UTC())
	})
	return translate(err)
}

// translate maps transaction failures raised by postgresdb itself. Errors from
// the stores already carry repository sentinels.
func translate(err error) error {
	if errors.Is(err, postgresdb.ErrDBUnavailable) && !errors.Is(err, repositories.ErrUnavailable) {
		return fmt.Errorf("%w: %w", repositories.ErrUnavailable, err)
	}
	return err
}

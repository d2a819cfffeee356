// Package syncsqlitestore runs sync phases in SQLite transactions.
package syncsqlitestore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jrazmi/yata/core/repositories"
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

func (s *Store) WithinTx(ctx context.Context, fn func(ctx context.Context) error) error {
	return translate(sqlitedb.WithTx(ctx, s.db, fn))
}

// ReadSnapshot takes the watermark inside the transaction. The database
// has one connection, so no writer can be between stamping a row and
// committing it while the snapshot is held, and the clock is past every
// stamp already handed out.
func (s *Store) ReadSnapshot(ctx context.Context, fn func(ctx context.Context, watermark time.Time) error) error {
	err := sqlitedb.WithTx(ctx, s.db, func(ctx context.Context) error {
		return fn(ctx, s.db.Now())
	})
	return translate(err)
}

// translate maps transaction failures raised by sqlitedb itself. Errors from
// the stores already carry repository sentinels.
func translate(err error) error {
	if errors.Is(err, sqlitedb.ErrDBUnavailable) && !errors.Is(err, repositories.ErrUnavailable) {
		return fmt.Errorf("%w: %w", repositories.ErrUnavailable, err)
	}
	return err
}

// Package repositories holds the errors shared by every entity repository
// and the translation from driver errors onto them.
package repositories

import (
	"errors"
	"fmt"

	"github.com/jrazmi/yata/infrastructure/postgresdb"
	"github.com/jrazmi/yata/infrastructure/sqlitedb"
)

var (
	ErrNotFound    = errors.New("record not found")
	ErrConflict    = errors.New("record already exists")
	ErrInvalid     = errors.New("invalid input")
	ErrUnavailable = errors.New("store unavailable")
)

// Invalid wraps a validation failure so callers can match ErrInvalid.
func Invalid(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%w: %w", ErrInvalid, err)
}

// FromPostgres maps a pgx error onto the repository errors.
func FromPostgres(err error) error {
	err = postgresdb.HandlePgError(err)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, postgresdb.ErrDBNotFound):
		return ErrNotFound
	case errors.Is(err, postgresdb.ErrDBDuplicatedEntry):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, postgresdb.ErrDBForeignKey):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, postgresdb.ErrDBUnavailable):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

// FromSQLite maps a database/sql error from the SQLite driver onto the
// repository errors.
func FromSQLite(err error) error {
	err = sqlitedb.HandleError(err)
	switch {
	case err == nil:
		return nil
	case errors.Is(err, sqlitedb.ErrDBNotFound):
		return ErrNotFound
	case errors.Is(err, sqlitedb.ErrDBDuplicatedEntry):
		return fmt.Errorf("%w: %w", ErrConflict, err)
	case errors.Is(err, sqlitedb.ErrDBForeignKey):
		return fmt.Errorf("%w: %w", ErrNotFound, err)
	case errors.Is(err, sqlitedb.ErrDBUnavailable):
		return fmt.Errorf("%w: %w", ErrUnavailable, err)
	}
	return err
}

package syncengine

import (
	"errors"
	"fmt"

	"github.com/jrazmi/yata/core/repositories"
)

// Sync errors. The first four alias the repository errors so a failure
// deep in a store matches without translation.
var (
	ErrValidation       = repositories.ErrInvalid
	ErrConflict         = repositories.ErrConflict
	ErrNotFound         = repositories.ErrNotFound
	ErrStoreUnavailable = repositories.ErrUnavailable
	ErrSyncFailed       = errors.New("sync failed")
	ErrResyncRequired   = errors.New("resync required")
)

// OpError records which operation of a batch failed.
type OpError struct {
	Kind Kind
	Op   string
	ID   string
	Err  error
}

func (e *OpError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("%s %s: %v", e.Kind, e.Op, e.Err)
	}
	return fmt.Sprintf("%s %s %s: %v", e.Kind, e.Op, e.ID, e.Err)
}

func (e *OpError) Unwrap() error {
	return e.Err
}

func opError(kind Kind, op, id string, err error) error {
	if err == nil {
		return nil
	}
	return &OpError{Kind: kind, Op: op, ID: id, Err: err}
}

func validationf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrValidation, fmt.Sprintf(format, args...))
}

func notFoundf(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrNotFound, fmt.Sprintf(format, args...))
}

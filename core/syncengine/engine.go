// Package syncengine reconciles a client's batch of offline mutations with
// the server and returns the changes the client is missing.
package syncengine

import (
	"context"
	"fmt"
	"time"

	"github.com/jrazmi/yata/sdk/environment"
	"github.com/jrazmi/yata/sdk/logger"
)

// Options represents the exportable sync configuration.
type Options struct {
	Timeout            time.Duration `env:"SYNC_TIMEOUT" default:"20s"`
	TombstoneRetention time.Duration `env:"SYNC_TOMBSTONE_RETENTION" default:"720h"`
	MaxBatch           int           `env:"SYNC_MAX_BATCH" default:"5000"`
	PurgeBatch         int           `env:"SYNC_PURGE_BATCH" default:"500"`
	PurgeMargin        time.Duration `env:"SYNC_PURGE_MARGIN" default:"1h"`
}

type Option func(*Engine)

// WithClock replaces the wall clock used for the retention horizon.
func WithClock(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// Engine coordinates a sync: write phase, then read phase. It holds no
// per-client state.
type Engine struct {
	log    *logger.Logger
	tx     Transactor
	stores Stores
	opts   Options
	now    func() time.Time
}

// NewFromEnv reads Options under prefix and builds an Engine.
func NewFromEnv(prefix string, log *logger.Logger, tx Transactor, stores Stores, opts ...Option) (*Engine, error) {
	var cfg Options
	if err := environment.ParseEnvTags(prefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing sync config: %w", err)
	}
	return NewEngine(log, tx, stores, cfg, opts...), nil
}

func NewEngine(log *logger.Logger, tx Transactor, stores Stores, cfg Options, opts ...Option) *Engine {
	e := &Engine{
		log:    log,
		tx:     tx,
		stores: stores,
		opts:   cfg,
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Synchronize applies changes for userID and returns everything changed
// after lastPulledAt, which is the epoch when nil. Nothing is read when the
// write phase fails, and nothing is written when the watermark is too old.
func (e *Engine) Synchronize(ctx context.Context, userID string, lastPulledAt *time.Time, changes Changes) (Result, error) {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()

	since := Epoch
	if lastPulledAt != nil && lastPulledAt.After(Epoch) {
		since = *lastPulledAt
	}
	if err := e.checkRetention(since); err != nil {
		return Result{}, err
	}

	if err := e.apply(ctx, userID, changes); err != nil {
		return Result{}, err
	}

	result, err := e.pull(ctx, userID, since)
	if err != nil {
		return Result{}, err
	}

	e.log.InfoContext(ctx, "sync complete",
		"user_id", userID,
		"since", since,
		"pushed", changes.Len(),
		"pulled", result.Changes.Projects.Len()+result.Changes.TaskTypes.Len()+result.Changes.Tasks.Len(),
		"timestamp", result.Timestamp)
	return result, nil
}

// Apply runs only the write phase. The CRUD bridges use it for multi-row
// writes such as reordering.
func (e *Engine) Apply(ctx context.Context, userID string, changes Changes) error {
	ctx, cancel := e.withTimeout(ctx)
	defer cancel()
	return e.apply(ctx, userID, changes)
}

func (e *Engine) apply(ctx context.Context, userID string, changes Changes) error {
	n := changes.Len()
	if n == 0 {
		return nil
	}
	if e.opts.MaxBatch > 0 && n > e.opts.MaxBatch {
		return fmt.Errorf("%w: %w", ErrSyncFailed, validationf("batch has %d operations, limit is %d", n, e.opts.MaxBatch))
	}

	a := applier{stores: e.stores, userID: userID}
	err := e.tx.WithinTx(ctx, func(ctx context.Context) error {
		return a.apply(ctx, changes)
	})
	if err != nil {
		e.log.ErrorContext(ctx, "sync write phase failed", "user_id", userID, "operations", n, "error", err)
		return fmt.Errorf("%w: %w", ErrSyncFailed, err)
	}
	return nil
}

func (e *Engine) pull(ctx context.Context, userID string, since time.Time) (Result, error) {
	var result Result
	err := e.tx.ReadSnapshot(ctx, func(ctx context.Context, watermark time.Time) error {
		// A clamped watermark never moves a client backwards.
		if watermark.Before(since) {
			watermark = since
		}
		result.Timestamp = watermark

		projects, err := e.stores.Projects.ListChangedSince(ctx, userID, since)
		if err != nil {
			return err
		}
		taskTypes, err := e.stores.TaskTypes.ListChangedSince(ctx, userID, since)
		if err != nil {
			return err
		}
		tasks, err := e.stores.Tasks.ListChangedSince(ctx, userID, since)
		if err != nil {
			return err
		}

		result.Changes = DeltaSet{
			Projects:  Select(projects, since, watermark),
			TaskTypes: Select(taskTypes, since, watermark),
			Tasks:     Select(tasks, since, watermark),
		}
		return nil
	})
	if err != nil {
		e.log.ErrorContext(ctx, "sync read phase failed", "user_id", userID, "error", err)
		return Result{}, fmt.Errorf("%w: %w", ErrStoreUnavailable, err)
	}
	return result, nil
}

// checkRetention rejects watermarks older than the tombstone horizon: the
// reaper may already have purged deletions the client never saw.
func (e *Engine) checkRetention(since time.Time) error {
	if since.Equal(Epoch) || e.opts.TombstoneRetention <= 0 {
		return nil
	}
	if horizon := e.Horizon(); since.Before(horizon) {
		return fmt.Errorf("%w: last pulled at %s is before %s", ErrResyncRequired, since.Format(time.RFC3339), horizon.Format(time.RFC3339))
	}
	return nil
}

// Horizon is the oldest deletion time still guaranteed to be retained.
func (e *Engine) Horizon() time.Time {
	return e.now().Add(-e.opts.TombstoneRetention)
}

func (e *Engine) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if e.opts.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, e.opts.Timeout)
}

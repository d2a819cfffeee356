package syncengine

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jrazmi/yata/infrastructure/workers"
)

// purgeOrder deletes tasks first so their dependency edges go before the
// projects and types they point at.
var purgeOrder = []Kind{KindTasks, KindTaskTypes, KindProjects}

// PurgeKind hard deletes one batch of tombstones of kind older than the
// retention horizon less PurgeMargin.
func (e *Engine) PurgeKind(ctx context.Context, kind Kind) (int64, error) {
	if e.opts.TombstoneRetention <= 0 {
		return 0, nil
	}
	horizon := e.purgeHorizon()
	limit := e.purgeBatch()

	var (
		n   int64
		err error
	)
	switch kind {
	case KindTasks:
		n, err = e.stores.Tasks.PurgeDeleted(ctx, horizon, limit)
	case KindTaskTypes:
		n, err = e.stores.TaskTypes.PurgeDeleted(ctx, horizon, limit)
	case KindProjects:
		n, err = e.stores.Projects.PurgeDeleted(ctx, horizon, limit)
	default:
		return 0, fmt.Errorf("purge: unknown kind %q", kind)
	}
	if err != nil {
		return 0, opError(kind, "purge", "", err)
	}
	return n, nil
}

// Purge drains every tombstone older than the purge horizon and returns how many
// rows of each kind were removed.
func (e *Engine) Purge(ctx context.Context) (map[Kind]int64, error) {
	purged := make(map[Kind]int64, len(purgeOrder))
	for _, kind := range purgeOrder {
		for {
			n, err := e.PurgeKind(ctx, kind)
			if err != nil {
				return purged, err
			}
			purged[kind] += n
			if n < int64(e.purgeBatch()) {
				break
			}
		}
	}
	return purged, nil
}

// purgeHorizon trails Horizon by PurgeMargin so a client whose watermark
// passed checkRetention a moment ago still finds its tombstones.
func (e *Engine) purgeHorizon() time.Time {
	if e.opts.PurgeMargin <= 0 {
		return e.Horizon()
	}
	return e.Horizon().Add(-e.opts.PurgeMargin)
}

func (e *Engine) purgeBatch() int {
	if e.opts.PurgeBatch <= 0 {
		return 500
	}
	return e.opts.PurgeBatch
}

// SweepJob is one purge batch for one kind.
type SweepJob struct {
	Kind   Kind
	Purged int64
}

func (j SweepJob) GetID() string {
	return string(j.Kind)
}

// Reaper schedules tombstone sweeps on a worker pool. Each kind is swept by
// at most one worker at a time; a full batch is followed immediately by
// another, otherwise the kind rests for interval.
type Reaper struct {
	engine   *Engine
	interval time.Duration
	now      func() time.Time

	mu   sync.Mutex
	due  map[Kind]time.Time
	busy map[Kind]bool
}

func NewReaper(engine *Engine, interval time.Duration) *Reaper {
	return &Reaper{
		engine:   engine,
		interval: interval,
		now:      engine.now,
		due:      make(map[Kind]time.Time),
		busy:     make(map[Kind]bool),
	}
}

func (r *Reaper) Checkout(ctx context.Context, workerID string) (SweepJob, error) {
	if r.engine.opts.TombstoneRetention <= 0 {
		return SweepJob{}, workers.ErrNoWorkAvailable
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	for _, kind := range purgeOrder {
		if r.busy[kind] || now.Before(r.due[kind]) {
			continue
		}
		r.busy[kind] = true
		return SweepJob{Kind: kind}, nil
	}
	return SweepJob{}, workers.ErrNoWorkAvailable
}

func (r *Reaper) Process(ctx context.Context, job SweepJob) (SweepJob, error) {
	n, err := r.engine.PurgeKind(ctx, job.Kind)
	if err != nil {
		return job, err
	}
	job.Purged = n
	return job, nil
}

func (r *Reaper) Complete(ctx context.Context, job SweepJob, elapsed time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.busy[job.Kind] = false
	if job.Purged >= int64(r.engine.purgeBatch()) {
		r.due[job.Kind] = r.now()
	} else {
		r.due[job.Kind] = r.now().Add(r.interval)
	}
	if job.Purged > 0 {
		r.engine.log.InfoContext(ctx, "tombstones reaped", "kind", job.Kind, "count", job.Purged, "elapsed", elapsed)
	}
	return nil
}

func (r *Reaper) Fail(ctx context.Context, job SweepJob, err error) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.busy[job.Kind] = false
	r.due[job.Kind] = r.now().Add(r.interval)
	r.engine.log.ErrorContext(ctx, "tombstone sweep failed", "kind", job.Kind, "error", err)
	return nil
}

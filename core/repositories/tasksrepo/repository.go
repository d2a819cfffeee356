// Package tasksrepo persists tasks with soft deletion.
package tasksrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/sdk/logger"
)

// Storer is implemented by the pgx and SQLite stores. Every method runs in
// the transaction carried by ctx when there is one.
type Storer interface {
	Create(ctx context.Context, input CreateTask) (Task, error)
	Get(ctx context.Context, userID, id string) (Task, error)
	List(ctx context.Context, userID string, filter TaskFilter) ([]Task, error)
	Update(ctx context.Context, userID, id string, input UpdateTask) (Task, error)
	Delete(ctx context.Context, userID string, ids []string) (int64, error)
	ListChangedSince(ctx context.Context, userID string, since time.Time) ([]Task, error)
	PurgeDeleted(ctx context.Context, before time.Time, limit int) (int64, error)

	// Lineage returns id and all of its ancestors, tombstones included. It
	// terminates on a tree that already contains a loop.
	Lineage(ctx context.Context, userID, id string) ([]string, error)
}

type Repository struct {
	log    *logger.Logger
	storer Storer
}

func NewRepository(log *logger.Logger, storer Storer) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
	}
}

// Create inserts a task, filling defaults. A missing ID gets a UUID.
func (r *Repository) Create(ctx context.Context, input CreateTask) (Task, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	input.normalize()
	if err := input.Validate(); err != nil {
		return Task{}, repositories.Invalid(err)
	}

	task, err := r.storer.Create(ctx, input)
	if err != nil {
		return Task{}, fmt.Errorf("task repository create %s: %w", input.ID, err)
	}
	return task, nil
}

func (r *Repository) Get(ctx context.Context, userID, id string) (Task, error) {
	task, err := r.storer.Get(ctx, userID, id)
	if err != nil {
		return Task{}, fmt.Errorf("task repository get %s: %w", id, err)
	}
	return task, nil
}

func (r *Repository) List(ctx context.Context, userID string, filter TaskFilter) ([]Task, error) {
	tasks, err := r.storer.List(ctx, userID, filter)
	if err != nil {
		return nil, fmt.Errorf("task repository list: %w", err)
	}
	return tasks, nil
}

func (r *Repository) Update(ctx context.Context, userID, id string, input UpdateTask) (Task, error) {
	if err := input.Validate(); err != nil {
		return Task{}, repositories.Invalid(err)
	}
	if input.ParentID.HasValue() && input.ParentID.Value == id {
		return Task{}, repositories.Invalid(fmt.Errorf("parentId: cannot reference the task itself"))
	}

	task, err := r.storer.Update(ctx, userID, id, input)
	if err != nil {
		return Task{}, fmt.Errorf("task repository update %s: %w", id, err)
	}
	return task, nil
}

// Delete tombstones the live tasks among ids. Subtasks are left alone.
func (r *Repository) Delete(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := r.storer.Delete(ctx, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("task repository delete: %w", err)
	}
	return n, nil
}

func (r *Repository) ListChangedSince(ctx context.Context, userID string, since time.Time) ([]Task, error) {
	tasks, err := r.storer.ListChangedSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("task repository changes: %w", err)
	}
	return tasks, nil
}

func (r *Repository) PurgeDeleted(ctx context.Context, before time.Time, limit int) (int64, error) {
	n, err := r.storer.PurgeDeleted(ctx, before, limit)
	if err != nil {
		return 0, fmt.Errorf("task repository purge: %w", err)
	}
	if n > 0 {
		r.log.InfoContext(ctx, "purged task tombstones", "count", n, "before", before)
	}
	return n, nil
}

// WouldCycle reports whether making parentID the parent of id closes a loop
// in the task tree.
func (r *Repository) WouldCycle(ctx context.Context, userID, id, parentID string) (bool, error) {
	lineage, err := r.storer.Lineage(ctx, userID, parentID)
	if err != nil {
		return false, fmt.Errorf("task repository lineage %s: %w", parentID, err)
	}
	for _, ancestor := range lineage {
		if ancestor == id {
			return true, nil
		}
	}
	return false, nil
}

// Package tasktypesrepo persists task types with soft deletion.
package tasktypesrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/sdk/logger"
)

type Storer interface {
	Create(ctx context.Context, input CreateTaskType) (TaskType, error)
	Get(ctx context.Context, userID, id string) (TaskType, error)
	List(ctx context.Context, userID string) ([]TaskType, error)
	Update(ctx context.Context, userID, id string, input UpdateTaskType) (TaskType, error)
	Delete(ctx context.Context, userID string, ids []string) (int64, error)
	ListChangedSince(ctx context.Context, userID string, since time.Time) ([]TaskType, error)
	PurgeDeleted(ctx context.Context, before time.Time, limit int) (int64, error)
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

func (r *Repository) Create(ctx context.Context, input CreateTaskType) (TaskType, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if err := input.Validate(); err != nil {
		return TaskType{}, repositories.Invalid(err)
	}

	tt, err := r.storer.Create(ctx, input)
	if err != nil {
		return TaskType{}, fmt.Errorf("task type repository create %s: %w", input.ID, err)
	}
	return tt, nil
}

func (r *Repository) Get(ctx context.Context, userID, id string) (TaskType, error) {
	tt, err := r.storer.Get(ctx, userID, id)
	if err != nil {
		return TaskType{}, fmt.Errorf("task type repository get %s: %w", id, err)
	}
	return tt, nil
}

func (r *Repository) List(ctx context.Context, userID string) ([]TaskType, error) {
	tts, err := r.storer.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("task type repository list: %w", err)
	}
	return tts, nil
}

func (r *Repository) Update(ctx context.Context, userID, id string, input UpdateTaskType) (TaskType, error) {
	if err := input.Validate(); err != nil {
		return TaskType{}, repositories.Invalid(err)
	}

	tt, err := r.storer.Update(ctx, userID, id, input)
	if err != nil {
		return TaskType{}, fmt.Errorf("task type repository update %s: %w", id, err)
	}
	return tt, nil
}

func (r *Repository) Delete(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := r.storer.Delete(ctx, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("task type repository delete: %w", err)
	}
	return n, nil
}

func (r *Repository) ListChangedSince(ctx context.Context, userID string, since time.Time) ([]TaskType, error) {
	tts, err := r.storer.ListChangedSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("task type repository changes: %w", err)
	}
	return tts, nil
}

func (r *Repository) PurgeDeleted(ctx context.Context, before time.Time, limit int) (int64, error) {
	n, err := r.storer.PurgeDeleted(ctx, before, limit)
	if err != nil {
		return 0, fmt.Errorf("task type repository purge: %w", err)
	}
	if n > 0 {
		r.log.InfoContext(ctx, "purged task type tombstones", "count", n, "before", before)
	}
	return n, nil
}

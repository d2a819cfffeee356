// Package projectsrepo persists projects with soft deletion.
package projectsrepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/sdk/logger"
)

// Storer is implemented by the pgx and SQLite stores. Every method runs in
// the transaction carried by ctx when there is one. Reads other than
// ListChangedSince skip tombstones.
type Storer interface {
	Create(ctx context.Context, input CreateProject) (Project, error)
	Get(ctx context.Context, userID, id string) (Project, error)
	List(ctx context.Context, userID string) ([]Project, error)
	Update(ctx context.Context, userID, id string, input UpdateProject) (Project, error)
	Delete(ctx context.Context, userID string, ids []string) (int64, error)
	ListChangedSince(ctx context.Context, userID string, since time.Time) ([]Project, error)
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

// Create inserts a project. A missing ID gets a UUID; an existing ID, live or
// tombstoned, is a conflict.
func (r *Repository) Create(ctx context.Context, input CreateProject) (Project, error) {
	if input.ID == "" {
		input.ID = uuid.NewString()
	}
	if err := input.Validate(); err != nil {
		return Project{}, repositories.Invalid(err)
	}

	project, err := r.storer.Create(ctx, input)
	if err != nil {
		return Project{}, fmt.Errorf("project repository create %s: %w", input.ID, err)
	}
	return project, nil
}

func (r *Repository) Get(ctx context.Context, userID, id string) (Project, error) {
	project, err := r.storer.Get(ctx, userID, id)
	if err != nil {
		return Project{}, fmt.Errorf("project repository get %s: %w", id, err)
	}
	return project, nil
}

func (r *Repository) List(ctx context.Context, userID string) ([]Project, error) {
	projects, err := r.storer.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("project repository list: %w", err)
	}
	return projects, nil
}

// Update applies the present fields of input and always advances UpdatedAt.
func (r *Repository) Update(ctx context.Context, userID, id string, input UpdateProject) (Project, error) {
	if err := input.Validate(); err != nil {
		return Project{}, repositories.Invalid(err)
	}

	project, err := r.storer.Update(ctx, userID, id, input)
	if err != nil {
		return Project{}, fmt.Errorf("project repository update %s: %w", id, err)
	}
	return project, nil
}

// Delete tombstones the live projects among ids and returns how many it
// marked. Unknown and already deleted ids are skipped.
func (r *Repository) Delete(ctx context.Context, userID string, ids []string) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	n, err := r.storer.Delete(ctx, userID, ids)
	if err != nil {
		return 0, fmt.Errorf("project repository delete: %w", err)
	}
	return n, nil
}

// ListChangedSince returns every row of the user, tombstones included, whose
// UpdatedAt is after since.
func (r *Repository) ListChangedSince(ctx context.Context, userID string, since time.Time) ([]Project, error) {
	projects, err := r.storer.ListChangedSince(ctx, userID, since)
	if err != nil {
		return nil, fmt.Errorf("project repository changes: %w", err)
	}
	return projects, nil
}

// PurgeDeleted hard deletes up to limit tombstones older than before.
func (r *Repository) PurgeDeleted(ctx context.Context, before time.Time, limit int) (int64, error) {
	n, err := r.storer.PurgeDeleted(ctx, before, limit)
	if err != nil {
		return 0, fmt.Errorf("project repository purge: %w", err)
	}
	if n > 0 {
		r.log.InfoContext(ctx, "purged project tombstones", "count", n, "before", before)
	}
	return n, nil
}

package syncengine

import (
	"context"
	"time"

	"github.com/jrazmi/yata/core/repositories/projectsrepo"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo"
)

// Transactor gives the engine its two phases. WithinTx runs fn in one write
// transaction carried by ctx; ReadSnapshot runs fn against a consistent
// snapshot and hands it the watermark for that snapshot. Every row committed
// with an updated timestamp at or below the watermark is visible to fn.
type Transactor interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context) error) error
	ReadSnapshot(ctx context.Context, fn func(ctx context.Context, watermark time.Time) error) error
}

// ProjectStore is satisfied by *projectsrepo.Repository.
type ProjectStore interface {
	Create(ctx context.Context, input projectsrepo.CreateProject) (projectsrepo.Project, error)
	Get(ctx context.Context, userID, id string) (projectsrepo.Project, error)
	Update(ctx context.Context, userID, id string, input projectsrepo.UpdateProject) (projectsrepo.Project, error)
	Delete(ctx context.Context, userID string, ids []string) (int64, error)
	ListChangedSince(ctx context.Context, userID string, since time.Time) ([]projectsrepo.Project, error)
	PurgeDeleted(ctx context.Context, before time.Time, limit int) (int64, error)
}

// TaskTypeStore is satisfied by *tasktypesrepo.Repository.
type TaskTypeStore interface {
	Create(ctx context.Context, input tasktypesrepo.CreateTaskType) (tasktypesrepo.TaskType, error)
	Get(ctx context.Context, userID, id string) (tasktypesrepo.TaskType, error)
	Update(ctx context.Context, userID, id string, input tasktypesrepo.UpdateTaskType) (tasktypesrepo.TaskType, error)
	Delete(ctx context.Context, userID string, ids []string) (int64, error)
	ListChangedSince(ctx context.Context, userID string, since time.Time) ([]tasktypesrepo.TaskType, error)
	PurgeDeleted(ctx context.Context, before time.Time, limit int) (int64, error)
}

// TaskStore is satisfied by *tasksrepo.Repository.
type TaskStore interface {
	Create(ctx context.Context, input tasksrepo.CreateTask) (tasksrepo.Task, error)
	Get(ctx context.Context, userID, id string) (tasksrepo.Task, error)
	Update(ctx context.Context, userID, id string, input tasksrepo.UpdateTask) (tasksrepo.Task, error)
	Delete(ctx context.Context, userID string, ids []string) (int64, error)
	ListChangedSince(ctx context.Context, userID string, since time.Time) ([]tasksrepo.Task, error)
	PurgeDeleted(ctx context.Context, before time.Time, limit int) (int64, error)
	WouldCycle(ctx context.Context, userID, id, parentID string) (bool, error)
}

type Stores struct {
	Projects  ProjectStore
	TaskTypes TaskTypeStore
	Tasks     TaskStore
}

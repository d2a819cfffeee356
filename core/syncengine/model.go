package syncengine

import (
	"time"

	"github.com/jrazmi/yata/core/repositories/projectsrepo"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo"
)

// Kind names an entity collection in a change batch or delta.
type Kind string

const (
	KindProjects  Kind = "projects"
	KindTaskTypes Kind = "taskTypes"
	KindTasks     Kind = "tasks"
)

// Patch is one sparse update: the target id plus the fields to change.
type Patch[U any] struct {
	ID     string
	Fields U
}

// ChangeSet is the client's mutations for one kind since its last sync.
type ChangeSet[C any, U any] struct {
	Created []C
	Updated []Patch[U]
	Deleted []string
}

func (c ChangeSet[C, U]) Len() int {
	return len(c.Created) + len(c.Updated) + len(c.Deleted)
}

type (
	ProjectChanges  = ChangeSet[projectsrepo.CreateProject, projectsrepo.UpdateProject]
	TaskTypeChanges = ChangeSet[tasktypesrepo.CreateTaskType, tasktypesrepo.UpdateTaskType]
	TaskChanges     = ChangeSet[tasksrepo.CreateTask, tasksrepo.UpdateTask]
)

// Changes is an incoming batch. It is applied Projects, TaskTypes, Tasks so
// that tasks can reference rows created in the same batch.
type Changes struct {
	Projects  ProjectChanges
	TaskTypes TaskTypeChanges
	Tasks     TaskChanges
}

// Len counts every create, update and delete in the batch.
func (c Changes) Len() int {
	return c.Projects.Len() + c.TaskTypes.Len() + c.Tasks.Len()
}

// Versioned is implemented by every synced row.
type Versioned interface {
	GetID() string
	GetCreatedAt() time.Time
	GetUpdatedAt() time.Time
	GetDeletedAt() *time.Time
}

// Delta is what a client must apply for one kind to catch up.
type Delta[T any] struct {
	Created []T
	Updated []T
	Deleted []string
}

// Len counts the rows and ids in the delta.
func (d Delta[T]) Len() int {
	return len(d.Created) + len(d.Updated) + len(d.Deleted)
}

type DeltaSet struct {
	Projects  Delta[projectsrepo.Project]
	TaskTypes Delta[tasktypesrepo.TaskType]
	Tasks     Delta[tasksrepo.Task]
}

// Result is returned by a successful sync. Timestamp is the watermark the
// client sends back as lastPulledAt next time.
type Result struct {
	Changes   DeltaSet
	Timestamp time.Time
}

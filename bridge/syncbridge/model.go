package syncbridge

import (
	"encoding/json"

	"github.com/jrazmi/yata/bridge/repositories/projectsrepobridge"
	"github.com/jrazmi/yata/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/yata/bridge/repositories/tasktypesrepobridge"
)

// SyncRequest is a client's pending mutations plus the watermark of its
// last successful pull. Both are optional.
type SyncRequest struct {
	LastPulledAt *string       `json:"lastPulledAt"`
	Changes      *ChangesInput `json:"changes"`
}

type ChangesInput struct {
	Tasks     ChangeSetInput[tasksrepobridge.CreateTaskInput, TaskPatch]             `json:"tasks"`
	Projects  ChangeSetInput[projectsrepobridge.CreateProjectInput, ProjectPatch]    `json:"projects"`
	TaskTypes ChangeSetInput[tasktypesrepobridge.CreateTaskTypeInput, TaskTypePatch] `json:"taskTypes"`
}

type ChangeSetInput[C any, U any] struct {
	Created []C      `json:"created"`
	Updated []U      `json:"updated"`
	Deleted []string `json:"deleted"`
}

// TaskPatch is an id plus the changed fields, flattened into one object.
type TaskPatch struct {
	ID string `json:"id"`
	tasksrepobridge.UpdateTaskInput
}

type ProjectPatch struct {
	ID string `json:"id"`
	projectsrepobridge.UpdateProjectInput
}

type TaskTypePatch struct {
	ID string `json:"id"`
	tasktypesrepobridge.UpdateTaskTypeInput
}

type Delta[T any] struct {
	Created []T      `json:"created"`
	Updated []T      `json:"updated"`
	Deleted []string `json:"deleted"`
}

type ChangesOutput struct {
	Tasks     Delta[tasksrepobridge.Task]         `json:"tasks"`
	Projects  Delta[projectsrepobridge.Project]   `json:"projects"`
	TaskTypes Delta[tasktypesrepobridge.TaskType] `json:"taskTypes"`
}

// SyncResponse carries the rows the client is missing and the watermark to
// send as lastPulledAt next time.
type SyncResponse struct {
	Changes   ChangesOutput `json:"changes"`
	Timestamp string        `json:"timestamp"`
}

func (s SyncResponse) Encode() ([]byte, string, error) {
	data, err := json.Marshal(s)
	return data, "application/json", err
}

package tasktypesrepobridge

import (
	"github.com/jrazmi/yata/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo"
	"github.com/jrazmi/yata/sdk/patch"
	"github.com/jrazmi/yata/sdk/validation"
)

type TaskType struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Icon      string  `json:"icon"`
	UserID    string  `json:"userId"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
	DeletedAt *string `json:"deletedAt,omitempty"`
}

// TaskTypeWithTasks is the CRUD response shape. Tasks holds the live
// tasks that reference the type.
type TaskTypeWithTasks struct {
	TaskType
	Tasks []tasksrepobridge.Task `json:"tasks"`
}

type CreateTaskTypeInput struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Icon   string `json:"icon"`
	UserID string `json:"userId"`
}

func (c CreateTaskTypeInput) Validate() error {
	var fe validation.FieldErrors
	if !validation.Required(c.Name) {
		fe.Add("name", "is required")
	}
	return fe.Err()
}

type UpdateTaskTypeInput struct {
	Name patch.Field[string] `json:"name,omitzero"`
	Icon patch.Field[string] `json:"icon,omitzero"`
}

func MarshalToBridge(t tasktypesrepo.TaskType) TaskType {
	return TaskType{
		ID:        t.ID,
		Name:      t.Name,
		Icon:      t.Icon,
		UserID:    t.UserID,
		CreatedAt: validation.FormatISO8601(t.CreatedAt),
		UpdatedAt: validation.FormatISO8601(t.UpdatedAt),
		DeletedAt: validation.FormatISO8601Ptr(t.DeletedAt),
	}
}

func MarshalCreateToRepository(input CreateTaskTypeInput) tasktypesrepo.CreateTaskType {
	return tasktypesrepo.CreateTaskType{
		ID:     input.ID,
		Name:   input.Name,
		Icon:   input.Icon,
		UserID: input.UserID,
	}
}

func MarshalUpdateToRepository(input UpdateTaskTypeInput) tasktypesrepo.UpdateTaskType {
	return tasktypesrepo.UpdateTaskType{Name: input.Name, Icon: input.Icon}
}

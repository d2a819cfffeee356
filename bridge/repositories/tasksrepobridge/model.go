package tasksrepobridge

import (
	"github.com/jrazmi/yata/sdk/patch"
	"github.com/jrazmi/yata/sdk/validation"
)

// Task is the wire form of a task. Dates are ISO-8601 strings.
type Task struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Content       *string  `json:"content"`
	Status        string   `json:"status"`
	Section       string   `json:"section"`
	Order         int      `json:"order"`
	URLs          []string `json:"urls"`
	DueDate       *string  `json:"dueDate"`
	WhenDate      *string  `json:"whenDate"`
	StartedDate   *string  `json:"startedDate"`
	CompletedDate *string  `json:"completedDate"`
	UserID        string   `json:"userId"`
	ProjectID     *string  `json:"projectId"`
	TypeID        *string  `json:"typeId"`
	ParentID      *string  `json:"parentId"`
	CreatedAt     string   `json:"createdAt"`
	UpdatedAt     string   `json:"updatedAt"`
	DeletedAt     *string  `json:"deletedAt,omitempty"`
}

// TaskWithRelations is the CRUD response shape: a task with its project,
// type, parent and subtasks embedded. Only live rows of the caller appear.
type TaskWithRelations struct {
	Task
	Project  *Project `json:"project"`
	Type     *Type    `json:"type"`
	Parent   *Task    `json:"parent"`
	Subtasks []Task   `json:"subtasks"`
}

// Project is the embedded form of a task's project.
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// Type is the embedded form of a task's type.
type Type struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Icon      string `json:"icon"`
	UserID    string `json:"userId"`
	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// CreateTaskInput is a full task record. ID and UserID are optional on the
// CRUD surface; the server fills them.
type CreateTaskInput struct {
	ID            string   `json:"id"`
	Title         string   `json:"title"`
	Content       *string  `json:"content"`
	Status        string   `json:"status"`
	Section       string   `json:"section"`
	Order         int      `json:"order"`
	URLs          []string `json:"urls"`
	DueDate       *string  `json:"dueDate"`
	WhenDate      *string  `json:"whenDate"`
	StartedDate   *string  `json:"startedDate"`
	CompletedDate *string  `json:"completedDate"`
	UserID        string   `json:"userId"`
	ProjectID     *string  `json:"projectId"`
	TypeID        *string  `json:"typeId"`
	ParentID      *string  `json:"parentId"`
}

func (c CreateTaskInput) Validate() error {
	var fe validation.FieldErrors
	if !validation.Required(c.Title) {
		fe.Add("title", "is required")
	}
	return fe.Err()
}

// UpdateTaskInput is a sparse patch. Absent keys are left alone and null
// clears a nullable field.
type UpdateTaskInput struct {
	Title         patch.Field[string]   `json:"title,omitzero"`
	Content       patch.Field[string]   `json:"content,omitzero"`
	Status        patch.Field[string]   `json:"status,omitzero"`
	Section       patch.Field[string]   `json:"section,omitzero"`
	Order         patch.Field[int]      `json:"order,omitzero"`
	URLs          patch.Field[[]string] `json:"urls,omitzero"`
	DueDate       patch.Field[string]   `json:"dueDate,omitzero"`
	WhenDate      patch.Field[string]   `json:"whenDate,omitzero"`
	StartedDate   patch.Field[string]   `json:"startedDate,omitzero"`
	CompletedDate patch.Field[string]   `json:"completedDate,omitzero"`
	ProjectID     patch.Field[string]   `json:"projectId,omitzero"`
	TypeID        patch.Field[string]   `json:"typeId,omitzero"`
	ParentID      patch.Field[string]   `json:"parentId,omitzero"`
}

// ReorderItem moves one task to a section and position.
type ReorderItem struct {
	ID      string `json:"id"`
	Section string `json:"section"`
	Order   int    `json:"order"`
}

// ReorderInput is applied as one batch.
type ReorderInput []ReorderItem

func (in ReorderInput) Validate() error {
	var fe validation.FieldErrors
	for i, item := range in {
		if !validation.Required(item.ID) {
			fe.Add("id", "item %d: is required", i)
		}
		if !validation.Required(item.Section) {
			fe.Add("section", "item %d: is required", i)
		}
	}
	return fe.Err()
}

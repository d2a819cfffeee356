package tasktypesrepo

import (
	"time"

	"github.com/jrazmi/yata/sdk/patch"
	"github.com/jrazmi/yata/sdk/validation"
)

// TaskType is a user-defined category for tasks, shown with an icon.
type TaskType struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	Icon      string     `db:"icon"`
	UserID    string     `db:"user_id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (t TaskType) GetID() string            { return t.ID }
func (t TaskType) GetCreatedAt() time.Time  { return t.CreatedAt }
func (t TaskType) GetUpdatedAt() time.Time  { return t.UpdatedAt }
func (t TaskType) GetDeletedAt() *time.Time { return t.DeletedAt }

type CreateTaskType struct {
	ID     string
	Name   string
	Icon   string
	UserID string
}

func (c CreateTaskType) Validate() error {
	var fe validation.FieldErrors
	if !validation.Required(c.ID) {
		fe.Add("id", "is required")
	}
	if !validation.Required(c.UserID) {
		fe.Add("userId", "is required")
	}
	return fe.Err()
}

type UpdateTaskType struct {
	Name patch.Field[string]
	Icon patch.Field[string]
}

func (u UpdateTaskType) Validate() error {
	var fe validation.FieldErrors
	if u.Name.Set && u.Name.Null {
		fe.Add("name", "cannot be null")
	}
	if u.Icon.Set && u.Icon.Null {
		fe.Add("icon", "cannot be null")
	}
	return fe.Err()
}

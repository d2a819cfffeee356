package projectsrepo

import (
	"time"

	"github.com/jrazmi/yata/sdk/patch"
	"github.com/jrazmi/yata/sdk/validation"
)

// Project groups tasks. A non-nil DeletedAt marks a tombstone.
type Project struct {
	ID        string     `db:"id"`
	Name      string     `db:"name"`
	UserID    string     `db:"user_id"`
	CreatedAt time.Time  `db:"created_at"`
	UpdatedAt time.Time  `db:"updated_at"`
	DeletedAt *time.Time `db:"deleted_at"`
}

func (p Project) GetID() string            { return p.ID }
func (p Project) GetCreatedAt() time.Time  { return p.CreatedAt }
func (p Project) GetUpdatedAt() time.Time  { return p.UpdatedAt }
func (p Project) GetDeletedAt() *time.Time { return p.DeletedAt }

// CreateProject contains fields for creating a new project.
type CreateProject struct {
	ID     string
	Name   string
	UserID string
}

func (c CreateProject) Validate() error {
	var fe validation.FieldErrors
	if !validation.Required(c.ID) {
		fe.Add("id", "is required")
	}
	if !validation.Required(c.UserID) {
		fe.Add("userId", "is required")
	}
	return fe.Err()
}

// UpdateProject is a sparse patch; absent fields are left alone.
type UpdateProject struct {
	Name patch.Field[string]
}

func (u UpdateProject) Validate() error {
	var fe validation.FieldErrors
	if u.Name.Set && u.Name.Null {
		fe.Add("name", "cannot be null")
	}
	return fe.Err()
}

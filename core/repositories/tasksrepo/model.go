package tasksrepo

import (
	"time"

	"github.com/jrazmi/yata/sdk/patch"
	"github.com/jrazmi/yata/sdk/validation"
)

const (
	DefaultStatus  = "todo"
	DefaultSection = "Inbox"
)

// Task is a unit of work. Subtasks point at their parent through ParentID.
type Task struct {
	ID            string     `db:"id"`
	Title         string     `db:"title"`
	Content       *string    `db:"content"`
	Status        string     `db:"status"`
	Section       string     `db:"section"`
	Order         int        `db:"sort_order"`
	URLs          []string   `db:"urls"`
	DueDate       *time.Time `db:"due_date"`
	WhenDate      *time.Time `db:"when_date"`
	StartedDate   *time.Time `db:"started_date"`
	CompletedDate *time.Time `db:"completed_date"`
	UserID        string     `db:"user_id"`
	ProjectID     *string    `db:"project_id"`
	TypeID        *string    `db:"type_id"`
	ParentID      *string    `db:"parent_id"`
	CreatedAt     time.Time  `db:"created_at"`
	UpdatedAt     time.Time  `db:"updated_at"`
	DeletedAt     *time.Time `db:"deleted_at"`
}

func (t Task) GetID() string            { return t.ID }
func (t Task) GetCreatedAt() time.Time  { return t.CreatedAt }
func (t Task) GetUpdatedAt() time.Time  { return t.UpdatedAt }
func (t Task) GetDeletedAt() *time.Time { return t.DeletedAt }

// CreateTask contains fields for creating a new task. Empty Status and
// Section take their defaults.
type CreateTask struct {
	ID            string
	Title         string
	Content       *string
	Status        string
	Section       string
	Order         int
	URLs          []string
	DueDate       *time.Time
	WhenDate      *time.Time
	StartedDate   *time.Time
	CompletedDate *time.Time
	UserID        string
	ProjectID     *string
	TypeID        *string
	ParentID      *string
}

func (c *CreateTask) normalize() {
	if c.Status == "" {
		c.Status = DefaultStatus
	}
	if c.Section == "" {
		c.Section = DefaultSection
	}
	if c.URLs == nil {
		c.URLs = []string{}
	}
}

func (c CreateTask) Validate() error {
	var fe validation.FieldErrors
	if !validation.Required(c.ID) {
		fe.Add("id", "is required")
	}
	if !validation.Required(c.UserID) {
		fe.Add("userId", "is required")
	}
	if c.ParentID != nil && *c.ParentID == c.ID {
		fe.Add("parentId", "cannot reference the task itself")
	}
	return fe.Err()
}

// UpdateTask is a sparse patch. Null clears the nullable columns; it is
// rejected for the others. Text and urls are stored as given.
type UpdateTask struct {
	Title         patch.Field[string]
	Content       patch.Field[string]
	Status        patch.Field[string]
	Section       patch.Field[string]
	Order         patch.Field[int]
	URLs          patch.Field[[]string]
	DueDate       patch.Field[time.Time]
	WhenDate      patch.Field[time.Time]
	StartedDate   patch.Field[time.Time]
	CompletedDate patch.Field[time.Time]
	ProjectID     patch.Field[string]
	TypeID        patch.Field[string]
	ParentID      patch.Field[string]
}

func (u UpdateTask) Validate() error {
	var fe validation.FieldErrors
	if u.Title.Set && u.Title.Null {
		fe.Add("title", "cannot be null")
	}
	if u.Status.Set && u.Status.Null {
		fe.Add("status", "cannot be null")
	}
	if u.Section.Set && u.Section.Null {
		fe.Add("section", "cannot be null")
	}
	if u.Order.Set && u.Order.Null {
		fe.Add("order", "cannot be null")
	}
	if u.URLs.Set && u.URLs.Null {
		fe.Add("urls", "cannot be null")
	}
	return fe.Err()
}

// References lists the foreign ids the patch would set.
func (u UpdateTask) References() (projectID, typeID, parentID *string) {
	return u.ProjectID.Ptr(), u.TypeID.Ptr(), u.ParentID.Ptr()
}

// TaskFilter narrows List. Empty fields match everything.
type TaskFilter struct {
	Section   string
	ProjectID string
	TypeID    string
	ParentID  string
	Status    string
}

package projectsrepobridge

import (
	"github.com/jrazmi/yata/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/yata/core/repositories/projectsrepo"
	"github.com/jrazmi/yata/sdk/patch"
	"github.com/jrazmi/yata/sdk/validation"
)

type Project struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	UserID    string  `json:"userId"`
	CreatedAt string  `json:"createdAt"`
	UpdatedAt string  `json:"updatedAt"`
	DeletedAt *string `json:"deletedAt,omitempty"`
}

// ProjectWithTasks is the CRUD response shape. Tasks holds the live
// tasks that reference the project.
type ProjectWithTasks struct {
	Project
	Tasks []tasksrepobridge.Task `json:"tasks"`
}

type CreateProjectInput struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	UserID string `json:"userId"`
}

func (c CreateProjectInput) Validate() error {
	var fe validation.FieldErrors
	if !validation.Required(c.Name) {
		fe.Add("name", "is required")
	}
	return fe.Err()
}

type UpdateProjectInput struct {
	Name patch.Field[string] `json:"name,omitzero"`
}

func MarshalToBridge(p projectsrepo.Project) Project {
	return Project{
		ID:        p.ID,
		Name:      p.Name,
		UserID:    p.UserID,
		CreatedAt: validation.FormatISO8601(p.CreatedAt),
		UpdatedAt: validation.FormatISO8601(p.UpdatedAt),
		DeletedAt: validation.FormatISO8601Ptr(p.DeletedAt),
	}
}

func MarshalCreateToRepository(input CreateProjectInput) projectsrepo.CreateProject {
	return projectsrepo.CreateProject{
		ID:     input.ID,
		Name:   input.Name,
		UserID: input.UserID,
	}
}

func MarshalUpdateToRepository(input UpdateProjectInput) projectsrepo.UpdateProject {
	return projectsrepo.UpdateProject{Name: input.Name}
}

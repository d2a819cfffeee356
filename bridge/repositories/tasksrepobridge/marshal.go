package tasksrepobridge

import (
	"strings"
	"time"

	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/repositories/projectsrepo"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo"
	"github.com/jrazmi/yata/sdk/patch"
	"github.com/jrazmi/yata/sdk/validation"
)

func MarshalToBridge(task tasksrepo.Task) Task {
	urls := task.URLs
	if urls == nil {
		urls = []string{}
	}
	return Task{
		ID:            task.ID,
		Title:         task.Title,
		Content:       task.Content,
		Status:        task.Status,
		Section:       task.Section,
		Order:         task.Order,
		URLs:          urls,
		DueDate:       validation.FormatISO8601Ptr(task.DueDate),
		WhenDate:      validation.FormatISO8601Ptr(task.WhenDate),
		StartedDate:   validation.FormatISO8601Ptr(task.StartedDate),
		CompletedDate: validation.FormatISO8601Ptr(task.CompletedDate),
		UserID:        task.UserID,
		ProjectID:     task.ProjectID,
		TypeID:        task.TypeID,
		ParentID:      task.ParentID,
		CreatedAt:     validation.FormatISO8601(task.CreatedAt),
		UpdatedAt:     validation.FormatISO8601(task.UpdatedAt),
		DeletedAt:     validation.FormatISO8601Ptr(task.DeletedAt),
	}
}

// MarshalListToBridge converts a list of core models to bridge models
func MarshalListToBridge(tasks []tasksrepo.Task) []Task {
	bridgeTasks := make([]Task, len(tasks))
	for i, task := range tasks {
		bridgeTasks[i] = MarshalToBridge(task)
	}
	return bridgeTasks
}

func marshalProject(p projectsrepo.Project) *Project {
	return &Project{
		ID:        p.ID,
		Name:      p.Name,
		UserID:    p.UserID,
		CreatedAt: validation.FormatISO8601(p.CreatedAt),
		UpdatedAt: validation.FormatISO8601(p.UpdatedAt),
	}
}

func marshalType(t tasktypesrepo.TaskType) *Type {
	return &Type{
		ID:        t.ID,
		Name:      t.Name,
		Icon:      t.Icon,
		UserID:    t.UserID,
		CreatedAt: validation.FormatISO8601(t.CreatedAt),
		UpdatedAt: validation.FormatISO8601(t.UpdatedAt),
	}
}

// MarshalCreateToRepository converts bridge create input to repository
// input, parsing the dates.
func MarshalCreateToRepository(input CreateTaskInput) (tasksrepo.CreateTask, error) {
	var fe validation.FieldErrors
	out := tasksrepo.CreateTask{
		ID:            input.ID,
		Title:         input.Title,
		Content:       input.Content,
		Status:        input.Status,
		Section:       input.Section,
		Order:         input.Order,
		URLs:          input.URLs,
		DueDate:       parseDate(&fe, "dueDate", input.DueDate),
		WhenDate:      parseDate(&fe, "whenDate", input.WhenDate),
		StartedDate:   parseDate(&fe, "startedDate", input.StartedDate),
		CompletedDate: parseDate(&fe, "completedDate", input.CompletedDate),
		UserID:        input.UserID,
		ProjectID:     input.ProjectID,
		TypeID:        input.TypeID,
		ParentID:      input.ParentID,
	}
	if err := fe.Err(); err != nil {
		return tasksrepo.CreateTask{}, repositories.Invalid(err)
	}
	return out, nil
}

// MarshalUpdateToRepository converts bridge update input to repository input
func MarshalUpdateToRepository(input UpdateTaskInput) (tasksrepo.UpdateTask, error) {
	var fe validation.FieldErrors
	out := tasksrepo.UpdateTask{
		Title:         input.Title,
		Content:       input.Content,
		Status:        input.Status,
		Section:       input.Section,
		Order:         input.Order,
		URLs:          input.URLs,
		DueDate:       patchDate(&fe, "dueDate", input.DueDate),
		WhenDate:      patchDate(&fe, "whenDate", input.WhenDate),
		StartedDate:   patchDate(&fe, "startedDate", input.StartedDate),
		CompletedDate: patchDate(&fe, "completedDate", input.CompletedDate),
		ProjectID:     input.ProjectID,
		TypeID:        input.TypeID,
		ParentID:      input.ParentID,
	}
	if err := fe.Err(); err != nil {
		return tasksrepo.UpdateTask{}, repositories.Invalid(err)
	}
	return out, nil
}

func parseDate(fe *validation.FieldErrors, field string, s *string) *time.Time {
	t, err := validation.ParseISO8601Ptr(s)
	if err != nil {
		fe.Add(field, "%v", err)
	}
	return t
}

// patchDate treats "" like an absent key.
func patchDate(fe *validation.FieldErrors, field string, f patch.Field[string]) patch.Field[time.Time] {
	if f.HasValue() && strings.TrimSpace(f.Value) == "" {
		return patch.Field[time.Time]{}
	}
	out, err := patch.Map(f, validation.ParseISO8601)
	if err != nil {
		fe.Add(field, "%v", err)
	}
	return out
}

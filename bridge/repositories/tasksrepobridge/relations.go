package tasksrepobridge

import (
	"context"
	"errors"

	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/repositories/projectsrepo"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo"
)

// related turns a lookup of a missing or tombstoned row into nil.
func related[T any](row T, err error) (*T, error) {
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &row, nil
}

// withRelations embeds the relations of one task with a lookup each.
func (b *bridge) withRelations(ctx context.Context, userID string, task tasksrepo.Task) (TaskWithRelations, error) {
	out := TaskWithRelations{Task: MarshalToBridge(task)}

	if task.ProjectID != nil {
		p, err := related(b.projectRepository.Get(ctx, userID, *task.ProjectID))
		if err != nil {
			return TaskWithRelations{}, err
		}
		if p != nil {
			out.Project = marshalProject(*p)
		}
	}
	if task.TypeID != nil {
		t, err := related(b.typeRepository.Get(ctx, userID, *task.TypeID))
		if err != nil {
			return TaskWithRelations{}, err
		}
		if t != nil {
			out.Type = marshalType(*t)
		}
	}
	if task.ParentID != nil {
		parent, err := related(b.taskRepository.Get(ctx, userID, *task.ParentID))
		if err != nil {
			return TaskWithRelations{}, err
		}
		if parent != nil {
			p := MarshalToBridge(*parent)
			out.Parent = &p
		}
	}

	subtasks, err := b.taskRepository.List(ctx, userID, tasksrepo.TaskFilter{ParentID: task.ID})
	if err != nil {
		return TaskWithRelations{}, err
	}
	out.Subtasks = MarshalListToBridge(subtasks)
	return out, nil
}

// listWithRelations loads the caller's projects, types and tasks once and
// embeds from memory.
func (b *bridge) listWithRelations(ctx context.Context, userID string, tasks []tasksrepo.Task) ([]TaskWithRelations, error) {
	projects, err := b.projectRepository.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	types, err := b.typeRepository.List(ctx, userID)
	if err != nil {
		return nil, err
	}
	all, err := b.taskRepository.List(ctx, userID, tasksrepo.TaskFilter{})
	if err != nil {
		return nil, err
	}

	projectByID := make(map[string]projectsrepo.Project, len(projects))
	for _, p := range projects {
		projectByID[p.ID] = p
	}
	typeByID := make(map[string]tasktypesrepo.TaskType, len(types))
	for _, t := range types {
		typeByID[t.ID] = t
	}
	taskByID := make(map[string]tasksrepo.Task, len(all))
	children := make(map[string][]Task)
	for _, t := range all {
		taskByID[t.ID] = t
		if t.ParentID != nil {
			children[*t.ParentID] = append(children[*t.ParentID], MarshalToBridge(t))
		}
	}

	out := make([]TaskWithRelations, len(tasks))
	for i, task := range tasks {
		row := TaskWithRelations{Task: MarshalToBridge(task), Subtasks: children[task.ID]}
		if task.ProjectID != nil {
			if p, ok := projectByID[*task.ProjectID]; ok {
				row.Project = marshalProject(p)
			}
		}
		if task.TypeID != nil {
			if t, ok := typeByID[*task.TypeID]; ok {
				row.Type = marshalType(t)
			}
		}
		if task.ParentID != nil {
			if parent, ok := taskByID[*task.ParentID]; ok {
				p := MarshalToBridge(parent)
				row.Parent = &p
			}
		}
		if row.Subtasks == nil {
			row.Subtasks = []Task{}
		}
		out[i] = row
	}
	return out, nil
}

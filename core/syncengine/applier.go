package syncengine

import (
	"context"
	"errors"

	"github.com/jrazmi/yata/core/repositories/tasksrepo"
)

// applier writes one batch. It must run inside the transaction carried by
// ctx; it returns on the first failure and leaves rollback to the caller.
type applier struct {
	stores Stores
	userID string
}

func (a applier) apply(ctx context.Context, changes Changes) error {
	if err := a.applyProjects(ctx, changes.Projects); err != nil {
		return err
	}
	if err := a.applyTaskTypes(ctx, changes.TaskTypes); err != nil {
		return err
	}
	return a.applyTasks(ctx, changes.Tasks)
}

func (a applier) applyProjects(ctx context.Context, cs ProjectChanges) error {
	for _, input := range cs.Created {
		input.UserID = a.userID
		if _, err := a.stores.Projects.Create(ctx, input); err != nil {
			return opError(KindProjects, "create", input.ID, err)
		}
	}
	for _, p := range cs.Updated {
		if _, err := a.stores.Projects.Update(ctx, a.userID, p.ID, p.Fields); err != nil {
			return opError(KindProjects, "update", p.ID, err)
		}
	}
	if _, err := a.stores.Projects.Delete(ctx, a.userID, cs.Deleted); err != nil {
		return opError(KindProjects, "delete", "", err)
	}
	return nil
}

func (a applier) applyTaskTypes(ctx context.Context, cs TaskTypeChanges) error {
	for _, input := range cs.Created {
		input.UserID = a.userID
		if _, err := a.stores.TaskTypes.Create(ctx, input); err != nil {
			return opError(KindTaskTypes, "create", input.ID, err)
		}
	}
	for _, p := range cs.Updated {
		if _, err := a.stores.TaskTypes.Update(ctx, a.userID, p.ID, p.Fields); err != nil {
			return opError(KindTaskTypes, "update", p.ID, err)
		}
	}
	if _, err := a.stores.TaskTypes.Delete(ctx, a.userID, cs.Deleted); err != nil {
		return opError(KindTaskTypes, "delete", "", err)
	}
	return nil
}

func (a applier) applyTasks(ctx context.Context, cs TaskChanges) error {
	created, err := parentsFirst(cs.Created)
	if err != nil {
		return opError(KindTasks, "create", "", err)
	}

	for _, input := range created {
		input.UserID = a.userID
		if err := a.checkTaskRefs(ctx, input.ProjectID, input.TypeID, input.ParentID); err != nil {
			return opError(KindTasks, "create", input.ID, err)
		}
		if _, err := a.stores.Tasks.Create(ctx, input); err != nil {
			return opError(KindTasks, "create", input.ID, err)
		}
	}

	for _, p := range cs.Updated {
		current, err := a.stores.Tasks.Get(ctx, a.userID, p.ID)
		if err != nil {
			return opError(KindTasks, "update", p.ID, err)
		}
		projectID, typeID, parentID := changedRefs(current, p.Fields)
		if err := a.checkTaskRefs(ctx, projectID, typeID, parentID); err != nil {
			return opError(KindTasks, "update", p.ID, err)
		}
		if parentID != nil {
			cycle, err := a.stores.Tasks.WouldCycle(ctx, a.userID, p.ID, *parentID)
			if err != nil {
				return opError(KindTasks, "update", p.ID, err)
			}
			if cycle {
				return opError(KindTasks, "update", p.ID, validationf("parent %s would create a cycle", *parentID))
			}
		}
		if _, err := a.stores.Tasks.Update(ctx, a.userID, p.ID, p.Fields); err != nil {
			return opError(KindTasks, "update", p.ID, err)
		}
	}

	if _, err := a.stores.Tasks.Delete(ctx, a.userID, cs.Deleted); err != nil {
		return opError(KindTasks, "delete", "", err)
	}
	return nil
}

// checkTaskRefs requires every referenced row to be live and owned by the
// caller. Rows created earlier in the batch are already visible.
func (a applier) checkTaskRefs(ctx context.Context, projectID, typeID, parentID *string) error {
	if projectID != nil {
		if _, err := a.stores.Projects.Get(ctx, a.userID, *projectID); err != nil {
			return refError("project", *projectID, err)
		}
	}
	if typeID != nil {
		if _, err := a.stores.TaskTypes.Get(ctx, a.userID, *typeID); err != nil {
			return refError("task type", *typeID, err)
		}
	}
	if parentID != nil {
		if _, err := a.stores.Tasks.Get(ctx, a.userID, *parentID); err != nil {
			return refError("parent task", *parentID, err)
		}
	}
	return nil
}

// changedRefs returns the references the patch moves to a different row.
// A reference equal to the stored one is kept even when its target has
// since been deleted.
func changedRefs(current tasksrepo.Task, fields tasksrepo.UpdateTask) (projectID, typeID, parentID *string) {
	projectID, typeID, parentID = fields.References()
	return unlessStored(projectID, current.ProjectID),
		unlessStored(typeID, current.TypeID),
		unlessStored(parentID, current.ParentID)
}

func unlessStored(next, stored *string) *string {
	if next != nil && stored != nil && *next == *stored {
		return nil
	}
	return next
}

func refError(what, id string, err error) error {
	if errors.Is(err, ErrNotFound) {
		return notFoundf("%s %s does not exist", what, id)
	}
	return err
}

// parentsFirst orders created tasks so each parent created in the same
// batch precedes its children. Otherwise the client order is kept. A loop
// among the new tasks is a validation error.
func parentsFirst(tasks []tasksrepo.CreateTask) ([]tasksrepo.CreateTask, error) {
	if len(tasks) < 2 {
		return tasks, nil
	}

	index := make(map[string]int, len(tasks))
	for i, t := range tasks {
		if _, ok := index[t.ID]; !ok {
			index[t.ID] = i
		}
	}

	const (
		unvisited = iota
		visiting
		done
	)
	state := make([]int, len(tasks))
	ordered := make([]tasksrepo.CreateTask, 0, len(tasks))

	var visit func(i int) error
	visit = func(i int) error {
		switch state[i] {
		case done:
			return nil
		case visiting:
			return validationf("task %s is its own ancestor", tasks[i].ID)
		}
		state[i] = visiting
		if parent := tasks[i].ParentID; parent != nil {
			if j, ok := index[*parent]; ok && j != i {
				if err := visit(j); err != nil {
					return err
				}
			}
		}
		state[i] = done
		ordered = append(ordered, tasks[i])
		return nil
	}

	for i := range tasks {
		if err := visit(i); err != nil {
			return nil, err
		}
	}
	return ordered, nil
}

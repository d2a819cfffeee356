package syncbridge

import (
	"fmt"
	"time"

	"github.com/jrazmi/yata/bridge/repositories/projectsrepobridge"
	"github.com/jrazmi/yata/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/yata/bridge/repositories/tasktypesrepobridge"
	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/repositories/projectsrepo"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo"
	"github.com/jrazmi/yata/core/syncengine"
	"github.com/jrazmi/yata/sdk/validation"
)

func parseLastPulledAt(s *string) (*time.Time, error) {
	t, err := validation.ParseISO8601Ptr(s)
	if err != nil {
		var fe validation.FieldErrors
		fe.Add("lastPulledAt", "%v", err)
		return nil, repositories.Invalid(fe)
	}
	return t, nil
}

// checkRecord rejects a created record without an id, or one claiming a
// different owner than the caller.
func checkRecord(fe *validation.FieldErrors, path string, id, owner, userID string) {
	if !validation.Required(id) {
		fe.Add(path+".id", "is required")
	}
	if owner != "" && owner != userID {
		fe.Add(path+".userId", "does not match the caller")
	}
}

// MarshalChangesToCore converts a decoded batch for userID. A nil batch is
// empty.
func MarshalChangesToCore(userID string, in *ChangesInput) (syncengine.Changes, error) {
	var out syncengine.Changes
	if in == nil {
		return out, nil
	}
	var fe validation.FieldErrors

	for i, p := range in.Projects.Created {
		path := fmt.Sprintf("projects.created[%d]", i)
		checkRecord(&fe, path, p.ID, p.UserID, userID)
		out.Projects.Created = append(out.Projects.Created, projectsrepobridge.MarshalCreateToRepository(p))
	}
	for i, p := range in.Projects.Updated {
		if !validation.Required(p.ID) {
			fe.Add(fmt.Sprintf("projects.updated[%d].id", i), "is required")
		}
		out.Projects.Updated = append(out.Projects.Updated, syncengine.Patch[projectsrepo.UpdateProject]{
			ID:     p.ID,
			Fields: projectsrepobridge.MarshalUpdateToRepository(p.UpdateProjectInput),
		})
	}
	out.Projects.Deleted = in.Projects.Deleted

	for i, t := range in.TaskTypes.Created {
		path := fmt.Sprintf("taskTypes.created[%d]", i)
		checkRecord(&fe, path, t.ID, t.UserID, userID)
		out.TaskTypes.Created = append(out.TaskTypes.Created, tasktypesrepobridge.MarshalCreateToRepository(t))
	}
	for i, t := range in.TaskTypes.Updated {
		if !validation.Required(t.ID) {
			fe.Add(fmt.Sprintf("taskTypes.updated[%d].id", i), "is required")
		}
		out.TaskTypes.Updated = append(out.TaskTypes.Updated, syncengine.Patch[tasktypesrepo.UpdateTaskType]{
			ID:     t.ID,
			Fields: tasktypesrepobridge.MarshalUpdateToRepository(t.UpdateTaskTypeInput),
		})
	}
	out.TaskTypes.Deleted = in.TaskTypes.Deleted

	for i, t := range in.Tasks.Created {
		path := fmt.Sprintf("tasks.created[%d]", i)
		checkRecord(&fe, path, t.ID, t.UserID, userID)
		create, err := tasksrepobridge.MarshalCreateToRepository(t)
		if err != nil {
			return syncengine.Changes{}, fmt.Errorf("%s: %w", path, err)
		}
		out.Tasks.Created = append(out.Tasks.Created, create)
	}
	for i, t := range in.Tasks.Updated {
		path := fmt.Sprintf("tasks.updated[%d]", i)
		if !validation.Required(t.ID) {
			fe.Add(path+".id", "is required")
		}
		update, err := tasksrepobridge.MarshalUpdateToRepository(t.UpdateTaskInput)
		if err != nil {
			return syncengine.Changes{}, fmt.Errorf("%s: %w", path, err)
		}
		out.Tasks.Updated = append(out.Tasks.Updated, syncengine.Patch[tasksrepo.UpdateTask]{ID: t.ID, Fields: update})
	}
	out.Tasks.Deleted = in.Tasks.Deleted

	if err := fe.Err(); err != nil {
		return syncengine.Changes{}, repositories.Invalid(err)
	}
	return out, nil
}

func marshalDelta[T any, W any](d syncengine.Delta[T], fn func(T) W) Delta[W] {
	out := Delta[W]{
		Created: make([]W, len(d.Created)),
		Updated: make([]W, len(d.Updated)),
		Deleted: d.Deleted,
	}
	for i, row := range d.Created {
		out.Created[i] = fn(row)
	}
	for i, row := range d.Updated {
		out.Updated[i] = fn(row)
	}
	if out.Deleted == nil {
		out.Deleted = []string{}
	}
	return out
}

// MarshalResultToBridge renders a sync result for the wire.
func MarshalResultToBridge(res syncengine.Result) SyncResponse {
	return SyncResponse{
		Changes: ChangesOutput{
			Tasks:     marshalDelta(res.Changes.Tasks, tasksrepobridge.MarshalToBridge),
			Projects:  marshalDelta(res.Changes.Projects, projectsrepobridge.MarshalToBridge),
			TaskTypes: marshalDelta(res.Changes.TaskTypes, tasktypesrepobridge.MarshalToBridge),
		},
		Timestamp: validation.FormatISO8601(res.Timestamp),
	}
}

package tasksrepobridge

import (
	"context"
	"net/http"

	"github.com/google/uuid"
	"github.com/jrazmi/yata/bridge/scaffolding/errs"
	"github.com/jrazmi/yata/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/yata/bridge/scaffolding/mid"
	"github.com/jrazmi/yata/core/repositories/projectsrepo"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo"
	"github.com/jrazmi/yata/core/syncengine"
	"github.com/jrazmi/yata/infrastructure/web"
	"github.com/jrazmi/yata/sdk/patch"
)

type bridge struct {
	taskRepository    *tasksrepo.Repository
	projectRepository *projectsrepo.Repository
	typeRepository    *tasktypesrepo.Repository
	engine            *syncengine.Engine
}

func newBridge(cfg Config) *bridge {
	return &bridge{
		taskRepository:    cfg.Repository,
		projectRepository: cfg.Projects,
		typeRepository:    cfg.TaskTypes,
		engine:            cfg.Engine,
	}
}

// respond embeds the relations of task; created answers 201.
func (b *bridge) respond(ctx context.Context, userID string, task tasksrepo.Task, created bool) web.Encoder {
	out, err := b.withRelations(ctx, userID, task)
	if err != nil {
		return errs.FromError(err)
	}
	if created {
		return fopbridge.NewCreatedResponse(out)
	}
	return fopbridge.NewRecordResponse(out)
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	q := fopbridge.QueryFilter(r, "section", "projectId", "typeId", "parentId", "status")
	tasks, err := b.taskRepository.List(ctx, userID, tasksrepo.TaskFilter{
		Section:   q["section"],
		ProjectID: q["projectId"],
		TypeID:    q["typeId"],
		ParentID:  q["parentId"],
		Status:    q["status"],
	})
	if err != nil {
		return errs.FromError(err)
	}
	out, err := b.listWithRelations(ctx, userID, tasks)
	if err != nil {
		return errs.FromError(err)
	}
	return fopbridge.ListResponse[TaskWithRelations](out)
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	task, err := b.taskRepository.Get(ctx, userID, web.Param(r, "task_id"))
	if err != nil {
		return errs.FromError(err)
	}
	return b.respond(ctx, userID, task, false)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	var input CreateTaskInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.Invalid, err)
	}
	create, err := MarshalCreateToRepository(input)
	if err != nil {
		return errs.FromError(err)
	}
	if create.ID == "" {
		create.ID = uuid.NewString()
	}

	err = b.engine.Apply(ctx, userID, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Created: []tasksrepo.CreateTask{create}},
	})
	if err != nil {
		return errs.FromError(err)
	}

	task, err := b.taskRepository.Get(ctx, userID, create.ID)
	if err != nil {
		return errs.FromError(err)
	}
	return b.respond(ctx, userID, task, true)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}
	id := web.Param(r, "task_id")

	var input UpdateTaskInput
	if err := web.DecodeOptional(r, &input); err != nil {
		return errs.New(errs.Invalid, err)
	}
	update, err := MarshalUpdateToRepository(input)
	if err != nil {
		return errs.FromError(err)
	}

	err = b.engine.Apply(ctx, userID, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Updated: []syncengine.Patch[tasksrepo.UpdateTask]{{ID: id, Fields: update}}},
	})
	if err != nil {
		return errs.FromError(err)
	}

	task, err := b.taskRepository.Get(ctx, userID, id)
	if err != nil {
		return errs.FromError(err)
	}
	return b.respond(ctx, userID, task, false)
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}
	id := web.Param(r, "task_id")

	n, err := b.taskRepository.Delete(ctx, userID, []string{id})
	if err != nil {
		return errs.FromError(err)
	}
	if n == 0 {
		return errs.Newf(errs.NotFound, "Task not found")
	}
	return fopbridge.NewSuccessResponse()
}

// httpReorder moves every listed task in one transaction.
func (b *bridge) httpReorder(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	var input ReorderInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.Invalid, err)
	}

	patches := make([]syncengine.Patch[tasksrepo.UpdateTask], len(input))
	for i, item := range input {
		patches[i] = syncengine.Patch[tasksrepo.UpdateTask]{
			ID: item.ID,
			Fields: tasksrepo.UpdateTask{
				Section: patch.Value(item.Section),
				Order:   patch.Value(item.Order),
			},
		}
	}

	err = b.engine.Apply(ctx, userID, syncengine.Changes{
		Tasks: syncengine.TaskChanges{Updated: patches},
	})
	if err != nil {
		return errs.FromError(err)
	}
	return fopbridge.NewSuccessResponse()
}

package tasktypesrepobridge

import (
	"context"
	"net/http"

	"github.com/jrazmi/yata/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/yata/bridge/scaffolding/errs"
	"github.com/jrazmi/yata/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/yata/bridge/scaffolding/mid"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo"
	"github.com/jrazmi/yata/infrastructure/web"
)

type bridge struct {
	typeRepository *tasktypesrepo.Repository
	taskRepository *tasksrepo.Repository
}

func newBridge(cfg Config) *bridge {
	return &bridge{
		typeRepository: cfg.Repository,
		taskRepository: cfg.Tasks,
	}
}

// withTasks embeds the live tasks of each type. A single type reads
// only its own tasks.
func (b *bridge) withTasks(ctx context.Context, userID string, rows ...tasktypesrepo.TaskType) ([]TaskTypeWithTasks, error) {
	var filter tasksrepo.TaskFilter
	if len(rows) == 1 {
		filter.TypeID = rows[0].ID
	}
	tasks, err := b.taskRepository.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]tasksrepobridge.Task)
	for _, t := range tasks {
		if t.TypeID != nil {
			grouped[*t.TypeID] = append(grouped[*t.TypeID], tasksrepobridge.MarshalToBridge(t))
		}
	}

	out := make([]TaskTypeWithTasks, len(rows))
	for i, row := range rows {
		owned := grouped[row.ID]
		if owned == nil {
			owned = []tasksrepobridge.Task{}
		}
		out[i] = TaskTypeWithTasks{TaskType: MarshalToBridge(row), Tasks: owned}
	}
	return out, nil
}

func (b *bridge) respond(ctx context.Context, userID string, row tasktypesrepo.TaskType, created bool) web.Encoder {
	out, err := b.withTasks(ctx, userID, row)
	if err != nil {
		return errs.FromError(err)
	}
	if created {
		return fopbridge.NewCreatedResponse(out[0])
	}
	return fopbridge.NewRecordResponse(out[0])
}

func (b *bridge) httpList(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	types, err := b.typeRepository.List(ctx, userID)
	if err != nil {
		return errs.FromError(err)
	}
	out, err := b.withTasks(ctx, userID, types...)
	if err != nil {
		return errs.FromError(err)
	}
	return fopbridge.ListResponse[TaskTypeWithTasks](out)
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	taskType, err := b.typeRepository.Get(ctx, userID, web.Param(r, "type_id"))
	if err != nil {
		return errs.FromError(err)
	}
	return b.respond(ctx, userID, taskType, false)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	var input CreateTaskTypeInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.Invalid, err)
	}
	create := MarshalCreateToRepository(input)
	create.UserID = userID

	taskType, err := b.typeRepository.Create(ctx, create)
	if err != nil {
		return errs.FromError(err)
	}
	return b.respond(ctx, userID, taskType, true)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	var input UpdateTaskTypeInput
	if err := web.DecodeOptional(r, &input); err != nil {
		return errs.New(errs.Invalid, err)
	}

	taskType, err := b.typeRepository.Update(ctx, userID, web.Param(r, "type_id"), MarshalUpdateToRepository(input))
	if err != nil {
		return errs.FromError(err)
	}
	return b.respond(ctx, userID, taskType, false)
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	n, err := b.typeRepository.Delete(ctx, userID, []string{web.Param(r, "type_id")})
	if err != nil {
		return errs.FromError(err)
	}
	if n == 0 {
		return errs.Newf(errs.NotFound, "Task type not found")
	}
	return fopbridge.NewSuccessResponse()
}

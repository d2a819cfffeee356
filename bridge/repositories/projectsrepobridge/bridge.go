package projectsrepobridge

import (
	"context"
	"net/http"

	"github.com/jrazmi/yata/bridge/repositories/tasksrepobridge"
	"github.com/jrazmi/yata/bridge/scaffolding/errs"
	"github.com/jrazmi/yata/bridge/scaffolding/fopbridge"
	"github.com/jrazmi/yata/bridge/scaffolding/mid"
	"github.com/jrazmi/yata/core/repositories/projectsrepo"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/infrastructure/web"
)

type bridge struct {
	projectRepository *projectsrepo.Repository
	taskRepository    *tasksrepo.Repository
}

func newBridge(cfg Config) *bridge {
	return &bridge{
		projectRepository: cfg.Repository,
		taskRepository:    cfg.Tasks,
	}
}

// withTasks embeds the live tasks of each project. A single project reads
// only its own tasks.
func (b *bridge) withTasks(ctx context.Context, userID string, rows ...projectsrepo.Project) ([]ProjectWithTasks, error) {
	var filter tasksrepo.TaskFilter
	if len(rows) == 1 {
		filter.ProjectID = rows[0].ID
	}
	tasks, err := b.taskRepository.List(ctx, userID, filter)
	if err != nil {
		return nil, err
	}

	grouped := make(map[string][]tasksrepobridge.Task)
	for _, t := range tasks {
		if t.ProjectID != nil {
			grouped[*t.ProjectID] = append(grouped[*t.ProjectID], tasksrepobridge.MarshalToBridge(t))
		}
	}

	out := make([]ProjectWithTasks, len(rows))
	for i, row := range rows {
		owned := grouped[row.ID]
		if owned == nil {
			owned = []tasksrepobridge.Task{}
		}
		out[i] = ProjectWithTasks{Project: MarshalToBridge(row), Tasks: owned}
	}
	return out, nil
}

func (b *bridge) respond(ctx context.Context, userID string, row projectsrepo.Project, created bool) web.Encoder {
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

	projects, err := b.projectRepository.List(ctx, userID)
	if err != nil {
		return errs.FromError(err)
	}
	out, err := b.withTasks(ctx, userID, projects...)
	if err != nil {
		return errs.FromError(err)
	}
	return fopbridge.ListResponse[ProjectWithTasks](out)
}

func (b *bridge) httpGetByID(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	project, err := b.projectRepository.Get(ctx, userID, web.Param(r, "project_id"))
	if err != nil {
		return errs.FromError(err)
	}
	return b.respond(ctx, userID, project, false)
}

func (b *bridge) httpCreate(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	var input CreateProjectInput
	if err := web.Decode(r, &input); err != nil {
		return errs.New(errs.Invalid, err)
	}
	create := MarshalCreateToRepository(input)
	create.UserID = userID

	project, err := b.projectRepository.Create(ctx, create)
	if err != nil {
		return errs.FromError(err)
	}
	return b.respond(ctx, userID, project, true)
}

func (b *bridge) httpUpdate(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	var input UpdateProjectInput
	if err := web.DecodeOptional(r, &input); err != nil {
		return errs.New(errs.Invalid, err)
	}

	project, err := b.projectRepository.Update(ctx, userID, web.Param(r, "project_id"), MarshalUpdateToRepository(input))
	if err != nil {
		return errs.FromError(err)
	}
	return b.respond(ctx, userID, project, false)
}

func (b *bridge) httpDelete(ctx context.Context, r *http.Request) web.Encoder {
	userID, err := mid.GetUserID(ctx)
	if err != nil {
		return errs.New(errs.Unauthenticated, err)
	}

	n, err := b.projectRepository.Delete(ctx, userID, []string{web.Param(r, "project_id")})
	if err != nil {
		return errs.FromError(err)
	}
	if n == 0 {
		return errs.Newf(errs.NotFound, "Project not found")
	}
	return fopbridge.NewSuccessResponse()
}

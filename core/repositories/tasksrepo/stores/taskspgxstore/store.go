package taskspgxstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/infrastructure/postgresdb"
	"github.com/jrazmi/yata/sdk/logger"
	"github.com/jrazmi/yata/sdk/patch"
)

const columns = `id, title, content, status, section, sort_order, urls,
	due_date, when_date, started_date, completed_date,
	user_id, project_id, type_id, parent_id,
	created_at, updated_at, deleted_at`

const bumpUpdatedAt = `GREATEST(now(), updated_at + interval '1 microsecond')`

type Store struct {
	log  *logger.Logger
	pool *postgresdb.Pool
}

func NewStore(log *logger.Logger, pool *postgresdb.Pool) *Store {
	return &Store{
		log:  log,
		pool: pool,
	}
}

func (s *Store) Create(ctx context.Context, input tasksrepo.CreateTask) (tasksrepo.Task, error) {
	query := `INSERT INTO tasks (
			id, title, content, status, section, sort_order, urls,
			due_date, when_date, started_date, completed_date,
			user_id, project_id, type_id, parent_id,
			created_at, updated_at
		) VALUES (
			@id, @title, @content, @status, @section, @sort_order, @urls,
			@due_date, @when_date, @started_date, @completed_date,
			@user_id, @project_id, @type_id, @parent_id,
			now(), now()
		)
		RETURNING ` + columns

	args := pgx.NamedArgs{
		"id":             input.ID,
		"title":          input.Title,
		"content":        input.Content,
		"status":         input.Status,
		"section":        input.Section,
		"sort_order":     input.Order,
		"urls":           input.URLs,
		"due_date":       input.DueDate,
		"when_date":      input.WhenDate,
		"started_date":   input.StartedDate,
		"completed_date": input.CompletedDate,
		"user_id":        input.UserID,
		"project_id":     input.ProjectID,
		"type_id":        input.TypeID,
		"parent_id":      input.ParentID,
	}

	return s.queryOne(ctx, query, args)
}

func (s *Store) Get(ctx context.Context, userID, id string) (tasksrepo.Task, error) {
	query := `SELECT ` + columns + `
		FROM tasks
		WHERE id = @id AND user_id = @user_id AND deleted_at IS NULL`

	return s.queryOne(ctx, query, pgx.NamedArgs{"id": id, "user_id": userID})
}

func (s *Store) List(ctx context.Context, userID string, filter tasksrepo.TaskFilter) ([]tasksrepo.Task, error) {
	where := []string{"user_id = @user_id", "deleted_at IS NULL"}
	args := pgx.NamedArgs{"user_id": userID}

	if filter.Section != "" {
		where = append(where, "section = @section")
		args["section"] = filter.Section
	}
	if filter.ProjectID != "" {
		where = append(where, "project_id = @project_id")
		args["project_id"] = filter.ProjectID
	}
	if filter.TypeID != "" {
		where = append(where, "type_id = @type_id")
		args["type_id"] = filter.TypeID
	}
	if filter.ParentID != "" {
		where = append(where, "parent_id = @parent_id")
		args["parent_id"] = filter.ParentID
	}
	if filter.Status != "" {
		where = append(where, "status = @status")
		args["status"] = filter.Status
	}

	query := fmt.Sprintf(`SELECT %s
		FROM tasks
		WHERE %s
		ORDER BY section, sort_order, created_at, id`, columns, strings.Join(where, " AND "))

	return s.queryMany(ctx, query, args)
}

func (s *Store) Update(ctx context.Context, userID, id string, input tasksrepo.UpdateTask) (tasksrepo.Task, error) {
	u := updater{
		sets: []string{"updated_at = " + bumpUpdatedAt},
		args: pgx.NamedArgs{"id": id, "user_id": userID},
	}

	setField(&u, "title", input.Title)
	setField(&u, "content", input.Content)
	setField(&u, "status", input.Status)
	setField(&u, "section", input.Section)
	setField(&u, "sort_order", input.Order)
	setField(&u, "urls", input.URLs)
	setField(&u, "due_date", input.DueDate)
	setField(&u, "when_date", input.WhenDate)
	setField(&u, "started_date", input.StartedDate)
	setField(&u, "completed_date", input.CompletedDate)
	setField(&u, "project_id", input.ProjectID)
	setField(&u, "type_id", input.TypeID)
	setField(&u, "parent_id", input.ParentID)

	query := fmt.Sprintf(`UPDATE tasks SET %s
		WHERE id = @id AND user_id = @user_id AND deleted_at IS NULL
		RETURNING %s`, strings.Join(u.sets, ", "), columns)

	return s.queryOne(ctx, query, u.args)
}

func (s *Store) Delete(ctx context.Context, userID string, ids []string) (int64, error) {
	query := `UPDATE tasks
		SET deleted_at = ` + bumpUpdatedAt + `, updated_at = ` + bumpUpdatedAt + `
		WHERE user_id = @user_id AND id = ANY(@ids) AND deleted_at IS NULL`

	tag, err := postgresdb.Conn(ctx, s.pool).Exec(ctx, query, pgx.NamedArgs{"user_id": userID, "ids": ids})
	if err != nil {
		return 0, repositories.FromPostgres(err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) ListChangedSince(ctx context.Context, userID string, since time.Time) ([]tasksrepo.Task, error) {
	query := `SELECT ` + columns + `
		FROM tasks
		WHERE user_id = @user_id AND updated_at > @since
		ORDER BY updated_at, id`

	return s.queryMany(ctx, query, pgx.NamedArgs{"user_id": userID, "since": since})
}

func (s *Store) PurgeDeleted(ctx context.Context, before time.Time, limit int) (int64, error) {
	query := `DELETE FROM tasks
		WHERE id IN (
			SELECT id FROM tasks
			WHERE deleted_at IS NOT NULL AND deleted_at < @before
			ORDER BY deleted_at
			LIMIT @limit
		)`

	tag, err := postgresdb.Conn(ctx, s.pool).Exec(ctx, query, pgx.NamedArgs{"before": before, "limit": limit})
	if err != nil {
		return 0, repositories.FromPostgres(err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) Lineage(ctx context.Context, userID, id string) ([]string, error) {
	query := `WITH RECURSIVE lineage (id, parent_id) AS (
			SELECT id, parent_id FROM tasks WHERE id = @id AND user_id = @user_id
			UNION
			SELECT t.id, t.parent_id
			FROM tasks t
			JOIN lineage l ON t.id = l.parent_id
			WHERE t.user_id = @user_id
		)
		SELECT id FROM lineage`

	rows, err := postgresdb.Conn(ctx, s.pool).Query(ctx, query, pgx.NamedArgs{"id": id, "user_id": userID})
	if err != nil {
		return nil, repositories.FromPostgres(err)
	}

	ids, err := pgx.CollectRows(rows, pgx.RowTo[string])
	if err != nil {
		return nil, repositories.FromPostgres(err)
	}
	return ids, nil
}

type updater struct {
	sets []string
	args pgx.NamedArgs
}

func setField[T any](u *updater, column string, f patch.Field[T]) {
	switch {
	case !f.Set:
	case f.Null:
		u.sets = append(u.sets, column+" = NULL")
	default:
		u.sets = append(u.sets, column+" = @"+column)
		u.args[column] = f.Value
	}
}

func (s *Store) queryOne(ctx context.Context, query string, args pgx.NamedArgs) (tasksrepo.Task, error) {
	rows, err := postgresdb.Conn(ctx, s.pool).Query(ctx, query, args)
	if err != nil {
		return tasksrepo.Task{}, repositories.FromPostgres(err)
	}

	task, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[tasksrepo.Task])
	if err != nil {
		return tasksrepo.Task{}, repositories.FromPostgres(err)
	}
	return task, nil
}

func (s *Store) queryMany(ctx context.Context, query string, args pgx.NamedArgs) ([]tasksrepo.Task, error) {
	rows, err := postgresdb.Conn(ctx, s.pool).Query(ctx, query, args)
	if err != nil {
		return nil, repositories.FromPostgres(err)
	}

	tasks, err := pgx.CollectRows(rows, pgx.RowToStructByName[tasksrepo.Task])
	if err != nil {
		return nil, repositories.FromPostgres(err)
	}
	return tasks, nil
}

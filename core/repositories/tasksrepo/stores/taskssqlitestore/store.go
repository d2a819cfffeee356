package taskssqlitestore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/infrastructure/sqlitedb"
	"github.com/jrazmi/yata/sdk/logger"
	"github.com/jrazmi/yata/sdk/patch"
)

const columns = `id, title, content, status, section, sort_order, urls,
	due_date, when_date, started_date, completed_date,
	user_id, project_id, type_id, parent_id,
	created_at, updated_at, deleted_at`

type Store struct {
	log *logger.Logger
	db  *sqlitedb.DB
}

func NewStore(log *logger.Logger, db *sqlitedb.DB) *Store {
	return &Store{
		log: log,
		db:  db,
	}
}

func (s *Store) Create(ctx context.Context, input tasksrepo.CreateTask) (tasksrepo.Task, error) {
	now := sqlitedb.Micros(s.db.Now())

	query := `INSERT INTO tasks (
			id, title, content, status, section, sort_order, urls,
			due_date, when_date, started_date, completed_date,
			user_id, project_id, type_id, parent_id,
			created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING ` + columns

	return s.queryOne(ctx, query,
		input.ID, input.Title, input.Content, input.Status, input.Section, input.Order,
		sqlitedb.JSON[[]string]{Data: input.URLs},
		sqlitedb.NullMicros(input.DueDate),
		sqlitedb.NullMicros(input.WhenDate),
		sqlitedb.NullMicros(input.StartedDate),
		sqlitedb.NullMicros(input.CompletedDate),
		input.UserID, input.ProjectID, input.TypeID, input.ParentID,
		now, now,
	)
}

func (s *Store) Get(ctx context.Context, userID, id string) (tasksrepo.Task, error) {
	query := `SELECT ` + columns + `
		FROM tasks
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`

	return s.queryOne(ctx, query, id, userID)
}

func (s *Store) List(ctx context.Context, userID string, filter tasksrepo.TaskFilter) ([]tasksrepo.Task, error) {
	where := []string{"user_id = ?", "deleted_at IS NULL"}
	args := []any{userID}

	if filter.Section != "" {
		where = append(where, "section = ?")
		args = append(args, filter.Section)
	}
	if filter.ProjectID != "" {
		where = append(where, "project_id = ?")
		args = append(args, filter.ProjectID)
	}
	if filter.TypeID != "" {
		where = append(where, "type_id = ?")
		args = append(args, filter.TypeID)
	}
	if filter.ParentID != "" {
		where = append(where, "parent_id = ?")
		args = append(args, filter.ParentID)
	}
	if filter.Status != "" {
		where = append(where, "status = ?")
		args = append(args, filter.Status)
	}

	query := `SELECT ` + columns + `
		FROM tasks
		WHERE ` + strings.Join(where, " AND ") + `
		ORDER BY section, sort_order, created_at, id`

	return s.queryMany(ctx, query, args...)
}

func (s *Store) Update(ctx context.Context, userID, id string, input tasksrepo.UpdateTask) (tasksrepo.Task, error) {
	u := updater{
		sets: []string{"updated_at = MAX(?, updated_at + 1)"},
		args: []any{sqlitedb.Micros(s.db.Now())},
	}

	setField(&u, "title", input.Title, identity[string])
	setField(&u, "content", input.Content, identity[string])
	setField(&u, "status", input.Status, identity[string])
	setField(&u, "section", input.Section, identity[string])
	setField(&u, "sort_order", input.Order, identity[int])
	setField(&u, "urls", input.URLs, func(v []string) any { return sqlitedb.JSON[[]string]{Data: v} })
	setField(&u, "due_date", input.DueDate, micros)
	setField(&u, "when_date", input.WhenDate, micros)
	setField(&u, "started_date", input.StartedDate, micros)
	setField(&u, "completed_date", input.CompletedDate, micros)
	setField(&u, "project_id", input.ProjectID, identity[string])
	setField(&u, "type_id", input.TypeID, identity[string])
	setField(&u, "parent_id", input.ParentID, identity[string])

	query := `UPDATE tasks SET ` + strings.Join(u.sets, ", ") + `
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
		RETURNING ` + columns

	return s.queryOne(ctx, query, append(u.args, id, userID)...)
}

func (s *Store) Delete(ctx context.Context, userID string, ids []string) (int64, error) {
	now := sqlitedb.Micros(s.db.Now())

	query := `UPDATE tasks
		SET deleted_at = MAX(?, updated_at + 1), updated_at = MAX(?, updated_at + 1)
		WHERE user_id = ? AND deleted_at IS NULL AND id IN (SELECT value FROM json_each(?))`

	res, err := sqlitedb.Conn(ctx, s.db).ExecContext(ctx, query, now, now, userID, sqlitedb.JSON[[]string]{Data: ids})
	if err != nil {
		return 0, repositories.FromSQLite(err)
	}
	return res.RowsAffected()
}

func (s *Store) ListChangedSince(ctx context.Context, userID string, since time.Time) ([]tasksrepo.Task, error) {
	query := `SELECT ` + columns + `
		FROM tasks
		WHERE user_id = ? AND updated_at > ?
		ORDER BY updated_at, id`

	return s.queryMany(ctx, query, userID, sqlitedb.Micros(since))
}

func (s *Store) PurgeDeleted(ctx context.Context, before time.Time, limit int) (int64, error) {
	query := `DELETE FROM tasks
		WHERE id IN (
			SELECT id FROM tasks
			WHERE deleted_at IS NOT NULL AND deleted_at < ?
			ORDER BY deleted_at
			LIMIT ?
		)`

	res, err := sqlitedb.Conn(ctx, s.db).ExecContext(ctx, query, sqlitedb.Micros(before), limit)
	if err != nil {
		return 0, repositories.FromSQLite(err)
	}
	return res.RowsAffected()
}

func (s *Store) Lineage(ctx context.Context, userID, id string) ([]string, error) {
	query := `WITH RECURSIVE lineage (id, parent_id) AS (
			SELECT id, parent_id FROM tasks WHERE id = ? AND user_id = ?
			UNION
			SELECT t.id, t.parent_id
			FROM tasks t
			JOIN lineage l ON t.id = l.parent_id
			WHERE t.user_id = ?
		)
		SELECT id FROM lineage`

	rows, err := sqlitedb.Conn(ctx, s.db).QueryContext(ctx, query, id, userID, userID)
	if err != nil {
		return nil, repositories.FromSQLite(err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var ancestor string
		if err := rows.Scan(&ancestor); err != nil {
			return nil, repositories.FromSQLite(err)
		}
		ids = append(ids, ancestor)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.FromSQLite(err)
	}
	return ids, nil
}

type updater struct {
	sets []string
	args []any
}

func setField[T any](u *updater, column string, f patch.Field[T], encode func(T) any) {
	switch {
	case !f.Set:
	case f.Null:
		u.sets = append(u.sets, column+" = NULL")
	default:
		u.sets = append(u.sets, column+" = ?")
		u.args = append(u.args, encode(f.Value))
	}
}

func identity[T any](v T) any { return v }

func micros(t time.Time) any { return sqlitedb.Micros(t) }

type scanner interface {
	Scan(dest ...any) error
}

func scanTask(row scanner) (tasksrepo.Task, error) {
	var (
		t                                  tasksrepo.Task
		content, project, taskType, parent sql.NullString
		urls                               sqlitedb.JSON[[]string]
		due, when, started, completed      sql.NullInt64
		created, updated                   int64
		deleted                            sql.NullInt64
	)

	err := row.Scan(
		&t.ID, &t.Title, &content, &t.Status, &t.Section, &t.Order, &urls,
		&due, &when, &started, &completed,
		&t.UserID, &project, &taskType, &parent,
		&created, &updated, &deleted,
	)
	if err != nil {
		return tasksrepo.Task{}, err
	}

	t.Content = nullString(content)
	t.URLs = urls.Data
	if t.URLs == nil {
		t.URLs = []string{}
	}
	t.DueDate = sqlitedb.FromNullMicros(due)
	t.WhenDate = sqlitedb.FromNullMicros(when)
	t.StartedDate = sqlitedb.FromNullMicros(started)
	t.CompletedDate = sqlitedb.FromNullMicros(completed)
	t.ProjectID = nullString(project)
	t.TypeID = nullString(taskType)
	t.ParentID = nullString(parent)
	t.CreatedAt = sqlitedb.FromMicros(created)
	t.UpdatedAt = sqlitedb.FromMicros(updated)
	t.DeletedAt = sqlitedb.FromNullMicros(deleted)
	return t, nil
}

func nullString(v sql.NullString) *string {
	if !v.Valid {
		return nil
	}
	return &v.String
}

func (s *Store) queryOne(ctx context.Context, query string, args ...any) (tasksrepo.Task, error) {
	t, err := scanTask(sqlitedb.Conn(ctx, s.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		return tasksrepo.Task{}, repositories.FromSQLite(err)
	}
	return t, nil
}

func (s *Store) queryMany(ctx context.Context, query string, args ...any) ([]tasksrepo.Task, error) {
	rows, err := sqlitedb.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repositories.FromSQLite(err)
	}
	defer rows.Close()

	var tasks []tasksrepo.Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, repositories.FromSQLite(err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.FromSQLite(err)
	}
	return tasks, nil
}

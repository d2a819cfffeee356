package tasktypessqlitestore

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo"
	"github.com/jrazmi/yata/infrastructure/sqlitedb"
	"github.com/jrazmi/yata/sdk/logger"
)

const columns = `id, name, icon, user_id, created_at, updated_at, deleted_at`

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

func (s *Store) Create(ctx context.Context, input tasktypesrepo.CreateTaskType) (tasktypesrepo.TaskType, error) {
	now := sqlitedb.Micros(s.db.Now())

	query := `INSERT INTO task_types (id, name, icon, user_id, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		RETURNING ` + columns

	return s.queryOne(ctx, query, input.ID, input.Name, input.Icon, input.UserID, now, now)
}

func (s *Store) Get(ctx context.Context, userID, id string) (tasktypesrepo.TaskType, error) {
	query := `SELECT ` + columns + `
		FROM task_types
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL`

	return s.queryOne(ctx, query, id, userID)
}

func (s *Store) List(ctx context.Context, userID string) ([]tasktypesrepo.TaskType, error) {
	query := `SELECT ` + columns + `
		FROM task_types
		WHERE user_id = ? AND deleted_at IS NULL
		ORDER BY created_at, id`

	return s.queryMany(ctx, query, userID)
}

func (s *Store) Update(ctx context.Context, userID, id string, input tasktypesrepo.UpdateTaskType) (tasktypesrepo.TaskType, error) {
	sets := []string{"updated_at = MAX(?, updated_at + 1)"}
	args := []any{sqlitedb.Micros(s.db.Now())}

	if input.Name.Set {
		sets = append(sets, "name = ?")
		args = append(args, input.Name.Value)
	}
	if input.Icon.Set {
		sets = append(sets, "icon = ?")
		args = append(args, input.Icon.Value)
	}

	query := `UPDATE task_types SET ` + strings.Join(sets, ", ") + `
		WHERE id = ? AND user_id = ? AND deleted_at IS NULL
		RETURNING ` + columns
	args = append(args, id, userID)

	return s.queryOne(ctx, query, args...)
}

func (s *Store) Delete(ctx context.Context, userID string, ids []string) (int64, error) {
	now := sqlitedb.Micros(s.db.Now())

	query := `UPDATE task_types
		SET deleted_at = MAX(?, updated_at + 1), updated_at = MAX(?, updated_at + 1)
		WHERE user_id = ? AND deleted_at IS NULL AND id IN (SELECT value FROM json_each(?))`

	res, err := sqlitedb.Conn(ctx, s.db).ExecContext(ctx, query, now, now, userID, sqlitedb.JSON[[]string]{Data: ids})
	if err != nil {
		return 0, repositories.FromSQLite(err)
	}
	return res.RowsAffected()
}

func (s *Store) ListChangedSince(ctx context.Context, userID string, since time.Time) ([]tasktypesrepo.TaskType, error) {
	query := `SELECT ` + columns + `
		FROM task_types
		WHERE user_id = ? AND updated_at > ?
		ORDER BY updated_at, id`

	return s.queryMany(ctx, query, userID, sqlitedb.Micros(since))
}

func (s *Store) PurgeDeleted(ctx context.Context, before time.Time, limit int) (int64, error) {
	query := `DELETE FROM task_types
		WHERE id IN (
			SELECT id FROM task_types
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

type scanner interface {
	Scan(dest ...any) error
}

func scanTaskType(row scanner) (tasktypesrepo.TaskType, error) {
	var (
		t                tasktypesrepo.TaskType
		created, updated int64
		deleted          sql.NullInt64
	)
	if err := row.Scan(&t.ID, &t.Name, &t.Icon, &t.UserID, &created, &updated, &deleted); err != nil {
		return tasktypesrepo.TaskType{}, err
	}
	t.CreatedAt = sqlitedb.FromMicros(created)
	t.UpdatedAt = sqlitedb.FromMicros(updated)
	t.DeletedAt = sqlitedb.FromNullMicros(deleted)
	return t, nil
}

func (s *Store) queryOne(ctx context.Context, query string, args ...any) (tasktypesrepo.TaskType, error) {
	t, err := scanTaskType(sqlitedb.Conn(ctx, s.db).QueryRowContext(ctx, query, args...))
	if err != nil {
		return tasktypesrepo.TaskType{}, repositories.FromSQLite(err)
	}
	return t, nil
}

func (s *Store) queryMany(ctx context.Context, query string, args ...any) ([]tasktypesrepo.TaskType, error) {
	rows, err := sqlitedb.Conn(ctx, s.db).QueryContext(ctx, query, args...)
	if err != nil {
		return nil, repositories.FromSQLite(err)
	}
	defer rows.Close()

	var types []tasktypesrepo.TaskType
	for rows.Next() {
		t, err := scanTaskType(rows)
		if err != nil {
			return nil, repositories.FromSQLite(err)
		}
		types = append(types, t)
	}
	if err := rows.Err(); err != nil {
		return nil, repositories.FromSQLite(err)
	}
	return types, nil
}

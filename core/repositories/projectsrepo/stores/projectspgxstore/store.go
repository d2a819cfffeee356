package projectspgxstore

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/repositories/projectsrepo"
	"github.com/jrazmi/yata/infrastructure/postgresdb"
	"github.com/jrazmi/yata/sdk/logger"
)

const columns = `id, name, user_id, created_at, updated_at, deleted_at`

// bumpUpdatedAt keeps updated_at strictly increasing even when two writes
// land in one transaction, where now() does not move.
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

func (s *Store) Create(ctx context.Context, input projectsrepo.CreateProject) (projectsrepo.Project, error) {
	query := `INSERT INTO projects (id, name, user_id, created_at, updated_at)
		VALUES (@id, @name, @user_id, now(), now())
		RETURNING ` + columns

	args := pgx.NamedArgs{
		"id":      input.ID,
		"name":    input.Name,
		"user_id": input.UserID,
	}

	return s.queryOne(ctx, query, args)
}

func (s *Store) Get(ctx context.Context, userID, id string) (projectsrepo.Project, error) {
	query := `SELECT ` + columns + `
		FROM projects
		WHERE id = @id AND user_id = @user_id AND deleted_at IS NULL`

	return s.queryOne(ctx, query, pgx.NamedArgs{"id": id, "user_id": userID})
}

func (s *Store) List(ctx context.Context, userID string) ([]projectsrepo.Project, error) {
	query := `SELECT ` + columns + `
		FROM projects
		WHERE user_id = @user_id AND deleted_at IS NULL
		ORDER BY created_at, id`

	return s.queryMany(ctx, query, pgx.NamedArgs{"user_id": userID})
}

func (s *Store) Update(ctx context.Context, userID, id string, input projectsrepo.UpdateProject) (projectsrepo.Project, error) {
	sets := []string{"updated_at = " + bumpUpdatedAt}
	args := pgx.NamedArgs{"id": id, "user_id": userID}

	if input.Name.Set {
		sets = append(sets, "name = @name")
		args["name"] = input.Name.Value
	}

	query := fmt.Sprintf(`UPDATE projects SET %s
		WHERE id = @id AND user_id = @user_id AND deleted_at IS NULL
		RETURNING %s`, strings.Join(sets, ", "), columns)

	return s.queryOne(ctx, query, args)
}

func (s *Store) Delete(ctx context.Context, userID string, ids []string) (int64, error) {
	query := `UPDATE projects
		SET deleted_at = ` + bumpUpdatedAt + `, updated_at = ` + bumpUpdatedAt + `
		WHERE user_id = @user_id AND id = ANY(@ids) AND deleted_at IS NULL`

	tag, err := postgresdb.Conn(ctx, s.pool).Exec(ctx, query, pgx.NamedArgs{"user_id": userID, "ids": ids})
	if err != nil {
		return 0, repositories.FromPostgres(err)
	}
	return tag.RowsAffected(), nil
}

func (s *Store) ListChangedSince(ctx context.Context, userID string, since time.Time) ([]projectsrepo.Project, error) {
	query := `SELECT ` + columns + `
		FROM projects
		WHERE user_id = @user_id AND updated_at > @since
		ORDER BY updated_at, id`

	return s.queryMany(ctx, query, pgx.NamedArgs{"user_id": userID, "since": since})
}

func (s *Store) PurgeDeleted(ctx context.Context, before time.Time, limit int) (int64, error) {
	query := `DELETE FROM projects
		WHERE id IN (
			SELECT id FROM projects
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

func (s *Store) queryOne(ctx context.Context, query string, args pgx.NamedArgs) (projectsrepo.Project, error) {
	rows, err := postgresdb.Conn(ctx, s.pool).Query(ctx, query, args)
	if err != nil {
		return projectsrepo.Project{}, repositories.FromPostgres(err)
	}

	project, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[projectsrepo.Project])
	if err != nil {
		return projectsrepo.Project{}, repositories.FromPostgres(err)
	}
	return project, nil
}

func (s *Store) queryMany(ctx context.Context, query string, args pgx.NamedArgs) ([]projectsrepo.Project, error) {
	rows, err := postgresdb.Conn(ctx, s.pool).Query(ctx, query, args)
	if err != nil {
		return nil, repositories.FromPostgres(err)
	}

	projects, err := pgx.CollectRows(rows, pgx.RowToStructByName[projectsrepo.Project])
	if err != nil {
		return nil, repositories.FromPostgres(err)
	}
	return projects, nil
}

package userspgxstore

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/repositories/usersrepo"
	"github.com/jrazmi/yata/infrastructure/postgresdb"
	"github.com/jrazmi/yata/sdk/logger"
)

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

func (s *Store) Create(ctx context.Context, input usersrepo.CreateUser) (usersrepo.User, error) {
	query := `INSERT INTO users (id, email, created_at, updated_at)
		VALUES (@id, @email, now(), now())
		RETURNING id, email, created_at, updated_at`

	args := pgx.NamedArgs{
		"id":    input.ID,
		"email": input.Email,
	}

	rows, err := postgresdb.Conn(ctx, s.pool).Query(ctx, query, args)
	if err != nil {
		return usersrepo.User{}, repositories.FromPostgres(err)
	}

	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[usersrepo.User])
	if err != nil {
		return usersrepo.User{}, repositories.FromPostgres(err)
	}
	return user, nil
}

func (s *Store) Get(ctx context.Context, id string) (usersrepo.User, error) {
	query := `SELECT id, email, created_at, updated_at
		FROM users
		WHERE id = @id`

	rows, err := postgresdb.Conn(ctx, s.pool).Query(ctx, query, pgx.NamedArgs{"id": id})
	if err != nil {
		return usersrepo.User{}, repositories.FromPostgres(err)
	}

	user, err := pgx.CollectOneRow(rows, pgx.RowToStructByName[usersrepo.User])
	if err != nil {
		return usersrepo.User{}, repositories.FromPostgres(err)
	}
	return user, nil
}

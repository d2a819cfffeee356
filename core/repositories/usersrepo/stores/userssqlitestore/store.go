package userssqlitestore

import (
	"context"

	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/repositories/usersrepo"
	"github.com/jrazmi/yata/infrastructure/sqlitedb"
	"github.com/jrazmi/yata/sdk/logger"
)

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

func (s *Store) Create(ctx context.Context, input usersrepo.CreateUser) (usersrepo.User, error) {
	now := s.db.Now()

	_, err := sqlitedb.Conn(ctx, s.db).ExecContext(ctx,
		`INSERT INTO users (id, email, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		input.ID, input.Email, sqlitedb.Micros(now), sqlitedb.Micros(now))
	if err != nil {
		return usersrepo.User{}, repositories.FromSQLite(err)
	}

	return usersrepo.User{
		ID:        input.ID,
		Email:     input.Email,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

func (s *Store) Get(ctx context.Context, id string) (usersrepo.User, error) {
	var (
		user             usersrepo.User
		created, updated int64
	)

	err := sqlitedb.Conn(ctx, s.db).QueryRowContext(ctx,
		`SELECT id, email, created_at, updated_at FROM users WHERE id = ?`, id).
		Scan(&user.ID, &user.Email, &created, &updated)
	if err != nil {
		return usersrepo.User{}, repositories.FromSQLite(err)
	}

	user.CreatedAt = sqlitedb.FromMicros(created)
	user.UpdatedAt = sqlitedb.FromMicros(updated)
	return user, nil
}

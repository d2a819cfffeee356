// Package usersrepo manages the accounts that own synced data.
package usersrepo

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/sdk/logger"
)

type Storer interface {
	Create(ctx context.Context, input CreateUser) (User, error)
	Get(ctx context.Context, id string) (User, error)
}

type Repository struct {
	log    *logger.Logger
	storer Storer
}

func NewRepository(log *logger.Logger, storer Storer) *Repository {
	return &Repository{
		log:    log,
		storer: storer,
	}
}

func (r *Repository) Create(ctx context.Context, input CreateUser) (User, error) {
	input.normalize()
	if err := input.Validate(); err != nil {
		return User{}, repositories.Invalid(err)
	}
	if input.ID == "" {
		input.ID = uuid.NewString()
	}

	user, err := r.storer.Create(ctx, input)
	if err != nil {
		return User{}, fmt.Errorf("user repository create: %w", err)
	}

	r.log.InfoContext(ctx, "user created", "user_id", user.ID)
	return user, nil
}

func (r *Repository) Get(ctx context.Context, id string) (User, error) {
	user, err := r.storer.Get(ctx, id)
	if err != nil {
		return User{}, fmt.Errorf("user repository get: %w", err)
	}
	return user, nil
}

package usersrepo_test

import (
	"context"
	"testing"

	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/repositories/usersrepo"
	"github.com/jrazmi/yata/core/repositories/usersrepo/stores/userssqlitestore"
	"github.com/jrazmi/yata/infrastructure/sqlitedb/sqlitetest"
	"github.com/jrazmi/yata/sdk/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreateAndGet(t *testing.T) {
	db := sqlitetest.New(t)
	log := logger.NewDiscard()
	repo := usersrepo.NewRepository(log, userssqlitestore.NewStore(log, db))
	ctx := context.Background()

	user, err := repo.Create(ctx, usersrepo.CreateUser{Email: "  Ada@Example.com "})
	require.NoError(t, err)
	assert.NotEmpty(t, user.ID)
	assert.Equal(t, "ada@example.com", user.Email)

	got, err := repo.Get(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, user.Email, got.Email)

	_, err = repo.Create(ctx, usersrepo.CreateUser{Email: "ada@example.com"})
	require.ErrorIs(t, err, repositories.ErrConflict)

	_, err = repo.Create(ctx, usersrepo.CreateUser{Email: "nope"})
	require.ErrorIs(t, err, repositories.ErrInvalid)

	_, err = repo.Get(ctx, "missing")
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

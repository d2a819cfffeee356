package tasktypesrepo_test

import (
	"context"
	"testing"

	"github.com/jrazmi/yata/core/repositories"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo/stores/tasktypessqlitestore"
	"github.com/jrazmi/yata/infrastructure/sqlitedb/sqlitetest"
	"github.com/jrazmi/yata/sdk/logger"
	"github.com/jrazmi/yata/sdk/patch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskTypeLifecycle(t *testing.T) {
	db := sqlitetest.New(t)
	sqlitetest.SeedUser(t, db, "u1")
	log := logger.NewDiscard()
	repo := tasktypesrepo.NewRepository(log, tasktypessqlitestore.NewStore(log, db))
	ctx := context.Background()

	tt, err := repo.Create(ctx, tasktypesrepo.CreateTaskType{ID: "bug", Name: "Bug", Icon: "🐛", UserID: "u1"})
	require.NoError(t, err)
	assert.Equal(t, "🐛", tt.Icon)

	updated, err := repo.Update(ctx, "u1", "bug", tasktypesrepo.UpdateTaskType{Icon: patch.Value("🪲")})
	require.NoError(t, err)
	assert.Equal(t, "Bug", updated.Name)
	assert.Equal(t, "🪲", updated.Icon)

	_, err = repo.Update(ctx, "u1", "bug", tasktypesrepo.UpdateTaskType{Icon: patch.Null[string]()})
	require.ErrorIs(t, err, repositories.ErrInvalid)

	list, err := repo.List(ctx, "u1")
	require.NoError(t, err)
	require.Len(t, list, 1)

	n, err := repo.Delete(ctx, "u1", []string{"bug"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, n)

	list, err = repo.List(ctx, "u1")
	require.NoError(t, err)
	assert.Empty(t, list)

	_, err = repo.Create(ctx, tasktypesrepo.CreateTaskType{ID: "bug", Name: "Bug", UserID: "u1"})
	require.ErrorIs(t, err, repositories.ErrConflict)
}

func TestCreateTaskTypeRequiresKnownOwner(t *testing.T) {
	db := sqlitetest.New(t)
	log := logger.NewDiscard()
	repo := tasktypesrepo.NewRepository(log, tasktypessqlitestore.NewStore(log, db))

	_, err := repo.Create(context.Background(), tasktypesrepo.CreateTaskType{ID: "x", Name: "X", UserID: "ghost"})
	require.ErrorIs(t, err, repositories.ErrNotFound)
}

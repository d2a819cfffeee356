package schemamigrationsrepo_test

import (
	"context"
	"testing"
	"testing/fstest"

	"github.com/jrazmi/yata/core/repositories/schemamigrationsrepo"
	"github.com/jrazmi/yata/core/repositories/schemamigrationsrepo/stores/schemamigrationssqlitestore"
	"github.com/jrazmi/yata/infrastructure/sqlitedb/sqlitetest"
	"github.com/jrazmi/yata/schema"
	"github.com/jrazmi/yata/sdk/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusAfterMigrate(t *testing.T) {
	db := sqlitetest.New(t)
	log := logger.NewDiscard()
	repo := schemamigrationsrepo.NewRepository(log, schemamigrationssqlitestore.NewStore(log, db))

	status, err := repo.Status(context.Background(), schema.SQLiteMigrations, "sqlitemigrations")
	require.NoError(t, err)
	require.NotEmpty(t, status)
	for _, st := range status {
		assert.True(t, st.Applied, st.Version)
		assert.False(t, st.Modified, st.Version)
		assert.NotNil(t, st.AppliedAt)
	}
}

func TestStatusReportsPendingAndModified(t *testing.T) {
	db := sqlitetest.New(t)
	log := logger.NewDiscard()
	repo := schemamigrationsrepo.NewRepository(log, schemamigrationssqlitestore.NewStore(log, db))

	fsys := fstest.MapFS{
		"m/001_init.sql":  {Data: []byte("-- edited")},
		"m/002_later.sql": {Data: []byte("SELECT 1;")},
	}

	status, err := repo.Status(context.Background(), fsys, "m")
	require.NoError(t, err)
	require.Len(t, status, 2)

	assert.Equal(t, "001_init.sql", status[0].Version)
	assert.True(t, status[0].Applied)
	assert.True(t, status[0].Modified)

	assert.Equal(t, "002_later.sql", status[1].Version)
	assert.False(t, status[1].Applied)
	assert.Nil(t, status[1].AppliedAt)
}

package config_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/jrazmi/yata/app/yata/config"
	"github.com/jrazmi/yata/sdk/logger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOptionsFromEnv(t *testing.T) {
	t.Setenv("YATATEST_DB_DRIVER", "postgres")
	t.Setenv("YATATEST_REAPER_INTERVAL", "15m")

	opts, err := config.OptionsFromEnv("YATATEST")
	require.NoError(t, err)
	assert.Equal(t, config.DriverPostgres, opts.Driver)
	assert.Equal(t, 15*time.Minute, opts.ReaperInterval)
}

func TestOptionsFromEnvRejectsUnknownDriver(t *testing.T) {
	t.Setenv("YATATEST_DB_DRIVER", "mysql")

	_, err := config.OptionsFromEnv("YATATEST")
	require.Error(t, err)
}

func TestOpenSQLiteDatastoreMigrates(t *testing.T) {
	t.Setenv("YATATEST_SQLITE_PATH", filepath.Join(t.TempDir(), "data", "yata.db"))
	ctx := context.Background()
	log := logger.NewDiscard()

	ds, err := config.OpenDatastore(ctx, "YATATEST", log, config.Options{Driver: config.DriverSQLite})
	require.NoError(t, err)
	t.Cleanup(ds.Close)

	require.NoError(t, ds.Check(ctx))

	status, err := ds.MigrationStatus(ctx)
	require.NoError(t, err)
	require.NotEmpty(t, status)
	for _, st := range status {
		assert.True(t, st.Applied, st.Version)
	}

	// Running again is a no-op.
	require.NoError(t, ds.Migrate(ctx))
}

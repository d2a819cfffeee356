// Package config assembles the datastore and services a yata process runs on.
package config

import (
	"context"
	"fmt"
	"io/fs"
	"time"

	"github.com/jrazmi/yata/core/repositories/projectsrepo"
	"github.com/jrazmi/yata/core/repositories/projectsrepo/stores/projectspgxstore"
	"github.com/jrazmi/yata/core/repositories/projectsrepo/stores/projectssqlitestore"
	"github.com/jrazmi/yata/core/repositories/schemamigrationsrepo"
	"github.com/jrazmi/yata/core/repositories/schemamigrationsrepo/stores/schemamigrationspgxstore"
	"github.com/jrazmi/yata/core/repositories/schemamigrationsrepo/stores/schemamigrationssqlitestore"
	"github.com/jrazmi/yata/core/repositories/tasksrepo"
	"github.com/jrazmi/yata/core/repositories/tasksrepo/stores/taskspgxstore"
	"github.com/jrazmi/yata/core/repositories/tasksrepo/stores/taskssqlitestore"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo/stores/tasktypespgxstore"
	"github.com/jrazmi/yata/core/repositories/tasktypesrepo/stores/tasktypessqlitestore"
	"github.com/jrazmi/yata/core/repositories/usersrepo"
	"github.com/jrazmi/yata/core/repositories/usersrepo/stores/userspgxstore"
	"github.com/jrazmi/yata/core/repositories/usersrepo/stores/userssqlitestore"
	"github.com/jrazmi/yata/core/syncengine"
	"github.com/jrazmi/yata/core/syncengine/stores/syncpgxstore"
	"github.com/jrazmi/yata/core/syncengine/stores/syncsqlitestore"
	"github.com/jrazmi/yata/infrastructure/postgresdb"
	"github.com/jrazmi/yata/infrastructure/sqlitedb"
	"github.com/jrazmi/yata/schema"
	"github.com/jrazmi/yata/sdk/environment"
	"github.com/jrazmi/yata/sdk/logger"
	"github.com/jrazmi/yata/sdk/telemetry"
)

// Supported DB_DRIVER values.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Options is read from the environment under the application prefix.
type Options struct {
	Driver         string        `env:"DB_DRIVER" default:"sqlite"`
	ReaperInterval time.Duration `env:"REAPER_INTERVAL" default:"1h"`
}

func OptionsFromEnv(prefix string) (Options, error) {
	var opts Options
	if err := environment.ParseEnvTags(prefix, &opts); err != nil {
		return Options{}, fmt.Errorf("parsing app config: %w", err)
	}
	switch opts.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return Options{}, fmt.Errorf("unknown DB_DRIVER %q", opts.Driver)
	}
	return opts, nil
}

// Repositories holds one repository per entity, all backed by the same store.
type Repositories struct {
	Users      *usersrepo.Repository
	Projects   *projectsrepo.Repository
	TaskTypes  *tasktypesrepo.Repository
	Tasks      *tasksrepo.Repository
	Migrations *schemamigrationsrepo.Repository
}

// SyncStores exposes the synced entities to the engine.
func (r Repositories) SyncStores() syncengine.Stores {
	return syncengine.Stores{
		Projects:  r.Projects,
		TaskTypes: r.TaskTypes,
		Tasks:     r.Tasks,
	}
}

// Datastore is a fully wired persistence backend.
type Datastore struct {
	Driver       string
	Repositories Repositories
	Tx           syncengine.Transactor
	Check        func(ctx context.Context) error
	Close        func()

	migrate       func(ctx context.Context) error
	migrationsFS  fs.FS
	migrationsDir string
}

// Migrate applies pending schema migrations.
func (d Datastore) Migrate(ctx context.Context) error {
	return d.migrate(ctx)
}

// MigrationStatus reports every embedded migration against the database.
func (d Datastore) MigrationStatus(ctx context.Context) ([]schemamigrationsrepo.Status, error) {
	return d.Repositories.Migrations.Status(ctx, d.migrationsFS, d.migrationsDir)
}

func NewSQLiteDatastore(log *logger.Logger, db *sqlitedb.DB) Datastore {
	return Datastore{
		Driver: DriverSQLite,
		Repositories: Repositories{
			Users:      usersrepo.NewRepository(log, userssqlitestore.NewStore(log, db)),
			Projects:   projectsrepo.NewRepository(log, projectssqlitestore.NewStore(log, db)),
			TaskTypes:  tasktypesrepo.NewRepository(log, tasktypessqlitestore.NewStore(log, db)),
			Tasks:      tasksrepo.NewRepository(log, taskssqlitestore.NewStore(log, db)),
			Migrations: schemamigrationsrepo.NewRepository(log, schemamigrationssqlitestore.NewStore(log, db)),
		},
		Tx: syncsqlitestore.NewStore(log, db),
		Check: func(ctx context.Context) error {
			return sqlitedb.StatusCheck(ctx, db)
		},
		Close: func() { db.Close() },
		migrate: func(ctx context.Context) error {
			return sqlitedb.Migrate(ctx, log.Logger, db)
		},
		migrationsFS:  schema.SQLiteMigrations,
		migrationsDir: "sqlitemigrations",
	}
}

func NewPostgresDatastore(log *logger.Logger, pool *postgresdb.Pool) Datastore {
	return Datastore{
		Driver: DriverPostgres,
		Repositories: Repositories{
			Users:      usersrepo.NewRepository(log, userspgxstore.NewStore(log, pool)),
			Projects:   projectsrepo.NewRepository(log, projectspgxstore.NewStore(log, pool)),
			TaskTypes:  tasktypesrepo.NewRepository(log, tasktypespgxstore.NewStore(log, pool)),
			Tasks:      tasksrepo.NewRepository(log, taskspgxstore.NewStore(log, pool)),
			Migrations: schemamigrationsrepo.NewRepository(log, schemamigrationspgxstore.NewStore(log, pool)),
		},
		Tx: syncpgxstore.NewStore(log, pool),
		Check: func(ctx context.Context) error {
			return postgresdb.StatusCheck(ctx, pool)
		},
		Close: pool.Close,
		migrate: func(ctx context.Context) error {
			return postgresdb.Migrate(ctx, log.Logger, pool)
		},
		migrationsFS:  schema.PostgresMigrations,
		migrationsDir: "pgmigrations",
	}
}

// ConnectDatastore connects to the backend named by opts.Driver without
// touching the schema.
func ConnectDatastore(ctx context.Context, prefix string, log *logger.Logger, opts Options, pgOpts ...postgresdb.Option) (Datastore, error) {
	switch opts.Driver {
	case DriverPostgres:
		pgOpts = append([]postgresdb.Option{postgresdb.WithLogger(log.Logger)}, pgOpts...)
		pool, err := postgresdb.NewFromEnv(prefix, pgOpts...)
		if err != nil {
			return Datastore{}, fmt.Errorf("connecting to postgres: %w", err)
		}
		return NewPostgresDatastore(log, pool), nil

	default:
		db, err := sqlitedb.NewFromEnv(ctx, prefix)
		if err != nil {
			return Datastore{}, fmt.Errorf("opening sqlite: %w", err)
		}
		return NewSQLiteDatastore(log, db), nil
	}
}

// OpenDatastore connects and, for SQLite, applies pending migrations.
// Postgres is migrated by the tooling CLI.
func OpenDatastore(ctx context.Context, prefix string, log *logger.Logger, opts Options) (Datastore, error) {
	ds, err := ConnectDatastore(ctx, prefix, log, opts)
	if err != nil {
		return Datastore{}, err
	}
	if ds.Driver == DriverSQLite {
		if err := ds.Migrate(ctx); err != nil {
			ds.Close()
			return Datastore{}, fmt.Errorf("migrating sqlite: %w", err)
		}
	}
	return ds, nil
}

// Yata is the overall configuration of a running API process.
type Yata struct {
	Build     string
	Logger    *logger.Logger
	Telemetry telemetry.Telemetry
	Datastore Datastore
	Engine    *syncengine.Engine
}

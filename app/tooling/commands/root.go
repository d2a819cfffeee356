// Package commands holds the yata-tooling subcommands.
package commands

import (
	"context"
	"fmt"

	"github.com/jrazmi/yata/app/yata/config"
	"github.com/jrazmi/yata/infrastructure/postgresdb"
	"github.com/jrazmi/yata/sdk/logger"
	"github.com/spf13/cobra"
)

// Env is what every command shares.
type Env struct {
	Prefix  string
	Log     *logger.Logger
	Version string
}

type rootFlags struct {
	driver     string
	logQueries bool
}

func NewRootCommand(env Env) *cobra.Command {
	var flags rootFlags

	root := &cobra.Command{
		Use:           "yata-tooling",
		Short:         "Maintenance commands for the yata sync server",
		Version:       env.Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&flags.driver, "driver", "", "database driver (postgres or sqlite); defaults to "+env.Prefix+"_DB_DRIVER")
	root.PersistentFlags().BoolVar(&flags.logQueries, "log-queries", false, "log every postgres query")

	root.AddCommand(migrateCmd(env, &flags))
	root.AddCommand(reapCmd(env, &flags))

	return root
}

// connect opens the configured datastore without migrating it.
func connect(ctx context.Context, env Env, flags *rootFlags) (config.Datastore, config.Options, error) {
	opts, err := config.OptionsFromEnv(env.Prefix)
	if flags.driver != "" {
		opts.Driver = flags.driver
		err = nil
	}
	if err != nil {
		return config.Datastore{}, config.Options{}, err
	}
	if opts.Driver != config.DriverPostgres && opts.Driver != config.DriverSQLite {
		return config.Datastore{}, config.Options{}, fmt.Errorf("unknown driver %q", opts.Driver)
	}

	var pgOpts []postgresdb.Option
	if flags.logQueries {
		pgOpts = append(pgOpts, postgresdb.WithTracer(postgresdb.NewLoggingQueryTracer(env.Log.Logger)))
	}

	ds, err := config.ConnectDatastore(ctx, env.Prefix, env.Log, opts, pgOpts...)
	if err != nil {
		return config.Datastore{}, config.Options{}, err
	}
	env.Log.InfoContext(ctx, "init", "service", ds.Driver)
	return ds, opts, nil
}

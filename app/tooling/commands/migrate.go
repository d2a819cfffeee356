package commands

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"
)

func migrateCmd(env Env, flags *rootFlags) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending schema migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, _, err := connect(ctx, env, flags)
			if err != nil {
				return err
			}
			defer ds.Close()

			if err := ds.Check(ctx); err != nil {
				return fmt.Errorf("database status check failed: %w", err)
			}

			ctx, cancel := contextWithTimeout(ctx, timeout)
			defer cancel()

			env.Log.InfoContext(ctx, "migration started", "driver", ds.Driver)
			if err := ds.Migrate(ctx); err != nil {
				return fmt.Errorf("migrate database: %w", err)
			}
			env.Log.InfoContext(ctx, "migrations completed successfully")
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Minute, "abort the migration after this long")

	cmd.AddCommand(migrateStatusCmd(env, flags))
	return cmd
}

func migrateStatusCmd(env Env, flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "List embedded migrations and whether they are applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, _, err := connect(ctx, env, flags)
			if err != nil {
				return err
			}
			defer ds.Close()

			status, err := ds.MigrationStatus(ctx)
			if err != nil {
				return fmt.Errorf("migration status: %w", err)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(w, "VERSION\tSTATE\tAPPLIED AT")
			for _, st := range status {
				state, at := "pending", "-"
				if st.Applied {
					state = "applied"
					at = st.AppliedAt.UTC().Format(time.RFC3339)
				}
				if st.Modified {
					state = "modified"
				}
				fmt.Fprintf(w, "%s\t%s\t%s\n", st.Version, state, at)
			}
			return w.Flush()
		},
	}
}

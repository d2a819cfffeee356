package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/jrazmi/yata/core/syncengine"
	"github.com/spf13/cobra"
)

func reapCmd(env Env, flags *rootFlags) *cobra.Command {
	var timeout time.Duration

	cmd := &cobra.Command{
		Use:   "reap",
		Short: "Purge tombstones older than the retention window, once",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			ds, _, err := connect(ctx, env, flags)
			if err != nil {
				return err
			}
			defer ds.Close()

			engine, err := syncengine.NewFromEnv(env.Prefix, env.Log, ds.Tx, ds.Repositories.SyncStores())
			if err != nil {
				return fmt.Errorf("sync engine: %w", err)
			}

			ctx, cancel := contextWithTimeout(ctx, timeout)
			defer cancel()

			purged, err := engine.Purge(ctx)
			if err != nil {
				return fmt.Errorf("purge: %w", err)
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "horizon %s\n", engine.Horizon().UTC().Format(time.RFC3339))
			for _, kind := range []syncengine.Kind{syncengine.KindTasks, syncengine.KindTaskTypes, syncengine.KindProjects} {
				fmt.Fprintf(out, "%-10s %d\n", kind, purged[kind])
			}
			return nil
		},
	}
	cmd.Flags().DurationVar(&timeout, "timeout", 10*time.Minute, "abort the pass after this long")
	return cmd
}

func contextWithTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

package main

import (
	"fmt"

	"wayfarer/pkg/syncer"

	"github.com/spf13/cobra"
)

// newSyncCmd creates the "wayfarer sync" subcommand.
func newSyncCmd() *cobra.Command {
	var (
		watch bool
		quiet bool
	)

	cmd := &cobra.Command{
		Use:   "sync",
		Short: "Push pending prompts to the remote service",
		Long:  "Runs one sync cycle over all pending prompts.\nWith --watch, keeps syncing on the configured poll interval until interrupted.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			var notifier syncer.Notifier = syncer.DesktopNotifier{}
			if quiet {
				notifier = syncer.NopNotifier{}
			}

			coord, err := newCoordinator(store, cfg, notifier)
			if err != nil {
				return err
			}

			if watch {
				fmt.Fprintln(cmd.OutOrStdout(), "watching for pending prompts, ctrl-c to stop")
				return coord.Run(cmd.Context())
			}

			res, err := coord.SyncOnce(cmd.Context())
			if err != nil {
				return fmt.Errorf("sync cycle: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "synced %d, failed %d, deferred %d\n", res.Synced, res.Failed, res.Deferred)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "keep syncing until interrupted")
	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress desktop notifications")

	return cmd
}

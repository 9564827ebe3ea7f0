package main

import (
	"errors"
	"fmt"
	"strconv"

	"wayfarer/pkg/prompt"
	"wayfarer/pkg/syncer"

	"github.com/spf13/cobra"
)

// newDeleteCmd creates the "wayfarer delete" subcommand.
func newDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a prompt",
		Long:  "Removes a prompt locally. If it has already synced, the remote\ncopy is deleted first so the two stores stay consistent.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid prompt id %q", args[0])
			}

			store, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			rec, err := store.Get(cmd.Context(), id)
			if err != nil {
				return fmt.Errorf("load prompt: %w", err)
			}
			if rec == nil {
				fmt.Fprintf(cmd.OutOrStdout(), "prompt %d not found\n", id)
				return nil
			}

			if rec.Synced() {
				// Synced rows need remote propagation, which needs a coordinator.
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				coord, err := newCoordinator(store, cfg, syncer.NopNotifier{})
				if err != nil {
					return err
				}
				if err := coord.Delete(cmd.Context(), id); err != nil {
					return fmt.Errorf("delete prompt %d: %w", id, err)
				}
			} else if err := store.Delete(cmd.Context(), id); err != nil {
				return fmt.Errorf("delete prompt %d: %w", id, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "deleted prompt %d\n", id)
			return nil
		},
	}
}

// newRequeueCmd creates the "wayfarer requeue" subcommand.
func newRequeueCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "requeue <id>",
		Short: "Put a failed prompt back in the sync queue",
		Long:  "Resets a prompt to pending with a cleared attempt count so the\nnext sync cycle retries it from scratch.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := strconv.ParseInt(args[0], 10, 64)
			if err != nil {
				return fmt.Errorf("invalid prompt id %q", args[0])
			}

			store, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if err := store.Requeue(cmd.Context(), id); err != nil {
				if errors.Is(err, prompt.ErrNotFound) {
					fmt.Fprintf(cmd.OutOrStdout(), "prompt %d not found\n", id)
					return nil
				}
				return fmt.Errorf("requeue prompt %d: %w", id, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "requeued prompt %d\n", id)
			return nil
		},
	}
}

package main

import (
	"fmt"
	"strings"

	"wayfarer/pkg/syncer"

	"github.com/spf13/cobra"
)

// newAddCmd creates the "wayfarer add" subcommand.
func newAddCmd() *cobra.Command {
	var quiet bool

	cmd := &cobra.Command{
		Use:   "add <text>",
		Short: "Record a trip planning prompt",
		Long:  "Saves the prompt locally with pending sync status.\nRun 'wayfarer sync' to push pending prompts to the remote service.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			text := strings.TrimSpace(strings.Join(args, " "))
			if text == "" {
				return fmt.Errorf("prompt text is empty")
			}

			store, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			rec, err := store.Insert(cmd.Context(), text)
			if err != nil {
				if !quiet {
					syncer.DesktopNotifier{}.LocalSaveFailed()
				}
				return fmt.Errorf("save prompt: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "saved prompt %d (%s)\n", rec.ID, rec.Status)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&quiet, "quiet", "q", false, "suppress desktop notifications")

	return cmd
}

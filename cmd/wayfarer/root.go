package main

import (
	"fmt"

	"wayfarer/internal/appversion"

	"github.com/spf13/cobra"
)

// newRootCmd creates the root wayfarer command with all subcommands attached.
func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:           "wayfarer",
		Short:         "Wayfarer trip planning companion",
		Long:          "wayfarer captures trip planning prompts locally, syncs them to the\nremote prompt service, and drives the AI planning agent.",
		Version:       fmt.Sprintf("wayfarer %s", appversion.String()),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.SetVersionTemplate("{{.Version}}\n")

	cmd.AddCommand(
		newInitCmd(),
		newAddCmd(),
		newListCmd(),
		newDeleteCmd(),
		newRequeueCmd(),
		newSyncCmd(),
		newPlanCmd(),
		newPlansCmd(),
		newDashCmd(),
	)

	return cmd
}

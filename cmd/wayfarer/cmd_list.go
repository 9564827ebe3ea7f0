package main

import (
	"fmt"
	"os"

	"wayfarer/pkg/prompt"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

// statusStyles maps each sync status to its terminal color.
var statusStyles = map[prompt.SyncStatus]lipgloss.Style{ //nolint:gochecknoglobals // render table
	prompt.StatusPending: lipgloss.NewStyle().Foreground(lipgloss.Color("3")),
	prompt.StatusSynced:  lipgloss.NewStyle().Foreground(lipgloss.Color("2")),
	prompt.StatusFailed:  lipgloss.NewStyle().Foreground(lipgloss.Color("1")),
}

// renderStatus colors the status label when stdout is a terminal.
func renderStatus(s prompt.SyncStatus, color bool) string {
	if !color {
		return string(s)
	}
	if style, ok := statusStyles[s]; ok {
		return style.Render(string(s))
	}
	return string(s)
}

// newListCmd creates the "wayfarer list" subcommand.
func newListCmd() *cobra.Command {
	var pendingOnly bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List recorded prompts",
		Long:  "Shows saved prompts newest first with their sync status,\nremote document id, and attempt count.",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			var records []prompt.Record
			if pendingOnly {
				records, err = store.PendingOldestFirst(cmd.Context())
			} else {
				records, err = store.ListAll(cmd.Context())
			}
			if err != nil {
				return fmt.Errorf("list prompts: %w", err)
			}

			if len(records) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no prompts recorded")
				return nil
			}

			color := isatty.IsTerminal(os.Stdout.Fd())
			for _, r := range records {
				line := fmt.Sprintf("%4d  %s  %-8s  %s", r.ID, r.Timestamp.Local().Format("2006-01-02 15:04"), renderStatus(r.Status, color), r.Text)
				if r.RemoteID != "" {
					line += fmt.Sprintf("  [%s]", r.RemoteID)
				}
				if r.Status == prompt.StatusFailed && r.LastError != "" {
					line += fmt.Sprintf("  (%s)", r.LastError)
				}
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&pendingOnly, "pending", false, "show only prompts awaiting sync")

	return cmd
}

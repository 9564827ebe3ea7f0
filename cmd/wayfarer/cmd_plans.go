package main

import (
	"fmt"
	"os"

	"wayfarer/pkg/planlog"

	"github.com/spf13/cobra"
)

// newPlansCmd creates the "wayfarer plans" subcommand.
func newPlansCmd() *cobra.Command {
	var (
		limit    int
		contains string
		full     bool
	)

	cmd := &cobra.Command{
		Use:   "plans",
		Short: "Browse past planning runs",
		Long:  "Lists finished plans newest first. With --full the saved plan\ntext is printed, not just the goal.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := ResolvePaths()
			if err != nil {
				return fmt.Errorf("resolve paths: %w", err)
			}

			if !fileExists(paths.PlanDBPath) {
				fmt.Fprintln(cmd.OutOrStdout(), "no plans recorded yet")
				return nil
			}

			r, err := planlog.NewReader(paths.PlanDBPath)
			if err != nil {
				return err
			}
			defer r.Close()

			plans, err := r.Query(cmd.Context(), planlog.QueryOpts{Contains: contains, Limit: limit})
			if err != nil {
				return err
			}
			if len(plans) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "no plans recorded yet")
				return nil
			}

			for _, p := range plans {
				fmt.Fprintf(cmd.OutOrStdout(), "%4d  %s  %s\n", p.ID, p.CreatedAt.Local().Format("2006-01-02 15:04"), p.Goal)
				if full {
					fmt.Fprintln(cmd.OutOrStdout())
					fmt.Fprintln(cmd.OutOrStdout(), p.Result)
					fmt.Fprintln(cmd.OutOrStdout())
				}
			}

			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "maximum plans to show")
	cmd.Flags().StringVar(&contains, "contains", "", "filter by goal substring")
	cmd.Flags().BoolVar(&full, "full", false, "print the saved plan text")

	return cmd
}

// fileExists reports whether path exists.
func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

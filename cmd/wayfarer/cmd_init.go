package main

import (
	"fmt"
	"os"

	"wayfarer/pkg/config"

	"github.com/spf13/cobra"
)

// newInitCmd creates the "wayfarer init" subcommand.
func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Create the wayfarer state directory and config",
		Long:  "Creates ~/.wayfarer, initializes the prompt database,\nand writes a default config.toml if none exists.",
		RunE: func(cmd *cobra.Command, args []string) error {
			paths, err := ResolvePaths()
			if err != nil {
				return fmt.Errorf("resolve paths: %w", err)
			}

			if err := os.MkdirAll(paths.WayfarerHome, 0o750); err != nil {
				return fmt.Errorf("create %s: %w", paths.WayfarerHome, err)
			}

			// openStore applies the schema as a side effect.
			_, db, err := openStore()
			if err != nil {
				return err
			}
			defer db.Close()

			if _, err := os.Stat(paths.ConfigPath); os.IsNotExist(err) {
				if err := config.Write(paths.ConfigPath, config.Default()); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", paths.ConfigPath)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "initialized %s\n", paths.WayfarerHome)
			return nil
		},
	}
}

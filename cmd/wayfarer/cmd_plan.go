package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"wayfarer/pkg/agent"
	"wayfarer/pkg/planlog"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
)

//nolint:gochecknoglobals // render styles
var (
	planStepStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("6"))
	planErrorStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("1"))
	planDoneStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("2")).Bold(true)
)

// newPlanCmd creates the "wayfarer plan" subcommand.
func newPlanCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "plan <goal>",
		Short: "Ask the planning agent for a trip plan",
		Long:  "Streams the agent's progress while it works on the goal and\nprints the finished plan. With --save, the goal is also recorded\nas a prompt for syncing.",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			goal := strings.TrimSpace(strings.Join(args, " "))
			if goal == "" {
				return fmt.Errorf("goal is empty")
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}

			client, err := agent.NewAnthropicClient(cfg.Anthropic.APIKey, cfg.Anthropic.Model, nil)
			if err != nil {
				return err
			}

			if save {
				store, db, err := openStore()
				if err != nil {
					return err
				}
				if _, err := store.Insert(cmd.Context(), goal); err != nil {
					_ = db.Close()
					return fmt.Errorf("save prompt: %w", err)
				}
				_ = db.Close()
			}

			req := agent.Request{
				Goal: goal,
				Origin: agent.Coordinates{
					Lat: cfg.Trip.HomeLat,
					Lon: cfg.Trip.HomeLon,
				},
			}

			inv := agent.NewPipeline(client).Invoke(cmd.Context(), req)
			defer inv.Cancel()

			color := isatty.IsTerminal(os.Stdout.Fd())
			out := cmd.OutOrStdout()

			for ev := range inv.Events {
				switch e := ev.(type) {
				case agent.Thinking:
					fmt.Fprintln(out, styled(planStepStyle, "* "+e.Message, color))
				case agent.ToolCalling:
					fmt.Fprintln(out, styled(planStepStyle, fmt.Sprintf("* %s: %s", e.Tool, e.Summary), color))
				case agent.ToolResult:
					fmt.Fprintln(out, styled(planStepStyle, fmt.Sprintf("  %s -> %s", e.Tool, e.Summary), color))
				case agent.Complete:
					fmt.Fprintln(out, styled(planDoneStyle, "plan ready", color))
					fmt.Fprintln(out)
					fmt.Fprintln(out, e.Result)
					savePlan(goal, e.Result, cfg.Anthropic.Model)
				case agent.Error:
					fmt.Fprintln(out, styled(planErrorStyle, "error: "+e.Message, color))
					return fmt.Errorf("planning failed: %s", e.Message)
				}
			}

			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "also record the goal as a prompt")

	return cmd
}

// styled applies the style only when writing to a terminal.
func styled(style lipgloss.Style, s string, color bool) string {
	if !color {
		return s
	}
	return style.Render(s)
}

// savePlan appends a finished run to the plan history. Losing a history
// entry is not worth failing the command over, so errors are only logged.
func savePlan(goal, result, model string) {
	paths, err := ResolvePaths()
	if err != nil {
		log.Printf("plan history: resolve paths: %v", err)
		return
	}
	l, err := planlog.Open(paths.PlanDBPath)
	if err != nil {
		log.Printf("plan history: %v", err)
		return
	}
	defer l.Close()
	if _, err := l.Append(context.Background(), goal, result, model); err != nil {
		log.Printf("plan history: %v", err)
	}
}

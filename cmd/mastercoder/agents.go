package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/mastercoder/internal/config"
	"github.com/ShayCichocki/mastercoder/pkg/models"
)

var agentsCmd = &cobra.Command{
	Use:   "agents",
	Short: "List agent capabilities and how each one is executed",
	Long: `List every agent capability the planner can assign.

The backend column shows what runs a spec of that capability:
  claude   an Anthropic model (direct API or AWS Bedrock)
  script   a local command from workers.scripts
  dry-run  nothing, the worker succeeds immediately (workers.dry_run)`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		return listAgents(cmd.OutOrStdout(), cfg)
	},
}

func listAgents(w io.Writer, cfg *config.Config) error {
	scripts, err := cfg.WorkerScripts()
	if err != nil {
		return err
	}

	bold := color.New(color.Bold)
	cyan := color.New(color.FgCyan)
	muted := color.New(color.FgHiBlack)

	bold.Fprintln(w, "Agent capabilities")
	for _, c := range models.AllCapabilities {
		backend := "claude"
		switch {
		case cfg.Workers.DryRun:
			backend = "dry-run"
		case scripts[c] != "":
			backend = "script"
		}

		fmt.Fprintf(w, "  %s %-14s ", c.Emoji(), c)
		cyan.Fprintf(w, "%-8s", backend)
		muted.Fprintf(w, " %s\n", c.Description())
		if backend == "script" {
			muted.Fprintf(w, "      $ %s\n", scripts[c])
		}
	}
	return nil
}

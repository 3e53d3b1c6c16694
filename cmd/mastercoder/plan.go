package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.yaml.in/yaml/v3"

	"github.com/ShayCichocki/mastercoder/internal/orchestrator"
	"github.com/ShayCichocki/mastercoder/pkg/models"
)

var (
	planOpts   planFlags
	planFormat string
)

var planCmd = &cobra.Command{
	Use:   "plan <task>",
	Short: "Analyze a task and show its execution plan without running it",
	Long: `Analyze a task and print the agents and phases that 'run' would execute.

Output formats:
  text   human-readable report (default)
  json   machine-readable analysis, plan and warnings
  yaml   same as json, as YAML`,
	Args: cobra.MinimumNArgs(1),
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVar(&planFormat, "format", "text", "Output format: text, json, or yaml")
	planCmd.Flags().IntVar(&planOpts.maxParallel, "max-parallel", 0, "Maximum agents per capability fan-out (default from config)")
	planCmd.Flags().BoolVar(&planOpts.ignoreCase, "ignore-case", false, "Match task keywords case-insensitively")
}

// planExport is the serialized form of a plan.
type planExport struct {
	Task     string                `json:"task" yaml:"task"`
	Analysis *models.TaskAnalysis  `json:"analysis" yaml:"analysis"`
	Plan     *models.ExecutionPlan `json:"plan" yaml:"plan"`
	Warnings []string              `json:"warnings,omitempty" yaml:"warnings,omitempty"`
}

func runPlan(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	ccfg, err := coordinatorConfig(cfg, planOpts)
	if err != nil {
		return err
	}

	task := strings.Join(args, " ")
	coord := orchestrator.NewCoordinator(ccfg, nil)
	planned := coord.CreatePlan(task)

	return writePlan(cmd.OutOrStdout(), planned, planFormat)
}

// writePlan renders planned in the requested format.
func writePlan(w io.Writer, planned *orchestrator.Planned, format string) error {
	export := planExport{
		Task:     planned.Task,
		Analysis: planned.Analysis,
		Plan:     planned.Plan,
		Warnings: planned.Warnings,
	}

	switch strings.ToLower(format) {
	case "text", "":
		r := newReport()
		fmt.Fprintln(w, r.Analysis(planned.Analysis))
		fmt.Fprint(w, r.Plan(planned.Plan))
		fmt.Fprint(w, r.Warnings(planned.Warnings))
		return nil
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(export)
	case "yaml", "yml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(export); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		return fmt.Errorf("unknown format %q: must be text, json, or yaml", format)
	}
}

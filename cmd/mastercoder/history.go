package main

import (
	"errors"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/mastercoder/internal/state"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history [execution-id]",
	Short: "Show recent agent executions",
	Long: `Without arguments, list the most recent agent executions.

With an execution ID (printed after 'run'), show that task execution:
its analysis, plan, result and the agents it dispatched.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHistory,
}

func init() {
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 20, "Number of executions to show")
}

func runHistory(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	db, err := openStore(cfg, true)
	if err != nil {
		return err
	}
	if db == nil {
		fmt.Fprintln(cmd.OutOrStdout(), "No executions recorded yet. Run 'mastercoder run <task>' to start.")
		return nil
	}
	defer db.Close()

	ctx := cmd.Context()
	out := cmd.OutOrStdout()
	r := newReport()

	if len(args) == 0 {
		execs, err := db.AgentHistory(ctx, historyLimit)
		if err != nil {
			return fmt.Errorf("load history: %w", err)
		}
		fmt.Fprint(out, r.History(execs))
		return nil
	}

	te, err := db.GetTaskExecution(ctx, args[0])
	if errors.Is(err, state.ErrNotFound) {
		return fmt.Errorf("execution %s not found", args[0])
	}
	if err != nil {
		return fmt.Errorf("load execution: %w", err)
	}
	agents, err := db.ListAgentExecutions(ctx, te.ID)
	if err != nil {
		return fmt.Errorf("load agent executions: %w", err)
	}

	color.New(color.Bold).Fprintf(out, "%s", te.Task)
	fmt.Fprintf(out, "  (%s, %s)\n\n", te.Mode, te.CreatedAt.Format("2006-01-02 15:04"))
	fmt.Fprintln(out, r.Analysis(te.Analysis))
	fmt.Fprint(out, r.Plan(te.Plan))
	fmt.Fprintln(out)
	fmt.Fprintln(out, r.Result(te.Result))
	fmt.Fprintln(out)
	fmt.Fprint(out, r.History(agents))
	return nil
}

package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show aggregated agent statistics",
	Long: `Show totals and per-capability statistics for every recorded agent execution.

Executions are recorded when master_coder.enable_learning is true.`,
	RunE: runStats,
}

func runStats(cmd *cobra.Command, args []string) error {
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

	stats, err := db.AgentStats(cmd.Context())
	if err != nil {
		return fmt.Errorf("load stats: %w", err)
	}

	fmt.Fprint(cmd.OutOrStdout(), newReport().Stats(stats))
	return nil
}

package main

import (
	"os"

	"github.com/spf13/cobra"
)

var (
	verbose    bool
	configFile string
)

var rootCmd = &cobra.Command{
	Use:   "mastercoder",
	Short: "Multi-agent task planner and orchestrator",
	Long: `mastercoder turns a free-text coding task into a team of agents.

The task is analyzed for complexity and required capabilities, split into
agent specs (architects, code writers, testers, security auditors, ...),
ordered into dependency-respecting phases and executed with bounded
parallelism. Depending on the autonomy mode, phases wait for your approval.

Configuration is read from ~/.config/mastercoder/config.yaml, a project
.mastercoder.yaml and MASTERCODER_* environment variables.`,
	SilenceUsage: true,
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print debug information")
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Read configuration from this file only")

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(planCmd)
	rootCmd.AddCommand(agentsCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(versionCmd)
}

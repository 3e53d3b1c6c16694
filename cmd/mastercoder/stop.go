package main

import (
	"fmt"
	"os"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/mastercoder/internal/orchestrator"
)

var stopCmd = &cobra.Command{
	Use:   "stop",
	Short: "Stop the run in the current directory after its current phase",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		workDir, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("get working directory: %w", err)
		}
		if err := orchestrator.RequestStop(workDir); err != nil {
			return err
		}
		printStatus("■", "Stop requested; the run ends after its current phase", color.FgYellow)
		return nil
	},
}

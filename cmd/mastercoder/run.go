package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/ShayCichocki/mastercoder/internal/orchestrator"
	"github.com/ShayCichocki/mastercoder/internal/tui"
	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// errExecutionFailed is returned when the plan ran but reported errors.
var errExecutionFailed = errors.New("execution finished with errors")

var (
	runOpts     planFlags
	runHeadless bool
	runYes      bool
	runDryRun   bool
)

var runCmd = &cobra.Command{
	Use:   "run <task>",
	Short: "Plan a task and execute it with a team of agents",
	Long: `Analyze a task, plan a team of agents and execute the plan phase by phase.

Autonomy modes (--mode, default from master_coder.default_mode):
  conservative  ask before every phase
  balanced      ask before the first and the last phase
  trust         never ask
  interactive   ask before every phase

Outside trust mode the whole plan is confirmed once before anything runs.

A run can be stopped from another terminal with 'mastercoder stop' (or by
creating .mastercoder/signals/stop in the working directory). The current
phase finishes and no further phases start.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runTask,
}

func init() {
	runCmd.Flags().StringVar(&runOpts.mode, "mode", "", "Autonomy mode: conservative, balanced, trust, or interactive")
	runCmd.Flags().IntVar(&runOpts.maxParallel, "max-parallel", 0, "Maximum concurrent agents (default from config)")
	runCmd.Flags().BoolVar(&runOpts.ignoreCase, "ignore-case", false, "Match task keywords case-insensitively")
	runCmd.Flags().BoolVar(&runHeadless, "headless", false, "Print progress lines instead of the live view")
	runCmd.Flags().BoolVarP(&runYes, "yes", "y", false, "Skip the plan-level confirmation")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Use workers that succeed without doing anything")
}

func runTask(cmd *cobra.Command, args []string) error {
	task := strings.Join(args, " ")

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if runDryRun {
		cfg.Workers.DryRun = true
	}
	ccfg, err := coordinatorConfig(cfg, runOpts)
	if err != nil {
		return err
	}

	workDir, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("get working directory: %w", err)
	}

	logger := newDebugLogger(cfg, workDir)
	defer logger.Close()
	orchestrator.SetPackageLogger(logger)
	defer orchestrator.SetPackageLogger(nil)

	debugf("Task: %s", task)
	debugf("Mode: %s, max parallel: %d, budget: %d", ccfg.Mode, ccfg.MaxParallel, ccfg.TokenBudget)

	factory, err := newWorkerFactory(cfg, workDir)
	if err != nil {
		return err
	}

	opts := []orchestrator.CoordinatorOption{orchestrator.WithDebugLogger(logger)}
	if cfg.MasterCoder.EnableLearning {
		db, err := openStore(cfg, false)
		if err != nil {
			return err
		}
		defer db.Close()
		opts = append(opts, orchestrator.WithRecorder(db))
		debugf("Recording to %s", db.Path())
	}

	planned := orchestrator.NewCoordinator(ccfg, factory, opts...).CreatePlan(task)

	r := newReport()
	fmt.Println(r.Analysis(planned.Analysis))
	fmt.Print(r.Plan(planned.Plan))
	fmt.Print(r.Warnings(planned.Warnings))
	fmt.Println()

	if planned.Plan.TotalAgents() == 0 {
		printStatus("⚠", "No agents planned for this task; nothing to run.", color.FgYellow)
		return nil
	}

	if ccfg.Mode != models.AutonomyTrust && !runYes {
		ok, err := tui.ConfirmPlan(planned.Plan.TotalAgents(), len(planned.Plan.Phases))
		if err != nil {
			return fmt.Errorf("confirm plan: %w", err)
		}
		if !ok {
			printStatus("✗", "Execution cancelled", color.FgYellow)
			return nil
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	ctx, watcher, err := orchestrator.WatchStopSignal(ctx, workDir)
	if err != nil {
		return err
	}
	defer watcher.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var report *orchestrator.Report
	if runHeadless {
		report, err = executeHeadless(ctx, ccfg, factory, opts, planned)
	} else {
		report, err = executeWithView(ctx, cancel, ccfg, factory, opts, planned)
	}

	if report != nil {
		fmt.Println()
		fmt.Println(r.Result(report.Result))
		if report.ExecutionID != "" {
			color.New(color.FgHiBlack).Printf("Recorded as %s (mastercoder history %s)\n", report.ExecutionID, report.ExecutionID)
		}
	}
	if watcher.Stopped() {
		printStatus("■", "Stopped by signal file", color.FgYellow)
	}
	if err != nil {
		return err
	}
	if !report.Result.Success {
		return errExecutionFailed
	}
	return nil
}

// executeWithView runs the plan under the live bubbletea view. Phase
// approvals are answered inside the view.
func executeWithView(ctx context.Context, cancel context.CancelFunc, ccfg orchestrator.CoordinatorConfig,
	factory orchestrator.WorkerFactory, opts []orchestrator.CoordinatorOption, planned *orchestrator.Planned) (*orchestrator.Report, error) {
	// Log output corrupts the display while the view is active.
	originalOutput := log.Writer()
	log.SetOutput(io.Discard)
	defer log.SetOutput(originalOutput)

	emitter := orchestrator.NewEventEmitter(100)
	approvals := orchestrator.NewApprovalManager()

	coord := orchestrator.NewCoordinator(ccfg, factory, append(opts,
		orchestrator.WithEventEmitter(emitter),
		orchestrator.WithPhaseApprover(approvals),
	)...)

	type outcome struct {
		report *orchestrator.Report
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		report, err := coord.Execute(ctx, planned)
		emitter.Close()
		done <- outcome{report, err}
	}()

	view := tui.NewPhaseView(planned.Task, emitter.Events(), approvals, cancel)
	if _, err := tui.NewPhaseProgram(view).Run(); err != nil {
		cancel()
		<-done
		return nil, fmt.Errorf("run view: %w", err)
	}

	res := <-done
	if view.Interrupted() {
		printStatus("■", "Interrupted; remaining phases were not started", color.FgYellow)
	}
	if n := emitter.DroppedCount(); n > 0 {
		debugf("Live view missed %d events", n)
	}
	return res.report, res.err
}

// executeHeadless runs the plan printing one line per event. Phase
// approvals are asked with a terminal prompt.
func executeHeadless(ctx context.Context, ccfg orchestrator.CoordinatorConfig,
	factory orchestrator.WorkerFactory, opts []orchestrator.CoordinatorOption, planned *orchestrator.Planned) (*orchestrator.Report, error) {
	emitter := orchestrator.NewEventEmitter(100)

	coord := orchestrator.NewCoordinator(ccfg, factory, append(opts,
		orchestrator.WithEventEmitter(emitter),
		orchestrator.WithPhaseApprover(tui.NewConfirmApprover()),
	)...)

	printed := make(chan struct{})
	go func() {
		defer close(printed)
		for ev := range emitter.Events() {
			printEvent(os.Stdout, ev)
		}
	}()

	report, err := coord.Execute(ctx, planned)
	emitter.Close()
	<-printed
	return report, err
}

// printEvent writes a one-line summary of ev. Events with nothing to say
// are skipped.
func printEvent(w io.Writer, ev orchestrator.Event) {
	green := color.New(color.FgGreen)
	red := color.New(color.FgRed)
	yellow := color.New(color.FgYellow)
	bold := color.New(color.Bold)

	switch ev.Type {
	case orchestrator.EventPhaseStarted:
		bold.Fprintf(w, "▶ %s\n", ev.PhaseDescription)
	case orchestrator.EventPhaseSkipped:
		yellow.Fprintf(w, "⏭ %s skipped\n", ev.PhaseDescription)
	case orchestrator.EventAgentStarted:
		fmt.Fprintf(w, "  %s %s started\n", ev.Capability.Emoji(), ev.AgentName)
	case orchestrator.EventAgentCompleted:
		green.Fprintf(w, "  ✓ %s", ev.AgentName)
		fmt.Fprintf(w, " (%d tokens, %s)\n", ev.TokensUsed, ev.Duration.Round(time.Millisecond))
	case orchestrator.EventAgentFailed:
		red.Fprintf(w, "  ✗ %s: %v\n", ev.AgentName, ev.Error)
	case orchestrator.EventAgentMissing:
		yellow.Fprintf(w, "  ⚠ %s\n", ev.Message)
	case orchestrator.EventBudgetWarning:
		yellow.Fprintf(w, "⚠ %s\n", ev.Message)
	case orchestrator.EventCriticalFailure:
		red.Fprintf(w, "✗ %s\n", ev.Message)
	}
}

package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/charmbracelet/x/term"
	"github.com/fatih/color"

	"github.com/ShayCichocki/mastercoder/internal/agent"
	"github.com/ShayCichocki/mastercoder/internal/api"
	"github.com/ShayCichocki/mastercoder/internal/config"
	iexec "github.com/ShayCichocki/mastercoder/internal/exec"
	"github.com/ShayCichocki/mastercoder/internal/orchestrator"
	"github.com/ShayCichocki/mastercoder/internal/state"
	"github.com/ShayCichocki/mastercoder/internal/tui"
	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// planFlags are shared by run and plan.
type planFlags struct {
	mode        string
	maxParallel int
	ignoreCase  bool
}

// loadConfig loads and validates the layered configuration, or only
// --config when it is given.
func loadConfig() (*config.Config, error) {
	load := config.Load
	if configFile != "" {
		load = func() (*config.Config, error) { return config.LoadFromPath(configFile) }
	}

	cfg, err := load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// coordinatorConfig merges cfg with the command-line overrides.
func coordinatorConfig(cfg *config.Config, flags planFlags) (orchestrator.CoordinatorConfig, error) {
	mode, err := cfg.Mode()
	if err != nil {
		return orchestrator.CoordinatorConfig{}, err
	}
	if flags.mode != "" {
		mode, err = models.ParseAutonomyMode(flags.mode)
		if err != nil {
			return orchestrator.CoordinatorConfig{}, err
		}
	}

	maxParallel := cfg.MasterCoder.MaxParallelAgents
	if flags.maxParallel > 0 {
		maxParallel = flags.maxParallel
	}

	return orchestrator.CoordinatorConfig{
		Mode:            mode,
		MaxParallel:     maxParallel,
		TokenBudget:     cfg.MasterCoder.TokenBudget,
		WorkerTimeout:   cfg.MasterCoder.WorkerTimeout,
		CaseInsensitive: flags.ignoreCase,
	}, nil
}

// databasePath returns the configured database path or the XDG default.
func databasePath(cfg *config.Config) string {
	if cfg.Storage.DatabasePath != "" {
		return cfg.Storage.DatabasePath
	}
	return state.DefaultDBPath()
}

// openStore opens the execution database. existing restricts it to a
// database that is already on disk, for read-only commands.
func openStore(cfg *config.Config, existing bool) (*state.DB, error) {
	path := databasePath(cfg)
	if existing {
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
	}
	db, err := state.OpenAndMigrate(path)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if v, err := db.SchemaVersion(); err == nil {
		debugf("Database %s at schema version %d", path, v)
	}
	return db, nil
}

// newDebugLogger opens the configured debug log, falling back to the
// working directory's .mastercoder/logs.
func newDebugLogger(cfg *config.Config, workDir string) *orchestrator.DebugLogger {
	if cfg.Logging.DebugLog == "" {
		return orchestrator.NewDebugLoggerForDir(workDir)
	}
	logger, err := orchestrator.NewDebugLogger(cfg.Logging.DebugLog)
	if err != nil {
		printStatus("⚠", fmt.Sprintf("Debug log disabled: %v", err), color.FgYellow)
		return orchestrator.NopLogger()
	}
	return logger
}

// newWorkerFactory builds the factory for cfg. Script overrides run
// locally; everything else goes to Claude. Claude credentials are only
// required when some capability is not scripted.
func newWorkerFactory(cfg *config.Config, workDir string) (*agent.Factory, error) {
	if cfg.Workers.DryRun {
		return agent.NewFactory(agent.WithDryRun(true)), nil
	}

	scripts, err := cfg.WorkerScripts()
	if err != nil {
		return nil, err
	}

	var opts []agent.FactoryOption
	if len(scripts) > 0 {
		opts = append(opts, agent.WithScripts(iexec.NewRunner(), workDir, scripts))
	}

	client, err := newAPIClient(cfg)
	switch {
	case err == nil:
		debugf("Claude backend: %s", describeClient(client))
		opts = append(opts, agent.WithCompleter(api.NewRunner(client)))
	case len(scripts) > 0:
		// Unscripted specs get no worker and are reported as missing.
		debugf("Claude unavailable, running scripted capabilities only: %v", err)
	default:
		return nil, err
	}

	return agent.NewFactory(opts...), nil
}

func newAPIClient(cfg *config.Config) (*api.Client, error) {
	if err := config.RequireCredentials(cfg); err != nil {
		return nil, fmt.Errorf("%w (set ANTHROPIC_API_KEY, enable anthropic.use_bedrock, or set workers.dry_run)", err)
	}

	key, _ := config.GetAPIKey(cfg)
	client, err := api.NewClient(api.ClientConfig{
		Model:         cfg.Anthropic.Model,
		APIKey:        key,
		UseAWSBedrock: cfg.Anthropic.UseBedrock,
		AWSRegion:     cfg.Anthropic.AWSRegion,
		AWSProfile:    cfg.Anthropic.AWSProfile,
	})
	if err != nil {
		return nil, fmt.Errorf("create API client: %w", err)
	}
	return client, nil
}

// describeClient names the model and the route calls take.
func describeClient(c *api.Client) string {
	if c.UsesBedrock() {
		return fmt.Sprintf("%s via AWS Bedrock", c.Model())
	}
	return fmt.Sprintf("%s via Anthropic API", c.Model())
}

// newReport returns a Report sized to the terminal when stdout is one.
func newReport() *tui.Report {
	r := tui.NewReport()
	if width, _, err := term.GetSize(os.Stdout.Fd()); err == nil && width > 0 {
		r.SetWidth(width)
	}
	return r
}

// printStatus prints a colored status line.
func printStatus(symbol, message string, colorAttr color.Attribute) {
	c := color.New(colorAttr)
	c.Printf("%s ", symbol)
	fmt.Println(message)
}

func debugf(format string, args ...any) {
	if verbose {
		fmt.Fprintf(os.Stderr, "[DEBUG] "+format+"\n", args...)
	}
}

package agent

import (
	"errors"
	"fmt"

	iexec "github.com/ShayCichocki/mastercoder/internal/exec"
	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// ErrNoBackend is returned when the factory has no way to execute a spec.
var ErrNoBackend = errors.New("no worker backend configured")

// Factory builds one Worker per agent spec.
type Factory struct {
	completer Completer
	scripts   map[models.Capability]string
	runner    iexec.CommandRunner
	workDir   string
	dryRun    bool
}

// FactoryOption configures a Factory.
type FactoryOption func(*Factory)

// WithCompleter makes the factory build ClaudeWorkers on c.
func WithCompleter(c Completer) FactoryOption {
	return func(f *Factory) { f.completer = c }
}

// WithScripts makes specs of the listed capabilities run local commands
// instead of Claude.
func WithScripts(runner iexec.CommandRunner, workDir string, scripts map[models.Capability]string) FactoryOption {
	return func(f *Factory) {
		f.runner = runner
		f.workDir = workDir
		f.scripts = scripts
	}
}

// WithDryRun makes every worker succeed without doing anything.
func WithDryRun(dryRun bool) FactoryOption {
	return func(f *Factory) { f.dryRun = dryRun }
}

// NewFactory creates a Factory.
func NewFactory(opts ...FactoryOption) *Factory {
	f := &Factory{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// CreateWorker builds the worker for spec. Script overrides win over Claude.
func (f *Factory) CreateWorker(spec models.AgentSpec) (Worker, error) {
	if f.dryRun {
		return NewFuncWorker(spec.ID, spec.Capability, DryRunFunc()), nil
	}

	if cmd, ok := f.scripts[spec.Capability]; ok && cmd != "" {
		runner := f.runner
		if runner == nil {
			runner = iexec.NewRunner()
		}
		return NewScriptWorker(spec, cmd, f.workDir, runner), nil
	}

	if f.completer == nil {
		return nil, fmt.Errorf("spec %s: %w", spec.ID, ErrNoBackend)
	}

	return NewClaudeWorker(spec, SystemPrompt(spec.Name, spec.Capability), f.completer), nil
}

// CreateWorkers builds a worker for every spec of plan, in phase order.
// Specs no backend can serve are left out so the engine reports them as
// missing. ErrNoBackend is returned only when no spec can be served.
func (f *Factory) CreateWorkers(plan *models.ExecutionPlan) ([]Worker, error) {
	specs := plan.Specs()
	workers := make([]Worker, 0, len(specs))
	var unserved error
	for _, spec := range specs {
		w, err := f.CreateWorker(spec)
		if errors.Is(err, ErrNoBackend) {
			unserved = err
			continue
		}
		if err != nil {
			return nil, err
		}
		workers = append(workers, w)
	}
	if len(workers) == 0 && unserved != nil {
		return nil, unserved
	}
	return workers, nil
}

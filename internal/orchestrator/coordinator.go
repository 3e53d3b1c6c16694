package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/ShayCichocki/mastercoder/internal/agent"
	"github.com/ShayCichocki/mastercoder/internal/planner"
	"github.com/ShayCichocki/mastercoder/internal/state"
	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// WorkerFactory builds the workers for a plan.
type WorkerFactory interface {
	CreateWorkers(plan *models.ExecutionPlan) ([]agent.Worker, error)
}

var _ WorkerFactory = (*agent.Factory)(nil)

// Recorder is the persistence collaborator. It receives every finished run.
type Recorder interface {
	SaveTaskExecution(ctx context.Context, te *state.TaskExecution) (string, error)
	SaveAgentExecution(ctx context.Context, ae *state.AgentExecution) error
}

var _ Recorder = (*state.DB)(nil)

// CoordinatorConfig holds the per-run settings of a Coordinator.
type CoordinatorConfig struct {
	Mode          models.AutonomyMode
	MaxParallel   int
	TokenBudget   int
	WorkerTimeout time.Duration
	// CaseInsensitive lower-cases the task before keyword matching.
	CaseInsensitive bool
}

// Planned is the analysis and plan for one task, before execution.
type Planned struct {
	Task     string
	Analysis *models.TaskAnalysis
	Specs    []models.AgentSpec
	Plan     *models.ExecutionPlan
	// Warnings are structural problems found while scheduling.
	Warnings []string
}

// Report is the outcome of executing a Planned task.
type Report struct {
	*Planned
	Result   *models.ExecutionResult
	Outcomes []AgentOutcome
	// ExecutionID is the persisted task execution ID, empty if not recorded.
	ExecutionID string
}

// Coordinator drives a task through analysis, planning, execution and
// persistence.
type Coordinator struct {
	cfg       CoordinatorConfig
	analyzer  *planner.TaskAnalyzer
	planner   *planner.AgentSpecPlanner
	scheduler *PhaseScheduler
	factory   WorkerFactory
	recorder  Recorder
	approver  Approver
	emitter   *EventEmitter
	logger    *DebugLogger
}

// CoordinatorOption configures a Coordinator.
type CoordinatorOption func(*Coordinator)

// WithRecorder persists every run to r.
func WithRecorder(r Recorder) CoordinatorOption {
	return func(c *Coordinator) { c.recorder = r }
}

// WithPhaseApprover sets the approver used at phase gates.
func WithPhaseApprover(a Approver) CoordinatorOption {
	return func(c *Coordinator) { c.approver = a }
}

// WithEventEmitter forwards engine events to em.
func WithEventEmitter(em *EventEmitter) CoordinatorOption {
	return func(c *Coordinator) { c.emitter = em }
}

// WithDebugLogger sets the debug logger.
func WithDebugLogger(l *DebugLogger) CoordinatorOption {
	return func(c *Coordinator) { c.logger = l }
}

// NewCoordinator creates a Coordinator that builds workers with factory.
func NewCoordinator(cfg CoordinatorConfig, factory WorkerFactory, opts ...CoordinatorOption) *Coordinator {
	c := &Coordinator{
		cfg:       cfg,
		analyzer:  planner.NewTaskAnalyzer(),
		planner:   planner.NewAgentSpecPlanner(),
		scheduler: NewPhaseScheduler(),
		factory:   factory,
		approver:  AlwaysApprove,
		logger:    NopLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.scheduler.SetLogger(c.logger)
	return c
}

// CreatePlan analyzes task and schedules its specs into phases.
func (c *Coordinator) CreatePlan(task string) *Planned {
	var analysis *models.TaskAnalysis
	if c.cfg.CaseInsensitive {
		analysis = c.analyzer.AnalyzeNormalized(task)
	} else {
		analysis = c.analyzer.Analyze(task)
	}

	specs := c.planner.Plan(analysis, c.cfg.MaxParallel)
	plan, warnings := c.scheduler.Schedule(specs)

	c.logger.Log("[coordinator] planned %q: complexity=%d specs=%d phases=%d warnings=%d",
		task, analysis.Complexity, len(specs), len(plan.Phases), len(warnings))

	return &Planned{
		Task:     task,
		Analysis: analysis,
		Specs:    specs,
		Plan:     plan,
		Warnings: warnings,
	}
}

// Execute builds workers for p, runs its plan and records the outcome.
// A recording failure is returned alongside the report, which stays valid.
func (c *Coordinator) Execute(ctx context.Context, p *Planned) (*Report, error) {
	if p == nil || p.Plan == nil {
		return nil, ErrNilPlan
	}

	workers, err := c.factory.CreateWorkers(p.Plan)
	if err != nil {
		return nil, fmt.Errorf("create workers: %w", err)
	}

	var (
		mu       sync.Mutex
		outcomes []AgentOutcome
	)
	engine := NewEngine(c.cfg.Mode, c.cfg.MaxParallel,
		WithApprover(c.approver),
		WithTokenBudget(c.cfg.TokenBudget),
		WithWorkerTimeout(c.cfg.WorkerTimeout),
		WithEmitter(c.emitter),
		WithLogger(c.logger),
		WithOutcomeHandler(func(o AgentOutcome) {
			mu.Lock()
			outcomes = append(outcomes, o)
			mu.Unlock()
		}),
	)

	result, err := engine.Run(ctx, p.Plan, NewWorkerPool(workers...))
	if err != nil {
		return nil, err
	}

	report := &Report{Planned: p, Result: result, Outcomes: outcomes}

	if c.recorder != nil {
		id, err := c.record(context.WithoutCancel(ctx), report)
		report.ExecutionID = id
		if err != nil {
			return report, fmt.Errorf("record execution: %w", err)
		}
	}

	return report, nil
}

// Run plans and executes task in one call.
func (c *Coordinator) Run(ctx context.Context, task string) (*Report, error) {
	return c.Execute(ctx, c.CreatePlan(task))
}

func (c *Coordinator) record(ctx context.Context, r *Report) (string, error) {
	id, err := c.recorder.SaveTaskExecution(ctx, &state.TaskExecution{
		Task:     r.Task,
		Mode:     c.cfg.Mode,
		Analysis: r.Analysis,
		Plan:     r.Plan,
		Result:   r.Result,
	})
	if err != nil {
		return "", err
	}

	var errs []error
	for _, o := range r.Outcomes {
		ae := &state.AgentExecution{
			TaskExecutionID: id,
			AgentID:         o.Spec.ID,
			AgentName:       displayName(o.Spec),
			Capability:      o.Spec.Capability,
			Task:            o.Spec.Task,
			Phase:           o.Phase,
			TokensUsed:      o.Result.TokensUsed,
			ExecutionTimeMs: o.Duration.Milliseconds(),
			Success:         o.Succeeded(),
		}
		if o.Err != nil {
			ae.Error = o.Err.Error()
		}
		if err := c.recorder.SaveAgentExecution(ctx, ae); err != nil {
			errs = append(errs, err)
		}
	}

	return id, errors.Join(errs...)
}

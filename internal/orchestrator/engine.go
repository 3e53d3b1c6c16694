package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/ShayCichocki/mastercoder/internal/agent"
	"github.com/ShayCichocki/mastercoder/pkg/models"
)

var (
	// ErrNilPlan is returned by Run when no plan is given.
	ErrNilPlan = errors.New("nil execution plan")
	// ErrWorkerTimeout marks a worker that did not return within the
	// configured timeout.
	ErrWorkerTimeout = errors.New("worker timed out")
	// ErrReportedFailure marks a worker that returned without error but
	// reported Success=false.
	ErrReportedFailure = errors.New("reported failure")
)

// AgentOutcome is the result of dispatching one spec to its worker.
type AgentOutcome struct {
	Phase    int
	Spec     models.AgentSpec
	Result   models.WorkerResult
	Err      error
	Duration time.Duration
}

// Succeeded reports whether the worker completed without error.
func (o AgentOutcome) Succeeded() bool {
	return o.Err == nil
}

// Engine executes an ExecutionPlan against a WorkerPool.
type Engine struct {
	mode          models.AutonomyMode
	maxParallel   int
	approver      Approver
	budget        *BudgetMonitor
	workerTimeout time.Duration
	emitter       *EventEmitter
	logger        *DebugLogger
	onOutcome     func(AgentOutcome)
}

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithApprover sets the approval collaborator. Defaults to AlwaysApprove.
func WithApprover(a Approver) EngineOption {
	return func(e *Engine) {
		if a != nil {
			e.approver = a
		}
	}
}

// WithTokenBudget enables advisory budget warnings.
func WithTokenBudget(tokens int) EngineOption {
	return func(e *Engine) { e.budget = NewBudgetMonitor(tokens) }
}

// WithWorkerTimeout bounds each worker call. Zero disables the bound.
func WithWorkerTimeout(d time.Duration) EngineOption {
	return func(e *Engine) { e.workerTimeout = d }
}

// WithEmitter sends progress events to em.
func WithEmitter(em *EventEmitter) EngineOption {
	return func(e *Engine) { e.emitter = em }
}

// WithLogger sets the debug logger.
func WithLogger(l *DebugLogger) EngineOption {
	return func(e *Engine) { e.logger = l }
}

// WithOutcomeHandler registers fn to be called after every dispatch.
// fn is called concurrently from parallel phases.
func WithOutcomeHandler(fn func(AgentOutcome)) EngineOption {
	return func(e *Engine) { e.onOutcome = fn }
}

// NewEngine creates an Engine. maxParallel below 1 is treated as 1.
func NewEngine(mode models.AutonomyMode, maxParallel int, opts ...EngineOption) *Engine {
	e := &Engine{
		mode:        mode,
		maxParallel: max(1, maxParallel),
		approver:    AlwaysApprove,
		budget:      NewBudgetMonitor(0),
		logger:      NopLogger(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// MaxParallel returns the concurrency bound for parallel phases.
func (e *Engine) MaxParallel() int {
	return e.maxParallel
}

// phaseResult accumulates the outcome of a single phase.
type phaseResult struct {
	critical  bool
	completed int
	tokens    int
	errors    []string
	warnings  []string
}

func (r *phaseResult) record(o AgentOutcome) {
	r.completed++
	r.tokens += o.Result.TokensUsed
	if o.Err != nil {
		r.errors = append(r.errors, fmt.Sprintf("%s failed: %v", displayName(o.Spec), o.Err))
	}
}

func (r *phaseResult) missing(id string) {
	r.warnings = append(r.warnings, fmt.Sprintf("Agent %s not found", id))
}

// Run executes plan phase by phase, taking workers out of pool as their
// specs are dispatched. Plan-level failures are reported in the result; the
// returned error is non-nil only when plan is nil.
//
// Cancelling ctx stops the run at the next phase boundary. Workers already
// dispatched are not interrupted.
func (e *Engine) Run(ctx context.Context, plan *models.ExecutionPlan, pool *WorkerPool) (*models.ExecutionResult, error) {
	if plan == nil {
		return nil, ErrNilPlan
	}
	if pool == nil {
		pool = NewWorkerPool()
	}

	start := time.Now()
	result := &models.ExecutionResult{}
	total := len(plan.Phases)

	e.logger.Log("[engine] run started: phases=%d agents=%d workers=%d mode=%s max_parallel=%d",
		total, plan.TotalAgents(), pool.Len(), e.mode, e.maxParallel)

	for i, phase := range plan.Phases {
		num := i + 1

		if err := ctx.Err(); err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("Execution stopped before phase %d: %v", num, err))
			e.logger.Log("[engine] stopped before phase %d: %v", num, err)
			break
		}

		if e.mode.NeedsApproval(i, total) {
			approved, err := e.approver.Approve(ctx, phase.Description)
			if err != nil {
				result.Warnings = append(result.Warnings, fmt.Sprintf("Phase %d approval failed: %v", num, err))
				e.emit(Event{Type: EventPhaseSkipped, Phase: num, TotalPhases: total, PhaseDescription: phase.Description, Error: err})
				continue
			}
			if !approved {
				result.Warnings = append(result.Warnings, fmt.Sprintf("Phase %d skipped by user", num))
				e.emit(Event{Type: EventPhaseSkipped, Phase: num, TotalPhases: total, PhaseDescription: phase.Description})
				e.logger.Log("[engine] phase %d declined", num)
				continue
			}
		}

		e.emit(Event{Type: EventPhaseStarted, Phase: num, TotalPhases: total, PhaseDescription: phase.Description, Parallel: phase.Parallel})
		e.logger.Log("[engine] phase %d/%d started: %s (%d agents, parallel=%v)",
			num, total, phase.Description, len(phase.Agents), phase.Parallel)

		var pr phaseResult
		if phase.Parallel {
			pr = e.runParallel(ctx, num, phase, pool)
		} else {
			pr = e.runSequential(ctx, num, phase, pool)
		}

		result.TokensUsed += pr.tokens
		result.AgentsExecuted += pr.completed
		result.Errors = append(result.Errors, pr.errors...)
		result.Warnings = append(result.Warnings, pr.warnings...)

		for _, w := range e.budget.Add(pr.tokens) {
			result.Warnings = append(result.Warnings, w)
			e.emit(Event{Type: EventBudgetWarning, Phase: num, TotalPhases: total, Message: w})
		}

		e.emit(Event{Type: EventPhaseCompleted, Phase: num, TotalPhases: total, PhaseDescription: phase.Description,
			Parallel: phase.Parallel, TokensUsed: pr.tokens})
		e.logger.Log("[engine] phase %d finished: completed=%d tokens=%d errors=%d critical=%v",
			num, pr.completed, pr.tokens, len(pr.errors), pr.critical)

		if pr.critical {
			msg := fmt.Sprintf("Critical failure in phase %d, stopping execution", num)
			result.Errors = append(result.Errors, msg)
			e.emit(Event{Type: EventCriticalFailure, Phase: num, TotalPhases: total, Message: msg})
			break
		}
	}

	result.ExecutionTimeSecs = time.Since(start).Seconds()
	result.Success = len(result.Errors) == 0

	e.emit(Event{Type: EventRunDone, TotalPhases: total, TokensUsed: result.TokensUsed,
		Duration: time.Since(start), Message: fmt.Sprintf("%d agents executed", result.AgentsExecuted)})
	e.logger.Log("[engine] run finished: success=%v agents=%d tokens=%d errors=%d warnings=%d",
		result.Success, result.AgentsExecuted, result.TokensUsed, len(result.Errors), len(result.Warnings))
	if used, budget, fraction := e.budget.Usage(); budget > 0 {
		e.logger.Log("[engine] budget %s: %d/%d tokens (%.0f%%)", e.budget.Status(), used, budget, fraction*100)
	}
	if unused := pool.IDs(); len(unused) > 0 {
		e.logger.Log("[engine] unused workers: %s", strings.Join(unused, ", "))
	}

	return result, nil
}

// runParallel dispatches every spec of phase concurrently, at most
// maxParallel at a time, and waits for all of them. Failures are never
// critical here.
func (e *Engine) runParallel(ctx context.Context, num int, phase models.ExecutionPhase, pool *WorkerPool) phaseResult {
	var pr phaseResult

	dispatchCtx := context.WithoutCancel(ctx)
	sem := semaphore.NewWeighted(int64(e.maxParallel))
	outcomes := make([]AgentOutcome, len(phase.Agents))
	dispatched := make([]bool, len(phase.Agents))

	var g errgroup.Group
	for i, spec := range phase.Agents {
		w, err := pool.Take(spec.ID)
		if err != nil {
			pr.missing(spec.ID)
			e.emitMissing(num, spec)
			continue
		}

		// The permit is taken before spawning so dispatch order follows
		// the phase order once the bound is reached.
		if err := sem.Acquire(dispatchCtx, 1); err != nil {
			pr.errors = append(pr.errors, fmt.Sprintf("%s failed: %v", displayName(spec), err))
			continue
		}

		dispatched[i] = true
		g.Go(func() error {
			defer sem.Release(1)
			outcomes[i] = e.dispatch(dispatchCtx, num, spec, w)
			return nil
		})
	}
	_ = g.Wait()

	for i, ok := range dispatched {
		if ok {
			pr.record(outcomes[i])
		}
	}
	return pr
}

// runSequential dispatches specs one at a time in list order. A failing
// Architecture spec is critical and ends the phase.
func (e *Engine) runSequential(ctx context.Context, num int, phase models.ExecutionPhase, pool *WorkerPool) phaseResult {
	var pr phaseResult

	dispatchCtx := context.WithoutCancel(ctx)
	for _, spec := range phase.Agents {
		w, err := pool.Take(spec.ID)
		if err != nil {
			pr.missing(spec.ID)
			e.emitMissing(num, spec)
			continue
		}

		o := e.dispatch(dispatchCtx, num, spec, w)
		pr.record(o)

		if !o.Succeeded() && spec.Capability == models.CapabilityArchitecture {
			pr.critical = true
			break
		}
	}
	return pr
}

// dispatch runs one worker and reports the outcome.
func (e *Engine) dispatch(ctx context.Context, num int, spec models.AgentSpec, w agent.Worker) AgentOutcome {
	e.emit(Event{Type: EventAgentStarted, Phase: num, AgentID: spec.ID, AgentName: displayName(spec), Capability: spec.Capability})

	start := time.Now()
	res, err := e.execute(ctx, spec, w)
	if err == nil && !res.Success {
		err = ErrReportedFailure
	}

	o := AgentOutcome{
		Phase:    num,
		Spec:     spec,
		Result:   res,
		Err:      err,
		Duration: time.Since(start),
	}

	ev := Event{Type: EventAgentCompleted, Phase: num, AgentID: spec.ID, AgentName: displayName(spec),
		Capability: spec.Capability, TokensUsed: res.TokensUsed, Duration: o.Duration}
	if err != nil {
		ev.Type = EventAgentFailed
		ev.Error = err
		e.logger.Log("[engine] agent %s failed after %s: %v", spec.ID, o.Duration, err)
	} else {
		e.logger.Log("[engine] agent %s completed in %s (%d tokens)", spec.ID, o.Duration, res.TokensUsed)
	}
	e.emit(ev)

	if e.onOutcome != nil {
		e.onOutcome(o)
	}
	return o
}

// execute calls the worker, bounding it by the worker timeout if set.
// On timeout the call is abandoned: its goroutine keeps running until the
// worker honours ctx, and the caller releases the parallel permit right
// away. A worker that ignores ctx can therefore overlap with later
// dispatches beyond maxParallel.
func (e *Engine) execute(ctx context.Context, spec models.AgentSpec, w agent.Worker) (models.WorkerResult, error) {
	if e.workerTimeout <= 0 {
		return callWorker(ctx, w, spec.Task)
	}

	ctx, cancel := context.WithTimeout(ctx, e.workerTimeout)
	defer cancel()

	type reply struct {
		res models.WorkerResult
		err error
	}
	ch := make(chan reply, 1)
	go func() {
		res, err := callWorker(ctx, w, spec.Task)
		ch <- reply{res: res, err: err}
	}()

	select {
	case r := <-ch:
		return r.res, r.err
	case <-ctx.Done():
		e.logger.Log("[engine] %s abandoned after %s", spec.ID, e.workerTimeout)
		return models.WorkerResult{}, fmt.Errorf("%w after %s", ErrWorkerTimeout, e.workerTimeout)
	}
}

// callWorker turns a worker panic into an error.
func callWorker(ctx context.Context, w agent.Worker, task string) (res models.WorkerResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("worker panicked: %v", r)
		}
	}()
	return w.Execute(ctx, task)
}

func (e *Engine) emit(ev Event) {
	e.emitter.Emit(ev)
}

func (e *Engine) emitMissing(num int, spec models.AgentSpec) {
	e.logger.Log("[engine] no worker for %s", spec.ID)
	e.emit(Event{Type: EventAgentMissing, Phase: num, AgentID: spec.ID, AgentName: displayName(spec),
		Capability: spec.Capability, Message: fmt.Sprintf("Agent %s not found", spec.ID)})
}

func displayName(spec models.AgentSpec) string {
	if spec.Name != "" {
		return spec.Name
	}
	return spec.ID
}

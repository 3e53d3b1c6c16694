package orchestrator

import (
	"time"

	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// EventType represents the type of engine event.
type EventType string

const (
	// EventPhaseStarted is emitted when a phase begins dispatching.
	EventPhaseStarted EventType = "phase_started"
	// EventPhaseSkipped is emitted when a phase is declined at its approval gate.
	EventPhaseSkipped EventType = "phase_skipped"
	// EventPhaseCompleted is emitted after every dispatch of a phase has returned.
	EventPhaseCompleted EventType = "phase_completed"
	// EventAgentStarted is emitted when a worker is dispatched.
	EventAgentStarted EventType = "agent_started"
	// EventAgentCompleted is emitted when a worker succeeds.
	EventAgentCompleted EventType = "agent_completed"
	// EventAgentFailed is emitted when a worker fails.
	EventAgentFailed EventType = "agent_failed"
	// EventAgentMissing is emitted when a spec has no worker in the pool.
	EventAgentMissing EventType = "agent_missing"
	// EventBudgetWarning is emitted when token usage crosses a budget threshold.
	EventBudgetWarning EventType = "budget_warning"
	// EventCriticalFailure is emitted when a critical failure stops the plan.
	EventCriticalFailure EventType = "critical_failure"
	// EventRunDone is emitted once when the engine finishes.
	EventRunDone EventType = "run_done"
)

// Event is emitted by the engine to report progress.
type Event struct {
	Type EventType
	// Phase is the 1-based phase number, zero for run-level events.
	Phase int
	// TotalPhases is the number of phases in the plan.
	TotalPhases int
	// PhaseDescription is the description of the related phase.
	PhaseDescription string
	// Parallel reports whether the related phase runs in parallel.
	Parallel bool
	// AgentID and AgentName identify the related spec, if any.
	AgentID   string
	AgentName string
	// Capability of the related spec, if any.
	Capability models.Capability
	// Message provides additional context.
	Message string
	// Error contains failure details.
	Error error
	// TokensUsed is the tokens reported by the worker, or the run total
	// for EventRunDone.
	TokensUsed int
	// Duration is the worker or run duration.
	Duration time.Duration
	// Timestamp is when the event occurred.
	Timestamp time.Time
}

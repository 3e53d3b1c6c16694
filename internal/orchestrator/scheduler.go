package orchestrator

import (
	"fmt"
	"strings"

	"github.com/ShayCichocki/mastercoder/internal/graph"
	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// iterationsPerSpec scales the leveling bound with the number of specs.
const iterationsPerSpec = 2

// PhaseScheduler levels agent specs into ordered execution phases.
type PhaseScheduler struct {
	logger *DebugLogger
}

// NewPhaseScheduler creates a PhaseScheduler.
func NewPhaseScheduler() *PhaseScheduler {
	return &PhaseScheduler{}
}

// SetLogger routes structural warnings to l in addition to the package logger.
func (s *PhaseScheduler) SetLogger(l *DebugLogger) {
	s.logger = l
}

// Schedule levels specs using the default iteration bound of twice the
// number of specs. It returns the plan and any structural warnings.
func (s *PhaseScheduler) Schedule(specs []models.AgentSpec) (*models.ExecutionPlan, []string) {
	s.diagnose(specs)
	plan, warnings := SchedulePhases(specs, DefaultIterationBound(len(specs)))
	for _, w := range warnings {
		s.logger.Log("[scheduler] %s", w)
	}
	return plan, warnings
}

// diagnose logs self-loops, dangling references and cycles before leveling,
// or the dependency order when the graph is sound.
func (s *PhaseScheduler) diagnose(specs []models.AgentSpec) {
	if s.logger == nil {
		return
	}

	g := graph.New()
	g.SetDebugLog(s.logger.Log)
	g.Build(specs)
	s.logger.Log("[scheduler] scheduling %d specs", g.Size())
	for _, id := range g.SelfLoops() {
		s.logger.Log("[scheduler] %s depends on itself", id)
	}
	for _, e := range g.Dangling() {
		s.logger.Log("[scheduler] dangling dependency %s", e)
	}

	if g.HasCycle() {
		s.logger.Log("[scheduler] %v", graph.ErrCycleDetected)
	}
	if order, err := g.TopologicalSort(); err == nil {
		s.logger.Log("[scheduler] dependency order: %s", strings.Join(order, ", "))
	}
}

// DefaultIterationBound returns the leveling bound for n specs.
func DefaultIterationBound(n int) int {
	return iterationsPerSpec * n
}

// SchedulePhases groups specs into phases so that every spec runs after the
// specs it depends on. Each iteration emits one phase holding every spec whose
// dependencies are already scheduled.
//
// Malformed graphs never cause loss or non-termination. When no spec is ready
// the rest are emitted as one sequential fallback phase. If leveling takes
// more than maxIterations rounds, each remaining spec gets its own sequential
// phase. Either way every input spec appears in the plan exactly once.
func SchedulePhases(specs []models.AgentSpec, maxIterations int) (*models.ExecutionPlan, []string) {
	plan := &models.ExecutionPlan{}
	var warnings []string

	remaining := append([]models.AgentSpec(nil), specs...)
	completed := make(map[string]bool, len(specs))
	iterations := 0

	for len(remaining) > 0 {
		iterations++

		if iterations > maxIterations {
			warnings = append(warnings, fmt.Sprintf(
				"dependency leveling exceeded %d iterations, running %d remaining agents sequentially: %s",
				maxIterations, len(remaining), strings.Join(specIDs(remaining), ", ")))
			debugLog("[scheduler] iteration bound %d exceeded, remaining=%v", maxIterations, specIDs(remaining))

			for _, spec := range remaining {
				plan.Phases = append(plan.Phases, models.ExecutionPhase{
					Description: fmt.Sprintf("Phase %d (dependency cycle recovery)", len(plan.Phases)+1),
					Agents:      []models.AgentSpec{spec},
				})
			}
			break
		}

		ready, notReady := partitionReady(remaining, completed)

		if len(ready) == 0 {
			unmet := graph.Unmet(notReady, completed)
			warnings = append(warnings, fmt.Sprintf(
				"circular or unresolved dependencies, running %d remaining agents as a fallback phase: %s",
				len(notReady), joinEdges(unmet)))
			debugLog("[scheduler] no ready specs, unmet=%v", unmet)

			plan.Phases = append(plan.Phases, models.ExecutionPhase{
				Description: fmt.Sprintf("Phase %d (circular dependency fallback)", len(plan.Phases)+1),
				Agents:      notReady,
			})
			break
		}

		parallel := len(ready) > 1 && independent(ready)
		description := fmt.Sprintf("Phase %d", len(plan.Phases)+1)
		if parallel {
			description += " (parallel execution)"
		}

		for _, spec := range ready {
			completed[spec.ID] = true
		}

		debugLog("[scheduler] %s: %v", description, specIDs(ready))
		plan.Phases = append(plan.Phases, models.ExecutionPhase{
			Description: description,
			Agents:      ready,
			Parallel:    parallel,
		})

		remaining = notReady
	}

	return plan, warnings
}

// partitionReady splits specs into those whose dependencies are all
// completed and the rest, preserving order in both.
func partitionReady(specs []models.AgentSpec, completed map[string]bool) (ready, notReady []models.AgentSpec) {
	for _, spec := range specs {
		if allCompleted(spec.Dependencies, completed) {
			ready = append(ready, spec)
		} else {
			notReady = append(notReady, spec)
		}
	}
	return ready, notReady
}

func allCompleted(ids []string, completed map[string]bool) bool {
	for _, id := range ids {
		if !completed[id] {
			return false
		}
	}
	return true
}

// independent reports whether no spec in specs depends on another one.
func independent(specs []models.AgentSpec) bool {
	for _, a := range specs {
		for _, b := range specs {
			if a.ID != b.ID && b.DependsOn(a.ID) {
				return false
			}
		}
	}
	return true
}

func specIDs(specs []models.AgentSpec) []string {
	ids := make([]string, len(specs))
	for i, s := range specs {
		ids[i] = s.ID
	}
	return ids
}

func joinEdges(edges []graph.Edge) string {
	parts := make([]string, len(edges))
	for i, e := range edges {
		parts[i] = e.String()
	}
	return strings.Join(parts, ", ")
}

package orchestrator

import (
	"fmt"
	"math/rand/v2"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/ShayCichocki/mastercoder/pkg/models"
)

func spec(id string, deps ...string) models.AgentSpec {
	return models.AgentSpec{
		ID:           id,
		Name:         "Agent " + id,
		Capability:   models.CapabilityCodeWriting,
		Task:         "task " + id,
		Dependencies: deps,
	}
}

func phaseIDs(plan *models.ExecutionPlan) [][]string {
	out := make([][]string, len(plan.Phases))
	for i, p := range plan.Phases {
		out[i] = specIDs(p.Agents)
	}
	return out
}

func TestSchedulePhases(t *testing.T) {
	tests := []struct {
		name         string
		specs        []models.AgentSpec
		maxIter      int
		wantPhases   [][]string
		wantParallel []bool
		wantDescs    []string
		wantWarnings []string
	}{
		{
			name:    "empty",
			specs:   nil,
			maxIter: 0,
		},
		{
			name:         "single spec",
			specs:        []models.AgentSpec{spec("A")},
			maxIter:      2,
			wantPhases:   [][]string{{"A"}},
			wantParallel: []bool{false},
			wantDescs:    []string{"Phase 1"},
		},
		{
			name:         "diamond",
			specs:        []models.AgentSpec{spec("A"), spec("B", "A"), spec("C", "A"), spec("D", "B", "C")},
			maxIter:      8,
			wantPhases:   [][]string{{"A"}, {"B", "C"}, {"D"}},
			wantParallel: []bool{false, true, false},
			wantDescs:    []string{"Phase 1", "Phase 2 (parallel execution)", "Phase 3"},
		},
		{
			name:         "independent specs share one phase",
			specs:        []models.AgentSpec{spec("A"), spec("B"), spec("C")},
			maxIter:      6,
			wantPhases:   [][]string{{"A", "B", "C"}},
			wantParallel: []bool{true},
			wantDescs:    []string{"Phase 1 (parallel execution)"},
		},
		{
			name:         "self loop",
			specs:        []models.AgentSpec{spec("A", "A")},
			maxIter:      2,
			wantPhases:   [][]string{{"A"}},
			wantParallel: []bool{false},
			wantDescs:    []string{"Phase 1 (circular dependency fallback)"},
			wantWarnings: []string{"A -> A"},
		},
		{
			name:         "cycle after a ready prefix",
			specs:        []models.AgentSpec{spec("X"), spec("A", "B"), spec("B", "A")},
			maxIter:      6,
			wantPhases:   [][]string{{"X"}, {"A", "B"}},
			wantParallel: []bool{false, false},
			wantDescs:    []string{"Phase 1", "Phase 2 (circular dependency fallback)"},
			wantWarnings: []string{"A -> B, B -> A"},
		},
		{
			name:         "dangling dependency",
			specs:        []models.AgentSpec{spec("A", "ghost"), spec("B")},
			maxIter:      4,
			wantPhases:   [][]string{{"B"}, {"A"}},
			wantParallel: []bool{false, false},
			wantDescs:    []string{"Phase 1", "Phase 2 (circular dependency fallback)"},
			wantWarnings: []string{"A -> ghost"},
		},
		{
			name:         "iteration bound exceeded mid chain",
			specs:        []models.AgentSpec{spec("A"), spec("B", "A"), spec("C", "B")},
			maxIter:      1,
			wantPhases:   [][]string{{"A"}, {"B"}, {"C"}},
			wantParallel: []bool{false, false, false},
			wantDescs:    []string{"Phase 1", "Phase 2 (dependency cycle recovery)", "Phase 3 (dependency cycle recovery)"},
			wantWarnings: []string{"exceeded 1 iterations"},
		},
		{
			name:         "zero iteration bound",
			specs:        []models.AgentSpec{spec("A"), spec("B")},
			maxIter:      0,
			wantPhases:   [][]string{{"A"}, {"B"}},
			wantParallel: []bool{false, false},
			wantDescs:    []string{"Phase 1 (dependency cycle recovery)", "Phase 2 (dependency cycle recovery)"},
			wantWarnings: []string{"exceeded 0 iterations"},
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			plan, warnings := SchedulePhases(tc.specs, tc.maxIter)
			if plan == nil {
				t.Fatal("expected non-nil plan")
			}

			got := phaseIDs(plan)
			if fmt.Sprint(got) != fmt.Sprint(tc.wantPhases) && !(len(got) == 0 && len(tc.wantPhases) == 0) {
				t.Errorf("phases = %v, want %v", got, tc.wantPhases)
			}

			for i, p := range plan.Phases {
				if i < len(tc.wantParallel) && p.Parallel != tc.wantParallel[i] {
					t.Errorf("phase %d parallel = %v, want %v", i+1, p.Parallel, tc.wantParallel[i])
				}
				if i < len(tc.wantDescs) && p.Description != tc.wantDescs[i] {
					t.Errorf("phase %d description = %q, want %q", i+1, p.Description, tc.wantDescs[i])
				}
			}

			if len(warnings) != len(tc.wantWarnings) {
				t.Fatalf("warnings = %v, want %d matching %v", warnings, len(tc.wantWarnings), tc.wantWarnings)
			}
			for i, want := range tc.wantWarnings {
				if !strings.Contains(warnings[i], want) {
					t.Errorf("warning %q does not contain %q", warnings[i], want)
				}
			}
		})
	}
}

func TestPhaseScheduler_LogsDiagnostics(t *testing.T) {
	path := filepath.Join(t.TempDir(), "debug.log")
	logger, err := NewDebugLogger(path)
	if err != nil {
		t.Fatalf("NewDebugLogger: %v", err)
	}

	s := NewPhaseScheduler()
	s.SetLogger(logger)
	s.Schedule([]models.AgentSpec{spec("a"), spec("b", "a")})
	s.Schedule([]models.AgentSpec{spec("c", "c"), spec("d", "ghost"), spec("e", "f"), spec("f", "e")})
	if err := logger.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	content := string(data)
	for _, want := range []string{
		"[scheduler] scheduling 2 specs",
		"[scheduler] dependency order: a, b",
		"[scheduler] c depends on itself",
		"[scheduler] dangling dependency d -> ghost",
		"[scheduler] circular dependency detected",
	} {
		if !strings.Contains(content, want) {
			t.Errorf("log missing %q:\n%s", want, content)
		}
	}
}

func TestPhaseScheduler_DefaultBoundLevelsLongChain(t *testing.T) {
	var specs []models.AgentSpec
	prev := ""
	for i := range 10 {
		id := fmt.Sprintf("s%d", i)
		if prev == "" {
			specs = append(specs, spec(id))
		} else {
			specs = append(specs, spec(id, prev))
		}
		prev = id
	}

	plan, warnings := NewPhaseScheduler().Schedule(specs)
	if len(warnings) != 0 {
		t.Errorf("unexpected warnings: %v", warnings)
	}
	if len(plan.Phases) != 10 {
		t.Fatalf("expected 10 phases, got %d", len(plan.Phases))
	}
	for i, p := range plan.Phases {
		if want := fmt.Sprintf("Phase %d", i+1); p.Description != want {
			t.Errorf("phase %d description = %q, want %q", i+1, p.Description, want)
		}
	}
}

func TestDefaultIterationBound(t *testing.T) {
	if got := DefaultIterationBound(7); got != 14 {
		t.Errorf("DefaultIterationBound(7) = %d, want 14", got)
	}
	if got := DefaultIterationBound(0); got != 0 {
		t.Errorf("DefaultIterationBound(0) = %d, want 0", got)
	}
}

// phaseIndex maps spec IDs to the index of the phase holding them and fails
// the test if any spec is lost or duplicated.
func phaseIndex(t *testing.T, specs []models.AgentSpec, plan *models.ExecutionPlan) map[string]int {
	t.Helper()

	idx := make(map[string]int)
	for i, p := range plan.Phases {
		for _, s := range p.Agents {
			if _, dup := idx[s.ID]; dup {
				t.Fatalf("spec %s scheduled twice", s.ID)
			}
			idx[s.ID] = i
		}
	}
	if len(idx) != len(specs) {
		t.Fatalf("scheduled %d specs, want %d", len(idx), len(specs))
	}
	for _, s := range specs {
		if _, ok := idx[s.ID]; !ok {
			t.Fatalf("spec %s lost", s.ID)
		}
	}
	return idx
}

func TestSchedulePhases_AcyclicRespectsDependencies(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for round := range 100 {
		n := 1 + rng.IntN(12)
		specs := make([]models.AgentSpec, n)
		for i := range n {
			var deps []string
			for j := range i {
				if rng.IntN(3) == 0 {
					deps = append(deps, fmt.Sprintf("s%d", j))
				}
			}
			specs[i] = spec(fmt.Sprintf("s%d", i), deps...)
		}
		// Shuffle so dependencies do not always precede dependents in input order.
		rng.Shuffle(n, func(i, j int) { specs[i], specs[j] = specs[j], specs[i] })

		plan, warnings := SchedulePhases(specs, DefaultIterationBound(n))
		if len(warnings) != 0 {
			t.Fatalf("round %d: unexpected warnings %v", round, warnings)
		}

		idx := phaseIndex(t, specs, plan)
		for _, s := range specs {
			for _, dep := range s.Dependencies {
				if idx[dep] >= idx[s.ID] {
					t.Errorf("round %d: %s (phase %d) not after dependency %s (phase %d)",
						round, s.ID, idx[s.ID]+1, dep, idx[dep]+1)
				}
			}
		}
	}
}

func TestSchedulePhases_ArbitraryGraphsLoseNothing(t *testing.T) {
	rng := rand.New(rand.NewPCG(3, 4))

	for range 100 {
		n := 1 + rng.IntN(10)
		specs := make([]models.AgentSpec, n)
		for i := range n {
			var deps []string
			for range rng.IntN(3) {
				// Indexes past n produce dangling references.
				deps = append(deps, fmt.Sprintf("s%d", rng.IntN(n+2)))
			}
			specs[i] = spec(fmt.Sprintf("s%d", i), deps...)
		}

		for _, bound := range []int{0, 1, DefaultIterationBound(n)} {
			plan, _ := SchedulePhases(specs, bound)
			phaseIndex(t, specs, plan)
		}
	}
}

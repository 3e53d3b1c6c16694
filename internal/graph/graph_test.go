package graph

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ShayCichocki/mastercoder/pkg/models"
)

func spec(id string, deps ...string) models.AgentSpec {
	return models.AgentSpec{ID: id, Name: id, Capability: models.CapabilityCodeWriting, Dependencies: deps}
}

func build(specs []models.AgentSpec) *DependencyGraph {
	g := New()
	g.Build(specs)
	return g
}

func diamond() []models.AgentSpec {
	return []models.AgentSpec{
		spec("A"),
		spec("B", "A"),
		spec("C", "A"),
		spec("D", "B", "C"),
	}
}

func TestBuild(t *testing.T) {
	g := build(diamond())
	assert.Equal(t, 4, g.Size())

	// A repeated ID replaces the spec without growing the graph.
	g.Build([]models.AgentSpec{spec("A", "D")})
	assert.Equal(t, 4, g.Size())
	assert.True(t, g.HasCycle())
}

func TestTopologicalSort(t *testing.T) {
	order, err := build(diamond()).TopologicalSort()
	require.NoError(t, err)
	assert.Equal(t, []string{"A", "B", "C", "D"}, order)
}

func TestTopologicalSort_DependenciesComeFirst(t *testing.T) {
	specs := []models.AgentSpec{
		spec("docs", "coder", "tester"),
		spec("tester", "coder"),
		spec("coder", "architect"),
		spec("architect"),
	}

	order, err := build(specs).TopologicalSort()
	require.NoError(t, err)

	pos := make(map[string]int)
	for i, id := range order {
		pos[id] = i
	}
	for _, s := range specs {
		for _, dep := range s.Dependencies {
			if pos[dep] >= pos[s.ID] {
				t.Errorf("dependency %s placed after %s", dep, s.ID)
			}
		}
	}
}

func TestTopologicalSort_Errors(t *testing.T) {
	tests := []struct {
		name  string
		specs []models.AgentSpec
		want  error
	}{
		{"self loop", []models.AgentSpec{spec("A", "A")}, ErrCycleDetected},
		{"two node cycle", []models.AgentSpec{spec("A", "B"), spec("B", "A")}, ErrCycleDetected},
		{"dangling", []models.AgentSpec{spec("A", "ghost")}, ErrUnknownDependency},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := build(tt.specs).TopologicalSort()
			if !errors.Is(err, tt.want) {
				t.Fatalf("TopologicalSort() error = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestHasCycle(t *testing.T) {
	tests := []struct {
		name  string
		specs []models.AgentSpec
		want  bool
	}{
		{"empty", nil, false},
		{"diamond", diamond(), false},
		{"self loop", []models.AgentSpec{spec("A", "A")}, true},
		{"three node cycle", []models.AgentSpec{spec("A", "C"), spec("B", "A"), spec("C", "B")}, true},
		{"dangling is not a cycle", []models.AgentSpec{spec("A", "ghost")}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := build(tt.specs).HasCycle(); got != tt.want {
				t.Errorf("HasCycle() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestDiagnostics(t *testing.T) {
	g := build([]models.AgentSpec{
		spec("A", "A"),
		spec("B", "ghost", "A"),
		spec("C"),
	})

	assert.Equal(t, []string{"A"}, g.SelfLoops())
	assert.Equal(t, []Edge{{Spec: "B", Dependency: "ghost"}}, g.Dangling())
}

func TestUnmet(t *testing.T) {
	unmet := Unmet(diamond(), map[string]bool{"A": true, "B": true})
	assert.Equal(t, []Edge{{Spec: "D", Dependency: "C"}}, unmet)
	assert.Equal(t, "D -> C", unmet[0].String())
}

func TestSetDebugLog(t *testing.T) {
	var lines int
	g := New()
	g.SetDebugLog(func(format string, args ...interface{}) { lines++ })
	g.SetDebugLog(nil)
	g.Build(diamond())
	assert.Positive(t, lines)
}

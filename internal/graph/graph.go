// Package graph provides a dependency graph over agent specs.
package graph

import (
	"errors"
	"fmt"
	"sync"

	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// ErrCycleDetected indicates a circular dependency was found between specs.
var ErrCycleDetected = errors.New("circular dependency detected")

// ErrUnknownDependency indicates a spec depends on an id that is not in the graph.
var ErrUnknownDependency = errors.New("unknown dependency")

// Edge is a single "depends on" relationship from Spec to Dependency.
type Edge struct {
	Spec       string
	Dependency string
}

// String formats the edge as "spec -> dependency".
func (e Edge) String() string {
	return fmt.Sprintf("%s -> %s", e.Spec, e.Dependency)
}

// DependencyGraph is a directed graph of agent specs. Unlike a strict DAG it
// accepts dangling references, self-loops and cycles so that callers can
// diagnose malformed plans instead of rejecting them.
type DependencyGraph struct {
	mu sync.RWMutex
	// nodes maps spec ID to the spec itself.
	nodes map[string]models.AgentSpec
	// order preserves insertion order so results are deterministic.
	order []string
	// edges maps spec ID to the IDs it depends on, in declaration order.
	edges map[string][]string
	// debugLog is an optional logging function.
	debugLog func(format string, args ...interface{})
}

// New creates a new empty dependency graph.
func New() *DependencyGraph {
	return &DependencyGraph{
		nodes:    make(map[string]models.AgentSpec),
		edges:    make(map[string][]string),
		debugLog: func(format string, args ...interface{}) {},
	}
}

// SetDebugLog sets the debug logging function.
func (g *DependencyGraph) SetDebugLog(fn func(format string, args ...interface{})) {
	if fn != nil {
		g.debugLog = fn
	}
}

// Build adds specs to the graph. A repeated ID replaces the earlier spec but
// keeps its original position.
func (g *DependencyGraph) Build(specs []models.AgentSpec) {
	g.mu.Lock()
	defer g.mu.Unlock()

	g.debugLog("[graph.Build] building graph from %d specs", len(specs))

	for _, spec := range specs {
		if _, exists := g.nodes[spec.ID]; !exists {
			g.order = append(g.order, spec.ID)
		}
		g.nodes[spec.ID] = spec
		g.edges[spec.ID] = append([]string(nil), spec.Dependencies...)
		g.debugLog("[graph.Build] spec %s depends_on=%v", spec.ID, spec.Dependencies)
	}
}

// Size returns the number of specs in the graph.
func (g *DependencyGraph) Size() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.nodes)
}

// SelfLoops returns the IDs of specs that list themselves as a dependency.
func (g *DependencyGraph) SelfLoops() []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var loops []string
	for _, id := range g.order {
		for _, depID := range g.edges[id] {
			if depID == id {
				loops = append(loops, id)
				break
			}
		}
	}
	return loops
}

// Dangling returns every edge whose dependency is not a spec in the graph.
func (g *DependencyGraph) Dangling() []Edge {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var dangling []Edge
	for _, id := range g.order {
		for _, depID := range g.edges[id] {
			if _, ok := g.nodes[depID]; !ok {
				dangling = append(dangling, Edge{Spec: id, Dependency: depID})
			}
		}
	}
	return dangling
}

// Unmet returns the edges of the given specs whose dependency is not in
// satisfied. It does not consult the graph, so it works on any subset.
func Unmet(specs []models.AgentSpec, satisfied map[string]bool) []Edge {
	var unmet []Edge
	for _, spec := range specs {
		for _, depID := range spec.Dependencies {
			if !satisfied[depID] {
				unmet = append(unmet, Edge{Spec: spec.ID, Dependency: depID})
			}
		}
	}
	return unmet
}

// HasCycle returns true if the specs in the graph form a circular dependency.
// Self-loops count as cycles. Dangling edges are ignored.
func (g *DependencyGraph) HasCycle() bool {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return g.hasCycleLocked()
}

// hasCycleLocked assumes the lock is held.
func (g *DependencyGraph) hasCycleLocked() bool {
	// 0 = unvisited, 1 = in progress, 2 = done.
	colors := make(map[string]int, len(g.nodes))

	var visit func(id string) bool
	visit = func(id string) bool {
		colors[id] = 1

		for _, depID := range g.edges[id] {
			if _, ok := g.nodes[depID]; !ok {
				continue
			}
			switch colors[depID] {
			case 1:
				return true
			case 0:
				if visit(depID) {
					return true
				}
			}
		}

		colors[id] = 2
		return false
	}

	for _, id := range g.order {
		if colors[id] == 0 && visit(id) {
			return true
		}
	}
	return false
}

// TopologicalSort returns spec IDs ordered so that every dependency comes
// before the specs that depend on it. Ties keep insertion order.
func (g *DependencyGraph) TopologicalSort() ([]string, error) {
	g.mu.RLock()
	defer g.mu.RUnlock()

	for _, id := range g.order {
		for _, depID := range g.edges[id] {
			if _, ok := g.nodes[depID]; !ok {
				return nil, fmt.Errorf("spec %s depends on %s: %w", id, depID, ErrUnknownDependency)
			}
		}
	}

	if g.hasCycleLocked() {
		return nil, ErrCycleDetected
	}

	visited := make(map[string]bool, len(g.nodes))
	result := make([]string, 0, len(g.nodes))

	var visit func(id string)
	visit = func(id string) {
		if visited[id] {
			return
		}
		visited[id] = true

		for _, depID := range g.edges[id] {
			visit(depID)
		}

		result = append(result, id)
	}

	for _, id := range g.order {
		visit(id)
	}

	return result, nil
}

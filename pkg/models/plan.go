package models

// AgentSpec is a planned unit of work for a single agent.
// Dependencies may reference ids that do not exist or that form cycles;
// they are not validated at creation.
type AgentSpec struct {
	// ID is unique within one planning call (e.g. "coder-0").
	ID string `json:"id" yaml:"id"`
	// Name is the display name (e.g. "Code Writer Alpha").
	Name string `json:"name" yaml:"name"`
	// Capability is the expertise this spec requires.
	Capability Capability `json:"capability" yaml:"capability"`
	// Task is the instruction handed to the worker.
	Task string `json:"task" yaml:"task"`
	// Dependencies are ids of specs that must complete first.
	Dependencies []string `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
}

// DependsOn reports whether the spec lists id as a dependency.
func (s AgentSpec) DependsOn(id string) bool {
	for _, dep := range s.Dependencies {
		if dep == id {
			return true
		}
	}
	return false
}

// ExecutionPhase is a group of specs run together, in parallel or in order.
type ExecutionPhase struct {
	Description string      `json:"description" yaml:"description"`
	Agents      []AgentSpec `json:"agents" yaml:"agents"`
	Parallel    bool        `json:"parallel" yaml:"parallel"`
}

// ExecutionPlan is the ordered list of phases covering every planned spec once.
type ExecutionPlan struct {
	Phases []ExecutionPhase `json:"phases" yaml:"phases"`
}

// TotalAgents returns the number of specs across all phases.
func (p *ExecutionPlan) TotalAgents() int {
	if p == nil {
		return 0
	}
	total := 0
	for _, phase := range p.Phases {
		total += len(phase.Agents)
	}
	return total
}

// Specs returns every spec in phase order.
func (p *ExecutionPlan) Specs() []AgentSpec {
	if p == nil {
		return nil
	}
	specs := make([]AgentSpec, 0, p.TotalAgents())
	for _, phase := range p.Phases {
		specs = append(specs, phase.Agents...)
	}
	return specs
}

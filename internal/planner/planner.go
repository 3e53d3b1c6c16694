package planner

import (
	"fmt"

	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// Thresholds above which code writing is split across several agents.
const (
	fanOutMinComplexity = 7
	fanOutMinFiles      = 5
	filesPerWriter      = 3
)

// Spec id prefixes, one counter per prefix.
const (
	prefixArchitect = "architect"
	prefixCoder     = "coder"
	prefixSecurity  = "security"
	prefixTester    = "tester"
	prefixDocs      = "docs"
	prefixMigration = "migration"
)

// AgentSpecPlanner converts the capabilities of an analysis into agent specs
// with dependency edges.
type AgentSpecPlanner struct{}

// NewAgentSpecPlanner creates an AgentSpecPlanner.
func NewAgentSpecPlanner() *AgentSpecPlanner {
	return &AgentSpecPlanner{}
}

// Plan builds specs for analysis, capping code-writer fan-out by maxAgents.
// The result depends only on its inputs and on the order of
// analysis.RequiredCapabilities. Debugging, Performance and Review do not
// produce specs yet.
func (p *AgentSpecPlanner) Plan(analysis *models.TaskAnalysis, maxAgents int) []models.AgentSpec {
	if analysis == nil {
		return nil
	}

	b := &specBuilder{counters: make(map[string]int)}

	for _, capability := range analysis.RequiredCapabilities {
		switch capability {
		case models.CapabilityArchitecture:
			b.add(prefixArchitect, "Architect", capability,
				"Design system architecture and create implementation plan", nil)

		case models.CapabilityCodeWriting:
			writers := codeWriterCount(analysis, maxAgents, len(b.specs))
			deps := b.idsWithCapability(models.CapabilityArchitecture)
			for i := 0; i < writers; i++ {
				suffix := ""
				if writers > 1 {
					suffix = fmt.Sprintf(" (Part %d)", i+1)
				}
				b.add(prefixCoder, codeWriterName(b.counters[prefixCoder]), capability,
					"Implement code changes"+suffix, deps)
			}

		case models.CapabilitySecurity:
			b.add(prefixSecurity, "Security Auditor", capability,
				"Review code for security vulnerabilities",
				b.idsWithCapability(models.CapabilityCodeWriting))

		case models.CapabilityTesting:
			b.add(prefixTester, "Test Engineer", capability,
				"Write comprehensive tests",
				b.idsWithCapability(models.CapabilityCodeWriting))

		case models.CapabilityDocumentation:
			b.add(prefixDocs, "Documentation Writer", capability,
				"Create comprehensive documentation", b.allIDs())

		case models.CapabilityMigration:
			b.add(prefixMigration, "Migration Specialist", capability,
				"Plan and execute migration strategy", nil)

		case models.CapabilityDebugging, models.CapabilityPerformance, models.CapabilityReview:
			// No dedicated agent yet.
		}
	}

	return b.specs
}

// codeWriterCount returns how many code writers to create. It is always at
// least one, even when maxAgents is already used up by earlier specs.
func codeWriterCount(analysis *models.TaskAnalysis, maxAgents, specsSoFar int) int {
	if analysis.Complexity < fanOutMinComplexity || analysis.EstimatedFiles <= fanOutMinFiles {
		return 1
	}
	n := min(max(1, analysis.EstimatedFiles/filesPerWriter), maxAgents-specsSoFar)
	return max(1, n)
}

func codeWriterName(i int) string {
	switch i {
	case 0:
		return "Code Writer Alpha"
	case 1:
		return "Code Writer Beta"
	case 2:
		return "Code Writer Gamma"
	default:
		return fmt.Sprintf("Code Writer Delta-%d", i-2)
	}
}

// specBuilder accumulates specs and hands out per-prefix ids.
type specBuilder struct {
	specs    []models.AgentSpec
	counters map[string]int
}

func (b *specBuilder) add(prefix, name string, capability models.Capability, task string, deps []string) {
	id := fmt.Sprintf("%s-%d", prefix, b.counters[prefix])
	b.counters[prefix]++

	b.specs = append(b.specs, models.AgentSpec{
		ID:           id,
		Name:         name,
		Capability:   capability,
		Task:         task,
		Dependencies: append([]string(nil), deps...),
	})
}

func (b *specBuilder) idsWithCapability(c models.Capability) []string {
	var ids []string
	for _, s := range b.specs {
		if s.Capability == c {
			ids = append(ids, s.ID)
		}
	}
	return ids
}

func (b *specBuilder) allIDs() []string {
	ids := make([]string, 0, len(b.specs))
	for _, s := range b.specs {
		ids = append(ids, s.ID)
	}
	return ids
}

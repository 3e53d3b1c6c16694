// Package planner turns a free-text task into an analysis and a set of agent specs.
package planner

import "github.com/ShayCichocki/mastercoder/pkg/models"

// ComplexityKeywords is the single source of truth for complexity scoring.
type ComplexityKeywords struct {
	// High keywords add 2 each when present.
	High []string
	// Medium keywords add 1 each when present.
	Medium []string
	// MultiRequirement markers add 1 once if any is present.
	MultiRequirement []string
}

// DefaultComplexityKeywords are matched as substrings of the task text.
var DefaultComplexityKeywords = ComplexityKeywords{
	High: []string{
		"refactor",
		"migrate",
		"redesign",
		"architecture",
		"authentication",
		"oauth",
		"security",
		"encryption",
		"performance",
		"optimize",
		"scale",
		"distributed",
	},
	Medium: []string{
		"implement",
		"create",
		"build",
		"add feature",
		"integration",
		"api",
		"database",
		"tests",
	},
	MultiRequirement: []string{
		" and ",
		" with ",
	},
}

// CapabilityKeywords pairs a capability with the substrings that signal it.
type CapabilityKeywords struct {
	Capability models.Capability
	Keywords   []string
}

// DefaultCapabilityKeywords is evaluated in order; the order determines the
// order of RequiredCapabilities in an analysis.
var DefaultCapabilityKeywords = []CapabilityKeywords{
	{models.CapabilityCodeWriting, []string{"implement", "create", "write", "add", "build"}},
	{models.CapabilityTesting, []string{"test", "testing", "coverage", "unit test"}},
	{models.CapabilitySecurity, []string{"security", "auth", "oauth", "encryption", "vulnerability"}},
	{models.CapabilityDocumentation, []string{"document", "docs", "readme", "comments"}},
	{models.CapabilityDebugging, []string{"debug", "fix", "bug", "error", "issue"}},
	{models.CapabilityPerformance, []string{"optimize", "performance", "speed", "efficiency"}},
	{models.CapabilityArchitecture, []string{"architecture", "design", "refactor", "structure"}},
	{models.CapabilityMigration, []string{"migrate", "migration", "upgrade", "convert"}},
}

// File estimate multipliers keyed on scope hints in the task text.
var (
	wideScopeHints   = []string{"system", "entire"}
	narrowScopeHints = []string{"single", "one"}
)

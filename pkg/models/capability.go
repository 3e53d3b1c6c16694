package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrUnknownCapability is returned when a capability name cannot be parsed.
var ErrUnknownCapability = errors.New("unknown capability")

// Capability is the kind of expertise an agent brings to a task.
type Capability string

const (
	// CapabilityArchitecture covers system design and implementation plans.
	CapabilityArchitecture Capability = "Architecture"
	// CapabilityCodeWriting covers writing production code.
	CapabilityCodeWriting Capability = "CodeWriting"
	// CapabilityTesting covers tests and quality assurance.
	CapabilityTesting Capability = "Testing"
	// CapabilitySecurity covers security auditing.
	CapabilitySecurity Capability = "Security"
	// CapabilityDocumentation covers technical documentation.
	CapabilityDocumentation Capability = "Documentation"
	// CapabilityDebugging covers finding and fixing bugs.
	CapabilityDebugging Capability = "Debugging"
	// CapabilityPerformance covers profiling and optimization.
	CapabilityPerformance Capability = "Performance"
	// CapabilityMigration covers code and data migration.
	CapabilityMigration Capability = "Migration"
	// CapabilityReview covers code review.
	CapabilityReview Capability = "Review"
)

// AllCapabilities lists every capability in declaration order.
var AllCapabilities = []Capability{
	CapabilityArchitecture,
	CapabilityCodeWriting,
	CapabilityTesting,
	CapabilitySecurity,
	CapabilityDocumentation,
	CapabilityDebugging,
	CapabilityPerformance,
	CapabilityMigration,
	CapabilityReview,
}

// Valid returns true if the capability is a known value.
func (c Capability) Valid() bool {
	switch c {
	case CapabilityArchitecture, CapabilityCodeWriting, CapabilityTesting,
		CapabilitySecurity, CapabilityDocumentation, CapabilityDebugging,
		CapabilityPerformance, CapabilityMigration, CapabilityReview:
		return true
	default:
		return false
	}
}

// Description returns a human-readable summary of the capability.
func (c Capability) Description() string {
	switch c {
	case CapabilityArchitecture:
		return "system design and architecture"
	case CapabilityCodeWriting:
		return "writing production-quality code"
	case CapabilityTesting:
		return "comprehensive testing and quality assurance"
	case CapabilitySecurity:
		return "security auditing and vulnerability detection"
	case CapabilityDocumentation:
		return "technical documentation and guides"
	case CapabilityDebugging:
		return "debugging and bug fixing"
	case CapabilityPerformance:
		return "performance optimization and profiling"
	case CapabilityMigration:
		return "code and data migration"
	case CapabilityReview:
		return "code review and quality assessment"
	default:
		return string(c)
	}
}

// Emoji returns the display glyph for the capability.
func (c Capability) Emoji() string {
	switch c {
	case CapabilityArchitecture:
		return "🏗️"
	case CapabilityCodeWriting:
		return "💻"
	case CapabilityTesting:
		return "🧪"
	case CapabilitySecurity:
		return "🔒"
	case CapabilityDocumentation:
		return "📚"
	case CapabilityDebugging:
		return "🐛"
	case CapabilityPerformance:
		return "⚡"
	case CapabilityMigration:
		return "🔄"
	case CapabilityReview:
		return "👁️"
	default:
		return "•"
	}
}

// ParseCapability converts a capability name into a Capability. Matching
// ignores case and surrounding space, so lower-cased config keys parse too.
func ParseCapability(s string) (Capability, error) {
	name := strings.TrimSpace(s)
	for _, c := range AllCapabilities {
		if strings.EqualFold(string(c), name) {
			return c, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownCapability, s)
}

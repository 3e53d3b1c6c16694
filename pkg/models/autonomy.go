package models

import (
	"errors"
	"fmt"
	"strings"
)

// ErrInvalidAutonomyMode is returned when an autonomy mode name cannot be parsed.
var ErrInvalidAutonomyMode = errors.New("invalid autonomy mode")

// AutonomyMode controls how often a human is asked to approve a phase.
type AutonomyMode string

const (
	// AutonomyConservative asks before every phase.
	AutonomyConservative AutonomyMode = "conservative"
	// AutonomyBalanced asks before the first and the last phase.
	AutonomyBalanced AutonomyMode = "balanced"
	// AutonomyTrust never asks.
	AutonomyTrust AutonomyMode = "trust"
	// AutonomyInteractive asks before every phase.
	AutonomyInteractive AutonomyMode = "interactive"
)

// Valid returns true if the mode is a known value.
func (m AutonomyMode) Valid() bool {
	switch m {
	case AutonomyConservative, AutonomyBalanced, AutonomyTrust, AutonomyInteractive:
		return true
	default:
		return false
	}
}

// NeedsApproval reports whether the phase at index phaseNum (0-based) of
// totalPhases requires a human decision before it runs.
func (m AutonomyMode) NeedsApproval(phaseNum, totalPhases int) bool {
	switch m {
	case AutonomyTrust:
		return false
	case AutonomyInteractive, AutonomyConservative:
		return true
	case AutonomyBalanced:
		return phaseNum == 0 || phaseNum == totalPhases-1
	default:
		return true
	}
}

// ParseAutonomyMode parses a mode name case-insensitively.
func ParseAutonomyMode(s string) (AutonomyMode, error) {
	m := AutonomyMode(strings.ToLower(strings.TrimSpace(s)))
	if !m.Valid() {
		return "", fmt.Errorf("%w: %s", ErrInvalidAutonomyMode, s)
	}
	return m, nil
}

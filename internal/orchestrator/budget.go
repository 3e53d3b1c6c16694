package orchestrator

import (
	"fmt"
	"sync"
)

// BudgetStatus represents the current state of budget consumption.
type BudgetStatus int

const (
	// BudgetOK indicates usage is below the warning threshold.
	BudgetOK BudgetStatus = iota
	// BudgetWarning indicates usage is between the warning threshold and 100%.
	BudgetWarning
	// BudgetExhausted indicates usage reached or passed the budget.
	BudgetExhausted
)

// String returns a human-readable representation of the budget status.
func (s BudgetStatus) String() string {
	switch s {
	case BudgetOK:
		return "OK"
	case BudgetWarning:
		return "Warning"
	case BudgetExhausted:
		return "Exhausted"
	default:
		return "Unknown"
	}
}

// WarningThreshold is the fraction of the budget at which the first
// warning is raised.
const WarningThreshold = 0.80

// BudgetMonitor tracks token usage against an advisory budget. It never
// stops execution; it only reports each threshold crossing once.
type BudgetMonitor struct {
	mu        sync.Mutex
	budget    int
	used      int
	warned    bool
	exhausted bool
}

// NewBudgetMonitor creates a monitor for budget tokens. A budget of zero or
// less disables all warnings.
func NewBudgetMonitor(budget int) *BudgetMonitor {
	return &BudgetMonitor{budget: budget}
}

// Add records tokens and returns a warning for every threshold crossed by
// this call that has not been reported before.
func (b *BudgetMonitor) Add(tokens int) []string {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.used += tokens
	if b.budget <= 0 {
		return nil
	}

	var warnings []string
	pct := float64(b.used) / float64(b.budget)

	if pct >= WarningThreshold && !b.warned {
		b.warned = true
		if pct < 1.0 {
			warnings = append(warnings, fmt.Sprintf(
				"Token usage at %.0f%% of budget (%d/%d)", pct*100, b.used, b.budget))
		}
	}
	if pct >= 1.0 && !b.exhausted {
		b.exhausted = true
		warnings = append(warnings, fmt.Sprintf(
			"Token budget exceeded (%d/%d)", b.used, b.budget))
	}

	return warnings
}

// Status returns the current budget status.
func (b *BudgetMonitor) Status() BudgetStatus {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.budget <= 0 {
		return BudgetOK
	}

	pct := float64(b.used) / float64(b.budget)
	switch {
	case pct >= 1.0:
		return BudgetExhausted
	case pct >= WarningThreshold:
		return BudgetWarning
	default:
		return BudgetOK
	}
}

// Usage returns used tokens, the budget and the used fraction.
func (b *BudgetMonitor) Usage() (used, budget int, fraction float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.budget > 0 {
		fraction = float64(b.used) / float64(b.budget)
	}
	return b.used, b.budget, fraction
}

package orchestrator

import (
	"testing"
)

func TestBudgetMonitor_StatusTransitions(t *testing.T) {
	tests := []struct {
		name           string
		budget         int
		used           int
		expectedStatus BudgetStatus
	}{
		{name: "OK - 0% usage", budget: 1000, used: 0, expectedStatus: BudgetOK},
		{name: "OK - just under threshold (79%)", budget: 1000, used: 790, expectedStatus: BudgetOK},
		{name: "Warning - at threshold (80%)", budget: 1000, used: 800, expectedStatus: BudgetWarning},
		{name: "Warning - 99% usage", budget: 1000, used: 990, expectedStatus: BudgetWarning},
		{name: "Exhausted - 100% usage", budget: 1000, used: 1000, expectedStatus: BudgetExhausted},
		{name: "Exhausted - over budget (110%)", budget: 1000, used: 1100, expectedStatus: BudgetExhausted},
		{name: "Disabled budget", budget: 0, used: 1000000, expectedStatus: BudgetOK},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			monitor := NewBudgetMonitor(tc.budget)
			monitor.Add(tc.used)

			if status := monitor.Status(); status != tc.expectedStatus {
				t.Errorf("expected status %v, got %v", tc.expectedStatus, status)
			}
		})
	}
}

func TestBudgetMonitor_WarnsOncePerThreshold(t *testing.T) {
	monitor := NewBudgetMonitor(1000)

	if w := monitor.Add(500); len(w) != 0 {
		t.Errorf("expected no warnings at 50%%, got %v", w)
	}

	w := monitor.Add(350)
	if len(w) != 1 || w[0] != "Token usage at 85% of budget (850/1000)" {
		t.Errorf("unexpected warnings at 85%%: %v", w)
	}

	if w := monitor.Add(50); len(w) != 0 {
		t.Errorf("expected warning threshold to fire once, got %v", w)
	}

	w = monitor.Add(200)
	if len(w) != 1 || w[0] != "Token budget exceeded (1100/1000)" {
		t.Errorf("unexpected warnings past budget: %v", w)
	}

	if w := monitor.Add(500); len(w) != 0 {
		t.Errorf("expected exhaustion to fire once, got %v", w)
	}
}

func TestBudgetMonitor_JumpStraightPastBudget(t *testing.T) {
	monitor := NewBudgetMonitor(100)

	w := monitor.Add(150)
	if len(w) != 1 || w[0] != "Token budget exceeded (150/100)" {
		t.Errorf("expected only the exhaustion warning, got %v", w)
	}
}

func TestBudgetMonitor_Usage(t *testing.T) {
	monitor := NewBudgetMonitor(200)
	monitor.Add(50)

	used, budget, fraction := monitor.Usage()
	if used != 50 || budget != 200 || fraction != 0.25 {
		t.Errorf("Usage() = (%d, %d, %v), want (50, 200, 0.25)", used, budget, fraction)
	}

	_, _, fraction = NewBudgetMonitor(0).Usage()
	if fraction != 0 {
		t.Errorf("expected zero fraction for disabled budget, got %v", fraction)
	}
}

func TestBudgetStatus_String(t *testing.T) {
	tests := map[BudgetStatus]string{
		BudgetOK:         "OK",
		BudgetWarning:    "Warning",
		BudgetExhausted:  "Exhausted",
		BudgetStatus(99): "Unknown",
	}
	for status, want := range tests {
		if got := status.String(); got != want {
			t.Errorf("String() = %q, want %q", got, want)
		}
	}
}

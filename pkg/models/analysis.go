package models

// TaskAnalysis is the heuristic assessment of a free-text task.
// It is produced once by the analyzer and never modified afterwards.
type TaskAnalysis struct {
	// TaskDescription is the text that was analyzed, as given.
	TaskDescription string `json:"task_description" yaml:"task_description"`
	// Complexity is a 0-10 score.
	Complexity int `json:"complexity" yaml:"complexity"`
	// EstimatedFiles is a rough count of files the task will touch.
	EstimatedFiles int `json:"estimated_files" yaml:"estimated_files"`
	// EstimatedTokens is a rough token cost for the whole task.
	EstimatedTokens int `json:"estimated_tokens" yaml:"estimated_tokens"`
	// EstimatedTimeMin is the lower bound of the time estimate, in minutes.
	EstimatedTimeMin int `json:"estimated_time_min" yaml:"estimated_time_min"`
	// EstimatedTimeMax is the upper bound of the time estimate, in minutes.
	EstimatedTimeMax int `json:"estimated_time_max" yaml:"estimated_time_max"`
	// RequiredCapabilities is ordered by detection order, without duplicates.
	RequiredCapabilities []Capability `json:"required_capabilities" yaml:"required_capabilities"`
	// Keywords are display-only tokens extracted from the task.
	Keywords []string `json:"keywords" yaml:"keywords"`
}

// HasCapability reports whether the analysis requires c.
func (a *TaskAnalysis) HasCapability(c Capability) bool {
	for _, rc := range a.RequiredCapabilities {
		if rc == c {
			return true
		}
	}
	return false
}

// ComplexityLabel buckets the complexity score for display.
func (a *TaskAnalysis) ComplexityLabel() string {
	switch {
	case a.Complexity <= 3:
		return "Low"
	case a.Complexity <= 6:
		return "Medium"
	case a.Complexity <= 8:
		return "High"
	default:
		return "Very High"
	}
}

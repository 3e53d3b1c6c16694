package models

// WorkerResult is what an external worker reports after executing a task.
type WorkerResult struct {
	Success         bool   `json:"success" yaml:"success"`
	Output          string `json:"output" yaml:"output"`
	TokensUsed      int    `json:"tokens_used" yaml:"tokens_used"`
	ExecutionTimeMs int64  `json:"execution_time_ms" yaml:"execution_time_ms"`
}

// ExecutionResult aggregates the outcome of running a whole plan.
type ExecutionResult struct {
	// Success is true when Errors is empty.
	Success bool `json:"success" yaml:"success"`
	// AgentsExecuted counts specs that were found and dispatched,
	// regardless of their individual outcome.
	AgentsExecuted int `json:"agents_executed" yaml:"agents_executed"`
	// TokensUsed is the sum of tokens reported by workers.
	TokensUsed int `json:"tokens_used" yaml:"tokens_used"`
	// ExecutionTimeSecs is the wall-clock duration of the run.
	ExecutionTimeSecs float64  `json:"execution_time_secs" yaml:"execution_time_secs"`
	Errors            []string `json:"errors" yaml:"errors"`
	Warnings          []string `json:"warnings" yaml:"warnings"`
}

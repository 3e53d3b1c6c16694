package state

import (
	"context"
	"io"
)

// TaskExecutionStore persists task executions.
type TaskExecutionStore interface {
	SaveTaskExecution(ctx context.Context, te *TaskExecution) (string, error)
	GetTaskExecution(ctx context.Context, id string) (*TaskExecution, error)
}

// AgentExecutionStore persists agent executions and answers analytics queries.
type AgentExecutionStore interface {
	SaveAgentExecution(ctx context.Context, ae *AgentExecution) error
	ListAgentExecutions(ctx context.Context, taskExecutionID string) ([]AgentExecution, error)
	AgentStats(ctx context.Context) (*AgentStats, error)
	AgentHistory(ctx context.Context, limit int) ([]AgentExecution, error)
}

// Migrator handles database schema migrations.
type Migrator interface {
	Migrate() error
}

// Store is the full persistence interface.
type Store interface {
	io.Closer
	Migrator
	TaskExecutionStore
	AgentExecutionStore
}

var (
	_ Store               = (*DB)(nil)
	_ TaskExecutionStore  = (*DB)(nil)
	_ AgentExecutionStore = (*DB)(nil)
)

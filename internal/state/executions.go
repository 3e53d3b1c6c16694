package state

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// ErrNotFound is returned when a record does not exist.
var ErrNotFound = errors.New("not found")

// TaskExecution is one analyzed, planned and executed task.
type TaskExecution struct {
	ID        string
	Task      string
	Mode      models.AutonomyMode
	Analysis  *models.TaskAnalysis
	Plan      *models.ExecutionPlan
	Result    *models.ExecutionResult
	CreatedAt time.Time
}

// AgentExecution is one dispatched spec.
type AgentExecution struct {
	ID              int64
	TaskExecutionID string
	AgentID         string
	AgentName       string
	Capability      models.Capability
	Task            string
	Phase           int
	TokensUsed      int
	ExecutionTimeMs int64
	Success         bool
	Error           string
	CreatedAt       time.Time
}

// CapabilityStats aggregates agent executions of a single capability.
type CapabilityStats struct {
	Executions int
	Successes  int
	Tokens     int
}

// AgentStats aggregates all recorded agent executions.
type AgentStats struct {
	TotalExecutions      int
	SuccessfulExecutions int
	TotalTokens          int
	AvgTokensPerAgent    int
	TotalTimeSecs        float64
	AvgTimePerAgentSecs  float64
	ByCapability         map[models.Capability]CapabilityStats
}

// SuccessRate returns the fraction of successful executions.
func (s AgentStats) SuccessRate() float64 {
	if s.TotalExecutions == 0 {
		return 0
	}
	return float64(s.SuccessfulExecutions) / float64(s.TotalExecutions)
}

// SaveTaskExecution stores te and returns its ID. A new UUID is assigned
// when te.ID is empty.
func (db *DB) SaveTaskExecution(ctx context.Context, te *TaskExecution) (string, error) {
	if te.Analysis == nil || te.Plan == nil || te.Result == nil {
		return "", fmt.Errorf("save task execution: analysis, plan and result are required")
	}

	id := te.ID
	if id == "" {
		id = uuid.New().String()
	}
	created := te.CreatedAt
	if created.IsZero() {
		created = time.Now()
	}

	analysisJSON, err := json.Marshal(te.Analysis)
	if err != nil {
		return "", fmt.Errorf("marshal analysis: %w", err)
	}
	planJSON, err := json.Marshal(te.Plan)
	if err != nil {
		return "", fmt.Errorf("marshal plan: %w", err)
	}
	resultJSON, err := json.Marshal(te.Result)
	if err != nil {
		return "", fmt.Errorf("marshal result: %w", err)
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	_, err = db.conn.ExecContext(ctx, `
		INSERT INTO task_executions (id, task_description, mode, complexity, estimated_tokens,
			actual_tokens, success, analysis_data, plan_data, result_data, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, te.Task, string(te.Mode), te.Analysis.Complexity, te.Analysis.EstimatedTokens,
		te.Result.TokensUsed, te.Result.Success, string(analysisJSON), string(planJSON),
		string(resultJSON), formatTime(created),
	)
	if err != nil {
		return "", fmt.Errorf("save task execution: %w", err)
	}

	te.ID = id
	te.CreatedAt = created
	return id, nil
}

// GetTaskExecution loads a task execution by ID.
func (db *DB) GetTaskExecution(ctx context.Context, id string) (*TaskExecution, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	row := db.conn.QueryRowContext(ctx, `
		SELECT id, task_description, mode, analysis_data, plan_data, result_data, created_at
		FROM task_executions WHERE id = ?`, id)

	var (
		te                                   TaskExecution
		mode, analysisJSON, planJSON, result string
		created                              string
	)
	if err := row.Scan(&te.ID, &te.Task, &mode, &analysisJSON, &planJSON, &result, &created); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("task execution %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("get task execution: %w", err)
	}

	te.Mode = models.AutonomyMode(mode)
	te.Analysis = &models.TaskAnalysis{}
	te.Plan = &models.ExecutionPlan{}
	te.Result = &models.ExecutionResult{}
	if err := json.Unmarshal([]byte(analysisJSON), te.Analysis); err != nil {
		return nil, fmt.Errorf("unmarshal analysis: %w", err)
	}
	if err := json.Unmarshal([]byte(planJSON), te.Plan); err != nil {
		return nil, fmt.Errorf("unmarshal plan: %w", err)
	}
	if err := json.Unmarshal([]byte(result), te.Result); err != nil {
		return nil, fmt.Errorf("unmarshal result: %w", err)
	}
	t, err := parseTime(created)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}
	te.CreatedAt = t

	return &te, nil
}

// SaveAgentExecution stores ae and sets its ID.
func (db *DB) SaveAgentExecution(ctx context.Context, ae *AgentExecution) error {
	if ae.CreatedAt.IsZero() {
		ae.CreatedAt = time.Now()
	}

	var taskExecID sql.NullString
	if ae.TaskExecutionID != "" {
		taskExecID = sql.NullString{String: ae.TaskExecutionID, Valid: true}
	}
	var errText sql.NullString
	if ae.Error != "" {
		errText = sql.NullString{String: ae.Error, Valid: true}
	}

	db.mu.Lock()
	defer db.mu.Unlock()

	res, err := db.conn.ExecContext(ctx, `
		INSERT INTO agent_executions (task_execution_id, agent_id, agent_name, capability, task,
			phase, tokens_used, execution_time_ms, success, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		taskExecID, ae.AgentID, ae.AgentName, string(ae.Capability), ae.Task,
		ae.Phase, ae.TokensUsed, ae.ExecutionTimeMs, ae.Success, errText, formatTime(ae.CreatedAt),
	)
	if err != nil {
		return fmt.Errorf("save agent execution: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("agent execution id: %w", err)
	}
	ae.ID = id
	return nil
}

// AgentStats aggregates every recorded agent execution.
func (db *DB) AgentStats(ctx context.Context) (*AgentStats, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT capability, COUNT(*), COALESCE(SUM(success), 0),
			COALESCE(SUM(tokens_used), 0), COALESCE(SUM(execution_time_ms), 0)
		FROM agent_executions
		GROUP BY capability
		ORDER BY capability`)
	if err != nil {
		return nil, fmt.Errorf("query agent stats: %w", err)
	}
	defer rows.Close()

	stats := &AgentStats{ByCapability: make(map[models.Capability]CapabilityStats)}
	var totalMs int64

	for rows.Next() {
		var (
			capability string
			cs         CapabilityStats
			ms         int64
		)
		if err := rows.Scan(&capability, &cs.Executions, &cs.Successes, &cs.Tokens, &ms); err != nil {
			return nil, fmt.Errorf("scan agent stats: %w", err)
		}
		stats.ByCapability[models.Capability(capability)] = cs
		stats.TotalExecutions += cs.Executions
		stats.SuccessfulExecutions += cs.Successes
		stats.TotalTokens += cs.Tokens
		totalMs += ms
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agent stats: %w", err)
	}

	stats.TotalTimeSecs = float64(totalMs) / 1000.0
	if stats.TotalExecutions > 0 {
		stats.AvgTokensPerAgent = stats.TotalTokens / stats.TotalExecutions
		stats.AvgTimePerAgentSecs = stats.TotalTimeSecs / float64(stats.TotalExecutions)
	}

	return stats, nil
}

// AgentHistory returns up to limit agent executions, newest first.
func (db *DB) AgentHistory(ctx context.Context, limit int) ([]AgentExecution, error) {
	if limit <= 0 {
		return nil, nil
	}

	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, COALESCE(task_execution_id, ''), agent_id, agent_name, capability, task,
			phase, tokens_used, execution_time_ms, success, COALESCE(error, ''), created_at
		FROM agent_executions
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query agent history: %w", err)
	}
	defer rows.Close()

	var history []AgentExecution
	for rows.Next() {
		var (
			ae         AgentExecution
			capability string
			created    string
		)
		if err := rows.Scan(&ae.ID, &ae.TaskExecutionID, &ae.AgentID, &ae.AgentName, &capability,
			&ae.Task, &ae.Phase, &ae.TokensUsed, &ae.ExecutionTimeMs, &ae.Success, &ae.Error, &created); err != nil {
			return nil, fmt.Errorf("scan agent history: %w", err)
		}
		ae.Capability = models.Capability(capability)
		if t, err := parseTime(created); err == nil {
			ae.CreatedAt = t
		}
		history = append(history, ae)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate agent history: %w", err)
	}

	return history, nil
}

// ListAgentExecutions returns the agent executions recorded for one task
// execution, in insertion order.
func (db *DB) ListAgentExecutions(ctx context.Context, taskExecutionID string) ([]AgentExecution, error) {
	db.mu.RLock()
	defer db.mu.RUnlock()

	rows, err := db.conn.QueryContext(ctx, `
		SELECT id, agent_id, agent_name, capability, task, phase, tokens_used,
			execution_time_ms, success, COALESCE(error, ''), created_at
		FROM agent_executions
		WHERE task_execution_id = ?
		ORDER BY id`, taskExecutionID)
	if err != nil {
		return nil, fmt.Errorf("list agent executions: %w", err)
	}
	defer rows.Close()

	var out []AgentExecution
	for rows.Next() {
		var (
			ae         AgentExecution
			capability string
			created    string
		)
		if err := rows.Scan(&ae.ID, &ae.AgentID, &ae.AgentName, &capability, &ae.Task, &ae.Phase,
			&ae.TokensUsed, &ae.ExecutionTimeMs, &ae.Success, &ae.Error, &created); err != nil {
			return nil, fmt.Errorf("scan agent execution: %w", err)
		}
		ae.TaskExecutionID = taskExecutionID
		ae.Capability = models.Capability(capability)
		if t, err := parseTime(created); err == nil {
			ae.CreatedAt = t
		}
		out = append(out, ae)
	}
	return out, rows.Err()
}

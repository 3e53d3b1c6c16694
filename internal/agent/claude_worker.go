package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/ShayCichocki/mastercoder/internal/api"
	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// Completer sends a prompt to a language model.
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (api.Completion, error)
}

var _ Completer = (*api.Runner)(nil)

// ClaudeWorker executes a task through Claude with a capability-specific
// system prompt. Each call is a single independent turn.
type ClaudeWorker struct {
	id           string
	name         string
	capability   models.Capability
	systemPrompt string
	completer    Completer
}

// NewClaudeWorker creates a worker for spec.
func NewClaudeWorker(spec models.AgentSpec, systemPrompt string, completer Completer) *ClaudeWorker {
	return &ClaudeWorker{
		id:           spec.ID,
		name:         spec.Name,
		capability:   spec.Capability,
		systemPrompt: systemPrompt,
		completer:    completer,
	}
}

// ID returns the spec ID this worker serves.
func (w *ClaudeWorker) ID() string { return w.id }

// Name returns the display name.
func (w *ClaudeWorker) Name() string { return w.name }

// Capability returns the worker capability.
func (w *ClaudeWorker) Capability() models.Capability { return w.capability }

// SystemPrompt returns the system prompt sent with every call.
func (w *ClaudeWorker) SystemPrompt() string { return w.systemPrompt }

// Execute sends task to Claude.
func (w *ClaudeWorker) Execute(ctx context.Context, task string) (models.WorkerResult, error) {
	if strings.TrimSpace(task) == "" {
		return models.WorkerResult{}, ErrEmptyTask
	}

	start := time.Now()
	completion, err := w.completer.Complete(ctx, w.systemPrompt, task)
	if err != nil {
		return models.WorkerResult{}, fmt.Errorf("%s: %w", w.id, err)
	}

	return models.WorkerResult{
		Success:         true,
		Output:          completion.Text,
		TokensUsed:      int(completion.TotalTokens()),
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

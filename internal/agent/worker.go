// Package agent provides the workers that carry out agent specs.
package agent

import (
	"context"
	"errors"

	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// ErrEmptyTask is returned when a worker is asked to execute an empty task.
var ErrEmptyTask = errors.New("empty task")

// Worker executes the task of a single agent spec.
// ID matches the spec ID so the engine can pair specs with workers.
type Worker interface {
	ID() string
	Capability() models.Capability
	// Execute runs task and reports the outcome. A worker that cannot
	// complete returns an error rather than blocking past ctx.
	Execute(ctx context.Context, task string) (models.WorkerResult, error)
}

// WorkerFunc adapts a function to the execution half of Worker.
type WorkerFunc func(ctx context.Context, task string) (models.WorkerResult, error)

// FuncWorker is a Worker backed by a WorkerFunc. It is used for stubs,
// dry runs and tests.
type FuncWorker struct {
	id         string
	capability models.Capability
	fn         WorkerFunc
}

// NewFuncWorker creates a FuncWorker.
func NewFuncWorker(id string, capability models.Capability, fn WorkerFunc) *FuncWorker {
	return &FuncWorker{id: id, capability: capability, fn: fn}
}

// ID returns the worker ID.
func (w *FuncWorker) ID() string { return w.id }

// Capability returns the worker capability.
func (w *FuncWorker) Capability() models.Capability { return w.capability }

// Execute calls the wrapped function.
func (w *FuncWorker) Execute(ctx context.Context, task string) (models.WorkerResult, error) {
	return w.fn(ctx, task)
}

// DryRunFunc returns a WorkerFunc that succeeds immediately and echoes the task.
func DryRunFunc() WorkerFunc {
	return func(ctx context.Context, task string) (models.WorkerResult, error) {
		return models.WorkerResult{Success: true, Output: "dry run: " + task}, nil
	}
}

var (
	_ Worker = (*FuncWorker)(nil)
	_ Worker = (*ClaudeWorker)(nil)
	_ Worker = (*ScriptWorker)(nil)
)

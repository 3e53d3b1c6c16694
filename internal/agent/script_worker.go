package agent

import (
	"context"
	"fmt"
	"strings"
	"time"

	iexec "github.com/ShayCichocki/mastercoder/internal/exec"
	"github.com/ShayCichocki/mastercoder/pkg/models"
)

// maxErrorOutput bounds how much command output is folded into an error.
const maxErrorOutput = 500

// ScriptWorker executes a task by running a local shell command. The task
// text is passed to the command as $1, and the spec ID and capability as
// MASTERCODER_AGENT_ID and MASTERCODER_CAPABILITY.
type ScriptWorker struct {
	id         string
	capability models.Capability
	command    string
	workDir    string
	runner     iexec.CommandRunner
}

// NewScriptWorker creates a ScriptWorker for spec that runs command in workDir.
func NewScriptWorker(spec models.AgentSpec, command, workDir string, runner iexec.CommandRunner) *ScriptWorker {
	return &ScriptWorker{
		id:         spec.ID,
		capability: spec.Capability,
		command:    command,
		workDir:    workDir,
		runner:     runner,
	}
}

// ID returns the spec ID this worker serves.
func (w *ScriptWorker) ID() string { return w.id }

// Capability returns the worker capability.
func (w *ScriptWorker) Capability() models.Capability { return w.capability }

// Command returns the shell command the worker runs.
func (w *ScriptWorker) Command() string { return w.command }

// Execute runs the command. A non-zero exit is returned as an error that
// includes the tail of the output.
func (w *ScriptWorker) Execute(ctx context.Context, task string) (models.WorkerResult, error) {
	start := time.Now()

	out, err := w.runner.Run(ctx, iexec.Command{
		Name: "sh",
		Args: []string{"-c", w.command, "mastercoder", task},
		Dir:  w.workDir,
		Env: []string{
			"MASTERCODER_AGENT_ID=" + w.id,
			"MASTERCODER_CAPABILITY=" + string(w.capability),
		},
	})
	output := string(out)
	if err != nil {
		return models.WorkerResult{}, fmt.Errorf("run %q: %w: %s", w.command, err, tail(output, maxErrorOutput))
	}

	return models.WorkerResult{
		Success:         true,
		Output:          output,
		ExecutionTimeMs: time.Since(start).Milliseconds(),
	}, nil
}

func tail(s string, n int) string {
	s = strings.TrimSpace(s)
	if len(s) <= n {
		return s
	}
	return "..." + s[len(s)-n:]
}

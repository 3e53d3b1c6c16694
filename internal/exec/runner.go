package exec

import (
	"context"
	"os"
	"os/exec"
	"time"
)

// DefaultWaitDelay bounds how long Run waits for output pipes after the
// context is cancelled and the process is killed.
const DefaultWaitDelay = 5 * time.Second

// Runner implements CommandRunner using os/exec.
type Runner struct {
	env       []string
	waitDelay time.Duration
}

// NewRunner creates a Runner that adds env to every command it runs.
func NewRunner(env ...string) *Runner {
	return &Runner{env: env, waitDelay: DefaultWaitDelay}
}

// Run executes cmd and returns combined stdout/stderr output.
func (r *Runner) Run(ctx context.Context, cmd Command) ([]byte, error) {
	c := exec.CommandContext(ctx, cmd.Name, cmd.Args...)
	c.Dir = cmd.Dir
	if len(r.env) > 0 || len(cmd.Env) > 0 {
		env := append(os.Environ(), r.env...)
		c.Env = append(env, cmd.Env...)
	}
	c.WaitDelay = r.waitDelay
	return c.CombinedOutput()
}

var _ CommandRunner = (*Runner)(nil)

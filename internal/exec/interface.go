// Package exec runs local commands on behalf of script-backed workers.
package exec

import (
	"context"
)

// Command describes one process invocation.
type Command struct {
	Name string
	Args []string
	// Dir is the working directory. Empty means the current directory.
	Dir string
	// Env is appended to the parent environment.
	Env []string
}

// CommandRunner runs commands. It exists so workers can be tested without
// spawning processes.
type CommandRunner interface {
	// Run executes cmd and returns combined stdout/stderr output.
	Run(ctx context.Context, cmd Command) (output []byte, err error)
}

// Package exec provides an interface for command execution.
package exec

import (
	"context"
	"errors"
	"time"
)

// ErrTimeout is returned when a command exceeds its wall-clock limit and is killed.
var ErrTimeout = errors.New("command timed out")

// Result captures the outcome of a finished command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Options controls a single command invocation.
type Options struct {
	// WorkDir is the working directory. Empty means the current directory.
	WorkDir string
	// Stdin is fed to the command when non-empty.
	Stdin string
	// Timeout kills the command (and its process group) when exceeded. Zero means no limit.
	Timeout time.Duration
	// Env is appended to the parent environment.
	Env []string
}

// CommandRunner defines the interface for running external commands.
// This abstraction allows mocking command execution in tests.
type CommandRunner interface {
	// Run executes a command and returns combined stdout/stderr output.
	// The working directory is set to workDir if non-empty.
	Run(ctx context.Context, workDir string, name string, args ...string) (output []byte, err error)

	// Capture executes a command with separate stdout and stderr capture.
	// A non-zero exit is reported through Result.ExitCode, not as an error.
	// The error is non-nil only when the command could not be started,
	// was killed by timeout (ErrTimeout), or the context was cancelled.
	Capture(ctx context.Context, opts Options, name string, args ...string) (Result, error)
}

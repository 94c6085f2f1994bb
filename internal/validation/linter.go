package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ShayCichocki/agentnexus/internal/exec"
)

// Linter counts style violations in a file.
type Linter interface {
	CheckFile(ctx context.Context, path string) (int, error)
}

// CommandLinter runs an external linter such as flake8 or "ruff check".
// Each violation is expected on its own line prefixed with the file path,
// which holds for flake8, pycodestyle and ruff's concise output.
type CommandLinter struct {
	runner  exec.CommandRunner
	command []string
	timeout time.Duration
}

// NewCommandLinter creates a linter that runs command with the file path appended.
func NewCommandLinter(runner exec.CommandRunner, command []string, timeout time.Duration) *CommandLinter {
	return &CommandLinter{runner: runner, command: command, timeout: timeout}
}

// CheckFile runs the linter on path and returns the number of violations.
func (l *CommandLinter) CheckFile(ctx context.Context, path string) (int, error) {
	if len(l.command) == 0 {
		return 0, errors.New("no linter command configured")
	}
	args := append(append([]string{}, l.command[1:]...), path)

	res, err := l.runner.Capture(ctx, exec.Options{Timeout: l.timeout}, l.command[0], args...)
	if err != nil {
		return 0, fmt.Errorf("run %s: %w", l.command[0], err)
	}

	count := 0
	for _, line := range strings.Split(res.Stdout, "\n") {
		if strings.HasPrefix(line, path) {
			count++
		}
	}
	// A non-zero exit with nothing we could attribute to the file means the
	// linter itself failed (bad flag, crash).
	if res.ExitCode != 0 && count == 0 {
		msg := strings.TrimSpace(res.Stderr)
		if msg == "" {
			msg = strings.TrimSpace(res.Stdout)
		}
		return 0, fmt.Errorf("%s exited %d: %s", l.command[0], res.ExitCode, msg)
	}
	return count, nil
}

// LinterFunc adapts a function to the Linter interface.
type LinterFunc func(ctx context.Context, path string) (int, error)

// CheckFile calls f.
func (f LinterFunc) CheckFile(ctx context.Context, path string) (int, error) {
	return f(ctx, path)
}

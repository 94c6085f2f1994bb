package validation

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ShayCichocki/agentnexus/internal/exec"
)

// Formatter rewrites source without changing its meaning.
type Formatter interface {
	Format(ctx context.Context, source string) (string, error)
}

// CommandFormatter pipes source through an external stdin-to-stdout filter,
// e.g. "black -q -" or "isort -".
type CommandFormatter struct {
	runner  exec.CommandRunner
	command []string
	timeout time.Duration
}

// NewCommandFormatter creates a formatter for command.
func NewCommandFormatter(runner exec.CommandRunner, command []string, timeout time.Duration) *CommandFormatter {
	return &CommandFormatter{runner: runner, command: command, timeout: timeout}
}

// Format returns the filtered source.
func (f *CommandFormatter) Format(ctx context.Context, source string) (string, error) {
	if len(f.command) == 0 {
		return "", errors.New("no formatter command configured")
	}
	res, err := f.runner.Capture(ctx, exec.Options{Stdin: source, Timeout: f.timeout}, f.command[0], f.command[1:]...)
	if err != nil {
		return "", fmt.Errorf("run %s: %w", f.command[0], err)
	}
	if res.ExitCode != 0 {
		return "", fmt.Errorf("%s exited %d: %s", f.command[0], res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	if strings.TrimSpace(res.Stdout) == "" && strings.TrimSpace(source) != "" {
		return "", fmt.Errorf("%s produced no output", f.command[0])
	}
	return res.Stdout, nil
}

// Chain applies formatters in order. If any step fails, the original
// source is returned together with the error.
type Chain []Formatter

// Format runs every formatter in the chain.
func (c Chain) Format(ctx context.Context, source string) (string, error) {
	out := source
	for _, f := range c {
		next, err := f.Format(ctx, out)
		if err != nil {
			return source, err
		}
		out = next
	}
	return out, nil
}

// NewChain builds a chain of command formatters.
func NewChain(runner exec.CommandRunner, commands [][]string, timeout time.Duration) Chain {
	chain := make(Chain, 0, len(commands))
	for _, cmd := range commands {
		if len(cmd) == 0 {
			continue
		}
		chain = append(chain, NewCommandFormatter(runner, cmd, timeout))
	}
	return chain
}

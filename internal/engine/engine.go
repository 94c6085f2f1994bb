// Package engine runs untrusted generated source in an isolated child process.
package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/ShayCichocki/agentnexus/internal/config"
	"github.com/ShayCichocki/agentnexus/internal/exec"
	"github.com/ShayCichocki/agentnexus/internal/logging"
	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// DefaultTimeout is used when no timeout is configured.
const DefaultTimeout = 30 * time.Second

var missingModuleRe = regexp.MustCompile(`ModuleNotFoundError: No module named '([^']+)'`)

// Engine executes source files with an interpreter and classifies the outcome.
type Engine struct {
	runner      exec.CommandRunner
	interpreter string
	timeout     time.Duration
	workDir     string
	logger      *zap.Logger
}

// Option configures an Engine.
type Option func(*Engine)

// WithRunner sets the command runner (tests substitute a fake).
func WithRunner(r exec.CommandRunner) Option {
	return func(e *Engine) { e.runner = r }
}

// WithInterpreter sets the interpreter binary.
func WithInterpreter(name string) Option {
	return func(e *Engine) { e.interpreter = name }
}

// WithTimeout sets the wall-clock limit for a single run.
func WithTimeout(d time.Duration) Option {
	return func(e *Engine) { e.timeout = d }
}

// WithWorkDir sets where transient scripts are written.
func WithWorkDir(dir string) Option {
	return func(e *Engine) { e.workDir = dir }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) { e.logger = logging.OrNop(l).Named("engine") }
}

// New creates an Engine. Defaults: python3, 30s timeout, os.TempDir().
func New(opts ...Option) *Engine {
	e := &Engine{
		runner:      exec.NewRunner(),
		interpreter: "python3",
		timeout:     DefaultTimeout,
		logger:      zap.NewNop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// NewFromConfig creates an Engine from the execution configuration.
func NewFromConfig(cfg config.ExecutionConfig, logger *zap.Logger) *Engine {
	opts := []Option{WithLogger(logger), WithWorkDir(cfg.WorkDir)}
	if cfg.Interpreter != "" {
		opts = append(opts, WithInterpreter(cfg.Interpreter))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, WithTimeout(cfg.Timeout))
	}
	return New(opts...)
}

// Execute writes source to a uniquely named transient file, runs the
// interpreter on it and reports the captured outcome. The transient file is
// removed before Execute returns, whatever the outcome.
func (e *Engine) Execute(ctx context.Context, source string) (report models.ExecutionReport) {
	path, err := e.materialize(source)
	if err != nil {
		e.logger.Error("materialize script", zap.Error(err))
		return models.ExecutionError(models.FailureLaunch, err.Error())
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			e.logger.Warn("remove script", zap.String("path", path), zap.Error(rmErr))
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("execution panicked", zap.Any("panic", r))
			report = models.ExecutionError(models.FailureLaunch, fmt.Sprint(r))
		}
	}()

	e.logger.Debug("executing script", zap.String("path", path), zap.Int("bytes", len(source)))

	res, err := e.runner.Capture(ctx, exec.Options{Timeout: e.timeout}, e.interpreter, path)
	if errors.Is(err, exec.ErrTimeout) {
		e.logger.Warn("execution timed out", zap.Duration("timeout", e.timeout))
		return models.ExecutionError(models.FailureTimeout, fmt.Sprintf("Execution timed out after %s", e.timeout))
	}
	if err != nil {
		e.logger.Error("execution failed to launch", zap.Error(err))
		return models.ExecutionError(models.FailureLaunch, err.Error())
	}

	output := strings.TrimSpace(res.Stdout)
	if output == "" {
		output = strings.TrimSpace(res.Stderr)
	}

	if name, ok := MissingModule(output); ok {
		e.logger.Info("missing dependency", zap.String("module", name))
		return models.ExecutionError(models.FailureMissingDependency, MissingModuleMessage(name))
	}

	e.logger.Info("execution completed",
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("duration", res.Duration))
	return models.ExecutionOutput(res.ExitCode, output)
}

func (e *Engine) materialize(source string) (string, error) {
	dir := e.workDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "nexus-"+uuid.New().String()+".py")
	// O_EXCL guards against reusing a name another stage created.
	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return "", fmt.Errorf("create script: %w", err)
	}
	if _, err := f.WriteString(source); err != nil {
		f.Close()
		os.Remove(path)
		return "", fmt.Errorf("write script: %w", err)
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", fmt.Errorf("close script: %w", err)
	}
	return path, nil
}

// MissingModule extracts the module name from a ModuleNotFoundError trace.
func MissingModule(output string) (string, bool) {
	if !strings.Contains(output, "ModuleNotFoundError") {
		return "", false
	}
	m := missingModuleRe.FindStringSubmatch(output)
	if m == nil {
		return "", false
	}
	return m[1], true
}

// MissingModuleMessage is the remediation text for a missing dependency.
func MissingModuleMessage(name string) string {
	return fmt.Sprintf("Missing module: '%s'. Please install it using:\n   pip install %s", name, name)
}

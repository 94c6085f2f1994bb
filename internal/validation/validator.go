package validation

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/ShayCichocki/agentnexus/internal/config"
	"github.com/ShayCichocki/agentnexus/internal/exec"
	"github.com/ShayCichocki/agentnexus/internal/logging"
	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// Validator produces a ValidationReport for candidate source.
type Validator struct {
	syntax  SyntaxChecker
	linter  Linter
	cache   *lru.Cache[string, models.ValidationReport]
	tempDir string
	logger  *zap.Logger
}

// Option configures a Validator.
type Option func(*Validator)

// DefaultInterpreter compiles source when no interpreter is configured.
const DefaultInterpreter = "python3"

const defaultCompileTimeout = 10 * time.Second

// WithSyntaxChecker replaces the interpreter-backed checker.
func WithSyntaxChecker(s SyntaxChecker) Option {
	return func(v *Validator) { v.syntax = s }
}

// WithTempDir sets where transient lint files are written.
func WithTempDir(dir string) Option {
	return func(v *Validator) { v.tempDir = dir }
}

// WithCacheSize enables memoization of up to n reports. Zero disables it.
func WithCacheSize(n int) Option {
	return func(v *Validator) {
		if n <= 0 {
			v.cache = nil
			return
		}
		v.cache, _ = lru.New[string, models.ValidationReport](n)
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(v *Validator) { v.logger = logging.OrNop(l).Named("validator") }
}

// New creates a Validator that lints with linter.
func New(linter Linter, opts ...Option) *Validator {
	v := &Validator{
		syntax: NewCompileSyntax(exec.NewRunner(), DefaultInterpreter, defaultCompileTimeout, PythonSyntax{}, nil),
		linter: linter,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(v)
	}
	return v
}

// NewFromConfig builds a Validator and formatter chain from configuration.
// Syntax is decided by interpreter, falling back to the tree-sitter parser
// when the interpreter cannot be started.
func NewFromConfig(cfg config.ValidationConfig, interpreter string, runner exec.CommandRunner, logger *zap.Logger) (*Validator, Chain) {
	if interpreter == "" {
		interpreter = DefaultInterpreter
	}
	linter := NewCommandLinter(runner, cfg.Linter, cfg.Timeout)
	syntax := NewCompileSyntax(runner, interpreter, cfg.Timeout, PythonSyntax{}, logger)
	v := New(linter, WithSyntaxChecker(syntax), WithCacheSize(cfg.CacheSize), WithLogger(logger))
	return v, NewChain(runner, cfg.Formatters, cfg.Timeout)
}

// Validate checks syntax and then style. Linter failures yield an invalid
// report with LinterErrors set to -1.
func (v *Validator) Validate(ctx context.Context, source string) models.ValidationReport {
	key := cacheKey(source)
	if v.cache != nil {
		if r, ok := v.cache.Get(key); ok {
			v.logger.Debug("validation cache hit")
			return r
		}
	}

	report, cacheable := v.validate(ctx, source)
	if cacheable && v.cache != nil {
		v.cache.Add(key, report)
	}
	return report
}

func (v *Validator) validate(ctx context.Context, source string) (models.ValidationReport, bool) {
	v.logger.Info("validating source", zap.Int("bytes", len(source)))

	if err := v.syntax.Check(ctx, []byte(source)); err != nil {
		var se *SyntaxError
		if !errors.As(err, &se) {
			// The parser itself failed; do not remember this verdict.
			v.logger.Error("syntax check failed", zap.Error(err))
			return models.SyntaxFailure(err.Error()), false
		}
		v.logger.Info("syntax error", zap.String("error", se.Error()))
		return models.SyntaxFailure(se.Error()), true
	}
	v.logger.Debug("syntax check passed")

	violations, err := v.lint(ctx, source)
	if err != nil {
		v.logger.Error("linter failed", zap.Error(err))
		return models.ValidationReport{IsValid: false, LinterErrors: -1}, false
	}

	v.logger.Info("linter finished", zap.Int("violations", violations))
	return models.LintResult(violations), true
}

// lint writes source to a transient file, lints it and removes the file.
func (v *Validator) lint(ctx context.Context, source string) (count int, err error) {
	if v.linter == nil {
		return 0, errors.New("no linter configured")
	}

	dir := v.tempDir
	if dir == "" {
		dir = os.TempDir()
	}
	path := filepath.Join(dir, "nexus-lint-"+uuid.New().String()+".py")

	f, err := os.OpenFile(path, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0600)
	if err != nil {
		return 0, fmt.Errorf("create lint file: %w", err)
	}
	defer func() {
		if rmErr := os.Remove(path); rmErr != nil && !errors.Is(rmErr, os.ErrNotExist) {
			v.logger.Warn("remove lint file", zap.String("path", path), zap.Error(rmErr))
		}
	}()
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("linter panicked: %v", r)
		}
	}()

	if _, err := f.WriteString(source); err != nil {
		f.Close()
		return 0, fmt.Errorf("write lint file: %w", err)
	}
	if err := f.Close(); err != nil {
		return 0, fmt.Errorf("close lint file: %w", err)
	}

	return v.linter.CheckFile(ctx, path)
}

func cacheKey(source string) string {
	sum := sha256.Sum256([]byte(source))
	return hex.EncodeToString(sum[:])
}

package agent

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentnexus/internal/llm"
	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// CodeValidator checks generated source.
type CodeValidator interface {
	Validate(ctx context.Context, source string) models.ValidationReport
}

// CodeExecutor runs generated source in a child process.
type CodeExecutor interface {
	Execute(ctx context.Context, source string) models.ExecutionReport
}

// Formatter rewrites generated source. It must return usable source even
// when it fails.
type Formatter interface {
	Format(ctx context.Context, source string) (string, error)
}

// ArtifactStore persists generated source.
type ArtifactStore interface {
	Save(ctx context.Context, task, code string) (models.Artifact, error)
}

// DeveloperOutput is the result payload of the developer agent.
type DeveloperOutput struct {
	Task          string                  `json:"task"`
	GeneratedCode string                  `json:"generated_code"`
	Validation    models.ValidationReport `json:"validation"`
	Execution     *models.ExecutionReport `json:"execution,omitempty"`
	ArtifactPath  string                  `json:"artifact_path,omitempty"`
}

// Deps are the collaborators of the code-generating agents. Transport and
// Validator are required; the rest are optional.
type Deps struct {
	Transport llm.Transport
	Validator CodeValidator
	Executor  CodeExecutor
	Formatter Formatter
	Store     ArtifactStore
	Logger    *zap.Logger
}

func (d Deps) check() error {
	if d.Transport == nil {
		return errors.New("model transport is required")
	}
	if d.Validator == nil {
		return errors.New("code validator is required")
	}
	return nil
}

// Developer generates code for a task, validates it and, when it validates
// cleanly, runs it.
type Developer struct {
	*Base
	deps         Deps
	executeValid bool
}

// DeveloperOption configures a Developer.
type DeveloperOption func(*Developer)

// WithExecuteValid controls whether clean code is executed. Default true.
func WithExecuteValid(on bool) DeveloperOption {
	return func(d *Developer) { d.executeValid = on }
}

// NewDeveloper creates a Developer agent.
func NewDeveloper(name string, deps Deps, opts ...DeveloperOption) *Developer {
	d := &Developer{
		Base:         NewBase(name, deps.Logger),
		deps:         deps,
		executeValid: true,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Execute generates, formats, validates and optionally runs code for task.
func (d *Developer) Execute(ctx context.Context, task string) models.AgentResult {
	return d.Run(ctx, task, func(ctx context.Context) (any, error) {
		return d.build(ctx, task)
	})
}

func (d *Developer) build(ctx context.Context, task string) (*DeveloperOutput, error) {
	if err := d.deps.check(); err != nil {
		return nil, err
	}
	log := d.Logger()

	raw, err := d.deps.Transport.Generate(ctx, llm.Request{
		System: DeveloperPrompt,
		Prompt: task,
		JSON:   true,
	})
	if err != nil {
		return nil, fmt.Errorf("generate code: %w", err)
	}

	code := ExtractCode(raw)
	if d.deps.Formatter != nil {
		formatted, err := d.deps.Formatter.Format(ctx, code)
		if err != nil {
			log.Debug("formatting skipped", zap.Error(err))
		} else {
			code = formatted
		}
	}

	out := &DeveloperOutput{
		Task:          task,
		GeneratedCode: code,
		Validation:    d.deps.Validator.Validate(ctx, code),
	}
	log.Info("code validated",
		zap.Bool("is_valid", out.Validation.IsValid),
		zap.Any("linter_errors", out.Validation.LinterErrorsValue()))

	if out.Validation.IsValid && d.executeValid && d.deps.Executor != nil {
		report := d.deps.Executor.Execute(ctx, code)
		out.Execution = &report
	}

	if d.deps.Store != nil {
		art, err := d.deps.Store.Save(ctx, task, code)
		if err != nil {
			log.Warn("saving artifact failed", zap.Error(err))
		} else {
			out.ArtifactPath = art.Path
		}
	}

	return out, nil
}

var _ Agent = (*Developer)(nil)

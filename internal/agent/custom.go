package agent

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentnexus/internal/llm"
	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// CustomOutput is the result payload of a custom agent.
type CustomOutput struct {
	ContentType string                  `json:"content_type"`
	Response    string                  `json:"response"`
	Validation  *models.ValidationReport `json:"validation,omitempty"`
	Execution   *models.ExecutionReport  `json:"execution,omitempty"`
}

// Custom is a user-defined agent. The model decides whether its answer is
// code; only code is validated and, when valid, executed.
type Custom struct {
	*Base
	def  Definition
	deps Deps
}

// NewCustom creates a custom agent from def.
func NewCustom(def Definition, deps Deps) *Custom {
	return &Custom{
		Base: NewBase(def.Name, deps.Logger),
		def:  def,
		deps: deps,
	}
}

// Definition returns the agent's definition.
func (c *Custom) Definition() Definition {
	return c.def
}

// Execute sends the configured prompts and routes the answer by content type.
// When no user prompt is configured the task is sent instead.
func (c *Custom) Execute(ctx context.Context, task string) models.AgentResult {
	return c.Run(ctx, task, func(ctx context.Context) (any, error) {
		return c.respond(ctx, task)
	})
}

func (c *Custom) respond(ctx context.Context, task string) (*CustomOutput, error) {
	if c.deps.Transport == nil {
		return nil, errors.New("model transport is required")
	}

	prompt := c.def.UserPrompt
	if prompt == "" {
		prompt = task
	}
	req := llm.Request{
		System:      c.def.SystemPrompt + CustomAgentSuffix,
		Prompt:      prompt,
		Temperature: c.def.Temperature,
		Model:       c.def.Model,
		JSON:        true,
	}

	raw, err := c.deps.Transport.Generate(ctx, req)
	if err != nil {
		return nil, fmt.Errorf("generate response: %w", err)
	}

	env, err := ParseEnvelope(raw)
	if err != nil {
		return nil, fmt.Errorf("decode model response: %w", err)
	}

	out := &CustomOutput{ContentType: env.ContentType, Response: env.Response}
	if env.ContentType != ContentCode {
		return out, nil
	}

	code := StripFences(env.Response)
	out.Response = code
	if c.deps.Validator == nil {
		c.Logger().Warn("no validator configured, skipping validation")
		return out, nil
	}
	report := c.deps.Validator.Validate(ctx, code)
	out.Validation = &report
	if report.IsValid && c.deps.Executor != nil {
		exec := c.deps.Executor.Execute(ctx, code)
		out.Execution = &exec
	}
	c.Logger().Info("custom agent produced code",
		zap.Bool("is_valid", report.IsValid),
		zap.Bool("executed", out.Execution != nil))
	return out, nil
}

var _ Agent = (*Custom)(nil)

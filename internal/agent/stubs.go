package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// Stub verdicts returned by the placeholder review stages.
const (
	ValidationPassed = "Validation passed"
	TestsPassed      = "Tests passed"
	AuditPassed      = "Audit passed"
)

// Verdict is an agent that always returns a fixed success message. The
// validator, tester and auditor stages are Verdicts until real checks exist.
type Verdict struct {
	*Base
	message string
}

// NewVerdict creates a Verdict agent.
func NewVerdict(name, message string, logger *zap.Logger) *Verdict {
	return &Verdict{Base: NewBase(name, logger), message: message}
}

// NewValidator returns the validation stage.
func NewValidator(name string, logger *zap.Logger) *Verdict {
	return NewVerdict(name, ValidationPassed, logger)
}

// NewTester returns the test stage.
func NewTester(name string, logger *zap.Logger) *Verdict {
	return NewVerdict(name, TestsPassed, logger)
}

// NewAuditor returns the audit stage.
func NewAuditor(name string, logger *zap.Logger) *Verdict {
	return NewVerdict(name, AuditPassed, logger)
}

// Execute returns the verdict.
func (v *Verdict) Execute(ctx context.Context, task string) models.AgentResult {
	return v.Run(ctx, task, func(context.Context) (any, error) {
		return v.message, nil
	})
}

var _ Agent = (*Verdict)(nil)

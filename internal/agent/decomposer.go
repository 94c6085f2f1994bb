package agent

import (
	"context"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentnexus/internal/decompose"
	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// Decomposer returns the stage sequence for a task as its result.
type Decomposer struct {
	*Base
}

// NewDecomposer creates a Decomposer agent.
func NewDecomposer(name string, logger *zap.Logger) *Decomposer {
	return &Decomposer{Base: NewBase(name, logger)}
}

// Execute classifies task.
func (d *Decomposer) Execute(ctx context.Context, task string) models.AgentResult {
	return d.Run(ctx, task, func(context.Context) (any, error) {
		m := decompose.Classify(task)
		d.Logger().Debug("task classified",
			zap.String("rule", m.Rule),
			zap.String("keyword", m.Keyword),
			zap.Strings("sequence", m.Sequence))
		return m.Sequence, nil
	})
}

var _ Agent = (*Decomposer)(nil)

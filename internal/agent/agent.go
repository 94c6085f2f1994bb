// Package agent defines the capability contract every pipeline stage
// satisfies and the built-in agent variants.
package agent

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentnexus/internal/logging"
	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// Agent is one pipeline stage. Execute never panics and never returns a
// malformed result: failures are reported as error-status results.
type Agent interface {
	Name() string
	Execute(ctx context.Context, task string) models.AgentResult
	History() []models.HistoryEntry
}

// WorkFunc is the role-specific part of an execution.
type WorkFunc func(ctx context.Context) (any, error)

// Base carries the state shared by all agent variants: the task history and
// the execution lock. Embed it and route Execute through Run.
type Base struct {
	name   string
	logger *zap.Logger

	// execMu serializes executions on one instance so duplicate stage names
	// in a concurrent batch do not interleave.
	execMu sync.Mutex

	mu      sync.RWMutex
	history []models.HistoryEntry
}

// NewBase creates a Base for an agent called name.
func NewBase(name string, logger *zap.Logger) *Base {
	return &Base{
		name:   name,
		logger: logging.OrNop(logger).Named(name),
	}
}

// Name returns the agent's name.
func (b *Base) Name() string {
	return b.name
}

// Logger returns the agent's named logger.
func (b *Base) Logger() *zap.Logger {
	return b.logger
}

// History returns a copy of the task history, oldest first.
func (b *Base) History() []models.HistoryEntry {
	b.mu.RLock()
	defer b.mu.RUnlock()
	out := make([]models.HistoryEntry, len(b.history))
	copy(out, b.history)
	return out
}

// Run executes work and turns its outcome into an AgentResult. Errors become
// error results carrying the message, panics are recovered the same way, and
// a nil payload is replaced by the output validation failure result. Every
// outcome is appended to the history.
func (b *Base) Run(ctx context.Context, task string, work WorkFunc) (result models.AgentResult) {
	b.execMu.Lock()
	defer b.execMu.Unlock()

	b.logger.Info("executing task", zap.String("task", task))

	defer func() {
		if r := recover(); r != nil {
			b.logger.Error("agent panicked",
				zap.Any("panic", r),
				zap.ByteString("stack", debug.Stack()))
			result = models.ErrorResult(fmt.Sprintf("%v", r))
		}
		b.record(task, result)
	}()

	payload, err := work(ctx)
	if err != nil {
		b.logger.Error("task failed", zap.String("task", task), zap.Error(err))
		return models.ErrorResult(err.Error())
	}

	result = models.SuccessResult(payload)
	if !result.Valid() {
		b.logger.Warn("output validation failed", zap.String("task", task))
		return models.ShapeErrorResult()
	}
	return result
}

func (b *Base) record(task string, out models.AgentResult) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.history = append(b.history, models.HistoryEntry{
		Agent:  b.name,
		Task:   task,
		Output: out,
		At:     time.Now(),
	})
}

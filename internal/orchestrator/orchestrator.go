package orchestrator

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/ShayCichocki/agentnexus/internal/decompose"
	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// Mode selects how a pipeline runs its stages.
type Mode string

const (
	// ModeSequential runs stages in order and stops at the first failure.
	ModeSequential Mode = "sequential"
	// ModeConcurrent runs every stage on the worker pool.
	ModeConcurrent Mode = "concurrent"
)

// ParseMode converts a configured mode name.
func ParseMode(s string) (Mode, error) {
	switch Mode(s) {
	case ModeSequential, ModeConcurrent:
		return Mode(s), nil
	default:
		return "", fmt.Errorf("unknown pipeline mode %q", s)
	}
}

// ErrClosed is reported by runs started after Close.
var ErrClosed = errors.New("orchestrator is closed")

// Orchestrator runs tasks and pipelines against a Registry and keeps the
// audit log of every executed task.
type Orchestrator struct {
	registry    *Registry
	logger      *zap.Logger
	maxWorkers  int
	metrics     *Metrics
	observer    Observer
	eventBuffer int
	emitter     *EventEmitter

	// mu protects history and closed.
	mu      sync.Mutex
	history []models.HistoryEntry
	closed  bool
	running sync.WaitGroup
}

// New creates an Orchestrator.
func New(opts ...Option) *Orchestrator {
	o := &Orchestrator{
		logger:     zap.NewNop(),
		maxWorkers: DefaultMaxWorkers,
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.registry == nil {
		o.registry = NewRegistry()
	}
	if o.eventBuffer > 0 {
		o.emitter = NewEventEmitter(o.eventBuffer, o.logger)
	}
	return o
}

// Registry returns the agent registry.
func (o *Orchestrator) Registry() *Registry {
	return o.registry
}

// MaxWorkers returns the concurrency limit.
func (o *Orchestrator) MaxWorkers() int {
	return o.maxWorkers
}

// Events returns the stage event channel, or nil when events are disabled.
// The channel is closed by Close.
func (o *Orchestrator) Events() <-chan StageEvent {
	if o.emitter == nil {
		return nil
	}
	return o.emitter.Events()
}

// History returns a copy of the audit log, oldest first.
func (o *Orchestrator) History() []models.HistoryEntry {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]models.HistoryEntry, len(o.history))
	copy(out, o.history)
	return out
}

// Close stops accepting runs, waits for runs in flight and closes the
// event channel. It is safe to call more than once.
func (o *Orchestrator) Close() error {
	o.mu.Lock()
	if o.closed {
		o.mu.Unlock()
		return nil
	}
	o.closed = true
	o.mu.Unlock()

	o.running.Wait()
	if o.emitter != nil {
		o.emitter.Close()
	}
	o.logger.Info("orchestrator closed")
	return nil
}

func (o *Orchestrator) begin() bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	if o.closed {
		return false
	}
	o.running.Add(1)
	return true
}

// RunTask routes task to the agent bound to name. An unknown name, a panic
// or a malformed output are reported as error results.
func (o *Orchestrator) RunTask(ctx context.Context, name, task string) models.AgentResult {
	if !o.begin() {
		return models.ErrorResult(ErrClosed.Error())
	}
	defer o.running.Done()
	return o.runTask(ctx, name, task)
}

func (o *Orchestrator) runTask(ctx context.Context, name, task string) (result models.AgentResult) {
	a, err := o.registry.Resolve(name)
	if err != nil {
		o.logger.Error("agent not found", zap.String("agent", name))
		return models.ErrorResult(err.Error())
	}

	defer func() {
		if r := recover(); r != nil {
			o.logger.Error("agent panicked", zap.String("agent", name), zap.Any("panic", r))
			result = models.ErrorResult(fmt.Sprintf("%v", r))
		}
		o.record(name, task, result)
	}()

	result = a.Execute(ctx, task)
	if !result.Valid() {
		o.logger.Warn("output validation failed", zap.String("agent", name))
		result = models.ShapeErrorResult()
	}
	return result
}

func (o *Orchestrator) record(name, task string, out models.AgentResult) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.history = append(o.history, models.HistoryEntry{
		Agent:  name,
		Task:   task,
		Output: out,
		At:     time.Now(),
	})
}

// RunPipeline runs the stages of seq in order, stopping after the first
// stage that returns an error result. Later stages are absent from the
// returned context.
func (o *Orchestrator) RunPipeline(ctx context.Context, seq models.Sequence, task string) *models.PipelineContext {
	pc := models.NewPipelineContext()
	if !o.begin() {
		if len(seq) > 0 {
			pc.Set(seq[0], models.ErrorResult(ErrClosed.Error()))
		}
		return pc
	}
	defer o.running.Done()

	o.metrics.IncPipeline(string(ModeSequential))
	o.logger.Info("running pipeline",
		zap.String("mode", string(ModeSequential)),
		zap.Strings("sequence", seq),
		zap.String("task", task))

	for i, name := range seq {
		o.emit(i, name, models.StageStatusPending, nil)
	}
	for i, name := range seq {
		res := o.runStage(ctx, i, name, task)
		pc.Set(name, res)
		if res.Failed() {
			o.logger.Info("pipeline stopped at failed stage", zap.String("agent", name), zap.Int("index", i))
			break
		}
	}
	return pc
}

// RunPipelineConcurrent runs every stage of seq on at most MaxWorkers
// goroutines and waits for all of them. A failed stage does not stop its
// siblings. The context is assembled in sequence order; for a repeated
// name the last occurrence's result is kept.
func (o *Orchestrator) RunPipelineConcurrent(ctx context.Context, seq models.Sequence, task string) *models.PipelineContext {
	pc := models.NewPipelineContext()
	if !o.begin() {
		for _, name := range seq {
			pc.Set(name, models.ErrorResult(ErrClosed.Error()))
		}
		return pc
	}
	defer o.running.Done()

	o.metrics.IncPipeline(string(ModeConcurrent))
	o.logger.Info("running pipeline",
		zap.String("mode", string(ModeConcurrent)),
		zap.Strings("sequence", seq),
		zap.Int("max_workers", o.maxWorkers),
		zap.String("task", task))

	results := make([]models.AgentResult, len(seq))
	for i, name := range seq {
		o.emit(i, name, models.StageStatusPending, nil)
	}

	var g errgroup.Group
	g.SetLimit(o.maxWorkers)
	for i, name := range seq {
		g.Go(func() error {
			results[i] = o.runStage(ctx, i, name, task)
			return nil
		})
	}
	_ = g.Wait()

	for i, name := range seq {
		pc.Set(name, results[i])
	}
	if failed := pc.Failed(); len(failed) > 0 {
		o.logger.Info("pipeline finished with failed stages", zap.Strings("failed", failed))
	}
	return pc
}

// Run decomposes task and runs the resulting sequence in mode.
func (o *Orchestrator) Run(ctx context.Context, mode Mode, task string) (models.Sequence, *models.PipelineContext) {
	m := decompose.Classify(task)
	o.logger.Debug("task decomposed",
		zap.String("rule", m.Rule),
		zap.String("keyword", m.Keyword),
		zap.Strings("sequence", m.Sequence))

	if mode == ModeConcurrent {
		return m.Sequence, o.RunPipelineConcurrent(ctx, m.Sequence, task)
	}
	return m.Sequence, o.RunPipeline(ctx, m.Sequence, task)
}

func (o *Orchestrator) runStage(ctx context.Context, index int, name, task string) models.AgentResult {
	o.emit(index, name, models.StageStatusRunning, nil)
	o.metrics.StageStarted()
	start := time.Now()

	res := o.runTask(ctx, name, task)

	o.metrics.StageFinished()
	o.metrics.ObserveStage(name, string(res.Status), time.Since(start))
	o.emit(index, name, models.StageStatusFor(res), &res)
	return res
}

func (o *Orchestrator) emit(index int, name string, status models.StageStatus, res *models.AgentResult) {
	if o.observer == nil && o.emitter == nil {
		return
	}
	ev := StageEvent{
		Name:      name,
		Index:     index,
		Status:    status,
		Result:    res,
		Timestamp: time.Now(),
	}
	if o.observer != nil {
		o.observer(ev)
	}
	if o.emitter != nil {
		o.emitter.Emit(ev)
	}
}

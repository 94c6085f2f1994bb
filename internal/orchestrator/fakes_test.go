package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ShayCichocki/agentnexus/internal/agent"
	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// scriptedAgent returns a fixed result after an optional delay.
type scriptedAgent struct {
	*agent.Base
	result models.AgentResult
	delay  time.Duration
	calls  atomic.Int32
}

func newScripted(name string, result models.AgentResult, delay time.Duration) *scriptedAgent {
	return &scriptedAgent{Base: agent.NewBase(name, nil), result: result, delay: delay}
}

func (s *scriptedAgent) Execute(ctx context.Context, task string) models.AgentResult {
	s.calls.Add(1)
	return s.Run(ctx, task, func(context.Context) (any, error) {
		if s.delay > 0 {
			time.Sleep(s.delay)
		}
		if s.result.Failed() {
			return nil, errString(s.result.Message())
		}
		return s.result.Result, nil
	})
}

type errString string

func (e errString) Error() string { return string(e) }

// rawAgent returns whatever result it is given without going through Base.
type rawAgent struct {
	name   string
	result models.AgentResult
	panics bool
}

func (r *rawAgent) Name() string                   { return r.name }
func (r *rawAgent) History() []models.HistoryEntry { return nil }
func (r *rawAgent) Execute(context.Context, string) models.AgentResult {
	if r.panics {
		panic("agent exploded")
	}
	return r.result
}

// concurrencyGauge tracks the peak number of simultaneous executions.
type concurrencyGauge struct {
	name string
	mu   sync.Mutex
	cur  int
	peak int
}

func (p *concurrencyGauge) Name() string                   { return p.name }
func (p *concurrencyGauge) History() []models.HistoryEntry { return nil }
func (p *concurrencyGauge) Execute(context.Context, string) models.AgentResult {
	p.mu.Lock()
	p.cur++
	if p.cur > p.peak {
		p.peak = p.cur
	}
	p.mu.Unlock()

	time.Sleep(20 * time.Millisecond)

	p.mu.Lock()
	p.cur--
	p.mu.Unlock()
	return models.SuccessResult("ok")
}

func (p *concurrencyGauge) Peak() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.peak
}

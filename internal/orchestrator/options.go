package orchestrator

import (
	"go.uber.org/zap"
)

// DefaultMaxWorkers is the concurrency limit used when none is configured.
const DefaultMaxWorkers = 5

// Option configures an Orchestrator. Use With* functions to create Options.
type Option func(*Orchestrator)

// WithRegistry sets the agent registry. By default a new empty one is used.
func WithRegistry(r *Registry) Option {
	return func(o *Orchestrator) { o.registry = r }
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(o *Orchestrator) {
		if l != nil {
			o.logger = l.Named("orchestrator")
		}
	}
}

// WithMaxWorkers sets the concurrency limit of the concurrent pipeline.
// Values below 1 are ignored.
func WithMaxWorkers(n int) Option {
	return func(o *Orchestrator) {
		if n >= 1 {
			o.maxWorkers = n
		}
	}
}

// WithMetrics sets the metrics collector.
func WithMetrics(m *Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithObserver registers a callback for stage events.
func WithObserver(fn Observer) Option {
	return func(o *Orchestrator) { o.observer = fn }
}

// WithEventBuffer enables the Events channel with the given buffer size.
func WithEventBuffer(size int) Option {
	return func(o *Orchestrator) { o.eventBuffer = size }
}

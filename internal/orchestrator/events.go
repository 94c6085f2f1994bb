package orchestrator

import (
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/ShayCichocki/agentnexus/pkg/models"
)

// StageEvent reports a stage lifecycle transition.
type StageEvent struct {
	// Name is the agent name of the stage.
	Name string
	// Index is the stage's position in the sequence.
	Index int
	// Status is the stage's new status.
	Status models.StageStatus
	// Result is set for terminal statuses.
	Result *models.AgentResult
	// Timestamp is when the transition happened.
	Timestamp time.Time
}

// Observer receives stage events. It is called from worker goroutines and
// must be safe for concurrent use.
type Observer func(StageEvent)

// EventEmitter delivers stage events on a buffered channel.
// Events are dropped when the buffer stays full.
type EventEmitter struct {
	mu           sync.RWMutex
	events       chan StageEvent
	closed       bool
	droppedCount atomic.Uint64
	logger       *zap.Logger
}

// NewEventEmitter creates an EventEmitter with the given buffer size.
func NewEventEmitter(bufferSize int, logger *zap.Logger) *EventEmitter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &EventEmitter{
		events: make(chan StageEvent, bufferSize),
		logger: logger,
	}
}

// Emit sends an event, waiting briefly for the receiver before dropping it.
func (e *EventEmitter) Emit(event StageEvent) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.closed {
		return
	}

	select {
	case e.events <- event:
		return
	default:
	}

	timer := time.NewTimer(100 * time.Millisecond)
	defer timer.Stop()
	select {
	case e.events <- event:
	case <-timer.C:
		count := e.droppedCount.Add(1)
		if count%10 == 1 {
			e.logger.Warn("event channel full, dropped event",
				zap.Uint64("dropped_total", count),
				zap.String("stage", event.Name),
				zap.String("status", string(event.Status)))
		}
	}
}

// DroppedCount returns the total number of events that have been dropped.
func (e *EventEmitter) DroppedCount() uint64 {
	return e.droppedCount.Load()
}

// Events returns a read-only channel of events.
func (e *EventEmitter) Events() <-chan StageEvent {
	return e.events
}

// Close closes the events channel. Later Emit calls are ignored.
func (e *EventEmitter) Close() {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.closed {
		return
	}
	e.closed = true
	close(e.events)
}

package models

import "time"

// StageStatus represents the lifecycle state of one agent stage in a pipeline.
type StageStatus string

const (
	// StageStatusPending indicates the stage has not started.
	StageStatusPending StageStatus = "pending"
	// StageStatusRunning indicates the agent is executing.
	StageStatusRunning StageStatus = "running"
	// StageStatusCompleted indicates the agent returned a success result.
	StageStatusCompleted StageStatus = "completed"
	// StageStatusFailed indicates the agent returned an error result.
	// A failed stage still contributes an entry to the pipeline context.
	StageStatusFailed StageStatus = "failed"
)

// Valid returns true if the status is a known value.
func (s StageStatus) Valid() bool {
	switch s {
	case StageStatusPending, StageStatusRunning, StageStatusCompleted, StageStatusFailed:
		return true
	default:
		return false
	}
}

// Terminal returns true for completed and failed stages.
func (s StageStatus) Terminal() bool {
	return s == StageStatusCompleted || s == StageStatusFailed
}

// StageStatusFor maps an agent result onto the terminal stage status.
func StageStatusFor(r AgentResult) StageStatus {
	if r.Status == StatusSuccess {
		return StageStatusCompleted
	}
	return StageStatusFailed
}

// HistoryEntry is one record of the append-only task audit log.
type HistoryEntry struct {
	// Agent is the registry name the task was routed to.
	Agent string `json:"agent"`
	// Task is the task text handed to the agent.
	Task string `json:"task"`
	// Output is the result the agent produced.
	Output AgentResult `json:"output"`
	// At is when the entry was recorded.
	At time.Time `json:"at"`
}

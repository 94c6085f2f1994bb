// Package models holds the data types shared by agents, the orchestrator
// and the execution/validation engines.
package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// ResultStatus is the outcome tag carried by every AgentResult.
type ResultStatus string

const (
	// StatusSuccess marks a result produced by a successful agent run.
	StatusSuccess ResultStatus = "success"
	// StatusError marks a failed agent run. The result carries the reason.
	StatusError ResultStatus = "error"
)

// Valid returns true if the status is a known value.
func (s ResultStatus) Valid() bool {
	return s == StatusSuccess || s == StatusError
}

// OutputValidationFailed is the result text substituted for malformed agent output.
const OutputValidationFailed = "Agent output validation failed."

// ErrOutputShape is returned when an agent output is missing a required field.
var ErrOutputShape = errors.New("agent output shape invalid")

// AgentResult is the {status, result} value every agent execution produces.
type AgentResult struct {
	Status ResultStatus `json:"status"`
	Result any          `json:"result"`
}

// SuccessResult wraps payload in a success result.
func SuccessResult(payload any) AgentResult {
	return AgentResult{Status: StatusSuccess, Result: payload}
}

// ErrorResult wraps msg in an error result.
func ErrorResult(msg string) AgentResult {
	return AgentResult{Status: StatusError, Result: msg}
}

// ShapeErrorResult is the synthetic result used when output validation fails.
func ShapeErrorResult() AgentResult {
	return ErrorResult(OutputValidationFailed)
}

// Failed reports whether the result carries the error status.
func (r AgentResult) Failed() bool {
	return r.Status == StatusError
}

// Valid reports whether both fields are present and the status is known.
func (r AgentResult) Valid() bool {
	return r.Status.Valid() && r.Result != nil
}

// Message returns the result payload as text when it is a string.
func (r AgentResult) Message() string {
	if s, ok := r.Result.(string); ok {
		return s
	}
	return ""
}

// ValidateShape converts a loosely typed agent output into an AgentResult.
// Both the "status" and "result" keys must be present and the status must be
// one of the known values.
func ValidateShape(raw map[string]any) (AgentResult, error) {
	if raw == nil {
		return AgentResult{}, fmt.Errorf("%w: nil output", ErrOutputShape)
	}
	rawStatus, ok := raw["status"]
	if !ok {
		return AgentResult{}, fmt.Errorf("%w: missing status", ErrOutputShape)
	}
	result, ok := raw["result"]
	if !ok || result == nil {
		return AgentResult{}, fmt.Errorf("%w: missing result", ErrOutputShape)
	}
	status, ok := rawStatus.(string)
	if !ok || !ResultStatus(status).Valid() {
		return AgentResult{}, fmt.Errorf("%w: unknown status %v", ErrOutputShape, rawStatus)
	}
	return AgentResult{Status: ResultStatus(status), Result: result}, nil
}

// GateOutput applies ValidateShape and substitutes the synthetic error result
// on failure.
func GateOutput(raw map[string]any) AgentResult {
	r, err := ValidateShape(raw)
	if err != nil {
		return ShapeErrorResult()
	}
	return r
}

// UnmarshalJSON decodes a result and rejects values missing either field.
func (r *AgentResult) UnmarshalJSON(data []byte) error {
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	v, err := ValidateShape(raw)
	if err != nil {
		return err
	}
	*r = v
	return nil
}

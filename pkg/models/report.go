package models

import "encoding/json"

// ValidationReport is the syntax and style verdict for one source string.
// It is a value type and is never mutated after construction.
type ValidationReport struct {
	// IsValid is true when the source parses and the linter reports no violations.
	IsValid bool
	// LinterErrors is the total style violation count. It is -1 when the
	// linter could not run.
	LinterErrors int
	// SyntaxError holds the parse failure message. When set, the linter did not run.
	SyntaxError string
}

// SyntaxFailure builds the report for source that does not parse.
func SyntaxFailure(msg string) ValidationReport {
	return ValidationReport{IsValid: false, SyntaxError: msg}
}

// LintResult builds the report for source that parsed and was linted.
func LintResult(violations int) ValidationReport {
	return ValidationReport{IsValid: violations == 0, LinterErrors: violations}
}

// LinterErrorsValue returns the violation count, or "Syntax Error: <msg>"
// when parsing failed.
func (r ValidationReport) LinterErrorsValue() any {
	if r.SyntaxError != "" {
		return "Syntax Error: " + r.SyntaxError
	}
	return r.LinterErrors
}

// MarshalJSON renders {"is_valid": bool, "linter_errors": int | string}.
func (r ValidationReport) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		IsValid      bool `json:"is_valid"`
		LinterErrors any  `json:"linter_errors"`
	}{r.IsValid, r.LinterErrorsValue()})
}

// FailureKind classifies why an execution did not succeed.
type FailureKind string

const (
	// FailureNone is used for successful runs.
	FailureNone FailureKind = ""
	// FailureRuntime is a non-zero exit of the interpreter.
	FailureRuntime FailureKind = "runtime"
	// FailureMissingDependency is an import of a module that is not installed.
	FailureMissingDependency FailureKind = "missing_dependency"
	// FailureTimeout is a run killed after exceeding its wall-clock limit.
	FailureTimeout FailureKind = "timeout"
	// FailureLaunch is a failure to materialize or start the child process.
	FailureLaunch FailureKind = "launch"
)

// ExecutionReport is the captured outcome of running a source string.
// Exactly one of Output and Error is meaningful: Error is set for the
// missing-dependency, timeout and launch variants.
type ExecutionReport struct {
	Success bool
	Output  string
	Error   string
	Kind    FailureKind
}

// ExecutionOutput builds the report for a process that ran to completion.
func ExecutionOutput(exitCode int, output string) ExecutionReport {
	r := ExecutionReport{Success: exitCode == 0, Output: output}
	if !r.Success {
		r.Kind = FailureRuntime
	}
	return r
}

// ExecutionError builds an error-variant report.
func ExecutionError(kind FailureKind, msg string) ExecutionReport {
	return ExecutionReport{Success: false, Error: msg, Kind: kind}
}

// IsErrorVariant reports whether the report carries an error message
// instead of process output.
func (r ExecutionReport) IsErrorVariant() bool {
	return r.Error != ""
}

// MarshalJSON renders {"execution_success", "output"} or {"execution_success", "error"}.
func (r ExecutionReport) MarshalJSON() ([]byte, error) {
	if r.IsErrorVariant() {
		return json.Marshal(struct {
			Success bool   `json:"execution_success"`
			Error   string `json:"error"`
		}{false, r.Error})
	}
	return json.Marshal(struct {
		Success bool   `json:"execution_success"`
		Output  string `json:"output"`
	}{r.Success, r.Output})
}

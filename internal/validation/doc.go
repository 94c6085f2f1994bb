// Package validation decides whether a candidate source string is valid.
//
// # Overview
//
// Validation runs in two passes:
//
//  1. Syntax - the source is compiled, without running it, by the configured
//     interpreter, so anything the interpreter would refuse to run fails
//     here. When the interpreter cannot be started the tree-sitter Python
//     grammar decides instead. A failure short-circuits with a report
//     carrying the syntax message.
//  2. Style - the source is written to a transient file and handed to an
//     external linter. The report counts the violations it found.
//
// The transient file is removed on every exit path. Reports are memoized by
// source hash. Linter failures are never memoized.
//
// # Formatting
//
// Formatters are black-box stdin-to-stdout filters (black, isort) applied to
// generated code before validation. A failing formatter never blocks the
// pipeline: callers fall back to the unformatted source.
//
// # Usage
//
//	v := validation.New(validation.NewCommandLinter(runner, []string{"flake8"}, 30*time.Second))
//	report := v.Validate(ctx, source)
//	if report.IsValid {
//	    // safe to execute
//	}
package validation

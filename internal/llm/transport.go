// Package llm provides the model transport used by agents: a single
// blocking call that sends a prompt and returns text.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// ErrTransport marks failures of the model transport (connectivity, auth, protocol).
var ErrTransport = errors.New("model transport failure")

// TransportError wraps a provider failure.
type TransportError struct {
	Provider string
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: %v", e.Provider, e.Err)
}

// Unwrap returns the provider error.
func (e *TransportError) Unwrap() error { return e.Err }

// Is matches ErrTransport.
func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// Request is one prompt sent to the model.
type Request struct {
	// System is the system prompt.
	System string
	// Prompt is the user message.
	Prompt string
	// Temperature overrides the transport default when non-nil.
	Temperature *float64
	// Model overrides the transport default when non-empty.
	Model string
	// JSON asks the provider for a JSON object response where supported.
	JSON bool
}

// Transport sends a prompt and returns the model's text.
type Transport interface {
	Generate(ctx context.Context, req Request) (string, error)
}

// Float returns a pointer to f, for Request.Temperature.
func Float(f float64) *float64 { return &f }

// TransportFunc adapts a function to the Transport interface.
type TransportFunc func(ctx context.Context, req Request) (string, error)

// Generate calls f.
func (f TransportFunc) Generate(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

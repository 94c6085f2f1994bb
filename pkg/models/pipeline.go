package models

import (
	"bytes"
	"encoding/json"
)

// Sequence is an ordered list of agent role names. Duplicates are permitted.
type Sequence []string

// Contains returns true if name appears in the sequence.
func (s Sequence) Contains(name string) bool {
	for _, n := range s {
		if n == name {
			return true
		}
	}
	return false
}

// PipelineContext maps agent names to their results, remembering the order
// in which names were first inserted.
type PipelineContext struct {
	names   []string
	results map[string]AgentResult
}

// NewPipelineContext creates an empty context.
func NewPipelineContext() *PipelineContext {
	return &PipelineContext{results: make(map[string]AgentResult)}
}

// Set stores the result for name. Re-setting an existing name replaces the
// value and keeps its original position.
func (c *PipelineContext) Set(name string, r AgentResult) {
	if _, ok := c.results[name]; !ok {
		c.names = append(c.names, name)
	}
	c.results[name] = r
}

// Get returns the result for name.
func (c *PipelineContext) Get(name string) (AgentResult, bool) {
	r, ok := c.results[name]
	return r, ok
}

// Has returns true if a result is stored for name.
func (c *PipelineContext) Has(name string) bool {
	_, ok := c.results[name]
	return ok
}

// Names returns the stored names in insertion order.
func (c *PipelineContext) Names() []string {
	out := make([]string, len(c.names))
	copy(out, c.names)
	return out
}

// Len returns the number of stored names.
func (c *PipelineContext) Len() int {
	return len(c.names)
}

// Failed returns the names whose result carries the error status.
func (c *PipelineContext) Failed() []string {
	var out []string
	for _, n := range c.names {
		if c.results[n].Failed() {
			out = append(out, n)
		}
	}
	return out
}

// MarshalJSON renders the context as a JSON object with keys in insertion order.
func (c *PipelineContext) MarshalJSON() ([]byte, error) {
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, n := range c.names {
		if i > 0 {
			buf.WriteByte(',')
		}
		key, err := json.Marshal(n)
		if err != nil {
			return nil, err
		}
		val, err := json.Marshal(c.results[n])
		if err != nil {
			return nil, err
		}
		buf.Write(key)
		buf.WriteByte(':')
		buf.Write(val)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

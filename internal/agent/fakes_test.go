package agent

import (
	"context"
	"errors"
	"sync"

	"github.com/ShayCichocki/agentnexus/internal/llm"
	"github.com/ShayCichocki/agentnexus/pkg/models"
)

type fakeValidator struct {
	report models.ValidationReport
	calls  []string
}

func (f *fakeValidator) Validate(_ context.Context, source string) models.ValidationReport {
	f.calls = append(f.calls, source)
	return f.report
}

type fakeExecutor struct {
	report models.ExecutionReport
	calls  []string
}

func (f *fakeExecutor) Execute(_ context.Context, source string) models.ExecutionReport {
	f.calls = append(f.calls, source)
	return f.report
}

type newlineFormatter struct{ fail bool }

func (f newlineFormatter) Format(_ context.Context, source string) (string, error) {
	if f.fail {
		return source, errors.New("formatter unavailable")
	}
	return source + "\n", nil
}

type fakeStore struct {
	mu    sync.Mutex
	saved []string
	err   error
}

func (s *fakeStore) Save(_ context.Context, task, code string) (models.Artifact, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return models.Artifact{}, s.err
	}
	s.saved = append(s.saved, code)
	return models.Artifact{ID: "a1", Path: "datafiles/a1/generated_code.py", Task: task}, nil
}

// staticTransport returns text for every request and records the last one.
type staticTransport struct {
	text string
	err  error
	last llm.Request
}

func (s *staticTransport) Generate(_ context.Context, req llm.Request) (string, error) {
	s.last = req
	return s.text, s.err
}

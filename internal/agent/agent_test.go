package agent

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/ShayCichocki/agentnexus/pkg/models"
)

func TestBase_RunSuccessRecordsHistory(t *testing.T) {
	b := NewBase("worker", nil)

	res := b.Run(context.Background(), "task one", func(context.Context) (any, error) {
		return map[string]any{"ok": true}, nil
	})
	if res.Status != models.StatusSuccess {
		t.Fatalf("status = %q, want success", res.Status)
	}

	h := b.History()
	if len(h) != 1 {
		t.Fatalf("history length = %d, want 1", len(h))
	}
	if h[0].Agent != "worker" || h[0].Task != "task one" || h[0].Output.Status != models.StatusSuccess {
		t.Errorf("history entry = %+v", h[0])
	}
}

func TestBase_RunErrorBecomesResult(t *testing.T) {
	b := NewBase("worker", nil)

	res := b.Run(context.Background(), "t", func(context.Context) (any, error) {
		return nil, errors.New("connection refused")
	})
	if res.Status != models.StatusError || res.Message() != "connection refused" {
		t.Errorf("result = %+v", res)
	}
	if len(b.History()) != 1 {
		t.Error("failed execution was not recorded")
	}
}

func TestBase_RunRecoversPanic(t *testing.T) {
	b := NewBase("worker", nil)

	res := b.Run(context.Background(), "t", func(context.Context) (any, error) {
		panic("boom")
	})
	if res.Status != models.StatusError || res.Message() != "boom" {
		t.Errorf("result = %+v, want error result with panic message", res)
	}
	h := b.History()
	if len(h) != 1 || h[0].Output.Message() != "boom" {
		t.Errorf("history = %+v", h)
	}
}

func TestBase_RunNilPayloadFailsShapeCheck(t *testing.T) {
	b := NewBase("worker", nil)

	res := b.Run(context.Background(), "t", func(context.Context) (any, error) {
		return nil, nil
	})
	if res.Status != models.StatusError || res.Message() != models.OutputValidationFailed {
		t.Errorf("result = %+v, want output validation failure", res)
	}
}

func TestBase_HistoryIsCopy(t *testing.T) {
	b := NewBase("worker", nil)
	b.Run(context.Background(), "t", func(context.Context) (any, error) { return "x", nil })

	h := b.History()
	h[0].Task = "mutated"
	if b.History()[0].Task != "t" {
		t.Error("History returned internal slice")
	}
}

func TestBase_ConcurrentRunsSerialized(t *testing.T) {
	b := NewBase("shared", nil)

	var mu sync.Mutex
	active, maxActive := 0, 0
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			b.Run(context.Background(), "t", func(context.Context) (any, error) {
				mu.Lock()
				active++
				if active > maxActive {
					maxActive = active
				}
				mu.Unlock()

				mu.Lock()
				active--
				mu.Unlock()
				return "done", nil
			})
		}()
	}
	wg.Wait()

	if maxActive != 1 {
		t.Errorf("max concurrent executions = %d, want 1", maxActive)
	}
	if n := len(b.History()); n != 20 {
		t.Errorf("history length = %d, want 20", n)
	}
}

func TestVerdicts(t *testing.T) {
	tests := []struct {
		agent Agent
		want  string
	}{
		{NewValidator("validator", nil), ValidationPassed},
		{NewTester("tester", nil), TestsPassed},
		{NewAuditor("auditor", nil), AuditPassed},
	}
	for _, tt := range tests {
		t.Run(tt.agent.Name(), func(t *testing.T) {
			res := tt.agent.Execute(context.Background(), "anything")
			if res.Status != models.StatusSuccess || res.Message() != tt.want {
				t.Errorf("result = %+v, want success %q", res, tt.want)
			}
			if len(tt.agent.History()) != 1 {
				t.Error("execution not recorded")
			}
		})
	}
}

func TestDecomposerAgent(t *testing.T) {
	d := NewDecomposer("decomposer", nil)
	res := d.Execute(context.Background(), "Create a CLI")
	seq, ok := res.Result.(models.Sequence)
	if !ok {
		t.Fatalf("result type = %T, want models.Sequence", res.Result)
	}
	if len(seq) != 4 || seq[0] != "developer" {
		t.Errorf("sequence = %v", seq)
	}
}

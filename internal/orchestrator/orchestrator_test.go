package orchestrator

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"

	"github.com/ShayCichocki/agentnexus/internal/agent"
	"github.com/ShayCichocki/agentnexus/pkg/models"
)

func newTestOrchestrator(t *testing.T, agents map[string]agent.Agent, opts ...Option) *Orchestrator {
	t.Helper()
	r := NewRegistry()
	for name, a := range agents {
		r.Register(name, a)
	}
	o := New(append([]Option{WithRegistry(r)}, opts...)...)
	t.Cleanup(func() { o.Close() })
	return o
}

func TestNew_Defaults(t *testing.T) {
	o := New()
	defer o.Close()
	if o.MaxWorkers() != DefaultMaxWorkers {
		t.Errorf("MaxWorkers() = %d, want %d", o.MaxWorkers(), DefaultMaxWorkers)
	}
	if o.Registry() == nil {
		t.Error("expected a default registry")
	}
	if o.Events() != nil {
		t.Error("events should be disabled by default")
	}
	if New(WithMaxWorkers(0)).MaxWorkers() != DefaultMaxWorkers {
		t.Error("WithMaxWorkers(0) should be ignored")
	}
}

func TestRunTask_UnknownAgent(t *testing.T) {
	o := newTestOrchestrator(t, nil)

	res := o.RunTask(context.Background(), "ghost", "task")
	if res.Status != models.StatusError {
		t.Fatalf("status = %q, want error", res.Status)
	}
	if !strings.Contains(res.Message(), "ghost") {
		t.Errorf("message = %q, want agent name", res.Message())
	}
}

func TestRunTask_HistoryAccumulates(t *testing.T) {
	o := newTestOrchestrator(t, map[string]agent.Agent{
		"a": newScripted("a", models.SuccessResult("one"), 0),
		"b": newScripted("b", models.ErrorResult("nope"), 0),
	})

	o.RunTask(context.Background(), "a", "t1")
	o.RunTask(context.Background(), "b", "t2")
	o.RunTask(context.Background(), "a", "t3")

	h := o.History()
	if len(h) != 3 {
		t.Fatalf("history length = %d, want 3", len(h))
	}
	got := []string{h[0].Agent + ":" + h[0].Task, h[1].Agent + ":" + h[1].Task, h[2].Agent + ":" + h[2].Task}
	if diff := cmp.Diff([]string{"a:t1", "b:t2", "a:t3"}, got); diff != "" {
		t.Errorf("history order (-want +got):\n%s", diff)
	}
	if h[1].Output.Status != models.StatusError {
		t.Error("failed task should be recorded with error status")
	}
}

func TestRunTask_MalformedOutputGated(t *testing.T) {
	o := newTestOrchestrator(t, map[string]agent.Agent{
		"bad":   &rawAgent{name: "bad", result: models.AgentResult{Status: "maybe", Result: "x"}},
		"empty": &rawAgent{name: "empty", result: models.AgentResult{Status: models.StatusSuccess}},
	})

	for _, name := range []string{"bad", "empty"} {
		res := o.RunTask(context.Background(), name, "t")
		if res.Status != models.StatusError || res.Message() != models.OutputValidationFailed {
			t.Errorf("%s: result = %+v, want output validation failure", name, res)
		}
	}
}

func TestRunTask_PanicRecovered(t *testing.T) {
	o := newTestOrchestrator(t, map[string]agent.Agent{
		"boom": &rawAgent{name: "boom", panics: true},
	})
	res := o.RunTask(context.Background(), "boom", "t")
	if res.Status != models.StatusError || res.Message() != "agent exploded" {
		t.Errorf("result = %+v", res)
	}
	if len(o.History()) != 1 {
		t.Error("panicking task not recorded")
	}
}

func TestRunPipeline_AllSucceed(t *testing.T) {
	o := newTestOrchestrator(t, map[string]agent.Agent{
		"developer": newScripted("developer", models.SuccessResult("code"), 0),
		"validator": newScripted("validator", models.SuccessResult("Validation passed"), 0),
	})

	pc := o.RunPipeline(context.Background(), models.Sequence{"developer", "validator"}, "task")
	if diff := cmp.Diff([]string{"developer", "validator"}, pc.Names()); diff != "" {
		t.Errorf("context names (-want +got):\n%s", diff)
	}
	if len(pc.Failed()) != 0 {
		t.Errorf("failed stages: %v", pc.Failed())
	}
}

func TestRunPipeline_ShortCircuits(t *testing.T) {
	tester := newScripted("tester", models.SuccessResult("Tests passed"), 0)
	o := newTestOrchestrator(t, map[string]agent.Agent{
		"developer": newScripted("developer", models.SuccessResult("code"), 0),
		"validator": newScripted("validator", models.ErrorResult("invalid"), 0),
		"tester":    tester,
	})

	pc := o.RunPipeline(context.Background(), models.Sequence{"developer", "validator", "tester"}, "task")

	if diff := cmp.Diff([]string{"developer", "validator"}, pc.Names()); diff != "" {
		t.Errorf("context names (-want +got):\n%s", diff)
	}
	if pc.Has("tester") {
		t.Error("stage after failure should be absent")
	}
	if tester.calls.Load() != 0 {
		t.Error("stage after failure was executed")
	}
	if res, _ := pc.Get("validator"); res.Message() != "invalid" {
		t.Errorf("validator result = %+v", res)
	}
}

func TestRunPipeline_UnknownAgentStops(t *testing.T) {
	after := newScripted("after", models.SuccessResult("x"), 0)
	o := newTestOrchestrator(t, map[string]agent.Agent{"after": after})

	pc := o.RunPipeline(context.Background(), models.Sequence{"missing", "after"}, "task")
	if pc.Len() != 1 || !pc.Has("missing") {
		t.Errorf("context = %v, want only the missing stage", pc.Names())
	}
	if after.calls.Load() != 0 {
		t.Error("stage after unknown agent executed")
	}
}

func TestRunPipelineConcurrent_AllStagesRun(t *testing.T) {
	slow := newScripted("slow", models.SuccessResult("slow"), 40*time.Millisecond)
	failing := newScripted("failing", models.ErrorResult("broken"), 0)
	fast := newScripted("fast", models.SuccessResult("fast"), 0)
	o := newTestOrchestrator(t, map[string]agent.Agent{
		"slow":    slow,
		"failing": failing,
		"fast":    fast,
	})

	seq := models.Sequence{"slow", "failing", "fast"}
	pc := o.RunPipelineConcurrent(context.Background(), seq, "task")

	if diff := cmp.Diff([]string(seq), pc.Names()); diff != "" {
		t.Errorf("context order (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff([]string{"failing"}, pc.Failed()); diff != "" {
		t.Errorf("failed stages (-want +got):\n%s", diff)
	}
	if slow.calls.Load() != 1 || fast.calls.Load() != 1 {
		t.Error("sibling stages did not all run")
	}
	if len(o.History()) != 3 {
		t.Errorf("history length = %d, want 3", len(o.History()))
	}
}

func TestRunPipelineConcurrent_RespectsWorkerLimit(t *testing.T) {
	gauge := &concurrencyGauge{name: "gauge"}
	r := NewRegistry()
	seq := make(models.Sequence, 0, 8)
	for i := 0; i < 8; i++ {
		name := string(rune('a' + i))
		r.Register(name, gauge)
		seq = append(seq, name)
	}
	o := New(WithRegistry(r), WithMaxWorkers(2))
	defer o.Close()

	pc := o.RunPipelineConcurrent(context.Background(), seq, "task")
	if pc.Len() != 8 {
		t.Errorf("context length = %d, want 8", pc.Len())
	}
	if peak := gauge.Peak(); peak > 2 {
		t.Errorf("peak concurrency = %d, want <= 2", peak)
	}
}

func TestRunPipelineConcurrent_DuplicateNames(t *testing.T) {
	a := newScripted("dup", models.SuccessResult("ok"), 5*time.Millisecond)
	o := newTestOrchestrator(t, map[string]agent.Agent{
		"dup":   a,
		"other": newScripted("other", models.SuccessResult("ok"), 0),
	})

	pc := o.RunPipelineConcurrent(context.Background(), models.Sequence{"dup", "other", "dup"}, "task")

	if diff := cmp.Diff([]string{"dup", "other"}, pc.Names()); diff != "" {
		t.Errorf("context names (-want +got):\n%s", diff)
	}
	if n := a.calls.Load(); n != 2 {
		t.Errorf("duplicate stage ran %d times, want 2", n)
	}
	if n := len(a.History()); n != 2 {
		t.Errorf("agent history length = %d, want 2", n)
	}
}

func TestRunPipelineConcurrent_Empty(t *testing.T) {
	o := newTestOrchestrator(t, nil)
	pc := o.RunPipelineConcurrent(context.Background(), nil, "task")
	if pc.Len() != 0 {
		t.Errorf("context length = %d, want 0", pc.Len())
	}
}

func TestRun_Decomposes(t *testing.T) {
	r := NewRegistry()
	r.SpawnCatalog(agent.NewCatalog(agent.Deps{}), "tester", "auditor")
	o := New(WithRegistry(r))
	defer o.Close()

	for _, mode := range []Mode{ModeSequential, ModeConcurrent} {
		t.Run(string(mode), func(t *testing.T) {
			seq, pc := o.Run(context.Background(), mode, "test the parser")
			if diff := cmp.Diff(models.Sequence{"tester", "auditor"}, seq); diff != "" {
				t.Errorf("sequence (-want +got):\n%s", diff)
			}
			res, _ := pc.Get("auditor")
			if res.Message() != agent.AuditPassed {
				t.Errorf("auditor result = %+v", res)
			}
		})
	}
}

func TestParseMode(t *testing.T) {
	if m, err := ParseMode("concurrent"); err != nil || m != ModeConcurrent {
		t.Errorf("ParseMode(concurrent) = %q, %v", m, err)
	}
	if _, err := ParseMode("parallel"); err == nil {
		t.Error("expected error for unknown mode")
	}
}

func TestObserver_StageLifecycle(t *testing.T) {
	var mu sync.Mutex
	statuses := map[string][]models.StageStatus{}
	observer := func(ev StageEvent) {
		mu.Lock()
		defer mu.Unlock()
		statuses[ev.Name] = append(statuses[ev.Name], ev.Status)
	}

	o := newTestOrchestrator(t, map[string]agent.Agent{
		"ok":  newScripted("ok", models.SuccessResult("x"), 0),
		"bad": newScripted("bad", models.ErrorResult("y"), 0),
	}, WithObserver(observer))

	o.RunPipelineConcurrent(context.Background(), models.Sequence{"ok", "bad"}, "task")

	mu.Lock()
	defer mu.Unlock()
	want := map[string][]models.StageStatus{
		"ok":  {models.StageStatusPending, models.StageStatusRunning, models.StageStatusCompleted},
		"bad": {models.StageStatusPending, models.StageStatusRunning, models.StageStatusFailed},
	}
	if diff := cmp.Diff(want, statuses); diff != "" {
		t.Errorf("stage statuses (-want +got):\n%s", diff)
	}
}

func TestEvents_ChannelClosedOnClose(t *testing.T) {
	r := NewRegistry()
	r.Register("ok", newScripted("ok", models.SuccessResult("x"), 0))
	o := New(WithRegistry(r), WithEventBuffer(16))

	o.RunPipeline(context.Background(), models.Sequence{"ok"}, "task")
	if err := o.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	var got []models.StageStatus
	for ev := range o.Events() {
		got = append(got, ev.Status)
	}
	want := []models.StageStatus{models.StageStatusPending, models.StageStatusRunning, models.StageStatusCompleted}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("events (-want +got):\n%s", diff)
	}
}

func TestClose_RejectsNewRuns(t *testing.T) {
	a := newScripted("a", models.SuccessResult("x"), 0)
	o := New()
	o.Registry().Register("a", a)
	o.Close()
	o.Close()

	if res := o.RunTask(context.Background(), "a", "t"); res.Message() != ErrClosed.Error() {
		t.Errorf("RunTask after Close = %+v", res)
	}
	pc := o.RunPipelineConcurrent(context.Background(), models.Sequence{"a"}, "t")
	if res, _ := pc.Get("a"); !res.Failed() {
		t.Errorf("pipeline after Close = %+v", res)
	}
	if a.calls.Load() != 0 {
		t.Error("agent executed after Close")
	}
}

func TestMetrics_RecordStages(t *testing.T) {
	reg := prometheus.NewRegistry()
	m, err := NewMetrics(reg)
	if err != nil {
		t.Fatalf("NewMetrics: %v", err)
	}
	o := newTestOrchestrator(t, map[string]agent.Agent{
		"ok":  newScripted("ok", models.SuccessResult("x"), 0),
		"bad": newScripted("bad", models.ErrorResult("y"), 0),
	}, WithMetrics(m))

	o.RunPipelineConcurrent(context.Background(), models.Sequence{"ok", "bad"}, "task")
	o.RunPipeline(context.Background(), models.Sequence{"ok"}, "task")

	if got := testutil.ToFloat64(m.stageResults.WithLabelValues("ok", "success")); got != 2 {
		t.Errorf("ok successes = %v, want 2", got)
	}
	if got := testutil.ToFloat64(m.stageResults.WithLabelValues("bad", "error")); got != 1 {
		t.Errorf("bad errors = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.pipelines.WithLabelValues("concurrent")); got != 1 {
		t.Errorf("concurrent runs = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.stagesActive); got != 0 {
		t.Errorf("active stages = %v, want 0", got)
	}

	if _, err := NewMetrics(reg); err == nil {
		t.Error("expected duplicate registration error")
	}
}

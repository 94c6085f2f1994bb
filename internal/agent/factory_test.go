package agent

import (
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFactory_Shared(t *testing.T) {
	builds := 0
	f := NewFactory(PolicyShared, func(name string) Agent {
		builds++
		return NewTester(name, nil)
	})

	a := f.Build("one")
	b := f.Build("two")
	if a != b {
		t.Error("shared factory returned distinct instances")
	}
	if builds != 1 {
		t.Errorf("builds = %d, want 1", builds)
	}
}

func TestFactory_PerRegistration(t *testing.T) {
	f := NewFactory(PolicyPerRegistration, func(name string) Agent {
		return NewTester(name, nil)
	})
	a, b := f.Build("x"), f.Build("x")
	if a == b {
		t.Error("per-registration factory reused an instance")
	}
	if a.Name() != "x" {
		t.Errorf("name = %q", a.Name())
	}
}

func TestNewCatalog(t *testing.T) {
	c := NewCatalog(Deps{})
	want := []string{"auditor", "decomposer", "developer", "tester", "validator"}
	if diff := cmp.Diff(want, c.Names()); diff != "" {
		t.Errorf("catalog names (-want +got):\n%s", diff)
	}

	dev, _ := c.Lookup("developer")
	if dev.Policy() != PolicyShared {
		t.Errorf("developer policy = %v, want shared", dev.Policy())
	}
	tester, _ := c.Lookup("tester")
	if tester.Policy() != PolicyPerRegistration {
		t.Errorf("tester policy = %v, want per-registration", tester.Policy())
	}
}

func TestCatalog_AddCustom(t *testing.T) {
	c := NewCatalog(Deps{})
	skipped := c.AddCustom([]Definition{
		{Name: "poet", SystemPrompt: "p"},
		{Name: "developer", SystemPrompt: "shadow"},
	}, Deps{})

	if diff := cmp.Diff([]string{"developer"}, skipped); diff != "" {
		t.Errorf("skipped (-want +got):\n%s", diff)
	}
	f, ok := c.Lookup("poet")
	if !ok {
		t.Fatal("custom agent not added")
	}
	a := f.Build("poet-2")
	custom, ok := a.(*Custom)
	if !ok {
		t.Fatalf("built %T, want *Custom", a)
	}
	if custom.Name() != "poet-2" || custom.Definition().SystemPrompt != "p" {
		t.Errorf("custom agent = %q %+v", custom.Name(), custom.Definition())
	}
}

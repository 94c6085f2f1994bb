package models

import (
	"encoding/json"
	"testing"
)

func TestPipelineContext_InsertionOrder(t *testing.T) {
	c := NewPipelineContext()
	c.Set("developer", SuccessResult("code"))
	c.Set("validator", ErrorResult("bad"))
	c.Set("developer", SuccessResult("code v2"))

	names := c.Names()
	if len(names) != 2 || names[0] != "developer" || names[1] != "validator" {
		t.Fatalf("Names() = %v, want [developer validator]", names)
	}

	r, ok := c.Get("developer")
	if !ok || r.Message() != "code v2" {
		t.Errorf("Get(developer) = %+v, %v; want replaced value", r, ok)
	}

	failed := c.Failed()
	if len(failed) != 1 || failed[0] != "validator" {
		t.Errorf("Failed() = %v, want [validator]", failed)
	}
}

func TestPipelineContext_MarshalJSONKeepsOrder(t *testing.T) {
	c := NewPipelineContext()
	c.Set("tester", SuccessResult("Tests passed"))
	c.Set("auditor", SuccessResult("Audit passed"))

	data, err := json.Marshal(c)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	want := `{"tester":{"status":"success","result":"Tests passed"},"auditor":{"status":"success","result":"Audit passed"}}`
	if string(data) != want {
		t.Errorf("json = %s, want %s", data, want)
	}
}

func TestSequence_Contains(t *testing.T) {
	s := Sequence{"developer", "validator"}
	if !s.Contains("validator") {
		t.Error("Contains(validator) = false, want true")
	}
	if s.Contains("tester") {
		t.Error("Contains(tester) = true, want false")
	}
}

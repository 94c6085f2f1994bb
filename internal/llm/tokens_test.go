package llm

import (
	"sync"
	"testing"
)

func TestTokenTracker(t *testing.T) {
	tr := NewTokenTracker()

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.Add(3, 2)
		}()
	}
	wg.Wait()

	in, out := tr.Total()
	if in != 30 || out != 20 {
		t.Errorf("Total() = %d, %d; want 30, 20", in, out)
	}
	if tr.Calls() != 10 {
		t.Errorf("Calls() = %d, want 10", tr.Calls())
	}

	tr.Reset()
	if in, out := tr.Total(); in != 0 || out != 0 || tr.Calls() != 0 {
		t.Error("Reset did not clear tracker")
	}
}

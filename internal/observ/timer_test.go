package observ

import (
	"strings"
	"sync"
	"testing"
	"time"
)

func TestTimerMergesSameName(t *testing.T) {
	tm := NewTimer()
	tm.Add("check", 2*time.Millisecond)
	tm.Add("lower", time.Millisecond)
	tm.Add("check", 3*time.Millisecond)

	merged := tm.Merged()
	if len(merged) != 2 {
		t.Fatalf("got %d phases, want 2", len(merged))
	}
	if merged[0].Name != "check" || merged[0].Dur != 5*time.Millisecond || merged[0].Count != 2 {
		t.Fatalf("unexpected merged check phase: %+v", merged[0])
	}
	if r := tm.Report(); r.TotalMS != 6 {
		t.Fatalf("total = %v, want 6", r.TotalMS)
	}
	if s := tm.Summary(); !strings.Contains(s, "x2") {
		t.Fatalf("summary lacks count:\n%s", s)
	}
}

func TestTimerConcurrent(t *testing.T) {
	tm := NewTimer()
	var wg sync.WaitGroup
	for range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tm.Track("unit")()
		}()
	}
	wg.Wait()
	if got := tm.Merged()[0].Count; got != 16 {
		t.Fatalf("count = %d, want 16", got)
	}
}

func TestNilTimer(t *testing.T) {
	var tm *Timer
	tm.Track("x")()
	if len(tm.Phases()) != 0 {
		t.Fatal("nil timer recorded phases")
	}
}

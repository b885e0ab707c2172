package timer

import (
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

const tick = 5 * time.Millisecond

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}

func TestCountdownCompletesOnce(t *testing.T) {
	var mu sync.Mutex
	var ticks []int
	var completed int32

	tm := NewWithInterval(tick, func(remaining int) {
		mu.Lock()
		ticks = append(ticks, remaining)
		mu.Unlock()
	}, func() {
		atomic.AddInt32(&completed, 1)
	})

	tm.Start(3)
	waitFor(t, func() bool { return atomic.LoadInt32(&completed) == 1 })
	time.Sleep(5 * tick)

	if got := atomic.LoadInt32(&completed); got != 1 {
		t.Errorf("expected completion exactly once, got %d", got)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []int{2, 1, 0}
	if len(ticks) != len(want) {
		t.Fatalf("expected ticks %v, got %v", want, ticks)
	}
	for i := range want {
		if ticks[i] != want[i] {
			t.Errorf("tick %d: got %d, want %d", i, ticks[i], want[i])
		}
	}

	if tm.Running() {
		t.Error("timer should stop itself at zero")
	}
	if tm.Elapsed() != 3 {
		t.Errorf("expected elapsed 3, got %d", tm.Elapsed())
	}
}

func TestPauseResumeIdempotent(t *testing.T) {
	var completed int32
	tm := NewWithInterval(tick, nil, func() { atomic.AddInt32(&completed, 1) })

	tm.Start(1000)
	tm.Pause()
	tm.Pause()
	if !tm.Paused() || tm.Running() {
		t.Fatal("expected paused timer")
	}

	before := tm.Remaining()
	time.Sleep(10 * tick)
	if tm.Remaining() != before {
		t.Errorf("remaining changed while paused: %d -> %d", before, tm.Remaining())
	}

	tm.Resume()
	tm.Resume()
	waitFor(t, func() bool { return tm.Remaining() < before })
	tm.Stop()

	if atomic.LoadInt32(&completed) != 0 {
		t.Error("completion must not fire for a stopped timer")
	}
}

func TestResetRestoresDuration(t *testing.T) {
	tm := NewWithInterval(tick, nil, nil)
	tm.Start(1000)
	waitFor(t, func() bool { return tm.Remaining() < 1000 })

	tm.Reset()
	if tm.Remaining() != 1000 {
		t.Errorf("expected remaining 1000 after reset, got %d", tm.Remaining())
	}
	if tm.Running() {
		t.Error("reset timer should not be running")
	}

	time.Sleep(5 * tick)
	if tm.Remaining() != 1000 {
		t.Error("reset timer kept ticking")
	}
}

func TestStopPreventsStaleCompletion(t *testing.T) {
	var completed int32
	tm := NewWithInterval(tick, nil, func() { atomic.AddInt32(&completed, 1) })

	tm.Start(2)
	tm.Stop()
	time.Sleep(10 * tick)

	if atomic.LoadInt32(&completed) != 0 {
		t.Error("stopped timer fired its completion callback")
	}
}

func TestRestartSupersedesPreviousRun(t *testing.T) {
	var completed int32
	tm := NewWithInterval(tick, nil, func() { atomic.AddInt32(&completed, 1) })

	tm.Start(2)
	tm.Start(4)
	waitFor(t, func() bool { return atomic.LoadInt32(&completed) >= 1 })
	time.Sleep(5 * tick)

	if got := atomic.LoadInt32(&completed); got != 1 {
		t.Errorf("expected one completion for the latest run, got %d", got)
	}
}

func TestStartZeroCompletesImmediately(t *testing.T) {
	var completed int32
	tm := NewWithInterval(tick, nil, func() { atomic.AddInt32(&completed, 1) })
	tm.Start(0)
	if atomic.LoadInt32(&completed) != 1 {
		t.Error("expected immediate completion for a zero duration")
	}
}

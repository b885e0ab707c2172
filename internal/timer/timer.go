package timer

import (
	"sync"
	"time"
)

// Timer is a per-question countdown. It ticks once per interval, reports
// the remaining seconds to OnTick and calls OnComplete exactly once when the
// count reaches zero, after which it stops itself.
type Timer struct {
	mu         sync.Mutex
	interval   time.Duration
	duration   int
	remaining  int
	running    bool
	paused     bool
	gen        uint64
	stop       chan struct{}
	onTick     func(remaining int)
	onComplete func()
}

// New returns a timer ticking once per second.
func New(onTick func(remaining int), onComplete func()) *Timer {
	return NewWithInterval(time.Second, onTick, onComplete)
}

// NewWithInterval returns a timer whose one-second ticks are delivered every interval.
func NewWithInterval(interval time.Duration, onTick func(remaining int), onComplete func()) *Timer {
	if interval <= 0 {
		interval = time.Second
	}
	return &Timer{interval: interval, onTick: onTick, onComplete: onComplete}
}

// Start begins a countdown from seconds, discarding any run in progress.
func (t *Timer) Start(seconds int) {
	t.mu.Lock()
	t.halt()
	t.duration = seconds
	t.remaining = seconds
	t.paused = false
	if seconds <= 0 {
		t.running = false
		complete := t.onComplete
		t.mu.Unlock()
		if complete != nil {
			complete()
		}
		return
	}
	t.running = true
	t.launch()
	t.mu.Unlock()
}

// Pause suspends ticking without touching the remaining time. Pausing a
// paused or idle timer is a no-op.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || t.paused {
		return
	}
	t.paused = true
	t.halt()
}

// Resume continues a paused countdown. Resuming a timer that is not paused is a no-op.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !t.running || !t.paused {
		return
	}
	t.paused = false
	t.launch()
}

// Reset restores the original duration and stops the timer.
func (t *Timer) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.halt()
	t.remaining = t.duration
	t.running = false
	t.paused = false
}

// Stop cancels the countdown; OnComplete will not fire for the current run.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.halt()
	t.running = false
	t.paused = false
}

func (t *Timer) Remaining() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.remaining
}

func (t *Timer) Elapsed() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.duration - t.remaining
}

func (t *Timer) Running() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.running && !t.paused
}

func (t *Timer) Paused() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.paused
}

// halt stops the active tick loop. Caller holds t.mu.
func (t *Timer) halt() {
	t.gen++
	if t.stop != nil {
		close(t.stop)
		t.stop = nil
	}
}

// launch starts a tick loop for the current generation. Caller holds t.mu.
func (t *Timer) launch() {
	stop := make(chan struct{})
	t.stop = stop
	go t.loop(t.gen, stop)
}

func (t *Timer) loop(gen uint64, stop chan struct{}) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			t.mu.Lock()
			if t.gen != gen {
				t.mu.Unlock()
				return
			}
			t.remaining--
			remaining := t.remaining
			done := remaining <= 0
			if done {
				t.remaining = 0
				remaining = 0
				t.running = false
				t.gen++
				t.stop = nil
			}
			onTick, onComplete := t.onTick, t.onComplete
			t.mu.Unlock()

			if onTick != nil {
				onTick(remaining)
			}
			if done {
				if onComplete != nil {
					onComplete()
				}
				return
			}
		}
	}
}

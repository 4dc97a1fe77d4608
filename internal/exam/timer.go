package exam

import (
	"sync"
	"time"

	"github.com/mind-engage/mocktest/internal/clock"
)

type TimerState string

const (
	TimerPaused  TimerState = "paused"
	TimerRunning TimerState = "running"
	TimerStopped TimerState = "stopped"
)

// Timer drives a one-second countdown by scheduling a callback per tick.
// Exactly one callback is pending while running; Pause and Stop cancel it.
// A callback that was already dequeued when the timer left the running
// state sees a stale generation and does nothing.
type Timer struct {
	clock  clock.Clock
	period time.Duration
	onTick func()

	mu      sync.Mutex
	state   TimerState
	gen     uint64
	pending clock.Timer
}

// NewTimer returns a paused timer; call Resume to start ticking.
func NewTimer(c clock.Clock, onTick func()) *Timer {
	return &Timer{clock: c, period: time.Second, onTick: onTick, state: TimerPaused}
}

func (t *Timer) State() TimerState {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.state
}

// Resume starts ticking from the current value. No-op while running or
// after Stop.
func (t *Timer) Resume() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TimerPaused {
		return
	}
	t.state = TimerRunning
	t.gen++
	t.armLocked(t.gen)
}

// Pause cancels the pending tick.
func (t *Timer) Pause() {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state != TimerRunning {
		return
	}
	t.state = TimerPaused
	t.cancelLocked()
}

// Stop cancels the pending tick for good. Safe to call from the tick
// callback itself.
func (t *Timer) Stop() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.state = TimerStopped
	t.cancelLocked()
}

func (t *Timer) armLocked(gen uint64) {
	t.pending = t.clock.AfterFunc(t.period, func() { t.fire(gen) })
}

func (t *Timer) cancelLocked() {
	if t.pending != nil {
		t.pending.Stop()
		t.pending = nil
	}
	t.gen++
}

func (t *Timer) fire(gen uint64) {
	t.mu.Lock()
	if t.state != TimerRunning || gen != t.gen {
		t.mu.Unlock()
		return
	}
	t.pending = nil
	t.mu.Unlock()

	t.onTick()

	t.mu.Lock()
	defer t.mu.Unlock()
	if t.state == TimerRunning && gen == t.gen && t.pending == nil {
		t.armLocked(gen)
	}
}

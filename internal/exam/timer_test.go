package exam

import (
	"testing"
	"time"

	"github.com/mind-engage/mocktest/internal/clock"
)

func TestTimerTicksOncePerSecond(t *testing.T) {
	c := clock.NewFake(t0)
	n := 0
	tm := NewTimer(c, func() { n++ })
	tm.Resume()
	c.Advance(3 * time.Second)
	if n != 3 {
		t.Fatalf("ticks = %d, want 3", n)
	}
	if tm.State() != TimerRunning {
		t.Fatalf("state = %s", tm.State())
	}
}

func TestTimerPauseCancelsPendingTick(t *testing.T) {
	c := clock.NewFake(t0)
	n := 0
	tm := NewTimer(c, func() { n++ })
	tm.Resume()
	c.Advance(1500 * time.Millisecond)
	tm.Pause()
	if c.Pending() != 0 {
		t.Fatalf("pending callbacks after pause = %d", c.Pending())
	}
	c.Advance(10 * time.Second)
	if n != 1 {
		t.Fatalf("ticks while paused: %d", n)
	}
	tm.Resume()
	c.Advance(2 * time.Second)
	if n != 3 {
		t.Fatalf("ticks after resume = %d, want 3", n)
	}
}

func TestTimerStopFromCallback(t *testing.T) {
	c := clock.NewFake(t0)
	n := 0
	var tm *Timer
	tm = NewTimer(c, func() {
		n++
		if n == 2 {
			tm.Stop()
		}
	})
	tm.Resume()
	c.Advance(5 * time.Second)
	if n != 2 {
		t.Fatalf("ticks = %d, want 2", n)
	}
	tm.Resume()
	c.Advance(5 * time.Second)
	if n != 2 || tm.State() != TimerStopped {
		t.Fatalf("stopped timer restarted: n=%d state=%s", n, tm.State())
	}
	if c.Pending() != 0 {
		t.Fatalf("pending = %d", c.Pending())
	}
}

func TestTimerStaleCallbackIsInert(t *testing.T) {
	c := clock.NewFake(t0)
	n := 0
	tm := NewTimer(c, func() { n++ })
	tm.Resume()
	tm.mu.Lock()
	stale := tm.gen
	tm.mu.Unlock()

	tm.Pause()
	tm.Resume()
	tm.fire(stale) // dequeued before the pause
	if n != 0 {
		t.Fatalf("stale callback ticked")
	}
	c.Advance(time.Second)
	if n != 1 {
		t.Fatalf("ticks = %d, want 1", n)
	}
}

func TestTimerResumeIsIdempotent(t *testing.T) {
	c := clock.NewFake(t0)
	tm := NewTimer(c, func() {})
	tm.Resume()
	tm.Resume()
	if c.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", c.Pending())
	}
}

package clock

import (
	"testing"
	"time"
)

func TestFakeAdvanceFiresDueCallbacksInOrder(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	var got []int
	c.AfterFunc(2*time.Second, func() { got = append(got, 2) })
	c.AfterFunc(time.Second, func() { got = append(got, 1) })
	c.AfterFunc(5*time.Second, func() { got = append(got, 5) })

	c.Advance(3 * time.Second)
	if len(got) != 2 || got[0] != 1 || got[1] != 2 {
		t.Fatalf("fired = %v, want [1 2]", got)
	}
	if c.Pending() != 1 {
		t.Fatalf("pending = %d, want 1", c.Pending())
	}
	if !c.Now().Equal(time.Unix(3, 0)) {
		t.Fatalf("now = %v", c.Now())
	}
}

func TestFakeRescheduleDuringAdvance(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	n := 0
	var arm func()
	arm = func() {
		c.AfterFunc(time.Second, func() {
			n++
			arm()
		})
	}
	arm()
	c.Advance(4 * time.Second)
	if n != 4 {
		t.Fatalf("ticks = %d, want 4", n)
	}
}

func TestFakeStop(t *testing.T) {
	c := NewFake(time.Unix(0, 0))
	fired := false
	tm := c.AfterFunc(time.Second, func() { fired = true })
	if !tm.Stop() {
		t.Fatal("first Stop should report true")
	}
	if tm.Stop() {
		t.Fatal("second Stop should report false")
	}
	c.Advance(2 * time.Second)
	if fired {
		t.Fatal("stopped callback fired")
	}
}

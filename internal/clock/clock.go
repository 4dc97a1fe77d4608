// Package clock abstracts wall time and scheduled callbacks so the exam
// countdown can be driven deterministically in tests.
package clock

import "time"

// Clock reports the current time and schedules one-shot callbacks.
type Clock interface {
	Now() time.Time
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a handle to a scheduled callback.
// Stop reports whether the call prevented the callback from running.
type Timer interface {
	Stop() bool
}

// Real is the process clock backed by package time.
type Real struct{}

func (Real) Now() time.Time { return time.Now() }

func (Real) AfterFunc(d time.Duration, f func()) Timer { return time.AfterFunc(d, f) }

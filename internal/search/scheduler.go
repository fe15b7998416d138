package search

import (
	"sync/atomic"
	"time"

	"github.com/benbjohnson/clock"
)

// Timer is a handle to a scheduled callback
type Timer interface {
	// Cancel prevents the callback from running if it has not started yet
	Cancel()
}

// Scheduler runs a callback on the owner executor after a delay
type Scheduler interface {
	Schedule(delay time.Duration, fn func()) Timer
}

// ClockScheduler schedules with a clock.Clock and hands expired callbacks to
// an Executor
type ClockScheduler struct {
	clock clock.Clock
	exec  Executor
}

// NewClockScheduler creates a scheduler. A nil clock means wall time.
func NewClockScheduler(c clock.Clock, exec Executor) *ClockScheduler {
	if c == nil {
		c = clock.New()
	}
	return &ClockScheduler{clock: c, exec: exec}
}

// Schedule implements Scheduler
func (s *ClockScheduler) Schedule(delay time.Duration, fn func()) Timer {
	t := &clockTimer{}
	t.timer = s.clock.AfterFunc(delay, func() {
		s.exec.Post(func() {
			// the timer may have been canceled after it fired but before this ran
			if t.canceled.Load() {
				return
			}
			fn()
		})
	})
	return t
}

type clockTimer struct {
	timer    *clock.Timer
	canceled atomic.Bool
}

func (t *clockTimer) Cancel() {
	t.canceled.Store(true)
	t.timer.Stop()
}

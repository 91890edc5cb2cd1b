// Package notify provides the named one-shot events that processes use to
// wake each other up.
package notify

import (
	"reflect"

	"github.com/sarchlab/propriosim/sim"
)

// WakeEvent resumes a handler that waited on a signal.
type WakeEvent struct {
	*sim.EventBase
	Signal *Signal
}

// A Signal is a broadcast, one-shot event. Notify wakes every handler that is
// waiting at the time of the call. A notification without waiters is lost.
type Signal struct {
	name      string
	scheduler sim.EventScheduler
	waiters   []sim.Handler

	numNotified uint64
	numLost     uint64
}

// NewSignal creates a Signal.
func NewSignal(name string, scheduler sim.EventScheduler) *Signal {
	return &Signal{
		name:      name,
		scheduler: scheduler,
	}
}

// Name returns the name of the signal.
func (s *Signal) Name() string {
	return s.name
}

// Wait registers a handler to be woken up by the next notification. A handler
// that is already waiting is registered only once. Handlers of uncomparable
// types, such as sim.HandlerFunc, are always registered.
func (s *Signal) Wait(h sim.Handler) {
	if t := reflect.TypeOf(h); t == nil || t.Comparable() {
		for _, w := range s.waiters {
			if w == h {
				return
			}
		}
	}

	s.waiters = append(s.waiters, h)
}

// Notify schedules a wake event, at the current time, for every waiting
// handler and clears the waiter list.
func (s *Signal) Notify() {
	s.numNotified++

	if len(s.waiters) == 0 {
		s.numLost++
		return
	}

	now := s.scheduler.CurrentTime()
	waiters := s.waiters
	s.waiters = nil

	for _, h := range waiters {
		s.scheduler.Schedule(WakeEvent{
			EventBase: sim.NewEventBase(now, h),
			Signal:    s,
		})
	}
}

// NumWaiters returns the number of handlers currently waiting.
func (s *Signal) NumWaiters() int {
	return len(s.waiters)
}

// NumNotified returns how many times the signal has been notified.
func (s *Signal) NumNotified() uint64 {
	return s.numNotified
}

// NumLost returns how many notifications found no waiter.
func (s *Signal) NumLost() uint64 {
	return s.numLost
}

// Package clock abstracts the time operations the lock engine depends on,
// so that delayed transitions and idle timeouts can be driven
// deterministically in tests.
package clock

import "time"

// Clock is the subset of the time package used by the engine. Production
// code injects Real(); tests inject a *Fake.
type Clock interface {
	// Now returns the current time.
	Now() time.Time

	// AfterFunc waits for d and then calls f. The returned Timer can cancel
	// the pending call.
	AfterFunc(d time.Duration, f func()) Timer
}

// Timer is a cancellable scheduled call.
type Timer interface {
	// Stop prevents the call from happening. It returns false if the call
	// already happened or the timer was already stopped.
	Stop() bool
}

type realClock struct{}

// Real returns a Clock backed by the time package.
func Real() Clock { return realClock{} }

func (realClock) Now() time.Time { return time.Now() }

func (realClock) AfterFunc(d time.Duration, f func()) Timer {
	return time.AfterFunc(d, f)
}

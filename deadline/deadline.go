// Package deadline implements bounded polling toward a single absolute deadline.
//
// The deadline is computed once, when polling starts. Every attempt receives
// the time left until that deadline, so the budget only ever shrinks.
package deadline

import "time"

// now is replaced in tests.
var now = time.Now

// Retry invokes action until it reports a usable result or the deadline
// (now + timeout) has passed.
//
// The first invocation receives timeout itself; later invocations receive the
// time remaining until the deadline. The action is always invoked at least
// once, even when timeout is zero or negative. The deadline is checked after
// each invocation, so the total time spent may exceed timeout by however long
// a single invocation blocks.
//
// Retry returns the result of the last invocation verbatim, including the
// unusable result of an exhausted deadline; callers decide what that means.
func Retry[T any](timeout time.Duration, action func(remaining time.Duration) (T, bool)) (T, bool) {
	until := now().Add(timeout)
	remaining := timeout

	for {
		result, ok := action(remaining)
		if ok {
			return result, true
		}

		remaining = Remaining(until)
		if remaining < 0 {
			return result, false
		}
	}
}

// Remaining returns the time left until deadline. It is negative once the
// deadline has passed.
func Remaining(deadline time.Time) time.Duration {
	return deadline.Sub(now())
}

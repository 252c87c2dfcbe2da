package service

import "time"

// Clock is injected wherever scheduling decisions depend on wall-clock time,
// so the policy is testable without real waits.
type Clock interface {
	Now() time.Time
}

type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now() }

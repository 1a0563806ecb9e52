// Package breaker implements a three-state circuit breaker
// (closed/open/half-open) gating calls to an unreliable upstream (spec.md
// §4.3). Only transient failures count toward the trip threshold; a
// permanent failure means the upstream is healthy and returning a
// user-visible error, so it must not trip the breaker.
package breaker

import (
	"sync"
	"time"
)

// State is one of the three circuit states.
type State int

const (
	Closed State = iota
	Open
	HalfOpen
)

func (s State) String() string {
	switch s {
	case Closed:
		return "closed"
	case Open:
		return "open"
	case HalfOpen:
		return "half_open"
	default:
		return "unknown"
	}
}

// Breaker is a single named circuit. Safe for concurrent use.
type Breaker struct {
	mu sync.Mutex

	failureThreshold int
	recoveryTimeout  time.Duration
	now              func() time.Time

	state        State
	failureCount int
	openedAt     time.Time
}

// New builds a Breaker starting Closed.
func New(failureThreshold int, recoveryTimeout time.Duration) *Breaker {
	return &Breaker{
		failureThreshold: failureThreshold,
		recoveryTimeout:  recoveryTimeout,
		now:              time.Now,
		state:            Closed,
	}
}

// WithClock overrides the time source for deterministic tests.
func (b *Breaker) WithClock(now func() time.Time) *Breaker {
	b.now = now
	return b
}

// IsOpen reports whether the breaker currently fails calls fast. If the
// breaker is Open and recoveryTimeout has elapsed since openedAt, it
// transitions to HalfOpen and returns false, admitting exactly one probe.
func (b *Breaker) IsOpen() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case Open:
		if b.now().Sub(b.openedAt) >= b.recoveryTimeout {
			b.state = HalfOpen
			return false
		}
		return true
	default:
		return false
	}
}

// RecordSuccess reports a successful call. Closed: resets the failure
// counter. HalfOpen: the probe succeeded, transition to Closed.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.failureCount = 0
	b.state = Closed
}

// RecordFailure reports a transient failure. Closed: increments the
// counter, tripping to Open at the threshold. HalfOpen: the probe failed,
// transition back to Open. Permanent failures must never be passed here
// (spec.md §4.3 Tie-breaks) — callers classify with resilience errors
// first.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case HalfOpen:
		b.state = Open
		b.failureCount = b.failureThreshold
		b.openedAt = b.now()
	default:
		b.failureCount++
		if b.failureCount >= b.failureThreshold {
			b.state = Open
			b.openedAt = b.now()
		}
	}
}

// State returns the current circuit state (for observability/tests).
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// FailureCount returns the current consecutive-failure counter.
func (b *Breaker) FailureCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.failureCount
}

// Package budget implements a sliding-window rate-limit tracker with
// consume-on-success semantics (spec.md §4.2): a deque of monotone
// timestamps per scope (global, and one per active session), pruned on
// every access, so an upstream outage (which never reaches Consume) cannot
// exhaust the quota.
package budget

import (
	"container/list"
	"sync"
	"time"
)

const globalScope = ""

// Tracker is a process-wide BudgetTracker shared across every RemoteGraphQLClient
// call site. Safe for concurrent use.
type Tracker struct {
	mu       sync.Mutex
	max      int
	window   time.Duration
	now      func() time.Time
	windows  map[string]*list.List // scope -> deque of timestamps
}

// New builds a Tracker allowing max consumes per window, across the global
// scope and independently per session scope.
func New(max int, window time.Duration) *Tracker {
	return &Tracker{
		max:     max,
		window:  window,
		now:     time.Now,
		windows: make(map[string]*list.List),
	}
}

// WithClock overrides the time source (for deterministic tests). Returns the
// same tracker for chaining.
func (t *Tracker) WithClock(now func() time.Time) *Tracker {
	t.now = now
	return t
}

func (t *Tracker) deque(scope string) *list.List {
	d, ok := t.windows[scope]
	if !ok {
		d = list.New()
		t.windows[scope] = d
	}
	return d
}

// prune drops entries older than now-window from d. Caller holds t.mu.
func (t *Tracker) prune(d *list.List, now time.Time) {
	cutoff := now.Add(-t.window)
	for e := d.Front(); e != nil; {
		next := e.Next()
		if e.Value.(time.Time).Before(cutoff) {
			d.Remove(e)
		} else {
			break
		}
		e = next
	}
}

func scopeKey(sessionID string) string {
	if sessionID == "" {
		return globalScope
	}
	return sessionID
}

// remaining returns max - len(d) after pruning. Caller holds t.mu.
func (t *Tracker) remaining(scope string, now time.Time) int {
	d := t.deque(scope)
	t.prune(d, now)
	r := t.max - d.Len()
	if r < 0 {
		return 0
	}
	return r
}

// IsAvailable reports whether a consume would currently succeed, without
// mutating state. sessionID may be empty to check only the global scope.
func (t *Tracker) IsAvailable(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	if t.remaining(globalScope, now) <= 0 {
		return false
	}
	if sessionID != "" && t.remaining(scopeKey(sessionID), now) <= 0 {
		return false
	}
	return true
}

// Consume atomically checks and records a single use against both the
// global window and, if sessionID is non-empty, the session window. It
// succeeds iff both have room. Must only be called after a successful
// upstream call (consume-on-success, spec.md §4.2 Rationale).
func (t *Tracker) Consume(sessionID string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()

	if t.remaining(globalScope, now) <= 0 {
		return false
	}
	if sessionID != "" && t.remaining(scopeKey(sessionID), now) <= 0 {
		return false
	}

	t.deque(globalScope).PushBack(now)
	if sessionID != "" {
		t.deque(scopeKey(sessionID)).PushBack(now)
	}
	return true
}

// Remaining returns the minimum of global and session remaining capacity.
func (t *Tracker) Remaining(sessionID string) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	now := t.now()
	r := t.remaining(globalScope, now)
	if sessionID != "" {
		if sr := t.remaining(scopeKey(sessionID), now); sr < r {
			r = sr
		}
	}
	return r
}

// Package hydrate implements the startup readiness barrier: dependent
// logic waits until every remote-backed category has delivered its
// first snapshot, or until a fallback timer gives up waiting.
//
// The gate trades completeness for liveness: it never errors and always
// reaches completion, even when a category is partitioned away or
// permission-denied. It fires exactly once per hydration cycle.
package hydrate

import (
	"sync"
	"time"
)

// Gate is a multi-target readiness barrier.
//
// Lifecycle: Register targets, Arm the fallback timer, MarkReady as
// snapshots arrive. Completion fires once, when the last target flips
// or the timer elapses, whichever comes first. Reset re-opens the gate
// for a new cycle (workspace switch).
type Gate struct {
	mu         sync.Mutex
	targets    map[string]bool
	fired      bool
	timer      *time.Timer
	timeout    time.Duration
	onComplete func()
	done       chan struct{}
}

// New creates a closed gate. onComplete (optional) runs once per cycle
// on the goroutine that completes the gate.
func New(timeout time.Duration, onComplete func()) *Gate {
	return &Gate{
		targets:    make(map[string]bool),
		timeout:    timeout,
		onComplete: onComplete,
		done:       make(chan struct{}),
	}
}

// Register adds a not-ready target. Registering after the gate fired is
// ignored; the current cycle is already complete.
func (g *Gate) Register(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fired {
		return
	}
	if _, ok := g.targets[key]; !ok {
		g.targets[key] = false
	}
}

// MarkReady flips a target. When it is the last one, the gate fires.
// Unknown keys and repeated calls are no-ops.
func (g *Gate) MarkReady(key string) {
	g.mu.Lock()
	if g.fired {
		g.mu.Unlock()
		return
	}
	if _, ok := g.targets[key]; ok {
		g.targets[key] = true
	}
	g.completeLocked(false)
}

// Arm starts (or restarts) the fallback timer. When it elapses, every
// remaining target is forced ready and the gate fires: forward progress
// is guaranteed even when a category never responds.
func (g *Gate) Arm() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.fired {
		return
	}
	if g.timer != nil {
		g.timer.Stop()
	}
	g.timer = time.AfterFunc(g.timeout, g.force)
}

// force is the fallback path: all remaining targets become ready.
func (g *Gate) force() {
	g.mu.Lock()
	if g.fired {
		g.mu.Unlock()
		return
	}
	for k := range g.targets {
		g.targets[k] = true
	}
	g.completeLocked(true)
}

// completeLocked fires the gate when every target is ready. Unlocks the
// mutex before running the callback so completion handlers may call
// back into the gate. allowEmpty lets the fallback path complete a
// cycle with no registered targets; a stray MarkReady must not.
func (g *Gate) completeLocked(allowEmpty bool) {
	if g.fired || (len(g.targets) == 0 && !allowEmpty) {
		g.mu.Unlock()
		return
	}
	for _, ready := range g.targets {
		if !ready {
			g.mu.Unlock()
			return
		}
	}
	g.fired = true
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	done := g.done
	fn := g.onComplete
	g.mu.Unlock()

	close(done)
	if fn != nil {
		fn()
	}
}

// Reset re-opens the gate: targets are cleared, the timer is stopped,
// and Done returns a fresh channel. Used when switching workspaces, so
// consumers re-await a consistent "all categories loaded" point.
func (g *Gate) Reset() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.timer != nil {
		g.timer.Stop()
		g.timer = nil
	}
	g.targets = make(map[string]bool)
	g.fired = false
	g.done = make(chan struct{})
}

// Done returns a channel closed when the current cycle completes.
func (g *Gate) Done() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.done
}

// Fired reports whether the current cycle has completed.
func (g *Gate) Fired() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.fired
}

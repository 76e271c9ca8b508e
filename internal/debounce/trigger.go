package debounce

import (
	"sync"
	"time"
)

// Executor runs a function on the orchestrator's owning context.
// It reports false when the work was not accepted (context stopped).
type Executor interface {
	Post(task func()) bool
}

// Trigger is a cancellable delayed fire. Arm starts (or restarts) a
// countdown; if no Cancel arrives before the delay elapses, the fire
// callback runs exactly once on the executor. A countdown replaced by a
// later Arm, or cancelled, leaves no residual callback capable of firing.
//
// Arm and Cancel are expected to be called from the owning context; the
// timer callback itself arrives on a timer goroutine and is handed back to
// the executor before it can touch the fire callback.
type Trigger struct {
	// exec is the owning context the fire callback is delivered on.
	exec Executor
	// fire is invoked when a countdown elapses uninterrupted.
	fire func()

	// mu guards the timer bookkeeping below.
	mu sync.Mutex
	// timer is the in-flight countdown, nil when idle.
	timer *time.Timer
	// generation invalidates deliveries from superseded countdowns.
	generation uint64
	// pending reports a countdown in flight.
	pending bool
}

// NewTrigger creates a trigger delivering fires onto the provided executor.
func NewTrigger(exec Executor, fire func()) *Trigger {
	return &Trigger{
		exec: exec,
		fire: fire,
	}
}

// Arm starts a countdown for the given delay, replacing any countdown
// already in flight. A non-positive delay fires synchronously and skips
// timer bookkeeping entirely.
func (t *Trigger) Arm(delay time.Duration) {
	if delay <= 0 {
		t.Cancel()
		t.fire()

		return
	}

	t.mu.Lock()

	t.generation++
	current := t.generation

	if t.timer != nil {
		t.timer.Stop()
	}

	t.pending = true
	t.timer = time.AfterFunc(delay, func() {
		t.deliver(current)
	})

	t.mu.Unlock()
}

// Cancel discards any countdown in flight. Idempotent and safe to call
// when nothing is armed. A fire already delivered to the executor before
// Cancel runs on the owning context is suppressed by the generation check,
// so cancel-versus-fire always produces exactly one outcome.
func (t *Trigger) Cancel() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.generation++
	t.pending = false

	if t.timer != nil {
		t.timer.Stop()
		t.timer = nil
	}
}

// Pending reports whether a countdown is in flight.
func (t *Trigger) Pending() bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.pending
}

// deliver hands an elapsed countdown to the executor, dropping it there
// if a later Arm or Cancel superseded it in the meantime.
func (t *Trigger) deliver(generation uint64) {
	t.exec.Post(func() {
		t.mu.Lock()

		if generation != t.generation || !t.pending {
			t.mu.Unlock()

			return
		}

		t.pending = false
		t.timer = nil

		t.mu.Unlock()

		t.fire()
	})
}

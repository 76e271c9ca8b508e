package runloop

import (
	"context"
	"errors"
	"sync"
)

// taskQueueSize bounds how many handed-off hardware events may queue up
// before a poster blocks.
const taskQueueSize = 128

// ErrStopped is returned when work is submitted to a stopped loop.
var ErrStopped = errors.New("run loop is stopped")

// Loop is a single-goroutine serialized executor. Every task posted to it
// runs on the same goroutine, one at a time, so state touched only from
// loop tasks needs no further locking.
type Loop struct {
	// tasks carries submitted work to the loop goroutine.
	tasks chan func()
	// stopped is closed when Stop is called; posting stops being accepted.
	stopped chan struct{}
	// done is closed after the loop goroutine drained remaining tasks.
	done chan struct{}
	// stopOnce guards the stop sequence.
	stopOnce sync.Once
}

// New creates and starts a loop.
func New() *Loop {
	l := &Loop{
		tasks:   make(chan func(), taskQueueSize),
		stopped: make(chan struct{}),
		done:    make(chan struct{}),
	}

	go l.run()

	return l
}

// run executes tasks until the loop is stopped, then drains what is queued.
func (l *Loop) run() {
	defer close(l.done)

	for {
		select {
		case <-l.stopped:
			// Drain tasks accepted before the stop.
			for {
				select {
				case task := <-l.tasks:
					task()
				default:
					return
				}
			}
		case task := <-l.tasks:
			task()
		}
	}
}

// Post submits a task for asynchronous execution on the loop.
// It reports false when the loop is stopped and the task was not accepted.
func (l *Loop) Post(task func()) bool {
	select {
	case <-l.stopped:
		return false
	default:
	}

	select {
	case l.tasks <- task:
		return true
	case <-l.stopped:
		return false
	}
}

// Do submits a task and waits until the loop has executed it.
// It must not be called from a task already running on the loop.
func (l *Loop) Do(ctx context.Context, task func()) error {
	executed := make(chan struct{})

	accepted := l.Post(func() {
		defer close(executed)
		task()
	})
	if !accepted {
		return ErrStopped
	}

	select {
	case <-executed:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Stop shuts the loop down and waits for queued tasks to finish.
// Safe to call more than once.
func (l *Loop) Stop() {
	l.stopOnce.Do(func() {
		close(l.stopped)
	})

	<-l.done
}

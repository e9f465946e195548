// Package runloop provides the single serial execution context that all
// consumer-visible state mutation happens on.
package runloop

import (
	"sync"
)

// Executor runs functions on a serial context
type Executor interface {
	// Post schedules fn without blocking the caller
	Post(fn func())
}

// Dispatcher is an Executor that can also run a function and wait for it
type Dispatcher interface {
	Executor
	// Do runs fn on the context and returns once it has finished
	Do(fn func())
}

// Loop executes posted functions one at a time, in posting order, on a
// dedicated goroutine. Post never blocks; the queue is unbounded.
type Loop struct {
	mu     sync.Mutex
	queue  []func()
	wake   chan struct{}
	done   chan struct{}
	closed bool
}

// New starts a loop
func New() *Loop {
	l := &Loop{
		wake: make(chan struct{}, 1),
		done: make(chan struct{}),
	}
	go l.run()
	return l
}

// Post schedules fn. Functions posted after Close are dropped.
func (l *Loop) Post(fn func()) {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.queue = append(l.queue, fn)
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default: // Already signalled
	}
}

// Do runs fn on the loop and waits for it to finish.
// It must not be called from the loop itself.
func (l *Loop) Do(fn func()) {
	finished := make(chan struct{})
	l.mu.Lock()
	closed := l.closed
	l.mu.Unlock()
	if closed {
		return
	}
	l.Post(func() {
		defer close(finished)
		fn()
	})
	select {
	case <-finished:
	case <-l.done:
	}
}

// Flush waits until everything posted before the call has run
func (l *Loop) Flush() {
	l.Do(func() {})
}

// Close drains the queue and stops the loop
func (l *Loop) Close() {
	l.mu.Lock()
	if l.closed {
		l.mu.Unlock()
		return
	}
	l.closed = true
	l.mu.Unlock()

	select {
	case l.wake <- struct{}{}:
	default:
	}
	<-l.done
}

func (l *Loop) run() {
	defer close(l.done)
	for range l.wake {
		for {
			l.mu.Lock()
			if len(l.queue) == 0 {
				closed := l.closed
				l.mu.Unlock()
				if closed {
					return
				}
				break
			}
			fn := l.queue[0]
			l.queue[0] = nil
			l.queue = l.queue[1:]
			l.mu.Unlock()

			fn()
		}
	}
}

// Immediate runs posted functions synchronously on the caller's goroutine.
// Suitable for single-shot command-line flows where the caller is the only context.
type Immediate struct{}

func (Immediate) Post(fn func()) { fn() }

func (Immediate) Do(fn func()) { fn() }

// Package mainqueue provides the single execution context that owns UI-facing
// state. Work submitted from any goroutine runs one task at a time, in
// submission order, on the queue's own goroutine.
package mainqueue

import (
	"errors"
	"go-places/utils/logger"
	"sync"
)

var ErrClosed = errors.New("main queue closed")

type Queue struct {
	mu     sync.Mutex
	cond   *sync.Cond
	tasks  []func()
	closed bool
	done   chan struct{}
}

func New() *Queue {
	q := &Queue{done: make(chan struct{})}
	q.cond = sync.NewCond(&q.mu)
	go q.run()
	return q
}

// Async enqueues f and returns immediately. It reports false when the queue
// has been closed and f was not accepted.
func (q *Queue) Async(f func()) bool {
	q.mu.Lock()
	defer q.mu.Unlock()
	if q.closed {
		return false
	}
	q.tasks = append(q.tasks, f)
	q.cond.Signal()
	return true
}

// Sync enqueues f and blocks until it has run. Calling Sync from a task that
// is itself running on the queue deadlocks.
func (q *Queue) Sync(f func()) error {
	finished := make(chan struct{})
	if !q.Async(func() {
		defer close(finished)
		f()
	}) {
		return ErrClosed
	}
	<-finished
	return nil
}

// Close stops accepting work, drains what is already queued and waits for
// the queue goroutine to exit.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()
	<-q.done
}

func (q *Queue) run() {
	defer close(q.done)
	for {
		q.mu.Lock()
		for len(q.tasks) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.tasks) == 0 {
			q.mu.Unlock()
			return
		}
		task := q.tasks[0]
		q.tasks[0] = nil
		q.tasks = q.tasks[1:]
		q.mu.Unlock()
		q.execute(task)
	}
}

func (q *Queue) execute(task func()) {
	defer func() {
		if rec := recover(); rec != nil {
			logger.L().Error("main queue task panicked", "panic", rec)
		}
	}()
	task()
}

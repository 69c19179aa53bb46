// Package dispatch provides the execution contexts completions are
// delivered on.
package dispatch

import (
	"errors"
	"log/slog"
	"sync"
)

// ErrQueueClosed is reported by Queue.Submit after Close.
var ErrQueueClosed = errors.New("dispatch queue closed")

// Executor runs fn on its execution context.
type Executor interface {
	Execute(fn func())
}

// ExecutorFunc adapts a function into an Executor.
type ExecutorFunc func(fn func())

// Execute calls f(fn).
func (f ExecutorFunc) Execute(fn func()) { f(fn) }

// Queue is a serial Executor: submitted funcs run one at a time, in
// submission order, on a single goroutine owned by the queue. Submit never
// blocks, so a func running on the queue may enqueue more work.
type Queue struct {
	mu      sync.Mutex
	cond    *sync.Cond
	pending []func()
	closed  bool
	done    chan struct{}
	logger  *slog.Logger
}

// NewQueue starts a Queue with room for size pending funcs before its
// backlog grows.
func NewQueue(size int, logger *slog.Logger) *Queue {
	if size < 0 {
		size = 0
	}
	if logger == nil {
		logger = slog.Default()
	}

	q := &Queue{
		pending: make([]func(), 0, size),
		done:    make(chan struct{}),
		logger:  logger,
	}
	q.cond = sync.NewCond(&q.mu)

	go q.loop()

	return q
}

// Execute implements Executor. Funcs submitted after Close are dropped
// and logged.
func (q *Queue) Execute(fn func()) {
	if err := q.Submit(fn); err != nil {
		q.logger.Error("dropping completion", "error", err)
	}
}

// Submit enqueues fn.
func (q *Queue) Submit(fn func()) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	if q.closed {
		return ErrQueueClosed
	}

	q.pending = append(q.pending, fn)
	q.cond.Signal()

	return nil
}

// Close stops accepting work and blocks until every pending func has run.
// It must not be called from a func running on the queue.
func (q *Queue) Close() {
	q.mu.Lock()
	q.closed = true
	q.cond.Broadcast()
	q.mu.Unlock()

	<-q.done
}

func (q *Queue) loop() {
	defer close(q.done)

	for {
		q.mu.Lock()
		for len(q.pending) == 0 && !q.closed {
			q.cond.Wait()
		}
		if len(q.pending) == 0 {
			q.mu.Unlock()
			return
		}

		fn := q.pending[0]
		q.pending[0] = nil
		q.pending = q.pending[1:]
		q.mu.Unlock()

		q.run(fn)
	}
}

func (q *Queue) run(fn func()) {
	defer func() {
		if rec := recover(); rec != nil {
			q.logger.Error("completion panicked", "panic", rec)
		}
	}()

	fn()
}

package task

import (
	"context"
	"sync"
	"sync/atomic"

	"github.com/google/uuid"
)

// Handle is an in-flight task. It can be started once and cancelled at
// any time; a cancelled task reports a transport error.
type Handle struct {
	id      string
	ctx     context.Context
	cancel  context.CancelFunc
	run     func(ctx context.Context)
	once    sync.Once
	started atomic.Bool
	done    chan struct{}
	group   *group
}

// group counts running tasks so an owner can wait for them to finish.
type group struct {
	mu   sync.Mutex
	cond *sync.Cond
	n    int
}

func newGroup() *group {
	g := &group{}
	g.cond = sync.NewCond(&g.mu)
	return g
}

func (g *group) add() {
	g.mu.Lock()
	g.n++
	g.mu.Unlock()
}

func (g *group) finish() {
	g.mu.Lock()
	g.n--
	if g.n == 0 {
		g.cond.Broadcast()
	}
	g.mu.Unlock()
}

// wait blocks until no task is running. Tasks started while waiting are
// waited for too.
func (g *group) wait() {
	g.mu.Lock()
	for g.n > 0 {
		g.cond.Wait()
	}
	g.mu.Unlock()
}

func newHandle(parent context.Context, run func(ctx context.Context)) *Handle {
	ctx, cancel := context.WithCancel(parent)

	return &Handle{
		id:     uuid.NewString(),
		ctx:    ctx,
		cancel: cancel,
		run:    run,
		done:   make(chan struct{}),
	}
}

// Completed returns a handle that has already finished without doing
// any work. The facade hands it out when a request fails to build.
func Completed() *Handle {
	h := newHandle(context.Background(), nil)
	h.once.Do(func() {})
	h.started.Store(true)
	h.cancel()
	close(h.done)

	return h
}

// ID returns the task's unique identifier.
func (h *Handle) ID() string { return h.id }

// Start runs the task on its own goroutine. Calls after the first are
// no-ops.
func (h *Handle) Start() {
	h.once.Do(func() {
		h.started.Store(true)
		if h.group != nil {
			h.group.add()
		}

		go func() {
			defer close(h.done)
			defer h.cancel()
			if h.group != nil {
				defer h.group.finish()
			}

			h.run(h.ctx)
		}()
	})
}

// Started reports whether Start has been called.
func (h *Handle) Started() bool { return h.started.Load() }

// Cancel aborts the task's request. It is safe to call more than once,
// before or after Start.
func (h *Handle) Cancel() { h.cancel() }

// Done is closed once the task has finished and handed its result to the
// engine-level completion func. Callers going through the client facade
// see their own completion run afterwards, on the client's executor.
func (h *Handle) Done() <-chan struct{} { return h.done }

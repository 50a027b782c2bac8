package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"

	"golang.org/x/sync/semaphore"

	"neobridge/internal/logging"
)

// DefaultSize is used when NewPool receives a non-positive size.
const DefaultSize = 64

var (
	// ErrClosed is returned by tasks submitted after Close.
	ErrClosed = errors.New("worker pool closed")
	// ErrPanicked wraps the value recovered from a panicking task.
	ErrPanicked = errors.New("worker task panicked")
)

// Pool executes blocking functions with bounded concurrency.
type Pool struct {
	sem    *semaphore.Weighted
	size   int
	logger *slog.Logger

	mu     sync.Mutex
	closed bool
	wg     sync.WaitGroup
}

// NewPool creates a pool that runs at most size tasks at once.
func NewPool(size int, logger *slog.Logger) *Pool {
	if size <= 0 {
		size = DefaultSize
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Pool{
		sem:    semaphore.NewWeighted(int64(size)),
		size:   size,
		logger: logger.With(logging.String(logging.FieldComponent, "worker")),
	}
}

// Size reports the concurrency limit.
func (p *Pool) Size() int {
	return p.size
}

// Submit schedules fn and returns its completion handle. The returned Task is
// already complete when the pool is closed or ctx ends before a slot frees up.
func (p *Pool) Submit(ctx context.Context, fn func()) *Task {
	task := newTask()
	if fn == nil {
		task.finish(nil)
		return task
	}

	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		task.finish(ErrClosed)
		return task
	}
	p.wg.Add(1)
	p.mu.Unlock()

	if err := p.sem.Acquire(ctx, 1); err != nil {
		p.wg.Done()
		task.finish(fmt.Errorf("acquire worker slot: %w", err))
		return task
	}

	go func() {
		defer p.wg.Done()
		defer p.sem.Release(1)
		task.finish(p.run(fn))
	}()
	return task
}

func (p *Pool) run(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrPanicked, r)
			p.logger.Debug("worker task panicked",
				logging.Any("panic", r),
				logging.String("stack", string(debug.Stack())),
			)
		}
	}()
	fn()
	return nil
}

// Close rejects new work and waits for in-flight tasks to finish.
func (p *Pool) Close() {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()
	p.wg.Wait()
}

// Task is the completion handle for submitted work.
type Task struct {
	done chan struct{}
	err  error
}

func newTask() *Task {
	return &Task{done: make(chan struct{})}
}

func (t *Task) finish(err error) {
	t.err = err
	close(t.done)
}

// Done is closed once the task has finished or was rejected.
func (t *Task) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task completes and returns its error.
func (t *Task) Wait() error {
	<-t.done
	return t.err
}

package pipeline

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is the handle on one background execution. Callers (and tests) await
// completion through it instead of sleeping.
type Task struct {
	name string
	done chan struct{}
	err  error
}

// Done is closed when the task has finished.
func (t *Task) Done() <-chan struct{} { return t.done }

// Err returns the task's outcome. Only valid after Done is closed.
func (t *Task) Err() error { return t.err }

// Wait blocks until the task finishes or ctx expires.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return fmt.Errorf("waiting for task %s: %w", t.name, ctx.Err())
	}
}

// Runner executes detached work with explicit handles and coordinated
// shutdown. All spawned tasks share a base context that Shutdown cancels.
type Runner struct {
	logger *zap.Logger
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// NewRunner creates a runner.
func NewRunner(logger *zap.Logger) *Runner {
	ctx, cancel := context.WithCancel(context.Background())
	return &Runner{logger: logger, ctx: ctx, cancel: cancel}
}

// Go starts fn on the runner's context and returns its handle. The returned
// task never panics the process: fn's error is captured on the handle and
// logged, matching the rule that nothing propagates past the orchestrator.
func (r *Runner) Go(name string, fn func(ctx context.Context) error) *Task {
	task := &Task{name: name, done: make(chan struct{})}
	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(task.done)
		if err := fn(r.ctx); err != nil {
			task.err = err
			r.logger.Error("background task failed", zap.String("task", name), zap.Error(err))
		}
	}()
	return task
}

// After runs fn once the delay elapses, unless the runner shuts down first.
// Used for retention cleanup of export artifacts.
func (r *Runner) After(name string, delay time.Duration, fn func(ctx context.Context) error) *Task {
	return r.Go(name, func(ctx context.Context) error {
		timer := time.NewTimer(delay)
		defer timer.Stop()
		select {
		case <-timer.C:
			return fn(ctx)
		case <-ctx.Done():
			return nil
		}
	})
}

// Shutdown cancels the shared context and waits for in-flight tasks, bounded
// by ctx.
func (r *Runner) Shutdown(ctx context.Context) error {
	r.cancel()
	finished := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("runner shutdown: %w", ctx.Err())
	}
}

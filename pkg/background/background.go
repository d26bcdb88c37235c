// Package background runs fire-and-forget tasks that own their failures.
// Callers that must not block on completion (notification fan-out after a
// like or comment) launch work here; the task logs its own error instead of
// surfacing it on the caller's response path. Tests hold the returned handle
// and await it explicitly.
package background

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Runner launches background tasks and tracks them for shutdown.
type Runner struct {
	log zerolog.Logger
	wg  sync.WaitGroup
}

// NewRunner creates a Runner that reports task failures through log.
func NewRunner(log zerolog.Logger) *Runner {
	return &Runner{log: log}
}

// Task is a handle to one background task. Wait blocks until it finishes and
// returns its error, which the task has already logged.
type Task struct {
	ID   string
	Name string

	done chan struct{}
	err  error
}

// Err returns the task error after done is closed.
func (t *Task) Err() error {
	<-t.done
	return t.err
}

// Wait blocks until the task finishes or ctx is cancelled.
func (t *Task) Wait(ctx context.Context) error {
	select {
	case <-t.done:
		return t.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Go runs fn on its own goroutine. Panics are recovered and reported as
// errors; any error is logged under the task's correlation id.
func (r *Runner) Go(name string, fn func() error) *Task {
	task := &Task{
		ID:   uuid.NewString(),
		Name: name,
		done: make(chan struct{}),
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer close(task.done)
		defer func() {
			if rec := recover(); rec != nil {
				task.err = fmt.Errorf("panic: %v", rec)
				r.log.Error().
					Str("task_id", task.ID).
					Str("task", task.Name).
					Interface("panic", rec).
					Msg("background task panicked")
			}
		}()

		if err := fn(); err != nil {
			task.err = err
			r.log.Error().
				Str("task_id", task.ID).
				Str("task", task.Name).
				Err(err).
				Msg("background task failed")
		}
	}()

	return task
}

// Shutdown waits for in-flight tasks to finish or ctx to expire.
func (r *Runner) Shutdown(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

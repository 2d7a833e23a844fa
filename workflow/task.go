package workflow

import (
	"context"
	"runtime/debug"
	"sync"
)

// TaskOptions configures a task-wrapped method invocation.
type TaskOptions struct {
	Name       string
	Concurrent bool

	// MaxConcurrent bounds how many children run at once when Concurrent is
	// true. Zero means unbounded (one goroutine per child). Seed this from
	// Config.MaxConcurrentChildren to apply an engine-wide cap.
	MaxConcurrent int
}

// DefaultTaskOptions returns the task wrapper's documented defaults:
// concurrent disabled.
func DefaultTaskOptions(name string) TaskOptions {
	return TaskOptions{Name: name}
}

// Task runs fn as a task-wrapped method on w. fn returns the child
// workflows it spawned. Each returned child is attached to w if it is not
// already (AttachChild is idempotent when a child is already w's child, so
// a child constructed with w as parent is never attached twice). If
// opts.Concurrent is false, children run in sequence and the first error
// stops the loop early, having run only the children up to and including
// the failure. If true, every child runs on its own goroutine and Task
// waits for all of them to settle (full-settlement join, never fail-fast);
// once every child has completed, the first child's error in original
// order (if any) is returned.
func Task(ctx context.Context, w *Workflow, opts TaskOptions, fn func(ctx context.Context) ([]*Workflow, error)) ([]*Workflow, error) {
	name := opts.Name
	if name == "" {
		name = "task"
	}

	w.EmitEvent(WorkflowEvent{Type: EventTaskStart, Node: w.node, Task: name})

	children, err := fn(ctx)
	if err != nil {
		w.EmitEvent(WorkflowEvent{Type: EventTaskEnd, Node: w.node, Task: name})
		return nil, err
	}

	for _, child := range children {
		if attachErr := w.AttachChild(child); attachErr != nil {
			w.EmitEvent(WorkflowEvent{Type: EventTaskEnd, Node: w.node, Task: name})
			return nil, attachErr
		}
	}

	var runErr error
	if opts.Concurrent {
		runErr = runConcurrent(ctx, children, opts.MaxConcurrent)
	} else {
		runErr = runSequential(ctx, children)
	}

	w.EmitEvent(WorkflowEvent{Type: EventTaskEnd, Node: w.node, Task: name})
	if runErr != nil {
		return children, runErr
	}
	return children, nil
}

func runSequential(ctx context.Context, children []*Workflow) error {
	for _, child := range children {
		inst, err := instanceOf(child)
		if err != nil {
			return err
		}
		if _, err := Execute(ctx, inst); err != nil {
			return err
		}
	}
	return nil
}

// runConcurrent runs every child on its own goroutine and waits for all of
// them to complete regardless of peer failure (full-settlement join), then
// returns the first error in original child order, matching "first error
// wins" semantics without sacrificing full settlement. Real goroutines are
// the Go rendition of the original engine's single-threaded concurrent
// await — see SPEC_FULL.md §5.1 for why this is safe without locking each
// child's own node. maxConcurrent, when non-zero, bounds how many children
// run at once via a buffered-channel semaphore; zero leaves fan-out
// unbounded.
func runConcurrent(ctx context.Context, children []*Workflow, maxConcurrent int) error {
	errs := make([]error, len(children))
	var sem chan struct{}
	if maxConcurrent > 0 {
		sem = make(chan struct{}, maxConcurrent)
	}

	var wg sync.WaitGroup
	wg.Add(len(children))
	for i, child := range children {
		i, child := i, child
		go func() {
			defer wg.Done()
			if sem != nil {
				sem <- struct{}{}
				defer func() { <-sem }()
			}
			defer func() {
				if r := recover(); r != nil {
					errs[i] = recoveredTaskPanic(child, r)
				}
			}()
			inst, err := instanceOf(child)
			if err != nil {
				errs[i] = err
				return
			}
			_, err = Execute(ctx, inst)
			errs[i] = err
		}()
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func recoveredTaskPanic(child *Workflow, r any) error {
	return newWorkflowError(child.node, r, string(debug.Stack()), snapshotFields(child.self))
}

// instanceOf recovers the Instance a child workflow resolves to. Children
// constructed through the normal embedding pattern (New followed by
// WithSelf) already implement Instance via Handle's method promotion; a
// bare *Workflow with no domain struct behind it cannot be run as a task
// child, which is this package's rendition of "task method did not return a
// Workflow."
func instanceOf(w *Workflow) (Instance, error) {
	if inst, ok := w.self.(Instance); ok {
		return inst, nil
	}
	return nil, newValidationError(w.id, ErrTaskReturnType)
}

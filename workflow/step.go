package workflow

import (
	"context"
	"runtime/debug"
	"time"
)

// StepOptions configures a step-wrapped method invocation. Name is the step
// name reported in events and logs; Step uses "step" when it is empty. The
// zero value leaves every flag disabled, TrackTiming included;
// DefaultStepOptions returns the documented defaults.
type StepOptions struct {
	Name          string
	SnapshotState bool
	TrackTiming   bool
	LogStart      bool
	LogFinish     bool
}

// DefaultStepOptions returns the step wrapper's documented defaults:
// trackTiming enabled, everything else disabled.
func DefaultStepOptions(name string) StepOptions {
	return StepOptions{Name: name, TrackTiming: true}
}

// Step runs fn as a step-wrapped method on w: stepStart is emitted (with an
// optional "STEP START" log), fn runs to completion, and on success
// stepEnd is emitted (with optional state snapshot, timing, and a
// "STEP END" log) before the result is returned. On failure, fn's error is
// wrapped in a WorkflowError carrying a state snapshot and an independent
// copy of w's logs at throw time, an error event is emitted, and the
// wrapped error is returned.
//
// Step is generic over the result type so callers get their concrete return
// type back without a type assertion, the same shape the teacher's
// ProcessChain/ProcessParallel generics use for their result types.
func Step[T any](ctx context.Context, w *Workflow, opts StepOptions, fn func(ctx context.Context) (T, error)) (T, error) {
	var zero T
	name := opts.Name
	if name == "" {
		name = "step"
	}

	w.EmitEvent(WorkflowEvent{Type: EventStepStart, Node: w.node, Step: name})
	if opts.LogStart {
		w.logger.Info("STEP START: "+name, nil)
	}

	var start time.Time
	if opts.TrackTiming {
		start = time.Now()
	}

	result, err := runStep(ctx, w, fn)
	if err != nil {
		state := snapshotFields(w.self)
		wfErr := newWorkflowError(w.node, err, string(debug.Stack()), state)
		w.EmitEvent(WorkflowEvent{Type: EventError, Node: w.node, Error: wfErr})
		return zero, wfErr
	}

	if opts.SnapshotState {
		w.SnapshotState()
	}

	var duration int64
	if opts.TrackTiming {
		duration = time.Since(start).Milliseconds()
	}
	w.EmitEvent(WorkflowEvent{Type: EventStepEnd, Node: w.node, Step: name, Duration: duration})
	if opts.LogFinish {
		w.logger.Info("STEP END: "+name, nil)
	}

	return result, nil
}

// runStep recovers a panic from fn and turns it into an error, so a step
// body that panics is reported through the same WorkflowError path as one
// that returns an error normally.
func runStep[T any](ctx context.Context, w *Workflow, fn func(ctx context.Context) (T, error)) (result T, err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = &panicValue{value: r}
		}
	}()
	return fn(ctx)
}

// panicValue adapts a non-error panic value to the error interface so it can
// flow through newWorkflowError's cause-formatting logic (which already
// special-cases errors and strings).
type panicValue struct {
	value any
}

func (p *panicValue) Error() string {
	if s, ok := p.value.(string); ok {
		return s
	}
	return "panic"
}

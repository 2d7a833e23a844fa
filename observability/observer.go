// Package observability provides the cross-cutting pieces of the
// observer fabric that are independent of any one domain type: an
// OTel-aligned severity Level (mirrored from the teacher kernel so the
// engine's internal slog diagnostics line up with whatever the host's log
// pipeline expects) and the panic-isolation guard every observer
// notification in package workflow is wrapped in.
//
// The Observer contract itself (OnLog/OnEvent/OnStateUpdated/OnTreeChanged)
// is declared in package workflow, since its methods are typed directly in
// terms of workflow's own LogEntry/WorkflowEvent/WorkflowNode records rather
// than a generic envelope — declaring it here would force either an import
// cycle or a weakly-typed `any`-based contract, neither of which the spec's
// data model calls for.
package observability

import (
	"fmt"
	"log/slog"
)

// Level represents event severity aligned with OTel SeverityNumber ranges,
// used by the engine's internal slog sink (see workflow.Logger) to map its
// own diagnostic messages onto a conventional severity scale.
type Level int

const (
	LevelVerbose Level = 5  // OTel DEBUG (5-8)
	LevelInfo    Level = 9  // OTel INFO (9-12)
	LevelWarning Level = 13 // OTel WARN (13-16)
	LevelError   Level = 17 // OTel ERROR (17-20)
)

// String returns the OTel severity text for the level.
func (l Level) String() string {
	switch {
	case l <= 4:
		return "TRACE"
	case l <= 8:
		return "DEBUG"
	case l <= 12:
		return "INFO"
	case l <= 16:
		return "WARN"
	case l <= 20:
		return "ERROR"
	default:
		return "FATAL"
	}
}

// SlogLevel maps l to the corresponding slog.Level, so the engine sink (see
// workflow.Logger/workflow.Workflow's engineSink) emits at a severity an
// slog handler understands instead of hand-rolling its own mapping.
func (l Level) SlogLevel() slog.Level {
	switch {
	case l <= 8:
		return slog.LevelDebug
	case l <= 12:
		return slog.LevelInfo
	case l <= 16:
		return slog.LevelWarn
	default:
		return slog.LevelError
	}
}

// Isolate runs fn and recovers any panic, returning it as a non-nil error.
// Every observer notification in package workflow is wrapped in Isolate so
// a panicking observer can never break delivery to subsequent observers or
// escape to the caller of emitEvent/log.
func Isolate(fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			if e, ok := r.(error); ok {
				err = e
				return
			}
			err = &PanicError{Value: r}
		}
	}()
	fn()
	return nil
}

// PanicError wraps a recovered panic value that was not already an error.
type PanicError struct {
	Value any
}

func (e *PanicError) Error() string {
	return fmt.Sprintf("observer panic: %v", e.Value)
}

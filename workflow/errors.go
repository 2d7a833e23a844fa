package workflow

import (
	"errors"
	"fmt"
)

// Sentinel errors for programmer-error conditions detected without needing
// extra context beyond the error itself.
var (
	ErrEmptyName         = errors.New("workflow: name must be non-empty")
	ErrNameTooLong       = errors.New("workflow: name must be 100 characters or fewer")
	ErrSelfParent        = errors.New("workflow: a workflow cannot be its own parent")
	ErrCycle             = errors.New("workflow: attach would create a cycle")
	ErrDifferentParent   = errors.New("workflow: child already attached to a different parent")
	ErrNotAChild         = errors.New("workflow: workflow is not a child of this workflow")
	ErrObserverOnNonRoot = errors.New("workflow: observers can only be registered on a root workflow")
	ErrCorruptTree       = errors.New("workflow: cycle detected while walking parent links")
	ErrTaskReturnType    = errors.New("workflow: task method did not return a Workflow")
)

// ValidationError wraps a sentinel validation failure with the offending
// workflow id and a human-readable message. ValidationErrors are always
// fatal to the call site — they indicate programmer error, not a runtime
// failure inside user code, and are never isolated or swallowed.
type ValidationError struct {
	WorkflowID string
	Message    string
	Err        error
}

func (e *ValidationError) Error() string {
	if e.WorkflowID == "" {
		return fmt.Sprintf("validation: %s", e.Message)
	}
	return fmt.Sprintf("validation: %s (workflow %s)", e.Message, e.WorkflowID)
}

func (e *ValidationError) Unwrap() error {
	return e.Err
}

func newValidationError(workflowID string, err error) *ValidationError {
	return &ValidationError{WorkflowID: workflowID, Message: err.Error(), Err: err}
}

// WorkflowError carries full forensic context for a failure raised inside a
// step-wrapped method: the raw thrown value, a state snapshot taken at
// throw time, and an independent copy of the owning node's logs at throw
// time. Copies are independent of their sources — subsequent mutation of the
// node must not mutate a WorkflowError already returned to a caller.
type WorkflowError struct {
	Message    string
	Original   any
	WorkflowID string
	Stack      string
	State      ObservedState
	Logs       []LogEntry
}

func (e *WorkflowError) Error() string {
	return fmt.Sprintf("workflow %s: %s", e.WorkflowID, e.Message)
}

// Unwrap exposes the original error when it implements the error interface,
// enabling errors.Is/errors.As over the wrapped cause.
func (e *WorkflowError) Unwrap() error {
	if err, ok := e.Original.(error); ok {
		return err
	}
	return nil
}

// newWorkflowError builds a WorkflowError carrying state (a record taken at
// throw time, independent of whatever node.StateSnapshot last held) and an
// independent copy of node's logs at throw time.
func newWorkflowError(node *WorkflowNode, cause any, stack string, state ObservedState) *WorkflowError {
	message := "error"
	if err, ok := cause.(error); ok {
		message = err.Error()
	} else if s, ok := cause.(string); ok {
		message = s
	}

	return &WorkflowError{
		Message:    message,
		Original:   cause,
		WorkflowID: node.ID,
		Stack:      stack,
		State:      state.clone(),
		Logs:       cloneLogs(node.Logs),
	}
}

func cloneLogs(logs []LogEntry) []LogEntry {
	out := make([]LogEntry, len(logs))
	copy(out, logs)
	return out
}

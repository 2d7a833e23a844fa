package workflow

import (
	"context"
	"log/slog"
	"time"

	"github.com/tailored-agentic-units/flowtree/observability"
)

// Logger is bound to a single WorkflowNode and, indirectly, to whatever
// observers are reachable from the node's current root. Debug/Info/Warn/Error
// each build a LogEntry and append it to the node's log, notifying every
// root observer's OnLog inside an isolation guard.
type Logger struct {
	node        *WorkflowNode
	workflow    *Workflow
	parentLogID string
}

func newLogger(node *WorkflowNode, w *Workflow) *Logger {
	return &Logger{node: node, workflow: w}
}

// child returns a new logger bound to the same node and observers, with
// parentLogID drawn from the given id (empty resolves to "no parent"). This
// is the Go rendition of child(meta): meta.parentLogId is the only field
// consumed today, so it is taken directly as the argument.
func (l *Logger) child(parentLogID string) *Logger {
	return &Logger{node: l.node, workflow: l.workflow, parentLogID: parentLogID}
}

func (l *Logger) Debug(message string, data any) { l.log(LogLevelDebug, message, data) }
func (l *Logger) Info(message string, data any)  { l.log(LogLevelInfo, message, data) }
func (l *Logger) Warn(message string, data any)  { l.log(LogLevelWarn, message, data) }
func (l *Logger) Error(message string, data any) { l.log(LogLevelError, message, data) }

func (l *Logger) log(level LogLevel, message string, data any) {
	entry := LogEntry{
		ID:          NewLogID(),
		WorkflowID:  l.node.ID,
		Timestamp:   time.Now().UnixMilli(),
		Level:       level,
		Message:     message,
		Data:        data,
		ParentLogID: l.parentLogID,
	}
	l.node.Logs = append(l.node.Logs, entry)
	l.notify(entry)
}

// notify delivers entry to every observer reachable from the workflow's
// current root, each inside an isolation guard. If an observer's OnLog
// itself panics, the failure is recorded directly on the node's logs
// without re-notifying observers, breaking the recursion that would
// otherwise result from logging the logging failure.
func (l *Logger) notify(entry LogEntry) {
	if l.workflow == nil {
		return
	}
	for _, obs := range l.workflow.rootObservers() {
		obs := obs
		if err := observability.Isolate(func() { obs.OnLog(entry) }); err != nil {
			failure := LogEntry{
				ID:         NewLogID(),
				WorkflowID: l.node.ID,
				Timestamp:  time.Now().UnixMilli(),
				Level:      LogLevelError,
				Message:    "Observer onLog error",
				Data:       map[string]any{"error": err.Error()},
			}
			l.node.Logs = append(l.node.Logs, failure)
			engineSinkWarn(l.workflow.rootEngineSink(), "isolation guard caught a panic",
				"workflowId", l.node.ID,
				"entryLevel", toObservabilityLevel(entry.Level).String(),
				"error", err.Error(),
			)
		}
	}
}

// toObservabilityLevel maps a domain-facing LogLevel onto the OTel-aligned
// severity scale observability.Level uses, so the engine sink can report
// which severity of domain log the isolation guard was handling when it
// caught a panic.
func toObservabilityLevel(level LogLevel) observability.Level {
	switch level {
	case LogLevelDebug:
		return observability.LevelVerbose
	case LogLevelWarn:
		return observability.LevelWarning
	case LogLevelError:
		return observability.LevelError
	default:
		return observability.LevelInfo
	}
}

// engineSinkWarn reports an isolation-guard failure to sink at
// observability.LevelWarning (a recovered panic always warrants a warning
// regardless of what it was handling). A nil sink is a silent no-op.
func engineSinkWarn(sink *slog.Logger, message string, args ...any) {
	if sink == nil {
		return
	}
	sink.Log(context.Background(), observability.LevelWarning.SlogLevel(), message, args...)
}

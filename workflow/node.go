package workflow

// Status is the lifecycle state of a Workflow and its WorkflowNode twin.
type Status string

const (
	StatusIdle      Status = "idle"
	StatusRunning   Status = "running"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
	StatusCancelled Status = "cancelled"
)

// LogLevel is the severity of a LogEntry.
type LogLevel string

const (
	LogLevelDebug LogLevel = "debug"
	LogLevelInfo  LogLevel = "info"
	LogLevelWarn  LogLevel = "warn"
	LogLevelError LogLevel = "error"
)

// LogEntry is one entry in a WorkflowNode's log stream.
type LogEntry struct {
	ID          string
	WorkflowID  string
	Timestamp   int64
	Level       LogLevel
	Message     string
	Data        any
	ParentLogID string
}

// EventType names the tagged variants a WorkflowEvent may carry.
type EventType string

const (
	EventChildAttached EventType = "childAttached"
	EventChildDetached EventType = "childDetached"
	EventStepStart     EventType = "stepStart"
	EventStepEnd       EventType = "stepEnd"
	EventTaskStart     EventType = "taskStart"
	EventTaskEnd       EventType = "taskEnd"
	EventStateSnapshot EventType = "stateSnapshot"
	EventError         EventType = "error"
	EventTreeUpdated   EventType = "treeUpdated"
)

// WorkflowEvent is a single tagged lifecycle event recorded on a node and
// delivered to every root observer's OnEvent. Fields not relevant to a given
// Type are left zero. User code may emit additional event types through
// (*Workflow).EmitEvent; those propagate through the same fabric untouched.
type WorkflowEvent struct {
	Type     EventType
	Node     *WorkflowNode
	ParentID string
	Child    *WorkflowNode
	Step     string
	Task     string
	Duration int64
	Error    *WorkflowError
	Root     *WorkflowNode
	Data     any
}

// ObservedState is the flat, field-name-keyed record produced by snapshotting
// a workflow's decorated fields. Hidden fields are omitted; redacted fields
// are replaced with the literal string "***".
type ObservedState map[string]any

// clone returns an independent copy of the snapshot, so a WorkflowError
// holding it is immune to later mutation of the originating node's
// stateSnapshot field.
func (s ObservedState) clone() ObservedState {
	if s == nil {
		return nil
	}
	out := make(ObservedState, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// WorkflowNode is the plain-data, observable twin of a Workflow: it mirrors
// the live tree 1:1 and is what the debugger index, introspection queries,
// and observers see. A Workflow owns exactly one WorkflowNode exclusively;
// parent/children links on the node mirror those on the workflow.
type WorkflowNode struct {
	ID            string
	Name          string
	Status        Status
	Parent        *WorkflowNode
	Children      []*WorkflowNode
	Logs          []LogEntry
	Events        []WorkflowEvent
	StateSnapshot ObservedState
}

func newNode(id, name string) *WorkflowNode {
	return &WorkflowNode{
		ID:       id,
		Name:     name,
		Status:   StatusIdle,
		Children: make([]*WorkflowNode, 0),
		Logs:     make([]LogEntry, 0),
		Events:   make([]WorkflowEvent, 0),
	}
}

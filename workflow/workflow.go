package workflow

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/tailored-agentic-units/flowtree/observability"
)

// Instance is satisfied automatically by any domain struct that embeds
// *Workflow and implements Run: the embedded Workflow promotes Handle for
// free. Execute is the harness entry point that drives the idle -> running
// -> completed/failed transition around a call to Run.
type Instance interface {
	Run(ctx context.Context) (any, error)
	Handle() *Workflow
}

// Workflow is the live tree node: identity, status, parent/child links, a
// node twin, a logger bound to that node, and (on a root) the registered
// observers. User domain structs embed *Workflow and add their own fields,
// a subset of which are tagged "observed" for inclusion in state snapshots.
type Workflow struct {
	id     string
	name   string
	status Status

	parent   *Workflow
	children []*Workflow

	node   *WorkflowNode
	logger *Logger
	self   any

	observersMu sync.RWMutex
	observers   []Observer

	engineSink *slog.Logger
}

// New constructs a workflow with the given name and optional parent. The
// name must be non-empty, non-whitespace, and at most 100 characters, or
// construction fails synchronously. If parent is non-nil, the new workflow
// is attached to it (construction is the only place a parent link is
// established implicitly).
func New(name string, parent *Workflow) (*Workflow, error) {
	if err := validateName(name); err != nil {
		return nil, newValidationError("", err)
	}

	id := NewID()
	w := &Workflow{
		id:     id,
		name:   name,
		status: StatusIdle,
		node:   newNode(id, name),
	}
	w.logger = newLogger(w.node, w)
	w.self = w

	if parent != nil {
		if err := parent.AttachChild(w); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func validateName(name string) error {
	if strings.TrimSpace(name) == "" {
		return ErrEmptyName
	}
	if utf8.RuneCountInString(name) > 100 {
		return ErrNameTooLong
	}
	return nil
}

// WithSelf records the concrete domain struct embedding w, so the
// observed-state registry can reflect over its tagged fields rather than
// over the embedded *Workflow alone. Call it once, immediately after
// embedding, from the domain struct's constructor.
func (w *Workflow) WithSelf(self any) {
	w.self = self
}

// Handle returns w itself, letting a domain struct that embeds *Workflow
// satisfy Instance by promotion.
func (w *Workflow) Handle() *Workflow {
	return w
}

// ID returns the workflow's identity.
func (w *Workflow) ID() string { return w.id }

// Name returns the workflow's name.
func (w *Workflow) Name() string { return w.name }

// Status returns the workflow's current lifecycle status.
func (w *Workflow) Status() Status { return w.status }

// Parent returns the workflow's current parent, or nil if detached/root.
func (w *Workflow) Parent() *Workflow { return w.parent }

// Children returns the workflow's children in attachment order. The
// returned slice is a copy; callers must not rely on it reflecting later
// mutation.
func (w *Workflow) Children() []*Workflow {
	out := make([]*Workflow, len(w.children))
	copy(out, w.children)
	return out
}

// Node returns the observable WorkflowNode twin.
func (w *Workflow) Node() *WorkflowNode { return w.node }

// Logger returns the logger bound to this workflow's node.
func (w *Workflow) Logger() *Logger { return w.logger }

// root walks parent links to the current root, guarding against a corrupted
// cyclic tree the same way IsDescendantOf does.
func (w *Workflow) root() (*Workflow, error) {
	cur := w
	visited := map[*Workflow]bool{}
	for cur.parent != nil {
		if visited[cur] {
			return nil, ErrCorruptTree
		}
		visited[cur] = true
		cur = cur.parent
	}
	return cur, nil
}

// rootObservers returns the observer list registered on the workflow's
// current root, or nil if the tree is corrupt or no observers are
// registered. Errors are swallowed here (not fatal) since log/event
// delivery must never block on a walk failure; a corrupt tree is already
// reported elsewhere (IsDescendantOf, AttachChild).
func (w *Workflow) rootObservers() []Observer {
	root, err := w.root()
	if err != nil {
		return nil
	}
	root.observersMu.RLock()
	defer root.observersMu.RUnlock()
	out := make([]Observer, len(root.observers))
	copy(out, root.observers)
	return out
}

// SetEngineSink points w's engine-level diagnostics (panics the isolation
// guard recovered, observer failures) at sink. Only meaningful on a root
// workflow; non-root workflows resolve it through rootEngineSink instead of
// keeping their own copy. A nil sink (the default) silently disables these
// diagnostics, leaving the WorkflowNode's own LogEntry stream as the only
// record of an observer failure.
func (w *Workflow) SetEngineSink(sink *slog.Logger) {
	w.engineSink = sink
}

// rootEngineSink returns the current root's engine sink, or nil if unset or
// the tree is corrupt. Mirrors rootObservers.
func (w *Workflow) rootEngineSink() *slog.Logger {
	root, err := w.root()
	if err != nil {
		return nil
	}
	return root.engineSink
}

// RegisterObserver registers obs on w. w must be a root workflow (parent ==
// nil); registering on a non-root is a fatal error. Observers are notified
// in registration order.
func (w *Workflow) RegisterObserver(obs Observer) error {
	if w.parent != nil {
		return newValidationError(w.id, ErrObserverOnNonRoot)
	}
	w.observersMu.Lock()
	defer w.observersMu.Unlock()
	w.observers = append(w.observers, obs)
	return nil
}

// IsDescendantOf walks parent links from w upward, returning true iff
// ancestor is encountered. A cycle among parent links is reported as
// ErrCorruptTree.
func (w *Workflow) IsDescendantOf(ancestor *Workflow) (bool, error) {
	cur := w
	visited := map[*Workflow]bool{}
	for cur != nil {
		if cur == ancestor {
			return true, nil
		}
		if visited[cur] {
			return false, ErrCorruptTree
		}
		visited[cur] = true
		cur = cur.parent
	}
	return false, nil
}

// AttachChild attaches child to w. child.parent must be nil or w already
// (an idempotent no-op); child must not be w; child must not be an
// ancestor of w (which would create a cycle). On success, child.parent is
// set to w, child is appended to w.children, the node tree is mirrored, and
// childAttached followed by treeUpdated is emitted.
func (w *Workflow) AttachChild(child *Workflow) error {
	if child == w {
		return newValidationError(w.id, ErrSelfParent)
	}
	if child.parent == w {
		return nil
	}
	if child.parent != nil {
		return newValidationError(w.id, ErrDifferentParent)
	}
	isAncestor, err := w.IsDescendantOf(child)
	if err != nil {
		return newValidationError(w.id, err)
	}
	if isAncestor {
		return newValidationError(w.id, ErrCycle)
	}

	child.parent = w
	w.children = append(w.children, child)
	child.node.Parent = w.node
	w.node.Children = append(w.node.Children, child.node)

	w.EmitEvent(WorkflowEvent{Type: EventChildAttached, Node: w.node, ParentID: w.id, Child: child.node})
	root, rerr := w.root()
	if rerr == nil {
		w.EmitEvent(WorkflowEvent{Type: EventTreeUpdated, Root: root.node})
	}
	return nil
}

// DetachChild detaches child from w. child must be a current child of w.
// The detached subtree is not walked; it remains internally intact.
func (w *Workflow) DetachChild(child *Workflow) error {
	idx := -1
	for i, c := range w.children {
		if c == child {
			idx = i
			break
		}
	}
	if idx < 0 {
		return newValidationError(w.id, ErrNotAChild)
	}

	w.children = append(w.children[:idx], w.children[idx+1:]...)
	nodeIdx := -1
	for i, n := range w.node.Children {
		if n == child.node {
			nodeIdx = i
			break
		}
	}
	if nodeIdx >= 0 {
		w.node.Children = append(w.node.Children[:nodeIdx], w.node.Children[nodeIdx+1:]...)
	}
	child.parent = nil
	child.node.Parent = nil

	w.EmitEvent(WorkflowEvent{Type: EventChildDetached, Node: w.node, ParentID: w.id, Child: child.node})
	root, rerr := w.root()
	if rerr == nil {
		w.EmitEvent(WorkflowEvent{Type: EventTreeUpdated, Root: root.node})
	}
	return nil
}

// EmitEvent appends event to w.node.events, then notifies every observer
// reachable from the current root via OnEvent inside an isolation guard.
// Structural events additionally notify OnTreeChanged under the same
// guard. Observer panics never propagate; they are logged as
// "Observer onEvent error" and swallowed. User code may call EmitEvent
// directly to propagate custom event types through the same fabric.
func (w *Workflow) EmitEvent(event WorkflowEvent) {
	w.node.Events = append(w.node.Events, event)

	structural := event.Type == EventChildAttached || event.Type == EventChildDetached || event.Type == EventTreeUpdated
	root, rootErr := w.root()

	sink := w.rootEngineSink()
	for _, obs := range w.rootObservers() {
		obs := obs
		if err := observability.Isolate(func() { obs.OnEvent(event) }); err != nil {
			w.logger.Error("Observer onEvent error", map[string]any{"error": err.Error(), "eventType": string(event.Type)})
			engineSinkWarn(sink, "isolation guard caught a panic", "workflowId", w.id, "eventType", string(event.Type), "error", err.Error())
			continue
		}
		if structural && rootErr == nil {
			if err := observability.Isolate(func() { obs.OnTreeChanged(root.node) }); err != nil {
				w.logger.Error("Observer onEvent error", map[string]any{"error": err.Error(), "eventType": string(event.Type)})
				engineSinkWarn(sink, "isolation guard caught a panic", "workflowId", w.id, "eventType", string(event.Type), "error", err.Error())
			}
		}
	}
}

// SnapshotState assembles the observed-state record from w.self's tagged
// fields, assigns it to w.node.StateSnapshot, notifies each root observer's
// OnStateUpdated under the isolation guard, then emits stateSnapshot and
// treeUpdated.
func (w *Workflow) SnapshotState() {
	snapshot := snapshotFields(w.self)
	w.node.StateSnapshot = snapshot

	sink := w.rootEngineSink()
	for _, obs := range w.rootObservers() {
		obs := obs
		if err := observability.Isolate(func() { obs.OnStateUpdated(w.node) }); err != nil {
			w.logger.Error("Observer onStateUpdated error", map[string]any{"error": err.Error(), "nodeId": w.id})
			engineSinkWarn(sink, "isolation guard caught a panic", "workflowId", w.id, "error", err.Error())
		}
	}

	w.EmitEvent(WorkflowEvent{Type: EventStateSnapshot, Node: w.node})
	if root, err := w.root(); err == nil {
		w.EmitEvent(WorkflowEvent{Type: EventTreeUpdated, Root: root.node})
	}
}

// Execute drives inst's Handle() through idle -> running -> completed/failed
// around a call to inst.Run. It is the harness entry point; the engine
// never retries on its own (restart decisions are a caller concern, per
// §4.1's restart-semantics contract).
func Execute(ctx context.Context, inst Instance) (any, error) {
	w := inst.Handle()
	w.status = StatusRunning
	w.node.Status = StatusRunning

	result, err := inst.Run(ctx)
	if err != nil {
		w.status = StatusFailed
		w.node.Status = StatusFailed
		return nil, err
	}

	w.status = StatusCompleted
	w.node.Status = StatusCompleted
	return result, nil
}

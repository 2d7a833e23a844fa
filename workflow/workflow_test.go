package workflow

import (
	"context"
	"strings"
	"testing"
)

type testWorkflow struct {
	*Workflow
	Progress int    `observed:"progress"`
	Secret   string `observed:"secret,hidden"`
	Token    string `observed:"token,redact"`
	runFn    func(ctx context.Context) (any, error)
}

func newTestWorkflow(t *testing.T, name string, parent *Workflow) *testWorkflow {
	t.Helper()
	base, err := New(name, parent)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", name, err)
	}
	w := &testWorkflow{Workflow: base}
	w.WithSelf(w)
	return w
}

func (w *testWorkflow) Run(ctx context.Context) (any, error) {
	if w.runFn == nil {
		return nil, nil
	}
	return Step(ctx, w.Workflow, StepOptions{Name: "run"}, w.runFn)
}

func TestNewValidatesName(t *testing.T) {
	if _, err := New("", nil); err == nil {
		t.Fatal("expected error for empty name")
	}
	if _, err := New("   ", nil); err == nil {
		t.Fatal("expected error for whitespace-only name")
	}
	if _, err := New(strings.Repeat("a", 101), nil); err == nil {
		t.Fatal("expected error for name over 100 characters")
	}
	if _, err := New("ok", nil); err != nil {
		t.Fatalf("unexpected error for valid name: %v", err)
	}
}

func TestAttachChildLinksBothTrees(t *testing.T) {
	root := newTestWorkflow(t, "root", nil)
	child := newTestWorkflow(t, "child", nil)

	if err := root.AttachChild(child.Workflow); err != nil {
		t.Fatalf("AttachChild failed: %v", err)
	}

	if child.Parent() != root.Workflow {
		t.Fatal("child.Parent() != root")
	}
	if len(root.Children()) != 1 || root.Children()[0] != child.Workflow {
		t.Fatal("root.Children() does not contain child")
	}
	if child.node.Parent != root.node {
		t.Fatal("child.node.Parent != root.node")
	}
	if len(root.node.Children) != 1 || root.node.Children[0] != child.node {
		t.Fatal("root.node.Children does not contain child.node")
	}
}

func TestAttachChildIdempotent(t *testing.T) {
	root := newTestWorkflow(t, "root", nil)
	child := newTestWorkflow(t, "child", root.Workflow)

	if err := root.AttachChild(child.Workflow); err != nil {
		t.Fatalf("idempotent AttachChild returned error: %v", err)
	}
	if len(root.Children()) != 1 {
		t.Fatalf("expected 1 child after idempotent attach, got %d", len(root.Children()))
	}
}

func TestAttachChildRejectsCycle(t *testing.T) {
	root := newTestWorkflow(t, "root", nil)
	child := newTestWorkflow(t, "child", root.Workflow)

	if err := child.AttachChild(root.Workflow); err == nil {
		t.Fatal("expected cycle rejection")
	}
}

func TestAttachChildRejectsDifferentParent(t *testing.T) {
	p1 := newTestWorkflow(t, "p1", nil)
	p2 := newTestWorkflow(t, "p2", nil)
	child := newTestWorkflow(t, "child", p1.Workflow)

	if err := p2.AttachChild(child.Workflow); err == nil {
		t.Fatal("expected error attaching a child that already has a different parent")
	}
}

func TestDetachThenAttachToNewParent(t *testing.T) {
	p1 := newTestWorkflow(t, "p1", nil)
	p2 := newTestWorkflow(t, "p2", nil)
	x := newTestWorkflow(t, "x", p1.Workflow)

	if err := p1.DetachChild(x.Workflow); err != nil {
		t.Fatalf("DetachChild failed: %v", err)
	}
	if x.Parent() != nil {
		t.Fatal("x.Parent() should be nil after detach")
	}
	if len(p1.Children()) != 0 {
		t.Fatal("p1 should have no children after detach")
	}

	if err := p2.AttachChild(x.Workflow); err != nil {
		t.Fatalf("AttachChild to new parent failed: %v", err)
	}
	if x.Parent() != p2.Workflow {
		t.Fatal("x.Parent() != p2 after reattach")
	}
	if len(p2.Children()) != 1 || p2.Children()[0] != x.Workflow {
		t.Fatal("p2.Children() does not contain x after reattach")
	}
}

func TestSnapshotStateHonorsHiddenAndRedact(t *testing.T) {
	w := newTestWorkflow(t, "w", nil)
	w.Progress = 50
	w.Secret = "nobody sees this"
	w.Token = "supersecret"

	w.SnapshotState()

	snap := w.node.StateSnapshot
	if snap["progress"] != 50 {
		t.Fatalf("expected progress=50, got %v", snap["progress"])
	}
	if _, ok := snap["secret"]; ok {
		t.Fatal("hidden field 'secret' must not appear in snapshot")
	}
	if snap["token"] != "***" {
		t.Fatalf("expected redacted token '***', got %v", snap["token"])
	}
}

type recordingObserver struct {
	events []WorkflowEvent
	fail   bool
}

func (r *recordingObserver) OnLog(entry LogEntry) {}
func (r *recordingObserver) OnEvent(event WorkflowEvent) {
	if r.fail {
		panic("boom")
	}
	r.events = append(r.events, event)
}
func (r *recordingObserver) OnStateUpdated(node *WorkflowNode) {}
func (r *recordingObserver) OnTreeChanged(root *WorkflowNode)  {}

func TestObserverCrashIsolation(t *testing.T) {
	root := newTestWorkflow(t, "root", nil)
	o1 := &recordingObserver{fail: true}
	o2 := &recordingObserver{}
	o3 := &recordingObserver{}

	for _, o := range []*recordingObserver{o1, o2, o3} {
		if err := root.RegisterObserver(o); err != nil {
			t.Fatalf("RegisterObserver failed: %v", err)
		}
	}

	root.EmitEvent(WorkflowEvent{Type: EventStateSnapshot, Node: root.node})

	if len(o2.events) != 1 || len(o3.events) != 1 {
		t.Fatal("o2 and o3 must both receive the event despite o1 panicking")
	}

	found := false
	for _, entry := range root.node.Logs {
		if entry.Message == "Observer onEvent error" {
			found = true
		}
	}
	if !found {
		t.Fatal("expected an 'Observer onEvent error' log entry")
	}
}

func TestRegisterObserverOnNonRootFails(t *testing.T) {
	root := newTestWorkflow(t, "root", nil)
	child := newTestWorkflow(t, "child", root.Workflow)

	if err := child.RegisterObserver(&recordingObserver{}); err == nil {
		t.Fatal("expected error registering an observer on a non-root workflow")
	}
}

func TestExecuteTransitionsStatus(t *testing.T) {
	w := newTestWorkflow(t, "w", nil)
	w.runFn = func(ctx context.Context) (any, error) { return "ok", nil }

	result, err := Execute(context.Background(), w)
	if err != nil {
		t.Fatalf("Execute failed: %v", err)
	}
	if result != "ok" {
		t.Fatalf("expected result 'ok', got %v", result)
	}
	if w.Status() != StatusCompleted {
		t.Fatalf("expected status completed, got %v", w.Status())
	}
}

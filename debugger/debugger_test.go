package debugger_test

import (
	"context"
	"testing"

	"github.com/tailored-agentic-units/flowtree/debugger"
	"github.com/tailored-agentic-units/flowtree/workflow"
)

type node struct {
	*workflow.Workflow
}

func newNode(t *testing.T, name string, parent *workflow.Workflow) *node {
	t.Helper()
	base, err := workflow.New(name, parent)
	if err != nil {
		t.Fatalf("New(%q) failed: %v", name, err)
	}
	n := &node{Workflow: base}
	n.WithSelf(n)
	return n
}

func (n *node) Run(ctx context.Context) (any, error) { return nil, nil }

func TestDebuggerBootstrapAndIncrementalUpdate(t *testing.T) {
	root := newNode(t, "root", nil)
	leaf := newNode(t, "leaf", root.Workflow)

	dbg, err := debugger.Attach(root.Workflow)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	if got, _ := dbg.GetStats(), dbg.GetStats().TotalNodes; got.TotalNodes != 2 {
		t.Fatalf("expected 2 nodes after bootstrap, got %d", got.TotalNodes)
	}

	sub := newNode(t, "sub", nil)
	subChild := newNode(t, "sub-child", sub.Workflow)
	_ = subChild

	if err := leaf.Workflow.Handle().RegisterObserver(nil); err == nil {
		t.Fatal("expected RegisterObserver on non-root to fail")
	}

	if err := leaf.Workflow.AttachChild(sub.Workflow); err != nil {
		t.Fatalf("AttachChild failed: %v", err)
	}

	if got := dbg.GetStats().TotalNodes; got != 4 {
		t.Fatalf("expected 4 nodes after attaching a 2-node subtree, got %d", got)
	}

	if n, ok := dbg.GetNode(sub.ID()); !ok || n != sub.Node() {
		t.Fatal("debugger.GetNode did not resolve the newly attached node")
	}

	if err := leaf.Workflow.DetachChild(sub.Workflow); err != nil {
		t.Fatalf("DetachChild failed: %v", err)
	}
	if got := dbg.GetStats().TotalNodes; got != 2 {
		t.Fatalf("expected 2 nodes after detaching the subtree, got %d", got)
	}
	if _, ok := dbg.GetNode(sub.ID()); ok {
		t.Fatal("debugger.GetNode should no longer resolve a detached node")
	}
}

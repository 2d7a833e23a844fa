// Package debugger implements the incremental tree debugger index: an
// id -> WorkflowNode mapping covering every node in an observed tree,
// bootstrapped once via a full breadth-first walk and thereafter updated
// in-place off the same structural events every other observer sees.
package debugger

import (
	"sync"

	"github.com/tailored-agentic-units/flowtree/workflow"
)

// Debugger maintains an id -> WorkflowNode index over a workflow tree. It
// implements workflow.Observer and is meant to be registered on a root via
// (*workflow.Workflow).RegisterObserver; Attach does this for you.
//
// The index itself is read under a mutex since concurrent task branches can
// emit structural events from more than one goroutine at once (see
// SPEC_FULL.md §5.1); everything else about a WorkflowNode the debugger
// reads (logs, events, children) belongs to a single owning goroutine at any
// given moment and needs no locking of its own.
type Debugger struct {
	mu    sync.Mutex
	nodes map[string]*workflow.WorkflowNode
	root  *workflow.WorkflowNode
}

// Attach bootstraps a Debugger over root's current tree via one full
// breadth-first walk, registers it as an observer on root, and returns it.
// root must be a root workflow (see (*workflow.Workflow).RegisterObserver).
func Attach(root *workflow.Workflow) (*Debugger, error) {
	d := &Debugger{
		nodes: make(map[string]*workflow.WorkflowNode),
		root:  root.Node(),
	}
	d.bootstrap(root.Node())
	if err := root.RegisterObserver(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Debugger) bootstrap(root *workflow.WorkflowNode) {
	d.mu.Lock()
	defer d.mu.Unlock()
	walkBFS(root, func(n *workflow.WorkflowNode) {
		d.nodes[n.ID] = n
	})
}

// walkBFS visits root and every descendant in breadth-first order, calling
// visit once per node.
func walkBFS(root *workflow.WorkflowNode, visit func(*workflow.WorkflowNode)) {
	if root == nil {
		return
	}
	queue := []*workflow.WorkflowNode{root}
	for len(queue) > 0 {
		n := queue[0]
		queue = queue[1:]
		visit(n)
		queue = append(queue, n.Children...)
	}
}

// GetNode returns the node registered under id, O(1).
func (d *Debugger) GetNode(id string) (*workflow.WorkflowNode, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	n, ok := d.nodes[id]
	return n, ok
}

// Stats summarizes the observed tree's shape.
type Stats struct {
	TotalNodes int
	MaxDepth   int
	RootID     string
}

// GetStats computes totalNodes and maxDepth from the current index plus one
// walk of the live tree's depth from the root.
func (d *Debugger) GetStats() Stats {
	d.mu.Lock()
	total := len(d.nodes)
	root := d.root
	d.mu.Unlock()

	stats := Stats{TotalNodes: total}
	if root != nil {
		stats.RootID = root.ID
		stats.MaxDepth = depthOf(root)
	}
	return stats
}

func depthOf(n *workflow.WorkflowNode) int {
	if n == nil || len(n.Children) == 0 {
		return 1
	}
	max := 0
	for _, c := range n.Children {
		if d := depthOf(c); d > max {
			max = d
		}
	}
	return max + 1
}

// OnLog is a no-op: log entries never change the tree's shape.
func (d *Debugger) OnLog(entry workflow.LogEntry) {}

// OnEvent updates the index in-place for structural events. childAttached
// inserts every node in the attached subtree (O(k), k = subtree size);
// childDetached removes every node in the detached subtree, also O(k).
// Every other event type leaves the index unchanged, O(1).
func (d *Debugger) OnEvent(event workflow.WorkflowEvent) {
	switch event.Type {
	case workflow.EventChildAttached:
		d.mu.Lock()
		walkBFS(event.Child, func(n *workflow.WorkflowNode) { d.nodes[n.ID] = n })
		d.mu.Unlock()
	case workflow.EventChildDetached:
		d.mu.Lock()
		walkBFS(event.Child, func(n *workflow.WorkflowNode) { delete(d.nodes, n.ID) })
		d.mu.Unlock()
	}
}

// OnStateUpdated is a no-op: a state snapshot never changes the tree's
// shape or the set of known ids.
func (d *Debugger) OnStateUpdated(node *workflow.WorkflowNode) {}

// OnTreeChanged refreshes the cached root reference, O(1).
func (d *Debugger) OnTreeChanged(root *workflow.WorkflowNode) {
	d.mu.Lock()
	d.root = root
	d.mu.Unlock()
}

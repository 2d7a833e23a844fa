// Package introspect implements the five read-only queries the live
// workflow tree exposes for tool-calling: hierarchy inspection, ancestor
// output lookup, cache visibility, event history, and state snapshot
// lookup. Every query is read-only and never exposes a hidden field
// (redacted fields are returned as the literal string "***", already applied
// by the time a snapshot reaches this package). InspectHierarchy and
// ReadAncestorOutputs take a max-ancestry-depth cap and ReadEventHistory a
// max-results cap; InspectCache returns every entry registered against the
// node and InspectStateSnapshot a single record, with no cap on either.
package introspect

import (
	"errors"

	"github.com/tailored-agentic-units/flowtree/debugger"
	"github.com/tailored-agentic-units/flowtree/workflow"
)

// ErrNodeNotFound is returned when a query names a node id absent from the
// debugger's index.
var ErrNodeNotFound = errors.New("introspect: node not found")

// DefaultMaxResults bounds read_event_history: it is used when the caller
// passes a non-positive limit and caps any larger limit.
const DefaultMaxResults = 1000

// DepthMode selects how much of the hierarchy around a node to return.
type DepthMode string

const (
	DepthCurrentOnly   DepthMode = "current_only"
	DepthParentOnly    DepthMode = "parent_only"
	DepthAncestorsOnly DepthMode = "ancestors_only"
	DepthFullTree      DepthMode = "full_tree"
)

// HierarchyResult is the response shape for InspectHierarchy.
type HierarchyResult struct {
	Current        *workflow.WorkflowNode
	Parent         *workflow.WorkflowNode
	Ancestors      []*workflow.WorkflowNode
	Siblings       []*workflow.WorkflowNode
	HierarchyDepth int
	TotalSiblings  int
}

// InspectHierarchy returns nodeID's position in the tree: its own record,
// parent, ancestor chain, and siblings, shaped by depth. maxAncestryDepth
// caps how many ancestors are walked (0 means unlimited).
func InspectHierarchy(idx *debugger.Debugger, nodeID string, depth DepthMode, maxAncestryDepth int) (HierarchyResult, error) {
	node, ok := idx.GetNode(nodeID)
	if !ok {
		return HierarchyResult{}, ErrNodeNotFound
	}

	result := HierarchyResult{Current: node, HierarchyDepth: ancestorDepth(node)}

	if depth == DepthCurrentOnly {
		return result, nil
	}

	result.Parent = node.Parent

	if depth == DepthParentOnly {
		return result, nil
	}

	if depth == DepthAncestorsOnly || depth == DepthFullTree {
		result.Ancestors = ancestorsOf(node, maxAncestryDepth)
	}

	if depth == DepthFullTree && node.Parent != nil {
		for _, sibling := range node.Parent.Children {
			if sibling != node {
				result.Siblings = append(result.Siblings, sibling)
			}
		}
		result.TotalSiblings = len(result.Siblings)
	}

	return result, nil
}

func ancestorDepth(node *workflow.WorkflowNode) int {
	depth := 0
	for cur := node.Parent; cur != nil; cur = cur.Parent {
		depth++
	}
	return depth
}

func ancestorsOf(node *workflow.WorkflowNode, maxDepth int) []*workflow.WorkflowNode {
	var out []*workflow.WorkflowNode
	cur := node.Parent
	for cur != nil {
		if maxDepth > 0 && len(out) >= maxDepth {
			break
		}
		out = append(out, cur)
		cur = cur.Parent
	}
	return out
}

// AncestorOutput pairs an ancestor node with its latest observed-state
// snapshot, hidden fields already excluded and redacted fields already
// replaced with "***" by the snapshot assembler.
type AncestorOutput struct {
	NodeID   string
	Name     string
	Snapshot workflow.ObservedState
}

// ReadAncestorOutputs returns, for each ancestor of ancestorID (up to
// maxDepth, 0 meaning unlimited), its node id, name, and latest state
// snapshot.
func ReadAncestorOutputs(idx *debugger.Debugger, ancestorID string, maxDepth int) ([]AncestorOutput, error) {
	node, ok := idx.GetNode(ancestorID)
	if !ok {
		return nil, ErrNodeNotFound
	}

	ancestors := ancestorsOf(node, maxDepth)
	out := make([]AncestorOutput, 0, len(ancestors))
	for _, a := range ancestors {
		out = append(out, AncestorOutput{NodeID: a.ID, Name: a.Name, Snapshot: a.StateSnapshot})
	}
	return out, nil
}

// ReadEventHistory returns up to limit events (DefaultMaxResults if limit is
// non-positive or above DefaultMaxResults) from workflowID's node,
// optionally filtered to eventTypes.
func ReadEventHistory(idx *debugger.Debugger, workflowID string, eventTypes []workflow.EventType, limit int) ([]workflow.WorkflowEvent, error) {
	node, ok := idx.GetNode(workflowID)
	if !ok {
		return nil, ErrNodeNotFound
	}
	if limit <= 0 || limit > DefaultMaxResults {
		limit = DefaultMaxResults
	}

	filter := make(map[workflow.EventType]bool, len(eventTypes))
	for _, t := range eventTypes {
		filter[t] = true
	}

	var out []workflow.WorkflowEvent
	for _, evt := range node.Events {
		if len(filter) > 0 && !filter[evt.Type] {
			continue
		}
		out = append(out, evt)
		if len(out) >= limit {
			break
		}
	}
	return out, nil
}

// InspectCache returns the cache entries registered against nodeID,
// validating that nodeID names a live node before consulting cache.
func InspectCache(idx *debugger.Debugger, cache *CacheIndex, nodeID string) ([]CacheEntry, error) {
	if _, ok := idx.GetNode(nodeID); !ok {
		return nil, ErrNodeNotFound
	}
	return cache.InspectCache(nodeID), nil
}

// InspectStateSnapshot returns the latest observed-state record for
// workflowID's node.
func InspectStateSnapshot(idx *debugger.Debugger, workflowID string) (workflow.ObservedState, error) {
	node, ok := idx.GetNode(workflowID)
	if !ok {
		return nil, ErrNodeNotFound
	}
	return node.StateSnapshot, nil
}

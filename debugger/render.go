package debugger

import (
	"fmt"
	"strings"

	"github.com/tailored-agentic-units/flowtree/workflow"
)

// ToTreeString renders node (or the debugger's root if node is nil) as an
// indented tree of "name (status)" lines.
func (d *Debugger) ToTreeString(node *workflow.WorkflowNode) string {
	if node == nil {
		d.mu.Lock()
		node = d.root
		d.mu.Unlock()
	}
	if node == nil {
		return ""
	}
	var b strings.Builder
	renderTree(&b, node, 0)
	return b.String()
}

func renderTree(b *strings.Builder, node *workflow.WorkflowNode, depth int) {
	fmt.Fprintf(b, "%s%s (%s)\n", strings.Repeat("  ", depth), node.Name, node.Status)
	for _, child := range node.Children {
		renderTree(b, child, depth+1)
	}
}

// ToLogString renders node's (or the debugger's root's) logs, followed by
// its descendants' logs, each line prefixed with the owning node's name.
func (d *Debugger) ToLogString(node *workflow.WorkflowNode) string {
	if node == nil {
		d.mu.Lock()
		node = d.root
		d.mu.Unlock()
	}
	if node == nil {
		return ""
	}
	var b strings.Builder
	renderLogs(&b, node)
	return b.String()
}

func renderLogs(b *strings.Builder, node *workflow.WorkflowNode) {
	for _, entry := range node.Logs {
		fmt.Fprintf(b, "[%s] %s: %s\n", node.Name, strings.ToUpper(string(entry.Level)), entry.Message)
	}
	for _, child := range node.Children {
		renderLogs(b, child)
	}
}

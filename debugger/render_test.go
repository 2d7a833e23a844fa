package debugger_test

import (
	"strings"
	"testing"

	"github.com/tailored-agentic-units/flowtree/debugger"
)

func TestToTreeStringIndentsByDepth(t *testing.T) {
	root := newNode(t, "root", nil)
	child := newNode(t, "child", root.Workflow)
	_ = newNode(t, "grandchild", child.Workflow)

	dbg, err := debugger.Attach(root.Workflow)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	out := dbg.ToTreeString(nil)
	lines := strings.Split(strings.TrimRight(out, "\n"), "\n")
	if len(lines) != 3 {
		t.Fatalf("expected 3 lines, got %d: %q", len(lines), out)
	}
	if lines[0] != "root (idle)" {
		t.Fatalf("expected root at depth 0, got %q", lines[0])
	}
	if lines[1] != "  child (idle)" {
		t.Fatalf("expected child indented by 2 spaces, got %q", lines[1])
	}
	if lines[2] != "    grandchild (idle)" {
		t.Fatalf("expected grandchild indented by 4 spaces, got %q", lines[2])
	}
}

func TestToLogStringIncludesDescendants(t *testing.T) {
	root := newNode(t, "root", nil)
	child := newNode(t, "child", root.Workflow)

	dbg, err := debugger.Attach(root.Workflow)
	if err != nil {
		t.Fatalf("Attach failed: %v", err)
	}

	root.Logger().Info("root started", nil)
	child.Logger().Warn("child warning", nil)

	out := dbg.ToLogString(nil)
	if !strings.Contains(out, "[root] INFO: root started") {
		t.Fatalf("expected root log line in output, got %q", out)
	}
	if !strings.Contains(out, "[child] WARN: child warning") {
		t.Fatalf("expected child log line in output, got %q", out)
	}
}

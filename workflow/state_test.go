package workflow

import "testing"

// baseFields is embedded in embeddedWorkflow beside *Workflow, so Count is
// promoted with a two-step index path ([1 0]), exercising FieldByIndex's
// multi-hop path rather than a single-index field.
type baseFields struct {
	Count int `observed:"count"`
}

type embeddedWorkflow struct {
	*Workflow
	baseFields
	Label string `observed:"label"`
}

func TestSnapshotFieldsResolvesPromotedEmbeddedFields(t *testing.T) {
	base, err := New("embedded", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w := &embeddedWorkflow{Workflow: base}
	w.WithSelf(w)
	w.Count = 7
	w.Label = "hello"

	w.SnapshotState()

	snap := w.node.StateSnapshot
	if snap["count"] != 7 {
		t.Fatalf("expected promoted embedded field count=7, got %v", snap["count"])
	}
	if snap["label"] != "hello" {
		t.Fatalf("expected label='hello', got %v", snap["label"])
	}
}

func TestSnapshotFieldsUsesFieldNameWhenTagOmitsOne(t *testing.T) {
	type noNameTag struct {
		*Workflow
		Status string `observed:",redact"`
	}
	base, err := New("notag", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	w := &noNameTag{Workflow: base}
	w.WithSelf(w)
	w.Status = "secret-status"

	w.SnapshotState()

	snap := w.node.StateSnapshot
	if snap["Status"] != "***" {
		t.Fatalf("expected fallback field name 'Status' redacted, got %v", snap["Status"])
	}
}

func TestSnapshotFieldsCachePerType(t *testing.T) {
	a, err := New("a", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	wa := &embeddedWorkflow{Workflow: a}
	wa.WithSelf(wa)
	wa.Count = 1

	b, err := New("b", nil)
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	wb := &embeddedWorkflow{Workflow: b}
	wb.WithSelf(wb)
	wb.Count = 2

	wa.SnapshotState()
	wb.SnapshotState()

	if wa.node.StateSnapshot["count"] != 1 {
		t.Fatalf("expected a's own count, got %v", wa.node.StateSnapshot["count"])
	}
	if wb.node.StateSnapshot["count"] != 2 {
		t.Fatalf("expected b's own count despite shared per-type field cache, got %v", wb.node.StateSnapshot["count"])
	}
}

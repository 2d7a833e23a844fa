// Package workflow implements the hierarchical workflow tree: a live tree of
// Workflow instances mirrored 1:1 by a tree of WorkflowNode records, plus the
// step/task execution wrappers that drive it.
//
// A workflow is built by embedding *Workflow into a domain struct and
// implementing Run:
//
//	type Ingest struct {
//	    *workflow.Workflow
//	    Progress int `observed:"progress"`
//	}
//
//	func NewIngest(name string, parent *workflow.Workflow) (*Ingest, error) {
//	    base, err := workflow.New(name, parent)
//	    if err != nil {
//	        return nil, err
//	    }
//	    w := &Ingest{Workflow: base}
//	    base.WithSelf(w)
//	    return w, nil
//	}
//
//	func (w *Ingest) Run(ctx context.Context) (any, error) {
//	    return workflow.Step(ctx, w.Workflow, workflow.StepOptions{SnapshotState: true}, func(ctx context.Context) (string, error) {
//	        w.Progress = 50
//	        return "done", nil
//	    })
//	}
//
// Execution is started with workflow.Execute, which transitions the
// workflow's status and runs its Run method:
//
//	result, err := workflow.Execute(ctx, w)
//
// Go has no single-threaded cooperative runtime the way the original
// TypeScript engine does, so the concurrent branch of Task (see task.go) uses
// real goroutines with a full-settlement join; see SPEC_FULL.md §5.1 for the
// resulting, minimal locking this requires.
package workflow

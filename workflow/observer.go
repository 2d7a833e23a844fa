package workflow

// Observer is the capability set a caller registers on a root workflow via
// (*Workflow).RegisterObserver. Registration on a non-root workflow is a
// fatal error (ErrObserverOnNonRoot). Observers are notified in registration
// order; a panic from any method is recovered via observability.Isolate and
// never propagates to the caller.
type Observer interface {
	OnLog(entry LogEntry)
	OnEvent(event WorkflowEvent)
	OnStateUpdated(node *WorkflowNode)
	OnTreeChanged(root *WorkflowNode)
}

// NoOpObserver implements Observer with no-op methods. Useful as a
// placeholder registration or as an embeddable base for observers that only
// care about a subset of the capability set.
type NoOpObserver struct{}

func (NoOpObserver) OnLog(entry LogEntry)              {}
func (NoOpObserver) OnEvent(event WorkflowEvent)       {}
func (NoOpObserver) OnStateUpdated(node *WorkflowNode) {}
func (NoOpObserver) OnTreeChanged(root *WorkflowNode)  {}

package service

// WorkflowMetrics counts order workflow outcomes.
type WorkflowMetrics interface {
	// ObserveStep records the outcome of one named step of an order workflow.
	ObserveStep(action, step, outcome string)

	// ObserveOrder records an order reaching a payment status.
	ObserveOrder(status string)
}

// NoopWorkflowMetrics discards every observation.
type NoopWorkflowMetrics struct{}

func (NoopWorkflowMetrics) ObserveStep(string, string, string) {}

func (NoopWorkflowMetrics) ObserveOrder(string) {}

package logging

// Structured keys shared by every dubline log line.
const (
	FieldComponent     = "component"
	FieldJobID         = "job_id"
	FieldStage         = "stage"
	FieldCorrelationID = "correlation_id"

	// FieldEventType names the event in a machine-friendly form.
	FieldEventType = "event_type"
	// FieldErrorHint is the operator's next step.
	FieldErrorHint = "error_hint"
	// FieldImpact describes what the output loses because of a warning.
	FieldImpact = "impact"

	FieldDecisionType   = "decision_type"
	FieldDecisionResult = "decision_result"
	FieldDecisionReason = "decision_reason"
)

const (
	defaultHint   = "check logs for details"
	defaultImpact = "export continues with degraded output"
)

package domain

// SubmitKind is the closed set of SubmitCommand outcomes.
type SubmitKind string

const (
	SubmitResolved           SubmitKind = "resolved"
	SubmitNeedsConfirmation  SubmitKind = "needs_confirmation"
	SubmitNeedsClarification SubmitKind = "needs_clarification"
	SubmitUnrecognized       SubmitKind = "unrecognized"
)

// SubmitOutcome is returned by the pipeline for every submission.
// Result is set for SubmitResolved, Ticket for SubmitNeedsConfirmation and
// MissingSlots for SubmitNeedsClarification.
type SubmitOutcome struct {
	Kind         SubmitKind          `json:"kind"`
	Result       *ExecutionResult    `json:"result,omitempty"`
	Ticket       *ConfirmationTicket `json:"ticket,omitempty"`
	MissingSlots []string            `json:"missing_slots,omitempty"`
	Analysis     Analysis            `json:"analysis"`
}

// ConfirmKind is the closed set of Confirm outcomes.
type ConfirmKind string

const (
	ConfirmExecuted  ConfirmKind = "executed"
	ConfirmCancelled ConfirmKind = "cancelled"
	ConfirmExpired   ConfirmKind = "expired"
	ConfirmNoMatch   ConfirmKind = "no_match"
)

// ConfirmOutcome is returned by the pipeline for every confirmation answer.
// Result is set only for ConfirmExecuted.
type ConfirmOutcome struct {
	Kind   ConfirmKind      `json:"kind"`
	Result *ExecutionResult `json:"result,omitempty"`
}

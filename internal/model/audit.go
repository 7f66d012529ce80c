package model

import "time"

// Submission outcomes journaled for audit.
const (
	OutcomeCommitted = "committed"
	OutcomeRejected  = "rejected"
)

// SubmissionAudit is one journaled write intent: who submitted what and
// how the ledger answered. The journal is bookkeeping, not state; the
// ledger remains the system of record.
type SubmissionAudit struct {
	IntentID    string
	Kind        string
	TokenID     uint64
	Actor       string
	Outcome     string
	Reason      string
	SubmittedAt time.Time
}

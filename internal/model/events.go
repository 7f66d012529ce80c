package model

import "fmt"

// Ledger event kinds this client consumes. Both are append-only and
// globally ordered by log position.
const (
	KindRecordCreated         = "RecordCreated"
	KindVerificationRequested = "VerificationRequested"
)

// RecordCreatedEvent is emitted once when a patient uploads a record.
type RecordCreatedEvent struct {
	TokenID      uint64
	OwnerAddress string
	PatientName  string
	ContentHash  string
	ProviderName string
	Position     uint64
}

// Key identifies the event for deduplication: token IDs are unique, so
// two creation events for the same token are the same event replayed.
func (e RecordCreatedEvent) Key() string {
	return fmt.Sprint(e.TokenID)
}

// VerificationRequestedEvent is emitted when a doctor asks an insurer
// to review a record.
type VerificationRequestedEvent struct {
	TokenID     uint64
	InsurerName string
	DoctorName  string
	Position    uint64
}

// Key combines token and case-folded insurer name; repeated fetches of
// the same request collapse, while requests from distinct insurers for
// the same token stay distinct.
func (e VerificationRequestedEvent) Key() string {
	return fmt.Sprint(e.TokenID, "/", NormalizeName(e.InsurerName))
}

package model

// RequestStatus summarizes where a record stands in the insurer step.
type RequestStatus string

const (
	StatusNotRequested RequestStatus = "not requested"
	StatusRequested    RequestStatus = "requested"
	StatusApproved     RequestStatus = "approved"
)

// RecordView is the materialized projection of one record: the record
// itself, its verification request if one was issued, and the two
// current-truth flags resolved by point lookups. Views are rebuilt from
// the event log, never edited in place.
type RecordView struct {
	Record          Record
	Request         *VerificationRequest
	DoctorVerified  bool
	InsurerVerified bool
}

// InsurerStatus derives the insurer-step summary shown to patients.
func (v RecordView) InsurerStatus() RequestStatus {
	switch {
	case v.InsurerVerified:
		return StatusApproved
	case v.Request != nil:
		return StatusRequested
	default:
		return StatusNotRequested
	}
}

// HasLiveRequest reports whether an issued request still awaits
// insurer approval.
func (v RecordView) HasLiveRequest() bool {
	return v.Request != nil && v.Request.IsLive()
}

package workflow

import (
	"errors"

	"medrec-verification/internal/metrics"
	"medrec-verification/internal/model"
)

// Guard denial reasons. Every denial surfaces one of these; none is
// ever coerced to a generic failure.
var (
	ErrUnknownInsurer       = errors.New("insurer is not registered")
	ErrUnknownProvider      = errors.New("provider is not registered")
	ErrAlreadyRequested     = errors.New("a live verification request already exists for this insurer")
	ErrNotRequested         = errors.New("no live verification request exists for this record")
	ErrWrongInsurer         = errors.New("the request names a different insurer")
	ErrWrongProvider        = errors.New("the record names a different provider")
	ErrInsuranceNotApproved = errors.New("the verification request is not approved by the insurer yet")
	ErrAlreadyVerified      = errors.New("the record is already verified")
)

type Transition string

const (
	TransitionIssueRequest   Transition = "issue_request"
	TransitionApproveRequest Transition = "approve_request"
	TransitionVerifyRecord   Transition = "verify_record"
)

// Actor is the identity attempting a transition, as resolved by the
// caller (role from the ledger registration calls, name from the
// directory).
type Actor struct {
	Role    model.Role
	Address string
	Name    string
}

// InsurerDirectory is the registry lookup the guard consults when a
// doctor targets an insurer by name.
type InsurerDirectory interface {
	LookupInsurer(name string) (model.Participant, bool)
}

// roleMismatch maps each transition to the denial returned when the
// actor's role may not attempt it at all.
var roleMismatch = map[Transition]error{
	TransitionIssueRequest:   ErrWrongProvider,
	TransitionApproveRequest: ErrWrongInsurer,
	TransitionVerifyRecord:   ErrWrongProvider,
}

var allowedTransitions = map[model.Role]map[Transition]struct{}{
	model.RoleDoctor: {
		TransitionIssueRequest: {},
		TransitionVerifyRecord: {},
	},
	model.RoleInsurer: {
		TransitionApproveRequest: {},
	},
}

// Guard answers allow/deny for state-changing intents before they are
// submitted. It never mutates ledger state; the ledger's own checks
// remain authoritative. Callers must evaluate it against a freshly
// built view, not a cached one.
type Guard struct {
	insurers InsurerDirectory
}

func NewGuard(insurers InsurerDirectory) Guard {
	return Guard{insurers: insurers}
}

// Check validates a transition against the record's current view.
// insurerName is only consulted for TransitionIssueRequest.
func (g Guard) Check(actor Actor, view model.RecordView, transition Transition, insurerName string) error {
	mismatch, known := roleMismatch[transition]
	if !known {
		return errors.New("unknown transition: " + string(transition))
	}
	if _, ok := allowedTransitions[actor.Role][transition]; !ok {
		return deny(mismatch)
	}

	switch transition {
	case TransitionIssueRequest:
		return g.checkIssueRequest(actor, view, insurerName)
	case TransitionApproveRequest:
		return g.checkApproveRequest(actor, view)
	default:
		return g.checkVerifyRecord(actor, view)
	}
}

func (g Guard) checkIssueRequest(actor Actor, view model.RecordView, insurerName string) error {
	if !model.SameName(actor.Name, view.Record.ProviderName) {
		return deny(ErrWrongProvider)
	}
	// a verified record is terminal, no further insurer review can be opened
	if view.DoctorVerified {
		return deny(ErrAlreadyVerified)
	}
	if _, ok := g.insurers.LookupInsurer(insurerName); !ok {
		return deny(ErrUnknownInsurer)
	}
	if view.HasLiveRequest() && model.SameName(view.Request.InsurerName, insurerName) {
		return deny(ErrAlreadyRequested)
	}

	return nil
}

func (g Guard) checkApproveRequest(actor Actor, view model.RecordView) error {
	// an approved request is no longer live, approving it twice is a
	// caller error, not an idempotent no-op
	if !view.HasLiveRequest() {
		return deny(ErrNotRequested)
	}
	if !model.SameName(actor.Name, view.Request.InsurerName) {
		return deny(ErrWrongInsurer)
	}

	return nil
}

func (g Guard) checkVerifyRecord(actor Actor, view model.RecordView) error {
	if !model.SameName(actor.Name, view.Record.ProviderName) {
		return deny(ErrWrongProvider)
	}
	if view.DoctorVerified {
		return deny(ErrAlreadyVerified)
	}
	// a record with no request at all may be verified directly; the
	// insurer step is mandatory only once it was asked for
	if view.Request != nil && !view.Request.Approved {
		return deny(ErrInsuranceNotApproved)
	}

	return nil
}

// IsDenial reports whether err is one of the guard's workflow denials,
// as opposed to an infrastructure failure.
func IsDenial(err error) bool {
	for reason := range reasonLabels {
		if errors.Is(err, reason) {
			return true
		}
	}
	return false
}

var reasonLabels = map[error]string{
	ErrUnknownInsurer:       "unknown_insurer",
	ErrUnknownProvider:      "unknown_provider",
	ErrAlreadyRequested:     "already_requested",
	ErrNotRequested:         "not_requested",
	ErrWrongInsurer:         "wrong_insurer",
	ErrWrongProvider:        "wrong_provider",
	ErrInsuranceNotApproved: "insurance_not_approved",
	ErrAlreadyVerified:      "already_verified",
}

func deny(reason error) error {
	metrics.GuardDenials.WithLabelValues(reasonLabels[reason]).Inc()
	return reason
}

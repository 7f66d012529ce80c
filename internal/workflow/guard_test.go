package workflow_test

import (
	"testing"

	"medrec-verification/internal/model"
	"medrec-verification/internal/workflow"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeDirectory map[string]model.Participant

func (f fakeDirectory) LookupInsurer(name string) (model.Participant, bool) {
	participant, ok := f[model.NormalizeName(name)]
	return participant, ok
}

func newGuard() workflow.Guard {
	return workflow.NewGuard(fakeDirectory{
		"acme":     {DisplayName: "Acme", Role: model.RoleInsurer},
		"umbrella": {DisplayName: "Umbrella", Role: model.RoleInsurer},
	})
}

func doctor(name string) workflow.Actor {
	return workflow.Actor{Role: model.RoleDoctor, Address: "0xd0", Name: name}
}

func insurer(name string) workflow.Actor {
	return workflow.Actor{Role: model.RoleInsurer, Address: "0x15", Name: name}
}

func recordView(provider string) model.RecordView {
	return model.RecordView{
		Record: model.Record{
			TokenID:      1,
			PatientName:  "Jan Kowalski",
			ContentHash:  "QmContent",
			ProviderName: provider,
			OwnerAddress: "0xaa",
		},
	}
}

func withRequest(view model.RecordView, insurerName string, approved bool) model.RecordView {
	view.Request = &model.VerificationRequest{
		TokenID:     view.Record.TokenID,
		InsurerName: insurerName,
		DoctorName:  view.Record.ProviderName,
		Approved:    approved,
	}
	view.InsurerVerified = approved
	return view
}

func TestIssueRequest(t *testing.T) {
	guard := newGuard()
	view := recordView("GeneralHospital")

	t.Run("allowed for the record's provider", func(t *testing.T) {
		err := guard.Check(doctor("GeneralHospital"), view, workflow.TransitionIssueRequest, "Acme")
		assert.NoError(t, err)
	})

	t.Run("denied for another provider", func(t *testing.T) {
		err := guard.Check(doctor("CityClinic"), view, workflow.TransitionIssueRequest, "Acme")
		assert.ErrorIs(t, err, workflow.ErrWrongProvider)
	})

	t.Run("denied for an unregistered insurer", func(t *testing.T) {
		err := guard.Check(doctor("GeneralHospital"), view, workflow.TransitionIssueRequest, "Nonexistent")
		assert.ErrorIs(t, err, workflow.ErrUnknownInsurer)
	})

	t.Run("denied when a live request exists for the same insurer", func(t *testing.T) {
		requested := withRequest(view, "Acme", false)
		err := guard.Check(doctor("GeneralHospital"), requested, workflow.TransitionIssueRequest, "acme")
		assert.ErrorIs(t, err, workflow.ErrAlreadyRequested)
	})

	t.Run("allowed again after the prior request concluded", func(t *testing.T) {
		approved := withRequest(view, "Acme", true)
		err := guard.Check(doctor("GeneralHospital"), approved, workflow.TransitionIssueRequest, "Acme")
		assert.NoError(t, err)
	})

	t.Run("denied for an insurer actor", func(t *testing.T) {
		err := guard.Check(insurer("Acme"), view, workflow.TransitionIssueRequest, "Acme")
		assert.ErrorIs(t, err, workflow.ErrWrongProvider)
	})

	t.Run("denied once the record is verified", func(t *testing.T) {
		verified := view
		verified.DoctorVerified = true
		err := guard.Check(doctor("GeneralHospital"), verified, workflow.TransitionIssueRequest, "Umbrella")
		assert.ErrorIs(t, err, workflow.ErrAlreadyVerified)
	})
}

func TestApproveRequest(t *testing.T) {
	guard := newGuard()
	view := recordView("GeneralHospital")

	t.Run("denied without a request", func(t *testing.T) {
		err := guard.Check(insurer("Acme"), view, workflow.TransitionApproveRequest, "")
		assert.ErrorIs(t, err, workflow.ErrNotRequested)
	})

	t.Run("denied for a different insurer", func(t *testing.T) {
		requested := withRequest(view, "Acme", false)
		err := guard.Check(insurer("Umbrella"), requested, workflow.TransitionApproveRequest, "")
		assert.ErrorIs(t, err, workflow.ErrWrongInsurer)
	})

	t.Run("name match ignores letter case", func(t *testing.T) {
		// the request was stored as "acme", the insurer registered as "Acme"
		requested := withRequest(view, "acme", false)
		err := guard.Check(insurer("Acme"), requested, workflow.TransitionApproveRequest, "")
		assert.NoError(t, err)
	})

	t.Run("denied when the request is already approved", func(t *testing.T) {
		approved := withRequest(view, "Acme", true)
		err := guard.Check(insurer("Acme"), approved, workflow.TransitionApproveRequest, "")
		assert.ErrorIs(t, err, workflow.ErrNotRequested)
	})

	t.Run("denied for a doctor actor", func(t *testing.T) {
		requested := withRequest(view, "Acme", false)
		err := guard.Check(doctor("GeneralHospital"), requested, workflow.TransitionApproveRequest, "")
		assert.ErrorIs(t, err, workflow.ErrWrongInsurer)
	})
}

func TestVerifyRecord(t *testing.T) {
	guard := newGuard()
	view := recordView("GeneralHospital")

	t.Run("allowed with no request at all", func(t *testing.T) {
		err := guard.Check(doctor("GeneralHospital"), view, workflow.TransitionVerifyRecord, "")
		assert.NoError(t, err)
	})

	t.Run("denied while the request awaits approval", func(t *testing.T) {
		requested := withRequest(view, "Acme", false)
		err := guard.Check(doctor("GeneralHospital"), requested, workflow.TransitionVerifyRecord, "")
		assert.ErrorIs(t, err, workflow.ErrInsuranceNotApproved)
	})

	t.Run("allowed once the request is approved", func(t *testing.T) {
		approved := withRequest(view, "Acme", true)
		err := guard.Check(doctor("GeneralHospital"), approved, workflow.TransitionVerifyRecord, "")
		assert.NoError(t, err)
	})

	t.Run("denied when already verified", func(t *testing.T) {
		verified := withRequest(view, "Acme", true)
		verified.DoctorVerified = true
		err := guard.Check(doctor("GeneralHospital"), verified, workflow.TransitionVerifyRecord, "")
		assert.ErrorIs(t, err, workflow.ErrAlreadyVerified)
	})

	t.Run("denied for another provider", func(t *testing.T) {
		err := guard.Check(doctor("CityClinic"), view, workflow.TransitionVerifyRecord, "")
		assert.ErrorIs(t, err, workflow.ErrWrongProvider)
	})
}

// The full workflow of one record: create, request the insurer step,
// get blocked on verification, approve, verify.
func TestRecordWorkflow(t *testing.T) {
	guard := newGuard()
	provider := doctor("GeneralHospital")

	view := recordView("GeneralHospital")

	require.NoError(t, guard.Check(provider, view, workflow.TransitionIssueRequest, "Acme"))
	view = withRequest(view, "Acme", false)

	err := guard.Check(provider, view, workflow.TransitionVerifyRecord, "")
	require.ErrorIs(t, err, workflow.ErrInsuranceNotApproved)

	require.NoError(t, guard.Check(insurer("Acme"), view, workflow.TransitionApproveRequest, ""))
	view = withRequest(view, "Acme", true)

	require.NoError(t, guard.Check(provider, view, workflow.TransitionVerifyRecord, ""))
	view.DoctorVerified = true

	// the record is terminal now, nothing more can be opened or redone
	err = guard.Check(provider, view, workflow.TransitionIssueRequest, "Umbrella")
	require.ErrorIs(t, err, workflow.ErrAlreadyVerified)
	err = guard.Check(provider, view, workflow.TransitionVerifyRecord, "")
	require.ErrorIs(t, err, workflow.ErrAlreadyVerified)
}

func TestIsDenial(t *testing.T) {
	assert.True(t, workflow.IsDenial(workflow.ErrInsuranceNotApproved))
	assert.True(t, workflow.IsDenial(workflow.ErrUnknownInsurer))
	assert.False(t, workflow.IsDenial(assert.AnError))
	assert.False(t, workflow.IsDenial(nil))
}

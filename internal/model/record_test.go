package model_test

import (
	"testing"

	"medrec-verification/internal/model"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeName(t *testing.T) {
	assert.Equal(t, "acme", model.NormalizeName("  Acme "))
	assert.Equal(t, "acme insurance", model.NormalizeName("ACME Insurance"))
	assert.True(t, model.SameName("acme", "ACME "))
	assert.False(t, model.SameName("acme", "umbrella"))
}

func TestSameAddress(t *testing.T) {
	assert.True(t, model.SameAddress("0xAbC1", " 0xabc1"))
	assert.False(t, model.SameAddress("0xabc1", "0xabc2"))
}

func TestRecordValidate(t *testing.T) {
	record := model.Record{
		PatientName:  "Jan Kowalski",
		ContentHash:  "QmContent",
		ProviderName: "GeneralHospital",
	}
	assert.NoError(t, record.Validate())

	record.ContentHash = ""
	record.ProviderName = ""
	err := record.Validate()
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "content hash")
	assert.Contains(t, err.Error(), "provider name")
}

func TestInsurerStatus(t *testing.T) {
	view := model.RecordView{}
	assert.Equal(t, model.StatusNotRequested, view.InsurerStatus())
	assert.False(t, view.HasLiveRequest())

	view.Request = &model.VerificationRequest{InsurerName: "Acme"}
	assert.Equal(t, model.StatusRequested, view.InsurerStatus())
	assert.True(t, view.HasLiveRequest())

	view.Request.Approved = true
	view.InsurerVerified = true
	assert.Equal(t, model.StatusApproved, view.InsurerStatus())
	assert.False(t, view.HasLiveRequest())
}

func TestEventKeys(t *testing.T) {
	created := model.RecordCreatedEvent{TokenID: 7}
	assert.Equal(t, "7", created.Key())

	requested := model.VerificationRequestedEvent{TokenID: 7, InsurerName: " ACME"}
	assert.Equal(t, "7/acme", requested.Key())
}

package app

import (
	"context"
	"errors"

	"medrec-verification/internal/model"
	"medrec-verification/internal/projection"
)

// ErrNotRegistered marks an actor whose address the ledger does not
// know for the role it claims.
var ErrNotRegistered = errors.New("the address is not registered on the ledger for this role")

// PatientRecords projects the records owned by the given address.
func (a App) PatientRecords(ctx context.Context, ownerAddress string) ([]model.RecordView, error) {
	return a.buildProjection(ctx, projection.PatientScope(ownerAddress))
}

// DoctorRecords projects every record: doctors review across patients.
// The caller must be a registered provider.
func (a App) DoctorRecords(ctx context.Context, doctorAddress string) ([]model.RecordView, error) {
	registered, err := a.ledger.IsRegisteredProvider(ctx, doctorAddress)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, ErrNotRegistered
	}

	return a.buildProjection(ctx, projection.DoctorScope())
}

// InsurerRequests projects the records with a verification request
// naming the caller's insurance company. The company name is resolved
// from the ledger, not trusted from the caller.
func (a App) InsurerRequests(ctx context.Context, insurerAddress string) ([]model.RecordView, error) {
	registered, err := a.ledger.IsRegisteredInsurer(ctx, insurerAddress)
	if err != nil {
		return nil, err
	}
	if !registered {
		return nil, ErrNotRegistered
	}

	insurerName, err := a.ledger.GetInsurerName(ctx, insurerAddress)
	if err != nil {
		return nil, err
	}

	return a.buildProjection(ctx, projection.InsurerScope(insurerName))
}

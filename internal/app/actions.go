package app

import (
	"context"
	"errors"
	"time"

	"medrec-verification/internal/ledger"
	"medrec-verification/internal/model"
	"medrec-verification/internal/workflow"

	"go.uber.org/zap"
)

// UploadRecord pins the content and submits the record creation intent.
// The named provider must exist in the directory before anything is
// uploaded.
func (a App) UploadRecord(ctx context.Context, ownerAddress, patientName, providerName, fileName string, content []byte) (ledger.Receipt, error) {
	if _, ok := a.registry.LookupProvider(providerName); !ok {
		return ledger.Receipt{}, workflow.ErrUnknownProvider
	}

	contentHash, err := a.storage.Upload(ctx, fileName, content)
	if err != nil {
		return ledger.Receipt{}, err
	}

	record := model.Record{
		PatientName:  patientName,
		ContentHash:  contentHash,
		ProviderName: providerName,
		OwnerAddress: ownerAddress,
	}
	if err := record.Validate(); err != nil {
		return ledger.Receipt{}, err
	}

	a.logger.Info("submitting record creation",
		zap.String("provider", providerName), zap.String("owner", ownerAddress))

	intent := ledger.NewCreateRecordIntent(ownerAddress, patientName, contentHash, providerName)
	return a.submit(ctx, intent, 0)
}

// IssueRequest opens an insurer review for a record on behalf of its
// provider.
func (a App) IssueRequest(ctx context.Context, doctorAddress, doctorName string, tokenID uint64, insurerName string) (ledger.Receipt, error) {
	actor, err := a.doctorActor(ctx, doctorAddress, doctorName)
	if err != nil {
		return ledger.Receipt{}, err
	}

	view, err := a.freshRecordView(ctx, tokenID)
	if err != nil {
		return ledger.Receipt{}, err
	}

	if err := a.guard.Check(actor, view, workflow.TransitionIssueRequest, insurerName); err != nil {
		return ledger.Receipt{}, err
	}

	intent := ledger.NewIssueRequestIntent(doctorAddress, tokenID, insurerName, view.Record.ProviderName)
	return a.submit(ctx, intent, tokenID)
}

// ApproveRequest records the insurer's approval for a live request that
// names the caller's company.
func (a App) ApproveRequest(ctx context.Context, insurerAddress string, tokenID uint64) (ledger.Receipt, error) {
	actor, err := a.insurerActor(ctx, insurerAddress)
	if err != nil {
		return ledger.Receipt{}, err
	}

	view, err := a.freshRecordView(ctx, tokenID)
	if err != nil {
		return ledger.Receipt{}, err
	}

	if err := a.guard.Check(actor, view, workflow.TransitionApproveRequest, ""); err != nil {
		return ledger.Receipt{}, err
	}

	intent := ledger.NewApproveRequestIntent(insurerAddress, tokenID)
	return a.submit(ctx, intent, tokenID)
}

// VerifyRecord finalizes the provider's verification of a record. If an
// insurer review was requested it must be approved first.
func (a App) VerifyRecord(ctx context.Context, doctorAddress, doctorName string, tokenID uint64) (ledger.Receipt, error) {
	actor, err := a.doctorActor(ctx, doctorAddress, doctorName)
	if err != nil {
		return ledger.Receipt{}, err
	}

	view, err := a.freshRecordView(ctx, tokenID)
	if err != nil {
		return ledger.Receipt{}, err
	}

	if err := a.guard.Check(actor, view, workflow.TransitionVerifyRecord, ""); err != nil {
		return ledger.Receipt{}, err
	}

	intent := ledger.NewVerifyByProviderIntent(doctorAddress, tokenID)
	return a.submit(ctx, intent, tokenID)
}

func (a App) doctorActor(ctx context.Context, address, name string) (workflow.Actor, error) {
	registered, err := a.ledger.IsRegisteredProvider(ctx, address)
	if err != nil {
		return workflow.Actor{}, err
	}
	if !registered {
		return workflow.Actor{}, ErrNotRegistered
	}

	return workflow.Actor{Role: model.RoleDoctor, Address: address, Name: name}, nil
}

func (a App) insurerActor(ctx context.Context, address string) (workflow.Actor, error) {
	registered, err := a.ledger.IsRegisteredInsurer(ctx, address)
	if err != nil {
		return workflow.Actor{}, err
	}
	if !registered {
		return workflow.Actor{}, ErrNotRegistered
	}

	// the company name on the ledger is authoritative, the caller's
	// claim is not consulted
	name, err := a.ledger.GetInsurerName(ctx, address)
	if err != nil {
		return workflow.Actor{}, err
	}

	return workflow.Actor{Role: model.RoleInsurer, Address: address, Name: name}, nil
}

// submit sends the intent and journals the outcome. A journaling
// failure is logged but does not fail a committed submission.
func (a App) submit(ctx context.Context, intent ledger.Intent, tokenID uint64) (ledger.Receipt, error) {
	receipt, err := a.ledger.Submit(ctx, intent)

	audit := model.SubmissionAudit{
		IntentID:    receipt.IntentID,
		Kind:        intent.Kind,
		TokenID:     tokenID,
		Actor:       intent.Sender,
		Outcome:     model.OutcomeCommitted,
		SubmittedAt: time.Now(),
	}

	var rejected ledger.RejectedError
	switch {
	case err == nil:
	case errors.As(err, &rejected):
		audit.IntentID = rejected.IntentID
		audit.Outcome = model.OutcomeRejected
		audit.Reason = rejected.Reason
	default:
		// transport failures are not journaled, nothing reached the ledger
		return ledger.Receipt{}, err
	}

	if dbErr := a.db.InsertReceipt(ctx, audit); dbErr != nil {
		a.logger.Error("failed to journal the submission: "+dbErr.Error(),
			zap.String("kind", intent.Kind), zap.String("actor", intent.Sender))
	}

	return receipt, err
}

package app

import (
	"context"
	"errors"

	"medrec-verification/internal/config"
	"medrec-verification/internal/ledger"
	"medrec-verification/internal/model"
	"medrec-verification/internal/projection"
	"medrec-verification/internal/registry"
	"medrec-verification/internal/repository/mongodb"
	"medrec-verification/internal/storage"
	"medrec-verification/internal/workflow"

	"go.uber.org/zap"
)

var ErrRecordNotFound = errors.New("no such record in the current projection")

type App struct {
	logger   *zap.Logger
	ledger   *ledger.Client
	registry *registry.Cache
	storage  *storage.Client
	builder  *projection.Builder
	guard    workflow.Guard
	db       mongodb.Repository
}

func NewApp(logger *zap.Logger, registryCache *registry.Cache, db mongodb.Repository) App {
	ledgerClient := ledger.NewClient(logger, config.GetLedgerGatewayAddr())
	return App{
		logger:   logger,
		ledger:   ledgerClient,
		registry: registryCache,
		storage:  storage.NewClient(logger, config.GetContentStoreAddr()),
		builder:  projection.NewBuilder(logger, ledgerClient, config.GetLookupFanout()),
		guard:    workflow.NewGuard(registryCache),
		db:       db,
	}
}

// RegisteredProviders lists the directory's doctors/hospitals.
func (a App) RegisteredProviders() []model.Participant {
	return a.registry.Providers()
}

// RegisteredInsurers lists the directory's insurance companies.
func (a App) RegisteredInsurers() []model.Participant {
	return a.registry.Insurers()
}

func (a App) GetReceipts(ctx context.Context, actor string) ([]model.SubmissionAudit, error) {
	return a.db.GetActorReceipts(ctx, actor)
}

// fetchWindows replays both event streams from the start of the log.
// The two fetches form one read window; the verified flags resolved
// later reflect a newer snapshot by design.
func (a App) fetchWindows(ctx context.Context) ([]model.RecordCreatedEvent, []model.VerificationRequestedEvent, error) {
	created, err := a.ledger.FetchRecordCreated(ctx, 0, ledger.PositionLatest)
	if err != nil {
		return nil, nil, err
	}

	requested, err := a.ledger.FetchVerificationRequested(ctx, 0, ledger.PositionLatest)
	if err != nil {
		return nil, nil, err
	}

	return created, requested, nil
}

func (a App) buildProjection(ctx context.Context, scope projection.Scope) ([]model.RecordView, error) {
	created, requested, err := a.fetchWindows(ctx)
	if err != nil {
		return nil, err
	}

	return a.builder.Build(ctx, scope, created, requested)
}

// freshRecordView rebuilds the projection and extracts one record's
// view. Guard checks always run against this, never a cached view.
func (a App) freshRecordView(ctx context.Context, tokenID uint64) (model.RecordView, error) {
	views, err := a.buildProjection(ctx, projection.DoctorScope())
	if err != nil {
		return model.RecordView{}, err
	}

	for _, view := range views {
		if view.Record.TokenID == tokenID {
			return view, nil
		}
	}

	return model.RecordView{}, ErrRecordNotFound
}

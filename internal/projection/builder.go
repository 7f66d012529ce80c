package projection

import (
	"context"

	"medrec-verification/internal/metrics"
	"medrec-verification/internal/model"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const defaultLookupFanout = 8

// Lookups resolves the two current-truth flags the event log does not
// summarize. Each call is idempotent and keyed by token, so concurrent
// calls may interleave freely.
type Lookups interface {
	IsDoctorVerified(ctx context.Context, tokenID uint64) (bool, error)
	IsInsurerVerified(ctx context.Context, tokenID uint64) (bool, error)
}

// Scope selects which records the finished projection contains.
type Scope struct {
	Role model.Role

	// OwnerAddress filters the patient view to the caller's own records.
	OwnerAddress string
	// InsurerName filters the insurer view to matching-name requests.
	InsurerName string
}

func PatientScope(ownerAddress string) Scope {
	return Scope{Role: model.RolePatient, OwnerAddress: ownerAddress}
}

// DoctorScope covers every record: doctors review across patients.
func DoctorScope() Scope {
	return Scope{Role: model.RoleDoctor}
}

func InsurerScope(insurerName string) Scope {
	return Scope{Role: model.RoleInsurer, InsurerName: insurerName}
}

type Builder struct {
	logger  *zap.Logger
	lookups Lookups
	fanout  int
}

// NewBuilder wires a projection builder. fanout bounds the number of
// concurrent point lookups per build; zero or negative picks a default.
func NewBuilder(logger *zap.Logger, lookups Lookups, fanout int) *Builder {
	if fanout <= 0 {
		fanout = defaultLookupFanout
	}
	return &Builder{
		logger:  logger,
		lookups: lookups,
		fanout:  fanout,
	}
}

// Build folds the fetched event windows into one RecordView per record
// visible in the given scope. Request attachment reflects the fetch
// window; the two verified flags reflect a later point-lookup snapshot,
// so a caller that needs to observe its own write must build again
// after the write's receipt.
//
// A failed lookup omits only that record's view; the rest of the
// projection is still returned.
func (b *Builder) Build(ctx context.Context, scope Scope, created []model.RecordCreatedEvent, requested []model.VerificationRequestedEvent) ([]model.RecordView, error) {
	metrics.ProjectionBuilds.WithLabelValues(scope.Role.String()).Inc()

	created = countDropped(created, Deduplicate(created))
	requested = countDropped(requested, Deduplicate(requested))

	views := make([]*model.RecordView, 0, len(created))
	byToken := make(map[uint64]*model.RecordView, len(created))
	for _, event := range created {
		if scope.Role == model.RolePatient && !model.SameAddress(event.OwnerAddress, scope.OwnerAddress) {
			continue
		}
		view := &model.RecordView{
			Record: model.Record{
				TokenID:      event.TokenID,
				PatientName:  event.PatientName,
				ContentHash:  event.ContentHash,
				ProviderName: event.ProviderName,
				OwnerAddress: event.OwnerAddress,
			},
		}
		views = append(views, view)
		byToken[event.TokenID] = view
	}

	for _, event := range requested {
		if scope.Role == model.RoleInsurer && !model.SameName(event.InsurerName, scope.InsurerName) {
			continue
		}
		view, ok := byToken[event.TokenID]
		if !ok || view.Request != nil {
			// the first request seen for a token is canonical
			continue
		}
		view.Request = &model.VerificationRequest{
			TokenID:     event.TokenID,
			InsurerName: event.InsurerName,
			DoctorName:  event.DoctorName,
			IssuedAt:    event.Position,
		}
	}

	if scope.Role == model.RoleInsurer {
		requestedOnly := make([]*model.RecordView, 0, len(views))
		for _, view := range views {
			if view.Request != nil {
				requestedOnly = append(requestedOnly, view)
			}
		}
		views = requestedOnly
	}

	failed := b.resolveFlags(ctx, views)
	if err := ctx.Err(); err != nil {
		// an abandoned build is discarded wholesale
		return nil, err
	}

	result := make([]model.RecordView, 0, len(views))
	for i, view := range views {
		if failed[i] {
			continue
		}
		result = append(result, *view)
	}

	return result, nil
}

// resolveFlags fans out the per-record point lookups with bounded
// concurrency and reports which views could not be resolved.
func (b *Builder) resolveFlags(ctx context.Context, views []*model.RecordView) []bool {
	failed := make([]bool, len(views))

	group, groupCtx := errgroup.WithContext(ctx)
	group.SetLimit(b.fanout)

	for i, view := range views {
		i, view := i, view
		group.Go(func() error {
			doctorVerified, err := b.lookups.IsDoctorVerified(groupCtx, view.Record.TokenID)
			if err == nil {
				view.DoctorVerified = doctorVerified
				view.InsurerVerified, err = b.lookups.IsInsurerVerified(groupCtx, view.Record.TokenID)
			}
			if err != nil {
				// isolate the failure: drop this view, keep the rest
				b.logger.Error("point lookup failed, omitting the record from the projection",
					zap.Uint64("tokenID", view.Record.TokenID), zap.Error(err))
				metrics.ProjectionLookupFailures.Inc()
				failed[i] = true
				return nil
			}

			if view.Request != nil {
				view.Request.Approved = view.InsurerVerified
			}
			return nil
		})
	}

	// goroutines never return errors, they flag their own slot
	_ = group.Wait()

	return failed
}

func countDropped[E Keyed](in, out []E) []E {
	if dropped := len(in) - len(out); dropped > 0 {
		metrics.EventsDeduplicated.Add(float64(dropped))
	}
	return out
}

package registry

import (
	"context"
	"sync/atomic"

	"medrec-verification/internal/model"

	"go.uber.org/multierr"
	"go.uber.org/zap"
)

// Directory is the source the cache refreshes from.
type Directory interface {
	Providers(ctx context.Context) ([]model.Participant, error)
	Insurers(ctx context.Context) ([]model.Participant, error)
}

type snapshot struct {
	providers map[string]model.Participant
	insurers  map[string]model.Participant
}

// Cache holds the participant directory for lookups during guard checks
// and view building. Refresh replaces the whole snapshot in one atomic
// swap; readers never observe a half-updated directory and need no
// locking.
type Cache struct {
	logger    *zap.Logger
	directory Directory
	current   atomic.Value // snapshot
}

func NewCache(logger *zap.Logger, directory Directory) *Cache {
	cache := &Cache{
		logger:    logger,
		directory: directory,
	}
	cache.current.Store(snapshot{
		providers: map[string]model.Participant{},
		insurers:  map[string]model.Participant{},
	})
	return cache
}

// Refresh pulls both directories and swaps the snapshot in. On error
// the previous snapshot stays in effect.
func (c *Cache) Refresh(ctx context.Context) error {
	providers, errProviders := c.directory.Providers(ctx)
	insurers, errInsurers := c.directory.Insurers(ctx)
	if err := multierr.Combine(errProviders, errInsurers); err != nil {
		return err
	}

	next := snapshot{
		providers: index(providers),
		insurers:  index(insurers),
	}
	c.current.Store(next)

	c.logger.Debug("registry snapshot refreshed",
		zap.Int("providers", len(next.providers)), zap.Int("insurers", len(next.insurers)))
	return nil
}

// LookupProvider finds a registered doctor/hospital by name,
// case-insensitively.
func (c *Cache) LookupProvider(name string) (model.Participant, bool) {
	participant, ok := c.snapshot().providers[model.NormalizeName(name)]
	return participant, ok
}

// LookupInsurer finds a registered insurance company by name,
// case-insensitively.
func (c *Cache) LookupInsurer(name string) (model.Participant, bool) {
	participant, ok := c.snapshot().insurers[model.NormalizeName(name)]
	return participant, ok
}

// Providers lists the registered doctors/hospitals of the current
// snapshot in no particular order.
func (c *Cache) Providers() []model.Participant {
	return values(c.snapshot().providers)
}

// Insurers lists the registered insurance companies of the current
// snapshot in no particular order.
func (c *Cache) Insurers() []model.Participant {
	return values(c.snapshot().insurers)
}

func (c *Cache) snapshot() snapshot {
	return c.current.Load().(snapshot)
}

func index(participants []model.Participant) map[string]model.Participant {
	indexed := make(map[string]model.Participant, len(participants))
	for _, participant := range participants {
		indexed[model.NormalizeName(participant.DisplayName)] = participant
	}
	return indexed
}

func values(participants map[string]model.Participant) []model.Participant {
	out := make([]model.Participant, 0, len(participants))
	for _, participant := range participants {
		out = append(out, participant)
	}
	return out
}

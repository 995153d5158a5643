package service

import (
	"context"
	"testing"

	"balneario/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstablishmentService(t *testing.T) {
	f := setup(t)
	svc := NewEstablishmentService(f.db, f.cache, &f.logger)
	ctx := context.Background()

	t.Run("NameRequired", func(t *testing.T) {
		err := svc.Upsert(ctx, 2, &models.Establishment{})
		assertCode(t, err, "name_required")
	})

	t.Run("NameWhitespaceOnly", func(t *testing.T) {
		err := svc.Upsert(ctx, 2, &models.Establishment{Name: "   "})
		assertCode(t, err, "name_required")
	})

	t.Run("UnknownService", func(t *testing.T) {
		err := svc.Upsert(ctx, 2, &models.Establishment{
			Name:     "Balneario Mar",
			Services: map[string]models.ServiceConfig{"sauna": {Enabled: true}},
		})
		assertCode(t, err, "invalid_service")
	})

	t.Run("NegativeCapacity", func(t *testing.T) {
		err := svc.Upsert(ctx, 2, &models.Establishment{
			Name:     "Balneario Mar",
			Services: map[string]models.ServiceConfig{models.ServiceTent: {Enabled: true, Capacity: -1}},
		})
		assertCode(t, err, "invalid_capacity")
	})

	t.Run("UpsertReplacesSettings", func(t *testing.T) {
		est := &models.Establishment{
			Name:     "Balneario Mar",
			Services: map[string]models.ServiceConfig{models.ServiceTent: {Enabled: true, Capacity: 4}},
		}
		require.NoError(t, svc.Upsert(ctx, 2, est))
		require.NotZero(t, est.ID)

		est.Services[models.ServiceTent] = models.ServiceConfig{Enabled: true, Capacity: 6}
		require.NoError(t, svc.Upsert(ctx, 2, est))

		got, err := svc.GetByOwner(ctx, 2)
		require.NoError(t, err)
		cfg, ok := got.Service(models.ServiceTent)
		require.True(t, ok)
		assert.Equal(t, int64(6), cfg.Capacity)

		// capacity changes drop cached reports
		assert.GreaterOrEqual(t, f.cache.invalidations, 2)
	})
}

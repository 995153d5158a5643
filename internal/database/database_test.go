package database

import (
	"context"
	"os"
	"testing"

	"balneario/internal/models"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func setupTestDB(t *testing.T) *DB {
	t.Helper()
	logger := zerolog.New(os.Stdout)
	db, err := NewDB(":memory:", &logger)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return db
}

func createTestEstablishment(t *testing.T, db *DB, ownerID int64) *models.Establishment {
	t.Helper()
	est := &models.Establishment{
		OwnerID: ownerID,
		Name:    "Balneario Sol",
		Services: map[string]models.ServiceConfig{
			models.ServiceTent:     {Enabled: true, Capacity: 3},
			models.ServiceUmbrella: {Enabled: true, Capacity: 10},
			models.ServiceParking:  {Enabled: true, Capacity: 20},
			models.ServicePool:     {Enabled: true, Capacity: 50},
		},
	}
	require.NoError(t, db.UpsertEstablishment(context.Background(), est))
	return est
}

func activeTent(estID, unit int64, start, end string) *models.ReservationGroup {
	return &models.ReservationGroup{
		EstablishmentID: estID,
		ServiceType:     models.ServiceTent,
		UnitNumber:      unit,
		StartDate:       start,
		EndDate:         end,
		CustomerName:    "Ana Diaz",
		Status:          models.StatusActive,
	}
}

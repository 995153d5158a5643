package database

import (
	"context"
	"testing"

	"balneario/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCreatePaymentBalanceGuard(t *testing.T) {
	db := setupTestDB(t)
	est := createTestEstablishment(t, db, 1)
	ctx := context.Background()

	group := activeTent(est.ID, 1, "2024-03-01", "2024-03-02")
	group.TotalPrice = 100
	require.NoError(t, db.CreateReservationGroupWithLock(ctx, group, 0))

	pay := func(amount float64) error {
		return db.CreatePayment(ctx, est.ID, &models.Payment{
			ReservationGroupID: group.ID, Amount: amount, PaymentDate: "2024-03-01", Method: models.PaymentCash,
		})
	}

	require.NoError(t, pay(40))
	require.NoError(t, pay(35))
	// 75 already paid, 30 more would overshoot the 100 total
	assert.ErrorIs(t, pay(30), ErrPaymentExceedsBalance)
	// settling the exact remainder is fine
	require.NoError(t, pay(25))

	got, err := db.GetReservationGroup(ctx, est.ID, group.ID)
	require.NoError(t, err)
	assert.Equal(t, 100.0, got.PaidAmount)
	assert.Equal(t, 0.0, got.Balance)
}

func TestCreatePaymentUnpricedGroup(t *testing.T) {
	db := setupTestDB(t)
	est := createTestEstablishment(t, db, 1)
	ctx := context.Background()

	group := activeTent(est.ID, 1, "2024-03-01", "2024-03-02")
	require.NoError(t, db.CreateReservationGroupWithLock(ctx, group, 0))

	// no total price configured, the guard does not apply
	require.NoError(t, db.CreatePayment(ctx, est.ID, &models.Payment{
		ReservationGroupID: group.ID, Amount: 500, PaymentDate: "2024-03-01", Method: models.PaymentTransfer,
	}))
}

func TestCreatePaymentMissingGroup(t *testing.T) {
	db := setupTestDB(t)
	est := createTestEstablishment(t, db, 1)

	err := db.CreatePayment(context.Background(), est.ID, &models.Payment{
		ReservationGroupID: 42, Amount: 10, PaymentDate: "2024-03-01", Method: models.PaymentCash,
	})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListPayments(t *testing.T) {
	db := setupTestDB(t)
	est := createTestEstablishment(t, db, 1)
	ctx := context.Background()

	group := activeTent(est.ID, 1, "2024-03-01", "2024-03-05")
	require.NoError(t, db.CreateReservationGroupWithLock(ctx, group, 0))

	require.NoError(t, db.CreatePayment(ctx, est.ID, &models.Payment{
		ReservationGroupID: group.ID, Amount: 20, PaymentDate: "2024-03-03", Method: models.PaymentCard,
	}))
	require.NoError(t, db.CreatePayment(ctx, est.ID, &models.Payment{
		ReservationGroupID: group.ID, Amount: 10, PaymentDate: "2024-03-01", Method: models.PaymentCash,
	}))

	payments, err := db.ListPayments(ctx, est.ID, group.ID)
	require.NoError(t, err)
	require.Len(t, payments, 2)
	assert.Equal(t, "2024-03-01", payments[0].PaymentDate)
	assert.Equal(t, "2024-03-03", payments[1].PaymentDate)

	// ledger of another establishment's group is not visible
	_, err = db.ListPayments(ctx, est.ID+1, group.ID)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPaymentsInRange(t *testing.T) {
	db := setupTestDB(t)
	est := createTestEstablishment(t, db, 1)
	ctx := context.Background()

	tent := activeTent(est.ID, 1, "2024-03-01", "2024-03-05")
	require.NoError(t, db.CreateReservationGroupWithLock(ctx, tent, 0))
	parking := activeTent(est.ID, 1, "2024-03-01", "2024-03-05")
	parking.ServiceType = models.ServiceParking
	require.NoError(t, db.CreateReservationGroupWithLock(ctx, parking, 0))

	for _, p := range []models.Payment{
		{ReservationGroupID: tent.ID, Amount: 10, PaymentDate: "2024-03-01", Method: models.PaymentCash},
		{ReservationGroupID: tent.ID, Amount: 20, PaymentDate: "2024-03-10", Method: models.PaymentCash},
		{ReservationGroupID: parking.ID, Amount: 30, PaymentDate: "2024-03-02", Method: models.PaymentCard},
	} {
		p := p
		require.NoError(t, db.CreatePayment(ctx, est.ID, &p))
	}

	payments, err := db.PaymentsInRange(ctx, est.ID, "2024-03-01", "2024-03-05", "")
	require.NoError(t, err)
	assert.Len(t, payments, 2)

	payments, err = db.PaymentsInRange(ctx, est.ID, "2024-03-01", "2024-03-31", models.ServiceTent)
	require.NoError(t, err)
	assert.Len(t, payments, 2)
	for _, p := range payments {
		assert.Equal(t, tent.ID, p.ReservationGroupID)
	}
}

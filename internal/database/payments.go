package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"balneario/internal/models"
)

// CreatePayment appends a ledger entry inside a transaction that re-reads
// the group's totals, so concurrent payments cannot jointly exceed the
// outstanding balance. Groups with no configured price are exempt from the
// balance guard.
func (db *DB) CreatePayment(ctx context.Context, establishmentID int64, payment *models.Payment) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback()
	}()

	var totalPrice float64
	query := `SELECT total_price FROM reservation_groups WHERE id = ? AND establishment_id = ?`
	err = tx.QueryRowContext(ctx, query, payment.ReservationGroupID, establishmentID).Scan(&totalPrice)
	if errors.Is(err, sql.ErrNoRows) {
		return ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to load reservation group: %w", err)
	}

	if totalPrice > 0 {
		var paid float64
		sumQuery := `SELECT COALESCE(SUM(amount), 0) FROM payments WHERE reservation_group_id = ?`
		if err := tx.QueryRowContext(ctx, sumQuery, payment.ReservationGroupID).Scan(&paid); err != nil {
			return fmt.Errorf("failed to sum payments: %w", err)
		}
		if paid+payment.Amount > totalPrice {
			return ErrPaymentExceedsBalance
		}
	}

	now := time.Now()
	insert := `INSERT INTO payments (reservation_group_id, amount, payment_date, method, notes, created_at)
               VALUES (?, ?, ?, ?, ?, ?)`
	result, err := tx.ExecContext(ctx, insert,
		payment.ReservationGroupID, payment.Amount, payment.PaymentDate, payment.Method, payment.Notes, now)
	if err != nil {
		return fmt.Errorf("failed to insert payment: %w", err)
	}

	id, err := result.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to get last insert id: %w", err)
	}
	payment.ID = id
	payment.CreatedAt = now

	return tx.Commit()
}

// ListPayments returns a group's ledger, oldest first.
func (db *DB) ListPayments(ctx context.Context, establishmentID, groupID int64) ([]models.Payment, error) {
	// Verify the group belongs to the establishment first.
	var exists int
	check := `SELECT COUNT(*) FROM reservation_groups WHERE id = ? AND establishment_id = ?`
	if err := db.QueryRowContext(ctx, check, groupID, establishmentID).Scan(&exists); err != nil {
		return nil, fmt.Errorf("failed to check reservation group: %w", err)
	}
	if exists == 0 {
		return nil, ErrNotFound
	}

	query := `SELECT id, reservation_group_id, amount, payment_date, method, notes, created_at
              FROM payments WHERE reservation_group_id = ? ORDER BY payment_date ASC, id ASC`
	rows, err := db.QueryContext(ctx, query, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list payments: %w", err)
	}
	defer rows.Close()

	payments := make([]models.Payment, 0)
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.ReservationGroupID, &p.Amount, &p.PaymentDate, &p.Method, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}

// PaymentsInRange returns all payments of an establishment whose payment
// date falls in [from, to], optionally narrowed to one service type.
func (db *DB) PaymentsInRange(ctx context.Context, establishmentID int64, from, to, serviceType string) ([]models.Payment, error) {
	query := `SELECT p.id, p.reservation_group_id, p.amount, p.payment_date, p.method, p.notes, p.created_at
              FROM payments p
              JOIN reservation_groups g ON g.id = p.reservation_group_id
              WHERE g.establishment_id = ? AND p.payment_date >= ? AND p.payment_date <= ?`
	args := []any{establishmentID, from, to}
	if serviceType != "" {
		query += ` AND g.service_type = ?`
		args = append(args, serviceType)
	}
	query += ` ORDER BY p.payment_date ASC, p.id ASC`

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get payments in range: %w", err)
	}
	defer rows.Close()

	payments := make([]models.Payment, 0)
	for rows.Next() {
		var p models.Payment
		if err := rows.Scan(&p.ID, &p.ReservationGroupID, &p.Amount, &p.PaymentDate, &p.Method, &p.Notes, &p.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan payment: %w", err)
		}
		payments = append(payments, p)
	}
	return payments, rows.Err()
}
